// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"fmt"
	"io/ioutil"
	"regexp"
	"sort"

	"gopkg.in/yaml.v2"
)

// aliasRegexp validates tag alias names: "@" followed by an identifier.
var aliasRegexp = regexp.MustCompile(`^@[A-Za-z_][A-Za-z0-9_]*$`)

// aliasTokenRegexp finds alias references embedded in a filter expression.
var aliasTokenRegexp = regexp.MustCompile(`@[A-Za-z_][A-Za-z0-9_]*`)

// AliasRegistry maps tag alias names to filter (sub-)expressions.
//
// An alias lets a long or frequently-used filter expression be referenced as
// a single "@name" token, e.g. "@smoke" for "fast && !net". Aliases are
// expanded textually, each expansion parenthesized, before the expression is
// compiled.
type AliasRegistry struct {
	aliases map[string]string
}

// NewAliasRegistry returns a new empty alias registry.
func NewAliasRegistry() *AliasRegistry {
	return &AliasRegistry{aliases: make(map[string]string)}
}

// Register adds an alias with the given expansion. The alias must start with
// "@", name a valid identifier, and not already be registered.
func (a *AliasRegistry) Register(alias, expansion string) error {
	if !aliasRegexp.MatchString(alias) {
		return fmt.Errorf("invalid tag alias %q (want \"@identifier\")", alias)
	}
	if _, ok := a.aliases[alias]; ok {
		return fmt.Errorf("tag alias %q already registered", alias)
	}
	if expansion == "" {
		return fmt.Errorf("tag alias %q has empty expansion", alias)
	}
	a.aliases[alias] = expansion
	return nil
}

// LoadFile reads alias definitions from the YAML file at path and registers
// each of them. The file holds a flat mapping from alias name to expansion:
//
//	"@smoke": fast && !net
//	"@ci": "smoke || nightly"
func (a *AliasRegistry) LoadFile(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed reading tag alias file: %v", err)
	}
	var defs map[string]string
	if err := yaml.Unmarshal(b, &defs); err != nil {
		return fmt.Errorf("failed parsing tag alias file %s: %v", path, err)
	}

	// Register in a deterministic order so duplicate handling is stable.
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := a.Register(name, defs[name]); err != nil {
			return fmt.Errorf("%s: %v", path, err)
		}
	}
	return nil
}

// Expand replaces every "@name" token in expression s with the alias's
// parenthesized expansion. Referencing an unregistered alias is an error.
func (a *AliasRegistry) Expand(s string) (string, error) {
	var missing string
	out := aliasTokenRegexp.ReplaceAllStringFunc(s, func(tok string) string {
		exp, ok := a.aliases[tok]
		if !ok {
			if missing == "" {
				missing = tok
			}
			return tok
		}
		return "(" + exp + ")"
	})
	if missing != "" {
		return "", fmt.Errorf("no tag alias registered with name %q", missing)
	}
	return out, nil
}

// Clone returns an independent copy of the registry. Callers that overlay
// additional aliases (e.g. from a file) clone first so the original is not
// mutated.
func (a *AliasRegistry) Clone() *AliasRegistry {
	c := NewAliasRegistry()
	for name, exp := range a.aliases {
		c.aliases[name] = exp
	}
	return c
}

// Names returns all registered alias names in sorted order.
func (a *AliasRegistry) Names() []string {
	names := make([]string, 0, len(a.aliases))
	for name := range a.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
