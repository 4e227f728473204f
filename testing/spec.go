// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cruciblehq/crucible/expr"
)

// defaultSpecExpr matches every test without a hidden ("."-prefixed) tag.
const defaultSpecExpr = `!".*"`

// TestSpec is a compiled predicate selecting which registered tests
// participate in a run. It is stateless and reusable across tests.
//
// A spec is built from positional patterns: a single pattern surrounded by
// parentheses is treated as a boolean tag expression (see the expr package),
// and anything else as one or more name globs in which '*' matches zero or
// more arbitrary characters. A spec with no patterns has no filters; the
// session substitutes the default hidden-tag exclusion in that case.
type TestSpec struct {
	patterns []string
	globs    []*regexp.Regexp
	expr     *expr.Expr
}

// ParseTestSpec compiles patterns into a TestSpec. Tag aliases from aliases
// are expanded before an expression pattern is compiled; aliases may be nil
// if no expansion is wanted.
func ParseTestSpec(patterns []string, aliases *AliasRegistry) (*TestSpec, error) {
	s := &TestSpec{patterns: append([]string(nil), patterns...)}

	if len(patterns) == 1 && strings.HasPrefix(patterns[0], "(") && strings.HasSuffix(patterns[0], ")") {
		text := patterns[0][1 : len(patterns[0])-1]
		if aliases != nil {
			var err error
			if text, err = aliases.Expand(text); err != nil {
				return nil, err
			}
		}
		e, err := expr.New(text)
		if err != nil {
			return nil, fmt.Errorf("bad filter expression %q: %v", patterns[0], err)
		}
		s.expr = e
		return s, nil
	}

	for _, p := range patterns {
		// Give a helpful error if the user forgot the parentheses.
		if strings.Contains(p, "&&") || strings.Contains(p, "||") {
			return nil, fmt.Errorf("filter expression %q must be within parentheses", p)
		}
		re, err := newNameGlobRegexp(p)
		if err != nil {
			return nil, fmt.Errorf("bad test glob %q: %v", p, err)
		}
		s.globs = append(s.globs, re)
	}
	return s, nil
}

// DefaultTestSpec returns the predicate used when the caller supplied no
// filters: match every test not carrying a hidden tag.
func DefaultTestSpec() *TestSpec {
	e, err := expr.New(defaultSpecExpr)
	if err != nil {
		panic(fmt.Sprintf("failed to compile default test spec: %v", err))
	}
	return &TestSpec{expr: e}
}

// HasFilters reports whether the spec contains at least one filter clause.
func (s *TestSpec) HasFilters() bool {
	return len(s.patterns) > 0
}

// Matches reports whether t is selected by the spec.
func (s *TestSpec) Matches(t *TestCase) bool {
	if s.expr != nil {
		return s.expr.Matches(t.Tags)
	}
	for _, re := range s.globs {
		if re.MatchString(t.Name) {
			return true
		}
	}
	// A spec with no patterns at all matches everything; the session is
	// expected to substitute DefaultTestSpec instead of relying on this.
	return len(s.globs) == 0
}

// String returns the patterns the spec was built from.
func (s *TestSpec) String() string {
	if len(s.patterns) == 0 {
		return defaultSpecExpr
	}
	return strings.Join(s.patterns, " ")
}

// newNameGlobRegexp converts glob g, in which '*' matches zero or more
// arbitrary characters, to an anchored regular expression over test names.
func newNameGlobRegexp(g string) (*regexp.Regexp, error) {
	if g == "" {
		return nil, fmt.Errorf("empty glob")
	}
	p := strings.Replace(g, "*", "\000", -1)
	p = regexp.QuoteMeta(p)
	p = strings.Replace(p, "\000", ".*", -1)
	return regexp.Compile("^" + p + "$")
}
