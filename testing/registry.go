// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"sort"
)

// Registry holds registered tests and tag aliases for one process.
//
// Registration happens during program initialization, before a session
// exists, so errors cannot be reported to a caller at that point. They are
// recorded here instead and surfaced as startup errors by the session.
type Registry struct {
	allTests  []*TestCase
	testNames map[string]struct{}
	aliases   *AliasRegistry
	errs      []error
}

// NewRegistry returns a new empty test registry.
func NewRegistry() *Registry {
	return &Registry{
		testNames: make(map[string]struct{}),
		aliases:   NewAliasRegistry(),
	}
}

// AddTest validates t and adds it to the registry. On failure the error is
// both recorded for later retrieval via RegistrationErrors and returned.
//
// The registration site is captured from the caller's stack unless skipFrames
// adjusts it; use AddTest(t, 0) when calling directly.
func (r *Registry) AddTest(t *Test, skipFrames int) error {
	tc, err := newTestCase(t, skipFrames+1)
	if err != nil {
		r.RecordError(err)
		return err
	}
	if _, ok := r.testNames[tc.Name]; ok {
		err := fmt.Errorf("test %q already registered", tc.Name)
		r.RecordError(err)
		return err
	}
	r.allTests = append(r.allTests, tc)
	r.testNames[tc.Name] = struct{}{}
	return nil
}

// newTestCase validates t and converts it to a TestCase, capturing the
// registration source location.
func newTestCase(t *Test, skipFrames int) (*TestCase, error) {
	if err := validateTestName(t.Name); err != nil {
		return nil, err
	}
	if t.Func == nil {
		return nil, fmt.Errorf("test %q has no function", t.Name)
	}
	if t.Timeout < 0 {
		return nil, fmt.Errorf("test %q has negative timeout %v", t.Name, t.Timeout)
	}
	for _, tag := range t.Tags {
		if err := validateTag(tag); err != nil {
			return nil, fmt.Errorf("test %q: %v", t.Name, err)
		}
	}

	file, line := "", 0
	if _, f, l, ok := runtime.Caller(skipFrames + 1); ok {
		file, line = f, l
	}
	return &TestCase{
		Name:    t.Name,
		Desc:    t.Desc,
		Tags:    append([]string(nil), t.Tags...),
		File:    file,
		Line:    line,
		Timeout: t.Timeout,
		Func:    t.Func,
	}, nil
}

// RecordError records a startup failure to be reported before any test runs.
// Collaborators may call this during program initialization for problems that
// must abort the session later (the session itself never downgrades them).
func (r *Registry) RecordError(err error) {
	r.errs = append(r.errs, err)
}

// RegistrationErrors returns all startup failures recorded so far.
func (r *Registry) RegistrationErrors() []error {
	return append([]error(nil), r.errs...)
}

// AllTests returns copies of all registered tests.
func (r *Registry) AllTests() []*TestCase {
	ts := make([]*TestCase, len(r.allTests))
	for i, t := range r.allTests {
		ts[i] = t.clone()
	}
	return ts
}

// EachTest calls f once for every registered test, passing the registry's own
// TestCase instance rather than a copy. It exists for pre-run mutation passes
// (tag augmentation); callers must not retain the pointers.
func (r *Registry) EachTest(f func(t *TestCase)) {
	for _, t := range r.allTests {
		f(t)
	}
}

// Aliases returns the registry's tag alias registry.
func (r *Registry) Aliases() *AliasRegistry {
	return r.aliases
}

// RegisterTagAlias adds a tag alias to the registry's alias registry,
// recording a startup failure if the registration is invalid.
func (r *Registry) RegisterTagAlias(alias, expansion string) {
	if err := r.aliases.Register(alias, expansion); err != nil {
		r.RecordError(err)
	}
}

// SortTestCases sorts tests in the deterministic default run order:
// by source file, then line, then name.
func SortTestCases(tests []*TestCase) {
	sort.SliceStable(tests, func(i, j int) bool {
		ti, tj := tests[i], tests[j]
		if ti.File != tj.File {
			return ti.File < tj.File
		}
		if ti.Line != tj.Line {
			return ti.Line < tj.Line
		}
		return ti.Name < tj.Name
	})
}

// WriteTestCasesAsJSON writes an array of JSON-marshaled TestCase structs to w.
func WriteTestCasesAsJSON(w io.Writer, ts []*TestCase) error {
	b, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
