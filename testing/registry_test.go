// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"strings"
	gotesting "testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// noopFunc is a valid test function for registration tests.
func noopFunc(ctx context.Context, s *State) {}

func TestAddTest(t *gotesting.T) {
	reg := NewRegistry()
	if err := reg.AddTest(&Test{Name: "pkg.First", Desc: "d", Tags: []string{"fast"}, Func: noopFunc}, 0); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}
	ts := reg.AllTests()
	if len(ts) != 1 {
		t.Fatalf("AllTests returned %d tests; want 1", len(ts))
	}
	tc := ts[0]
	if tc.Name != "pkg.First" || tc.Desc != "d" || len(tc.Tags) != 1 {
		t.Errorf("AllTests returned %+v", tc)
	}
	if !strings.HasSuffix(tc.File, "registry_test.go") || tc.Line <= 0 {
		t.Errorf("registration site not captured: file %q line %d", tc.File, tc.Line)
	}
	if errs := reg.RegistrationErrors(); len(errs) != 0 {
		t.Errorf("RegistrationErrors returned %v for valid registration", errs)
	}
}

func TestAddTestDuplicateName(t *gotesting.T) {
	reg := NewRegistry()
	if err := reg.AddTest(&Test{Name: "pkg.Dup", Func: noopFunc}, 0); err != nil {
		t.Fatalf("first AddTest failed: %v", err)
	}
	if err := reg.AddTest(&Test{Name: "pkg.Dup", Func: noopFunc}, 0); err == nil {
		t.Error("second AddTest with same name unexpectedly succeeded")
	}
	if errs := reg.RegistrationErrors(); len(errs) != 1 {
		t.Errorf("RegistrationErrors returned %d errors; want 1", len(errs))
	}
}

func TestAddTestValidation(t *gotesting.T) {
	for _, tc := range []struct {
		name string
		test *Test
	}{
		{"empty name", &Test{Name: "", Func: noopFunc}},
		{"newline in name", &Test{Name: "a\nb", Func: noopFunc}},
		{"surrounding space", &Test{Name: " pkg.Test", Func: noopFunc}},
		{"nil func", &Test{Name: "pkg.Test"}},
		{"negative timeout", &Test{Name: "pkg.Test", Func: noopFunc, Timeout: -time.Second}},
		{"empty tag", &Test{Name: "pkg.Test", Func: noopFunc, Tags: []string{""}}},
		{"tag with space", &Test{Name: "pkg.Test", Func: noopFunc, Tags: []string{"a b"}}},
		{"tag with quote", &Test{Name: "pkg.Test", Func: noopFunc, Tags: []string{`a"b`}}},
	} {
		reg := NewRegistry()
		if err := reg.AddTest(tc.test, 0); err == nil {
			t.Errorf("%s: AddTest unexpectedly succeeded", tc.name)
		}
		if errs := reg.RegistrationErrors(); len(errs) != 1 {
			t.Errorf("%s: got %d registration errors; want 1", tc.name, len(errs))
		}
		if len(reg.AllTests()) != 0 {
			t.Errorf("%s: invalid test was registered", tc.name)
		}
	}
}

func TestRegisterTagAliasRecordsErrors(t *gotesting.T) {
	reg := NewRegistry()
	reg.RegisterTagAlias("@ok", `"fast"`)
	reg.RegisterTagAlias("bad", `"fast"`) // missing "@"
	if errs := reg.RegistrationErrors(); len(errs) != 1 {
		t.Errorf("RegistrationErrors returned %d errors; want 1", len(errs))
	}
	if got := reg.Aliases().Names(); !cmp.Equal(got, []string{"@ok"}) {
		t.Errorf("Names() = %v; want [@ok]", got)
	}
}

func TestSortTestCases(t *gotesting.T) {
	tests := []*TestCase{
		{Name: "b", File: "y.go", Line: 10},
		{Name: "a", File: "y.go", Line: 10},
		{Name: "c", File: "x.go", Line: 99},
		{Name: "d", File: "y.go", Line: 2},
	}
	SortTestCases(tests)
	want := []*TestCase{
		{Name: "c", File: "x.go", Line: 99},
		{Name: "d", File: "y.go", Line: 2},
		{Name: "a", File: "y.go", Line: 10},
		{Name: "b", File: "y.go", Line: 10},
	}
	if diff := cmp.Diff(want, tests, cmpopts.IgnoreFields(TestCase{}, "Func")); diff != "" {
		t.Errorf("SortTestCases mismatch (-want +got):\n%s", diff)
	}
}

func TestEachTestMutatesRegistry(t *gotesting.T) {
	reg := NewRegistry()
	if err := reg.AddTest(&Test{Name: "pkg.Test", Func: noopFunc}, 0); err != nil {
		t.Fatalf("AddTest failed: %v", err)
	}
	reg.EachTest(func(tc *TestCase) { tc.Tags = append(tc.Tags, "#extra") })
	if got := reg.AllTests()[0].Tags; !cmp.Equal(got, []string{"#extra"}) {
		t.Errorf("Tags = %v; want [#extra]", got)
	}

	// AllTests must return copies: mutating them doesn't touch the registry.
	reg.AllTests()[0].Tags[0] = "clobbered"
	if got := reg.AllTests()[0].Tags[0]; got != "#extra" {
		t.Errorf("registry tag = %q; want %q", got, "#extra")
	}
}

func TestSetGlobalRegistryForTesting(t *gotesting.T) {
	reg := NewRegistry()
	restore := SetGlobalRegistryForTesting(reg)
	defer restore()
	AddTest(&Test{Name: "pkg.Global", Func: noopFunc})
	if len(reg.AllTests()) != 1 {
		t.Error("AddTest did not reach the substituted registry")
	}
}
