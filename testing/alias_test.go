// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"io/ioutil"
	"path/filepath"
	gotesting "testing"

	"github.com/google/go-cmp/cmp"
)

func TestAliasRegistryRegister(t *gotesting.T) {
	a := NewAliasRegistry()
	if err := a.Register("@smoke", `"fast" && !"net"`); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	for _, tc := range []struct {
		alias, expansion string
	}{
		{"smoke", `"fast"`},  // missing @
		{"@", `"fast"`},      // no identifier
		{"@a-b", `"fast"`},   // invalid identifier
		{"@smoke", `"slow"`}, // duplicate
		{"@empty", ""},       // empty expansion
	} {
		if err := a.Register(tc.alias, tc.expansion); err == nil {
			t.Errorf("Register(%q, %q) unexpectedly succeeded", tc.alias, tc.expansion)
		}
	}
	if got := a.Names(); !cmp.Equal(got, []string{"@smoke"}) {
		t.Errorf("Names() = %v; want [@smoke]", got)
	}
}

func TestAliasRegistryExpand(t *gotesting.T) {
	a := NewAliasRegistry()
	if err := a.Register("@smoke", `"fast" && !"net"`); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	got, err := a.Expand(`@smoke || "nightly"`)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if want := `("fast" && !"net") || "nightly"`; got != want {
		t.Errorf("Expand = %q; want %q", got, want)
	}

	if _, err := a.Expand(`@smoke && @nope`); err == nil {
		t.Error("Expand with unregistered alias unexpectedly succeeded")
	}
}

func TestAliasRegistryLoadFile(t *gotesting.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	data := "\"@smoke\": '\"fast\" && !\"net\"'\n\"@ci\": '@smoke'\n"
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewAliasRegistry()
	if err := a.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got := a.Names(); !cmp.Equal(got, []string{"@ci", "@smoke"}) {
		t.Errorf("Names() = %v; want [@ci @smoke]", got)
	}

	if err := a.LoadFile(path); err == nil {
		t.Error("second LoadFile with duplicate aliases unexpectedly succeeded")
	}
	if err := a.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile with missing file unexpectedly succeeded")
	}
}

func TestAliasRegistryClone(t *gotesting.T) {
	a := NewAliasRegistry()
	if err := a.Register("@smoke", `"fast"`); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	c := a.Clone()
	if err := c.Register("@extra", `"slow"`); err != nil {
		t.Fatalf("Register on clone failed: %v", err)
	}
	if got := a.Names(); !cmp.Equal(got, []string{"@smoke"}) {
		t.Errorf("original Names() = %v; want [@smoke]", got)
	}
	if got := c.Names(); !cmp.Equal(got, []string{"@extra", "@smoke"}) {
		t.Errorf("clone Names() = %v; want [@extra @smoke]", got)
	}
}
