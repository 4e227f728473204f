// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	gotesting "testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cruciblehq/crucible/testing"
)

func TestParse(t *gotesting.T) {
	var d Data
	args := []string{
		"-name", "nightly",
		"-r", "stream", "-r", "junit",
		"-filenames-as-tags",
		"-x", "3",
		"-order", "rand",
		"-rng-seed", "42",
		"-no-color",
		"-heartbeat-interval", "5s",
		"pkg.*", "other.Exact",
	}
	if err := Parse(args, &d); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Name != "nightly" {
		t.Errorf("Name = %q; want nightly", d.Name)
	}
	if !cmp.Equal(d.ReporterNames, []string{"stream", "junit"}) {
		t.Errorf("ReporterNames = %v", d.ReporterNames)
	}
	if !d.FilenamesAsTags || !d.NoColor {
		t.Errorf("bool flags not set: %+v", d)
	}
	if d.AbortAfter != 3 || d.Order != OrderRandom || d.RandomSeed != "42" {
		t.Errorf("parsed %+v", d)
	}
	if d.HeartbeatInterval != 5*time.Second {
		t.Errorf("HeartbeatInterval = %v; want 5s", d.HeartbeatInterval)
	}
	if !cmp.Equal(d.Patterns, []string{"pkg.*", "other.Exact"}) {
		t.Errorf("Patterns = %v", d.Patterns)
	}
}

func TestParseDefaults(t *gotesting.T) {
	var d Data
	if err := Parse(nil, &d); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Name != "tests" || d.Order != OrderDeclared || d.WaitForKeypress != WaitNone {
		t.Errorf("defaults = %+v", d)
	}
	if len(d.ReporterNames) != 0 || len(d.Patterns) != 0 {
		t.Errorf("defaults = %+v", d)
	}
}

func TestParseErrors(t *gotesting.T) {
	for _, args := range [][]string{
		{"-bogus"},
		{"-order", "sideways"},
		{"-wait-for-keypress", "sometimes"},
		{"-x", "many"},
		{"-heartbeat-interval", "fast"},
	} {
		var d Data
		if err := Parse(args, &d); err == nil {
			t.Errorf("Parse(%v) unexpectedly succeeded", args)
		}
	}
}

func TestParseKeypressModes(t *gotesting.T) {
	for _, tc := range []struct {
		val  string
		want KeypressMode
	}{
		{"never", WaitNone},
		{"start", WaitBeforeStart},
		{"exit", WaitBeforeExit},
		{"both", WaitBoth},
	} {
		var d Data
		if err := Parse([]string{"-wait-for-keypress", tc.val}, &d); err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.val, err)
		}
		if d.WaitForKeypress != tc.want {
			t.Errorf("WaitForKeypress(%q) = %v; want %v", tc.val, d.WaitForKeypress, tc.want)
		}
	}
}

func TestNewCompilesSpec(t *gotesting.T) {
	d := Data{Patterns: []string{`("fast")`}}
	cfg, err := New(&d, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	spec := cfg.TestSpec()
	if !spec.HasFilters() {
		t.Error("TestSpec has no filters")
	}
	if !spec.Matches(&testing.TestCase{Name: "n", Tags: []string{"fast"}}) {
		t.Error("spec did not match a fast test")
	}

	if _, err := New(&Data{Patterns: []string{`a && b`}}, nil); err == nil {
		t.Error("New with unparenthesized expression unexpectedly succeeded")
	}
}

func TestNewSeed(t *gotesting.T) {
	cfg, err := New(&Data{RandomSeed: "42"}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.Seed() != 42 {
		t.Errorf("Seed() = %d; want 42", cfg.Seed())
	}
	want := cfg.Rand().Perm(10)
	cfg2, err := New(&Data{RandomSeed: "42"}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := cfg2.Rand().Perm(10); !cmp.Equal(got, want) {
		t.Errorf("same seed produced different sequences: %v vs %v", got, want)
	}

	for _, seed := range []string{"abc", "-5", "1.5"} {
		if _, err := New(&Data{RandomSeed: seed}, nil); err == nil {
			t.Errorf("New with seed %q unexpectedly succeeded", seed)
		}
	}
}

func TestNewTimeSeedVaries(t *gotesting.T) {
	a, err := New(&Data{RandomSeed: "time"}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, err := New(&Data{}, nil) // empty seed is time-derived too
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Seed() == 0 || b.Seed() == 0 {
		t.Error("time-derived seed is zero")
	}
}

func TestNewRejectsNegativeAbortAfter(t *gotesting.T) {
	if _, err := New(&Data{AbortAfter: -1}, nil); err == nil {
		t.Error("New with negative abort-after unexpectedly succeeded")
	}
}

func TestNewLoadsAliasFile(t *gotesting.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	if err := ioutil.WriteFile(path, []byte("\"@smoke\": '\"fast\"'\n"), 0644); err != nil {
		t.Fatal(err)
	}

	aliases := testing.NewAliasRegistry()
	d := Data{TagAliasFile: path, Patterns: []string{"(@smoke)"}}
	cfg, err := New(&d, aliases)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !cfg.TestSpec().Matches(&testing.TestCase{Name: "n", Tags: []string{"fast"}}) {
		t.Error("alias from file was not applied to the spec")
	}
	// The caller's registry must stay untouched.
	if len(aliases.Names()) != 0 {
		t.Errorf("caller's aliases mutated: %v", aliases.Names())
	}
	// A second materialization must therefore succeed as well.
	if _, err := New(&d, aliases); err != nil {
		t.Errorf("second New failed: %v", err)
	}

	if _, err := New(&Data{TagAliasFile: filepath.Join(t.TempDir(), "none.yaml")}, nil); err == nil {
		t.Error("New with missing alias file unexpectedly succeeded")
	}
}

func TestWriteUsage(t *gotesting.T) {
	b := &bytes.Buffer{}
	WriteUsage(b)
	for _, want := range []string{"-reporter", "-abort-after", "-list-tests", "-rng-seed"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}
