// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package expr

import (
	"strings"
	"testing"
)

func TestGoodExpr(t *testing.T) {
	for _, tc := range []struct {
		expr, tags string
		want       bool
	}{
		{"fast", "fast", true},
		{"fast", "", false},
		{"fast", "slow", false},
		{"net_io", "net_io", true},
		{"a || b || c", "a", true},
		{"a || b || c", "b", true},
		{"a || b || c", "c", true},
		{"a || b || c", "d", false},
		{"(a || b) && !c", "a", true},
		{"(a || b) && !c", "a d", true},
		{"(a || b) && !c", "a c", false},
		{"!slow", "fast", true},
		{"!slow", "slow fast", false},

		// Quoted tags, including wildcards and sentinel prefixes.
		{`"c"`, "a:b c", true},
		{`"a:b"`, "a:b c", true},
		{`"a:b"`, "a", false},
		{`"#db_*"`, "#db_users", true},
		{`"#db_*"`, "db_users", false},
		{`!".*"`, "fast", true},
		{`!".*"`, ".hidden fast", false},
		{`!".*"`, "", true},
	} {
		e, err := New(tc.expr)
		if err != nil {
			t.Errorf("New(%q) failed: %v", tc.expr, err)
			continue
		}
		if got := e.Matches(strings.Fields(tc.tags)); got != tc.want {
			t.Errorf("%q Matches(%q) = %v; want %v", tc.expr, tc.tags, got, tc.want)
		}
	}
}

func TestBadExpr(t *testing.T) {
	for _, s := range []string{
		"",
		"a b",
		"a + b",
		"a == b",
		"(a && b",
		"a:b",
		"3",
		"f(x)",
	} {
		if _, err := New(s); err == nil {
			t.Errorf("New(%q) unexpectedly succeeded", s)
		}
	}
}
