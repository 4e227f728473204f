// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command crucible-demo is a small self-contained test binary demonstrating
// the framework: it registers a handful of tests and hands the command line
// to a session. Try it with -list-tests, a tag expression such as '("fast")',
// or -reporter stream.
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/cruciblehq/crucible/session"
	"github.com/cruciblehq/crucible/testing"
)

func init() {
	testing.AddTest(&testing.Test{
		Name: "strings.Fields",
		Desc: "Splits on runs of whitespace",
		Tags: []string{"fast", "strings"},
		Func: func(ctx context.Context, s *testing.State) {
			fields := strings.Fields("  a\tb  c ")
			s.Expect(len(fields) == 3, "three fields from mixed whitespace")
			s.Expect(fields[0] == "a", "leading whitespace stripped")
		},
	})
	testing.AddTest(&testing.Test{
		Name: "strings.Repeat",
		Desc: "Concatenates n copies",
		Tags: []string{"fast", "strings"},
		Func: func(ctx context.Context, s *testing.State) {
			s.Expect(strings.Repeat("ab", 3) == "ababab", "ab repeated three times")
		},
	})
	testing.AddTest(&testing.Test{
		Name:    "timing.Sleep",
		Desc:    "Returns after the requested duration",
		Tags:    []string{"slow"},
		Timeout: 10 * time.Second,
		Func: func(ctx context.Context, s *testing.State) {
			start := time.Now()
			time.Sleep(10 * time.Millisecond)
			s.Expect(time.Since(start) >= 10*time.Millisecond, "slept at least 10ms")
		},
	})
	testing.AddTest(&testing.Test{
		Name: "internal.Selftest",
		Desc: "Hidden unless selected by tag",
		Tags: []string{".", "selftest"},
		Func: func(ctx context.Context, s *testing.State) {
			s.Log("running hidden selftest")
			s.Expect(true, "selftest sanity")
		},
	})

	testing.RegisterTagAlias("@quick", `"fast"`)
}

func main() {
	tok := session.NewToken()
	defer tok.Release()
	os.Exit(session.New(tok).Run(os.Args[1:]))
}
