// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package session

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cruciblehq/crucible/config"
	"github.com/cruciblehq/crucible/internal/command"
	"github.com/cruciblehq/crucible/testing"
)

// list performs the requested enumerations instead of a run. Listings always
// return a success status; counts are printed, not encoded in the exit code.
func (s *Session) list(cfg *config.Config) int {
	if cfg.ListTests() {
		s.listTests(cfg)
	}
	if cfg.ListTestsJSON() {
		if err := testing.WriteTestCasesAsJSON(s.out, s.matchingTests(cfg)); err != nil {
			return command.WriteError(s.errOut, command.NewStatusErrorf(statusError, "%v", err))
		}
		fmt.Fprintln(s.out)
	}
	if cfg.ListTags() {
		s.listTags(cfg)
	}
	if cfg.ListReporters() {
		s.listReporters()
	}
	return statusSuccess
}

// matchingTests returns the tests selected by the config's filters in the
// default sort order. Unlike the run loop, an unfiltered listing shows every
// registered test, hidden ones included.
func (s *Session) matchingTests(cfg *config.Config) []*testing.TestCase {
	tests := s.reg.AllTests()
	testing.SortTestCases(tests)
	spec := cfg.TestSpec()
	if !spec.HasFilters() {
		return tests
	}
	var matched []*testing.TestCase
	for _, t := range tests {
		if spec.Matches(t) {
			matched = append(matched, t)
		}
	}
	return matched
}

func (s *Session) listTests(cfg *config.Config) {
	if cfg.TestSpec().HasFilters() {
		fmt.Fprintln(s.out, "Matching test cases:")
	} else {
		fmt.Fprintln(s.out, "All available test cases:")
	}
	tests := s.matchingTests(cfg)
	for _, t := range tests {
		fmt.Fprintf(s.out, "  %s\n", t.Name)
		if t.Desc != "" {
			fmt.Fprintf(s.out, "      %s\n", t.Desc)
		}
		if len(t.Tags) > 0 {
			fmt.Fprintf(s.out, "      [%s]\n", strings.Join(t.Tags, "]["))
		}
	}
	fmt.Fprintf(s.out, "%d matching test cases\n\n", len(tests))
}

func (s *Session) listTags(cfg *config.Config) {
	counts := make(map[string]int)
	for _, t := range s.matchingTests(cfg) {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	fmt.Fprintln(s.out, "All available tags:")
	for _, tag := range tags {
		fmt.Fprintf(s.out, "  %6d  [%s]\n", counts[tag], tag)
	}
	fmt.Fprintf(s.out, "%d tags\n\n", len(tags))
}

func (s *Session) listReporters() {
	fmt.Fprintln(s.out, "Available reporters:")
	for _, d := range s.reporters.Registered() {
		fmt.Fprintf(s.out, "  %-12s%s\n", d.Name+":", d.Desc)
	}
	fmt.Fprintln(s.out)
}
