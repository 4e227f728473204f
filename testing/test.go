// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package testing provides the public API used by test executables to declare
// tests, plus the framework-internal machinery to select and run them.
//
// A test is registered by calling AddTest at initialization time, typically
// from an init function:
//
//	func init() {
//		testing.AddTest(&testing.Test{
//			Name: "Parses empty input",
//			Tags: []string{"parser", "fast"},
//			Func: func(ctx context.Context, s *testing.State) { ... },
//		})
//	}
//
// Registration problems are never fatal at init time; they are recorded on
// the registry and reported as startup errors when the session begins.
package testing

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// HiddenTagPrefix marks tags that exclude a test from default runs.
// Hidden tests only run when selected explicitly by name or by a filter
// expression that mentions them.
const HiddenTagPrefix = "."

// Test describes a test to be registered. Only Name and Func are required.
type Test struct {
	// Name is the test's display name. It must be non-empty and may not
	// contain newlines or leading/trailing whitespace.
	Name string
	// Desc is a short human-readable description of the test.
	Desc string
	// Tags contains labels used for selection and filtering. A tag starting
	// with "." hides the test from default runs.
	Tags []string
	// Timeout is the maximum duration the test function may run for.
	// Zero means no limit.
	Timeout time.Duration
	// Func is the function implementing the test.
	Func TestFunc
}

// TestCase is one registered, runnable test. Instances are created by the
// registry at registration time and owned by it for the life of the process;
// the only in-place mutation permitted afterwards is tag augmentation before
// the run loop starts.
type TestCase struct {
	// Name is the test's display name.
	Name string `json:"name"`
	// Desc is a short human-readable description of the test.
	Desc string `json:"desc,omitempty"`
	// Tags contains the test's selection labels, in declaration order.
	// Duplicates are permitted and treated as a multiset by filters.
	Tags []string `json:"tags"`
	// File and Line identify where the test was registered.
	File string `json:"file"`
	Line int    `json:"line"`
	// Timeout is the maximum duration the test function may run for.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Func is dropped during marshaling; an unmarshaled TestCase is not runnable.
	Func TestFunc `json:"-"`
}

// clone returns a deep copy of t.
func (t *TestCase) clone() *TestCase {
	c := *t
	c.Tags = append([]string(nil), t.Tags...)
	return &c
}

// Hidden reports whether any of the test's tags carries the hidden prefix.
func (t *TestCase) Hidden() bool {
	for _, tag := range t.Tags {
		if strings.HasPrefix(tag, HiddenTagPrefix) {
			return true
		}
	}
	return false
}

// validateTestName returns an error if n is not usable as a test name.
func validateTestName(n string) error {
	if n == "" {
		return fmt.Errorf("empty test name")
	}
	if strings.ContainsAny(n, "\n\r") {
		return fmt.Errorf("test name %q contains newline", n)
	}
	if strings.TrimSpace(n) != n {
		return fmt.Errorf("test name %q has surrounding whitespace", n)
	}
	return nil
}

// validateTag returns an error if tag may not be attached to a test.
// Tags must be non-empty and free of whitespace and quote characters so that
// they can appear verbatim in filter expressions.
func validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("empty tag")
	}
	for _, ch := range tag {
		if unicode.IsSpace(ch) {
			return fmt.Errorf("tag %q contains whitespace", tag)
		}
		if ch == '"' || ch == '\\' {
			return fmt.Errorf("tag %q contains invalid character %q", tag, ch)
		}
	}
	return nil
}
