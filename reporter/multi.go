// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"time"

	"github.com/cruciblehq/crucible/testing"
)

// Multi fans every event out to an ordered list of reporters. Invocation
// order equals the order in which members were added.
type Multi struct {
	reporters []Reporter
}

// Add composes next with the existing reporter (which may be nil) and returns
// the combined reporter: nil existing makes next the sole reporter, an
// existing Multi gets next appended, and anything else is wrapped together
// with next into a new Multi.
func Add(existing, next Reporter) Reporter {
	if existing == nil {
		return next
	}
	if m, ok := existing.(*Multi); ok {
		m.reporters = append(m.reporters, next)
		return m
	}
	return &Multi{reporters: []Reporter{existing, next}}
}

// TestGroupStarting implements Reporter.
func (m *Multi) TestGroupStarting(name string, index, count int) {
	for _, r := range m.reporters {
		r.TestGroupStarting(name, index, count)
	}
}

// TestStarting implements Reporter.
func (m *Multi) TestStarting(t *testing.TestCase) {
	for _, r := range m.reporters {
		r.TestStarting(t)
	}
}

// TestLog implements Reporter.
func (m *Multi) TestLog(t *testing.TestCase, ts time.Time, msg string) {
	for _, r := range m.reporters {
		r.TestLog(t, ts, msg)
	}
}

// TestError implements Reporter.
func (m *Multi) TestError(t *testing.TestCase, ts time.Time, e *testing.Error) {
	for _, r := range m.reporters {
		r.TestError(t, ts, e)
	}
}

// TestEnded implements Reporter.
func (m *Multi) TestEnded(t *testing.TestCase, res Result) {
	for _, r := range m.reporters {
		r.TestEnded(t, res)
	}
}

// SkipTest implements Reporter.
func (m *Multi) SkipTest(t *testing.TestCase) {
	for _, r := range m.reporters {
		r.SkipTest(t)
	}
}

// TestGroupEnded implements Reporter.
func (m *Multi) TestGroupEnded(name string, totals Totals, index, count int) {
	for _, r := range m.reporters {
		r.TestGroupEnded(name, totals, index, count)
	}
}

// Close implements Reporter. All members are closed; the first error wins.
func (m *Multi) Close() error {
	var first error
	for _, r := range m.reporters {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
