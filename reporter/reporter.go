// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package reporter defines the observer interface receiving structured events
// about a test run, the composite that fans events out to several observers,
// and the built-in reporter implementations.
package reporter

import (
	"io"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/cruciblehq/crucible/testing"
)

// Result summarizes the outcome of one executed test case.
type Result struct {
	// Assertions holds the assertions the test recorded.
	Assertions Counts
	// Duration is how long the test function ran.
	Duration time.Duration
	// TimedOut is true if the function overran its timeout; the recorded
	// assertion counts are then a lower bound.
	TimedOut bool
}

// Failed reports whether the test case failed.
func (r Result) Failed() bool {
	return r.Assertions.Failed > 0 || r.TimedOut
}

// Reporter observes the progress and outcomes of a test run.
//
// Methods are invoked from a single goroutine in a fixed, order-sensitive
// sequence: TestGroupStarting first, then for every registered test exactly
// one of SkipTest or the TestStarting..TestEnded sequence, then
// TestGroupEnded, then Close. Implementations must not reenter the run loop.
type Reporter interface {
	// TestGroupStarting announces a test group. This core runs a single group
	// per session, so index and count are always 1.
	TestGroupStarting(name string, index, count int)

	// TestStarting announces that t is about to be executed.
	TestStarting(t *testing.TestCase)
	// TestLog delivers a log message produced by the running test.
	TestLog(t *testing.TestCase, ts time.Time, msg string)
	// TestError delivers a failed assertion produced by the running test.
	TestError(t *testing.TestCase, ts time.Time, e *testing.Error)
	// TestEnded announces that t finished with the given result.
	TestEnded(t *testing.TestCase, r Result)

	// SkipTest records that t was not executed (filtered out or the run was
	// aborting). The test contributes zero assertions.
	SkipTest(t *testing.TestCase)

	// TestGroupEnded announces the end of the group with the final totals.
	TestGroupEnded(name string, totals Totals, index, count int)

	// Close releases any resources held by the reporter. It is called once,
	// at session teardown, after TestGroupEnded.
	Close() error
}

// Options configures a reporter created through a Registry.
type Options struct {
	// Out is the sink the reporter writes to.
	Out io.Writer
	// NoColor disables ANSI color even when Out is a terminal.
	NoColor bool
	// HeartbeatInterval enables periodic heartbeat messages for stream-style
	// reporters when positive.
	HeartbeatInterval time.Duration
	// Clock is used for heartbeat scheduling; the real clock if nil.
	Clock clock.Clock
}

func (o Options) clock() clock.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return clock.NewClock()
}
