// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// TestFunc is the code associated with a test.
type TestFunc func(context.Context, *State)

// Error describes a failed assertion reported by a test.
type Error struct {
	Reason string `json:"reason"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Stack  string `json:"stack"`
}

// Output contains a piece of output streamed from a running test: either a
// log message or a failed assertion.
type Output struct {
	T   time.Time
	Err *Error
	Msg string
}

// AssertionCounts holds the number of passed and failed assertions recorded
// by a single test.
type AssertionCounts struct {
	Passed uint64
	Failed uint64
}

// State holds state relevant to a single test's execution and provides the
// assertion and logging API available to its function.
//
// All State methods are safe to call concurrently from multiple goroutines
// spawned by the test.
type State struct {
	test *TestCase     // test being run
	ch   chan<- Output // channel to which log messages and errors are written

	mu     sync.Mutex // protects the fields below
	closed bool       // true after close is called and ch must not be written
	counts AssertionCounts
}

// newState returns a new State for running test.
func newState(test *TestCase, ch chan<- Output) *State {
	return &State{test: test, ch: ch}
}

// close marks the state finished; subsequent output is discarded.
func (s *State) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Log formats its arguments using default formatting and logs them.
func (s *State) Log(args ...interface{}) {
	s.writeOutput(Output{T: time.Now(), Msg: fmt.Sprint(args...)})
}

// Logf is similar to Log but formats its arguments using fmt.Sprintf.
func (s *State) Logf(format string, args ...interface{}) {
	s.writeOutput(Output{T: time.Now(), Msg: fmt.Sprintf(format, args...)})
}

// Expect records an assertion: if cond is true a passed assertion is counted,
// otherwise a failed assertion with desc as the reason. The test continues
// either way. It returns cond so callers can guard dependent checks.
func (s *State) Expect(cond bool, desc string) bool {
	if cond {
		s.recordPassed()
		return true
	}
	s.recordFailed()
	s.writeOutput(Output{T: time.Now(), Err: NewError("Expectation failed: "+desc, 1)})
	return false
}

// Error formats its arguments using default formatting and records a failed
// assertion while letting the test continue execution.
func (s *State) Error(args ...interface{}) {
	s.recordFailed()
	s.writeOutput(Output{T: time.Now(), Err: NewError(fmt.Sprint(args...), 1)})
}

// Errorf is similar to Error but formats its arguments using fmt.Sprintf.
func (s *State) Errorf(format string, args ...interface{}) {
	s.recordFailed()
	s.writeOutput(Output{T: time.Now(), Err: NewError(fmt.Sprintf(format, args...), 1)})
}

// Fatal is similar to Error but additionally immediately ends the test.
func (s *State) Fatal(args ...interface{}) {
	s.recordFailed()
	s.writeOutput(Output{T: time.Now(), Err: NewError(fmt.Sprint(args...), 1)})
	runtime.Goexit()
}

// Fatalf is similar to Fatal but formats its arguments using fmt.Sprintf.
func (s *State) Fatalf(format string, args ...interface{}) {
	s.recordFailed()
	s.writeOutput(Output{T: time.Now(), Err: NewError(fmt.Sprintf(format, args...), 1)})
	runtime.Goexit()
}

// HasError reports whether the test has recorded failed assertions so far.
func (s *State) HasError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts.Failed > 0
}

// Counts returns the assertion counts recorded so far.
func (s *State) Counts() AssertionCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *State) recordPassed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Passed++
}

func (s *State) recordFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts.Failed++
}

// writeOutput writes o to s.ch. o is discarded if close has already been
// called. The channel send happens outside the lock so that a send blocked on
// a slow reader never wedges the assertion counters.
func (s *State) writeOutput(o Output) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.ch <- o
	}
}

// NewError returns a new Error with the supplied reason. The file, line, and
// stack are captured relative to the caller, with skipFrames additional
// frames skipped.
func NewError(reason string, skipFrames int) *Error {
	_, file, line, _ := runtime.Caller(skipFrames + 1)
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &Error{
		Reason: reason,
		File:   filepath.Base(file),
		Line:   line,
		Stack:  string(buf[:n]),
	}
}
