// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
)

// exitTimeout is extra time granted to a test function to notice its expired
// context and return before the run is declared timed out.
const exitTimeout = 3 * time.Second

// RunConfig contains details about how an individual test should be run.
type RunConfig struct {
	// Clock is used to enforce the test's run timeout. The real clock is used
	// if nil; unit tests may substitute a fake.
	Clock clock.Clock
}

// Run executes t's function and blocks until it has either finished or
// overrun its timeout, whichever comes first. Log messages and failed
// assertions are streamed to ch as the test produces them; ch is closed once
// the function completes.
//
// The assertion counts recorded so far and a flag reporting whether the
// function finished within the allotted time are returned. The function
// executes in a goroutine and may still be running if it ignores its
// deadline; when false is returned, the caller is responsible for reporting
// that the test timed out and ch will never be closed.
func Run(ctx context.Context, t *TestCase, ch chan<- Output, cfg *RunConfig) (AssertionCounts, bool) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewClock()
	}

	s := newState(t, ch)

	// The test function runs in its own goroutine so that a buggy function
	// that never returns doesn't wedge the whole session.
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(ch)
		tctx, cancel := timeoutContext(ctx, t.Timeout)
		defer cancel()
		runAndRecover(t.Func, tctx, s)
	}()

	if t.Timeout <= 0 {
		<-done
		return s.Counts(), true
	}

	select {
	case <-done:
		return s.Counts(), true
	case <-clk.After(t.Timeout + exitTimeout):
		// Discard any output the runaway function produces from now on.
		s.close()
		return s.Counts(), false
	}
}

// timeoutContext returns a context and cancelation function derived from ctx
// with the specified timeout. If timeout is zero or negative (indicating an
// unset timeout), no timeout is applied.
func timeoutContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// runAndRecover runs f synchronously with the given context and state,
// recovering and recording a failed assertion if it panics. f runs within a
// goroutine to avoid making the calling goroutine exit if the test calls
// s.Fatal (which calls runtime.Goexit).
func runAndRecover(f TestFunc, ctx context.Context, s *State) {
	done := make(chan struct{}, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.Error("Panic: ", r)
			}
			done <- struct{}{}
		}()
		f(ctx, s)
	}()
	<-done
}
