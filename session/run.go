// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package session

import (
	"context"
	"fmt"
	"sort"

	"code.cloudfoundry.org/clock"

	"github.com/cruciblehq/crucible/config"
	"github.com/cruciblehq/crucible/reporter"
	"github.com/cruciblehq/crucible/testing"
)

// runTests executes the run loop: build the composite reporter, announce the
// group, walk every registered test exactly once (run, or skip when filtered
// out or aborting), and announce the final totals. Aborting never causes an
// early return from the loop; remaining tests are skipped individually so
// each one gets exactly one notification.
func (s *Session) runTests(cfg *config.Config) (reporter.Totals, error) {
	rep, err := s.makeReporter(cfg)
	if err != nil {
		return reporter.Totals{}, err
	}
	defer rep.Close()

	rc := &runContext{
		rep:        rep,
		clk:        s.clk,
		abortAfter: cfg.AbortAfter(),
	}

	spec := cfg.TestSpec()
	if !spec.HasFilters() {
		spec = testing.DefaultTestSpec()
	}
	tests := s.orderedTests(cfg)

	name := cfg.Name()
	rep.TestGroupStarting(name, 1, 1)

	var totals reporter.Totals
	for _, t := range tests {
		if rc.aborting() || !spec.Matches(t) {
			rep.SkipTest(t)
			totals.TestCases.Skipped++
			continue
		}
		res := rc.runTest(t)
		totals.Assertions = totals.Assertions.Combine(res.Assertions)
		if res.Failed() {
			totals.TestCases.Failed++
		} else {
			totals.TestCases.Passed++
		}
	}
	rep.TestGroupEnded(name, totals, 1, 1)
	return totals, nil
}

// orderedTests returns the registered tests in the configured execution
// order. The default is a stable sort by source location then name; random
// order shuffles that sorted list with the config's seeded source so a seed
// reproduces the order exactly.
func (s *Session) orderedTests(cfg *config.Config) []*testing.TestCase {
	tests := s.reg.AllTests()
	testing.SortTestCases(tests)
	switch cfg.Order() {
	case config.OrderLexicographic:
		sort.SliceStable(tests, func(i, j int) bool { return tests[i].Name < tests[j].Name })
	case config.OrderRandom:
		cfg.Rand().Shuffle(len(tests), func(i, j int) {
			tests[i], tests[j] = tests[j], tests[i]
		})
	}
	return tests
}

// makeReporter instantiates the configured reporters plus every registered
// listener and combines them into a single fan-out reporter. An unknown
// reporter name is a configuration error surfaced before any test runs.
func (s *Session) makeReporter(cfg *config.Config) (reporter.Reporter, error) {
	o := reporter.Options{
		Out:               s.out,
		NoColor:           cfg.NoColor(),
		HeartbeatInterval: cfg.HeartbeatInterval(),
		Clock:             s.clk,
	}

	names := cfg.ReporterNames()
	if len(names) == 0 {
		names = []string{"console"}
	}

	var rep reporter.Reporter
	for _, name := range names {
		r, err := s.reporters.Create(name, o)
		if err != nil {
			return nil, err
		}
		rep = reporter.Add(rep, r)
	}
	for _, f := range s.reporters.Listeners() {
		r, err := f(o)
		if err != nil {
			return nil, err
		}
		rep = reporter.Add(rep, r)
	}
	return rep, nil
}

// runContext carries the per-run state shared across test executions.
type runContext struct {
	rep        reporter.Reporter
	clk        clock.Clock
	abortAfter int
	failed     uint64 // failed assertions recorded so far, timeouts included
}

// aborting reports whether enough assertions have failed that remaining
// tests should be skipped rather than run.
func (rc *runContext) aborting() bool {
	return rc.abortAfter > 0 && rc.failed >= uint64(rc.abortAfter)
}

// runTest executes a single test, forwarding its streamed output to the
// reporter as it is produced, and emits the TestStarting/TestEnded pair
// around it.
func (rc *runContext) runTest(t *testing.TestCase) reporter.Result {
	rc.rep.TestStarting(t)

	// The copier forwards test output to the reporter while the test runs.
	// quit stops it if the test overruns its timeout, since in that case ch
	// is never closed.
	ch := make(chan testing.Output)
	quit := make(chan struct{})
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		for {
			select {
			case o, ok := <-ch:
				if !ok {
					return
				}
				if o.Err != nil {
					rc.rep.TestError(t, o.T, o.Err)
				} else {
					rc.rep.TestLog(t, o.T, o.Msg)
				}
			case <-quit:
				return
			}
		}
	}()

	start := rc.clk.Now()
	counts, finished := testing.Run(context.Background(), t, ch, &testing.RunConfig{Clock: rc.clk})
	if !finished {
		close(quit)
	}
	<-copyDone

	res := reporter.Result{
		Assertions: reporter.Counts{Passed: counts.Passed, Failed: counts.Failed},
		Duration:   rc.clk.Since(start),
		TimedOut:   !finished,
	}
	if !finished {
		// A timeout counts as one failed assertion so that it shows up in the
		// totals and the exit status like any other failure.
		res.Assertions.Failed++
		rc.rep.TestError(t, rc.clk.Now(), &testing.Error{
			Reason: fmt.Sprintf("Test did not finish within %v", t.Timeout),
			File:   t.File,
			Line:   t.Line,
		})
	}
	rc.failed += res.Assertions.Failed
	rc.rep.TestEnded(t, res)
	return res
}
