// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

// Counts holds pass/fail/skip counters for one kind of event.
type Counts struct {
	Passed  uint64 `json:"passed"`
	Failed  uint64 `json:"failed"`
	Skipped uint64 `json:"skipped,omitempty"`
}

// Combine returns the element-wise sum of c and o.
func (c Counts) Combine(o Counts) Counts {
	return Counts{
		Passed:  c.Passed + o.Passed,
		Failed:  c.Failed + o.Failed,
		Skipped: c.Skipped + o.Skipped,
	}
}

// Total returns the sum of all counters.
func (c Counts) Total() uint64 {
	return c.Passed + c.Failed + c.Skipped
}

// Totals aggregates assertion and test case counters for a run.
//
// Combine is associative and commutative: folding per-test Totals in any
// grouping yields the same final value, which the session relies on when
// accumulating results.
type Totals struct {
	Assertions Counts `json:"assertions"`
	TestCases  Counts `json:"testCases"`
}

// Combine returns the element-wise sum of t and o.
func (t Totals) Combine(o Totals) Totals {
	return Totals{
		Assertions: t.Assertions.Combine(o.Assertions),
		TestCases:  t.TestCases.Combine(o.TestCases),
	}
}
