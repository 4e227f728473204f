// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/cruciblehq/crucible/testing"
)

func init() {
	Register("junit", "JUnit XML output", func(o Options) (Reporter, error) {
		return NewJUnit(o.Out), nil
	})
}

// junitSuites is the top-level XML element of a JUnit result.
type junitSuites struct {
	XMLName xml.Name
	Suite   junitSuite `xml:"testsuite"`
}

// junitSuite is an XML element in a JUnit result. Some fields used in JUnit
// XML are not generated: the framework only distinguishes success, failure,
// and skip, so errors are folded into failures.
type junitSuite struct {
	Name     string       `xml:"name,attr"`
	Cases    []*junitCase `xml:"testcase"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Skipped  int          `xml:"skipped,attr"`
}

// junitCase is an element in a JUnit result representing one test case.
type junitCase struct {
	Name      string `xml:"name,attr"`
	Status    string `xml:"status,attr"`         // run or notrun
	Timestamp string `xml:"timestamp,attr"`      // start time, in ISO8601
	Time      string `xml:"time,attr,omitempty"` // duration, in seconds (with a decimal point)

	Failures []*junitFailure `xml:"failure,omitempty"`
	Skipped  *junitSkipped   `xml:"skipped,omitempty"`
}

// junitFailure represents one failed assertion within a test case.
type junitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Details string `xml:",cdata"`
}

// junitSkipped marks a test case that was not executed.
type junitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnit accumulates run events and renders them as a JUnit XML document when
// the test group ends.
type JUnit struct {
	w        io.Writer
	cases    []*junitCase
	current  *junitCase // case being executed, nil between tests
	started  time.Time
	failed   int
	skipped  int
	writeErr error
}

// NewJUnit returns a JUnit XML reporter writing to w.
func NewJUnit(w io.Writer) *JUnit {
	return &JUnit{w: w}
}

// TestGroupStarting implements Reporter.
func (j *JUnit) TestGroupStarting(name string, index, count int) {}

// TestStarting implements Reporter.
func (j *JUnit) TestStarting(t *testing.TestCase) {
	j.started = time.Now()
	j.current = &junitCase{
		Name:      t.Name,
		Status:    "run",
		Timestamp: j.started.UTC().Format("2006-01-02T15:04:05"),
	}
}

// TestLog implements Reporter. Log messages are not part of JUnit output.
func (j *JUnit) TestLog(t *testing.TestCase, ts time.Time, msg string) {}

// TestError implements Reporter.
func (j *JUnit) TestError(t *testing.TestCase, ts time.Time, e *testing.Error) {
	if j.current == nil {
		return
	}
	j.current.Failures = append(j.current.Failures, &junitFailure{
		Message: e.Reason,
		Details: fmt.Sprintf("%s:%d\n%s", e.File, e.Line, e.Stack),
	})
}

// TestEnded implements Reporter.
func (j *JUnit) TestEnded(t *testing.TestCase, r Result) {
	if j.current == nil {
		return
	}
	// Decimal point distinguishes seconds from nanoseconds notation,
	// e.g. "1.0" for one second.
	j.current.Time = fmt.Sprintf("%.1f", r.Duration.Seconds())
	if r.TimedOut {
		j.current.Failures = append(j.current.Failures, &junitFailure{Message: "test timed out"})
	}
	if r.Failed() {
		j.failed++
	}
	j.cases = append(j.cases, j.current)
	j.current = nil
}

// SkipTest implements Reporter.
func (j *JUnit) SkipTest(t *testing.TestCase) {
	j.skipped++
	j.cases = append(j.cases, &junitCase{
		Name:    t.Name,
		Status:  "notrun",
		Skipped: &junitSkipped{Message: "not selected"},
	})
}

// TestGroupEnded implements Reporter.
func (j *JUnit) TestGroupEnded(name string, totals Totals, index, count int) {
	suites := junitSuites{
		XMLName: xml.Name{Local: "testsuites"},
		Suite: junitSuite{
			Name:     name,
			Cases:    j.cases,
			Tests:    len(j.cases),
			Failures: j.failed,
			Skipped:  j.skipped,
		},
	}
	b, err := xml.MarshalIndent(&suites, "", "  ")
	if err != nil {
		j.writeErr = err
		return
	}
	if _, err := j.w.Write(append(b, '\n')); err != nil {
		j.writeErr = err
	}
}

// Close implements Reporter, returning any error hit while writing the document.
func (j *JUnit) Close() error { return j.writeErr }
