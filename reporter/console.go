// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/cruciblehq/crucible/testing"
)

func init() {
	Register("console", "human-readable text output", func(o Options) (Reporter, error) {
		return NewConsole(o.Out, !o.NoColor), nil
	})
}

// ANSI sequences used when color is enabled.
const (
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// Console renders run events as human-readable text.
type Console struct {
	w     io.Writer
	color bool
}

// NewConsole returns a console reporter writing to w. Color is emitted only
// if wantColor is true and w is a terminal.
func NewConsole(w io.Writer, wantColor bool) *Console {
	return &Console{w: w, color: wantColor && writerIsTerminal(w)}
}

// writerIsTerminal reports whether w is backed by a terminal.
func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// paint wraps s in the given ANSI sequence if color is enabled.
func (c *Console) paint(seq, s string) string {
	if !c.color {
		return s
	}
	return seq + s + ansiReset
}

// TestGroupStarting implements Reporter.
func (c *Console) TestGroupStarting(name string, index, count int) {
	fmt.Fprintf(c.w, "Running %s (group %d of %d)\n", name, index, count)
}

// TestStarting implements Reporter.
func (c *Console) TestStarting(t *testing.TestCase) {
	fmt.Fprintf(c.w, "=== RUN  %s\n", t.Name)
}

// TestLog implements Reporter.
func (c *Console) TestLog(t *testing.TestCase, ts time.Time, msg string) {
	fmt.Fprintf(c.w, "    %s\n", msg)
}

// TestError implements Reporter.
func (c *Console) TestError(t *testing.TestCase, ts time.Time, e *testing.Error) {
	fmt.Fprintf(c.w, "    %s %s (%s:%d)\n", c.paint(ansiRed, "ERROR:"), e.Reason, e.File, e.Line)
}

// TestEnded implements Reporter.
func (c *Console) TestEnded(t *testing.TestCase, r Result) {
	verdict := c.paint(ansiGreen, "PASS")
	if r.Failed() {
		verdict = c.paint(ansiRed, "FAIL")
	}
	suffix := ""
	if r.TimedOut {
		suffix = " (timed out)"
	}
	fmt.Fprintf(c.w, "--- %s %s (%v, %d assertions)%s\n",
		verdict, t.Name, r.Duration.Round(time.Millisecond), r.Assertions.Total(), suffix)
}

// SkipTest implements Reporter.
func (c *Console) SkipTest(t *testing.TestCase) {
	fmt.Fprintf(c.w, "--- %s %s\n", c.paint(ansiYellow, "SKIP"), t.Name)
}

// TestGroupEnded implements Reporter.
func (c *Console) TestGroupEnded(name string, totals Totals, index, count int) {
	fmt.Fprintf(c.w, "\ntest cases: %d | %d passed | %d failed | %d skipped\n",
		totals.TestCases.Total(), totals.TestCases.Passed, totals.TestCases.Failed, totals.TestCases.Skipped)
	fmt.Fprintf(c.w, "assertions: %d | %d passed | %d failed\n",
		totals.Assertions.Passed+totals.Assertions.Failed, totals.Assertions.Passed, totals.Assertions.Failed)
}

// Close implements Reporter.
func (c *Console) Close() error { return nil }
