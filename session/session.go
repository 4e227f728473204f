// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package session drives a test run from command line to exit code: it
// parses flags into config data, materializes an immutable config, selects
// and orders tests, executes them while streaming events to reporters, and
// maps the outcome to a process exit status.
package session

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"code.cloudfoundry.org/clock"
	"golang.org/x/term"

	"github.com/cruciblehq/crucible/config"
	"github.com/cruciblehq/crucible/internal/command"
	"github.com/cruciblehq/crucible/reporter"
	"github.com/cruciblehq/crucible/testing"
)

const (
	// Name identifies the framework in help and identification output.
	Name = "Crucible"
	// Version is the framework version string.
	Version = "1.2.0"
	// docsURL points users at the full documentation.
	docsURL = "https://github.com/cruciblehq/crucible/blob/main/docs/Readme.md"
)

const (
	// statusSuccess is returned for a clean run, help, identification, and
	// listings.
	statusSuccess = 0
	// statusStartupError is returned when registration errors were recorded
	// before the session started.
	statusStartupError = 1
	// statusError is returned for configuration errors, unknown reporters,
	// and internal faults. It is also the cap on the failed-assertion status.
	statusError = 255
)

// Session orchestrates one test run. Construct it with a lifecycle Token,
// optionally adjust its sinks and registries, then call Run (or the
// finer-grained ApplyCommandLine / RunConfigured pair).
//
// Settings are re-parseable: ApplyCommandLine may be called again with new
// arguments and discards the previously materialized config. Per-test
// failures are never session errors; they flow through the totals into the
// exit status.
type Session struct {
	tok       *Token
	reg       *testing.Registry
	reporters *reporter.Registry
	out       io.Writer
	errOut    io.Writer
	in        io.Reader
	clk       clock.Clock

	data config.Data

	// cfg and cfgErr memoize the materialized config; both nil means "not
	// built yet". resetConfig clears them.
	cfg    *config.Config
	cfgErr error

	// taggedFilenames guards the filename tagger, which appends tags in
	// place and therefore must run at most once per session.
	taggedFilenames bool
}

// New returns a Session owning the given lifecycle token, wired to the
// global test registry, the default reporter registry, and the process's
// standard streams.
func New(tok *Token) *Session {
	return &Session{
		tok:       tok,
		reg:       testing.GlobalRegistry(),
		reporters: reporter.DefaultRegistry(),
		out:       os.Stdout,
		errOut:    os.Stderr,
		in:        os.Stdin,
		clk:       clock.NewClock(),
	}
}

// SetOutput redirects the session's normal and error output.
func (s *Session) SetOutput(out, errOut io.Writer) {
	s.out = out
	s.errOut = errOut
}

// SetInput replaces the reader used for keypress gates.
func (s *Session) SetInput(r io.Reader) { s.in = r }

// SetRegistries replaces the test and reporter registries. Unit tests use
// this together with private registries to avoid touching global state.
func (s *Session) SetRegistries(reg *testing.Registry, reporters *reporter.Registry) {
	s.reg = reg
	s.reporters = reporters
}

// SetClock replaces the clock used for timeouts, durations, and heartbeats.
func (s *Session) SetClock(clk clock.Clock) { s.clk = clk }

// ConfigData returns the session's mutable configuration data. Host
// processes may adjust it between parsing and running; changes made after
// the config has been materialized require UseConfigData to take effect.
func (s *Session) ConfigData() *config.Data { return &s.data }

// UseConfigData replaces the configuration data wholesale and discards any
// previously materialized config.
func (s *Session) UseConfigData(d *config.Data) {
	s.data = *d
	s.resetConfig()
}

func (s *Session) resetConfig() {
	s.cfg = nil
	s.cfgErr = nil
}

// Config returns the immutable config materialized from the current data,
// building it on first use. The result is memoized, including a failure,
// until the data changes through ApplyCommandLine or UseConfigData.
func (s *Session) Config() (*config.Config, error) {
	if s.cfg == nil && s.cfgErr == nil {
		s.cfg, s.cfgErr = config.New(&s.data, s.reg.Aliases())
	}
	return s.cfg, s.cfgErr
}

// ApplyCommandLine parses args (the command line minus the program name)
// into the session's config data.
//
// A parse failure is reported to the error output and returns a
// configuration-error status without building a config. On success any
// previously materialized config is discarded; if the arguments requested
// help or library identification that output is produced immediately and
// the later run phase becomes a no-op.
func (s *Session) ApplyCommandLine(args []string) int {
	if err := config.Parse(args, &s.data); err != nil {
		fmt.Fprintf(s.errOut, "\n%s %v\n\n", s.highlightError("Error(s) in input:"), err)
		fmt.Fprintf(s.errOut, "Run with -help for usage\n\n")
		return statusError
	}
	s.resetConfig()
	if s.data.ShowHelp {
		s.showHelp()
		return statusSuccess
	}
	if s.data.LibIdentify {
		s.libIdentify()
		return statusSuccess
	}
	return statusSuccess
}

// Run is the all-in-one entry point: surface startup registration errors,
// apply the command line, and execute the configured session.
func (s *Session) Run(args []string) int {
	if errs := s.reg.RegistrationErrors(); len(errs) > 0 {
		fmt.Fprintln(s.errOut, "Errors occurred during startup!")
		for _, err := range errs {
			fmt.Fprintf(s.errOut, "  %v\n", err)
		}
		return statusStartupError
	}
	if code := s.ApplyCommandLine(args); code != statusSuccess {
		return code
	}
	return s.RunConfigured()
}

// RunConfigured executes the session with its current settings, surrounding
// the run with the configured keypress gates.
func (s *Session) RunConfigured() int {
	if s.data.ShowHelp || s.data.LibIdentify {
		return statusSuccess
	}
	if s.data.WaitForKeypress&config.WaitBeforeStart != 0 {
		fmt.Fprintln(s.out, "...waiting for enter/return before starting")
		s.readKeypress()
	}
	code := s.runInternal()
	if s.data.WaitForKeypress&config.WaitBeforeExit != 0 {
		fmt.Fprintf(s.out, "...waiting for enter/return before exiting, with code: %d\n", code)
		s.readKeypress()
	}
	return code
}

// runInternal is the boundary between orchestration and outcome: everything
// below it reports through reporters and totals, everything above it deals
// in exit statuses. Panics escaping the run are caught here and mapped to a
// fault status rather than crashing the host process.
func (s *Session) runInternal() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(s.errOut, "Internal error: %v\n", r)
			code = statusError
		}
	}()

	cfg, err := s.Config()
	if err != nil {
		return command.WriteError(s.errOut, command.NewStatusErrorf(statusError, "%v", err))
	}

	if cfg.FilenamesAsTags() {
		s.applyFilenamesAsTags()
	}

	if cfg.ListRequested() {
		return s.list(cfg)
	}

	totals, err := s.runTests(cfg)
	if err != nil {
		return command.WriteError(s.errOut, command.NewStatusErrorf(statusError, "%v", err))
	}
	failed := totals.Assertions.Failed
	if failed > statusError {
		failed = statusError
	}
	return int(failed)
}

// readKeypress blocks until a line is read from the session's input.
func (s *Session) readKeypress() {
	br := bufio.NewReader(s.in)
	br.ReadString('\n')
}

// highlightError wraps msg in red if the error output is a terminal.
func (s *Session) highlightError(msg string) string {
	if f, ok := s.errOut.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\x1b[31m" + msg + "\x1b[0m"
	}
	return msg
}

func (s *Session) showHelp() {
	fmt.Fprintf(s.out, "\n%s v%s\n", Name, Version)
	fmt.Fprintf(s.out, "usage:\n  <executable> [flags] [test patterns...]\n\n")
	fmt.Fprintf(s.out, "where flags are:\n")
	config.WriteUsage(s.out)
	fmt.Fprintf(s.out, "\nFor more detailed usage please see %s\n\n", docsURL)
}

func (s *Session) libIdentify() {
	fmt.Fprintf(s.out, "%-16s%s\n", "description:", "A test-execution session orchestrator")
	fmt.Fprintf(s.out, "%-16s%s\n", "category:", "testframework")
	fmt.Fprintf(s.out, "%-16s%s\n", "framework:", Name)
	fmt.Fprintf(s.out, "%-16s%s\n", "version:", Version)
}
