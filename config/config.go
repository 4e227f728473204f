// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config holds the raw, mutable configuration data populated from
// command-line flags and the immutable Config snapshot materialized from it.
package config

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/cruciblehq/crucible/testing"
)

// KeypressMode describes where the session blocks on a console acknowledgment.
type KeypressMode int

const (
	// WaitNone never blocks.
	WaitNone KeypressMode = 0
	// WaitBeforeStart blocks once before the first test runs.
	WaitBeforeStart KeypressMode = 1 << iota
	// WaitBeforeExit blocks after the run, displaying the exit code.
	WaitBeforeExit
	// WaitBoth blocks at both points.
	WaitBoth = WaitBeforeStart | WaitBeforeExit
)

// RunOrder describes the order in which selected tests execute.
type RunOrder int

const (
	// OrderDeclared runs tests sorted by source location then name.
	OrderDeclared RunOrder = iota
	// OrderLexicographic runs tests sorted by name.
	OrderLexicographic
	// OrderRandom shuffles tests using the run's random source.
	OrderRandom
)

// seedTime requests a time-derived random seed.
const seedTime = "time"

// Data is the raw configuration holder that the command-line parser populates.
// It stays mutable so a host process can adjust it between parsing and the
// run; the session snapshots it into an immutable Config before executing.
type Data struct {
	// Name identifies the run; it becomes the test group's display name.
	Name string
	// Patterns selects tests: one parenthesized tag expression or name globs.
	// Empty means "everything not hidden".
	Patterns []string
	// ReporterNames lists requested reporters in invocation order.
	ReporterNames []string
	// FilenamesAsTags adds a "#<file stem>" tag to every test before the run.
	FilenamesAsTags bool
	// ShowHelp and LibIdentify short-circuit the session without running tests.
	ShowHelp    bool
	LibIdentify bool
	// WaitForKeypress inserts manual synchronization gates around the run.
	WaitForKeypress KeypressMode
	// AbortAfter stops executing further tests once this many assertions have
	// failed. Zero disables aborting.
	AbortAfter int
	// Order selects test execution order.
	Order RunOrder
	// RandomSeed is a decimal seed or "time"; empty is equivalent to "time".
	RandomSeed string
	// TagAliasFile optionally names a YAML file with tag alias definitions.
	TagAliasFile string
	// ListTests, ListTestsJSON, ListTags, and ListReporters request an
	// enumeration instead of an execution.
	ListTests     bool
	ListTestsJSON bool
	ListTags      bool
	ListReporters bool
	// NoColor disables ANSI color on terminal reporters.
	NoColor bool
	// HeartbeatInterval enables periodic heartbeats on stream reporters.
	HeartbeatInterval time.Duration
}

// Config is an immutable snapshot of Data plus everything derived from it:
// the compiled test spec and the seeded random source. Once constructed it is
// read-only for the remainder of the session; changing settings requires
// building a new Config.
type Config struct {
	data Data
	spec *testing.TestSpec
	seed int64
	rnd  *rand.Rand
}

// New materializes a Config from d. Tag aliases from aliases (plus any loaded
// from d.TagAliasFile) are expanded while compiling the test spec; aliases
// may be nil. Construction is the point where configuration errors surface:
// a bad filter expression, seed, or alias file fails here, before any test
// runs.
func New(d *Data, aliases *testing.AliasRegistry) (*Config, error) {
	c := &Config{data: *d}
	c.data.Patterns = append([]string(nil), d.Patterns...)
	c.data.ReporterNames = append([]string(nil), d.ReporterNames...)

	if d.TagAliasFile != "" {
		if aliases == nil {
			aliases = testing.NewAliasRegistry()
		} else {
			aliases = aliases.Clone()
		}
		if err := aliases.LoadFile(d.TagAliasFile); err != nil {
			return nil, err
		}
	}

	spec, err := testing.ParseTestSpec(c.data.Patterns, aliases)
	if err != nil {
		return nil, err
	}
	c.spec = spec

	switch d.RandomSeed {
	case "", seedTime:
		c.seed = time.Now().UnixNano()
	default:
		n, err := strconv.ParseInt(d.RandomSeed, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid random seed %q (want a non-negative integer or %q)", d.RandomSeed, seedTime)
		}
		c.seed = n
	}
	c.rnd = rand.New(rand.NewSource(c.seed))

	if d.AbortAfter < 0 {
		return nil, fmt.Errorf("invalid abort-after count %d", d.AbortAfter)
	}
	return c, nil
}

// Name returns the run's display name.
func (c *Config) Name() string { return c.data.Name }

// ReporterNames returns the requested reporter names in invocation order.
func (c *Config) ReporterNames() []string {
	return append([]string(nil), c.data.ReporterNames...)
}

// FilenamesAsTags reports whether filename-derived tags should be added.
func (c *Config) FilenamesAsTags() bool { return c.data.FilenamesAsTags }

// TestSpec returns the compiled test selection predicate. It never returns
// nil; a spec with no filters matches everything.
func (c *Config) TestSpec() *testing.TestSpec { return c.spec }

// AbortAfter returns the failed-assertion count that aborts the run, or zero.
func (c *Config) AbortAfter() int { return c.data.AbortAfter }

// Order returns the configured execution order.
func (c *Config) Order() RunOrder { return c.data.Order }

// Seed returns the resolved random seed.
func (c *Config) Seed() int64 { return c.seed }

// Rand returns the run's random source, seeded from Seed.
func (c *Config) Rand() *rand.Rand { return c.rnd }

// ListRequested reports whether any enumeration action was requested.
func (c *Config) ListRequested() bool {
	return c.data.ListTests || c.data.ListTestsJSON || c.data.ListTags || c.data.ListReporters
}

// ListTests reports whether a test listing was requested.
func (c *Config) ListTests() bool { return c.data.ListTests }

// ListTestsJSON reports whether a machine-readable test listing was requested.
func (c *Config) ListTestsJSON() bool { return c.data.ListTestsJSON }

// ListTags reports whether a tag listing was requested.
func (c *Config) ListTags() bool { return c.data.ListTags }

// ListReporters reports whether a reporter listing was requested.
func (c *Config) ListReporters() bool { return c.data.ListReporters }

// NoColor reports whether ANSI color is disabled.
func (c *Config) NoColor() bool { return c.data.NoColor }

// HeartbeatInterval returns the heartbeat interval for stream reporters.
func (c *Config) HeartbeatInterval() time.Duration { return c.data.HeartbeatInterval }
