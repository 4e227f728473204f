// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"flag"
	"io"
	"io/ioutil"

	"github.com/cruciblehq/crucible/internal/command"
)

// NewFlagSet returns a flag set that populates d. Both short and long
// spellings are registered where a short form exists.
func NewFlagSet(d *Data) *flag.FlagSet {
	fs := flag.NewFlagSet("crucible", flag.ContinueOnError)

	fs.StringVar(&d.Name, "name", "tests", "display name for the run")
	fs.StringVar(&d.Name, "n", "tests", "short form of -name")

	rf := (*command.RepeatedFlag)(&d.ReporterNames)
	fs.Var(rf, "reporter", "reporter to use (repeatable; default \"console\")")
	fs.Var(rf, "r", "short form of -reporter")

	fs.BoolVar(&d.FilenamesAsTags, "filenames-as-tags", false, "add a tag derived from each test's source filename")
	fs.BoolVar(&d.FilenamesAsTags, "#", false, "short form of -filenames-as-tags")
	fs.BoolVar(&d.ShowHelp, "help", false, "print usage information and exit")
	fs.BoolVar(&d.ShowHelp, "h", false, "short form of -help")
	fs.BoolVar(&d.LibIdentify, "lib-identify", false, "print framework identification and exit")

	kp := command.NewEnumFlag(map[string]int{
		"never": int(WaitNone),
		"start": int(WaitBeforeStart),
		"exit":  int(WaitBeforeExit),
		"both":  int(WaitBoth),
	}, func(v int) { d.WaitForKeypress = KeypressMode(v) }, "never")
	fs.Var(kp, "wait-for-keypress", "wait for a keypress at the given point: "+kp.QuotedValues())

	fs.IntVar(&d.AbortAfter, "abort-after", 0, "stop running further tests after N assertion failures (0 disables)")
	fs.IntVar(&d.AbortAfter, "x", 0, "short form of -abort-after")

	ord := command.NewEnumFlag(map[string]int{
		"decl": int(OrderDeclared),
		"lex":  int(OrderLexicographic),
		"rand": int(OrderRandom),
	}, func(v int) { d.Order = RunOrder(v) }, "decl")
	fs.Var(ord, "order", "test execution order: "+ord.QuotedValues())

	fs.StringVar(&d.RandomSeed, "rng-seed", "", "random seed as a non-negative integer, or \"time\"")
	fs.StringVar(&d.TagAliasFile, "tag-alias-file", "", "YAML file defining tag aliases")

	fs.BoolVar(&d.ListTests, "list-tests", false, "list matching tests instead of running them")
	fs.BoolVar(&d.ListTestsJSON, "list-tests-json", false, "like -list-tests, but as a JSON array")
	fs.BoolVar(&d.ListTags, "list-tags", false, "list tags of matching tests instead of running them")
	fs.BoolVar(&d.ListReporters, "list-reporters", false, "list registered reporters instead of running tests")

	fs.BoolVar(&d.NoColor, "no-color", false, "disable ANSI color output")
	fs.DurationVar(&d.HeartbeatInterval, "heartbeat-interval", 0, "emit stream heartbeats at this interval (0 disables)")

	return fs
}

// Parse fills d from args (the command line minus the program name).
// Remaining positional arguments become test selection patterns. Each call
// is a complete re-parse: accumulated values from a previous call are
// dropped and scalar fields return to their defaults before parsing. Parse
// itself prints nothing; the caller decides how to present errors.
func Parse(args []string, d *Data) error {
	d.Patterns = nil
	d.ReporterNames = nil
	fs := NewFlagSet(d)
	fs.SetOutput(ioutil.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}
	d.Patterns = fs.Args()
	return nil
}

// WriteUsage writes the flag reference to w.
func WriteUsage(w io.Writer) {
	fs := NewFlagSet(&Data{})
	fs.SetOutput(w)
	fs.PrintDefaults()
}
