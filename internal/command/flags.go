// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EnumFlag implements flag.Value for a flag restricted to a fixed set of
// named values, assigning the corresponding constant on each match.
type EnumFlag struct {
	valid  map[string]int
	assign func(int)
	quoted string // accepted values, quoted, for error and usage text
	def    string
}

// NewEnumFlag returns an EnumFlag accepting the names in valid. assign is
// called with the mapped constant whenever a value is set. def names the
// value assigned when the flag is unspecified and must be a key of valid.
func NewEnumFlag(valid map[string]int, assign func(int), def string) *EnumFlag {
	names := make([]string, 0, len(valid))
	for n := range valid {
		names = append(names, strconv.Quote(n))
	}
	sort.Strings(names)

	f := &EnumFlag{valid: valid, assign: assign, quoted: strings.Join(names, ", "), def: def}
	if err := f.Set(def); err != nil {
		panic(err)
	}
	return f
}

// Default returns the default value used if the flag is unset.
func (f *EnumFlag) Default() string { return f.def }

// QuotedValues returns a comma-separated list of quoted values the user can supply.
func (f *EnumFlag) QuotedValues() string { return f.quoted }

func (f *EnumFlag) String() string { return "" }

// Set maps the user-supplied value v to its constant and hands it to the
// assign callback.
func (f *EnumFlag) Set(v string) error {
	ev, ok := f.valid[v]
	if !ok {
		return fmt.Errorf("must be in %s", f.quoted)
	}
	f.assign(ev)
	return nil
}

// RepeatedFlag implements flag.Value around an ordered list of strings that
// accumulates every occurrence of the flag.
type RepeatedFlag []string

func (f *RepeatedFlag) String() string { return strings.Join(*f, ",") }

// Set appends v to the accumulated values.
func (f *RepeatedFlag) Set(v string) error {
	*f = append(*f, v)
	return nil
}
