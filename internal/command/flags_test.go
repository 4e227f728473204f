// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import (
	"flag"
	"io/ioutil"
	"reflect"
	"testing"
)

func TestEnumFlag(t *testing.T) {
	type testEnum int
	const (
		testVal0 testEnum = iota
		testVal1
		testVal2
	)

	for _, tc := range []struct {
		args   []string // args to parse
		def    string   // default value for flag
		exp    testEnum // expected value
		expErr bool     // if true, error is expected
	}{
		{[]string{}, "val0", testVal0, false},
		{[]string{"-flag=val0"}, "val0", testVal0, false},
		{[]string{"-flag=val1"}, "val0", testVal1, false},
		{[]string{"-flag=val2"}, "val0", testVal2, false},
		{[]string{"-flag=bogus"}, "val0", testVal0, true},
		{[]string{"-flag"}, "val0", testVal0, true},
	} {
		valid := map[string]int{"val0": int(testVal0), "val1": int(testVal1), "val2": int(testVal2)}
		val := testEnum(-1)
		f := func(v int) { val = testEnum(v) }
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(ioutil.Discard)
		fs.Var(NewEnumFlag(valid, f, tc.def), "flag", "usage")

		if err := fs.Parse(tc.args); err != nil && !tc.expErr {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if err == nil && tc.expErr {
			t.Errorf("%v didn't produce expected error", tc.args)
		} else if val != tc.exp {
			t.Errorf("%v resulted in %v; want %v", tc.args, val, tc.exp)
		}
	}
}

func TestRepeatedFlag(t *testing.T) {
	for _, tc := range []struct {
		args []string // args to parse
		exp  []string // expected accumulated values
	}{
		{[]string{}, nil},
		{[]string{"-flag=foo"}, []string{"foo"}},
		{[]string{"-flag=foo", "-flag=bar"}, []string{"foo", "bar"}},
		{[]string{"-flag=bar", "-flag=foo"}, []string{"bar", "foo"}},
	} {
		var f RepeatedFlag
		fs := flag.NewFlagSet("", flag.ContinueOnError)
		fs.SetOutput(ioutil.Discard)
		fs.Var(&f, "flag", "usage")

		if err := fs.Parse(tc.args); err != nil {
			t.Errorf("%v produced error: %v", tc.args, err)
		} else if !reflect.DeepEqual([]string(f), tc.exp) {
			t.Errorf("%v resulted in %v; want %v", tc.args, f, tc.exp)
		}
	}
}

func TestWriteError(t *testing.T) {
	for _, tc := range []struct {
		err       error
		expMsg    string
		expStatus int
	}{
		{NewStatusErrorf(27, "bad %s", "input"), "bad input\n", 27},
		{NewStatusErrorf(2, "already terminated\n"), "already terminated\n", 2},
		{errPlain, "plain\n", 1},
	} {
		var b recordingWriter
		if status := WriteError(&b, tc.err); status != tc.expStatus {
			t.Errorf("WriteError(%v) = %v; want %v", tc.err, status, tc.expStatus)
		}
		if b.s != tc.expMsg {
			t.Errorf("WriteError(%v) wrote %q; want %q", tc.err, b.s, tc.expMsg)
		}
	}
}

var errPlain = &plainError{}

type plainError struct{}

func (*plainError) Error() string { return "plain" }

type recordingWriter struct{ s string }

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.s += string(p)
	return len(p), nil
}
