// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/cruciblehq/crucible/testing"
)

func init() {
	Register("stream", "newline-delimited JSON event stream", func(o Options) (Reporter, error) {
		return NewStream(o.Out, o.HeartbeatInterval, o.clock()), nil
	})
}

// Messages are JSON-marshaled, one per line, and describe the state of a test
// run to machine consumers. A typical sequence is as follows:
//
//	GroupStart (run started)
//		TestStart (first test started)
//			TestLog (first test logged a message)
//		TestEnd (first test ended)
//		TestSkip (second test skipped)
//	GroupEnd (run ended)
//
// Messages of different types are unmarshaled into a single messageUnion
// struct. To be able to infer a message's type, each message struct must
// contain a Time field with a message-type-prefixed JSON name (e.g.
// "groupStartTime" for GroupStart.Time), and all other fields must be
// similarly namespaced.

// GroupStart describes the start of a test group.
type GroupStart struct {
	// Time is the local time at which the group started.
	Time time.Time `json:"groupStartTime"`
	// Name is the group's display name.
	Name string `json:"groupStartName"`
	// Index and Count are the group's position; always 1 of 1 in this core.
	Index int `json:"groupStartIndex"`
	Count int `json:"groupStartCount"`
}

// GroupEnd describes the completion of a test group.
type GroupEnd struct {
	// Time is the local time at which the group ended.
	Time time.Time `json:"groupEndTime"`
	// Name matches the earlier GroupStart.Name.
	Name string `json:"groupEndName"`
	// Totals holds the final aggregated counters.
	Totals Totals `json:"groupEndTotals"`
}

// TestStart describes the start of an individual test.
type TestStart struct {
	// Time is the local time at which the test started.
	Time time.Time `json:"testStartTime"`
	// Test contains details about the test. Func is dropped during marshaling.
	Test testing.TestCase `json:"testStartTest"`
}

// TestLog contains an informative logging message produced by a test.
type TestLog struct {
	// Time is the local time at which the message was logged.
	Time time.Time `json:"testLogTime"`
	// Text is the actual message.
	Text string `json:"testLogText"`
}

// TestError contains a failed assertion produced by a test.
type TestError struct {
	// Time is the local time at which the assertion failed.
	Time time.Time `json:"testErrorTime"`
	// Error describes the failure.
	Error testing.Error `json:"testErrorError"`
}

// TestEnd describes the end of an individual test.
type TestEnd struct {
	// Time is the local time at which the test ended.
	Time time.Time `json:"testEndTime"`
	// Name matches the earlier TestStart.Test.Name.
	Name string `json:"testEndName"`
	// Assertions holds the assertions the test recorded.
	Assertions Counts `json:"testEndAssertions"`
	// TimedOut is true if the test overran its timeout.
	TimedOut bool `json:"testEndTimedOut,omitempty"`
	// DurationMillis is how long the test ran, in milliseconds.
	DurationMillis int64 `json:"testEndDurationMillis"`
}

// TestSkip records that a test was not executed.
type TestSkip struct {
	// Time is the local time at which the skip was reported.
	Time time.Time `json:"testSkipTime"`
	// Name is the skipped test's name.
	Name string `json:"testSkipName"`
}

// Heartbeat is sent periodically to assert that the run is alive.
type Heartbeat struct {
	// Time is the local time at which this message was generated.
	Time time.Time `json:"heartbeatTime"`
}

// messageUnion contains all message types. It aids in marshaling and
// unmarshaling heterogeneous messages.
type messageUnion struct {
	*GroupStart
	*GroupEnd
	*TestStart
	*TestLog
	*TestError
	*TestEnd
	*TestSkip
	*Heartbeat
}

// MessageWriter writes run messages to a sink, one JSON object per line.
// It is safe to call its methods concurrently from multiple goroutines.
type MessageWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewMessageWriter returns a new MessageWriter for writing to w.
func NewMessageWriter(w io.Writer) *MessageWriter {
	return &MessageWriter{enc: json.NewEncoder(w)}
}

// WriteMessage writes msg.
func (mw *MessageWriter) WriteMessage(msg interface{}) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	switch v := msg.(type) {
	case *GroupStart:
		return mw.enc.Encode(&messageUnion{GroupStart: v})
	case *GroupEnd:
		return mw.enc.Encode(&messageUnion{GroupEnd: v})
	case *TestStart:
		return mw.enc.Encode(&messageUnion{TestStart: v})
	case *TestLog:
		return mw.enc.Encode(&messageUnion{TestLog: v})
	case *TestError:
		return mw.enc.Encode(&messageUnion{TestError: v})
	case *TestEnd:
		return mw.enc.Encode(&messageUnion{TestEnd: v})
	case *TestSkip:
		return mw.enc.Encode(&messageUnion{TestSkip: v})
	case *Heartbeat:
		return mw.enc.Encode(&messageUnion{Heartbeat: v})
	default:
		return errors.New("unable to encode message of unknown type")
	}
}

// MessageReader interprets a stream written by MessageWriter.
type MessageReader json.Decoder

// NewMessageReader returns a new MessageReader for reading from r.
func NewMessageReader(r io.Reader) *MessageReader {
	return (*MessageReader)(json.NewDecoder(r))
}

// More returns true if more messages are available.
func (mr *MessageReader) More() bool {
	return (*json.Decoder)(mr).More()
}

// ReadMessage reads and returns the next message.
func (mr *MessageReader) ReadMessage() (interface{}, error) {
	dec := (*json.Decoder)(mr)
	var mu messageUnion
	if err := dec.Decode(&mu); err != nil {
		return nil, fmt.Errorf("unable to decode message: %v", err)
	}
	switch {
	case mu.GroupStart != nil:
		return mu.GroupStart, nil
	case mu.GroupEnd != nil:
		return mu.GroupEnd, nil
	case mu.TestStart != nil:
		return mu.TestStart, nil
	case mu.TestLog != nil:
		return mu.TestLog, nil
	case mu.TestError != nil:
		return mu.TestError, nil
	case mu.TestEnd != nil:
		return mu.TestEnd, nil
	case mu.TestSkip != nil:
		return mu.TestSkip, nil
	case mu.Heartbeat != nil:
		return mu.Heartbeat, nil
	default:
		return nil, errors.New("unable to decode message of unknown type")
	}
}

// Stream renders run events as newline-delimited JSON messages, optionally
// interleaved with periodic heartbeats.
type Stream struct {
	mw         *MessageWriter
	hbInterval time.Duration
	clk        clock.Clock
	hbw        *HeartbeatWriter // non-nil while a group is in flight
}

// NewStream returns a stream reporter writing to w. If hbInterval is
// positive, heartbeat messages are written at that interval from the start of
// the group until the reporter is closed.
func NewStream(w io.Writer, hbInterval time.Duration, clk clock.Clock) *Stream {
	return &Stream{mw: NewMessageWriter(w), hbInterval: hbInterval, clk: clk}
}

// TestGroupStarting implements Reporter.
func (s *Stream) TestGroupStarting(name string, index, count int) {
	s.mw.WriteMessage(&GroupStart{Time: time.Now(), Name: name, Index: index, Count: count})
	if s.hbInterval > 0 && s.hbw == nil {
		s.hbw = NewHeartbeatWriter(s.mw, s.clk, s.hbInterval)
	}
}

// TestStarting implements Reporter.
func (s *Stream) TestStarting(t *testing.TestCase) {
	s.mw.WriteMessage(&TestStart{Time: time.Now(), Test: *t})
}

// TestLog implements Reporter.
func (s *Stream) TestLog(t *testing.TestCase, ts time.Time, msg string) {
	s.mw.WriteMessage(&TestLog{Time: ts, Text: msg})
}

// TestError implements Reporter.
func (s *Stream) TestError(t *testing.TestCase, ts time.Time, e *testing.Error) {
	s.mw.WriteMessage(&TestError{Time: ts, Error: *e})
}

// TestEnded implements Reporter.
func (s *Stream) TestEnded(t *testing.TestCase, r Result) {
	s.mw.WriteMessage(&TestEnd{
		Time:           time.Now(),
		Name:           t.Name,
		Assertions:     r.Assertions,
		TimedOut:       r.TimedOut,
		DurationMillis: r.Duration.Milliseconds(),
	})
}

// SkipTest implements Reporter.
func (s *Stream) SkipTest(t *testing.TestCase) {
	s.mw.WriteMessage(&TestSkip{Time: time.Now(), Name: t.Name})
}

// TestGroupEnded implements Reporter.
func (s *Stream) TestGroupEnded(name string, totals Totals, index, count int) {
	s.mw.WriteMessage(&GroupEnd{Time: time.Now(), Name: name, Totals: totals})
}

// Close implements Reporter.
func (s *Stream) Close() error {
	if s.hbw != nil {
		s.hbw.Stop()
		s.hbw = nil
	}
	return nil
}
