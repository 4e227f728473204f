// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

// HeartbeatWriter writes heartbeat messages periodically to a MessageWriter.
type HeartbeatWriter struct {
	mu     sync.Mutex
	closed bool
	fin    chan struct{} // sending a message to this channel stops the background goroutine
}

// NewHeartbeatWriter constructs a new HeartbeatWriter for mw. d is the
// interval at which heartbeat messages are written; if d is non-positive, no
// heartbeat message is written. In any case, Stop must be called after use to
// stop the background goroutine. clk drives the interval so unit tests can
// substitute a fake clock.
func NewHeartbeatWriter(mw *MessageWriter, clk clock.Clock, d time.Duration) *HeartbeatWriter {
	fin := make(chan struct{})

	go func() {
		defer close(fin)

		if d <= 0 {
			<-fin
			return
		}

		tick := clk.NewTicker(d)
		defer tick.Stop()

		mw.WriteMessage(&Heartbeat{Time: clk.Now()})
		for {
			select {
			case <-tick.C():
				mw.WriteMessage(&Heartbeat{Time: clk.Now()})
			case <-fin:
				return
			}
		}
	}()

	return &HeartbeatWriter{fin: fin}
}

// Stop stops the background goroutine writing heartbeat messages. Once this
// method returns, heartbeat messages are no longer written. Be aware that it
// may block if the underlying writer is blocking. It is safe to call Stop
// multiple times.
func (w *HeartbeatWriter) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	// Since the channel capacity is 0, the background goroutine will never
	// write further heartbeat messages once this send finishes.
	w.fin <- struct{}{}
	w.closed = true
}
