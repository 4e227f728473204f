// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package session

import "sync/atomic"

// tokenActive is nonzero while a lifecycle token is claimed.
var tokenActive uint32

// Token represents exclusive ownership of the process's test session
// lifecycle. Only one token may be live at a time; claiming a second one
// panics. The process entry point mints the token, and unit tests mint and
// release their own.
type Token struct {
	released uint32
}

// NewToken claims the process's session lifecycle. It panics if a previously
// minted token has not been released: two concurrent sessions would race on
// the registries and the process exit code.
func NewToken() *Token {
	if !atomic.CompareAndSwapUint32(&tokenActive, 0, 1) {
		panic("session: lifecycle token already claimed by this process")
	}
	return &Token{}
}

// Release returns the lifecycle claim. It is idempotent.
func (t *Token) Release() {
	if atomic.CompareAndSwapUint32(&t.released, 0, 1) {
		atomic.StoreUint32(&tokenActive, 0)
	}
}
