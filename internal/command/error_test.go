// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package command

import "testing"

func TestStatusError(t *testing.T) {
	e := NewStatusErrorf(255, "bad %s", "config")
	if e.Status() != 255 {
		t.Errorf("Status() = %d; want 255", e.Status())
	}
	if want := "bad config (status 255)"; e.Error() != want {
		t.Errorf("Error() = %q; want %q", e.Error(), want)
	}
}
