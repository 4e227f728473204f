// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package session

import (
	"strings"

	"github.com/cruciblehq/crucible/testing"
)

// applyFilenamesAsTags appends a tag derived from each test's registration
// filename to its tag list. The tags are appended in place on the registry's
// own instances, so this must run at most once per session.
func (s *Session) applyFilenamesAsTags() {
	if s.taggedFilenames {
		return
	}
	s.taggedFilenames = true
	s.reg.EachTest(func(t *testing.TestCase) {
		if tag := filenameTag(t.File); tag != "" {
			t.Tags = append(t.Tags, tag)
		}
	})
}

// filenameTag converts a source path to its tag form: the base name with
// directories and the trailing extension stripped, prefixed with '#'.
// Both slash styles are handled so registration sites recorded on other
// platforms still reduce to the same tag.
func filenameTag(path string) string {
	stem := path
	if i := strings.LastIndexAny(stem, `/\`); i >= 0 {
		stem = stem[i+1:]
	}
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	if stem == "" {
		return ""
	}
	return "#" + stem
}
