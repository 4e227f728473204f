// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package testing

var globalRegistry *Registry // singleton, initialized on first use

// GlobalRegistry returns the process-wide registry containing tests
// registered by calls to AddTest.
func GlobalRegistry() *Registry {
	if globalRegistry == nil {
		globalRegistry = NewRegistry()
	}
	return globalRegistry
}

// AddTest adds test t to the global registry.
// Registration failures are recorded on the registry and reported as startup
// errors when the session begins; they are never fatal at init time.
func AddTest(t *Test) {
	GlobalRegistry().AddTest(t, 1)
}

// RegisterTagAlias adds a tag alias to the global registry. Like AddTest,
// failures are deferred to session startup.
func RegisterTagAlias(alias, expansion string) {
	GlobalRegistry().RegisterTagAlias(alias, expansion)
}

// SetGlobalRegistryForTesting temporarily sets reg as the global registry.
// The caller must call the returned function later to restore the original
// registry. This is intended for unit tests that need to register tests
// without affecting subsequent tests.
func SetGlobalRegistryForTesting(reg *Registry) (restore func()) {
	orig := globalRegistry
	globalRegistry = reg
	return func() {
		globalRegistry = orig
	}
}
