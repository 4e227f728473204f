// Copyright 2024 The Crucible Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package reporter

import (
	"fmt"
	"sort"
)

// Factory instantiates a reporter with the supplied options.
type Factory func(o Options) (Reporter, error)

// Description names a registered reporter for listings.
type Description struct {
	Name string
	Desc string
}

// Registry holds named reporter factories plus additive listener factories.
//
// Reporters own primary output responsibilities and are requested by name.
// Listeners observe every run alongside the requested reporters; they are
// instantiated unconditionally, in registration order, and never replace the
// primary reporter(s).
type Registry struct {
	factories map[string]Factory
	descs     map[string]string
	listeners []Factory
}

// NewRegistry returns a new empty reporter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		descs:     make(map[string]string),
	}
}

// Register adds a named reporter factory. Registering the same name twice is
// a programming error and panics.
func (r *Registry) Register(name, desc string, f Factory) {
	if _, ok := r.factories[name]; ok {
		panic(fmt.Sprintf("reporter %q registered twice", name))
	}
	r.factories[name] = f
	r.descs[name] = desc
}

// RegisterListener adds a listener factory. Listeners are instantiated for
// every run in registration order.
func (r *Registry) RegisterListener(f Factory) {
	r.listeners = append(r.listeners, f)
}

// Create instantiates the reporter registered under name.
func (r *Registry) Create(name string, o Options) (Reporter, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("No reporter registered with name: '%s'", name)
	}
	return f(o)
}

// Listeners returns the registered listener factories in registration order.
func (r *Registry) Listeners() []Factory {
	return append([]Factory(nil), r.listeners...)
}

// Registered returns the registered reporters sorted by name.
func (r *Registry) Registered() []Description {
	ds := make([]Description, 0, len(r.factories))
	for name := range r.factories {
		ds = append(ds, Description{Name: name, Desc: r.descs[name]})
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
	return ds
}

// defaultRegistry holds the reporters compiled into the binary, including the
// built-ins registered by this package's init functions.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide reporter registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a named reporter factory to the default registry.
func Register(name, desc string, f Factory) {
	defaultRegistry.Register(name, desc, f)
}

// RegisterListener adds a listener factory to the default registry.
func RegisterListener(f Factory) {
	defaultRegistry.RegisterListener(f)
}
