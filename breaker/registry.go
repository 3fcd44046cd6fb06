// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package breaker

import (
	"sort"
	"sync"
)

// Registry hands out one breaker per dependency name, created on first use.
type Registry struct {
	lock     sync.Mutex
	config   Config
	opts     []Option
	breakers map[string]*Breaker
}

func NewRegistry(config Config, opts ...Option) *Registry {
	return &Registry{
		config:   config,
		opts:     opts,
		breakers: map[string]*Breaker{},
	}
}

func (r *Registry) Get(name string) *Breaker {
	r.lock.Lock()
	defer r.lock.Unlock()
	b, ok := r.breakers[name]
	if !ok {
		b = New(name, r.config, r.opts...)
		r.breakers[name] = b
	}
	return b
}

// States snapshots every breaker created so far, sorted by name.
func (r *Registry) States() []Snapshot {
	r.lock.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.lock.Unlock()

	out := make([]Snapshot, 0, len(breakers))
	for _, b := range breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
