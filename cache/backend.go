// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Backend is a byte oriented key/value store with per-entry TTL.
type Backend interface {
	// Get returns the value under key. found is false on a miss or an
	// expired entry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// PatternDeleter is implemented by backends able to delete by glob, where
// '*' matches any run of characters and '?' a single one.
type PatternDeleter interface {
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

type entry struct {
	value   []byte
	expires time.Time
}

// sweepThreshold is the entry count at which Set first drops expired entries.
const sweepThreshold = 1024

// Memory is an in-process Backend. It supports pattern deletes. Expired
// entries are dropped when read, and swept in bulk by Set whenever the map
// has grown to twice its size after the last sweep.
type Memory struct {
	lock      sync.RWMutex
	entries   map[string]entry
	nextSweep int
	now       func() time.Time
}

var (
	_ Backend        = (*Memory)(nil)
	_ PatternDeleter = (*Memory)(nil)
)

// NewMemory returns an empty memory backend. A nil now uses time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries:   map[string]entry{},
		nextSweep: sweepThreshold,
		now:       now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.lock.RLock()
	e, ok := m.entries[key]
	m.lock.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.expired(e) {
		m.lock.Lock()
		if current, ok := m.entries[key]; ok && m.expired(current) {
			delete(m.entries, key)
		}
		m.lock.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if len(m.entries) >= m.nextSweep {
		m.sweep()
	}
	m.entries[key] = e
	return nil
}

// sweep must be called with the write lock held.
func (m *Memory) sweep() {
	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
		}
	}
	m.nextSweep = 2 * len(m.entries)
	if m.nextSweep < sweepThreshold {
		m.nextSweep = sweepThreshold
	}
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lock.Lock()
	delete(m.entries, key)
	m.lock.Unlock()
	return nil
}

func (m *Memory) DeletePattern(_ context.Context, pattern string) (int, error) {
	re, err := globToRegexp(pattern)
	if err != nil {
		return 0, err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	n := 0
	for k := range m.entries {
		if re.MatchString(k) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len counts live and expired entries alike.
func (m *Memory) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e entry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

// globToRegexp follows redis MATCH semantics for '*' and '?'. Unlike
// path.Match, '*' also matches '/', which shows up in route keys.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
