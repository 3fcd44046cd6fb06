// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package dedup collapses concurrent identical requests into one execution.
package dedup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xmidt-org/folio/store"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

const (
	defaultWorkers     = 10
	defaultWaitTimeout = 30 * time.Second
	defaultWindow      = 100 * time.Millisecond

	sweepThreshold = 64
)

// ErrWaitTimeout is wrapped by the error returned when a caller gives up
// waiting on an execution.
var ErrWaitTimeout = errors.New("timed out waiting for in-flight request")

// Config is read from the "dedup" key.
type Config struct {
	// Workers bounds concurrent executions across all keys.
	Workers int

	// WaitTimeout bounds how long a caller waits for a result.
	WaitTimeout time.Duration

	// Window keeps a successful result around after completion for callers
	// arriving just late. Negative disables it.
	Window time.Duration
}

// Stats are cumulative counters.
type Stats struct {
	Calls      int64 `json:"calls"`
	Executions int64 `json:"executions"`
	WindowHits int64 `json:"window_hits"`
	Timeouts   int64 `json:"timeouts"`
}

type recent struct {
	value interface{}
	at    time.Time
}

type Group struct {
	config Config
	flight singleflight.Group
	sem    *semaphore.Weighted
	now    func() time.Time
	logger *zap.Logger

	lock   sync.Mutex
	recent map[string]recent

	calls, executions, windowHits, timeouts atomic.Int64
}

func New(config Config, logger *zap.Logger) *Group {
	if config.Workers <= 0 {
		config.Workers = defaultWorkers
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = defaultWaitTimeout
	}
	if config.Window == 0 {
		config.Window = defaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Group{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.Workers)),
		now:    time.Now,
		logger: logger,
		recent: map[string]recent{},
	}
}

// Execute runs fn once for every concurrent caller using key. fn receives a
// context detached from any single caller's cancellation and bounded by the
// wait timeout.
func (g *Group) Execute(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	g.calls.Add(1)
	if v, ok := g.fromWindow(key); ok {
		g.windowHits.Add(1)
		return v, nil
	}

	ch := g.flight.DoChan(key, func() (interface{}, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.config.WaitTimeout)
		defer cancel()
		if err := g.sem.Acquire(workCtx, 1); err != nil {
			return nil, &store.Error{Kind: store.KindTransient, Op: "dedup", Key: key, Err: err}
		}
		defer g.sem.Release(1)

		g.executions.Add(1)
		v, err := fn(workCtx)
		if err == nil {
			g.remember(key, v)
		}
		return v, err
	})

	timer := time.NewTimer(g.config.WaitTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-timer.C:
		g.timeouts.Add(1)
		g.flight.Forget(key)
		g.logger.Warn("gave up waiting on in-flight request", zap.String("key", key), zap.Duration("timeout", g.config.WaitTimeout))
		return nil, &store.Error{Kind: store.KindTransient, Op: "dedup", Key: key, Err: ErrWaitTimeout}
	case <-ctx.Done():
		return nil, &store.Error{Kind: store.KindTransient, Op: "dedup", Key: key, Err: ctx.Err()}
	}
}

// Do is Execute with a typed result.
func Do[T any](ctx context.Context, g *Group, key string, fn func(context.Context) (T, error)) (T, error) {
	v, err := g.Execute(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	t, _ := v.(T)
	return t, err
}

// Forget drops any remembered result for key, so the next caller executes.
// A call already in flight keeps running for the callers waiting on it.
func (g *Group) Forget(key string) {
	g.flight.Forget(key)
	g.lock.Lock()
	delete(g.recent, key)
	g.lock.Unlock()
}

func (g *Group) Stats() Stats {
	return Stats{
		Calls:      g.calls.Load(),
		Executions: g.executions.Load(),
		WindowHits: g.windowHits.Load(),
		Timeouts:   g.timeouts.Load(),
	}
}

func (g *Group) fromWindow(key string) (interface{}, bool) {
	if g.config.Window < 0 {
		return nil, false
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	r, ok := g.recent[key]
	if !ok {
		return nil, false
	}
	if g.now().Sub(r.at) >= g.config.Window {
		delete(g.recent, key)
		return nil, false
	}
	return r.value, true
}

func (g *Group) remember(key string, v interface{}) {
	if g.config.Window < 0 {
		return
	}
	now := g.now()
	g.lock.Lock()
	defer g.lock.Unlock()
	if len(g.recent) >= sweepThreshold {
		for k, r := range g.recent {
			if now.Sub(r.at) >= g.config.Window {
				delete(g.recent, k)
			}
		}
	}
	g.recent[key] = recent{value: v, at: now}
}
