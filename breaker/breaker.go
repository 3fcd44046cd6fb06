// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xmidt-org/folio/store"
	"go.uber.org/zap"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 2
	defaultTimeout          = 60 * time.Second
)

// Config is read from the "breaker" key.
type Config struct {
	// FailureThreshold consecutive failures open a closed breaker.
	FailureThreshold int

	// SuccessThreshold consecutive successes close a half open breaker.
	SuccessThreshold int

	// Timeout is how long an open breaker fails fast before letting a trial
	// call through.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = defaultSuccessThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Snapshot is a point in time view of a breaker.
type Snapshot struct {
	Name      string    `json:"name"`
	State     State     `json:"state"`
	Failures  int       `json:"failures"`
	Successes int       `json:"successes"`
	OpenedAt  time.Time `json:"opened_at,omitempty"`
}

// Breaker isolates one dependency.
type Breaker struct {
	name   string
	config Config
	now    func() time.Time
	logger *zap.Logger

	// isFailure decides which errors count against the breaker.
	isFailure func(error) bool

	lock      sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

type Option func(*Breaker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Breaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFailurePredicate replaces IsFailure.
func WithFailurePredicate(f func(error) bool) Option {
	return func(b *Breaker) { b.isFailure = f }
}

func New(name string, config Config, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		config:    config.withDefaults(),
		now:       time.Now,
		logger:    zap.NewNop(),
		isFailure: IsFailure,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// IsFailure is the default predicate. Absence, bad data, rejected input and
// caller cancellation say nothing about the dependency's health.
func IsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch store.KindOf(err) {
	case store.KindNotFound, store.KindSerialization, store.KindInvalid, store.KindCircuitOpen:
		return false
	}
	return true
}

func (b *Breaker) Name() string {
	return b.name
}

// State reports the current state. An open breaker whose timeout elapsed is
// still reported open until a call moves it to half open.
func (b *Breaker) State() State {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.state
}

func (b *Breaker) Snapshot() Snapshot {
	b.lock.Lock()
	defer b.lock.Unlock()
	return Snapshot{
		Name:      b.name,
		State:     b.state,
		Failures:  b.failures,
		Successes: b.successes,
		OpenedAt:  b.openedAt,
	}
}

// Call runs fn unless the breaker is open. fn's error is returned as is;
// only the fail-fast path returns a circuit open error.
func (b *Breaker) Call(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

// Execute is Call for functions returning a value.
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var result T
	err := b.Call(func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}

func (b *Breaker) before() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.state != Open {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.config.Timeout {
		return &store.Error{Kind: store.KindCircuitOpen, Op: "call", Backend: b.name, Err: store.ErrCircuitOpen}
	}
	b.transition(HalfOpen)
	return nil
}

func (b *Breaker) after(err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if !b.isFailure(err) {
		b.onSuccess()
		return
	}
	b.onFailure(err)
}

func (b *Breaker) onSuccess() {
	switch b.state {
	case HalfOpen:
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transition(Closed)
		}
	default:
		b.failures = 0
	}
}

func (b *Breaker) onFailure(err error) {
	switch b.state {
	case HalfOpen:
		b.logger.Warn("trial call failed, reopening breaker", zap.String("breaker", b.name), zap.Error(err))
		b.transition(Open)
	case Closed:
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.logger.Warn("opening breaker", zap.String("breaker", b.name), zap.Int("failures", b.failures), zap.Error(err))
			b.transition(Open)
		}
	}
}

// transition must be called with the lock held.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	b.successes = 0
	switch to {
	case Open:
		b.openedAt = b.now()
	case Closed:
		b.failures = 0
		b.openedAt = time.Time{}
	}
	if from != to {
		b.logger.Info("breaker state changed", zap.String("breaker", b.name), zap.Stringer("from", from), zap.Stringer("to", to))
	}
}
