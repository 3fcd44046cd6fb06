// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dedup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/folio/store"
)

func TestConcurrentCallersShareOneExecution(t *testing.T) {
	const n = 20
	g := New(Config{}, nil)

	var (
		invocations atomic.Int32
		started     = make(chan struct{})
		release     = make(chan struct{})
		startOnce   sync.Once
	)
	fn := func(context.Context) (interface{}, error) {
		invocations.Add(1)
		startOnce.Do(func() { close(started) })
		<-release
		return "result", nil
	}

	var wg sync.WaitGroup
	results := make([]interface{}, n)
	errs := make([]error, n)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = g.Execute(context.Background(), "pages:home", fn)
	}()
	<-started

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = g.Execute(context.Background(), "pages:home", fn)
		}()
	}
	// stragglers that miss the flight land in the replay window
	require.Eventually(t, func() bool { return g.Stats().Calls == n }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), invocations.Load())
	for i := 0; i < n; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, "result", results[i])
	}
	assert.Equal(t, int64(1), g.Stats().Executions)
}

func TestErrorsAreSharedAndCleared(t *testing.T) {
	g := New(Config{}, nil)
	boom := errors.New("boom")
	calls := 0

	_, err := g.Execute(context.Background(), "k", func(context.Context) (interface{}, error) {
		calls++
		return nil, boom
	})
	assert.Equal(t, boom, err)

	v, err := g.Execute(context.Background(), "k", func(context.Context) (interface{}, error) {
		calls++
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestWindowReplaysSuccess(t *testing.T) {
	now := time.Unix(100, 0)
	g := New(Config{Window: 100 * time.Millisecond}, nil)
	g.now = func() time.Time { return now }
	calls := 0
	fn := func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	v, _ := g.Execute(context.Background(), "k", fn)
	assert.Equal(t, 1, v)

	now = now.Add(50 * time.Millisecond)
	v, _ = g.Execute(context.Background(), "k", fn)
	assert.Equal(t, 1, v)
	assert.Equal(t, int64(1), g.Stats().WindowHits)

	now = now.Add(50 * time.Millisecond)
	v, _ = g.Execute(context.Background(), "k", fn)
	assert.Equal(t, 2, v)
}

func TestForget(t *testing.T) {
	g := New(Config{Window: time.Hour}, nil)
	calls := 0
	fn := func(context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	v, _ := g.Execute(context.Background(), "k", fn)
	assert.Equal(t, 1, v)
	g.Forget("k")
	v, _ = g.Execute(context.Background(), "k", fn)
	assert.Equal(t, 2, v)
	g.Forget("missing")
}

func TestWaitTimeout(t *testing.T) {
	g := New(Config{WaitTimeout: 20 * time.Millisecond}, nil)
	release := make(chan struct{})
	defer close(release)

	_, err := g.Execute(context.Background(), "slow", func(ctx context.Context) (interface{}, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	})
	assert.True(t, store.IsKind(err, store.KindTransient))
	assert.ErrorIs(t, err, ErrWaitTimeout)
	assert.Equal(t, int64(1), g.Stats().Timeouts)
}

func TestCallerCancel(t *testing.T) {
	g := New(Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Execute(ctx, "k", func(ctx context.Context) (interface{}, error) {
		time.Sleep(10 * time.Millisecond)
		return "late", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo(t *testing.T) {
	g := New(Config{}, nil)
	v, err := Do(context.Background(), g, "k", func(context.Context) (string, error) {
		return "typed", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "typed", v)
}

func TestWorkersBound(t *testing.T) {
	g := New(Config{Workers: 2, Window: -1}, nil)
	var (
		running, peak atomic.Int32
		wg            sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Execute(context.Background(), string(rune('a'+i)), func(context.Context) (interface{}, error) {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return nil, nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
