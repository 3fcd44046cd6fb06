// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/xmidt-org/folio/cache/redis"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	MemoryBackend = "memory"
	RedisBackend  = "redis"
)

// Config is read from the "cache" key.
type Config struct {
	// Backend is "memory" or "redis". Defaults to memory.
	Backend string

	Redis redis.Config

	// Version is embedded in every key. Changing it orphans every entry
	// written under the previous value.
	Version string

	// TTL overrides DefaultTTLs by data type name.
	TTL map[string]time.Duration
}

type LayerIn struct {
	fx.In
	Config   Config
	Measures Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		fx.Provide(NewLayerFromConfig),
	)
}

// NewBackend builds the configured backend.
func NewBackend(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "", MemoryBackend:
		return NewMemory(nil), nil
	case RedisBackend:
		c, err := redis.Connect(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func NewLayerFromConfig(in LayerIn) (*Layer, error) {
	backend, err := NewBackend(in.Config)
	if err != nil {
		return nil, err
	}
	if c, ok := backend.(*redis.Client); ok {
		in.LC.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return c.Close()
			},
		})
	}
	in.Logger.Info("cache configured", zap.String("backend", in.Config.Backend), zap.String("version", in.Config.Version))
	return NewLayer(backend, in.Config, in.Measures, in.Logger), nil
}
