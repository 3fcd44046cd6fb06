// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DataType is a semantic category mapped onto a TTL.
type DataType string

const (
	Static   DataType = "static"
	List     DataType = "list"
	Detail   DataType = "detail"
	Index    DataType = "index"
	Frequent DataType = "frequent"
)

const defaultVersion = "1"

// DefaultTTLs is used for every category the configuration doesn't set.
var DefaultTTLs = map[DataType]time.Duration{
	Static:   24 * time.Hour,
	List:     5 * time.Minute,
	Detail:   5 * time.Minute,
	Index:    10 * time.Minute,
	Frequent: time.Minute,
}

// Layer composes versioned, namespaced keys over a Backend and encodes
// values as JSON. Backend failures are logged and reported as misses.
type Layer struct {
	backend  Backend
	version  string
	ttls     map[DataType]time.Duration
	measures Measures
	logger   *zap.Logger
}

type options struct {
	namespace string
	ttl       time.Duration
	dataType  DataType
}

// Option tunes a single cache call.
type Option func(*options)

// InNamespace prefixes the key with ns.
func InNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithTTL sets an explicit TTL, overriding any data type.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// ForDataType picks the TTL configured for dt.
func ForDataType(dt DataType) Option {
	return func(o *options) { o.dataType = dt }
}

// NewLayer wraps backend. TTLs missing from cfg fall back to DefaultTTLs.
func NewLayer(backend Backend, cfg Config, measures Measures, logger *zap.Logger) *Layer {
	if logger == nil {
		logger = zap.NewNop()
	}
	version := cfg.Version
	if version == "" {
		version = defaultVersion
	}
	ttls := make(map[DataType]time.Duration, len(DefaultTTLs))
	for dt, ttl := range DefaultTTLs {
		ttls[dt] = ttl
	}
	for name, ttl := range cfg.TTL {
		if ttl > 0 {
			ttls[DataType(strings.ToLower(name))] = ttl
		}
	}
	return &Layer{
		backend:  backend,
		version:  version,
		ttls:     ttls,
		measures: measures,
		logger:   logger,
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Key returns the backend key for key: {namespace}:v{version}:{key}, or
// v{version}:{key} without a namespace.
func (l *Layer) Key(key string, opts ...Option) string {
	return l.key(key, collect(opts))
}

func (l *Layer) key(key string, o options) string {
	k := "v" + l.version + ":" + key
	if o.namespace != "" {
		k = o.namespace + ":" + k
	}
	return k
}

// Version is the configured cache version.
func (l *Layer) Version() string {
	return l.version
}

// TTLFor maps dt onto its TTL. Unknown types get the Detail TTL.
func (l *Layer) TTLFor(dt DataType) time.Duration {
	if ttl, ok := l.ttls[dt]; ok {
		return ttl
	}
	return l.ttls[Detail]
}

func (l *Layer) ttl(o options) time.Duration {
	if o.ttl > 0 {
		return o.ttl
	}
	if o.dataType != "" {
		return l.TTLFor(o.dataType)
	}
	return l.ttls[Detail]
}

// Get decodes the cached value into dst. It reports false on a miss, a
// backend failure or an undecodable entry.
func (l *Layer) Get(ctx context.Context, key string, dst interface{}, opts ...Option) bool {
	o := collect(opts)
	k := l.key(key, o)
	data, found, err := l.backend.Get(ctx, k)
	if err != nil {
		l.logger.Warn("cache get failed", zap.String("key", k), zap.Error(err))
		l.miss(o.namespace)
		return false
	}
	if !found {
		l.miss(o.namespace)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		l.logger.Warn("dropping undecodable cache entry", zap.String("key", k), zap.Error(err))
		_ = l.backend.Delete(ctx, k)
		l.miss(o.namespace)
		return false
	}
	l.hit(o.namespace)
	return true
}

// Set stores value, JSON encoded.
func (l *Layer) Set(ctx context.Context, key string, value interface{}, opts ...Option) error {
	o := collect(opts)
	k := l.key(key, o)
	data, err := json.Marshal(value)
	if err != nil {
		l.logger.Warn("cache value not encodable", zap.String("key", k), zap.Error(err))
		return err
	}
	if err := l.backend.Set(ctx, k, data, l.ttl(o)); err != nil {
		l.logger.Warn("cache set failed", zap.String("key", k), zap.Error(err))
		return err
	}
	return nil
}

func (l *Layer) Delete(ctx context.Context, key string, opts ...Option) error {
	k := l.key(key, collect(opts))
	if err := l.backend.Delete(ctx, k); err != nil {
		l.logger.Warn("cache delete failed", zap.String("key", k), zap.Error(err))
		return err
	}
	return nil
}

// DeletePattern removes every entry of the current version whose key
// matches glob. Backends without pattern support log and delete nothing.
func (l *Layer) DeletePattern(ctx context.Context, glob string, opts ...Option) (int, error) {
	return l.deleteRaw(ctx, l.key(glob, collect(opts)))
}

// InvalidateNamespace removes every entry of ns across all versions.
func (l *Layer) InvalidateNamespace(ctx context.Context, ns string) (int, error) {
	return l.deleteRaw(ctx, ns+":*")
}

func (l *Layer) deleteRaw(ctx context.Context, pattern string) (int, error) {
	pd, ok := l.backend.(PatternDeleter)
	if !ok {
		l.logger.Info("cache backend does not support pattern deletes", zap.String("pattern", pattern))
		return 0, nil
	}
	n, err := pd.DeletePattern(ctx, pattern)
	if err != nil {
		l.logger.Warn("cache pattern delete failed", zap.String("pattern", pattern), zap.Error(err))
		return n, err
	}
	l.logger.Debug("cache pattern deleted", zap.String("pattern", pattern), zap.Int("count", n))
	return n, nil
}

func (l *Layer) hit(ns string) {
	if l.measures.Hits != nil {
		l.measures.Hits.WithLabelValues(namespaceLabel(ns)).Inc()
	}
}

func (l *Layer) miss(ns string) {
	if l.measures.Misses != nil {
		l.measures.Misses.WithLabelValues(namespaceLabel(ns)).Inc()
	}
}

func namespaceLabel(ns string) string {
	if ns == "" {
		return "default"
	}
	return ns
}
