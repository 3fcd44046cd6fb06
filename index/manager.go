// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package index maintains the denormalized index blob kept next to each
// resource type's documents.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// Namespace holds the manager's cached copy of each index.
	Namespace = "index"

	// ListNamespace holds cached list results. Entries are keyed by ListKey
	// so an index update can drop every list of a type.
	ListNamespace = "list"

	defaultMaxAge      = 24 * time.Hour
	defaultConcurrency = 10
)

// ListKey is the list cache key of t for a canonical filter string.
func ListKey(t model.ResourceType, filters string) string {
	return string(t) + ":" + filters
}

// Config is read from the "index" key.
type Config struct {
	// MaxAge is the default staleness threshold for Health.
	MaxAge time.Duration

	// Concurrency bounds blob reads during Rebuild.
	Concurrency int
}

// MirrorIndex is the part of the local mirror that caches its own copy of an
// index.
type MirrorIndex interface {
	InvalidateIndex(ctx context.Context, t model.ResourceType) error
}

type Manager struct {
	objects *store.ObjectStore
	layout  store.Layout
	cache   *cache.Layer
	mirror  MirrorIndex
	config  Config
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a Manager. cache and mirror may be nil.
func New(objects *store.ObjectStore, layout store.Layout, c *cache.Layer, mirror MirrorIndex, config Config, logger *zap.Logger) *Manager {
	if config.MaxAge <= 0 {
		config.MaxAge = defaultMaxAge
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		objects: objects,
		layout:  layout,
		cache:   c,
		mirror:  mirror,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

func schemaFor(t model.ResourceType) (model.Schema, error) {
	s, ok := model.SchemaFor(t)
	if !ok {
		return model.Schema{}, &store.Error{Kind: store.KindInvalid, Op: "index", Key: string(t), Err: model.ErrUnknownResourceType}
	}
	return s, nil
}

// Read returns t's index, from cache when possible. A missing index blob
// yields an empty index.
func (m *Manager) Read(ctx context.Context, t model.ResourceType) (*model.Index, error) {
	if m.cache != nil {
		idx := &model.Index{Type: t}
		if m.cache.Get(ctx, string(t), idx, cache.InNamespace(Namespace)) {
			return idx, nil
		}
	}
	idx, err := m.readStored(ctx, t)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		_ = m.cache.Set(ctx, string(t), idx, cache.InNamespace(Namespace), cache.ForDataType(cache.Index))
	}
	return idx, nil
}

func (m *Manager) readStored(ctx context.Context, t model.ResourceType) (*model.Index, error) {
	idx, found, err := m.objects.ReadIndex(ctx, t, m.layout.IndexKey(t))
	if err != nil {
		return nil, err
	}
	if !found {
		return model.NewIndex(t), nil
	}
	return idx, nil
}

// AddItem files doc under id, replacing whatever the index held for id.
func (m *Manager) AddItem(ctx context.Context, t model.ResourceType, id string, doc model.Document) error {
	schema, err := schemaFor(t)
	if err != nil {
		return err
	}
	idx, err := m.Read(ctx, t)
	if err != nil {
		return err
	}
	add(idx, schema, id, doc)
	return m.Update(ctx, idx)
}

// RemoveItem drops id from the summaries and every bucket. Nothing is
// written when the index never referenced id.
func (m *Manager) RemoveItem(ctx context.Context, t model.ResourceType, id string) error {
	schema, err := schemaFor(t)
	if err != nil {
		return err
	}
	idx, err := m.Read(ctx, t)
	if err != nil {
		return err
	}
	if !remove(idx, schema, id) {
		return nil
	}
	return m.Update(ctx, idx)
}

// Update persists idx and drops every cached copy of it: the manager's own,
// the mirror's, and all cached lists of the type.
func (m *Manager) Update(ctx context.Context, idx *model.Index) error {
	if idx.Version == "" {
		idx.Version = model.IndexVersion
	}
	idx.LastUpdated = m.now().UTC()
	refresh(idx)
	if err := m.objects.WriteIndex(ctx, m.layout, idx); err != nil {
		return err
	}
	m.invalidate(ctx, idx.Type)
	return nil
}

func (m *Manager) invalidate(ctx context.Context, t model.ResourceType) {
	if m.cache != nil {
		if err := m.cache.Delete(ctx, string(t), cache.InNamespace(Namespace)); err != nil {
			m.logger.Warn("failed to invalidate cached index", zap.Stringer("type", t), zap.Error(err))
		}
		if _, err := m.cache.DeletePattern(ctx, ListKey(t, "*"), cache.InNamespace(ListNamespace)); err != nil {
			m.logger.Warn("failed to invalidate cached lists", zap.Stringer("type", t), zap.Error(err))
		}
	}
	if m.mirror != nil {
		if err := m.mirror.InvalidateIndex(ctx, t); err != nil {
			m.logger.Warn("failed to invalidate mirror index", zap.Stringer("type", t), zap.Error(err))
		}
	}
}

// Lookup returns the ids filed under value in the named index.
func (m *Manager) Lookup(ctx context.Context, t model.ResourceType, name, value string) ([]string, error) {
	idx, err := m.Read(ctx, t)
	if err != nil {
		return nil, err
	}
	ids := idx.Bucket(name, value)
	return append([]string(nil), ids...), nil
}

// entityKeys lists every entity blob of t.
func (m *Manager) entityKeys(ctx context.Context, t model.ResourceType) ([]string, error) {
	var keys []string
	for _, prefix := range m.layout.ListPrefixes(t) {
		found, err := m.objects.List(ctx, prefix, 0)
		if err != nil {
			return nil, err
		}
		keys = append(keys, store.EntityKeys(found)...)
	}
	sort.Strings(keys)
	return keys, nil
}

// RebuildResult describes a rebuild.
type RebuildResult struct {
	Type    model.ResourceType `json:"type"`
	Total   int                `json:"total"`
	Scanned int                `json:"scanned"`
	Errors  []string           `json:"errors"`
}

// Rebuild reconstructs t's index from its blobs. Blobs that can't be read
// are left out and reported.
func (m *Manager) Rebuild(ctx context.Context, t model.ResourceType) (*RebuildResult, error) {
	schema, err := schemaFor(t)
	if err != nil {
		return nil, err
	}
	keys, err := m.entityKeys(ctx, t)
	if err != nil {
		return nil, err
	}

	var (
		docs   = make([]model.Document, len(keys))
		lock   sync.Mutex
		failed = []string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			doc, found, err := m.objects.Read(gctx, key)
			if err == nil && !found {
				err = store.ErrNotFound
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				m.logger.Warn("skipping blob during rebuild", zap.String("key", key), zap.Error(err))
				lock.Lock()
				failed = append(failed, fmt.Sprintf("%s: %v", key, err))
				lock.Unlock()
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, store.WithBackend(err, store.ObjectStoreBackend, "rebuild")
	}

	idx := model.NewIndex(t)
	for i, key := range keys {
		if docs[i] != nil {
			add(idx, schema, store.IDFromKey(key), docs[i])
		}
	}
	if err := m.Update(ctx, idx); err != nil {
		return nil, err
	}
	sort.Strings(failed)
	m.logger.Info("index rebuilt", zap.Stringer("type", t), zap.Int("total", idx.Total), zap.Int("failed", len(failed)))
	return &RebuildResult{Type: t, Total: idx.Total, Scanned: len(keys), Errors: failed}, nil
}

// Validate compares the stored index against the blobs actually present. It
// never repairs anything.
func (m *Manager) Validate(ctx context.Context, t model.ResourceType) (*Report, error) {
	schema, err := schemaFor(t)
	if err != nil {
		return nil, err
	}
	keys, err := m.entityKeys(ctx, t)
	if err != nil {
		return nil, err
	}
	idx, err := m.readStored(ctx, t)
	if err != nil {
		return nil, err
	}

	blobIDs := make(map[string]bool, len(keys))
	for _, k := range keys {
		blobIDs[store.IDFromKey(k)] = true
	}
	indexIDs := map[string]bool{}
	r := &Report{Type: t, MissingInIndex: []string{}, ExtraInIndex: []string{}, Errors: []string{}}
	for _, id := range idx.IDs(schema.IDField) {
		if indexIDs[id] {
			r.Errors = append(r.Errors, fmt.Sprintf("duplicate summary for %q", id))
		}
		indexIDs[id] = true
	}
	if len(indexIDs) != len(idx.Items) && len(r.Errors) == 0 {
		r.Errors = append(r.Errors, "summary without an id")
	}
	if idx.Total != len(idx.Items) {
		r.Errors = append(r.Errors, fmt.Sprintf("total is %d but %d summaries are present", idx.Total, len(idx.Items)))
	}
	for id := range blobIDs {
		if !indexIDs[id] {
			r.MissingInIndex = append(r.MissingInIndex, id)
		}
	}
	for id := range indexIDs {
		if !blobIDs[id] {
			r.ExtraInIndex = append(r.ExtraInIndex, id)
		}
	}
	for name, buckets := range idx.Indexes {
		for value, ids := range buckets {
			for _, id := range ids {
				if !indexIDs[id] {
					r.Errors = append(r.Errors, fmt.Sprintf("%s[%s] references unknown id %q", name, value, id))
				}
			}
		}
	}
	sort.Strings(r.MissingInIndex)
	sort.Strings(r.ExtraInIndex)
	sort.Strings(r.Errors)
	r.Valid = len(r.MissingInIndex) == 0 && len(r.ExtraInIndex) == 0 && len(r.Errors) == 0
	return r, nil
}

// Health judges t's index by the time since it was last written. maxAge <= 0
// uses the configured default.
func (m *Manager) Health(ctx context.Context, t model.ResourceType, maxAge time.Duration) (*HealthReport, error) {
	if maxAge <= 0 {
		maxAge = m.config.MaxAge
	}
	idx, err := m.Read(ctx, t)
	if err != nil {
		return nil, err
	}
	h := &HealthReport{Type: t, Total: idx.Total, Warnings: []string{}}
	if idx.LastUpdated.IsZero() {
		h.IsStale = true
		h.Warnings = append(h.Warnings, "index has never been written")
	} else {
		h.LastUpdated = idx.LastUpdated
		age := m.now().Sub(idx.LastUpdated)
		h.Age = age.Seconds()
		if age > maxAge {
			h.IsStale = true
			h.Warnings = append(h.Warnings, fmt.Sprintf("index is older than %s", maxAge))
		}
	}
	if idx.Total != len(idx.Items) {
		h.Warnings = append(h.Warnings, fmt.Sprintf("total is %d but %d summaries are present", idx.Total, len(idx.Items)))
	}
	if len(idx.Items) == 0 {
		h.Warnings = append(h.Warnings, "index is empty")
	}
	h.Healthy = !h.IsStale && idx.Total == len(idx.Items)
	return h, nil
}
