// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package storage is the single entry point for reading and writing documents.
// Reads fall through cache, local mirror, object store and remote API in that
// order. Writes go straight to the object store and then patch the index and
// caches.
package storage

import (
	"context"
	"errors"

	"github.com/xmidt-org/folio/breaker"
	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/dedup"
	"github.com/xmidt-org/folio/index"
	"github.com/xmidt-org/folio/mirror"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/remote"
	"github.com/xmidt-org/folio/repository"
	"github.com/xmidt-org/folio/store"
	"go.uber.org/zap"
)

// Source is the tier that answered a read.
type Source string

const (
	SourceCache       Source = "cache"
	SourceLocal       Source = Source(mirror.Backend)
	SourceObjectStore Source = Source(store.ObjectStoreBackend)
	SourceRemote      Source = Source(remote.Backend)
	SourceNone        Source = "none"
)

// DetailNamespace holds cached single documents.
const DetailNamespace = "detail"

var errNoObjectStore = errors.New("object store, index manager and repositories are required")

// Config is read from the "storage" key.
type Config struct {
	// Fallback turns exhausted reads into empty results tagged "none".
	// When false the first tier failure is returned. Defaults to true.
	Fallback *bool

	// MirrorWriteThrough copies every write to the local mirror.
	MirrorWriteThrough bool

	// DataPrefix is prepended to every blob key.
	DataPrefix string
}

func (c Config) fallback() bool {
	return c.Fallback == nil || *c.Fallback
}

// RemoteAPI is the last resort read tier.
type RemoteAPI interface {
	Get(ctx context.Context, t model.ResourceType, id string) (model.Document, bool, error)
	List(ctx context.Context, t model.ResourceType, filters map[string]string) ([]model.Document, error)
}

// Result is the outcome of a single document read.
type Result struct {
	Document model.Document `json:"document"`
	Found    bool           `json:"found"`
	Source   Source         `json:"source"`
}

// ListResult is a page of index summaries. Total counts every match.
type ListResult struct {
	Type   model.ResourceType `json:"type"`
	Items  []model.Summary    `json:"items"`
	Total  int                `json:"total"`
	Source Source             `json:"source"`
}

// Options are the facade's collaborators. Mirror, Cache and Remote are
// optional.
type Options struct {
	Config       Config
	Layout       store.Layout
	Objects      *store.ObjectStore
	Mirror       *mirror.Mirror
	Cache        *cache.Layer
	Index        *index.Manager
	Repositories repository.Set
	Breakers     *breaker.Registry
	Dedup        *dedup.Group
	Remote       RemoteAPI
	Measures     Measures
	Logger       *zap.Logger
}

type Facade struct {
	config   Config
	layout   store.Layout
	objects  *store.ObjectStore
	mirror   *mirror.Mirror
	cache    *cache.Layer
	index    *index.Manager
	repos    repository.Set
	breakers *breaker.Registry
	dedup    *dedup.Group
	remote   RemoteAPI
	usage    *usage
	logger   *zap.Logger
}

func New(o Options) (*Facade, error) {
	if o.Objects == nil || o.Index == nil || o.Repositories == nil {
		return nil, errNoObjectStore
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Cache == nil {
		o.Cache = cache.NewLayer(cache.NewMemory(nil), cache.Config{}, cache.Measures{}, o.Logger)
	}
	if o.Breakers == nil {
		o.Breakers = breaker.NewRegistry(breaker.Config{}, breaker.WithLogger(o.Logger))
	}
	if o.Dedup == nil {
		o.Dedup = dedup.New(dedup.Config{}, o.Logger)
	}
	return &Facade{
		config:   o.Config,
		layout:   o.Layout,
		objects:  o.Objects,
		mirror:   o.Mirror,
		cache:    o.Cache,
		index:    o.Index,
		repos:    o.Repositories,
		breakers: o.Breakers,
		dedup:    o.Dedup,
		remote:   o.Remote,
		usage:    newUsage(o.Measures),
		logger:   o.Logger,
	}, nil
}

func detailKey(t model.ResourceType, id string) string {
	return string(t) + ":" + id
}

// tierFailed records a failed tier. It returns err when the chain must stop.
func (f *Facade) tierFailed(backend, op string, err error) error {
	f.usage.failure(backend)
	f.logger.Warn("storage tier failed", zap.String("backend", backend), zap.String("op", op), zap.Error(err))
	if !f.config.fallback() {
		return store.WithBackend(err, backend, op)
	}
	return nil
}

type getResult struct {
	doc   model.Document
	found bool
}

// Get reads one document through the tiers.
func (f *Facade) Get(ctx context.Context, t model.ResourceType, id string) (Result, error) {
	repo, err := f.repos.For(t)
	if err != nil {
		return Result{}, err
	}

	var cached model.Document
	if f.cache.Get(ctx, detailKey(t, id), &cached, cache.InNamespace(DetailNamespace)) {
		f.usage.served("get", SourceCache)
		return Result{Document: cached, Found: true, Source: SourceCache}, nil
	}

	if f.mirror != nil {
		doc, found, err := f.readMirror(ctx, repo, id)
		switch {
		case err != nil:
			if err := f.tierFailed(mirror.Backend, "get", err); err != nil {
				return Result{}, err
			}
		case found:
			f.usage.success(mirror.Backend)
			return f.found(ctx, t, id, doc, SourceLocal), nil
		default:
			f.usage.success(mirror.Backend)
		}
	}

	r, err := dedup.Do(ctx, f.dedup, "get:"+detailKey(t, id), func(ctx context.Context) (getResult, error) {
		return breaker.Execute(f.breakers.Get(store.ObjectStoreBackend), func() (getResult, error) {
			doc, found, err := repo.Read(ctx, id)
			return getResult{doc: doc, found: found}, err
		})
	})
	if err == nil {
		f.usage.success(store.ObjectStoreBackend)
		if r.found {
			return f.found(ctx, t, id, r.doc.Clone(), SourceObjectStore), nil
		}
		// the source of truth doesn't have it
		f.usage.served("get", SourceObjectStore)
		return Result{Source: SourceObjectStore}, nil
	}
	if err := f.tierFailed(store.ObjectStoreBackend, "get", err); err != nil {
		return Result{}, err
	}

	if f.remote != nil {
		r, err := dedup.Do(ctx, f.dedup, "remote:get:"+detailKey(t, id), func(ctx context.Context) (getResult, error) {
			return breaker.Execute(f.breakers.Get(remote.Backend), func() (getResult, error) {
				doc, found, err := f.remote.Get(ctx, t, id)
				return getResult{doc: doc, found: found}, err
			})
		})
		if err == nil {
			f.usage.success(remote.Backend)
			if r.found {
				return f.found(ctx, t, id, r.doc.Clone(), SourceRemote), nil
			}
			f.usage.served("get", SourceRemote)
			return Result{Source: SourceRemote}, nil
		}
		f.tierFailed(remote.Backend, "get", err)
	}

	f.usage.served("get", SourceNone)
	return Result{Source: SourceNone}, nil
}

func (f *Facade) found(ctx context.Context, t model.ResourceType, id string, doc model.Document, src Source) Result {
	_ = f.cache.Set(ctx, detailKey(t, id), doc, cache.InNamespace(DetailNamespace), cache.ForDataType(cache.Detail))
	f.usage.served("get", src)
	return Result{Document: doc, Found: true, Source: src}
}

func (f *Facade) readMirror(ctx context.Context, repo repository.Repository, id string) (model.Document, bool, error) {
	for _, key := range repo.Candidates(id) {
		doc, found, err := f.mirror.Read(ctx, key)
		if err != nil || found {
			return doc, found, err
		}
	}
	return nil, false, nil
}

// List returns the summaries of t matching filters.
func (f *Facade) List(ctx context.Context, t model.ResourceType, filters Filters) (ListResult, error) {
	if _, err := f.repos.For(t); err != nil {
		return ListResult{}, err
	}
	key := index.ListKey(t, filters.Fingerprint())

	var cached ListResult
	if f.cache.Get(ctx, key, &cached, cache.InNamespace(index.ListNamespace)) {
		cached.Source = SourceCache
		f.usage.served("list", SourceCache)
		return cached, nil
	}

	if f.mirror != nil {
		idx, found, err := f.mirror.ReadIndex(ctx, t)
		switch {
		case err != nil:
			if err := f.tierFailed(mirror.Backend, "list", err); err != nil {
				return ListResult{}, err
			}
		case found:
			f.usage.success(mirror.Backend)
			return f.listed(ctx, key, idx, filters, SourceLocal), nil
		default:
			idx, err := f.indexMirror(ctx, t)
			if err != nil {
				if err := f.tierFailed(mirror.Backend, "list", err); err != nil {
					return ListResult{}, err
				}
				break
			}
			f.usage.success(mirror.Backend)
			if idx != nil {
				return f.listed(ctx, key, idx, filters, SourceLocal), nil
			}
		}
	}

	idx, err := dedup.Do(ctx, f.dedup, "list:"+string(t), func(ctx context.Context) (*model.Index, error) {
		return breaker.Execute(f.breakers.Get(store.ObjectStoreBackend), func() (*model.Index, error) {
			return f.index.Read(ctx, t)
		})
	})
	if err == nil {
		f.usage.success(store.ObjectStoreBackend)
		return f.listed(ctx, key, idx, filters, SourceObjectStore), nil
	}
	if err := f.tierFailed(store.ObjectStoreBackend, "list", err); err != nil {
		return ListResult{}, err
	}

	if f.remote != nil {
		docs, err := dedup.Do(ctx, f.dedup, "remote:"+key, func(ctx context.Context) ([]model.Document, error) {
			return breaker.Execute(f.breakers.Get(remote.Backend), func() ([]model.Document, error) {
				return f.remote.List(ctx, t, filters.remoteFilters())
			})
		})
		if err == nil {
			f.usage.success(remote.Backend)
			return f.listed(ctx, key, index.FromDocuments(t, docs), filters, SourceRemote), nil
		}
		f.tierFailed(remote.Backend, "list", err)
	}

	f.usage.served("list", SourceNone)
	return ListResult{Type: t, Items: []model.Summary{}, Source: SourceNone}, nil
}

// indexMirror builds t's index from the mirror's own files when it has no
// index.json, and saves it there. Only a write through mirror is complete
// enough for that; otherwise, or when the mirror holds no files of t, it
// returns nil.
func (f *Facade) indexMirror(ctx context.Context, t model.ResourceType) (*model.Index, error) {
	if !f.config.MirrorWriteThrough {
		return nil, nil
	}
	items, err := f.mirror.ReadAll(ctx, f.layout.TypePrefix(t))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	docs := make([]model.Document, 0, len(items))
	for _, item := range items {
		docs = append(docs, item.Document)
	}
	idx := index.FromDocuments(t, docs)
	if err := f.mirror.Write(ctx, f.layout.IndexKey(t), idx); err != nil {
		f.logger.Warn("failed to save mirror index", zap.String("type", string(t)), zap.Error(err))
	}
	f.logger.Info("indexed mirror files", zap.String("type", string(t)), zap.Int("total", idx.Total))
	return idx, nil
}

func (f *Facade) listed(ctx context.Context, key string, idx *model.Index, filters Filters, src Source) ListResult {
	items, total := filters.apply(idx)
	r := ListResult{Type: idx.Type, Items: items, Total: total, Source: src}
	_ = f.cache.Set(ctx, key, r, cache.InNamespace(index.ListNamespace), cache.ForDataType(cache.List))
	f.usage.served("list", src)
	return r
}

// GetByRoute resolves a page through the by_route index.
func (f *Facade) GetByRoute(ctx context.Context, route string) (Result, error) {
	ids, err := f.index.Lookup(ctx, model.Pages, "by_route", route)
	if err != nil {
		if err := f.tierFailed(store.ObjectStoreBackend, "get_by_route", err); err != nil {
			return Result{}, err
		}
		return Result{Source: SourceNone}, nil
	}
	if len(ids) == 0 {
		return Result{Source: SourceNone}, nil
	}
	if len(ids) > 1 {
		f.logger.Warn("route maps to several pages", zap.String("route", route), zap.Strings("ids", ids))
	}
	return f.Get(ctx, model.Pages, ids[0])
}
