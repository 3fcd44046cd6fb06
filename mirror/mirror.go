// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Backend names the mirror tier in errors and metrics.
const Backend = "local"

// IndexNamespace holds the mirror's cached copies of index blobs.
const IndexNamespace = "mirror_index"

const (
	defaultConcurrency = 10
	defaultItemTimeout = 5 * time.Second
)

// Config is read from the "mirror" key.
type Config struct {
	// Root is the directory mirroring the object store layout.
	Root string

	// Concurrency bounds parallel reads in ReadAll.
	Concurrency int

	// ItemTimeout bounds each read in ReadAll.
	ItemTimeout time.Duration
}

// Mirror is a filesystem copy of the object store, read before the network.
type Mirror struct {
	fs     afero.Fs
	layout store.Layout
	cache  *cache.Layer
	config Config
	logger *zap.Logger
}

// New returns a mirror over fs. Keys are the object store keys, relative to
// the root of fs. A nil cache disables index caching.
func New(fs afero.Fs, layout store.Layout, c *cache.Layer, config Config, logger *zap.Logger) *Mirror {
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency
	}
	if config.ItemTimeout <= 0 {
		config.ItemTimeout = defaultItemTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		fs:     fs,
		layout: layout,
		cache:  c,
		config: config,
		logger: logger,
	}
}

// NewOS returns a mirror rooted at config.Root on the local disk.
func NewOS(layout store.Layout, c *cache.Layer, config Config, logger *zap.Logger) *Mirror {
	return New(afero.NewBasePathFs(afero.NewOsFs(), config.Root), layout, c, config, logger)
}

func fsPath(key string) string {
	return filepath.FromSlash(path.Clean("/" + key))
}

func (m *Mirror) wrap(err error, op, key string) error {
	return &store.Error{Kind: store.KindOf(err), Op: op, Key: key, Backend: Backend, Err: err}
}

// Read returns the document at key. Absent files are reported through found.
func (m *Mirror) Read(ctx context.Context, key string) (model.Document, bool, error) {
	data, found, err := m.readFile(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, &store.Error{Kind: store.KindSerialization, Op: "read", Key: key, Backend: Backend, Err: err}
	}
	return doc, true, nil
}

func (m *Mirror) readFile(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, m.wrap(err, "read", key)
	}
	data, err := afero.ReadFile(m.fs, fsPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, m.wrap(err, "read", key)
	}
	return data, true, nil
}

// Write stores doc at key through a temporary file and a rename.
func (m *Mirror) Write(ctx context.Context, key string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return m.wrap(err, "write", key)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return &store.Error{Kind: store.KindSerialization, Op: "write", Key: key, Backend: Backend, Err: err}
	}
	p := fsPath(key)
	if err := m.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return m.wrap(err, "write", key)
	}
	tmp := p + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, data, 0o644); err != nil {
		return m.wrap(err, "write", key)
	}
	if err := m.fs.Rename(tmp, p); err != nil {
		_ = m.fs.Remove(tmp)
		return m.wrap(err, "write", key)
	}
	return nil
}

// Delete removes key. Absent files are not an error.
func (m *Mirror) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, m.wrap(err, "delete", key)
	}
	err := m.fs.Remove(fsPath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, m.wrap(err, "delete", key)
	}
	return true, nil
}

// List returns up to max JSON keys starting with prefix, sorted.
func (m *Mirror) List(ctx context.Context, prefix string, max int) ([]string, error) {
	dir := prefix
	if !strings.HasSuffix(prefix, "/") {
		dir = path.Dir(prefix)
	}
	root := fsPath(dir)
	keys := []string{}
	err := afero.Walk(m.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(p), "/")
		if store.IsJSONKey(key) && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, m.wrap(err, "list", prefix)
	}
	sort.Strings(keys)
	if max > 0 && len(keys) > max {
		keys = keys[:max]
	}
	return keys, nil
}

// Item is one result of ReadAll.
type Item struct {
	Key      string
	Document model.Document
}

// ReadAll reads every entity under prefix with bounded parallelism. Files
// that fail or time out are logged and skipped. Results keep key order.
func (m *Mirror) ReadAll(ctx context.Context, prefix string) ([]Item, error) {
	keys, err := m.List(ctx, prefix, 0)
	if err != nil {
		return nil, err
	}
	keys = store.EntityKeys(keys)

	results := make([]*Item, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			doc, found, err := m.readWithTimeout(gctx, key)
			if err != nil {
				m.logger.Warn("skipping unreadable mirror file", zap.String("key", key), zap.Error(err))
				return nil
			}
			if found {
				results[i] = &Item{Key: key, Document: doc}
			}
			return nil
		})
	}
	_ = g.Wait()

	items := make([]Item, 0, len(results))
	for _, r := range results {
		if r != nil {
			items = append(items, *r)
		}
	}
	return items, ctx.Err()
}

type readResult struct {
	doc   model.Document
	found bool
	err   error
}

func (m *Mirror) readWithTimeout(ctx context.Context, key string) (model.Document, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.ItemTimeout)
	defer cancel()

	done := make(chan readResult, 1)
	go func() {
		doc, found, err := m.Read(ctx, key)
		done <- readResult{doc: doc, found: found, err: err}
	}()
	select {
	case r := <-done:
		return r.doc, r.found, r.err
	case <-ctx.Done():
		return nil, false, m.wrap(ctx.Err(), "read", key)
	}
}

// ReadIndex returns the mirror's copy of t's index, cached in the
// mirror_index namespace.
func (m *Mirror) ReadIndex(ctx context.Context, t model.ResourceType) (*model.Index, bool, error) {
	if m.cache != nil {
		idx := &model.Index{Type: t}
		if m.cache.Get(ctx, string(t), idx, cache.InNamespace(IndexNamespace)) {
			return idx, true, nil
		}
	}
	key := m.layout.IndexKey(t)
	data, found, err := m.readFile(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	idx := &model.Index{Type: t}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, false, &store.Error{Kind: store.KindSerialization, Op: "read", Key: key, Backend: Backend, Err: err}
	}
	if m.cache != nil {
		_ = m.cache.Set(ctx, string(t), idx, cache.InNamespace(IndexNamespace), cache.ForDataType(cache.Index))
	}
	return idx, true, nil
}

// InvalidateIndex drops the cached copy of t's index.
func (m *Mirror) InvalidateIndex(ctx context.Context, t model.ResourceType) error {
	if m.cache == nil {
		return nil
	}
	return m.cache.Delete(ctx, string(t), cache.InNamespace(IndexNamespace))
}
