// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package repository stores one resource type's documents in the object store.
package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	CreatedAtField = "created_at"
	UpdatedAtField = "updated_at"

	listConcurrency = 10
)

// Repository is the write side of one resource type. Every method talks to
// the object store directly.
type Repository interface {
	Type() model.ResourceType

	// Key is where doc, identified by id, is stored.
	Key(id string, doc model.Document) string

	// Candidates are every key id may be stored under, in lookup order.
	Candidates(id string) []string

	// Create stores doc, stamping its timestamps. A missing id is generated.
	Create(ctx context.Context, doc model.Document) (model.Document, error)

	Read(ctx context.Context, id string) (model.Document, bool, error)

	// Update shallow merges patch onto the stored document. It fails with a
	// not found error when id doesn't exist.
	Update(ctx context.Context, id string, patch model.Document) (model.Document, error)

	// Delete removes id. Removing an absent id succeeds.
	Delete(ctx context.Context, id string) (bool, error)

	// List reads up to max documents. max <= 0 means no limit.
	List(ctx context.Context, max int) ([]model.Document, error)
}

// Config carries the dependencies shared by every repository.
type Config struct {
	Objects   *store.ObjectStore
	Layout    store.Layout
	Validator validation.Validator
	Logger    *zap.Logger
}

type keyFunc func(id string, doc model.Document) string
type candidatesFunc func(id string) []string

type blobRepository struct {
	schema     model.Schema
	objects    *store.ObjectStore
	layout     store.Layout
	validator  validation.Validator
	logger     *zap.Logger
	now        func() time.Time
	key        keyFunc
	candidates candidatesFunc
}

func newBlobRepository(t model.ResourceType, config Config) *blobRepository {
	schema, _ := model.SchemaFor(t)
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Validator == nil {
		if v, err := validation.New(t); err == nil {
			config.Validator = v
		}
	}
	r := &blobRepository{
		schema:    schema,
		objects:   config.Objects,
		layout:    config.Layout,
		validator: config.Validator,
		logger:    config.Logger.With(zap.Stringer("type", t)),
		now:       time.Now,
	}
	r.key = func(id string, _ model.Document) string {
		return r.layout.EntityKey(t, id)
	}
	r.candidates = func(id string) []string {
		return []string{r.layout.EntityKey(t, id)}
	}
	return r
}

func NewPages(config Config) Repository {
	return newBlobRepository(model.Pages, config)
}

func NewEndpoints(config Config) Repository {
	return newBlobRepository(model.Endpoints, config)
}

func NewRelationships(config Config) Repository {
	return newBlobRepository(model.Relationships, config)
}

// NewPostman stores configurations under the partition named by their
// config_type.
func NewPostman(config Config) Repository {
	r := newBlobRepository(model.Postman, config)
	r.key = func(id string, doc model.Document) string {
		ct, _ := doc["config_type"].(string)
		return r.layout.PartitionKey(model.Postman, model.PostmanPartition(ct), id)
	}
	r.candidates = func(id string) []string {
		partitions := model.PostmanPartitions()
		keys := make([]string, 0, len(partitions))
		for _, p := range partitions {
			keys = append(keys, r.layout.PartitionKey(model.Postman, p, id))
		}
		return keys
	}
	return r
}

func (r *blobRepository) Type() model.ResourceType {
	return r.schema.Type
}

func (r *blobRepository) Key(id string, doc model.Document) string {
	return r.key(id, doc)
}

func (r *blobRepository) Candidates(id string) []string {
	return r.candidates(id)
}

func (r *blobRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

func (r *blobRepository) validate(doc model.Document) (model.Document, error) {
	if r.validator == nil {
		return doc, nil
	}
	return r.validator.Validate(doc)
}

func (r *blobRepository) Create(ctx context.Context, doc model.Document) (model.Document, error) {
	doc = doc.Clone()
	if doc == nil {
		doc = model.Document{}
	}
	if id, _ := doc[r.schema.IDField].(string); id == "" {
		if _, present := doc[r.schema.IDField]; !present {
			doc[r.schema.IDField] = uuid.NewString()
		}
	}
	doc, err := r.validate(doc)
	if err != nil {
		return nil, err
	}
	ts := r.timestamp()
	doc[CreatedAtField] = ts
	doc[UpdatedAtField] = ts

	id := r.schema.ID(doc)
	if _, err := r.objects.Write(ctx, r.key(id, doc), doc); err != nil {
		return nil, err
	}
	r.logger.Debug("created document", zap.String("id", id))
	return doc, nil
}

func (r *blobRepository) Read(ctx context.Context, id string) (model.Document, bool, error) {
	doc, _, found, err := r.locate(ctx, id)
	return doc, found, err
}

// locate tries every candidate key for id.
func (r *blobRepository) locate(ctx context.Context, id string) (model.Document, string, bool, error) {
	for _, key := range r.candidates(id) {
		doc, found, err := r.objects.Read(ctx, key)
		if err != nil {
			return nil, "", false, err
		}
		if found {
			return doc, key, true, nil
		}
	}
	return nil, "", false, nil
}

func (r *blobRepository) Update(ctx context.Context, id string, patch model.Document) (model.Document, error) {
	existing, oldKey, found, err := r.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &store.Error{Kind: store.KindNotFound, Op: "update", Key: id, Err: store.ErrNotFound}
	}

	merged := existing.Clone()
	for k, v := range patch {
		merged[k] = v
	}
	merged[r.schema.IDField] = id
	if created, ok := existing[CreatedAtField]; ok {
		merged[CreatedAtField] = created
	}
	merged, err = r.validate(merged)
	if err != nil {
		return nil, err
	}
	merged[UpdatedAtField] = r.timestamp()

	newKey := r.key(id, merged)
	if _, err := r.objects.Write(ctx, newKey, merged); err != nil {
		return nil, err
	}
	if newKey != oldKey {
		if _, err := r.objects.Delete(ctx, oldKey); err != nil {
			r.logger.Warn("failed to remove document from its previous location",
				zap.String("id", id), zap.String("key", oldKey), zap.Error(err))
		}
	}
	return merged, nil
}

func (r *blobRepository) Delete(ctx context.Context, id string) (bool, error) {
	for _, key := range r.candidates(id) {
		if _, err := r.objects.Delete(ctx, key); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *blobRepository) List(ctx context.Context, max int) ([]model.Document, error) {
	var keys []string
	for _, prefix := range r.layout.ListPrefixes(r.schema.Type) {
		found, err := r.objects.List(ctx, prefix, 0)
		if err != nil {
			return nil, err
		}
		keys = append(keys, store.EntityKeys(found)...)
	}
	if max > 0 && len(keys) > max {
		keys = keys[:max]
	}

	var (
		docs    = make([]model.Document, len(keys))
		skipped atomic.Int32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			doc, found, err := r.objects.Read(gctx, key)
			if err != nil {
				if store.IsKind(err, store.KindSerialization) {
					r.logger.Warn("skipping unreadable document", zap.String("key", key), zap.Error(err))
					skipped.Add(1)
					return nil
				}
				return err
			}
			if found {
				docs[i] = doc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			out = append(out, d)
		}
	}
	if n := skipped.Load(); n > 0 {
		r.logger.Info("listed with unreadable documents", zap.Int32("skipped", n))
	}
	return out, nil
}

// Set holds the repository of every resource type.
type Set map[model.ResourceType]Repository

// NewSet builds the four repositories. validators may be nil.
func NewSet(config Config, validators validation.Set) Set {
	build := map[model.ResourceType]func(Config) Repository{
		model.Pages:         NewPages,
		model.Endpoints:     NewEndpoints,
		model.Relationships: NewRelationships,
		model.Postman:       NewPostman,
	}
	s := Set{}
	for t, newRepo := range build {
		c := config
		c.Validator = validators[t]
		s[t] = newRepo(c)
	}
	return s
}

// For returns t's repository.
func (s Set) For(t model.ResourceType) (Repository, error) {
	r, ok := s[t]
	if !ok {
		return nil, &store.Error{Kind: store.KindInvalid, Op: "repository", Key: string(t), Err: fmt.Errorf("%w: %s", model.ErrUnknownResourceType, t)}
	}
	return r, nil
}
