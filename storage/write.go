// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"

	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/index"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/repository"
	"github.com/xmidt-org/folio/store"
	"go.uber.org/zap"
)

// Batch operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Operation is one entry of a batch.
type Operation struct {
	Op       string             `json:"op"`
	Type     model.ResourceType `json:"type"`
	ID       string             `json:"id,omitempty"`
	Document model.Document     `json:"document,omitempty"`
}

// BatchEntry reports one operation of a batch. Error is set on failures.
type BatchEntry struct {
	Position int                `json:"position"`
	Op       string             `json:"op"`
	Type     model.ResourceType `json:"type"`
	ID       string             `json:"id,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// BatchResult splits a batch by outcome. Nothing is rolled back.
type BatchResult struct {
	Applied []BatchEntry `json:"applied"`
	Failed  []BatchEntry `json:"failed"`
}

// Create stores a new document and files it in the index.
func (f *Facade) Create(ctx context.Context, t model.ResourceType, doc model.Document) (model.Document, error) {
	repo, err := f.repos.For(t)
	if err != nil {
		return nil, err
	}
	created, err := repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	id := f.idOf(t, created)
	f.mirrorWrite(ctx, repo, id, created)
	if err := f.index.AddItem(ctx, t, id, created); err != nil {
		f.logger.Warn("index update failed after create",
			zap.String("type", string(t)), zap.String("id", id), zap.Error(err))
	}
	f.afterWrite(ctx, t, id)
	return created, nil
}

// Update merges patch onto an existing document.
func (f *Facade) Update(ctx context.Context, t model.ResourceType, id string, patch model.Document) (model.Document, error) {
	repo, err := f.repos.For(t)
	if err != nil {
		return nil, err
	}
	updated, err := repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	f.mirrorWrite(ctx, repo, id, updated)
	if err := f.index.AddItem(ctx, t, id, updated); err != nil {
		f.logger.Warn("index update failed after update",
			zap.String("type", string(t)), zap.String("id", id), zap.Error(err))
	}
	f.afterWrite(ctx, t, id)
	return updated, nil
}

// Delete removes a document and its index entry.
func (f *Facade) Delete(ctx context.Context, t model.ResourceType, id string) (bool, error) {
	repo, err := f.repos.For(t)
	if err != nil {
		return false, err
	}
	ok, err := repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	f.mirrorDelete(ctx, repo, id)
	if err := f.index.RemoveItem(ctx, t, id); err != nil {
		f.logger.Warn("index update failed after delete",
			zap.String("type", string(t)), zap.String("id", id), zap.Error(err))
	}
	f.afterWrite(ctx, t, id)
	return ok, nil
}

// ApplyBatch runs ops in order. A failing operation is recorded and the
// rest still run.
func (f *Facade) ApplyBatch(ctx context.Context, ops []Operation) BatchResult {
	result := BatchResult{Applied: []BatchEntry{}, Failed: []BatchEntry{}}
	for i, op := range ops {
		entry := BatchEntry{Position: i, Op: op.Op, Type: op.Type, ID: op.ID}
		id, err := f.apply(ctx, op)
		if err != nil {
			entry.Error = err.Error()
			result.Failed = append(result.Failed, entry)
			continue
		}
		entry.ID = id
		result.Applied = append(result.Applied, entry)
	}
	return result
}

func (f *Facade) apply(ctx context.Context, op Operation) (string, error) {
	switch op.Op {
	case OpCreate:
		doc, err := f.Create(ctx, op.Type, op.Document)
		if err != nil {
			return "", err
		}
		return f.idOf(op.Type, doc), nil
	case OpUpdate:
		_, err := f.Update(ctx, op.Type, op.ID, op.Document)
		return op.ID, err
	case OpDelete:
		_, err := f.Delete(ctx, op.Type, op.ID)
		return op.ID, err
	default:
		return "", &store.Error{Kind: store.KindInvalid, Op: "batch", Err: fmt.Errorf("unknown operation %q", op.Op)}
	}
}

func (f *Facade) idOf(t model.ResourceType, doc model.Document) string {
	schema, _ := model.SchemaFor(t)
	return schema.ID(doc)
}

// afterWrite drops the cached detail and every cached list of t. The index
// manager already drops the list and index copies when the index changed,
// this covers writes that left the index untouched.
func (f *Facade) afterWrite(ctx context.Context, t model.ResourceType, id string) {
	f.dedup.Forget("get:" + detailKey(t, id))
	f.dedup.Forget("remote:get:" + detailKey(t, id))
	f.dedup.Forget("list:" + string(t))
	if err := f.cache.Delete(ctx, detailKey(t, id), cache.InNamespace(DetailNamespace)); err != nil {
		f.logger.Warn("failed to invalidate cached document", zap.String("id", id), zap.Error(err))
	}
	if _, err := f.cache.DeletePattern(ctx, index.ListKey(t, "*"), cache.InNamespace(index.ListNamespace)); err != nil {
		f.logger.Warn("failed to invalidate cached lists", zap.String("type", string(t)), zap.Error(err))
	}
	f.mirrorIndex(ctx, t)
}

// mirrorWrite keeps the local tier from serving a pre-write copy. With write
// through the new document replaces it, otherwise every copy is dropped so
// reads fall through to the object store.
func (f *Facade) mirrorWrite(ctx context.Context, repo repository.Repository, id string, doc model.Document) {
	if f.mirror == nil {
		return
	}
	if !f.config.MirrorWriteThrough {
		f.mirrorDelete(ctx, repo, id)
		return
	}
	key := repo.Key(id, doc)
	for _, old := range repo.Candidates(id) {
		if old != key {
			_, _ = f.mirror.Delete(ctx, old)
		}
	}
	if err := f.mirror.Write(ctx, key, doc); err != nil {
		f.logger.Warn("mirror write failed", zap.String("key", key), zap.Error(err))
	}
}

func (f *Facade) mirrorDelete(ctx context.Context, repo repository.Repository, id string) {
	if f.mirror == nil {
		return
	}
	for _, key := range repo.Candidates(id) {
		if _, err := f.mirror.Delete(ctx, key); err != nil {
			f.logger.Warn("mirror delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// mirrorIndex copies the stored index of t to the mirror, or drops the
// mirror's copy when writes don't go through to it.
func (f *Facade) mirrorIndex(ctx context.Context, t model.ResourceType) {
	if f.mirror == nil {
		return
	}
	var err error
	if f.config.MirrorWriteThrough {
		var idx *model.Index
		idx, err = f.index.Read(ctx, t)
		if err == nil {
			err = f.mirror.Write(ctx, f.layout.IndexKey(t), idx)
		}
	} else {
		_, err = f.mirror.Delete(ctx, f.layout.IndexKey(t))
	}
	if err == nil {
		err = f.mirror.InvalidateIndex(ctx, t)
	}
	if err != nil {
		f.logger.Warn("failed to sync mirror index", zap.String("type", string(t)), zap.Error(err))
	}
}
