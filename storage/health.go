// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"time"

	"github.com/xmidt-org/folio/breaker"
	"github.com/xmidt-org/folio/dedup"
	"github.com/xmidt-org/folio/index"
	"github.com/xmidt-org/folio/model"
	"go.uber.org/zap"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// HealthReport summarizes the facade's view of its backends.
type HealthReport struct {
	Status      string                  `json:"status"`
	ObjectStore string                  `json:"object_store"`
	Backends    map[string]BackendStats `json:"backends"`
	Breakers    []breaker.Snapshot      `json:"breakers"`
	Dedup       dedup.Stats             `json:"dedup"`
}

// Health is degraded when the object store doesn't answer a ping or any
// breaker isn't closed.
func (f *Facade) Health(ctx context.Context) HealthReport {
	h := HealthReport{
		Status:      StatusHealthy,
		ObjectStore: "ok",
		Backends:    f.usage.snapshot(),
		Breakers:    f.breakers.States(),
		Dedup:       f.dedup.Stats(),
	}
	if err := f.objects.Ping(ctx); err != nil {
		f.logger.Warn("object store ping failed", zap.Error(err))
		h.Status = StatusDegraded
		h.ObjectStore = err.Error()
	}
	for _, b := range h.Breakers {
		if b.State != breaker.Closed {
			h.Status = StatusDegraded
		}
	}
	return h
}

// RebuildIndex rebuilds t's index from its blobs and drops cached lists.
func (f *Facade) RebuildIndex(ctx context.Context, t model.ResourceType) (*index.RebuildResult, error) {
	r, err := f.index.Rebuild(ctx, t)
	if err != nil {
		return nil, err
	}
	f.mirrorIndex(ctx, t)
	return r, nil
}

func (f *Facade) ValidateIndex(ctx context.Context, t model.ResourceType) (*index.Report, error) {
	return f.index.Validate(ctx, t)
}

func (f *Facade) IndexHealth(ctx context.Context, t model.ResourceType, maxAge time.Duration) (*index.HealthReport, error) {
	return f.index.Health(ctx, t, maxAge)
}
