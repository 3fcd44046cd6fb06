// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"fmt"
	"time"

	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
)

// Report is the outcome of Validate.
type Report struct {
	Type           model.ResourceType `json:"type"`
	Valid          bool               `json:"valid"`
	MissingInIndex []string           `json:"missing_in_index"`
	ExtraInIndex   []string           `json:"extra_in_index"`
	Errors         []string           `json:"errors"`
}

// Err is nil for a valid report and a consistency error otherwise.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	return &store.Error{
		Kind: store.KindConsistency,
		Op:   "validate",
		Key:  string(r.Type),
		Err: fmt.Errorf("%d missing, %d extra, %d other problems",
			len(r.MissingInIndex), len(r.ExtraInIndex), len(r.Errors)),
	}
}

// HealthReport is the outcome of Health. Age is in seconds.
type HealthReport struct {
	Type        model.ResourceType `json:"type"`
	Healthy     bool               `json:"healthy"`
	Age         float64            `json:"age"`
	IsStale     bool               `json:"is_stale"`
	Total       int                `json:"total"`
	LastUpdated time.Time          `json:"last_updated,omitempty"`
	Warnings    []string           `json:"warnings"`
}
