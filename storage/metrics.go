// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

const (
	BackendLabel   = "backend"
	TierLabel      = "tier"
	OperationLabel = "operation"

	BackendUsageCounter = "storage_backend_usage_count"
	BackendErrorCounter = "storage_backend_error_count"
	RequestCounter      = "storage_request_count"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: BackendUsageCounter,
				Help: "The number of successful calls to each storage tier",
			},
			BackendLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: BackendErrorCounter,
				Help: "The number of failed calls to each storage tier",
			},
			BackendLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestCounter,
				Help: "The number of reads by operation and the tier that answered",
			},
			OperationLabel,
			TierLabel,
		),
	)
}

type Measures struct {
	fx.In
	Usage    *prometheus.CounterVec `name:"storage_backend_usage_count"`
	Errors   *prometheus.CounterVec `name:"storage_backend_error_count"`
	Requests *prometheus.CounterVec `name:"storage_request_count"`
}

// NewMeasures builds unregistered measures.
func NewMeasures() Measures {
	return Measures{
		Usage:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: BackendUsageCounter}, []string{BackendLabel}),
		Errors:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: BackendErrorCounter}, []string{BackendLabel}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: RequestCounter}, []string{OperationLabel, TierLabel}),
	}
}

// BackendStats are the counts reported by Health.
type BackendStats struct {
	Usage  int64 `json:"usage"`
	Errors int64 `json:"errors"`
}

// usage mirrors the prometheus counters so Health can report them without
// a gatherer.
type usage struct {
	measures Measures
	lock     sync.Mutex
	stats    map[string]*BackendStats
}

func newUsage(m Measures) *usage {
	return &usage{measures: m, stats: map[string]*BackendStats{}}
}

func (u *usage) entry(backend string) *BackendStats {
	s, ok := u.stats[backend]
	if !ok {
		s = &BackendStats{}
		u.stats[backend] = s
	}
	return s
}

func (u *usage) success(backend string) {
	u.lock.Lock()
	u.entry(backend).Usage++
	u.lock.Unlock()
	if u.measures.Usage != nil {
		u.measures.Usage.WithLabelValues(backend).Inc()
	}
}

func (u *usage) failure(backend string) {
	u.lock.Lock()
	u.entry(backend).Errors++
	u.lock.Unlock()
	if u.measures.Errors != nil {
		u.measures.Errors.WithLabelValues(backend).Inc()
	}
}

func (u *usage) served(op string, tier Source) {
	if u.measures.Requests != nil {
		u.measures.Requests.WithLabelValues(op, string(tier)).Inc()
	}
}

func (u *usage) snapshot() map[string]BackendStats {
	u.lock.Lock()
	defer u.lock.Unlock()
	out := make(map[string]BackendStats, len(u.stats))
	for name, s := range u.stats {
		out[name] = *s
	}
	return out
}
