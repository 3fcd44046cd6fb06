// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

const (
	NamespaceLabel = "namespace"

	HitCounter  = "cache_hit_count"
	MissCounter = "cache_miss_count"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: HitCounter,
				Help: "The total number of cache hits",
			},
			NamespaceLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: MissCounter,
				Help: "The total number of cache misses, backend failures included",
			},
			NamespaceLabel,
		),
	)
}

type Measures struct {
	fx.In
	Hits   *prometheus.CounterVec `name:"cache_hit_count"`
	Misses *prometheus.CounterVec `name:"cache_miss_count"`
}

// NewMeasures builds unregistered measures.
func NewMeasures() Measures {
	return Measures{
		Hits:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: HitCounter}, []string{NamespaceLabel}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{Name: MissCounter}, []string{NamespaceLabel}),
	}
}
