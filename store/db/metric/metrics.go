/**
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Labels
const (
	// TypeLabel is for labeling metrics; if there is a single metric for
	// successful queries, the TypeLabel and corresponding query type can be used
	// when incrementing the metric.
	TypeLabel    = "type"
	BackendLabel = "backend"
)

// Generic Metrics
const (
	QueryDurationSeconds = "blob_query_duration_seconds"
	QuerySuccessCounter  = "blob_query_success_count"
	QueryFailureCounter  = "blob_query_failure_count"
	BytesWrittenCounter  = "blob_bytes_written_count"
	BytesReadCounter     = "blob_bytes_read_count"
)

// DynamoDB metrics
const (
	ReadCapacityConsumedCounter  = "read_capacity_unit_consumed"
	WriteCapacityConsumedCounter = "write_capacity_unit_consumed"
)

var queryDurationBuckets = []float64{0.0625, 0.125, .25, .5, 1, 5, 10, 20, 40, 80, 160}

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.HistogramVec(
			prometheus.HistogramOpts{
				Name:    QueryDurationSeconds,
				Help:    "A histogram of latencies for blob store requests.",
				Buckets: queryDurationBuckets,
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QuerySuccessCounter,
				Help: "The total number of successful blob store queries",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: QueryFailureCounter,
				Help: "The total number of failed blob store queries",
			},
			TypeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: BytesWrittenCounter,
				Help: "The total number of bytes written to the blob store",
			},
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: BytesReadCounter,
				Help: "The total number of bytes read from the blob store",
			},
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: ReadCapacityConsumedCounter,
				Help: "The number of read capacity units consumed by the operation.",
			},
			TypeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: WriteCapacityConsumedCounter,
				Help: "The number of write capacity units consumed by the operation.",
			},
			TypeLabel,
		),
	)
}

type Measures struct {
	fx.In
	QueryDuration     prometheus.ObserverVec   `name:"blob_query_duration_seconds"`
	QuerySuccessCount *prometheus.CounterVec   `name:"blob_query_success_count"`
	QueryFailureCount *prometheus.CounterVec   `name:"blob_query_failure_count"`
	BytesWritten      prometheus.Counter       `name:"blob_bytes_written_count"`
	BytesRead         prometheus.Counter       `name:"blob_bytes_read_count"`

	// DynamoDB Metrics
	ReadCapacityUnitConsumedCount  *prometheus.CounterVec `name:"read_capacity_unit_consumed"`
	WriteCapacityUnitConsumedCount *prometheus.CounterVec `name:"write_capacity_unit_consumed"`
}

// NewMeasures builds unregistered measures, for setups that don't run through
// the fx container such as tests and tooling.
func NewMeasures() Measures {
	return Measures{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    QueryDurationSeconds,
			Buckets: queryDurationBuckets,
		}, []string{TypeLabel}),
		QuerySuccessCount: prometheus.NewCounterVec(prometheus.CounterOpts{Name: QuerySuccessCounter}, []string{TypeLabel}),
		QueryFailureCount: prometheus.NewCounterVec(prometheus.CounterOpts{Name: QueryFailureCounter}, []string{TypeLabel}),
		BytesWritten:      prometheus.NewCounter(prometheus.CounterOpts{Name: BytesWrittenCounter}),
		BytesRead:         prometheus.NewCounter(prometheus.CounterOpts{Name: BytesReadCounter}),

		ReadCapacityUnitConsumedCount:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: ReadCapacityConsumedCounter}, []string{TypeLabel}),
		WriteCapacityUnitConsumedCount: prometheus.NewCounterVec(prometheus.CounterOpts{Name: WriteCapacityConsumedCounter}, []string{TypeLabel}),
	}
}
