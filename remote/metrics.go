// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	RequestCounter = "remote_api_requests_total"
)

// Labels
const (
	OperationLabel = "operation"
	OutcomeLabel   = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RequestCounter,
				Help: "Counter for the number of remote API queries and their outcomes.",
			},
			OperationLabel,
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Requests *prometheus.CounterVec `name:"remote_api_requests_total"`
}

// NewMeasures builds unregistered measures.
func NewMeasures() Measures {
	return Measures{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: RequestCounter}, []string{OperationLabel, OutcomeLabel}),
	}
}

func (m Measures) requests(op, outcome string) {
	if m.Requests != nil {
		m.Requests.WithLabelValues(op, outcome).Inc()
	}
}
