// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/folio/storage"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultPrimaryAddress = ":6600"
	defaultMetricsAddress = ":6601"
	defaultMetricsPath    = "/metrics"
	defaultLivenessPath   = "/live"
	defaultReadTimeout    = 10 * time.Second
)

// ServerConfig is one listener.
type ServerConfig struct {
	Address     string
	ReadTimeout time.Duration
}

// ServersConfig is read from the "servers" key.
type ServersConfig struct {
	Primary ServerConfig
	Metrics ServerConfig

	// MetricsPath defaults to /metrics.
	MetricsPath string

	// LivenessPath answers 200 on the metrics server. Defaults to /live.
	LivenessPath string
}

type PrimaryRoutesIn struct {
	fx.In
	Servers  ServersConfig
	Metrics  touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	Tracing  candlelight.Tracing
	Handlers storage.Handlers
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

type MetricsRoutesIn struct {
	fx.In
	Servers  ServersConfig
	Metrics  touchhttp.ServerInstrumenter `name:"servers.metrics.metrics"`
	Gatherer prometheus.Gatherer
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

// newPrimaryHandler mounts the storage API under apiBase behind recovery,
// tracing and request metrics.
func newPrimaryHandler(in PrimaryRoutesIn) http.Handler {
	router := mux.NewRouter()
	router.Use(otelmux.Middleware("server_primary",
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	))
	router.Use(candlelight.EchoFirstTraceNodeInfo(in.Tracing, false))
	storage.Mount(router.PathPrefix(apiBase).Subrouter(), in.Handlers)

	return alice.New(
		recovery.Middleware(recovery.WithStatusCode(555)),
		in.Metrics.Then,
	).Then(router)
}

func newMetricsHandler(servers ServersConfig, gatherer prometheus.Gatherer) http.Handler {
	metricsPath := servers.MetricsPath
	if metricsPath == "" {
		metricsPath = defaultMetricsPath
	}
	livenessPath := servers.LivenessPath
	if livenessPath == "" {
		livenessPath = defaultLivenessPath
	}

	router := mux.NewRouter()
	router.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.Handle(livenessPath, httpaux.ConstantHandler{StatusCode: http.StatusOK}).Methods(http.MethodGet)
	return router
}

func BuildPrimaryRoutes(in PrimaryRoutesIn) {
	serve(in.LC, in.Logger, primaryServer, in.Servers.Primary, defaultPrimaryAddress, newPrimaryHandler(in))
}

func BuildMetricsRoutes(in MetricsRoutesIn) {
	serve(in.LC, in.Logger, metricsServer, in.Servers.Metrics, defaultMetricsAddress,
		in.Metrics.Then(newMetricsHandler(in.Servers, in.Gatherer)))
}

// serve binds the listener on start so that a bad address fails the app, and
// shuts the server down gracefully on stop.
func serve(lc fx.Lifecycle, logger *zap.Logger, name string, cfg ServerConfig, defaultAddress string, h http.Handler) {
	address := cfg.Address
	if address == "" {
		address = defaultAddress
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	logger = logger.With(zap.String("server", name), zap.String("address", address))
	s := &http.Server{
		Addr:              address,
		Handler:           h,
		ReadHeaderTimeout: readTimeout,
		ErrorLog:          zap.NewStdLog(logger),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			l, err := net.Listen("tcp", address)
			if err != nil {
				return err
			}
			go func() {
				if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server exited", zap.Error(err))
				}
			}()
			logger.Info("server started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("server stopping")
			return s.Shutdown(ctx)
		},
	})
}
