// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/xmidt-org/folio/breaker"
	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/dedup"
	"github.com/xmidt-org/folio/index"
	"github.com/xmidt-org/folio/mirror"
	"github.com/xmidt-org/folio/remote"
	"github.com/xmidt-org/folio/repository"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/validation"
	"github.com/xmidt-org/sallust"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handler is one route of the storage API.
type Handler http.Handler

// Handlers are the storage API routes, keyed by what they serve.
type Handlers struct {
	Get         Handler
	List        Handler
	ByRoute     Handler
	Create      Handler
	Update      Handler
	Delete      Handler
	Batch       Handler
	Rebuild     Handler
	Validate    Handler
	IndexHealth Handler
	Health      Handler
}

type FacadeIn struct {
	fx.In
	Config       Config
	MirrorConfig mirror.Config
	IndexConfig  index.Config
	Breaker      breaker.Config
	Dedup        dedup.Config
	Remote       remote.Config

	Objects        *store.ObjectStore
	Cache          *cache.Layer
	Measures       Measures
	RemoteMeasures remote.Measures
	Logger         *zap.Logger
}

// Provide builds the facade and its routes from configuration.
func Provide() fx.Option {
	return fx.Options(
		ProvideMetrics(),
		remote.ProvideMetrics(),
		fx.Provide(
			NewFromConfig,
			NewHandlers,
		),
	)
}

// NewFromConfig assembles every tier. The mirror is enabled by a root
// directory and the remote API by an address.
func NewFromConfig(in FacadeIn) (*Facade, error) {
	layout := store.Layout{Prefix: in.Config.DataPrefix}

	var (
		m   *mirror.Mirror
		idx *index.Manager
	)
	if in.MirrorConfig.Root != "" {
		m = mirror.NewOS(layout, in.Cache, in.MirrorConfig, in.Logger)
		idx = index.New(in.Objects, layout, in.Cache, m, in.IndexConfig, in.Logger)
	} else {
		idx = index.New(in.Objects, layout, in.Cache, nil, in.IndexConfig, in.Logger)
	}

	repos := repository.NewSet(repository.Config{
		Objects: in.Objects,
		Layout:  layout,
		Logger:  in.Logger,
	}, validation.Defaults())

	var api RemoteAPI
	if in.Remote.Address != "" {
		c, err := remote.New(in.Remote, in.RemoteMeasures, in.Logger)
		if err != nil {
			return nil, err
		}
		api = c
	}

	return New(Options{
		Config:       in.Config,
		Layout:       layout,
		Objects:      in.Objects,
		Mirror:       m,
		Cache:        in.Cache,
		Index:        idx,
		Repositories: repos,
		Breakers:     breaker.NewRegistry(in.Breaker, breaker.WithLogger(in.Logger)),
		Dedup:        dedup.New(in.Dedup, in.Logger),
		Remote:       api,
		Measures:     in.Measures,
		Logger:       in.Logger,
	})
}

// NewHandlers binds the facade to go-kit servers.
func NewHandlers(f *Facade, logger *zap.Logger) Handlers {
	options := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
		kithttp.ServerBefore(requestLogger(logger)),
	}
	server := func(e endpoint.Endpoint, dec kithttp.DecodeRequestFunc, enc kithttp.EncodeResponseFunc) Handler {
		return kithttp.NewServer(e, dec, enc, options...)
	}
	return Handlers{
		Get:         server(newGetEndpoint(f), decodeItemRequest, encodeGetResponse),
		List:        server(newListEndpoint(f), decodeListRequest, encodeResponse),
		ByRoute:     server(newByRouteEndpoint(f), decodeRouteRequest, encodeGetResponse),
		Create:      server(newCreateEndpoint(f), decodeCreateRequest, encodeWriteResponse),
		Update:      server(newUpdateEndpoint(f), decodeUpdateRequest, encodeWriteResponse),
		Delete:      server(newDeleteEndpoint(f), decodeItemRequest, encodeResponse),
		Batch:       server(newBatchEndpoint(f), decodeBatchRequest, encodeResponse),
		Rebuild:     server(newRebuildEndpoint(f), decodeIndexRequest, encodeResponse),
		Validate:    server(newValidateEndpoint(f), decodeIndexRequest, encodeResponse),
		IndexHealth: server(newIndexHealthEndpoint(f), decodeIndexRequest, encodeResponse),
		Health:      server(newHealthEndpoint(f), decodeNothing, encodeHealthResponse),
	}
}

// requestLogger seeds the request context with a logger carrying the route.
func requestLogger(logger *zap.Logger) kithttp.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		l := logger.With(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Any("vars", mux.Vars(r)),
		)
		return sallust.With(ctx, l)
	}
}

// Mount registers the storage routes on r, which is expected to be rooted
// at the API base.
func Mount(r *mux.Router, h Handlers) {
	typePath := "/{" + typeVarKey + "}"
	itemPath := typePath + "/{" + idVarKey + "}"

	r.Methods(http.MethodGet).Path("/health").Handler(h.Health)
	r.Methods(http.MethodPost).Path("/batch").Handler(h.Batch)
	r.Methods(http.MethodGet).Path("/pages/by-route").Handler(h.ByRoute)
	r.Methods(http.MethodPost).Path(typePath + "/index/rebuild").Handler(h.Rebuild)
	r.Methods(http.MethodGet).Path(typePath + "/index/validate").Handler(h.Validate)
	r.Methods(http.MethodGet).Path(typePath + "/index/health").Handler(h.IndexHealth)
	r.Methods(http.MethodGet).Path(typePath).Handler(h.List)
	r.Methods(http.MethodPost).Path(typePath).Handler(h.Create)
	r.Methods(http.MethodGet).Path(itemPath).Handler(h.Get)
	r.Methods(http.MethodPut).Path(itemPath).Handler(h.Update)
	r.Methods(http.MethodDelete).Path(itemPath).Handler(h.Delete)
}
