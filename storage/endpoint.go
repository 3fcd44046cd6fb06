// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"

	"github.com/go-kit/kit/endpoint"
)

func newGetEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*itemRequest)
		return f.Get(ctx, r.t, r.id)
	}
}

func newListEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*listRequest)
		return f.List(ctx, r.t, r.filters)
	}
}

func newByRouteEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return f.GetByRoute(ctx, request.(*routeRequest).route)
	}
}

func newCreateEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*writeRequest)
		doc, err := f.Create(ctx, r.t, r.doc)
		if err != nil {
			return nil, err
		}
		return &writeResponse{doc: doc, created: true}, nil
	}
}

func newUpdateEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*writeRequest)
		doc, err := f.Update(ctx, r.t, r.id, r.doc)
		if err != nil {
			return nil, err
		}
		return &writeResponse{doc: doc}, nil
	}
}

func newDeleteEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*itemRequest)
		deleted, err := f.Delete(ctx, r.t, r.id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"deleted": deleted, "id": r.id}, nil
	}
}

func newBatchEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return f.ApplyBatch(ctx, request.(*batchRequest).ops), nil
	}
}

func newRebuildEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return f.RebuildIndex(ctx, request.(*indexRequest).t)
	}
}

func newValidateEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return f.ValidateIndex(ctx, request.(*indexRequest).t)
	}
}

func newIndexHealthEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(*indexRequest)
		return f.IndexHealth(ctx, r.t, r.maxAge)
	}
}

func newHealthEndpoint(f *Facade) endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		h := f.Health(ctx)
		return &h, nil
	}
}
