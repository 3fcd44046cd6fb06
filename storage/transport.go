// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/httpaux/erraux"
)

// request URL path keys
const (
	typeVarKey = "type"
	idVarKey   = "id"
)

const (
	routeQueryKey  = "route"
	maxAgeQueryKey = "max_age"
)

// ErrorHeaderKey carries the error text on failed responses.
const ErrorHeaderKey = "X-Folio-Error"

const maxBodyBytes = 4 << 20

// ErrCasting indicates there was a middleware wiring mistake with the go-kit style
// encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

type itemRequest struct {
	t  model.ResourceType
	id string
}

type listRequest struct {
	t       model.ResourceType
	filters Filters
}

type routeRequest struct {
	route string
}

type writeRequest struct {
	t   model.ResourceType
	id  string
	doc model.Document
}

type writeResponse struct {
	doc     model.Document
	created bool
}

type batchRequest struct {
	ops []Operation
}

type indexRequest struct {
	t      model.ResourceType
	maxAge time.Duration
}

func badRequest(msg string) error {
	return &erraux.Error{Err: errors.New(msg), Code: http.StatusBadRequest}
}

func resourceType(r *http.Request) (model.ResourceType, error) {
	v, ok := mux.Vars(r)[typeVarKey]
	if !ok {
		return "", badRequest("{type} URL path parameter missing")
	}
	t, err := model.ParseResourceType(v)
	if err != nil {
		return "", &erraux.Error{Err: err, Code: http.StatusNotFound}
	}
	return t, nil
}

func resourceID(r *http.Request) (string, error) {
	id, ok := mux.Vars(r)[idVarKey]
	if !ok || id == "" {
		return "", badRequest("{id} URL path parameter missing")
	}
	return id, nil
}

func decodeItemRequest(_ context.Context, r *http.Request) (interface{}, error) {
	t, err := resourceType(r)
	if err != nil {
		return nil, err
	}
	id, err := resourceID(r)
	if err != nil {
		return nil, err
	}
	return &itemRequest{t: t, id: id}, nil
}

func decodeListRequest(_ context.Context, r *http.Request) (interface{}, error) {
	t, err := resourceType(r)
	if err != nil {
		return nil, err
	}
	filters := Filters{}
	for k, values := range r.URL.Query() {
		if len(values) > 0 {
			filters[k] = values[0]
		}
	}
	return &listRequest{t: t, filters: filters}, nil
}

func decodeRouteRequest(_ context.Context, r *http.Request) (interface{}, error) {
	route := r.URL.Query().Get(routeQueryKey)
	if route == "" {
		return nil, badRequest("route query parameter missing")
	}
	return &routeRequest{route: route}, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("failed to read body")
	}
	if len(data) == 0 {
		return badRequest("request body is empty")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return badRequest("failed to unmarshal json")
	}
	return nil
}

func decodeCreateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	t, err := resourceType(r)
	if err != nil {
		return nil, err
	}
	doc := model.Document{}
	if err := decodeBody(r, &doc); err != nil {
		return nil, err
	}
	return &writeRequest{t: t, doc: doc}, nil
}

func decodeUpdateRequest(_ context.Context, r *http.Request) (interface{}, error) {
	t, err := resourceType(r)
	if err != nil {
		return nil, err
	}
	id, err := resourceID(r)
	if err != nil {
		return nil, err
	}
	doc := model.Document{}
	if err := decodeBody(r, &doc); err != nil {
		return nil, err
	}
	return &writeRequest{t: t, id: id, doc: doc}, nil
}

func decodeBatchRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var body struct {
		Operations []Operation `json:"operations"`
	}
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	return &batchRequest{ops: body.Operations}, nil
}

func decodeIndexRequest(_ context.Context, r *http.Request) (interface{}, error) {
	t, err := resourceType(r)
	if err != nil {
		return nil, err
	}
	req := &indexRequest{t: t}
	if v := r.URL.Query().Get(maxAgeQueryKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, badRequest("max_age must be a duration such as 12h")
		}
		req.maxAge = d
	}
	return req, nil
}

func decodeNothing(context.Context, *http.Request) (interface{}, error) {
	return nil, nil
}

func writeJSON(rw http.ResponseWriter, code int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_, err = rw.Write(data)
	return err
}

func encodeResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	return writeJSON(rw, http.StatusOK, response)
}

func encodeGetResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(Result)
	if !ok {
		return ErrCasting
	}
	code := http.StatusOK
	if !r.Found {
		code = http.StatusNotFound
	}
	return writeJSON(rw, code, r)
}

func encodeWriteResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	r, ok := response.(*writeResponse)
	if !ok {
		return ErrCasting
	}
	code := http.StatusOK
	if r.created {
		code = http.StatusCreated
	}
	return writeJSON(rw, code, r.doc)
}

func encodeHealthResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	h, ok := response.(*HealthReport)
	if !ok {
		return ErrCasting
	}
	code := http.StatusOK
	if h.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	return writeJSON(rw, code, h)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set(ErrorHeaderKey, err.Error())
	var headerer kithttp.Headerer
	if errors.As(err, &headerer) {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	code := http.StatusInternalServerError
	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		code = sc.StatusCode()
	}
	_ = writeJSON(w, code, map[string]string{"error": err.Error()})
}
