// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
)

func TestValidateConfig(t *testing.T) {
	type testCase struct {
		Description    string
		Input          *Config
		ExpectedErr    error
		ExpectedConfig *Config
	}

	myAmazingClient := &http.Client{Timeout: time.Hour}

	tcs := []testCase{
		{
			Description: "All default values",
			Input:       &Config{Address: "http://docs-api.example.com"},
			ExpectedConfig: &Config{
				Address:    "http://docs-api.example.com",
				Path:       defaultPath,
				Timeout:    defaultTimeout,
				HTTPClient: &http.Client{Timeout: defaultTimeout},
			},
		},
		{
			Description: "No address",
			Input:       &Config{},
			ExpectedErr: ErrAddressEmpty,
		},
		{
			Description: "All defined",
			Input: &Config{
				Address:    "http://docs-api.example.com",
				Path:       "/v2/graphql",
				Timeout:    time.Minute,
				HTTPClient: myAmazingClient,
			},
			ExpectedConfig: &Config{
				Address:    "http://docs-api.example.com",
				Path:       "/v2/graphql",
				Timeout:    time.Minute,
				HTTPClient: myAmazingClient,
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			err := validateConfig(tc.Input)
			assert.Equal(tc.ExpectedErr, err)
			if tc.ExpectedErr == nil {
				assert.Equal(tc.ExpectedConfig, tc.Input)
			}
		})
	}
}

func TestNewRequiresAddress(t *testing.T) {
	c, err := New(Config{}, NewMeasures(), nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrAddressEmpty)
}

// newTestClient serves every query with handler and returns a client aimed at it.
func newTestClient(t *testing.T, config Config, handler func(rw http.ResponseWriter, r *http.Request, req request)) (*Client, Measures) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(rw, r, req)
	}))
	t.Cleanup(server.Close)

	config.Address = server.URL
	config.HTTPClient = server.Client()
	measures := NewMeasures()
	c, err := New(config, measures, nil)
	require.NoError(t, err)
	return c, measures
}

func reply(rw http.ResponseWriter, payload string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Write([]byte(payload))
}

func TestGet(t *testing.T) {
	tcs := []struct {
		Description   string
		Payload       string
		ExpectedDoc   model.Document
		ExpectedFound bool
	}{
		{
			Description:   "Found",
			Payload:       `{"data":{"document":{"page_id":"home","title":"Home"}}}`,
			ExpectedDoc:   model.Document{"page_id": "home", "title": "Home"},
			ExpectedFound: true,
		},
		{
			Description: "Null document",
			Payload:     `{"data":{"document":null}}`,
		},
		{
			Description: "Missing field",
			Payload:     `{"data":{}}`,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			c, measures := newTestClient(t, Config{}, func(rw http.ResponseWriter, r *http.Request, req request) {
				assert.Equal(http.MethodPost, r.Method)
				assert.Equal(defaultPath, r.URL.Path)
				assert.Equal("application/json", r.Header.Get("Content-Type"))
				assert.Equal(getQuery, req.Query)
				assert.Equal("pages", req.Variables["type"])
				assert.Equal("home", req.Variables["id"])
				reply(rw, tc.Payload)
			})

			doc, found, err := c.Get(context.Background(), model.Pages, "home")
			assert.NoError(err)
			assert.Equal(tc.ExpectedFound, found)
			if tc.ExpectedFound {
				assert.Equal(tc.ExpectedDoc, doc)
			}
			assert.Equal(1.0, testutil.ToFloat64(measures.Requests.WithLabelValues("get", SuccessOutcome)))
		})
	}
}

func TestList(t *testing.T) {
	tcs := []struct {
		Description     string
		Filters         map[string]string
		ExpectedFilters interface{}
	}{
		{
			Description: "No filters",
		},
		{
			Description:     "Filters",
			Filters:         map[string]string{"page_type": "docs"},
			ExpectedFilters: map[string]interface{}{"page_type": "docs"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			c, _ := newTestClient(t, Config{}, func(rw http.ResponseWriter, _ *http.Request, req request) {
				assert.Equal(listQuery, req.Query)
				assert.Equal("pages", req.Variables["type"])
				assert.Equal(tc.ExpectedFilters, req.Variables["filters"])
				reply(rw, `{"data":{"documents":[{"page_id":"home"},{"page_id":"about"}]}}`)
			})

			docs, err := c.List(context.Background(), model.Pages, tc.Filters)
			assert.NoError(err)
			assert.Equal([]model.Document{{"page_id": "home"}, {"page_id": "about"}}, docs)
		})
	}
}

func TestListNull(t *testing.T) {
	c, _ := newTestClient(t, Config{}, func(rw http.ResponseWriter, _ *http.Request, _ request) {
		reply(rw, `{"data":{"documents":null}}`)
	})
	docs, err := c.List(context.Background(), model.Pages, nil)
	assert.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestQueryFailures(t *testing.T) {
	tcs := []struct {
		Description  string
		Code         int
		Payload      string
		ExpectedKind store.Kind
	}{
		{
			Description:  "Non-success status",
			Code:         http.StatusBadGateway,
			Payload:      `{}`,
			ExpectedKind: store.KindTransient,
		},
		{
			Description:  "GraphQL errors",
			Code:         http.StatusOK,
			Payload:      `{"errors":[{"message":"rate limited"}]}`,
			ExpectedKind: store.KindTransient,
		},
		{
			Description:  "Bad JSON",
			Code:         http.StatusOK,
			Payload:      `{"data":`,
			ExpectedKind: store.KindSerialization,
		},
		{
			Description:  "Document is not an object",
			Code:         http.StatusOK,
			Payload:      `{"data":{"document":[1,2]}}`,
			ExpectedKind: store.KindSerialization,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert := assert.New(t)
			c, measures := newTestClient(t, Config{}, func(rw http.ResponseWriter, _ *http.Request, _ request) {
				rw.WriteHeader(tc.Code)
				rw.Write([]byte(tc.Payload))
			})

			doc, found, err := c.Get(context.Background(), model.Pages, "home")
			assert.Nil(doc)
			assert.False(found)
			assert.Equal(tc.ExpectedKind, store.KindOf(err))

			var se *store.Error
			if assert.ErrorAs(err, &se) {
				assert.Equal(Backend, se.Backend)
				assert.Equal("get", se.Op)
			}
			if tc.ExpectedKind == store.KindTransient {
				assert.Equal(1.0, testutil.ToFloat64(measures.Requests.WithLabelValues("get", FailureOutcome)))
			}
		})
	}
}

func TestUnreachable(t *testing.T) {
	c, err := New(Config{Address: "http://127.0.0.1:1", Timeout: time.Second}, NewMeasures(), nil)
	require.NoError(t, err)
	_, err = c.List(context.Background(), model.Pages, nil)
	assert.Equal(t, store.KindTransient, store.KindOf(err))
}

func TestBasicAuth(t *testing.T) {
	assert := assert.New(t)
	c, _ := newTestClient(t, Config{Auth: Auth{Basic: "Basic Zm9saW86c2VjcmV0"}}, func(rw http.ResponseWriter, r *http.Request, _ request) {
		assert.Equal("Basic Zm9saW86c2VjcmV0", r.Header.Get("Authorization"))
		reply(rw, `{"data":{"document":null}}`)
	})
	_, _, err := c.Get(context.Background(), model.Pages, "home")
	assert.NoError(err)
}

func TestPath(t *testing.T) {
	assert := assert.New(t)
	c, _ := newTestClient(t, Config{Path: "/v2/graphql"}, func(rw http.ResponseWriter, r *http.Request, _ request) {
		assert.Equal("/v2/graphql", r.URL.Path)
		reply(rw, `{"data":{"documents":[]}}`)
	})
	docs, err := c.List(context.Background(), model.Endpoints, nil)
	assert.NoError(err)
	assert.Empty(docs)
}
