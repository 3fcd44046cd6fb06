// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xmidt-org/bascule/acquire"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Backend names the remote API tier in errors and metrics.
const Backend = "remote_api"

var (
	ErrAddressEmpty        = errors.New("remote API address is required")
	ErrAuthAcquirerFailure = errors.New("failed acquiring auth token")
)

var (
	errNonSuccessResponse = errors.New("remote API responded with a non-success status code")
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
	errJSONMarshal        = errors.New("failed marshaling GraphQL request")
	errGraphQL            = errors.New("remote API returned GraphQL errors")
)

const (
	defaultPath    = "/graphql"
	defaultTimeout = 10 * time.Second

	errWrappedFmt    = "%w: %s"
	errStatusCodeFmt = "%w: received status %v"

	getQuery  = `query Document($type: String!, $id: ID!) { document(type: $type, id: $id) }`
	listQuery = `query Documents($type: String!, $filters: JSON) { documents(type: $type, filters: $filters) }`
)

// Config is read from the "remote" key. An empty Address disables the tier.
type Config struct {
	// Address is the API origin (i.e. https://docs-api.example.com)
	Address string

	// Path of the GraphQL endpoint.
	// (Optional) Defaults to /graphql.
	Path string

	// Timeout bounds every request when HTTPClient isn't provided.
	// (Optional) Defaults to 10s.
	Timeout time.Duration

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to a client using Timeout.
	HTTPClient *http.Client

	// Auth provides the mechanism to add auth headers to outgoing requests.
	// (Optional) If not provided, no auth headers are added.
	Auth Auth
}

// Auth contains authorization data for requests to the remote API.
type Auth struct {
	JWT   acquire.RemoteBearerTokenAcquirerOptions
	Basic string
}

// Client is a GraphQL style client for the API the documents are authored in.
type Client struct {
	client    *http.Client
	auth      acquire.Acquirer
	url       string
	logger    *zap.Logger
	measures  Measures
	getLogger func(context.Context) *zap.Logger
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

// New creates a Client.
func New(config Config, measures Measures, logger *zap.Logger) (*Client, error) {
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tokenAcquirer, err := buildTokenAcquirer(config.Auth)
	if err != nil {
		return nil, err
	}
	return &Client{
		client:    config.HTTPClient,
		auth:      tokenAcquirer,
		url:       strings.TrimSuffix(config.Address, "/") + config.Path,
		logger:    logger,
		measures:  measures,
		getLogger: sallust.Get,
	}, nil
}

// Get fetches one document. A null document means it doesn't exist.
func (c *Client) Get(ctx context.Context, t model.ResourceType, id string) (model.Document, bool, error) {
	data, err := c.query(ctx, "get", getQuery, map[string]interface{}{"type": string(t), "id": id}, "document")
	if err != nil {
		return nil, false, err
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, c.serialization("get", err)
	}
	return doc, doc != nil, nil
}

// List fetches every document of t matching filters.
func (c *Client) List(ctx context.Context, t model.ResourceType, filters map[string]string) ([]model.Document, error) {
	vars := map[string]interface{}{"type": string(t)}
	if len(filters) > 0 {
		vars["filters"] = filters
	}
	data, err := c.query(ctx, "list", listQuery, vars, "documents")
	if err != nil {
		return nil, err
	}
	docs := []model.Document{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, c.serialization("list", err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

func (c *Client) query(ctx context.Context, op, query string, vars map[string]interface{}, field string) (json.RawMessage, error) {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return nil, c.serialization(op, fmt.Errorf(errWrappedFmt, errJSONMarshal, err.Error()))
	}

	code, payload, err := c.sendRequest(ctx, body)
	if err != nil {
		c.measures.requests(op, FailureOutcome)
		return nil, c.transient(op, err)
	}
	if code < 200 || code >= 300 {
		c.logFor(ctx).Error("remote API responded with a non-successful status code",
			zap.String("op", op), zap.Int("code", code))
		c.measures.requests(op, FailureOutcome)
		return nil, c.transient(op, fmt.Errorf(errStatusCodeFmt, errNonSuccessResponse, code))
	}

	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.measures.requests(op, FailureOutcome)
		return nil, c.serialization(op, fmt.Errorf(errWrappedFmt, errJSONUnmarshal, err.Error()))
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		c.logFor(ctx).Warn("remote API returned errors", zap.String("op", op), zap.Strings("errors", msgs))
		c.measures.requests(op, FailureOutcome)
		return nil, c.transient(op, fmt.Errorf(errWrappedFmt, errGraphQL, strings.Join(msgs, "; ")))
	}

	c.measures.requests(op, SuccessOutcome)
	data, ok := resp.Data[field]
	if !ok {
		return json.RawMessage("null"), nil
	}
	return data, nil
}

func (c *Client) sendRequest(ctx context.Context, body []byte) (int, []byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	r.Header.Set("Content-Type", "application/json")
	if err := acquire.AddAuth(r, c.auth); err != nil {
		return 0, nil, fmt.Errorf(errWrappedFmt, ErrAuthAcquirerFailure, err.Error())
	}
	resp, err := c.client.Do(r)
	if err != nil {
		return 0, nil, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}
	return resp.StatusCode, payload, nil
}

func (c *Client) logFor(ctx context.Context) *zap.Logger {
	if l := c.getLogger(ctx); l != nil {
		return l
	}
	return c.logger
}

func (c *Client) transient(op string, err error) error {
	return &store.Error{Kind: store.KindTransient, Op: op, Backend: Backend, Err: err}
}

func (c *Client) serialization(op string, err error) error {
	return &store.Error{Kind: store.KindSerialization, Op: op, Backend: Backend, Err: err}
}

func isEmpty(options acquire.RemoteBearerTokenAcquirerOptions) bool {
	return len(options.AuthURL) < 1 || options.Buffer == 0 || options.Timeout == 0
}

func buildTokenAcquirer(auth Auth) (acquire.Acquirer, error) {
	if !isEmpty(auth.JWT) {
		return acquire.NewRemoteBearerTokenAcquirer(auth.JWT)
	} else if len(auth.Basic) > 0 {
		return acquire.NewFixedAuthAcquirer(auth.Basic)
	}
	return &acquire.DefaultAcquirer{}, nil
}

func validateConfig(config *Config) error {
	if config.Address == "" {
		return ErrAddressEmpty
	}
	if config.Path == "" {
		config.Path = defaultPath
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	return nil
}
