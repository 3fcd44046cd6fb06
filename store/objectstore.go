// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store/db/metric"
	"go.uber.org/zap"
)

// ObjectStoreBackend names the object store tier in errors and metrics.
const ObjectStoreBackend = "object_store"

// ObjectStore is the JSON document view over a Blobs backend. It is the
// source of truth for every resource.
type ObjectStore struct {
	blobs    Blobs
	measures metric.Measures
	logger   *zap.Logger
	now      func() time.Time
}

// NewObjectStore wraps blobs. A nil logger disables logging.
func NewObjectStore(blobs Blobs, measures metric.Measures, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{
		blobs:    blobs,
		measures: measures,
		logger:   logger,
		now:      time.Now,
	}
}

// Read fetches and decodes the document stored at key. A missing blob is
// reported through found, not as an error.
func (s *ObjectStore) Read(ctx context.Context, key string) (doc model.Document, found bool, err error) {
	data, found, err := s.get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Error("malformed JSON blob", zap.String("key", key), zap.Error(err))
		return nil, false, &Error{Kind: KindSerialization, Op: "read", Key: key, Backend: ObjectStoreBackend, Err: err}
	}
	return doc, true, nil
}

// ReadIndex fetches the index blob stored at key.
func (s *ObjectStore) ReadIndex(ctx context.Context, t model.ResourceType, key string) (*model.Index, bool, error) {
	data, found, err := s.get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	idx := &model.Index{Type: t}
	if err := json.Unmarshal(data, idx); err != nil {
		s.logger.Error("malformed index blob", zap.String("key", key), zap.Error(err))
		return nil, false, &Error{Kind: KindSerialization, Op: "read", Key: key, Backend: ObjectStoreBackend, Err: err}
	}
	return idx, true, nil
}

// WriteIndex stores idx at t's index key.
func (s *ObjectStore) WriteIndex(ctx context.Context, layout Layout, idx *model.Index) error {
	_, err := s.Write(ctx, layout.IndexKey(idx.Type), idx)
	return err
}

// Write encodes doc and stores it at key, returning the key.
func (s *ObjectStore) Write(ctx context.Context, key string, doc interface{}) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", &Error{Kind: KindSerialization, Op: "write", Key: key, Backend: ObjectStoreBackend, Err: err}
	}
	start := s.now()
	err = s.blobs.Put(ctx, key, data)
	s.observe(InsertType, start, err)
	if err != nil {
		return "", s.wrap(err, "write", key)
	}
	s.measures.BytesWritten.Add(float64(len(data)))
	return key, nil
}

// Delete removes key. It reports true whether or not the blob existed.
func (s *ObjectStore) Delete(ctx context.Context, key string) (bool, error) {
	start := s.now()
	err := s.blobs.Delete(ctx, key)
	s.observe(DeleteType, start, err)
	if err != nil {
		return false, s.wrap(err, "delete", key)
	}
	return true, nil
}

// List returns up to max JSON keys under prefix. Index files are included;
// callers drop them with EntityKeys.
func (s *ObjectStore) List(ctx context.Context, prefix string, max int) ([]string, error) {
	start := s.now()
	keys, err := s.blobs.List(ctx, prefix, max)
	s.observe(ListType, start, err)
	if err != nil {
		return nil, s.wrap(err, "list", prefix)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if IsJSONKey(k) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Ping checks the backend when it supports it.
func (s *ObjectStore) Ping(ctx context.Context) error {
	if p, ok := s.blobs.(Pinger); ok {
		return s.wrap(p.Ping(ctx), "ping", "")
	}
	return nil
}

func (s *ObjectStore) get(ctx context.Context, key string) ([]byte, bool, error) {
	start := s.now()
	data, found, err := s.blobs.Get(ctx, key)
	s.observe(ReadType, start, err)
	if err != nil {
		return nil, false, s.wrap(err, "read", key)
	}
	if found {
		s.measures.BytesRead.Add(float64(len(data)))
	}
	return data, found, nil
}

func (s *ObjectStore) observe(queryType string, start time.Time, err error) {
	s.measures.QueryDuration.With(map[string]string{metric.TypeLabel: queryType}).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		s.measures.QueryFailureCount.WithLabelValues(queryType).Inc()
		return
	}
	s.measures.QuerySuccessCount.WithLabelValues(queryType).Inc()
}

func (s *ObjectStore) wrap(err error, op, key string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		tagged := *e
		if tagged.Backend == "" {
			tagged.Backend = ObjectStoreBackend
		}
		if tagged.Key == "" {
			tagged.Key = key
		}
		return &tagged
	}
	return &Error{Kind: KindOf(err), Op: op, Key: key, Backend: ObjectStoreBackend, Err: err}
}
