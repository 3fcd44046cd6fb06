// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/store/db/metric"
	"github.com/xmidt-org/folio/store/inmem"
)

type ObjectStoreTestSuite struct {
	suite.Suite
	blobs    *inmem.InMem
	measures metric.Measures
	store    *store.ObjectStore
	layout   store.Layout
}

func (s *ObjectStoreTestSuite) SetupTest() {
	s.blobs = inmem.NewInMem()
	s.measures = metric.NewMeasures()
	s.store = store.NewObjectStore(s.blobs, s.measures, nil)
	s.layout = store.Layout{Prefix: "data/"}
}

func (s *ObjectStoreTestSuite) TestRoundTrip() {
	for _, t := range model.ResourceTypes() {
		s.T().Run(string(t), func(tt *testing.T) {
			require := require.New(tt)
			key := s.layout.EntityKey(t, "one")
			doc := model.Document{"title": "One", "tags": []interface{}{"a", "b"}}

			written, err := s.store.Write(context.Background(), key, doc)
			require.NoError(err)
			require.Equal(key, written)

			got, found, err := s.store.Read(context.Background(), key)
			require.NoError(err)
			require.True(found)
			for k, v := range doc {
				assert.Equal(tt, v, got[k])
			}
		})
	}
	s.Equal(4.0, testutil.ToFloat64(s.measures.QuerySuccessCount.WithLabelValues(store.InsertType)))
}

func (s *ObjectStoreTestSuite) TestIdempotentDelete() {
	ctx := context.Background()
	key := s.layout.EntityKey(model.Pages, "home")
	_, err := s.store.Write(ctx, key, model.Document{"page_id": "home"})
	s.Require().NoError(err)

	ok, err := s.store.Delete(ctx, key)
	s.NoError(err)
	s.True(ok)

	_, found, err := s.store.Read(ctx, key)
	s.NoError(err)
	s.False(found)

	ok, err = s.store.Delete(ctx, key)
	s.NoError(err)
	s.True(ok)
}

func (s *ObjectStoreTestSuite) TestMalformedJSON() {
	key := s.layout.EntityKey(model.Pages, "broken")
	s.Require().NoError(s.blobs.Put(context.Background(), key, []byte("{not json")))

	_, found, err := s.store.Read(context.Background(), key)
	s.False(found)
	s.True(store.IsKind(err, store.KindSerialization))
}

func (s *ObjectStoreTestSuite) TestUnencodable() {
	_, err := s.store.Write(context.Background(), "data/pages/x.json", map[string]interface{}{"ch": make(chan int)})
	s.True(store.IsKind(err, store.KindSerialization))
	s.Equal(0, s.blobs.Len())
}

func (s *ObjectStoreTestSuite) TestList() {
	ctx := context.Background()
	s.Require().NoError(s.blobs.Put(ctx, "data/pages/a.json", []byte("{}")))
	s.Require().NoError(s.blobs.Put(ctx, "data/pages/index.json", []byte("{}")))
	s.Require().NoError(s.blobs.Put(ctx, "data/pages/notes.txt", []byte("x")))

	keys, err := s.store.List(ctx, s.layout.TypePrefix(model.Pages), 0)
	s.NoError(err)
	s.Equal([]string{"data/pages/a.json", "data/pages/index.json"}, keys)
	s.Equal([]string{"data/pages/a.json"}, store.EntityKeys(keys))
}

func (s *ObjectStoreTestSuite) TestReadIndex() {
	ctx := context.Background()
	key := s.layout.IndexKey(model.Pages)

	_, found, err := s.store.ReadIndex(ctx, model.Pages, key)
	s.NoError(err)
	s.False(found)

	idx := model.NewIndex(model.Pages)
	idx.Items = []model.Summary{{"page_id": "home"}}
	idx.Total = 1
	_, err = s.store.Write(ctx, key, idx)
	s.Require().NoError(err)

	got, found, err := s.store.ReadIndex(ctx, model.Pages, key)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(1, got.Total)
	s.Equal([]string{"home"}, got.IDs("page_id"))
}

func TestObjectStore(t *testing.T) {
	suite.Run(t, new(ObjectStoreTestSuite))
}

type failingBlobs struct {
	store.Blobs
	err error
}

func (f failingBlobs) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBlobs) Put(context.Context, string, []byte) error        { return f.err }

func TestBackendFailure(t *testing.T) {
	assert := assert.New(t)
	boom := errors.New("connection refused")
	measures := metric.NewMeasures()
	s := store.NewObjectStore(failingBlobs{err: boom}, measures, nil)

	_, _, err := s.Read(context.Background(), "data/pages/a.json")
	assert.True(store.IsKind(err, store.KindTransient))
	assert.ErrorIs(err, boom)

	var e *store.Error
	if assert.ErrorAs(err, &e) {
		assert.Equal(store.ObjectStoreBackend, e.Backend)
		assert.Equal("data/pages/a.json", e.Key)
	}

	_, err = s.Write(context.Background(), "data/pages/a.json", model.Document{})
	assert.Error(err)
	assert.Equal(1.0, testutil.ToFloat64(measures.QueryFailureCount.WithLabelValues(store.InsertType)))
	assert.Equal(1.0, testutil.ToFloat64(measures.QueryFailureCount.WithLabelValues(store.ReadType)))
}

func TestKindOf(t *testing.T) {
	tcs := []struct {
		Description string
		Err         error
		Expected    store.Kind
	}{
		{"Sentinel not found", store.ErrNotFound, store.KindNotFound},
		{"Sentinel circuit open", store.ErrCircuitOpen, store.KindCircuitOpen},
		{"Context", context.DeadlineExceeded, store.KindTransient},
		{"Wrapped", &store.Error{Kind: store.KindConsistency}, store.KindConsistency},
		{"Unknown", errors.New("what"), store.KindTransient},
	}
	for _, tc := range tcs {
		t.Run(tc.Description, func(t *testing.T) {
			assert.Equal(t, tc.Expected, store.KindOf(tc.Err))
		})
	}

	assert.ErrorIs(t, &store.Error{Kind: store.KindNotFound}, store.ErrNotFound)
	assert.Equal(t, 404, (&store.Error{Kind: store.KindNotFound}).StatusCode())
	assert.Equal(t, 503, (&store.Error{Kind: store.KindCircuitOpen}).StatusCode())
}

func TestLayout(t *testing.T) {
	assert := assert.New(t)
	l := store.Layout{Prefix: "data/"}
	assert.Equal("data/pages/home.json", l.EntityKey(model.Pages, "home"))
	assert.Equal("data/pages/index.json", l.IndexKey(model.Pages))
	assert.Equal("data/postman/collections/c1.json", l.PartitionKey(model.Postman, model.PostmanCollections, "c1"))
	assert.True(store.IsIndexKey("data/pages/index.json"))
	assert.Equal("home", store.IDFromKey("data/pages/home.json"))
	assert.Equal([]string{"data/pages/"}, l.ListPrefixes(model.Pages))
	assert.Equal([]string{
		"data/postman/collections/",
		"data/postman/environments/",
		"data/postman/configurations/",
	}, l.ListPrefixes(model.Postman))
}
