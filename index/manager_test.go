// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/mirror"
	"github.com/xmidt-org/folio/model"
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/store/db/metric"
	"github.com/xmidt-org/folio/store/inmem"
)

type ManagerTestSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	layout  store.Layout
	blobs   *inmem.InMem
	objects *store.ObjectStore
	cache   *cache.Layer
	fs      afero.Fs
	mirror  *mirror.Mirror
	manager *Manager
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.layout = store.Layout{Prefix: "data/"}
	s.blobs = inmem.NewInMem()
	s.objects = store.NewObjectStore(s.blobs, metric.NewMeasures(), nil)
	s.cache = cache.NewLayer(cache.NewMemory(nil), cache.Config{}, cache.NewMeasures(), nil)
	s.fs = afero.NewMemMapFs()
	s.mirror = mirror.New(s.fs, s.layout, s.cache, mirror.Config{}, nil)
	s.manager = New(s.objects, s.layout, s.cache, s.mirror, Config{}, nil)
	s.manager.now = func() time.Time { return s.now }
}

func page(id, route, pageType string) model.Document {
	return model.Document{
		"page_id":   id,
		"title":     "Title of " + id,
		"page_type": pageType,
		"status":    "published",
		"metadata":  map[string]interface{}{"route": route},
	}
}

func (s *ManagerTestSuite) TestReadMissing() {
	idx, err := s.manager.Read(s.ctx, model.Pages)
	s.Require().NoError(err)
	s.Equal(model.Pages, idx.Type)
	s.Equal(0, idx.Total)
	s.Empty(idx.Items)
	s.NotNil(idx.Indexes)
	s.Equal(model.IndexVersion, idx.Version)
}

func (s *ManagerTestSuite) TestAddItem() {
	require := s.Require()
	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "home", page("home", "/", "landing")))
	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "docs", page("docs", "/docs", "landing")))

	idx, err := s.manager.Read(s.ctx, model.Pages)
	require.NoError(err)
	s.Equal(2, idx.Total)
	s.True(s.now.Equal(idx.LastUpdated))
	s.Equal([]string{"home", "docs"}, idx.Bucket("by_type", "landing"))
	s.Equal("/", idx.Items[0]["route"])

	ids, err := s.manager.Lookup(s.ctx, model.Pages, "by_route", "/docs")
	require.NoError(err)
	s.Equal([]string{"docs"}, ids)

	// re-adding moves the id between buckets instead of duplicating it
	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "docs", page("docs", "/guide", "landing")))
	idx, err = s.manager.Read(s.ctx, model.Pages)
	require.NoError(err)
	s.Equal(2, idx.Total)
	s.Nil(idx.Bucket("by_route", "/docs"))
	s.Equal([]string{"docs"}, idx.Bucket("by_route", "/guide"))
	s.Equal([]string{"home", "docs"}, idx.Bucket("by_type", "landing"))
}

func (s *ManagerTestSuite) TestAddRemoveSymmetry() {
	require := s.Require()
	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "home", page("home", "/", "landing")))
	before, err := s.manager.Read(s.ctx, model.Pages)
	require.NoError(err)

	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "extra", page("extra", "/extra", "reference")))
	require.NoError(s.manager.RemoveItem(s.ctx, model.Pages, "extra"))

	after, err := s.manager.Read(s.ctx, model.Pages)
	require.NoError(err)
	s.Equal(before.Items, after.Items)
	s.Equal(before.Indexes, after.Indexes)
	_, ok := after.Indexes["by_type"]["reference"]
	s.False(ok)
}

func (s *ManagerTestSuite) TestRemoveUnknownWritesNothing() {
	s.Require().NoError(s.manager.RemoveItem(s.ctx, model.Pages, "ghost"))
	_, found, err := s.blobs.Get(s.ctx, s.layout.IndexKey(model.Pages))
	s.NoError(err)
	s.False(found)
}

func (s *ManagerTestSuite) TestUpdateInvalidatesAllCopies() {
	require := s.Require()
	require.NoError(s.cache.Set(s.ctx, ListKey(model.Pages, "all"), []string{"stale"}, cache.InNamespace(ListNamespace)))
	require.NoError(s.cache.Set(s.ctx, ListKey(model.Pages, "status=draft"), []string{"stale"}, cache.InNamespace(ListNamespace)))
	require.NoError(s.cache.Set(s.ctx, ListKey(model.Endpoints, "all"), []string{"kept"}, cache.InNamespace(ListNamespace)))

	stale := model.NewIndex(model.Pages)
	stale.Total = 42
	require.NoError(afero.WriteFile(s.fs, "/data/pages/index.json", mustJSON(s.T(), stale), 0o644))
	cached, found, err := s.mirror.ReadIndex(s.ctx, model.Pages)
	require.NoError(err)
	require.True(found)
	require.Equal(42, cached.Total)
	fresh := model.NewIndex(model.Pages)
	fresh.Total = 7
	require.NoError(afero.WriteFile(s.fs, "/data/pages/index.json", mustJSON(s.T(), fresh), 0o644))

	_, err = s.manager.Read(s.ctx, model.Pages)
	require.NoError(err)
	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "home", page("home", "/", "landing")))

	var list []string
	s.False(s.cache.Get(s.ctx, ListKey(model.Pages, "all"), &list, cache.InNamespace(ListNamespace)))
	s.False(s.cache.Get(s.ctx, ListKey(model.Pages, "status=draft"), &list, cache.InNamespace(ListNamespace)))
	s.True(s.cache.Get(s.ctx, ListKey(model.Endpoints, "all"), &list, cache.InNamespace(ListNamespace)))

	idx := &model.Index{Type: model.Pages}
	s.False(s.cache.Get(s.ctx, string(model.Pages), idx, cache.InNamespace(Namespace)))

	cached, _, err = s.mirror.ReadIndex(s.ctx, model.Pages)
	require.NoError(err)
	s.Equal(7, cached.Total)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func (s *ManagerTestSuite) writePage(id string, doc model.Document) {
	_, err := s.objects.Write(s.ctx, s.layout.EntityKey(model.Pages, id), doc)
	s.Require().NoError(err)
}

func (s *ManagerTestSuite) TestRebuildIsValid() {
	require := s.Require()
	for _, id := range []string{"a", "b", "c"} {
		s.writePage(id, page(id, "/"+id, "guide"))
	}
	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "gone", page("gone", "/gone", "guide")))

	report, err := s.manager.Validate(s.ctx, model.Pages)
	require.NoError(err)
	s.False(report.Valid)
	s.Equal([]string{"a", "b", "c"}, report.MissingInIndex)
	s.Equal([]string{"gone"}, report.ExtraInIndex)
	s.True(store.IsKind(report.Err(), store.KindConsistency))

	result, err := s.manager.Rebuild(s.ctx, model.Pages)
	require.NoError(err)
	s.Equal(3, result.Total)
	s.Equal(3, result.Scanned)
	s.Empty(result.Errors)

	report, err = s.manager.Validate(s.ctx, model.Pages)
	require.NoError(err)
	s.True(report.Valid)
	s.NoError(report.Err())

	ids, err := s.manager.Lookup(s.ctx, model.Pages, "by_type", "guide")
	require.NoError(err)
	s.Equal([]string{"a", "b", "c"}, ids)
}

func (s *ManagerTestSuite) TestRebuildReportsBadBlobs() {
	s.writePage("good", page("good", "/good", "guide"))
	s.Require().NoError(s.blobs.Put(s.ctx, s.layout.EntityKey(model.Pages, "bad"), []byte("{not json")))

	result, err := s.manager.Rebuild(s.ctx, model.Pages)
	s.Require().NoError(err)
	s.Equal(1, result.Total)
	s.Equal(2, result.Scanned)
	if s.Len(result.Errors, 1) {
		s.Contains(result.Errors[0], "bad.json")
	}
}

func (s *ManagerTestSuite) TestRebuildPostmanPartitions() {
	require := s.Require()
	for partition, id := range map[string]string{
		model.PostmanCollections:    "c1",
		model.PostmanEnvironments:   "e1",
		model.PostmanConfigurations: "x1",
	} {
		_, err := s.objects.Write(s.ctx, s.layout.PartitionKey(model.Postman, partition, id),
			model.Document{"config_id": id, "name": id, "config_type": partition})
		require.NoError(err)
	}

	result, err := s.manager.Rebuild(s.ctx, model.Postman)
	require.NoError(err)
	s.Equal(3, result.Total)

	report, err := s.manager.Validate(s.ctx, model.Postman)
	require.NoError(err)
	s.True(report.Valid)
}

func (s *ManagerTestSuite) TestHealth() {
	require := s.Require()
	h, err := s.manager.Health(s.ctx, model.Pages, time.Hour)
	require.NoError(err)
	s.False(h.Healthy)
	s.True(h.IsStale)

	require.NoError(s.manager.AddItem(s.ctx, model.Pages, "home", page("home", "/", "landing")))
	h, err = s.manager.Health(s.ctx, model.Pages, time.Hour)
	require.NoError(err)
	s.True(h.Healthy)
	s.False(h.IsStale)
	s.Empty(h.Warnings)

	s.now = s.now.Add(2 * time.Hour)
	h, err = s.manager.Health(s.ctx, model.Pages, time.Hour)
	require.NoError(err)
	s.False(h.Healthy)
	s.True(h.IsStale)
	s.Equal((2 * time.Hour).Seconds(), h.Age)
	s.Len(h.Warnings, 1)
}

func (s *ManagerTestSuite) TestUnknownType() {
	err := s.manager.AddItem(s.ctx, model.ResourceType("widgets"), "w", model.Document{})
	s.True(store.IsKind(err, store.KindInvalid))
}

func TestManager(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func TestSummarize(t *testing.T) {
	schema, ok := model.SchemaFor(model.Endpoints)
	require.True(t, ok)
	s := Summarize(schema, "get-user", model.Document{
		"name":        "Get user",
		"method":      "GET",
		"path":        "/users/{id}",
		"api_version": 2,
		"description": "not summarized",
	})
	assert.Equal(t, model.Summary{
		"endpoint_id": "get-user",
		"name":        "Get user",
		"method":      "GET",
		"path":        "/users/{id}",
		"api_version": 2,
	}, s)
}

func TestBucketValue(t *testing.T) {
	tests := []struct {
		description string
		doc         model.Document
		expected    string
		ok          bool
	}{
		{description: "string", doc: model.Document{"f": "GET"}, expected: "GET", ok: true},
		{description: "number", doc: model.Document{"f": float64(2)}, expected: "2", ok: true},
		{description: "trimmed", doc: model.Document{"f": "  v1 "}, expected: "v1", ok: true},
		{description: "blank", doc: model.Document{"f": "  "}},
		{description: "missing", doc: model.Document{}},
		{description: "null", doc: model.Document{"f": nil}},
		{description: "object", doc: model.Document{"f": map[string]interface{}{"a": 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			v, ok := bucketValue(tc.doc, "f")
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, v)
		})
	}
}
