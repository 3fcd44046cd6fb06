// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/folio/index"
	"github.com/xmidt-org/folio/model"
)

func TestFingerprint(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("all", Filters{}.Fingerprint())
	assert.Equal("all", Filters(nil).Fingerprint())
	assert.Equal("status=draft&type=docs", Filters{"type": "docs", "status": "draft"}.Fingerprint())
	assert.Equal(Filters{"a": "1", "b": "2"}.Fingerprint(), Filters{"b": "2", "a": "1"}.Fingerprint())
	assert.Equal("route=%2Fhome%3Fx%3D1", Filters{"route": "/home?x=1"}.Fingerprint())
}

func TestApply(t *testing.T) {
	idx := index.FromDocuments(model.Endpoints, []model.Document{
		{"endpoint_id": "a", "method": "GET", "api_version": "v1", "name": "list"},
		{"endpoint_id": "b", "method": "POST", "api_version": "v1", "name": "create"},
		{"endpoint_id": "c", "method": "GET", "api_version": "v2", "name": "list"},
		{"endpoint_id": "d", "method": "GET", "api_version": 2},
	})

	testCases := []struct {
		Name          string
		Filters       Filters
		ExpectedIDs   []string
		ExpectedTotal int
	}{
		{Name: "No filters", Filters: nil, ExpectedIDs: []string{"a", "b", "c", "d"}, ExpectedTotal: 4},
		{Name: "Named index", Filters: Filters{"method": "GET"}, ExpectedIDs: []string{"a", "c", "d"}, ExpectedTotal: 3},
		{Name: "Two indexes", Filters: Filters{"method": "GET", "api_version": "v1"}, ExpectedIDs: []string{"a"}, ExpectedTotal: 1},
		{Name: "Coerced bucket", Filters: Filters{"api_version": "2"}, ExpectedIDs: []string{"d"}, ExpectedTotal: 1},
		{Name: "Summary field", Filters: Filters{"name": "list"}, ExpectedIDs: []string{"a", "c"}, ExpectedTotal: 2},
		{Name: "Unknown value", Filters: Filters{"method": "PATCH"}, ExpectedIDs: []string{}, ExpectedTotal: 0},
		{Name: "Limit", Filters: Filters{LimitFilter: "2"}, ExpectedIDs: []string{"a", "b"}, ExpectedTotal: 4},
		{Name: "Offset", Filters: Filters{OffsetFilter: "3"}, ExpectedIDs: []string{"d"}, ExpectedTotal: 4},
		{Name: "Offset past the end", Filters: Filters{OffsetFilter: "9"}, ExpectedIDs: []string{}, ExpectedTotal: 4},
		{Name: "Negative offset", Filters: Filters{OffsetFilter: "-1", LimitFilter: "1"}, ExpectedIDs: []string{"a"}, ExpectedTotal: 4},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			items, total := testCase.Filters.apply(idx)
			ids := make([]string, 0, len(items))
			for _, s := range items {
				ids = append(ids, s["endpoint_id"].(string))
			}
			assert.Equal(t, testCase.ExpectedIDs, ids)
			assert.Equal(t, testCase.ExpectedTotal, total)
		})
	}
}
