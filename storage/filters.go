// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/xmidt-org/folio/model"
)

// Reserved filter keys.
const (
	LimitFilter  = "limit"
	OffsetFilter = "offset"
)

// Filters narrow a list. A key matches the named index "by_{key}" when the
// type has one, and the summary field {key} otherwise.
type Filters map[string]string

// Fingerprint is a canonical form of f, usable as a cache key.
func (f Filters) Fingerprint() string {
	if len(f) == 0 {
		return "all"
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(f[k]))
	}
	return strings.Join(parts, "&")
}

func (f Filters) remoteFilters() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// apply selects the summaries of idx matching f and pages through them.
// total counts every match.
func (f Filters) apply(idx *model.Index) (items []model.Summary, total int) {
	var (
		offset = cast.ToInt(f[OffsetFilter])
		limit  = cast.ToInt(f[LimitFilter])
		allow  []map[string]bool
		fields = map[string]string{}
	)
	for k, v := range f {
		if k == LimitFilter || k == OffsetFilter {
			continue
		}
		if buckets, ok := idx.Indexes["by_"+k]; ok {
			ids := map[string]bool{}
			for _, id := range buckets[v] {
				ids[id] = true
			}
			allow = append(allow, ids)
			continue
		}
		fields[k] = v
	}

	schema, _ := model.SchemaFor(idx.Type)
	matched := make([]model.Summary, 0, len(idx.Items))
	for _, s := range idx.Items {
		if matches(s, schema.IDField, allow, fields) {
			matched = append(matched, s)
		}
	}
	total = len(matched)

	if offset < 0 {
		offset = 0
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total
}

func matches(s model.Summary, idField string, allow []map[string]bool, fields map[string]string) bool {
	id, _ := s[idField].(string)
	for _, ids := range allow {
		if !ids[id] {
			return false
		}
	}
	for k, want := range fields {
		v, ok := s[k]
		if !ok {
			return false
		}
		got, err := cast.ToStringE(v)
		if err != nil || got != want {
			return false
		}
	}
	return true
}
