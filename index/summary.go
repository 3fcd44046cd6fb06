// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/xmidt-org/folio/model"
)

// Summarize projects doc onto the schema's summary fields. Nested paths are
// flattened to their last segment, so "metadata.route" becomes "route".
func Summarize(schema model.Schema, id string, doc model.Document) model.Summary {
	s := model.Summary{}
	for _, field := range schema.SummaryFields {
		v, ok := doc.Lookup(field)
		if !ok {
			continue
		}
		s[lastSegment(field)] = v
	}
	s[schema.IDField] = id
	return s
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// bucketValue is the key doc is filed under for field. Values that aren't
// scalars, or are blank, don't get a bucket.
func bucketValue(doc model.Document, field string) (string, bool) {
	v, ok := doc.Lookup(field)
	if !ok || v == nil {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func add(idx *model.Index, schema model.Schema, id string, doc model.Document) {
	remove(idx, schema, id)
	idx.Items = append(idx.Items, Summarize(schema, id, doc))
	for _, f := range schema.Indexes {
		value, ok := bucketValue(doc, f.Field)
		if !ok {
			continue
		}
		buckets := idx.Indexes[f.Name]
		if buckets == nil {
			buckets = map[string][]string{}
			idx.Indexes[f.Name] = buckets
		}
		if !contains(buckets[value], id) {
			buckets[value] = append(buckets[value], id)
		}
	}
}

// remove reports whether idx referenced id anywhere.
func remove(idx *model.Index, schema model.Schema, id string) bool {
	changed := false
	items := idx.Items[:0]
	for _, s := range idx.Items {
		if sid, _ := s[schema.IDField].(string); sid == id {
			changed = true
			continue
		}
		items = append(items, s)
	}
	idx.Items = items

	for name, buckets := range idx.Indexes {
		for value, ids := range buckets {
			kept := without(ids, id)
			if len(kept) == len(ids) {
				continue
			}
			changed = true
			if len(kept) == 0 {
				delete(buckets, value)
			} else {
				buckets[value] = kept
			}
		}
		if len(buckets) == 0 {
			delete(idx.Indexes, name)
		}
	}
	return changed
}

func refresh(idx *model.Index) {
	idx.Total = len(idx.Items)
	stats := make(map[string]interface{}, len(idx.Indexes)+1)
	for name, buckets := range idx.Indexes {
		counts := make(map[string]int, len(buckets))
		for value, ids := range buckets {
			counts[value] = len(ids)
		}
		stats[name] = counts
	}
	stats["total"] = idx.Total
	idx.Statistics = stats
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// FromDocuments builds an in-memory index of t over docs, identified by the
// schema's id field. Documents without an id are left out.
func FromDocuments(t model.ResourceType, docs []model.Document) *model.Index {
	idx := model.NewIndex(t)
	schema, ok := model.SchemaFor(t)
	if !ok {
		return idx
	}
	for _, d := range docs {
		if id := schema.ID(d); id != "" {
			add(idx, schema, id, d)
		}
	}
	refresh(idx)
	return idx
}
