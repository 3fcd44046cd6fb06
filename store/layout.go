// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"path"
	"strings"

	"github.com/xmidt-org/folio/model"
)

const (
	jsonExt       = ".json"
	indexFileName = "index" + jsonExt
)

// Layout computes blob keys:
//
//	{prefix}{type}/{id}.json             entities
//	{prefix}{type}/index.json            the type's index
//	{prefix}postman/{partition}/{id}.json postman entities
//
// The local mirror reproduces the same relative layout under its root.
type Layout struct {
	Prefix string
}

// TypePrefix is the directory holding every blob of t, with a trailing slash.
func (l Layout) TypePrefix(t model.ResourceType) string {
	return l.Prefix + string(t) + "/"
}

// EntityKey is where the document id of type t is stored.
func (l Layout) EntityKey(t model.ResourceType, id string) string {
	return l.TypePrefix(t) + id + jsonExt
}

// PartitionKey is EntityKey for types with sub-prefixes, such as postman.
func (l Layout) PartitionKey(t model.ResourceType, partition, id string) string {
	return l.TypePrefix(t) + partition + "/" + id + jsonExt
}

// ListPrefixes are the prefixes to list to find every entity of t. Backends
// list one directory at a time, so partitioned types yield one prefix per
// partition.
func (l Layout) ListPrefixes(t model.ResourceType) []string {
	if t != model.Postman {
		return []string{l.TypePrefix(t)}
	}
	partitions := model.PostmanPartitions()
	out := make([]string, 0, len(partitions))
	for _, p := range partitions {
		out = append(out, l.TypePrefix(t)+p+"/")
	}
	return out
}

// IndexKey is the location of t's index blob.
func (l Layout) IndexKey(t model.ResourceType) string {
	return l.TypePrefix(t) + indexFileName
}

// IsIndexKey reports whether key names an index blob.
func IsIndexKey(key string) bool {
	return path.Base(key) == indexFileName
}

// IsJSONKey reports whether key names a JSON blob.
func IsJSONKey(key string) bool {
	return strings.HasSuffix(key, jsonExt)
}

// IDFromKey extracts the document id, the file name without extension.
func IDFromKey(key string) string {
	return strings.TrimSuffix(path.Base(key), jsonExt)
}

// EntityKeys filters keys down to entity blobs, dropping index files and
// anything that isn't JSON.
func EntityKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if IsJSONKey(k) && !IsIndexKey(k) {
			out = append(out, k)
		}
	}
	return out
}
