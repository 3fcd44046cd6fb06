// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"time"
)

// IndexVersion is written into every index blob.
const IndexVersion = "1.0"

// Index is the denormalized secondary file kept next to a type's blobs.
// On the wire the summaries array is keyed by the type name, i.e. a pages
// index carries a "pages" array.
type Index struct {
	Type        ResourceType                   `json:"-"`
	Version     string                         `json:"version"`
	LastUpdated time.Time                      `json:"last_updated"`
	Total       int                            `json:"total"`
	Items       []Summary                      `json:"-"`
	Indexes     map[string]map[string][]string `json:"indexes"`
	Statistics  map[string]interface{}         `json:"statistics"`
}

// NewIndex returns a well-formed empty index for t.
func NewIndex(t ResourceType) *Index {
	return &Index{
		Type:       t,
		Version:    IndexVersion,
		Items:      []Summary{},
		Indexes:    map[string]map[string][]string{},
		Statistics: map[string]interface{}{},
	}
}

var indexMetaKeys = map[string]bool{
	"version":      true,
	"last_updated": true,
	"total":        true,
	"indexes":      true,
	"statistics":   true,
}

type indexAlias Index

// MarshalJSON places the summaries under the type name.
func (i Index) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(indexAlias(i))
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	items := i.Items
	if items == nil {
		items = []Summary{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	name := string(i.Type)
	if name == "" {
		name = "items"
	}
	m[name] = encoded
	return json.Marshal(m)
}

// UnmarshalJSON reads the summaries from the key matching Type. When Type is
// unset the first non-metadata array is used and Type is inferred from its key.
func (i *Index) UnmarshalJSON(data []byte) error {
	var alias indexAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	t := i.Type
	alias.Type = t
	if t == "" {
		for k := range m {
			if !indexMetaKeys[k] {
				alias.Type = ResourceType(k)
				break
			}
		}
	}
	if rawItems, ok := m[string(alias.Type)]; ok {
		if err := json.Unmarshal(rawItems, &alias.Items); err != nil {
			return err
		}
	}
	*i = Index(alias)
	i.normalize()
	return nil
}

func (i *Index) normalize() {
	if i.Items == nil {
		i.Items = []Summary{}
	}
	if i.Indexes == nil {
		i.Indexes = map[string]map[string][]string{}
	}
	if i.Statistics == nil {
		i.Statistics = map[string]interface{}{}
	}
	if i.Version == "" {
		i.Version = IndexVersion
	}
}

// IDs returns the ids of every summary using idField.
func (i *Index) IDs(idField string) []string {
	ids := make([]string, 0, len(i.Items))
	for _, s := range i.Items {
		if id, ok := s[idField].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Bucket returns the ids registered under value in the named index.
func (i *Index) Bucket(name, value string) []string {
	return i.Indexes[name][value]
}
