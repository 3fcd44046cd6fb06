// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
	"strings"
)

// ResourceType names a family of documents. It doubles as the directory
// under which the type's blobs and index live.
type ResourceType string

const (
	Pages         ResourceType = "pages"
	Endpoints     ResourceType = "endpoints"
	Relationships ResourceType = "relationships"
	Postman       ResourceType = "postman"
)

// ErrUnknownResourceType is returned when parsing a name that isn't one of the
// supported resource types.
var ErrUnknownResourceType = errors.New("unknown resource type")

// ResourceTypes lists every supported type in a stable order.
func ResourceTypes() []ResourceType {
	return []ResourceType{Pages, Endpoints, Relationships, Postman}
}

// ParseResourceType converts user input into a ResourceType. Singular names
// are accepted as well.
func ParseResourceType(s string) (ResourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pages", "page":
		return Pages, nil
	case "endpoints", "endpoint":
		return Endpoints, nil
	case "relationships", "relationship":
		return Relationships, nil
	case "postman", "postman_configurations", "postman_configuration":
		return Postman, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResourceType, s)
}

func (t ResourceType) String() string {
	return string(t)
}

// Document is an abstract JSON object stored as a single blob.
type Document map[string]interface{}

// Summary is the denormalized projection of a Document kept in an index.
type Summary map[string]interface{}

// Key identifies a document of a given type.
type Key struct {
	// Type is the resource family.
	Type ResourceType `json:"type"`

	// ID is unique within Type.
	ID string `json:"id"`
}

func (k Key) String() string {
	return string(k.Type) + "/" + k.ID
}

// Clone returns a shallow copy of the document.  Nested maps and slices are
// shared.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// Lookup resolves a dotted path such as "metadata.route" against nested
// objects. The second return value is false when any segment is missing.
func (d Document) Lookup(path string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(d)
	for _, segment := range strings.Split(path, ".") {
		var m map[string]interface{}
		switch v := current.(type) {
		case map[string]interface{}:
			m = v
		case Document:
			m = v
		case Summary:
			m = v
		default:
			return nil, false
		}
		next, ok := m[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
