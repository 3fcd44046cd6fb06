// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

// Postman sub-prefixes. Postman blobs are partitioned by their config_type.
const (
	PostmanCollections    = "collections"
	PostmanEnvironments   = "environments"
	PostmanConfigurations = "configurations"
)

// IndexField declares a named lookup index: every document whose Field
// resolves to a non-empty value is bucketed under that value.
type IndexField struct {
	Name  string
	Field string
}

// Schema describes how a resource type is identified, summarized and indexed.
type Schema struct {
	Type ResourceType

	// IDField is the top-level field holding the document ID.
	IDField string

	// SummaryFields are dotted paths copied into the index summary. The last
	// path segment becomes the summary key.
	SummaryFields []string

	Indexes []IndexField
}

var schemas = map[ResourceType]Schema{
	Pages: {
		Type:          Pages,
		IDField:       "page_id",
		SummaryFields: []string{"page_id", "title", "page_type", "status", "metadata.route", "updated_at"},
		Indexes: []IndexField{
			{Name: "by_type", Field: "page_type"},
			{Name: "by_route", Field: "metadata.route"},
			{Name: "by_status", Field: "status"},
		},
	},
	Endpoints: {
		Type:          Endpoints,
		IDField:       "endpoint_id",
		SummaryFields: []string{"endpoint_id", "name", "method", "path", "api_version", "updated_at"},
		Indexes: []IndexField{
			{Name: "by_method", Field: "method"},
			{Name: "by_api_version", Field: "api_version"},
			{Name: "by_route", Field: "path"},
		},
	},
	Relationships: {
		Type:          Relationships,
		IDField:       "relationship_id",
		SummaryFields: []string{"relationship_id", "page_id", "endpoint_id", "usage_type", "updated_at"},
		Indexes: []IndexField{
			{Name: "by_page", Field: "page_id"},
			{Name: "by_endpoint", Field: "endpoint_id"},
			{Name: "by_usage_type", Field: "usage_type"},
		},
	},
	Postman: {
		Type:          Postman,
		IDField:       "config_id",
		SummaryFields: []string{"config_id", "name", "config_type", "updated_at"},
		Indexes: []IndexField{
			{Name: "by_type", Field: "config_type"},
		},
	},
}

// SchemaFor returns the built-in schema of t.
func SchemaFor(t ResourceType) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// ID returns the document's identifier according to the schema.
func (s Schema) ID(d Document) string {
	id, _ := d[s.IDField].(string)
	return id
}

// PostmanPartition maps a postman config_type onto its sub-prefix.
func PostmanPartition(configType string) string {
	switch configType {
	case "collection", PostmanCollections:
		return PostmanCollections
	case "environment", PostmanEnvironments:
		return PostmanEnvironments
	default:
		return PostmanConfigurations
	}
}

// PostmanPartitions lists the sub-prefixes in lookup order.
func PostmanPartitions() []string {
	return []string{PostmanCollections, PostmanEnvironments, PostmanConfigurations}
}
