// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
)

// Query types used to label backend metrics.
const (
	InsertType = "insert"
	DeleteType = "delete"
	ReadType   = "read"
	ListType   = "list"
)

// Blobs is the raw key/value contract every remote blob backend satisfies.
// Keys form a flat namespace with "/" separated directories.
type Blobs interface {
	// Get returns the blob stored at key. found is false when the key is absent.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Put stores data at key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns up to max keys that start with prefix. max <= 0 means no limit.
	List(ctx context.Context, prefix string, max int) ([]string, error)
}

// Pinger is implemented by backends able to check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
