// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package inmem

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xmidt-org/folio/store"
)

// InMem keeps blobs in a two level map: directory, then file name.
type InMem struct {
	data map[string]map[string][]byte
	lock sync.RWMutex
}

func NewInMem() *InMem {
	return &InMem{
		data: map[string]map[string][]byte{},
	}
}

var _ store.Blobs = (*InMem)(nil)

func splitKey(key string) (string, string) {
	return path.Dir(key), path.Base(key)
}

func (i *InMem) Put(_ context.Context, key string, data []byte) error {
	dir, name := splitKey(key)
	stored := make([]byte, len(data))
	copy(stored, data)

	i.lock.Lock()
	defer i.lock.Unlock()
	if i.data[dir] == nil {
		i.data[dir] = map[string][]byte{}
	}
	i.data[dir][name] = stored
	return nil
}

func (i *InMem) Get(_ context.Context, key string) ([]byte, bool, error) {
	dir, name := splitKey(key)

	i.lock.RLock()
	defer i.lock.RUnlock()
	bucket, ok := i.data[dir]
	if !ok {
		return nil, false, nil
	}
	data, ok := bucket[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (i *InMem) Delete(_ context.Context, key string) error {
	dir, name := splitKey(key)

	i.lock.Lock()
	defer i.lock.Unlock()
	bucket := i.data[dir]
	if bucket == nil {
		return nil
	}
	i.deleteItem(dir, name, bucket)
	return nil
}

func (i *InMem) List(_ context.Context, prefix string, max int) ([]string, error) {
	i.lock.RLock()
	keys := []string{}
	for dir, bucket := range i.data {
		for name := range bucket {
			key := dir + "/" + name
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
	}
	i.lock.RUnlock()

	sort.Strings(keys)
	if max > 0 && len(keys) > max {
		keys = keys[:max]
	}
	return keys, nil
}

// Len returns the number of stored blobs.
func (i *InMem) Len() int {
	i.lock.RLock()
	defer i.lock.RUnlock()
	n := 0
	for _, bucket := range i.data {
		n += len(bucket)
	}
	return n
}

func (i *InMem) deleteItem(dir string, name string, bucket map[string][]byte) {
	delete(bucket, name)
	if len(bucket) == 0 {
		delete(i.data, dir)
	}
}
