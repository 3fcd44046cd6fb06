// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/folio/model"
)

type mockBlobs struct {
	mock.Mock
}

func (m *mockBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockBlobs) Put(_ context.Context, key string, data []byte) error {
	return m.Called(key, data).Error(0)
}

func (m *mockBlobs) Delete(_ context.Context, key string) error {
	return m.Called(key).Error(0)
}

func (m *mockBlobs) List(_ context.Context, prefix string, max int) ([]string, error) {
	args := m.Called(prefix, max)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Get(_ context.Context, t model.ResourceType, id string) (model.Document, bool, error) {
	args := m.Called(t, id)
	doc, _ := args.Get(0).(model.Document)
	return doc, args.Bool(1), args.Error(2)
}

func (m *mockRemote) List(_ context.Context, t model.ResourceType, filters map[string]string) ([]model.Document, error) {
	args := m.Called(t, filters)
	docs, _ := args.Get(0).([]model.Document)
	return docs, args.Error(1)
}
