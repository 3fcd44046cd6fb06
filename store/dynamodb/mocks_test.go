/**
 * Copyright 2026 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockClient) GetItem(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockClient) DeleteItem(_ context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func (m *mockClient) Query(_ context.Context, input *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(input)
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Put(_ context.Context, key string, data []byte) (*types.ConsumedCapacity, error) {
	args := m.Called(key, data)
	return args.Get(0).(*types.ConsumedCapacity), args.Error(1)
}

func (m *mockService) Get(_ context.Context, key string) ([]byte, bool, *types.ConsumedCapacity, error) {
	args := m.Called(key)
	return args.Get(0).([]byte), args.Bool(1), args.Get(2).(*types.ConsumedCapacity), args.Error(3)
}

func (m *mockService) Delete(_ context.Context, key string) (*types.ConsumedCapacity, error) {
	args := m.Called(key)
	return args.Get(0).(*types.ConsumedCapacity), args.Error(1)
}

func (m *mockService) List(_ context.Context, prefix string, max int) ([]string, *types.ConsumedCapacity, error) {
	args := m.Called(prefix, max)
	return args.Get(0).([]string), args.Get(1).(*types.ConsumedCapacity), args.Error(2)
}
