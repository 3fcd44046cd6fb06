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

package cassandra

import (
	"context"
	"errors"

	"github.com/gocql/gocql"
	"github.com/hailocab/go-hostpool"
	"go.uber.org/zap"
)

// dbStore is the row level contract. Rows are keyed by (bucket, id); a
// bucket is a blob's directory and the id its file name.
type dbStore interface {
	Put(ctx context.Context, bucket, id string, data []byte) error
	Get(ctx context.Context, bucket, id string) ([]byte, error)
	Delete(ctx context.Context, bucket, id string) error
	List(ctx context.Context, bucket string) ([]string, error)
	Close()
	Ping() error
}

var (
	noDataResponse = errors.New("no data from query")
	serverClosed   = errors.New("server is closed")
)

type cassandraExecutor struct {
	session *gocql.Session
	logger  *zap.Logger
}

func connect(clusterConfig *gocql.ClusterConfig, logger *zap.Logger) (dbStore, error) {
	clusterConfig.PoolConfig.HostSelectionPolicy = gocql.HostPoolHostPolicy(hostpool.New(nil))
	session, err := clusterConfig.CreateSession()
	if err != nil {
		return nil, err
	}

	return &cassandraExecutor{session: session, logger: logger}, nil
}

func (s *cassandraExecutor) Put(ctx context.Context, bucket, id string, data []byte) error {
	return s.session.Query("INSERT INTO blobs (bucket, id, data) VALUES (?,?,?)", bucket, id, data).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) Get(ctx context.Context, bucket, id string) ([]byte, error) {
	var data []byte
	err := s.session.Query("SELECT data FROM blobs WHERE bucket = ? AND id = ?", bucket, id).WithContext(ctx).Scan(&data)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, noDataResponse
	}
	return data, err
}

func (s *cassandraExecutor) Delete(ctx context.Context, bucket, id string) error {
	return s.session.Query("DELETE FROM blobs WHERE bucket = ? AND id = ?", bucket, id).WithContext(ctx).Exec()
}

func (s *cassandraExecutor) List(ctx context.Context, bucket string) ([]string, error) {
	var (
		id  string
		ids []string
	)
	iter := s.session.Query("SELECT id FROM blobs WHERE bucket = ?", bucket).WithContext(ctx).Iter()
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		s.logger.Error("failed to close iter", zap.String("bucket", bucket), zap.Error(err))
		return nil, err
	}
	return ids, nil
}

func (s *cassandraExecutor) Close() {
	s.session.Close()
}

func (s *cassandraExecutor) Ping() error {
	if s.session.Closed() {
		return serverClosed
	}
	return nil
}
