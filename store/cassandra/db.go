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
	"path"
	"strings"
	"time"

	"emperror.dev/emperror"
	"github.com/gocql/gocql"
	"github.com/xmidt-org/folio/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	Yugabyte = "yugabyte"

	defaultOpTimeout             = time.Duration(10) * time.Second
	defaultDatabase              = "folio"
	defaultNumRetries            = 0
	defaultWaitTimeMult          = 1
	defaultMaxNumberConnsPerHost = 2
)

// Config is read from the "yugabyte" key.
type Config struct {
	// Hosts of the cluster. At least one is required.
	Hosts []string

	// Database is the keyspace holding the blobs table. Defaults to folio.
	Database string

	// OpTimeout bounds every query. Defaults to 10s.
	OpTimeout time.Duration

	// TLS is enabled only when SSLRootCert, SSLCert and SSLKey are all set.
	SSLRootCert string
	SSLKey      string
	SSLCert     string

	// EnableHostVerification checks the server certificate against the host
	// name. It is the opposite of tls.Config.InsecureSkipVerify.
	EnableHostVerification bool

	// Password authentication is used when both are set.
	Username string
	Password string

	// NumRetries is how many extra connection attempts are made at startup.
	NumRetries int

	// WaitTimeMult grows the wait between connection attempts, starting at 1s.
	WaitTimeMult time.Duration

	MaxConnsPerHost int
}

// CassandraClient is a store.Blobs over the blobs table.
type CassandraClient struct {
	client dbStore
	config Config
	logger *zap.Logger
}

var (
	_ store.Blobs  = (*CassandraClient)(nil)
	_ store.Pinger = (*CassandraClient)(nil)
)

// NewCassandra connects to the cluster and closes the session when lc stops.
func NewCassandra(config Config, lc fx.Lifecycle, logger *zap.Logger) (*CassandraClient, error) {
	client, err := CreateCassandraClient(config, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

func CreateCassandraClient(config Config, logger *zap.Logger) (*CassandraClient, error) {
	if len(config.Hosts) == 0 {
		return nil, errors.New("number of hosts must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	validateConfig(&config)

	clusterConfig := gocql.NewCluster(config.Hosts...)
	clusterConfig.Consistency = gocql.LocalQuorum
	clusterConfig.Keyspace = config.Database
	clusterConfig.Timeout = config.OpTimeout
	clusterConfig.NumConns = config.MaxConnsPerHost
	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: 1}
	if config.SSLRootCert != "" && config.SSLCert != "" && config.SSLKey != "" {
		clusterConfig.SslOpts = &gocql.SslOptions{
			CertPath:               config.SSLCert,
			KeyPath:                config.SSLKey,
			CaPath:                 config.SSLRootCert,
			EnableHostVerification: config.EnableHostVerification,
		}
	}
	if config.Username != "" && config.Password != "" {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	session, err := connect(clusterConfig, logger)

	// retry if it fails
	waitTime := 1 * time.Second
	for attempt := 0; attempt < config.NumRetries && err != nil; attempt++ {
		time.Sleep(waitTime)
		session, err = connect(clusterConfig, logger)
		waitTime = waitTime * config.WaitTimeMult
	}
	if err != nil {
		return nil, emperror.WrapWith(err, "Connecting to database failed", "hosts", config.Hosts)
	}

	return &CassandraClient{
		client: session,
		config: config,
		logger: logger,
	}, nil
}

func (s *CassandraClient) Put(ctx context.Context, key string, data []byte) error {
	bucket, id := path.Dir(key), path.Base(key)
	if err := s.client.Put(ctx, bucket, id, data); err != nil {
		return s.wrap(err, "put", key)
	}
	return nil
}

func (s *CassandraClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	bucket, id := path.Dir(key), path.Base(key)
	data, err := s.client.Get(ctx, bucket, id)
	if err != nil {
		if err == noDataResponse {
			return nil, false, nil
		}
		return nil, false, s.wrap(err, "get", key)
	}
	return data, true, nil
}

func (s *CassandraClient) Delete(ctx context.Context, key string) error {
	bucket, id := path.Dir(key), path.Base(key)
	if err := s.client.Delete(ctx, bucket, id); err != nil {
		return s.wrap(err, "delete", key)
	}
	return nil
}

// List reads one partition. A prefix ending in "/" lists that directory,
// anything else also filters file names.
func (s *CassandraClient) List(ctx context.Context, prefix string, max int) ([]string, error) {
	bucket, idPrefix := strings.TrimSuffix(prefix, "/"), ""
	if !strings.HasSuffix(prefix, "/") {
		bucket, idPrefix = path.Dir(prefix), path.Base(prefix)
	}
	ids, err := s.client.List(ctx, bucket)
	if err != nil {
		return nil, s.wrap(err, "list", prefix)
	}
	keys := []string{}
	for _, id := range ids {
		if !strings.HasPrefix(id, idPrefix) {
			continue
		}
		keys = append(keys, bucket+"/"+id)
		if max > 0 && len(keys) >= max {
			break
		}
	}
	return keys, nil
}

func (s *CassandraClient) Close() {
	s.client.Close()
}

// Ping is for pinging the database to verify that the connection is still good.
func (s *CassandraClient) Ping(context.Context) error {
	if err := s.client.Ping(); err != nil {
		return s.wrap(emperror.WrapWith(err, "Pinging connection failed"), "ping", "")
	}
	return nil
}

func (s *CassandraClient) wrap(err error, op, key string) error {
	return &store.Error{
		Kind:    store.KindOf(err),
		Op:      op,
		Key:     key,
		Backend: Yugabyte,
		Err:     err,
	}
}

func validateConfig(config *Config) {
	zeroDuration := time.Duration(0) * time.Second

	if config.OpTimeout == zeroDuration {
		config.OpTimeout = defaultOpTimeout
	}

	if config.Database == "" {
		config.Database = defaultDatabase
	}
	if config.NumRetries < 0 {
		config.NumRetries = defaultNumRetries
	}
	if config.WaitTimeMult < 1 {
		config.WaitTimeMult = defaultWaitTimeMult
	}
	if config.MaxConnsPerHost <= 0 {
		config.MaxConnsPerHost = defaultMaxNumberConnsPerHost
	}
}
