// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"github.com/xmidt-org/folio/store"
	"github.com/xmidt-org/folio/store/cassandra"
	"github.com/xmidt-org/folio/store/db/metric"
	"github.com/xmidt-org/folio/store/dynamodb"
	"github.com/xmidt-org/folio/store/inmem"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Configs struct {
	Dynamo   *dynamodb.Config
	Yugabyte *cassandra.Config
}

type SetupIn struct {
	fx.In
	Configs  Configs
	Measures metric.Measures
	LC       fx.Lifecycle
	Logger   *zap.Logger
}

func Provide() fx.Option {
	return fx.Options(
		metric.ProvideMetrics(),
		fx.Provide(
			SetupStore,
			NewObjectStore,
		),
	)
}

// SetupStore picks the blob backend. The first configured backend wins; with
// none configured everything stays in memory.
func SetupStore(in SetupIn) (store.Blobs, error) {
	if in.Configs.Dynamo != nil {
		in.Logger.Info("using dynamodb store implementation")
		client, err := dynamodb.NewDynamoDB(*in.Configs.Dynamo, in.Measures, in.Logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	if in.Configs.Yugabyte != nil {
		in.Logger.Info("using yugabyte store implementation")
		client, err := cassandra.NewCassandra(*in.Configs.Yugabyte, in.LC, in.Logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	in.Logger.Info("using in memory store implementation")
	return inmem.NewInMem(), nil
}

// NewObjectStore wraps the selected backend with the document codec and
// query metrics.
func NewObjectStore(blobs store.Blobs, measures metric.Measures, logger *zap.Logger) *store.ObjectStore {
	return store.NewObjectStore(blobs, measures, logger)
}
