/**
 * Copyright 2020 Comcast Cable Communications Management, LLC
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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/folio/breaker"
	"github.com/xmidt-org/folio/cache"
	"github.com/xmidt-org/folio/dedup"
	"github.com/xmidt-org/folio/index"
	"github.com/xmidt-org/folio/mirror"
	"github.com/xmidt-org/folio/remote"
	"github.com/xmidt-org/folio/storage"
	"github.com/xmidt-org/folio/store/db"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const (
	applicationName = "folio"
	apiBase         = "/api/v1"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Supply(logger, v),
		touchstone.Provide(),
		provideMetrics(),
		db.Provide(),
		cache.Provide(),
		storage.Provide(),
		fx.Provide(
			unmarshalKey[storage.Config]("storage"),
			unmarshalKey[mirror.Config]("mirror"),
			unmarshalKey[index.Config]("index"),
			unmarshalKey[breaker.Config]("breaker"),
			unmarshalKey[dedup.Config]("dedup"),
			unmarshalKey[remote.Config]("remote"),
			unmarshalKey[cache.Config]("cache"),
			unmarshalKey[touchstone.Config]("prometheus"),
			unmarshalKey[ServersConfig]("servers"),
			provideDBConfigs,
			candlelight.New,
			func(v *viper.Viper) (candlelight.Config, error) {
				var config candlelight.Config
				if err := v.UnmarshalKey("tracing", &config); err != nil {
					return candlelight.Config{}, err
				}
				config.ApplicationName = applicationName
				return config, nil
			},
		),
		fx.Invoke(
			BuildPrimaryRoutes,
			BuildMetricsRoutes,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// unmarshalKey provides the value stored under key. A missing key yields the
// zero value.
func unmarshalKey[T any](key string) func(*viper.Viper) (T, error) {
	return func(v *viper.Viper) (T, error) {
		var t T
		err := v.UnmarshalKey(key, &t)
		return t, err
	}
}

// provideDBConfigs leaves a backend nil unless its key is present.
func provideDBConfigs(v *viper.Viper) (db.Configs, error) {
	var c db.Configs
	if v.IsSet("dynamo") {
		if err := v.UnmarshalKey("dynamo", &c.Dynamo); err != nil {
			return db.Configs{}, err
		}
	}
	if v.IsSet("yugabyte") {
		if err := v.UnmarshalKey("yugabyte", &c.Yugabyte); err != nil {
			return db.Configs{}, err
		}
	}
	return c, nil
}

