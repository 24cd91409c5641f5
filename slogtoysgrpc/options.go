// Copyright 2026 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slogtoysgrpc

import (
	"context"
	"log/slog"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
)

// Default meter categories for the two call directions.
const (
	DefaultServerCategory = "grpc.server"
	DefaultClientCategory = "grpc.client"
)

// Option configures the interceptors.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	category    string
	meterCfg    meter.Config
	meterCfgSet bool
	enableOTel  bool
}

func applyOptions(logger *slog.Logger, defaultCategory string, enableOTel bool, opts []Option) *config {
	cfg := &config{
		logger:     logger,
		category:   defaultCategory,
		enableOTel: enableOTel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// rpcLogger resolves the logger for one RPC: the configured one when set,
// otherwise whatever ctx carries (see [slogtoys.ContextWithLogger]), then
// slog.Default.
func (cfg *config) rpcLogger(ctx context.Context) *slog.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return slogtoys.Logger(ctx)
}

// newMeter opens a meter against logger with the configured category and
// settings. Without [WithMeterConfig] the environment-derived defaults
// apply.
func (cfg *config) newMeter(ctx context.Context, logger *slog.Logger) *meter.Meter {
	if cfg.meterCfgSet {
		return meter.NewWithConfig(ctx, logger, cfg.category, cfg.meterCfg)
	}
	return meter.New(ctx, logger, cfg.category)
}

// WithMeterConfig overrides the meter configuration, replacing the
// environment-derived defaults.
func WithMeterConfig(mc meter.Config) Option {
	return func(cfg *config) {
		cfg.meterCfg = mc
		cfg.meterCfgSet = true
	}
}

// WithCategory overrides the meter category. Server interceptors default
// to "grpc.server" and client interceptors to "grpc.client".
func WithCategory(category string) Option {
	return func(cfg *config) {
		if category != "" {
			cfg.category = category
		}
	}
}

// WithOTel toggles otelgrpc stats handlers. Bare interceptors never
// install them regardless; this only affects [ServerOptions] and
// [DialOptions], where it defaults to on.
func WithOTel(enabled bool) Option {
	return func(cfg *config) {
		cfg.enableOTel = enabled
	}
}
