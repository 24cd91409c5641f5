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

package slogtoyshttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
)

// Option configures [Middleware] or [Transport].
type Option func(*config)

type config struct {
	logger      *slog.Logger
	category    string
	meterCfg    meter.Config
	meterCfgSet bool
	enableOTel  bool
	extract     bool
	opNamer     func(*http.Request) string
}

func applyOptions(logger *slog.Logger, defaultCategory string, opts []Option) *config {
	cfg := &config{
		logger:   logger,
		category: defaultCategory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// requestLogger resolves the logger for one request: the configured one
// when set, otherwise whatever ctx carries (see
// [slogtoys.ContextWithLogger]), then slog.Default.
func (cfg *config) requestLogger(ctx context.Context) *slog.Logger {
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

// WithCategory overrides the meter category. Middleware defaults to
// "http.server" and Transport to "http.client".
func WithCategory(category string) Option {
	return func(cfg *config) {
		if category != "" {
			cfg.category = category
		}
	}
}

// WithOTel wraps the handler or transport with otelhttp instrumentation
// so each metered request also gets a span. Off by default.
func WithOTel(enabled bool) Option {
	return func(cfg *config) {
		cfg.enableOTel = enabled
	}
}

// WithPropagationExtract seeds the request context from inbound trace
// headers (via the global propagator) when no span context is already
// present, letting meter lines correlate without otelhttp. Off by
// default; requests from untrusted clients would otherwise dictate your
// trace IDs.
func WithPropagationExtract(enabled bool) Option {
	return func(cfg *config) {
		cfg.extract = enabled
	}
}

// WithOperationNamer overrides how the meter operation is derived from a
// request. The default prefers the ServeMux pattern and falls back to
// "METHOD /path".
func WithOperationNamer(fn func(*http.Request) string) Option {
	return func(cfg *config) {
		cfg.opNamer = fn
	}
}
