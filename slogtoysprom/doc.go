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

// Package slogtoysprom exports meter activity as Prometheus metrics.
//
// [Metrics.Wrap] returns handler middleware that watches marked records
// flow past on their way to the real handler. Every marked line, meter,
// watcher or report, increments
//
//	slogtoys_meter_events_total{category, marker}
//
// and each terminated operation observes its elapsed time in
//
//	slogtoys_meter_duration_seconds{category, outcome}
//
// with outcome ok, rejected or failed. Lines without a meter category,
// such as watcher and report lines, count with an empty category label.
//
// Basic usage:
//
//	metrics := slogtoysprom.New(prometheus.DefaultRegisterer)
//	logger := slog.New(metrics.Wrap(handler))
//	m := meter.New(ctx, logger, "billing")
//
// Records the wrapped handler is not enabled for are never handled, so
// they are not counted either. Leave the compact data stream disabled and
// the counter reflects readable lines only.
package slogtoysprom
