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

// Package slogtoys augments the standard library's [log/slog] package with
// structured operation-lifecycle logging, periodic runtime health
// snapshots, and on-demand diagnostic reports. It is a thin layer over the
// existing logging API: the library owns no handler or sink, and everything
// it emits flows through a caller-supplied [log/slog.Logger], passed
// directly or carried by context (see [ContextWithLogger]).
//
// Every instrument produces two kinds of lines. Readable lines (Debug
// through Error) describe what happened in plain text. Compact data lines
// carry the same event machine-parseably in a short-key textual format and
// are emitted at [LevelTrace], below Debug, so they cost nothing unless a
// handler opts in. Both kinds are tagged with a [Marker] attribute so
// handlers can filter, split, or silence each stream independently; see
// [FilterMarkers].
//
// This root package holds the shared core: the process [SessionID], the
// [Event] and [Status] records with their compact [Encoder]/[Decoder], the
// gated runtime collector [CollectStatus], markers, and platform
// detection.
//
// # Subpackages
//
//   - [github.com/pjscruggs/slogtoys/meter] tracks individual operations
//     through a start/ok/reject/fail lifecycle.
//   - [github.com/pjscruggs/slogtoys/watcher] logs runtime snapshots on a
//     fixed schedule.
//   - [github.com/pjscruggs/slogtoys/reporter] dumps one-shot diagnostics
//     (runtime, memory, host, OS, network, TLS).
//   - [github.com/pjscruggs/slogtoys/slogtoyshttp] meters every request of
//     an [net/http.Handler] or client round tripper.
//   - [github.com/pjscruggs/slogtoys/slogtoysgrpc] meters every RPC via
//     gRPC interceptors.
//   - [github.com/pjscruggs/slogtoys/slogtoysprom] exposes meter outcomes
//     as Prometheus metrics.
//
// # Quick Start
//
// Meter an operation inline with business logic:
//
//	m := meter.New(ctx, logger, "billing.invoice").Op("render").Start()
//	defer m.Close() // fails the operation if nothing terminated it
//
//	if err := render(ctx); err != nil {
//	    m.Fail(err)
//	    return err
//	}
//	m.OK()
//
// # Configuration
//
// Configuration structs are immutable values: build them from defaults
// (for example [DefaultStatusConfig]) or from SLOGTOYS_* environment
// variables (for example [StatusConfigFromEnv]). Parsing is lenient;
// malformed values warn on stderr, fall back to defaults, and are
// reported joined in the returned error, so a bad variable never stops a
// process from starting.
package slogtoys
