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

// Package watcher logs periodic runtime status snapshots through slog.
//
// A [Watcher] runs one background goroutine that, after an initial delay,
// collects a [slogtoys.Status] on every period and emits it twice: a
// readable summary at Info tagged [slogtoys.WatcherMsg], and the compact
// record at [slogtoys.LevelTrace] tagged [slogtoys.WatcherData]. The trace
// lines form a machine-readable time series of the process's runtime
// health that costs nothing to consume later and almost nothing to
// produce.
//
// Most programs want exactly one watcher wired to the default logger:
//
//	watcher.StartDefault()
//	defer watcher.StopDefault()
//
// For explicit wiring, build one with [New] and manage it yourself. Start
// and Stop are idempotent; a stopped watcher stays stopped.
package watcher
