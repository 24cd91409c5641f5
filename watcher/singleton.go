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

package watcher

import (
	"log/slog"
	"sync"
)

var (
	defaultMu      sync.Mutex
	defaultWatcher *Watcher
)

// Default returns the process-wide watcher, building it on first use from
// the environment configuration and slog.Default. The same instance is
// returned until [StopDefault] retires it.
func Default() *Watcher {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultWatcher == nil {
		cfg, _ := ConfigFromEnv()
		defaultWatcher = New(slog.Default(), cfg)
	}
	return defaultWatcher
}

// StartDefault starts the process-wide watcher and returns it.
func StartDefault() *Watcher {
	w := Default()
	w.Start()
	return w
}

// StopDefault stops the process-wide watcher, if any, and retires it so a
// later [StartDefault] builds a fresh one.
func StopDefault() {
	defaultMu.Lock()
	w := defaultWatcher
	defaultWatcher = nil
	defaultMu.Unlock()
	if w != nil {
		w.Stop()
	}
}
