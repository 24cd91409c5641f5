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
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pjscruggs/slogtoys"
)

var traceLevel = slogtoys.LevelTrace.Level()

// Watcher periodically snapshots the runtime status and logs it. Construct
// with [New]; the zero value is not usable.
type Watcher struct {
	logger *slog.Logger
	cfg    Config

	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	running   atomic.Bool
}

// New returns a Watcher logging through logger on cfg's schedule. A nil
// logger defers to the context of each run (see
// [slogtoys.ContextWithLogger]), then to slog.Default; an empty name, a
// negative delay, or a non-positive period fall back to their
// [DefaultConfig] values. The watcher does nothing until [Watcher.Start].
func New(logger *slog.Logger, cfg Config) *Watcher {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Delay < 0 {
		cfg.Delay = def.Delay
	}
	if cfg.Period <= 0 {
		cfg.Period = def.Period
	}
	return &Watcher{
		logger: logger,
		cfg:    cfg,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Config returns the watcher's effective configuration after defaulting.
func (w *Watcher) Config() Config {
	return w.cfg
}

// Start launches the snapshot goroutine. Calling Start again, or after
// [Watcher.Stop], has no effect.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.running.Store(true)
		go w.loop()
	})
}

// Stop halts the snapshot goroutine and waits for it to exit. Stop is
// idempotent and may be called without a prior Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		if w.running.Load() {
			<-w.done
		}
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	delay := time.NewTimer(w.cfg.Delay)
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-w.stop:
		return
	}
	w.RunOnce(context.Background())

	ticker := time.NewTicker(w.cfg.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.RunOnce(context.Background())
		case <-w.stop:
			return
		}
	}
}

// RunOnce collects one status snapshot and logs the readable/compact line
// pair immediately. The background loop calls it on schedule; callers may
// also invoke it directly, for example right before shutdown.
func (w *Watcher) RunOnce(ctx context.Context) {
	logger := w.logger
	if logger == nil {
		logger = slogtoys.Logger(ctx)
	}

	var st slogtoys.Status
	slogtoys.CollectStatus(w.cfg.Status, &st)
	st.Stamp(time.Now())

	nameAttr := slog.String("watcher", w.cfg.Name)
	if logger.Enabled(ctx, slog.LevelInfo) {
		logger.LogAttrs(ctx, slog.LevelInfo, st.Summary(), slogtoys.WatcherMsg.Attr(), nameAttr)
	}
	if logger.Enabled(ctx, traceLevel) {
		logger.LogAttrs(ctx, traceLevel, st.Compact(), slogtoys.WatcherData.Attr(), nameAttr)
	}
}
