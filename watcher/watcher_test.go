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

package watcher_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/watcher"
)

// captureHandler records every handled record for later inspection.
type captureHandler struct {
	mu    sync.Mutex
	level slog.Level
	recs  []slog.Record
}

func (h *captureHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.recs)
}

func (h *captureHandler) records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]slog.Record{}, h.recs...)
}

func testConfig() watcher.Config {
	return watcher.Config{
		Name:   "test-watcher",
		Delay:  time.Millisecond,
		Period: 5 * time.Millisecond,
		Status: slogtoys.StatusConfig{Concurrency: true},
	}
}

func TestRunOnceEmitsPair(t *testing.T) {
	h := &captureHandler{level: slogtoys.LevelTrace.Level()}
	w := watcher.New(slog.New(h), testConfig())

	w.RunOnce(context.Background())

	recs := h.records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}

	readable, data := recs[0], recs[1]
	if mk, ok := slogtoys.MarkerFromRecord(readable); !ok || mk != slogtoys.WatcherMsg {
		t.Errorf("readable marker = %q, want WATCHER_MSG", mk)
	}
	if readable.Level != slog.LevelInfo {
		t.Errorf("readable level = %v, want INFO", readable.Level)
	}
	var name string
	readable.Attrs(func(a slog.Attr) bool {
		if a.Key == "watcher" {
			name = a.Value.String()
			return false
		}
		return true
	})
	if name != "test-watcher" {
		t.Errorf("watcher attr = %q, want test-watcher", name)
	}

	if mk, ok := slogtoys.MarkerFromRecord(data); !ok || mk != slogtoys.WatcherData {
		t.Errorf("data marker = %q, want WATCHER_DATA", mk)
	}
	if data.Level != slogtoys.LevelTrace.Level() {
		t.Errorf("data level = %v, want TRACE", data.Level)
	}
	var st slogtoys.Status
	if err := st.DecodeCompact(data.Message); err != nil {
		t.Fatalf("DecodeCompact(%q): %v", data.Message, err)
	}
	if st.Session != slogtoys.SessionID() {
		t.Errorf("session = %q, want %q", st.Session, slogtoys.SessionID())
	}
	if st.Goroutines < 1 {
		t.Errorf("goroutines = %d, want at least 1", st.Goroutines)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	h := &captureHandler{level: slogtoys.LevelTrace.Level()}
	w := watcher.New(slog.New(h), testConfig())

	w.Start()
	w.Start()

	deadline := time.After(2 * time.Second)
	for h.count() < 4 {
		select {
		case <-deadline:
			t.Fatalf("only %d records before deadline, want at least 4", h.count())
		case <-time.After(time.Millisecond):
		}
	}

	w.Stop()
	w.Stop()

	settled := h.count()
	time.Sleep(25 * time.Millisecond)
	if got := h.count(); got != settled {
		t.Errorf("watcher emitted %d records after Stop", got-settled)
	}
}

func TestStopWithoutStart(t *testing.T) {
	w := watcher.New(slog.Default(), testConfig())
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start hung")
	}
}

func TestStartAfterStopStaysStopped(t *testing.T) {
	h := &captureHandler{level: slogtoys.LevelTrace.Level()}
	cfg := testConfig()
	cfg.Delay = time.Minute // nothing should emit within the test window
	w := watcher.New(slog.New(h), cfg)

	w.Stop()
	w.Start()
	time.Sleep(10 * time.Millisecond)
	if got := h.count(); got != 0 {
		t.Errorf("stopped watcher emitted %d records", got)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	w := watcher.New(nil, watcher.Config{Delay: -1})
	cfg := w.Config()
	def := watcher.DefaultConfig()
	if cfg.Name != def.Name || cfg.Delay != def.Delay || cfg.Period != def.Period {
		t.Errorf("Config = %+v, want defaults applied", cfg)
	}
}

func TestDefaultSingleton(t *testing.T) {
	first := watcher.Default()
	if first == nil || first != watcher.Default() {
		t.Fatal("Default should return one stable instance")
	}
	if started := watcher.StartDefault(); started != first {
		t.Error("StartDefault should start the Default instance")
	}
	watcher.StopDefault()
	if second := watcher.Default(); second == first {
		t.Error("StopDefault should retire the instance")
	}
	watcher.StopDefault()
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(watcher.EnvName, "edge")
	t.Setenv(watcher.EnvDelay, "500")
	t.Setenv(watcher.EnvPeriod, "2s")

	cfg, err := watcher.ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Name != "edge" {
		t.Errorf("Name = %q, want edge", cfg.Name)
	}
	if cfg.Delay != 500*time.Millisecond {
		t.Errorf("Delay = %v, want 500ms (bare integer means milliseconds)", cfg.Delay)
	}
	if cfg.Period != 2*time.Second {
		t.Errorf("Period = %v, want 2s", cfg.Period)
	}
}

func TestRunOnceUsesContextLogger(t *testing.T) {
	h := &captureHandler{level: slog.LevelInfo}
	w := watcher.New(nil, testConfig())

	ctx := slogtoys.ContextWithLogger(context.Background(), slog.New(h))
	w.RunOnce(ctx)

	recs := h.records()
	if len(recs) != 1 {
		t.Fatalf("got %d records through the context logger, want 1", len(recs))
	}
	if mk, ok := slogtoys.MarkerFromRecord(recs[0]); !ok || mk != slogtoys.WatcherMsg {
		t.Errorf("marker = %q, want WATCHER_MSG", mk)
	}
}
