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

package meter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/internal/units"
)

// ErrAbandoned is the failure recorded by [Meter.Close] when it finds an
// operation that was started but never terminated.
var ErrAbandoned = errors.New("operation abandoned")

// errUnspecified stands in for the error a Fail(nil) caller failed to supply.
var errUnspecified = errors.New("unspecified failure")

// timeNow is a test seam over time.Now.
var timeNow = time.Now

var traceLevel = slogtoys.LevelTrace.Level()

type state uint8

const (
	stateCreated state = iota
	stateStarted
	stateOK
	stateRejected
	stateFailed
)

// Meter follows one operation from creation through exactly one terminal
// state, logging each transition as a readable line plus a compact
// trace-level [Data] line. The zero value is not usable; construct meters
// with [New] or [NewWithConfig].
//
// All methods are safe for concurrent use and tolerate misuse: calls in the
// wrong order, or on a nil receiver, never panic. The first terminal call
// wins; later ones are reported as inconsistencies and ignored.
type Meter struct {
	ctx    context.Context
	logger *slog.Logger
	cfg    Config

	mu           sync.Mutex
	st           state
	category     string
	operation    string
	description  string
	kv           map[string]string
	createTime   time.Time
	startTime    time.Time
	stopTime     time.Time
	lastProgress time.Time
	iteration    int64
	expected     int64
	limit        time.Duration
	okPath       string
	rejection    string
	failure      error
}

// New returns a meter for one operation in the given category, configured
// from the environment (see [ConfigFromEnv], loaded once per process). The
// context scopes the operation and is attached to every line the meter
// emits; a nil logger falls back to the logger ctx carries (see
// [slogtoys.ContextWithLogger]), then to slog.Default. An empty category
// becomes [UnknownCategory].
func New(ctx context.Context, logger *slog.Logger, category string) *Meter {
	return NewWithConfig(ctx, logger, category, defaultEnvConfig())
}

// NewWithConfig is [New] with an explicit configuration.
func NewWithConfig(ctx context.Context, logger *slog.Logger, category string, cfg Config) *Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slogtoys.Logger(ctx)
	}
	if category == "" {
		category = UnknownCategory
	}
	return &Meter{
		ctx:        ctx,
		logger:     logger,
		cfg:        cfg,
		category:   category,
		createTime: timeNow(),
	}
}

// Op names the operation within the meter's category. It may only be called
// before Start.
func (m *Meter) Op(name string) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st != stateCreated {
		m.inconsistentLocked("Op called after Start")
		return m
	}
	m.operation = name
	return m
}

// Sub returns a new meter for a child step of this operation: same
// category, logger, context, and configuration, with the operation path
// extended by name and the context key/values inherited by copy. The child
// has its own lifecycle and must be started and terminated independently.
func (m *Meter) Sub(name string) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	op := m.operation
	if name == "" {
		m.inconsistentLocked("Sub called with empty name")
	} else if op != "" {
		op = op + "/" + name
	} else {
		op = name
	}
	child := &Meter{
		ctx:        m.ctx,
		logger:     m.logger,
		cfg:        m.cfg,
		category:   m.category,
		operation:  op,
		kv:         maps.Clone(m.kv),
		createTime: timeNow(),
	}
	m.mu.Unlock()
	return child
}

// Describe sets the human description shown on readable lines. With no
// args, format is used verbatim. Describe may be called at any point
// before termination; progress lines pick up the latest text.
func (m *Meter) Describe(format string, args ...any) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configurableLocked("Describe") {
		return m
	}
	if len(args) == 0 {
		m.description = format
	} else {
		m.description = fmt.Sprintf(format, args...)
	}
	return m
}

// Ctx attaches a key/value pair carried on every subsequent line. The value
// is rendered with %v; nil keeps a value-less flag key.
func (m *Meter) Ctx(key string, value any) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configurableLocked("Ctx") {
		return m
	}
	if m.kv == nil {
		m.kv = make(map[string]string)
	}
	if value == nil {
		m.kv[key] = ""
	} else {
		m.kv[key] = fmt.Sprint(value)
	}
	return m
}

// Unctx removes a key set by [Meter.Ctx]. Removing an absent key is a
// no-op.
func (m *Meter) Unctx(key string) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configurableLocked("Unctx") {
		return m
	}
	delete(m.kv, key)
	return m
}

// Iterations declares how many iterations the operation is expected to
// run, enabling progress ratios and rates on emitted lines.
func (m *Meter) Iterations(n int64) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configurableLocked("Iterations") {
		return m
	}
	if n <= 0 {
		m.inconsistentLocked("Iterations called with non-positive count")
		return m
	}
	m.expected = n
	return m
}

// Inc advances the iteration counter by one.
func (m *Meter) Inc() *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked("Inc") {
		return m
	}
	m.iteration++
	return m
}

// IncBy advances the iteration counter by n.
func (m *Meter) IncBy(n int64) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked("IncBy") {
		return m
	}
	if n <= 0 {
		m.inconsistentLocked("IncBy called with non-positive count")
		return m
	}
	m.iteration += n
	return m
}

// IncTo sets the iteration counter to an absolute value.
func (m *Meter) IncTo(n int64) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked("IncTo") {
		return m
	}
	if n <= 0 {
		m.inconsistentLocked("IncTo called with non-positive count")
		return m
	}
	m.iteration = n
	return m
}

// Limit sets the slow-operation threshold. An operation that succeeds after
// running longer than d is reported as OK (slow) at Warn instead of Info.
func (m *Meter) Limit(d time.Duration) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configurableLocked("Limit") {
		return m
	}
	if d <= 0 {
		m.inconsistentLocked("Limit called with non-positive duration")
		return m
	}
	m.limit = d
	return m
}

// Start begins the operation, emitting the start line pair. Calling Start
// twice, or after termination, is reported as an inconsistency.
func (m *Meter) Start() *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.st {
	case stateCreated:
	case stateStarted:
		m.inconsistentLocked("Start called twice")
		return m
	default:
		m.inconsistentLocked("Start called after termination")
		return m
	}
	now := timeNow()
	m.st = stateStarted
	m.startTime = now
	m.lastProgress = now
	m.emitPairLocked("START", slog.LevelDebug, slogtoys.MeterMsgStart, slogtoys.MeterDataStart, now)
	return m
}

// Progress reports that the operation is advancing. Emission is throttled
// to one line pair per configured progress period, so hot loops may call
// Progress on every iteration.
func (m *Meter) Progress() *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked("Progress") {
		return m
	}
	now := timeNow()
	if now.Sub(m.lastProgress) < m.cfg.ProgressPeriod {
		return m
	}
	m.lastProgress = now
	m.emitPairLocked("PROGRESS", slog.LevelInfo, slogtoys.MeterMsgProgress, slogtoys.MeterDataProgress, now)
	return m
}

// OK terminates the operation as successful.
func (m *Meter) OK() *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.okLocked("OK", "")
}

// OKPath terminates the operation as successful and labels the flow that
// produced the success, such as a cache hit versus a fetch.
func (m *Meter) OKPath(path string) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.okLocked("OKPath", path)
}

func (m *Meter) okLocked(op, path string) *Meter {
	if !m.runningLocked(op) {
		return m
	}
	now := timeNow()
	m.st = stateOK
	m.stopTime = now
	m.okPath = path
	verb, level := "OK", slog.LevelInfo
	msgMarker, dataMarker := slogtoys.MeterMsgOK, slogtoys.MeterDataOK
	if m.limit > 0 && now.Sub(m.startTime) > m.limit {
		verb, level = "OK (slow)", slog.LevelWarn
		msgMarker, dataMarker = slogtoys.MeterMsgSlowOK, slogtoys.MeterDataSlowOK
	}
	m.emitPairLocked(verb, level, msgMarker, dataMarker, now)
	return m
}

// Reject terminates the operation as refused for an expected business
// reason; it is an outcome of the domain, not an error, and logs at Info.
func (m *Meter) Reject(reason string) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.runningLocked("Reject") {
		return m
	}
	now := timeNow()
	m.st = stateRejected
	m.stopTime = now
	m.rejection = reason
	m.emitPairLocked("REJECT", slog.LevelInfo, slogtoys.MeterMsgReject, slogtoys.MeterDataReject, now)
	return m
}

// Fail terminates the operation as abnormally ended, logging at Error. A
// nil err is reported as an inconsistency and recorded as an unspecified
// failure so the termination still counts.
func (m *Meter) Fail(err error) *Meter {
	if m == nil {
		return m
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failLocked(err)
}

func (m *Meter) failLocked(err error) *Meter {
	if !m.runningLocked("Fail") {
		return m
	}
	if err == nil {
		m.inconsistentLocked("Fail called with nil error")
		err = errUnspecified
	}
	now := timeNow()
	m.st = stateFailed
	m.stopTime = now
	m.failure = err
	m.emitPairLocked("FAIL", slog.LevelError, slogtoys.MeterMsgFail, slogtoys.MeterDataFail, now)
	return m
}

// Close settles the meter, making it safe to defer right after Start: a
// started but unterminated operation fails with [ErrAbandoned], a
// terminated one is left alone, and closing a meter that never started is
// reported as an inconsistency.
func (m *Meter) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.st {
	case stateCreated:
		m.inconsistentLocked("Close called before Start")
	case stateStarted:
		m.failLocked(ErrAbandoned)
	}
}

// Outcome reports how the operation ended: "ok", "rejected", or "failed",
// or the empty string while it is still pending.
func (m *Meter) Outcome() string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.st {
	case stateOK:
		return "ok"
	case stateRejected:
		return "rejected"
	case stateFailed:
		return "failed"
	}
	return ""
}

// Snapshot returns the meter's fields as a [Data] record for inspection.
// Unlike the emitted data lines it does not advance the event sequence and
// carries no runtime metrics.
func (m *Meter) Snapshot() Data {
	if m == nil {
		return Data{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var d Data
	m.fillLocked(&d)
	return d
}

// runningLocked reports whether the operation is in flight, recording the
// inconsistency otherwise. Progress, iteration, and terminal calls all
// require a started, unterminated meter.
func (m *Meter) runningLocked(op string) bool {
	switch m.st {
	case stateStarted:
		return true
	case stateCreated:
		m.inconsistentLocked(op + " called before Start")
	default:
		m.inconsistentLocked(op + " called after termination")
	}
	return false
}

// configurableLocked reports whether a configuration call may proceed;
// configuration is open until the meter terminates.
func (m *Meter) configurableLocked(op string) bool {
	if m.st > stateStarted {
		m.inconsistentLocked(op + " called after termination")
		return false
	}
	return true
}

func (m *Meter) inconsistentLocked(detail string) {
	m.emit(func() {
		attrs := make([]slog.Attr, 0, 3)
		attrs = append(attrs, slogtoys.MeterInconsistent.Attr(), slog.String("category", m.category))
		if m.operation != "" {
			attrs = append(attrs, slog.String("operation", m.operation))
		}
		m.logger.LogAttrs(m.ctx, slog.LevelWarn, "meter misuse: "+detail, attrs...)
	})
}

// emitPairLocked writes the readable line and, when trace-level output is
// enabled, the compact data line. Both share the same instant; the data
// line consumes the next event position.
func (m *Meter) emitPairLocked(verb string, level slog.Level, msgMarker, dataMarker slogtoys.Marker, now time.Time) {
	m.emit(func() {
		if m.logger.Enabled(m.ctx, level) {
			m.logger.LogAttrs(m.ctx, level, m.messageLocked(verb, now), m.readableAttrsLocked(msgMarker, now)...)
		}
		if m.logger.Enabled(m.ctx, traceLevel) {
			var d Data
			slogtoys.CollectStatus(m.cfg.Status, &d.Status)
			d.Stamp(now)
			m.fillLocked(&d)
			m.logger.LogAttrs(m.ctx, traceLevel, d.Compact(), dataMarker.Attr())
		}
	})
}

// emit runs one emission attempt, converting any panic out of the logging
// stack into a single error line so meter calls never take the operation
// down with them.
func (m *Meter) emit(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.reportBug(r)
		}
	}()
	fn()
}

func (m *Meter) reportBug(r any) {
	defer func() {
		if rr := recover(); rr != nil {
			fmt.Fprintf(os.Stderr, "[slogtoys meter] ERROR: emit failed: %v\n", rr)
		}
	}()
	m.logger.LogAttrs(m.ctx, slog.LevelError,
		fmt.Sprintf("meter internal failure: %v", r), slogtoys.MeterBug.Attr())
}

// fillLocked copies the meter's fields into d.
func (m *Meter) fillLocked(d *Data) {
	d.Category = m.category
	d.Operation = m.operation
	d.Description = m.description
	d.CreateTime = m.createTime.UnixNano()
	if !m.startTime.IsZero() {
		d.StartTime = m.startTime.UnixNano()
	}
	if !m.stopTime.IsZero() {
		d.StopTime = m.stopTime.UnixNano()
	}
	d.Iteration = m.iteration
	d.Expected = m.expected
	if m.limit > 0 {
		d.Limit = int64(m.limit)
	}
	d.OKPath = m.okPath
	d.Rejection = m.rejection
	if m.failure != nil {
		if pe, ok := m.failure.(*panicError); ok {
			d.FailureKind = "panic"
			d.FailureMessage = pe.Error()
		} else {
			d.FailureKind = fmt.Sprintf("%T", m.failure)
			d.FailureMessage = m.failure.Error()
		}
	}
	if len(m.kv) > 0 {
		d.Context = maps.Clone(m.kv)
	}
}

func (m *Meter) elapsedLocked(now time.Time) time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	end := m.stopTime
	if end.IsZero() {
		end = now
	}
	return end.Sub(m.startTime)
}

func (m *Meter) displayNameLocked() string {
	if m.operation == "" {
		return m.category
	}
	if m.cfg.PrintCategory {
		return m.category + "/" + m.operation
	}
	return m.operation
}

// messageLocked builds the readable message: the verb, the operation name,
// an optional [path] or [reason] tag, then description, failure, iteration
// count, elapsed time, and rate, joined with semicolons.
func (m *Meter) messageLocked(verb string, now time.Time) string {
	var b strings.Builder
	b.WriteString(verb)
	b.WriteByte(' ')
	b.WriteString(m.displayNameLocked())
	if m.okPath != "" {
		b.WriteString(" [")
		b.WriteString(m.okPath)
		b.WriteByte(']')
	} else if m.rejection != "" {
		b.WriteString(" [")
		b.WriteString(m.rejection)
		b.WriteByte(']')
	}

	var parts []string
	if m.description != "" {
		parts = append(parts, m.description)
	}
	if m.failure != nil {
		parts = append(parts, m.failure.Error())
	}
	if m.expected > 0 {
		parts = append(parts, units.Count(m.iteration)+"/"+units.Count(m.expected))
	} else if m.iteration > 0 {
		parts = append(parts, units.Count(m.iteration))
	}
	if elapsed := m.elapsedLocked(now); elapsed > 0 {
		parts = append(parts, units.Duration(elapsed))
		if m.iteration > 0 && elapsed.Seconds() > 0 {
			parts = append(parts, units.Rate(float64(m.iteration)/elapsed.Seconds()))
		}
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, "; "))
	}
	return b.String()
}

func (m *Meter) readableAttrsLocked(marker slogtoys.Marker, now time.Time) []slog.Attr {
	attrs := make([]slog.Attr, 0, 10)
	attrs = append(attrs, marker.Attr(), slog.String("category", m.category))
	if m.operation != "" {
		attrs = append(attrs, slog.String("operation", m.operation))
	}
	if elapsed := m.elapsedLocked(now); elapsed > 0 {
		attrs = append(attrs, slog.Duration("elapsed", elapsed))
	}
	if m.iteration > 0 {
		attrs = append(attrs, slog.Int64("iterations", m.iteration))
	}
	if m.expected > 0 {
		attrs = append(attrs, slog.Int64("expected", m.expected))
	}
	if m.okPath != "" {
		attrs = append(attrs, slog.String("path", m.okPath))
	}
	if m.rejection != "" {
		attrs = append(attrs, slog.String("reason", m.rejection))
	}
	if m.failure != nil {
		attrs = append(attrs, slog.Any("error", m.failure))
		if pe, ok := m.failure.(*panicError); ok && pe.stack != "" {
			attrs = append(attrs, slog.String("backtrace", pe.stack))
		}
	}
	if len(m.kv) > 0 {
		attrs = append(attrs, slog.Any("ctx", maps.Clone(m.kv)))
	}
	if m.st > stateStarted {
		attrs = append(attrs, traceAttrs(m.ctx)...)
	}
	return attrs
}
