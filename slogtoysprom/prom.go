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

package slogtoysprom

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pjscruggs/slogtoys"
)

// Metrics holds the Prometheus instruments fed by [Metrics.Wrap].
type Metrics struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// New builds the instruments and registers them with reg. A nil reg
// registers against [prometheus.DefaultRegisterer]. Registering the same
// metric names twice panics, as MustRegister always does; build one
// Metrics per process and share it.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slogtoys",
			Subsystem: "meter",
			Name:      "events_total",
			Help:      "number of instrument records emitted, by category and marker",
		}, []string{"category", "marker"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "slogtoys",
			Subsystem: "meter",
			Name:      "duration_seconds",
			Help:      "elapsed seconds of terminated operations, by category and outcome",
		}, []string{"category", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.events, m.durations)
	return m
}

// Wrap returns a handler that feeds the instruments from every marked
// record passing through, then forwards the record to next. Records
// without a marker flow through uncounted.
func (m *Metrics) Wrap(next slog.Handler) slog.Handler {
	return &observer{next: next, metrics: m}
}

// outcomes maps terminal readable markers to the histogram's outcome
// label. Data markers are absent so a termination emitting both streams
// observes its duration once.
var outcomes = map[slogtoys.Marker]string{
	slogtoys.MeterMsgOK:     "ok",
	slogtoys.MeterMsgSlowOK: "ok",
	slogtoys.MeterMsgReject: "rejected",
	slogtoys.MeterMsgFail:   "failed",
}

type observer struct {
	next    slog.Handler
	metrics *Metrics
}

func (o *observer) Enabled(ctx context.Context, level slog.Level) bool {
	return o.next.Enabled(ctx, level)
}

func (o *observer) Handle(ctx context.Context, rec slog.Record) error {
	if mk, ok := slogtoys.MarkerFromRecord(rec); ok {
		o.observe(mk, rec)
	}
	return o.next.Handle(ctx, rec)
}

func (o *observer) observe(mk slogtoys.Marker, rec slog.Record) {
	var category string
	var elapsed time.Duration
	rec.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "category":
			category = a.Value.String()
		case "elapsed":
			elapsed = a.Value.Duration()
		}
		return true
	})
	o.metrics.events.WithLabelValues(category, string(mk)).Inc()
	if outcome, ok := outcomes[mk]; ok {
		o.metrics.durations.WithLabelValues(category, outcome).Observe(elapsed.Seconds())
	}
}

func (o *observer) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &observer{next: o.next.WithAttrs(attrs), metrics: o.metrics}
}

func (o *observer) WithGroup(name string) slog.Handler {
	return &observer{next: o.next.WithGroup(name), metrics: o.metrics}
}
