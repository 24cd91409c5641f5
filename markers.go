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

package slogtoys

import (
	"context"
	"log/slog"
)

// MarkerKey is the attribute key under which every line emitted by the
// slogtoys instruments carries its marker. Instruments always attach the
// marker as a top-level record attribute, never through Logger.With, so
// handlers can rely on finding it directly on the record.
const MarkerKey = "marker"

// Marker classifies a log line emitted by one of the instruments so
// handlers can filter, split, or silence instrument streams independently
// of level.
type Marker string

// Markers for the human-readable meter lifecycle lines.
const (
	MeterMsgStart    Marker = "METER_MSG_START"
	MeterMsgProgress Marker = "METER_MSG_PROGRESS"
	MeterMsgOK       Marker = "METER_MSG_OK"
	MeterMsgSlowOK   Marker = "METER_MSG_SLOW_OK"
	MeterMsgReject   Marker = "METER_MSG_REJECT"
	MeterMsgFail     Marker = "METER_MSG_FAIL"
)

// Markers for the compact machine-parseable meter lines.
const (
	MeterDataStart    Marker = "METER_DATA_START"
	MeterDataProgress Marker = "METER_DATA_PROGRESS"
	MeterDataOK       Marker = "METER_DATA_OK"
	MeterDataSlowOK   Marker = "METER_DATA_SLOW_OK"
	MeterDataReject   Marker = "METER_DATA_REJECT"
	MeterDataFail     Marker = "METER_DATA_FAIL"
)

// Diagnostic markers. MeterInconsistent tags tolerated API misuse (double
// start, termination before start, use after termination); MeterBug tags a
// failure inside the instrumentation itself. Neither ever surfaces as an
// error return or panic.
const (
	MeterInconsistent Marker = "METER_INCONSISTENT"
	MeterBug          Marker = "METER_BUG"
)

// Watcher and reporter markers.
const (
	WatcherMsg  Marker = "WATCHER_MSG"
	WatcherData Marker = "WATCHER_DATA"
	Report      Marker = "REPORT"
)

// Attr returns the marker as a slog attribute under MarkerKey.
func (m Marker) Attr() slog.Attr {
	return slog.String(MarkerKey, string(m))
}

// MarkerFromRecord returns the marker attribute carried by rec, or false
// when the record has none.
func MarkerFromRecord(rec slog.Record) (Marker, bool) {
	var found Marker
	var ok bool
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == MarkerKey && a.Value.Kind() == slog.KindString {
			found = Marker(a.Value.String())
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// FilterMarkers wraps next so that only records carrying one of the allowed
// markers pass through. Records without any marker always pass, so ordinary
// application logging is unaffected. Typical use is splitting the compact
// data stream away from the readable one:
//
//	dataOnly := slogtoys.FilterMarkers(handler,
//		slogtoys.MeterDataOK, slogtoys.MeterDataFail, slogtoys.WatcherData)
func FilterMarkers(next slog.Handler, allow ...Marker) slog.Handler {
	set := make(map[Marker]struct{}, len(allow))
	for _, m := range allow {
		set[m] = struct{}{}
	}
	return &markerFilter{next: next, allow: set}
}

type markerFilter struct {
	next  slog.Handler
	allow map[Marker]struct{}
}

func (f *markerFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.next.Enabled(ctx, level)
}

func (f *markerFilter) Handle(ctx context.Context, rec slog.Record) error {
	if m, ok := MarkerFromRecord(rec); ok {
		if _, allowed := f.allow[m]; !allowed {
			return nil
		}
	}
	return f.next.Handle(ctx, rec)
}

func (f *markerFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &markerFilter{next: f.next.WithAttrs(attrs), allow: f.allow}
}

func (f *markerFilter) WithGroup(name string) slog.Handler {
	return &markerFilter{next: f.next.WithGroup(name), allow: f.allow}
}
