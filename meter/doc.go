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

// Package meter measures operations and logs their outcome through slog.
//
// A [Meter] follows one operation from creation to exactly one terminal
// state: success ([Meter.OK]), an expected business refusal
// ([Meter.Reject]), or an abnormal end ([Meter.Fail]). Each transition
// emits a readable line at a conventional level (start at Debug, success at
// Info, failure at Error) plus a machine-parseable line at
// [slogtoys.LevelTrace] carrying a [Data] record in the compact format.
// Both lines are tagged with markers so handlers can route or filter them;
// see [slogtoys.FilterMarkers].
//
// Meters tolerate misuse. Calling a lifecycle method out of order, or any
// method on a nil receiver, never panics: the call becomes a no-op and,
// when a logger is available, a warning tagged [slogtoys.MeterInconsistent]
// points at the offending call site. A deferred [Meter.Close] accounts for
// every started operation even when the surrounding function returns early
// or panics.
//
// Typical usage:
//
//	m := meter.New(ctx, logger, "billing.invoice").
//	    Op("render").
//	    Describe("render invoice %s", id).
//	    Limit(500 * time.Millisecond).
//	    Start()
//	defer m.Close()
//
//	if !authorized {
//	    m.Reject("unauthorized")
//	    return nil
//	}
//	if err := render(ctx, id); err != nil {
//	    m.Fail(err)
//	    return err
//	}
//	m.OK()
//	return nil
//
// [Meter.Run] and [Call] wrap the same lifecycle around a function,
// translating its error into the terminal state and converting panics into
// failures with a captured backtrace before re-panicking.
//
// Meters travel by explicit context passing: [IntoContext] attaches a
// meter, [FromContext] retrieves it. Code that finds no meter in its
// context receives a fresh one in the [UnknownCategory] category rather
// than nil, so instrumentation never has to guard against missing meters.
package meter
