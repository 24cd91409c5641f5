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
	"reflect"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// stubPropagator implements propagation.TextMapPropagator for testing toggles.
type stubPropagator struct{}

func (stubPropagator) Inject(context.Context, propagation.TextMapCarrier) {}

func (stubPropagator) Extract(ctx context.Context, _ propagation.TextMapCarrier) context.Context {
	return ctx
}

func (stubPropagator) Fields() []string { return nil }

// resetPropagatorForTest swaps the global propagator and resets the once guard.
func resetPropagatorForTest(tb testing.TB, prop propagation.TextMapPropagator) {
	tb.Helper()
	otel.SetTextMapPropagator(prop)
	installPropagatorOnce = sync.Once{}
}

// TestEnsurePropagationInstallsCompositePropagator verifies EnsurePropagation
// replaces the global propagator when auto-set is enabled.
func TestEnsurePropagationInstallsCompositePropagator(t *testing.T) {
	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "")

	stub := stubPropagator{}
	resetPropagatorForTest(t, stub)

	EnsurePropagation()
	if reflect.TypeOf(otel.GetTextMapPropagator()) == reflect.TypeOf(stub) {
		t.Fatalf("expected EnsurePropagation to replace stub propagator")
	}
}

// TestEnsurePropagationHonorsDisableFlag ensures the disable env var prevents mutation.
func TestEnsurePropagationHonorsDisableFlag(t *testing.T) {
	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "true")

	stub := stubPropagator{}
	resetPropagatorForTest(t, stub)

	EnsurePropagation()
	if reflect.TypeOf(otel.GetTextMapPropagator()) != reflect.TypeOf(stub) {
		t.Fatalf("expected stub propagator to remain installed when auto-set disabled")
	}
}

// TestDisablePropagatorAutoSetParsesValues exercises parsing of the disable
// flag without mutating the propagator.
func TestDisablePropagatorAutoSetParsesValues(t *testing.T) {
	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "TRUE")
	if !disablePropagatorAutoSet() {
		t.Fatalf("disablePropagatorAutoSet() = false, want true for TRUE")
	}

	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "1")
	if !disablePropagatorAutoSet() {
		t.Fatalf("disablePropagatorAutoSet() = false, want true for 1")
	}

	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "false")
	if disablePropagatorAutoSet() {
		t.Fatalf("disablePropagatorAutoSet() = true, want false for false")
	}

	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "0")
	if disablePropagatorAutoSet() {
		t.Fatalf("disablePropagatorAutoSet() = true, want false for 0")
	}

	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "")
	if disablePropagatorAutoSet() {
		t.Fatalf("disablePropagatorAutoSet() = true, want false when unset")
	}

	t.Setenv("SLOGTOYS_DISABLE_PROPAGATOR_AUTOSET", "not-a-bool")
	if disablePropagatorAutoSet() {
		t.Fatalf("disablePropagatorAutoSet() = true, want false for invalid values")
	}
}
