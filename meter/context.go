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

import "context"

// UnknownCategory labels meters handed out when no real meter is available,
// so their lines are recognizable and traceable back to missing
// instrumentation.
const UnknownCategory = "???"

// contextKey is an unexported type for context keys defined in this package,
// preventing collisions with keys from other packages.
type contextKey int

// meterContextKey is the context key under which the current meter travels.
const meterContextKey contextKey = iota

// IntoContext returns a copy of ctx carrying m, making it the current meter
// for everything downstream. Pass the result to code you want attributed to
// this operation; [FromContext] retrieves it there.
func IntoContext(ctx context.Context, m *Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if m == nil {
		return ctx
	}
	return context.WithValue(ctx, meterContextKey, m)
}

// FromContext returns the current meter carried by ctx. When ctx carries
// none, it returns a fresh meter in [UnknownCategory] logging through the
// context's logger (see [slogtoys.ContextWithLogger]) or the default one,
// never nil: callers may use the result unconditionally, and the unknown
// category flags the gap in instrumentation.
func FromContext(ctx context.Context) *Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if m, ok := ctx.Value(meterContextKey).(*Meter); ok && m != nil {
		return m
	}
	return New(ctx, nil, UnknownCategory)
}
