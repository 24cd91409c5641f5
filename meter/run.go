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
	"fmt"
)

// panicError wraps a recovered panic value so it can terminate a meter as a
// regular failure while keeping the backtrace for the readable line.
type panicError struct {
	value any
	stack string
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Unwrap exposes the panic value when it was itself an error, so callers
// inspecting the meter's failure can use errors.Is and errors.As.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// Run wraps fn in the meter's lifecycle: Start, invoke, then OK on a nil
// return or Fail on an error, which is returned unchanged. The context
// passed to fn carries the meter for [FromContext]. A panic inside fn fails
// the meter with a captured backtrace and is then re-raised.
//
// On a nil meter, Run simply invokes fn.
func (m *Meter) Run(fn func(ctx context.Context) error) error {
	if m == nil {
		return fn(context.Background())
	}
	m.Start()
	defer func() {
		if r := recover(); r != nil {
			m.failPanic(r)
			panic(r)
		}
	}()
	if err := fn(IntoContext(m.ctx, m)); err != nil {
		m.Fail(err)
		return err
	}
	m.OK()
	return nil
}

// Call is [Meter.Run] for functions that produce a value alongside the
// error. It is a free function because methods cannot take type parameters.
func Call[T any](m *Meter, fn func(ctx context.Context) (T, error)) (T, error) {
	if m == nil {
		return fn(context.Background())
	}
	m.Start()
	defer func() {
		if r := recover(); r != nil {
			m.failPanic(r)
			panic(r)
		}
	}()
	v, err := fn(IntoContext(m.ctx, m))
	if err != nil {
		m.Fail(err)
		return v, err
	}
	m.OK()
	return v, nil
}

func (m *Meter) failPanic(r any) {
	perr := &panicError{value: r, stack: captureStack()}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLocked(perr)
}
