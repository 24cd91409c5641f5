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

package reporter

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/pjscruggs/slogtoys/internal/units"
)

// runtimeReport describes the Go toolchain and scheduler.
type runtimeReport struct{}

func (runtimeReport) Name() string { return "runtime" }

func (runtimeReport) Generate(_ context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("runtime report\n")
	fmt.Fprintf(&b, "  go version: %s\n", runtime.Version())
	fmt.Fprintf(&b, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "  compiler: %s\n", runtime.Compiler)
	fmt.Fprintf(&b, "  cpus: %d\n", runtime.NumCPU())
	fmt.Fprintf(&b, "  gomaxprocs: %d\n", runtime.GOMAXPROCS(0))
	fmt.Fprintf(&b, "  goroutines: %d", runtime.NumGoroutine())
	return b.String(), nil
}

// memoryReport dumps runtime.MemStats with human-readable sizes.
type memoryReport struct{}

func (memoryReport) Name() string { return "memory" }

func (memoryReport) Generate(_ context.Context) (string, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var b strings.Builder
	b.WriteString("memory report\n")
	fmt.Fprintf(&b, "  heap alloc: %s\n", units.Bytes(m.HeapAlloc))
	fmt.Fprintf(&b, "  heap sys: %s\n", units.Bytes(m.HeapSys))
	fmt.Fprintf(&b, "  heap idle: %s\n", units.Bytes(m.HeapIdle))
	fmt.Fprintf(&b, "  heap released: %s\n", units.Bytes(m.HeapReleased))
	fmt.Fprintf(&b, "  heap objects: %s\n", units.Count(int64(m.HeapObjects)))
	fmt.Fprintf(&b, "  stack inuse: %s\n", units.Bytes(m.StackInuse))
	fmt.Fprintf(&b, "  total alloc: %s\n", units.Bytes(m.TotalAlloc))
	fmt.Fprintf(&b, "  sys: %s\n", units.Bytes(m.Sys))
	fmt.Fprintf(&b, "  next gc target: %s\n", units.Bytes(m.NextGC))
	fmt.Fprintf(&b, "  gc cycles: %d\n", m.NumGC)
	fmt.Fprintf(&b, "  gc pause total: %s", time.Duration(m.PauseTotalNs))
	if m.LastGC != 0 {
		last := time.Unix(0, int64(m.LastGC))
		fmt.Fprintf(&b, "\n  last gc: %s", last.UTC().Format(time.RFC3339))
	}
	return b.String(), nil
}
