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
	"fmt"
	"strings"
	"time"

	"github.com/pjscruggs/slogtoys/internal/units"
)

// Status is a runtime snapshot extending Event with metric groups. All
// groups default to zero and are omitted from the compact encoding while
// zero-valued, so a Status collected with every probe disabled encodes
// exactly like a bare Event.
type Status struct {
	Event

	// Memory: general allocator figures (bytes).
	MemAlloc      uint64
	MemTotalAlloc uint64
	MemSys        uint64

	// Heap (bytes).
	HeapAlloc uint64
	HeapInuse uint64
	HeapSys   uint64

	// Off-heap runtime structures (bytes).
	StackInuse  uint64
	MSpanInuse  uint64
	MCacheInuse uint64

	// Forced garbage collection cycles.
	ForcedGC int64

	// Concurrency figures.
	Goroutines int64
	CgoCalls   int64
	MaxProcs   int64

	// Process CPU time in nanoseconds. Zero on hosts without procfs.
	CPUTime int64

	// Garbage collection.
	GCCount      int64
	GCPauseTotal int64

	// System load average over the last minute. Zero on hosts without
	// procfs.
	Load float64
}

// Summary renders the snapshot as the body of a readable watcher line,
// listing only the collected groups. An empty snapshot renders as "status".
func (s Status) Summary() string {
	parts := make([]string, 0, 8)
	if s.MemAlloc != 0 || s.MemSys != 0 {
		parts = append(parts, fmt.Sprintf("memory: %s/%s", units.Bytes(s.MemAlloc), units.Bytes(s.MemSys)))
	}
	if s.HeapAlloc != 0 || s.HeapSys != 0 {
		parts = append(parts, fmt.Sprintf("heap: %s/%s", units.Bytes(s.HeapAlloc), units.Bytes(s.HeapSys)))
	}
	if s.StackInuse != 0 {
		parts = append(parts, fmt.Sprintf("stack: %s", units.Bytes(s.StackInuse)))
	}
	if s.Goroutines != 0 {
		parts = append(parts, fmt.Sprintf("goroutines: %d", s.Goroutines))
	}
	if s.GCCount != 0 || s.GCPauseTotal != 0 {
		parts = append(parts, fmt.Sprintf("gc: %s cycles, %s paused",
			units.Count(s.GCCount), units.Duration(time.Duration(s.GCPauseTotal))))
	}
	if s.ForcedGC != 0 {
		parts = append(parts, fmt.Sprintf("forced gc: %s", units.Count(s.ForcedGC)))
	}
	if s.CPUTime != 0 {
		parts = append(parts, fmt.Sprintf("cpu: %s", units.Duration(time.Duration(s.CPUTime))))
	}
	if s.Load != 0 {
		parts = append(parts, fmt.Sprintf("load: %.2f", s.Load))
	}
	if len(parts) == 0 {
		return "status"
	}
	return strings.Join(parts, "; ")
}
