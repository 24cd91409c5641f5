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
	"github.com/pjscruggs/slogtoys/internal/env"
)

// Environment variables controlling status collection. Each flag
// independently gates one metric group so unused probes cost nothing.
const (
	// EnvStatusMemory toggles the general allocator group ("m").
	EnvStatusMemory = "SLOGTOYS_STATUS_MEMORY"
	// EnvStatusHeap toggles the heap group ("h").
	EnvStatusHeap = "SLOGTOYS_STATUS_HEAP"
	// EnvStatusOffHeap toggles the off-heap runtime structures group ("nh").
	EnvStatusOffHeap = "SLOGTOYS_STATUS_OFFHEAP"
	// EnvStatusForcedGC toggles the forced-GC counter ("fc").
	EnvStatusForcedGC = "SLOGTOYS_STATUS_FORCED_GC"
	// EnvStatusConcurrency toggles the goroutine/cgo/GOMAXPROCS group ("cl").
	EnvStatusConcurrency = "SLOGTOYS_STATUS_CONCURRENCY"
	// EnvStatusCPUTime toggles process CPU time collection ("ct").
	EnvStatusCPUTime = "SLOGTOYS_STATUS_CPU_TIME"
	// EnvStatusGC toggles the garbage collection group ("gc").
	EnvStatusGC = "SLOGTOYS_STATUS_GC"
	// EnvStatusLoad toggles system load average collection ("sl").
	EnvStatusLoad = "SLOGTOYS_STATUS_LOAD"
)

// StatusConfig selects which metric groups CollectStatus gathers. The
// zero value collects nothing; DefaultStatusConfig enables the groups that
// are cheap everywhere.
type StatusConfig struct {
	Memory      bool
	Heap        bool
	OffHeap     bool
	ForcedGC    bool
	Concurrency bool
	CPUTime     bool
	GC          bool
	Load        bool
}

// DefaultStatusConfig returns the stock collection set: memory, heap,
// concurrency, garbage collection, and load average. Off-heap detail,
// forced-GC counts, and CPU time are opt-in.
func DefaultStatusConfig() StatusConfig {
	return StatusConfig{
		Memory:      true,
		Heap:        true,
		Concurrency: true,
		GC:          true,
		Load:        true,
	}
}

// StatusConfigFromEnv builds a StatusConfig from the SLOGTOYS_STATUS_*
// environment variables, starting from DefaultStatusConfig. Malformed
// values fall back to the default for that flag; the returned error joins
// everything that failed to parse and the returned config is always
// usable.
func StatusConfigFromEnv() (StatusConfig, error) {
	var p env.Parser
	def := DefaultStatusConfig()
	cfg := StatusConfig{
		Memory:      p.Bool(EnvStatusMemory, def.Memory),
		Heap:        p.Bool(EnvStatusHeap, def.Heap),
		OffHeap:     p.Bool(EnvStatusOffHeap, def.OffHeap),
		ForcedGC:    p.Bool(EnvStatusForcedGC, def.ForcedGC),
		Concurrency: p.Bool(EnvStatusConcurrency, def.Concurrency),
		CPUTime:     p.Bool(EnvStatusCPUTime, def.CPUTime),
		GC:          p.Bool(EnvStatusGC, def.GC),
		Load:        p.Bool(EnvStatusLoad, def.Load),
	}
	return cfg, p.Err()
}

// enablesMemStats reports whether any group backed by runtime.MemStats is
// on, so CollectStatus can skip the ReadMemStats call entirely otherwise.
func (c StatusConfig) enablesMemStats() bool {
	return c.Memory || c.Heap || c.OffHeap || c.ForcedGC || c.GC
}
