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
	"runtime"
	"time"

	"github.com/prometheus/procfs"
)

// CollectStatus fills the metric groups of st that cfg enables, leaving
// the rest at zero. runtime.ReadMemStats runs only when at least one
// MemStats-backed group is on. Collection never fails: probes that are
// unavailable on the host (procfs off Linux, typically) leave their groups
// zeroed so they are omitted from the encoding.
func CollectStatus(cfg StatusConfig, st *Status) {
	if cfg.enablesMemStats() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		if cfg.Memory {
			st.MemAlloc = ms.Alloc
			st.MemTotalAlloc = ms.TotalAlloc
			st.MemSys = ms.Sys
		}
		if cfg.Heap {
			st.HeapAlloc = ms.HeapAlloc
			st.HeapInuse = ms.HeapInuse
			st.HeapSys = ms.HeapSys
		}
		if cfg.OffHeap {
			st.StackInuse = ms.StackInuse
			st.MSpanInuse = ms.MSpanInuse
			st.MCacheInuse = ms.MCacheInuse
		}
		if cfg.ForcedGC {
			st.ForcedGC = int64(ms.NumForcedGC)
		}
		if cfg.GC {
			st.GCCount = int64(ms.NumGC)
			st.GCPauseTotal = int64(ms.PauseTotalNs)
		}
	}
	if cfg.Concurrency {
		st.Goroutines = int64(runtime.NumGoroutine())
		st.CgoCalls = runtime.NumCgoCall()
		st.MaxProcs = int64(runtime.GOMAXPROCS(0))
	}
	if cfg.CPUTime {
		st.CPUTime = readCPUTime()
	}
	if cfg.Load {
		st.Load = readLoadAvg()
	}
}

// readCPUTime returns the process's accumulated CPU time in nanoseconds,
// or zero when procfs is unavailable.
func readCPUTime() int64 {
	proc, err := procfs.Self()
	if err != nil {
		return 0
	}
	stat, err := proc.Stat()
	if err != nil {
		return 0
	}
	return int64(stat.CPUTime() * float64(time.Second))
}

// readLoadAvg returns the one-minute system load average, or zero when
// procfs is unavailable.
func readLoadAvg() float64 {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return 0
	}
	avg, err := fs.LoadAvg()
	if err != nil {
		return 0
	}
	return avg.Load1
}
