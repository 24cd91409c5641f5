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
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// maxStackFrames bounds the backtrace recorded for a panicking operation.
const maxStackFrames = 64

var stackPCPool = sync.Pool{
	New: func() any {
		buf := make([]uintptr, maxStackFrames)
		return &buf
	},
}

// captureStack formats the current goroutine's stack in the standard Go
// layout, dropping the leading runtime, slog, and meter-internal frames so
// the first line points at the panicking user code.
func captureStack() string {
	bufPtr := stackPCPool.Get().(*[]uintptr)
	defer stackPCPool.Put(bufPtr)

	pcs := (*bufPtr)[:cap(*bufPtr)]
	n := runtime.Callers(0, pcs)
	if n == 0 {
		return ""
	}
	pcs = trimInternalFrames(pcs[:n])
	return formatStack(pcs)
}

// trimInternalFrames removes leading frames that belong to the runtime,
// log/slog, or this package. When everything matches (as in deep internal
// tests) the original slice is kept rather than returning nothing.
func trimInternalFrames(pcs []uintptr) []uintptr {
	frames := runtime.CallersFrames(pcs)
	skip := 0
	for {
		frame, more := frames.Next()
		if !internalFrame(frame.Function) {
			break
		}
		skip++
		if !more {
			return pcs
		}
	}
	if skip >= len(pcs) {
		return pcs
	}
	return pcs[skip:]
}

func internalFrame(funcName string) bool {
	if funcName == "" {
		return false
	}
	return strings.HasPrefix(funcName, "runtime.") ||
		strings.HasPrefix(funcName, "log/slog.") ||
		strings.HasPrefix(funcName, "github.com/pjscruggs/slogtoys/meter.")
}

// formatStack renders program counters in the layout produced by
// runtime.Stack: a goroutine header, then one function line and one
// file:line line per frame.
func formatStack(pcs []uintptr) string {
	if len(pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(pcs) * 64)
	sb.WriteString(goroutineHeader())
	sb.WriteByte('\n')

	frames := runtime.CallersFrames(pcs)
	count := 0
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if frame.Function == "" || frame.Function == "runtime.goexit" {
			if !more {
				break
			}
			continue
		}

		sb.WriteString(frame.Function)
		sb.WriteByte('\n')
		sb.WriteByte('\t')
		sb.WriteString(frame.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteByte('\n')

		count++
		if !more || count >= maxStackFrames {
			break
		}
	}
	return sb.String()
}

// goroutineHeader returns the "goroutine N [running]:" line runtime.Stack
// emits for the current goroutine.
func goroutineHeader() string {
	const fallback = "goroutine 0 [running]:"

	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	if n <= 0 {
		return fallback
	}
	header := string(buf[:n])
	if idx := strings.IndexByte(header, '\n'); idx >= 0 {
		header = header[:idx]
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	return header
}
