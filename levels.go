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
	"log/slog"
)

// Level represents the severity of a log event, extending slog.Level with
// a TRACE slot below Debug. It maintains the underlying integer
// representation compatible with slog.Level.
type Level slog.Level

const (
	// LevelTrace sits below Debug and carries the compact encoded data
	// lines emitted by meters and watchers. A handler that is not enabled
	// at this level never receives them, which is the intended gate for
	// data emission.
	LevelTrace Level = Level(slog.LevelDebug) - 4 // -8

	// LevelDebug matches slog.LevelDebug.
	LevelDebug Level = Level(slog.LevelDebug)

	// LevelInfo matches slog.LevelInfo.
	LevelInfo Level = Level(slog.LevelInfo)

	// LevelWarn matches slog.LevelWarn.
	LevelWarn Level = Level(slog.LevelWarn)

	// LevelError matches slog.LevelError.
	LevelError Level = Level(slog.LevelError)
)

// String returns the canonical string representation of the Level.
// Values between TRACE and DEBUG render as "TRACE" plus the offset
// (e.g. "TRACE+2"); everything from DEBUG upward uses the standard slog
// rendering, as do values below TRACE.
func (l Level) String() string {
	switch {
	case l == LevelTrace:
		return "TRACE"
	case l > LevelTrace && l < LevelDebug:
		return fmt.Sprintf("TRACE+%d", int(l-LevelTrace))
	default:
		return slog.Level(l).String()
	}
}

// Level returns the underlying slog.Level value. This method allows
// slogtoys.Level to satisfy the slog.Leveler interface, enabling its use
// in places like slog.HandlerOptions.Level and the standard slog.Logger
// methods.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}
