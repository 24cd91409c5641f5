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
	"math"
	"sync/atomic"
	"time"
)

// Event is the base record shared by every line the instruments emit: which
// process produced it (Session), where it falls in that process's emission
// sequence (Position), and when it was produced (Time, wall-clock
// nanoseconds).
//
// Events are created per call site, mutated in place while an operation
// runs, and discarded once the terminal line is out. They are not
// thread-safe on their own; each instrument imposes its own ownership
// discipline.
type Event struct {
	Session  string
	Position int64
	Time     int64
}

// eventSequence is the process-wide position counter shared by all
// instruments.
var eventSequence atomic.Int64

// nextPosition returns the next event position. The sequence wraps from
// math.MaxInt64 back to 0 instead of going negative.
func nextPosition() int64 {
	for {
		cur := eventSequence.Load()
		next := cur + 1
		if cur == math.MaxInt64 {
			next = 0
		}
		if eventSequence.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Stamp marks e with the session identifier, the next process-wide
// position, and now. Instruments call it once per emitted line pair.
func (e *Event) Stamp(now time.Time) {
	e.Session = SessionID()
	e.Position = nextPosition()
	e.Time = now.UnixNano()
}
