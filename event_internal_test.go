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
	"sync"
	"testing"
	"time"
)

func TestNextPositionIncrements(t *testing.T) {
	first := nextPosition()
	second := nextPosition()
	if second != first+1 {
		t.Errorf("positions = %d then %d, want consecutive", first, second)
	}
}

func TestNextPositionWrapsAtMaxInt64(t *testing.T) {
	old := eventSequence.Load()
	defer eventSequence.Store(old)

	eventSequence.Store(math.MaxInt64)
	if got := nextPosition(); got != 0 {
		t.Errorf("nextPosition() after MaxInt64 = %d, want 0", got)
	}
	if got := nextPosition(); got != 1 {
		t.Errorf("nextPosition() after wrap = %d, want 1", got)
	}
}

func TestNextPositionConcurrent(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 200
	start := eventSequence.Load()

	var wg sync.WaitGroup
	seen := make([]map[int64]bool, goroutines)
	for i := range seen {
		seen[i] = make(map[int64]bool, perGoroutine)
	}
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				seen[i][nextPosition()] = true
			}
		}(i)
	}
	wg.Wait()

	all := make(map[int64]bool, goroutines*perGoroutine)
	for _, m := range seen {
		for p := range m {
			if all[p] {
				t.Fatalf("position %d issued twice", p)
			}
			all[p] = true
		}
	}
	if got := eventSequence.Load(); got != start+goroutines*perGoroutine {
		t.Errorf("sequence advanced to %d, want %d", got, start+goroutines*perGoroutine)
	}
}

func TestStamp(t *testing.T) {
	now := time.Now()
	var e Event
	e.Stamp(now)
	if e.Session != SessionID() {
		t.Errorf("Session = %q, want %q", e.Session, SessionID())
	}
	if e.Time != now.UnixNano() {
		t.Errorf("Time = %d, want %d", e.Time, now.UnixNano())
	}
	if e.Position == 0 {
		t.Error("Position = 0, want a fresh sequence value")
	}

	prev := e.Position
	e.Stamp(now)
	if e.Position <= prev {
		t.Errorf("second Stamp position = %d, want > %d", e.Position, prev)
	}
}

func TestSessionIDConstantAndWellFormed(t *testing.T) {
	a := SessionID()
	b := SessionID()
	if a != b {
		t.Errorf("SessionID() changed between reads: %q then %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("SessionID() length = %d, want 32", len(a))
	}
	for _, c := range a {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHex {
			t.Errorf("SessionID() contains non-hex character %q", c)
			break
		}
	}
}

func TestSessionIDUsesGenerator(t *testing.T) {
	realGen := newSessionID
	defer func() {
		newSessionID = realGen
		sessionOnce = sync.Once{}
		sessionID = ""
	}()

	const pinned = "0123456789abcdef0123456789abcdef"
	newSessionID = func() string { return pinned }
	sessionOnce = sync.Once{}
	sessionID = ""

	if got := SessionID(); got != pinned {
		t.Fatalf("SessionID() = %q, want pinned %q", got, pinned)
	}
	// The generator runs once; later reads reuse the stored value.
	newSessionID = func() string { return "regenerated" }
	if got := SessionID(); got != pinned {
		t.Errorf("SessionID() = %q after generator swap, want cached %q", got, pinned)
	}
}
