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
	"maps"
	"slices"
	"strconv"
)

// Compact keys shared by Event and Status. Meter adds its own keys on top
// of these; see the meter package.
const (
	keySession     = "_"
	keyPosition    = "$"
	keyTime        = "t"
	keyMemory      = "m"
	keyHeap        = "h"
	keyOffHeap     = "nh"
	keyForcedGC    = "fc"
	keyConcurrency = "cl"
	keyCPUTime     = "ct"
	keyGC          = "gc"
	keyLoad        = "sl"
)

// Encoder builds one line of the compact format by appending to a byte
// buffer; there is no reflection and no intermediate allocation per value.
// Create one with NewEncoder, add properties, and call Done exactly once.
type Encoder struct {
	buf   []byte
	props int
}

// NewEncoder returns an Encoder with the record opened.
func NewEncoder() *Encoder {
	e := &Encoder{buf: make([]byte, 0, 128)}
	e.buf = append(e.buf, '{')
	return e
}

// Done closes the record and returns it. The Encoder must not be used
// afterward.
func (e *Encoder) Done() string {
	e.buf = append(e.buf, '}')
	return string(e.buf)
}

func (e *Encoder) key(key string) {
	if e.props > 0 {
		e.buf = append(e.buf, ',')
	}
	e.props++
	e.buf = append(e.buf, key...)
	e.buf = append(e.buf, ':')
}

// Str appends key:value, quoting the value only when it strays outside the
// identifier character set.
func (e *Encoder) Str(key, value string) *Encoder {
	e.key(key)
	e.buf = appendScalar(e.buf, value)
	return e
}

// Int appends key:value for a signed integer.
func (e *Encoder) Int(key string, v int64) *Encoder {
	e.key(key)
	e.buf = strconv.AppendInt(e.buf, v, 10)
	return e
}

// Uint appends key:value for an unsigned integer.
func (e *Encoder) Uint(key string, v uint64) *Encoder {
	e.key(key)
	e.buf = strconv.AppendUint(e.buf, v, 10)
	return e
}

// Float appends key:value using the shortest representation that survives
// a round trip.
func (e *Encoder) Float(key string, v float64) *Encoder {
	e.key(key)
	e.buf = strconv.AppendFloat(e.buf, v, 'g', -1, 64)
	return e
}

// Ints appends key:[v,v,...] for signed integers.
func (e *Encoder) Ints(key string, vs ...int64) *Encoder {
	e.key(key)
	e.buf = append(e.buf, '[')
	for i, v := range vs {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = strconv.AppendInt(e.buf, v, 10)
	}
	e.buf = append(e.buf, ']')
	return e
}

// Uints appends key:[v,v,...] for unsigned integers.
func (e *Encoder) Uints(key string, vs ...uint64) *Encoder {
	e.key(key)
	e.buf = append(e.buf, '[')
	for i, v := range vs {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = strconv.AppendUint(e.buf, v, 10)
	}
	e.buf = append(e.buf, ']')
	return e
}

// Strs appends key:[v,v,...] for strings, quoting elements as needed.
func (e *Encoder) Strs(key string, vs ...string) *Encoder {
	e.key(key)
	e.buf = append(e.buf, '[')
	for i, v := range vs {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = appendScalar(e.buf, v)
	}
	e.buf = append(e.buf, ']')
	return e
}

// Map appends key:{k:v,k2,...} with keys in sorted order so output is
// deterministic. An entry with an empty value is written as a bare flag
// key, which decodes back to an empty string.
func (e *Encoder) Map(key string, m map[string]string) *Encoder {
	e.key(key)
	e.buf = append(e.buf, '{')
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = appendScalar(e.buf, k)
		if v := m[k]; v != "" {
			e.buf = append(e.buf, ':')
			e.buf = appendScalar(e.buf, v)
		}
	}
	e.buf = append(e.buf, '}')
	return e
}

// identifierSafe reports whether c may appear in an unquoted scalar.
func identifierSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '+' || c == '@':
		return true
	default:
		return false
	}
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !identifierSafe(s[i]) {
			return true
		}
	}
	return false
}

// appendScalar writes s raw when it is identifier-safe, otherwise quoted
// with backslash escapes for the quote, the backslash, newline, and tab.
func appendScalar(dst []byte, s string) []byte {
	if !needsQuoting(s) {
		return append(dst, s...)
	}
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

// EncodeProps writes e's non-zero fields to enc.
func (e Event) EncodeProps(enc *Encoder) {
	if e.Session != "" {
		enc.Str(keySession, e.Session)
	}
	if e.Position != 0 {
		enc.Int(keyPosition, e.Position)
	}
	if e.Time != 0 {
		enc.Int(keyTime, e.Time)
	}
}

// Compact returns the event encoded as one compact line.
func (e Event) Compact() string {
	enc := NewEncoder()
	e.EncodeProps(enc)
	return enc.Done()
}

// EncodeProps writes s's non-zero fields to enc. Metric groups whose every
// member is zero are omitted entirely.
func (s Status) EncodeProps(enc *Encoder) {
	s.Event.EncodeProps(enc)
	s.EncodeMetricProps(enc)
}

// EncodeMetricProps writes only the metric groups, leaving the embedded
// Event keys to the caller. Composite records place their own keys between
// the two; see the meter package.
func (s Status) EncodeMetricProps(enc *Encoder) {
	if s.MemAlloc != 0 || s.MemTotalAlloc != 0 || s.MemSys != 0 {
		enc.Uints(keyMemory, s.MemAlloc, s.MemTotalAlloc, s.MemSys)
	}
	if s.HeapAlloc != 0 || s.HeapInuse != 0 || s.HeapSys != 0 {
		enc.Uints(keyHeap, s.HeapAlloc, s.HeapInuse, s.HeapSys)
	}
	if s.StackInuse != 0 || s.MSpanInuse != 0 || s.MCacheInuse != 0 {
		enc.Uints(keyOffHeap, s.StackInuse, s.MSpanInuse, s.MCacheInuse)
	}
	if s.ForcedGC != 0 {
		enc.Int(keyForcedGC, s.ForcedGC)
	}
	if s.Goroutines != 0 || s.CgoCalls != 0 || s.MaxProcs != 0 {
		enc.Ints(keyConcurrency, s.Goroutines, s.CgoCalls, s.MaxProcs)
	}
	if s.CPUTime != 0 {
		enc.Int(keyCPUTime, s.CPUTime)
	}
	if s.GCCount != 0 || s.GCPauseTotal != 0 {
		enc.Ints(keyGC, s.GCCount, s.GCPauseTotal)
	}
	if s.Load != 0 {
		enc.Float(keyLoad, s.Load)
	}
}

// Compact returns the snapshot encoded as one compact line.
func (s Status) Compact() string {
	enc := NewEncoder()
	s.EncodeProps(enc)
	return enc.Done()
}
