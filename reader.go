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
	"strconv"
	"strings"
)

// Decoder walks one compact line with a forward-only cursor. It is more
// tolerant than the Encoder is strict: whitespace between tokens is
// accepted, unknown keys can be skipped, value-less keys decode as empty
// strings, and missing groups simply leave their fields at zero.
type Decoder struct {
	src     string
	pos     int
	done    bool
	noValue bool
}

// NewDecoder prepares a Decoder for one compact line. The line must start
// with '{' after optional whitespace.
func NewDecoder(src string) (*Decoder, error) {
	d := &Decoder{src: src}
	d.skipSpace()
	if d.peek() != '{' {
		return nil, fmt.Errorf("compact decode: expected '{' at position %d", d.pos)
	}
	d.pos++
	return d, nil
}

func (d *Decoder) skipSpace() {
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case ' ', '\t', '\n', '\r':
			d.pos++
		default:
			return
		}
	}
}

// peek returns the current byte, or 0 when the input is exhausted.
func (d *Decoder) peek() byte {
	if d.pos >= len(d.src) {
		return 0
	}
	return d.src[d.pos]
}

// NextKey advances to the next property and returns its key. It returns
// ok=false once the closing brace has been consumed. When the property
// carries no value (a bare flag key), the following read yields the zero
// value for the requested type.
func (d *Decoder) NextKey() (key string, ok bool, err error) {
	if d.done {
		return "", false, nil
	}
	d.skipSpace()
	if d.peek() == ',' {
		d.pos++
		d.skipSpace()
	}
	if d.peek() == '}' {
		d.pos++
		d.done = true
		return "", false, nil
	}
	key, err = d.readScalar()
	if err != nil {
		return "", false, err
	}
	d.skipSpace()
	if d.peek() == ':' {
		d.pos++
		d.noValue = false
	} else {
		d.noValue = true
	}
	return key, true, nil
}

// Str reads a string value.
func (d *Decoder) Str() (string, error) {
	if d.noValue {
		return "", nil
	}
	d.skipSpace()
	return d.readScalar()
}

// Int reads a signed integer value.
func (d *Decoder) Int() (int64, error) {
	if d.noValue {
		return 0, nil
	}
	tok, err := d.Str()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("compact decode: bad integer %q", tok)
	}
	return v, nil
}

// Uint reads an unsigned integer value.
func (d *Decoder) Uint() (uint64, error) {
	if d.noValue {
		return 0, nil
	}
	tok, err := d.Str()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("compact decode: bad unsigned integer %q", tok)
	}
	return v, nil
}

// Float reads a floating point value.
func (d *Decoder) Float() (float64, error) {
	if d.noValue {
		return 0, nil
	}
	tok, err := d.Str()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("compact decode: bad float %q", tok)
	}
	return v, nil
}

// Ints reads a [v,v,...] list of signed integers.
func (d *Decoder) Ints() ([]int64, error) {
	toks, err := d.list()
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(toks))
	for i, tok := range toks {
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("compact decode: bad integer %q in list", tok)
		}
		out[i] = v
	}
	return out, nil
}

// Uints reads a [v,v,...] list of unsigned integers.
func (d *Decoder) Uints() ([]uint64, error) {
	toks, err := d.list()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(toks))
	for i, tok := range toks {
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("compact decode: bad unsigned integer %q in list", tok)
		}
		out[i] = v
	}
	return out, nil
}

// Strs reads a [v,v,...] list of strings.
func (d *Decoder) Strs() ([]string, error) {
	return d.list()
}

func (d *Decoder) list() ([]string, error) {
	if d.noValue {
		return nil, nil
	}
	d.skipSpace()
	if d.peek() != '[' {
		return nil, fmt.Errorf("compact decode: expected '[' at position %d", d.pos)
	}
	d.pos++
	var out []string
	for {
		d.skipSpace()
		if d.peek() == ']' {
			d.pos++
			return out, nil
		}
		tok, err := d.readScalar()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		d.skipSpace()
		switch d.peek() {
		case ',':
			d.pos++
		case ']':
		default:
			return nil, fmt.Errorf("compact decode: expected ',' or ']' at position %d", d.pos)
		}
	}
}

// StrMap reads a {k:v,flag,...} nested map. A key without a value decodes
// to the empty string.
func (d *Decoder) StrMap() (map[string]string, error) {
	if d.noValue {
		return nil, nil
	}
	d.skipSpace()
	if d.peek() != '{' {
		return nil, fmt.Errorf("compact decode: expected '{' at position %d", d.pos)
	}
	d.pos++
	out := make(map[string]string)
	for {
		d.skipSpace()
		if d.peek() == '}' {
			d.pos++
			return out, nil
		}
		k, err := d.readScalar()
		if err != nil {
			return nil, err
		}
		d.skipSpace()
		var v string
		if d.peek() == ':' {
			d.pos++
			d.skipSpace()
			if v, err = d.readScalar(); err != nil {
				return nil, err
			}
		}
		out[k] = v
		d.skipSpace()
		switch d.peek() {
		case ',':
			d.pos++
		case '}':
		default:
			return nil, fmt.Errorf("compact decode: expected ',' or '}' at position %d", d.pos)
		}
	}
}

// Skip discards the current property's value, whatever its shape. Used for
// keys the caller does not recognize.
func (d *Decoder) Skip() error {
	if d.noValue {
		return nil
	}
	d.skipSpace()
	switch d.peek() {
	case '[', '{':
		depth := 0
		for d.pos < len(d.src) {
			switch d.src[d.pos] {
			case '"':
				if _, err := d.readScalar(); err != nil {
					return err
				}
			case '[', '{':
				depth++
				d.pos++
			case ']', '}':
				depth--
				d.pos++
				if depth == 0 {
					return nil
				}
			default:
				d.pos++
			}
		}
		return fmt.Errorf("compact decode: unterminated value")
	default:
		_, err := d.readScalar()
		return err
	}
}

// readScalar consumes either a quoted string with backslash escapes or a
// bare token running up to the next separator.
func (d *Decoder) readScalar() (string, error) {
	if d.peek() == '"' {
		d.pos++
		var b strings.Builder
		for d.pos < len(d.src) {
			c := d.src[d.pos]
			d.pos++
			switch c {
			case '"':
				return b.String(), nil
			case '\\':
				if d.pos >= len(d.src) {
					return "", fmt.Errorf("compact decode: unterminated escape")
				}
				esc := d.src[d.pos]
				d.pos++
				switch esc {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				default:
					b.WriteByte(esc)
				}
			default:
				b.WriteByte(c)
			}
		}
		return "", fmt.Errorf("compact decode: unterminated string")
	}
	start := d.pos
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case ',', '}', ']', ':', ' ', '\t', '\n', '\r':
			return d.src[start:d.pos], nil
		default:
			d.pos++
		}
	}
	if start == d.pos {
		return "", fmt.Errorf("compact decode: unexpected end of input")
	}
	return d.src[start:], nil
}

// DecodeProp consumes the value for key when it belongs to Event, returning
// whether the key was recognized.
func (e *Event) DecodeProp(d *Decoder, key string) (bool, error) {
	switch key {
	case keySession:
		v, err := d.Str()
		e.Session = v
		return true, err
	case keyPosition:
		v, err := d.Int()
		e.Position = v
		return true, err
	case keyTime:
		v, err := d.Int()
		e.Time = v
		return true, err
	}
	return false, nil
}

// DecodeCompact parses a complete compact line into e. Unknown keys are
// skipped; absent keys leave their fields at zero.
func (e *Event) DecodeCompact(src string) error {
	d, err := NewDecoder(src)
	if err != nil {
		return err
	}
	for {
		key, ok, err := d.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		handled, err := e.DecodeProp(d, key)
		if err != nil {
			return err
		}
		if !handled {
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}

func uintTriple(d *Decoder, a, b, c *uint64) error {
	vs, err := d.Uints()
	if err != nil {
		return err
	}
	if len(vs) > 0 {
		*a = vs[0]
	}
	if len(vs) > 1 {
		*b = vs[1]
	}
	if len(vs) > 2 {
		*c = vs[2]
	}
	return nil
}

// DecodeProp consumes the value for key when it belongs to Status or its
// embedded Event, returning whether the key was recognized.
func (s *Status) DecodeProp(d *Decoder, key string) (bool, error) {
	if ok, err := s.Event.DecodeProp(d, key); ok || err != nil {
		return ok, err
	}
	switch key {
	case keyMemory:
		return true, uintTriple(d, &s.MemAlloc, &s.MemTotalAlloc, &s.MemSys)
	case keyHeap:
		return true, uintTriple(d, &s.HeapAlloc, &s.HeapInuse, &s.HeapSys)
	case keyOffHeap:
		return true, uintTriple(d, &s.StackInuse, &s.MSpanInuse, &s.MCacheInuse)
	case keyForcedGC:
		v, err := d.Int()
		s.ForcedGC = v
		return true, err
	case keyConcurrency:
		vs, err := d.Ints()
		if err != nil {
			return true, err
		}
		if len(vs) > 0 {
			s.Goroutines = vs[0]
		}
		if len(vs) > 1 {
			s.CgoCalls = vs[1]
		}
		if len(vs) > 2 {
			s.MaxProcs = vs[2]
		}
		return true, nil
	case keyCPUTime:
		v, err := d.Int()
		s.CPUTime = v
		return true, err
	case keyGC:
		vs, err := d.Ints()
		if err != nil {
			return true, err
		}
		if len(vs) > 0 {
			s.GCCount = vs[0]
		}
		if len(vs) > 1 {
			s.GCPauseTotal = vs[1]
		}
		return true, nil
	case keyLoad:
		v, err := d.Float()
		s.Load = v
		return true, err
	}
	return false, nil
}

// DecodeCompact parses a complete compact line into s. Unknown keys are
// skipped; absent groups leave their fields at zero.
func (s *Status) DecodeCompact(src string) error {
	d, err := NewDecoder(src)
	if err != nil {
		return err
	}
	for {
		key, ok, err := d.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		handled, err := s.DecodeProp(d, key)
		if err != nil {
			return err
		}
		if !handled {
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}
