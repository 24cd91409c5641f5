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
	"time"

	"github.com/pjscruggs/slogtoys"
)

// Compact keys specific to meter data lines, written between the event keys
// and the metric groups of the embedded [slogtoys.Status].
const (
	keyCategory    = "c"
	keyOperation   = "n"
	keyDescription = "d"
	keyCreateTime  = "t0"
	keyStartTime   = "t1"
	keyStopTime    = "t2"
	keyIteration   = "i"
	keyExpected    = "ei"
	keyLimit       = "tl"
	keyOKPath      = "fp"
	keyRejection   = "r"
	keyFailure     = "f"
	keyContext     = "x"
)

// Data is the machine-parseable record carried by a meter's trace-level
// lines. It extends [slogtoys.Status] with the operation's identity, its
// lifecycle timestamps (UnixNano), and the outcome details. Absent fields
// stay zero and are omitted from the compact encoding.
type Data struct {
	slogtoys.Status

	Category    string
	Operation   string
	Description string

	CreateTime int64
	StartTime  int64
	StopTime   int64

	Iteration int64
	Expected  int64
	Limit     int64

	OKPath         string
	Rejection      string
	FailureKind    string
	FailureMessage string
	Context        map[string]string
}

// Elapsed returns the operation's running time: stop minus start once
// terminated, stamp time minus start while still running, zero before
// start.
func (d *Data) Elapsed() time.Duration {
	if d.StartTime == 0 {
		return 0
	}
	end := d.StopTime
	if end == 0 {
		end = d.Time
	}
	if end <= d.StartTime {
		return 0
	}
	return time.Duration(end - d.StartTime)
}

// EncodeProps writes d's non-zero fields to enc.
func (d *Data) EncodeProps(enc *slogtoys.Encoder) {
	d.Event.EncodeProps(enc)
	if d.Category != "" {
		enc.Str(keyCategory, d.Category)
	}
	if d.Operation != "" {
		enc.Str(keyOperation, d.Operation)
	}
	if d.Description != "" {
		enc.Str(keyDescription, d.Description)
	}
	if d.CreateTime != 0 {
		enc.Int(keyCreateTime, d.CreateTime)
	}
	if d.StartTime != 0 {
		enc.Int(keyStartTime, d.StartTime)
	}
	if d.StopTime != 0 {
		enc.Int(keyStopTime, d.StopTime)
	}
	if d.Iteration != 0 {
		enc.Int(keyIteration, d.Iteration)
	}
	if d.Expected != 0 {
		enc.Int(keyExpected, d.Expected)
	}
	if d.Limit != 0 {
		enc.Int(keyLimit, d.Limit)
	}
	if d.OKPath != "" {
		enc.Str(keyOKPath, d.OKPath)
	}
	if d.Rejection != "" {
		enc.Str(keyRejection, d.Rejection)
	}
	if d.FailureKind != "" || d.FailureMessage != "" {
		enc.Strs(keyFailure, d.FailureKind, d.FailureMessage)
	}
	if len(d.Context) > 0 {
		enc.Map(keyContext, d.Context)
	}
	d.Status.EncodeMetricProps(enc)
}

// Compact returns the record encoded as one compact line.
func (d *Data) Compact() string {
	enc := slogtoys.NewEncoder()
	d.EncodeProps(enc)
	return enc.Done()
}

// DecodeProp consumes the value for key when it belongs to Data or its
// embedded Status, returning whether the key was recognized.
func (d *Data) DecodeProp(dec *slogtoys.Decoder, key string) (bool, error) {
	switch key {
	case keyCategory:
		v, err := dec.Str()
		d.Category = v
		return true, err
	case keyOperation:
		v, err := dec.Str()
		d.Operation = v
		return true, err
	case keyDescription:
		v, err := dec.Str()
		d.Description = v
		return true, err
	case keyCreateTime:
		v, err := dec.Int()
		d.CreateTime = v
		return true, err
	case keyStartTime:
		v, err := dec.Int()
		d.StartTime = v
		return true, err
	case keyStopTime:
		v, err := dec.Int()
		d.StopTime = v
		return true, err
	case keyIteration:
		v, err := dec.Int()
		d.Iteration = v
		return true, err
	case keyExpected:
		v, err := dec.Int()
		d.Expected = v
		return true, err
	case keyLimit:
		v, err := dec.Int()
		d.Limit = v
		return true, err
	case keyOKPath:
		v, err := dec.Str()
		d.OKPath = v
		return true, err
	case keyRejection:
		v, err := dec.Str()
		d.Rejection = v
		return true, err
	case keyFailure:
		vs, err := dec.Strs()
		if err != nil {
			return true, err
		}
		if len(vs) > 0 {
			d.FailureKind = vs[0]
		}
		if len(vs) > 1 {
			d.FailureMessage = vs[1]
		}
		return true, nil
	case keyContext:
		m, err := dec.StrMap()
		if err != nil {
			return true, err
		}
		if len(m) > 0 {
			d.Context = m
		}
		return true, nil
	}
	return d.Status.DecodeProp(dec, key)
}

// DecodeCompact parses a complete compact line into d. Unknown keys are
// skipped; absent keys leave their fields at zero.
func (d *Data) DecodeCompact(src string) error {
	dec, err := slogtoys.NewDecoder(src)
	if err != nil {
		return err
	}
	for {
		key, ok, err := dec.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		handled, err := d.DecodeProp(dec, key)
		if err != nil {
			return err
		}
		if !handled {
			if err := dec.Skip(); err != nil {
				return err
			}
		}
	}
}
