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

// Package units renders byte counts, event counts, rates, and durations in
// the short human form used on readable meter and watcher lines.
package units

import (
	"fmt"
	"time"
)

var byteUnits = []string{"B", "kB", "MB", "GB", "TB", "PB"}

// Bytes formats a byte count with a decimal unit prefix, keeping one
// decimal place once the value is scaled, e.g. "837 B", "1.2 kB",
// "45.6 MB".
func Bytes(n uint64) string {
	v := float64(n)
	i := 0
	for v >= 1000 && i < len(byteUnits)-1 {
		v /= 1000
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[i])
}

var countUnits = []string{"", "k", "M", "G", "T"}

// Count formats an event count compactly: small values verbatim, larger
// ones scaled with a metric suffix, e.g. "840", "1.2k", "3.4M".
func Count(n int64) string {
	if n < 0 {
		return fmt.Sprintf("%d", n)
	}
	v := float64(n)
	i := 0
	for v >= 1000 && i < len(countUnits)-1 {
		v /= 1000
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%.1f%s", v, countUnits[i])
}

// Rate formats a per-second rate, e.g. "8.1/s", "1.2k/s". Rates below one
// keep two decimal places so very slow operations stay legible.
func Rate(perSecond float64) string {
	if perSecond < 0 {
		perSecond = 0
	}
	if perSecond < 1 {
		return fmt.Sprintf("%.2f/s", perSecond)
	}
	v := perSecond
	i := 0
	for v >= 1000 && i < len(countUnits)-1 {
		v /= 1000
		i++
	}
	return fmt.Sprintf("%.1f%s/s", v, countUnits[i])
}

// Duration trims a duration to display precision. Sub-second values keep
// roughly three significant digits; longer values round to the natural
// coarser unit.
func Duration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return d.Round(time.Minute).String()
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	case d >= time.Microsecond:
		return d.Round(10 * time.Nanosecond).String()
	default:
		return d.String()
	}
}
