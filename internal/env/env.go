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

// Package env reads slogtoys configuration from environment variables.
//
// Parsing is deliberately lenient: a malformed value prints a warning to
// stderr, records an error on the Parser, and falls back to the supplied
// default, so a configuration mistake never prevents a process from
// starting. Callers inspect Parser.Err after loading to learn whether
// every value parsed cleanly.
package env

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// internalLevelTrace mirrors the root package's LevelTrace without
// importing it, which would create an import cycle.
const internalLevelTrace = slog.LevelDebug - 4

// Parser accumulates parse errors across a sequence of lookups instead of
// failing at the first malformed value.
type Parser struct {
	errs []error
}

// Err returns every collected parse error joined into one, or nil when all
// values parsed cleanly.
func (p *Parser) Err() error {
	return errors.Join(p.errs...)
}

func (p *Parser) warnf(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	p.errs = append(p.errs, err)
	fmt.Fprintf(os.Stderr, "[slogtoys config] WARNING: %v\n", err)
}

// String returns the trimmed value of name, or def when unset or blank.
func (p *Parser) String(name, def string) string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	return raw
}

// StringList returns the comma-separated values of name with surrounding
// whitespace removed and empty elements dropped, or def when unset.
func (p *Parser) StringList(name string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Bool parses a boolean from name, accepting the usual spellings
// (true/false, 1/0, yes/no, on/off) case-insensitively.
func (p *Parser) Bool(name string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if raw == "" {
		return def
	}
	switch raw {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		p.warnf("invalid boolean value %q for %s, defaulting to %v", raw, name, def)
		return def
	}
}

// Int64 parses a base-10 integer from name.
func (p *Parser) Int64(name string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.warnf("invalid integer value %q for %s, defaulting to %d", raw, name, def)
		return def
	}
	return v
}

// Duration parses a duration from name. A bare non-negative integer is
// taken as milliseconds; anything else must be a valid non-negative Go
// duration string such as "2s" or "1m30s".
func (p *Parser) Duration(name string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms < 0 {
			p.warnf("negative millisecond value %q for %s, defaulting to %v", raw, name, def)
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	p.warnf("invalid duration value %q for %s, defaulting to %v", raw, name, def)
	return def
}

// Level parses a log level from name. Recognized names are trace, debug,
// info, warn/warning, and error (case-insensitive); a bare integer is used
// verbatim as an slog.Level value.
func (p *Parser) Level(name string, def slog.Level) slog.Level {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if raw == "" {
		return def
	}
	switch raw {
	case "trace":
		return internalLevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if v, err := strconv.Atoi(raw); err == nil {
			return slog.Level(v)
		}
		p.warnf("invalid log level value %q for %s, defaulting to %v", raw, name, def)
		return def
	}
}
