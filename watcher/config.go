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

package watcher

import (
	"errors"
	"time"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/internal/env"
)

// Environment variables read by [ConfigFromEnv].
const (
	// EnvName sets the watcher name carried on every emitted line.
	EnvName = "SLOGTOYS_WATCHER_NAME"
	// EnvDelay sets the wait before the first snapshot. Accepts a Go
	// duration string; a bare integer means milliseconds.
	EnvDelay = "SLOGTOYS_WATCHER_DELAY"
	// EnvPeriod sets the interval between snapshots; same syntax as
	// EnvDelay.
	EnvPeriod = "SLOGTOYS_WATCHER_PERIOD"
)

// Config carries a watcher's schedule and collection set.
type Config struct {
	// Name identifies this watcher on its lines, useful when several
	// processes share a log stream.
	Name string

	// Delay is the wait before the first snapshot.
	Delay time.Duration

	// Period is the interval between snapshots.
	Period time.Duration

	// Status selects which runtime metric groups each snapshot gathers.
	Status slogtoys.StatusConfig
}

// DefaultConfig returns the stock schedule: first snapshot after one
// minute, then every ten minutes, with the default collection set.
func DefaultConfig() Config {
	return Config{
		Name:   "watcher",
		Delay:  time.Minute,
		Period: 10 * time.Minute,
		Status: slogtoys.DefaultStatusConfig(),
	}
}

// ConfigFromEnv builds a Config from the SLOGTOYS_WATCHER_* and
// SLOGTOYS_STATUS_* environment variables, starting from [DefaultConfig].
// Malformed values fall back to their defaults; the returned error joins
// everything that failed to parse and the returned Config is always usable.
func ConfigFromEnv() (Config, error) {
	var p env.Parser
	def := DefaultConfig()
	cfg := Config{
		Name:   p.String(EnvName, def.Name),
		Delay:  p.Duration(EnvDelay, def.Delay),
		Period: p.Duration(EnvPeriod, def.Period),
	}
	status, err := slogtoys.StatusConfigFromEnv()
	cfg.Status = status
	return cfg, errors.Join(p.Err(), err)
}
