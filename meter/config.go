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
	"errors"
	"sync"
	"time"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/internal/env"
)

// Environment variables read by [ConfigFromEnv].
const (
	// EnvProgressPeriod sets the minimum interval between progress lines.
	// Accepts a Go duration string; a bare integer means milliseconds.
	EnvProgressPeriod = "SLOGTOYS_METER_PROGRESS_PERIOD"
	// EnvPrintCategory toggles the category prefix on readable lines.
	EnvPrintCategory = "SLOGTOYS_METER_PRINT_CATEGORY"
)

// Config carries the knobs shared by every meter built from it. Copies are
// independent; a Config is never mutated after the meter is constructed.
type Config struct {
	// ProgressPeriod is the minimum interval between emitted progress
	// lines. Progress calls inside the window are absorbed silently, so
	// hot loops can report unconditionally.
	ProgressPeriod time.Duration

	// PrintCategory includes the category in readable message prefixes.
	// The compact data line always carries the category.
	PrintCategory bool

	// Status selects which runtime metric groups ride along on compact
	// data lines.
	Status slogtoys.StatusConfig
}

// DefaultConfig returns the stock meter configuration: two-second progress
// throttling, category prefixes on, and the default status collection set.
func DefaultConfig() Config {
	return Config{
		ProgressPeriod: 2 * time.Second,
		PrintCategory:  true,
		Status:         slogtoys.DefaultStatusConfig(),
	}
}

// ConfigFromEnv builds a Config from the SLOGTOYS_METER_* and
// SLOGTOYS_STATUS_* environment variables, starting from [DefaultConfig].
// Malformed values fall back to their defaults; the returned error joins
// everything that failed to parse and the returned Config is always usable.
func ConfigFromEnv() (Config, error) {
	var p env.Parser
	def := DefaultConfig()
	cfg := Config{
		ProgressPeriod: p.Duration(EnvProgressPeriod, def.ProgressPeriod),
		PrintCategory:  p.Bool(EnvPrintCategory, def.PrintCategory),
	}
	status, err := slogtoys.StatusConfigFromEnv()
	cfg.Status = status
	return cfg, errors.Join(p.Err(), err)
}

var (
	envConfigOnce sync.Once
	envConfig     Config
)

// defaultEnvConfig loads the environment-derived Config once per process.
// Parse warnings have already been written to stderr by the env package.
func defaultEnvConfig() Config {
	envConfigOnce.Do(func() {
		envConfig, _ = ConfigFromEnv()
	})
	return envConfig
}
