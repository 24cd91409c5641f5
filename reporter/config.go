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

package reporter

import (
	"github.com/pjscruggs/slogtoys/internal/env"
)

// Environment variables selecting which reports run.
const (
	EnvRuntime = "SLOGTOYS_REPORTER_RUNTIME"
	EnvMemory  = "SLOGTOYS_REPORTER_MEMORY"
	EnvHost    = "SLOGTOYS_REPORTER_HOST"
	EnvOS      = "SLOGTOYS_REPORTER_OS"
	EnvNetwork = "SLOGTOYS_REPORTER_NETWORK"
	EnvEnviron = "SLOGTOYS_REPORTER_ENV"
	EnvTLS     = "SLOGTOYS_REPORTER_TLS"
)

// Config selects the reports a [Reporter] runs.
type Config struct {
	// Runtime reports the Go toolchain and scheduler facts.
	Runtime bool

	// Memory reports runtime.MemStats.
	Memory bool

	// Host reports hostname, pid, and the detected platform.
	Host bool

	// OS reports the current user, directories, time zone, and locale.
	OS bool

	// Network reports every network interface and its addresses.
	Network bool

	// Environ reports the process environment. Off by default because
	// environments routinely hold credentials.
	Environ bool

	// TLS lists endpoints whose certificate chains should be dumped.
	// Addresses without a port default to :443.
	TLS []string
}

// DefaultConfig returns the reports enabled when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Runtime: true,
		Memory:  true,
		Host:    true,
		OS:      true,
		Network: true,
	}
}

// ConfigFromEnv builds a Config from SLOGTOYS_REPORTER_* variables,
// starting from [DefaultConfig]. Malformed values are collected into the
// returned error while the remaining variables still apply.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var p env.Parser
	cfg.Runtime = p.Bool(EnvRuntime, cfg.Runtime)
	cfg.Memory = p.Bool(EnvMemory, cfg.Memory)
	cfg.Host = p.Bool(EnvHost, cfg.Host)
	cfg.OS = p.Bool(EnvOS, cfg.OS)
	cfg.Network = p.Bool(EnvNetwork, cfg.Network)
	cfg.Environ = p.Bool(EnvEnviron, cfg.Environ)
	cfg.TLS = p.StringList(EnvTLS, nil)

	return cfg, p.Err()
}
