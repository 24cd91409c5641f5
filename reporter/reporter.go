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
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pjscruggs/slogtoys"
)

// A Report produces one named diagnostic block.
//
// Generate returns the block body. Probe failures belong in the body, not
// in the error: a report should only fail when it cannot produce anything
// at all, which for the built-in set means ctx was cancelled.
type Report interface {
	Name() string
	Generate(ctx context.Context) (string, error)
}

// Reporter runs a set of reports against a logger.
type Reporter struct {
	logger  *slog.Logger
	reports []Report
}

// New builds a Reporter with the reports cfg enables, in a fixed order:
// runtime, memory, host, os, network, env, then one TLS report per
// configured endpoint. A nil logger defers to the context given to
// [Reporter.Run] (see [slogtoys.ContextWithLogger]), then to slog.Default.
func New(logger *slog.Logger, cfg Config) *Reporter {
	r := &Reporter{logger: logger}
	if cfg.Runtime {
		r.reports = append(r.reports, runtimeReport{})
	}
	if cfg.Memory {
		r.reports = append(r.reports, memoryReport{})
	}
	if cfg.Host {
		r.reports = append(r.reports, hostReport{})
	}
	if cfg.OS {
		r.reports = append(r.reports, osReport{})
	}
	if cfg.Network {
		r.reports = append(r.reports, networkReport{})
	}
	if cfg.Environ {
		r.reports = append(r.reports, environReport{})
	}
	for _, addr := range cfg.TLS {
		r.reports = append(r.reports, tlsReport{addr: addr})
	}
	return r
}

// Add appends custom reports after the built-in ones.
func (r *Reporter) Add(reports ...Report) {
	r.reports = append(r.reports, reports...)
}

// Run generates and logs each report in order. It stops at the first hard
// failure, which in practice is ctx expiring between or during reports.
func (r *Reporter) Run(ctx context.Context) error {
	for _, rep := range r.reports {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.emit(ctx, rep); err != nil {
			return err
		}
	}
	return nil
}

// RunConcurrent generates all reports in parallel, logging each as it
// completes. Block ordering is not preserved. The first hard failure
// cancels the remaining reports and is returned.
func (r *Reporter) RunConcurrent(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, rep := range r.reports {
		g.Go(func() error { return r.emit(ctx, rep) })
	}
	return g.Wait()
}

func (r *Reporter) emit(ctx context.Context, rep Report) error {
	name := rep.Name()
	body, err := rep.Generate(ctx)
	if err != nil {
		return fmt.Errorf("report %s: %w", name, err)
	}
	logger := r.logger
	if logger == nil {
		logger = slogtoys.Logger(ctx)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, body,
		slogtoys.Report.Attr(),
		slog.String("report", name))
	return nil
}
