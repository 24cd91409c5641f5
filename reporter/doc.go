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

// Package reporter logs one-shot diagnostic dumps about the process and
// its surroundings.
//
// Each report is a named multi-line Info block tagged [slogtoys.Report]
// with a "report" attr, so a single grep pulls the full picture of a
// deployment out of its log stream. The built-in set covers the Go runtime
// and memory statistics, host and platform identity, operating system
// facts, network interfaces, the environment (off by default, since
// environments tend to carry secrets), and the TLS certificate chain of
// any configured endpoint.
//
// Reports run on demand, typically once at startup:
//
//	cfg, _ := reporter.ConfigFromEnv()
//	reporter.New(logger, cfg).Run(ctx)
//
// Probe failures inside a report (an unreachable TLS endpoint, say) are
// written into the block rather than returned; [Reporter.Run] only fails
// when ctx does.
package reporter
