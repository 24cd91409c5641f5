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
	"os"
	"slices"
	"strings"
)

// environReport dumps the process environment, sorted. It is disabled by
// default; enable it only where logs are as protected as the environment
// itself.
type environReport struct{}

func (environReport) Name() string { return "env" }

func (environReport) Generate(_ context.Context) (string, error) {
	env := slices.Sorted(slices.Values(os.Environ()))

	var b strings.Builder
	b.WriteString("environment report")
	for _, kv := range env {
		b.WriteString("\n  ")
		b.WriteString(kv)
	}
	return b.String(), nil
}
