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
	"maps"
	"os"
	"os/user"
	"slices"
	"strings"
	"time"

	"github.com/pjscruggs/slogtoys"
)

// detectPlatform is a package variable so tests can avoid the cloud
// metadata probe behind [slogtoys.DetectPlatform].
var detectPlatform = slogtoys.DetectPlatform

// hostReport identifies the machine and the platform it runs on.
type hostReport struct{}

func (hostReport) Name() string { return "host" }

func (hostReport) Generate(ctx context.Context) (string, error) {
	p := detectPlatform(ctx)

	var b strings.Builder
	b.WriteString("host report\n")
	fmt.Fprintf(&b, "  hostname: %s\n", p.Hostname)
	fmt.Fprintf(&b, "  pid: %d\n", p.PID)
	fmt.Fprintf(&b, "  platform: %s", p.Kind)
	if p.ProjectID != "" {
		fmt.Fprintf(&b, "\n  project: %s", p.ProjectID)
	}
	for _, k := range slices.Sorted(maps.Keys(p.Labels)) {
		fmt.Fprintf(&b, "\n  %s: %s", k, p.Labels[k])
	}
	return b.String(), nil
}

// osReport describes the process's view of the operating system.
type osReport struct{}

func (osReport) Name() string { return "os" }

func (osReport) Generate(_ context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("os report\n")

	if u, err := user.Current(); err != nil {
		fmt.Fprintf(&b, "  user: unavailable: %v\n", err)
	} else {
		fmt.Fprintf(&b, "  user: %s (uid %s)\n", u.Username, u.Uid)
	}
	if wd, err := os.Getwd(); err != nil {
		fmt.Fprintf(&b, "  working dir: unavailable: %v\n", err)
	} else {
		fmt.Fprintf(&b, "  working dir: %s\n", wd)
	}
	fmt.Fprintf(&b, "  temp dir: %s\n", os.TempDir())

	zone, offset := time.Now().Zone()
	fmt.Fprintf(&b, "  time zone: %s (%s)", zone, formatUTCOffset(offset))

	for _, name := range []string{"LANG", "LC_ALL"} {
		if v, ok := os.LookupEnv(name); ok {
			fmt.Fprintf(&b, "\n  %s: %s", strings.ToLower(name), v)
		}
	}
	return b.String(), nil
}

// formatUTCOffset renders a zone offset in seconds as "UTC+05:30".
func formatUTCOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, seconds/3600, seconds%3600/60)
}
