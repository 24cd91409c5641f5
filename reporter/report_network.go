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
	"net"
	"strings"
)

// networkReport lists every interface with its flags and addresses.
// Enumeration failures are written into the block so a broken netlink
// never aborts the run.
type networkReport struct{}

func (networkReport) Name() string { return "network" }

func (networkReport) Generate(_ context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("network report")

	ifaces, err := net.Interfaces()
	if err != nil {
		fmt.Fprintf(&b, "\n  interfaces unavailable: %v", err)
		return b.String(), nil
	}
	if len(ifaces) == 0 {
		b.WriteString("\n  no interfaces")
		return b.String(), nil
	}

	for _, iface := range ifaces {
		fmt.Fprintf(&b, "\n  %s: flags=%s mtu=%d", iface.Name, iface.Flags, iface.MTU)
		if len(iface.HardwareAddr) > 0 {
			fmt.Fprintf(&b, " hw=%s", iface.HardwareAddr)
		}
		addrs, err := iface.Addrs()
		if err != nil {
			fmt.Fprintf(&b, "\n    addresses unavailable: %v", err)
			continue
		}
		for _, addr := range addrs {
			fmt.Fprintf(&b, "\n    %s", addr)
		}
	}
	return b.String(), nil
}
