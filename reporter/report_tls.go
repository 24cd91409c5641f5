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
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"
)

// tlsDialTimeout bounds each endpoint probe when ctx carries no deadline.
const tlsDialTimeout = 10 * time.Second

// tlsReport dumps the certificate chain presented by one endpoint.
//
// The handshake skips verification: the point is to show what the peer
// serves, expired or mis-named chains included. Nothing is ever sent over
// the connection.
type tlsReport struct {
	addr string
}

func (r tlsReport) Name() string { return "tls" }

func (r tlsReport) Generate(ctx context.Context) (string, error) {
	addr := r.addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "443")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "tls report for %s", addr)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: tlsDialTimeout},
		Config:    &tls.Config{InsecureSkipVerify: true},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		fmt.Fprintf(&b, "\n  handshake failed: %v", err)
		return b.String(), nil
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	fmt.Fprintf(&b, "\n  version: %s", tls.VersionName(state.Version))
	fmt.Fprintf(&b, "\n  cipher suite: %s", tls.CipherSuiteName(state.CipherSuite))
	if state.NegotiatedProtocol != "" {
		fmt.Fprintf(&b, "\n  alpn: %s", state.NegotiatedProtocol)
	}
	for i, cert := range state.PeerCertificates {
		fmt.Fprintf(&b, "\n  certificate %d", i)
		fmt.Fprintf(&b, "\n    subject: %s", cert.Subject)
		fmt.Fprintf(&b, "\n    issuer: %s", cert.Issuer)
		fmt.Fprintf(&b, "\n    valid: %s to %s",
			cert.NotBefore.UTC().Format(time.RFC3339),
			cert.NotAfter.UTC().Format(time.RFC3339))
		if len(cert.DNSNames) > 0 {
			fmt.Fprintf(&b, "\n    dns names: %s", strings.Join(cert.DNSNames, ", "))
		}
	}
	return b.String(), nil
}
