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

package slogtoyshttp

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
)

// DefaultClientCategory is the meter category for outbound requests.
const DefaultClientCategory = "http.client"

// Transport returns a RoundTripper that meters each outbound request
// against logger. A nil logger falls back to the logger each request's
// context carries (see [slogtoys.ContextWithLogger]), then to
// slog.Default. Transport errors fail the meter; otherwise the response
// status decides the outcome exactly as in [Middleware]. A nil base uses
// [http.DefaultTransport].
func Transport(logger *slog.Logger, base http.RoundTripper, opts ...Option) http.RoundTripper {
	cfg := applyOptions(logger, DefaultClientCategory, opts)
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.enableOTel {
		base = otelhttp.NewTransport(base)
	}
	return &roundTripper{base: base, cfg: cfg}
}

type roundTripper struct {
	base http.RoundTripper
	cfg  *config
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := t.cfg.requestLogger(req.Context())
	m := t.cfg.newMeter(req.Context(), logger).
		Op(t.cfg.operationName(req)).
		Ctx("method", req.Method)
	if req.URL != nil {
		m.Ctx("host", req.URL.Host).Ctx("path", req.URL.Path)
	}
	m.Start()

	ctx := slogtoys.ContextWithLogger(req.Context(), logger)
	req = req.WithContext(meter.IntoContext(ctx, m))

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		m.Fail(err)
		return nil, fmt.Errorf("round trip request: %w", err)
	}

	finishMeter(m, resp.StatusCode, max(resp.ContentLength, 0))
	return resp, nil
}
