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
	"net"
	"net/http"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
)

const instrumentationName = "github.com/pjscruggs/slogtoys/slogtoyshttp"

// DefaultServerCategory is the meter category for inbound requests.
const DefaultServerCategory = "http.server"

// Middleware returns middleware that meters each request against logger.
// A nil logger falls back to the logger the request context carries (see
// [slogtoys.ContextWithLogger]), then to slog.Default; the winner is
// installed back into the request context, so handlers reach it through
// [slogtoys.Logger].
//
// The meter starts before the wrapped handler runs and terminates when it
// returns: 5xx statuses and panics fail it, 4xx statuses reject it, and
// anything else succeeds. Handlers may terminate the meter themselves via
// [meter.FromContext]; the middleware's verdict then arrives second and
// is ignored.
func Middleware(logger *slog.Logger, opts ...Option) func(http.Handler) http.Handler {
	cfg := applyOptions(logger, DefaultServerCategory, opts)

	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}

		metered := meteredHandler(cfg, next)
		chain := metered
		if cfg.enableOTel {
			chain = otelhttp.NewHandler(metered, instrumentationName)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.extract {
				r = extractSpanContext(r)
			}
			chain.ServeHTTP(w, r)
		})
	}
}

func meteredHandler(cfg *config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := cfg.requestLogger(r.Context())
		m := cfg.newMeter(r.Context(), logger).
			Op(cfg.operationName(r)).
			Ctx("method", r.Method).
			Ctx("path", r.URL.Path)
		if peer := peerHost(r.RemoteAddr); peer != "" {
			m.Ctx("peer", peer)
		}
		if ua := r.UserAgent(); ua != "" {
			m.Ctx("user_agent", ua)
		}
		m.Start()

		rec := newResponseRecorder(w)
		ctx := slogtoys.ContextWithLogger(r.Context(), logger)
		r = r.WithContext(meter.IntoContext(ctx, m))

		defer func() {
			if rv := recover(); rv != nil {
				if m.Outcome() == "" {
					m.Ctx("status", rec.Status()).
						Fail(fmt.Errorf("handler panic: %v", rv))
				}
				panic(rv)
			}
			finishMeter(m, rec.Status(), rec.BytesWritten())
		}()
		next.ServeHTTP(rec, r)
	})
}

// finishMeter maps the response status onto the meter outcome. A meter
// the handler already terminated keeps its original outcome.
func finishMeter(m *meter.Meter, status int, bytes int64) {
	if m.Outcome() != "" {
		return
	}
	m.Ctx("status", status)
	if bytes > 0 {
		m.Ctx("bytes", bytes)
	}
	switch {
	case status >= http.StatusInternalServerError:
		m.Fail(&statusError{status: status})
	case status >= http.StatusBadRequest:
		m.Reject(statusLabel(status))
	default:
		m.OK()
	}
}

// operationName derives the meter operation for a request.
func (cfg *config) operationName(r *http.Request) string {
	if cfg.opNamer != nil {
		if name := cfg.opNamer(r); name != "" {
			return name
		}
	}
	// The ServeMux pattern keeps cardinality bounded; raw paths do not.
	if r.Pattern != "" {
		return r.Pattern
	}
	path := "/"
	if r.URL != nil && r.URL.Path != "" {
		path = r.URL.Path
	}
	return r.Method + " " + path
}

// statusError represents a response that ended in an HTTP error status.
type statusError struct {
	status int
}

func (e *statusError) Error() string { return statusLabel(e.status) }

// statusLabel renders "404 Not Found", or just the number for codes the
// standard library has no text for.
func statusLabel(status int) string {
	if text := http.StatusText(status); text != "" {
		return strconv.Itoa(status) + " " + text
	}
	return strconv.Itoa(status)
}

// peerHost strips the port from a host:port remote address.
func peerHost(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// extractSpanContext seeds the request context from inbound trace headers
// when it does not already carry a valid span context.
func extractSpanContext(r *http.Request) *http.Request {
	ctx := r.Context()
	if trace.SpanContextFromContext(ctx).IsValid() {
		return r
	}
	extracted := otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))
	if !trace.SpanContextFromContext(extracted).IsValid() {
		return r
	}
	return r.WithContext(extracted)
}
