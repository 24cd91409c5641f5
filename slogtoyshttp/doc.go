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

// Package slogtoyshttp meters HTTP traffic with the slogtoys meter.
//
// [Middleware] opens one meter per inbound request and terminates it from
// the response: server errors and handler panics fail the meter, 4xx
// statuses reject it, and everything else succeeds. Handlers reach the
// request's meter through [meter.FromContext] to add context values,
// iterations, or an early outcome of their own; whichever termination
// happens first wins.
//
// [Transport] is the outbound mirror, metering each request an
// [http.Client] sends.
//
// Both accept a nil logger: metering then follows the logger each
// request's context carries (see [slogtoys.ContextWithLogger]), falling
// back to slog.Default. The middleware also installs the resolved logger
// into the request context, so wrapped handlers pick it up through
// [slogtoys.Logger].
//
// # Server
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("GET /orders/{id}", getOrder)
//
//	handler := slogtoyshttp.Middleware(logger)(mux)
//	log.Fatal(http.ListenAndServe(":8080", handler))
//
// Each request then produces the usual meter pair, for example:
//
//	OK GET /orders/{id}: 1.2ms
//
// # Client
//
//	client := &http.Client{
//	    Transport: slogtoyshttp.Transport(logger, nil),
//	}
//
// # Tracing
//
// [WithOTel] wraps the handler or transport with otelhttp so spans are
// created and propagated; meter lines then carry trace and span IDs.
// [WithPropagationExtract] seeds the request context from inbound trace
// headers without starting spans, for servers that want correlation but
// not OpenTelemetry instrumentation.
package slogtoyshttp
