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

package slogtoyshttp_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
	"github.com/pjscruggs/slogtoys/slogtoyshttp"
)

// stubTransport fabricates responses without touching the network.
type stubTransport struct {
	status  int
	err     error
	lastReq *http.Request
}

func (s *stubTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	s.lastReq = r
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode:    s.status,
		ContentLength: 5,
		Body:          http.NoBody,
		Request:       r,
	}, nil
}

func TestTransportOKRequest(t *testing.T) {
	h := &captureHandler{}
	base := &stubTransport{status: http.StatusOK}
	rt := slogtoyshttp.Transport(slog.New(h), base, testOptions()...)

	req := httptest.NewRequest(http.MethodGet, "http://api.example/items", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	oks := byMarker(h.records(), slogtoys.MeterMsgOK)
	if len(oks) != 1 {
		t.Fatalf("got %d OK lines, want 1", len(oks))
	}
	if !strings.HasPrefix(oks[0].Message, "OK http.client/GET /items") {
		t.Errorf("OK message = %q", oks[0].Message)
	}
}

func TestTransportRejectsClientError(t *testing.T) {
	h := &captureHandler{}
	base := &stubTransport{status: http.StatusForbidden}
	rt := slogtoyshttp.Transport(slog.New(h), base, testOptions()...)

	req := httptest.NewRequest(http.MethodGet, "http://api.example/denied", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	rejects := byMarker(h.records(), slogtoys.MeterMsgReject)
	if len(rejects) != 1 {
		t.Fatalf("got %d REJECT lines, want 1", len(rejects))
	}
	if !strings.Contains(rejects[0].Message, "[403 Forbidden]") {
		t.Errorf("REJECT message = %q", rejects[0].Message)
	}
}

func TestTransportFailsOnTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	h := &captureHandler{}
	rt := slogtoyshttp.Transport(slog.New(h), &stubTransport{err: boom}, testOptions()...)

	req := httptest.NewRequest(http.MethodGet, "http://api.example/down", nil)
	_, err := rt.RoundTrip(req)
	if !errors.Is(err, boom) {
		t.Fatalf("RoundTrip error = %v, want wrapped cause", err)
	}

	fails := byMarker(h.records(), slogtoys.MeterMsgFail)
	if len(fails) != 1 {
		t.Fatalf("got %d FAIL lines, want 1", len(fails))
	}
	if !strings.Contains(fails[0].Message, "connection refused") {
		t.Errorf("FAIL message = %q", fails[0].Message)
	}
}

func TestTransportFailsOnServerError(t *testing.T) {
	h := &captureHandler{}
	base := &stubTransport{status: http.StatusBadGateway}
	rt := slogtoyshttp.Transport(slog.New(h), base, testOptions()...)

	req := httptest.NewRequest(http.MethodGet, "http://api.example/upstream", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if got := len(byMarker(h.records(), slogtoys.MeterMsgFail)); got != 1 {
		t.Errorf("got %d FAIL lines, want 1", got)
	}
}

func TestTransportPutsMeterInRequestContext(t *testing.T) {
	h := &captureHandler{}
	base := &stubTransport{status: http.StatusOK}
	rt := slogtoyshttp.Transport(slog.New(h), base, testOptions()...)

	req := httptest.NewRequest(http.MethodGet, "http://api.example/ctx", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if base.lastReq == nil {
		t.Fatal("base transport never saw the request")
	}
	snap := meter.FromContext(base.lastReq.Context()).Snapshot()
	if snap.Category != "http.client" {
		t.Errorf("category in base request context = %q, want http.client", snap.Category)
	}
}

func TestTransportNilBaseUsesDefault(t *testing.T) {
	// Exercised end to end against a local server so DefaultTransport
	// actually carries the request.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := &captureHandler{}
	client := &http.Client{Transport: slogtoyshttp.Transport(slog.New(h), nil, testOptions()...)}

	resp, err := client.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if got := len(byMarker(h.records(), slogtoys.MeterMsgOK)); got != 1 {
		t.Errorf("got %d OK lines, want 1", got)
	}
}

func TestTransportFallsBackToContextLogger(t *testing.T) {
	h := &captureHandler{}
	logger := slog.New(h)
	base := &stubTransport{status: http.StatusOK}
	rt := slogtoyshttp.Transport(nil, base, testOptions()...)

	req := httptest.NewRequest(http.MethodGet, "http://api.example/items", nil)
	req = req.WithContext(slogtoys.ContextWithLogger(req.Context(), logger))
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}

	if got := len(byMarker(h.records(), slogtoys.MeterMsgOK)); got != 1 {
		t.Errorf("got %d OK lines through the context logger, want 1", got)
	}
	if got := slogtoys.Logger(base.lastReq.Context()); got != logger {
		t.Error("outgoing request context should carry the resolved logger")
	}
}
