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

package slogtoysgrpc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
	"github.com/pjscruggs/slogtoys/slogtoysgrpc"
)

type captureHandler struct {
	mu   sync.Mutex
	recs []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]slog.Record{}, h.recs...)
}

func byMarker(recs []slog.Record, mk slogtoys.Marker) []slog.Record {
	var out []slog.Record
	for _, rec := range recs {
		if got, ok := slogtoys.MarkerFromRecord(rec); ok && got == mk {
			out = append(out, rec)
		}
	}
	return out
}

// meterCtxValue digs a context value out of the meter's "ctx" attr.
func meterCtxValue(t *testing.T, rec slog.Record, key string) (string, bool) {
	t.Helper()
	var kv map[string]string
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "ctx" {
			kv, _ = a.Value.Any().(map[string]string)
			return false
		}
		return true
	})
	v, ok := kv[key]
	return v, ok
}

func testOptions() []slogtoysgrpc.Option {
	return []slogtoysgrpc.Option{
		slogtoysgrpc.WithMeterConfig(meter.Config{
			ProgressPeriod: time.Hour,
			PrintCategory:  true,
		}),
	}
}

var unaryInfo = &grpc.UnaryServerInfo{FullMethod: "/example.Billing/Render"}

func TestUnaryServerOK(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	var category string
	handler := func(ctx context.Context, req any) (any, error) {
		category = meter.FromContext(ctx).Snapshot().Category
		return wrapperspb.String("rendered"), nil
	}

	resp, err := interceptor(context.Background(), wrapperspb.String("invoice-1"), unaryInfo, handler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp == nil {
		t.Fatal("response dropped")
	}
	if category != "grpc.server" {
		t.Errorf("handler saw category %q, want grpc.server", category)
	}

	oks := byMarker(h.records(), slogtoys.MeterMsgOK)
	if len(oks) != 1 {
		t.Fatalf("got %d OK lines, want 1", len(oks))
	}
	if !strings.HasPrefix(oks[0].Message, "OK grpc.server/example.Billing/Render") {
		t.Errorf("OK message = %q", oks[0].Message)
	}
	if v, ok := meterCtxValue(t, oks[0], "req_bytes"); !ok || v == "0" {
		t.Errorf("req_bytes = %q (present %v), want positive size", v, ok)
	}
}

func TestUnaryServerRejectsCallerCodes(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	handler := func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "no such invoice")
	}

	_, err := interceptor(context.Background(), wrapperspb.String("x"), unaryInfo, handler)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("error = %v, want NotFound", err)
	}

	rejects := byMarker(h.records(), slogtoys.MeterMsgReject)
	if len(rejects) != 1 {
		t.Fatalf("got %d REJECT lines, want 1", len(rejects))
	}
	if !strings.Contains(rejects[0].Message, "[NotFound]") {
		t.Errorf("REJECT message = %q", rejects[0].Message)
	}
	if got := len(byMarker(h.records(), slogtoys.MeterMsgFail)); got != 0 {
		t.Errorf("got %d FAIL lines, want 0", got)
	}
}

func TestUnaryServerFailsServerCodes(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	handler := func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Internal, "database down")
	}

	if _, err := interceptor(context.Background(), wrapperspb.String("x"), unaryInfo, handler); err == nil {
		t.Fatal("error swallowed")
	}

	fails := byMarker(h.records(), slogtoys.MeterMsgFail)
	if len(fails) != 1 {
		t.Fatalf("got %d FAIL lines, want 1", len(fails))
	}
	if fails[0].Level != slog.LevelError {
		t.Errorf("FAIL level = %v, want ERROR", fails[0].Level)
	}
	if !strings.Contains(fails[0].Message, "database down") {
		t.Errorf("FAIL message = %q", fails[0].Message)
	}
}

func TestUnaryServerPanicFailsAndRepanics(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	handler := func(context.Context, any) (any, error) { panic("kaboom") }

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		interceptor(context.Background(), wrapperspb.String("x"), unaryInfo, handler)
	}()

	if recovered != "kaboom" {
		t.Fatalf("recovered = %v, want kaboom", recovered)
	}
	fails := byMarker(h.records(), slogtoys.MeterMsgFail)
	if len(fails) != 1 {
		t.Fatalf("got %d FAIL lines, want 1", len(fails))
	}
	if !strings.Contains(fails[0].Message, "handler panic: kaboom") {
		t.Errorf("FAIL message = %q", fails[0].Message)
	}
}

func TestUnaryServerRecordsPeer(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	ctx := peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP("198.51.100.10"), Port: 4317},
	})
	handler := func(context.Context, any) (any, error) { return wrapperspb.String("ok"), nil }

	if _, err := interceptor(ctx, wrapperspb.String("x"), unaryInfo, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	oks := byMarker(h.records(), slogtoys.MeterMsgOK)
	if len(oks) != 1 {
		t.Fatalf("got %d OK lines, want 1", len(oks))
	}
	if v, _ := meterCtxValue(t, oks[0], "peer"); v != "198.51.100.10" {
		t.Errorf("peer = %q, want 198.51.100.10", v)
	}
}

func TestHandlerTerminationWins(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	handler := func(ctx context.Context, req any) (any, error) {
		meter.FromContext(ctx).Reject("quota")
		return nil, status.Error(codes.Internal, "masked")
	}

	interceptor(context.Background(), wrapperspb.String("x"), unaryInfo, handler)

	recs := h.records()
	if got := len(byMarker(recs, slogtoys.MeterMsgReject)); got != 1 {
		t.Errorf("got %d REJECT lines, want 1", got)
	}
	if got := len(byMarker(recs, slogtoys.MeterMsgFail)); got != 0 {
		t.Errorf("got %d FAIL lines, want 0", got)
	}
	if got := len(byMarker(recs, slogtoys.MeterInconsistent)); got != 0 {
		t.Errorf("early termination produced %d misuse warnings", got)
	}
}

// fakeServerStream feeds a fixed number of messages to RecvMsg.
type fakeServerStream struct {
	grpc.ServerStream
	ctx     context.Context
	pending int
}

func (f *fakeServerStream) Context() context.Context { return f.ctx }

func (f *fakeServerStream) RecvMsg(any) error {
	if f.pending == 0 {
		return io.EOF
	}
	f.pending--
	return nil
}

func (f *fakeServerStream) SendMsg(any) error { return nil }

func TestStreamServerCountsMessages(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.StreamServerInterceptor(slog.New(h), testOptions()...)

	info := &grpc.StreamServerInfo{
		FullMethod:     "/example.Billing/Import",
		IsClientStream: true,
		IsServerStream: true,
	}
	handler := func(srv any, ss grpc.ServerStream) error {
		var in wrapperspb.StringValue
		for {
			if err := ss.RecvMsg(&in); err != nil {
				if err == io.EOF {
					break
				}
				return err
			}
		}
		for range 2 {
			if err := ss.SendMsg(wrapperspb.String("chunk")); err != nil {
				return err
			}
		}
		return nil
	}

	stream := &fakeServerStream{ctx: context.Background(), pending: 3}
	if err := interceptor(nil, stream, info, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	oks := byMarker(h.records(), slogtoys.MeterMsgOK)
	if len(oks) != 1 {
		t.Fatalf("got %d OK lines, want 1", len(oks))
	}
	if v, _ := meterCtxValue(t, oks[0], "req_msgs"); v != "3" {
		t.Errorf("req_msgs = %q, want 3", v)
	}
	if v, _ := meterCtxValue(t, oks[0], "resp_msgs"); v != "2" {
		t.Errorf("resp_msgs = %q, want 2", v)
	}
	if v, ok := meterCtxValue(t, oks[0], "kind"); !ok || v != "bidi_stream" {
		t.Errorf("kind = %q, want bidi_stream", v)
	}
	var iterations int64
	oks[0].Attrs(func(a slog.Attr) bool {
		if a.Key == "iterations" {
			iterations = a.Value.Int64()
			return false
		}
		return true
	})
	if iterations != 5 {
		t.Errorf("iterations = %d, want 5", iterations)
	}
}

func TestUnaryClientOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		marker slogtoys.Marker
	}{
		{"ok", nil, slogtoys.MeterMsgOK},
		{"caller code rejects", status.Error(codes.InvalidArgument, "bad id"), slogtoys.MeterMsgReject},
		{"server code fails", status.Error(codes.Unavailable, "overloaded"), slogtoys.MeterMsgFail},
		{"plain error fails", errors.New("conn reset"), slogtoys.MeterMsgFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &captureHandler{}
			interceptor := slogtoysgrpc.UnaryClientInterceptor(slog.New(h), testOptions()...)

			invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
				return tt.err
			}
			err := interceptor(context.Background(), "/example.Billing/Render",
				wrapperspb.String("x"), &wrapperspb.StringValue{}, nil, invoker)
			if !errors.Is(err, tt.err) && status.Code(err) != status.Code(tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}

			got := byMarker(h.records(), tt.marker)
			if len(got) != 1 {
				t.Fatalf("got %d %s lines, want 1", len(got), tt.marker)
			}
			if !strings.Contains(got[0].Message, "grpc.client/example.Billing/Render") {
				t.Errorf("message = %q", got[0].Message)
			}
		})
	}
}

// fakeClientStream returns scripted errors from stream calls.
type fakeClientStream struct {
	grpc.ClientStream
	sendErr error
	recvErr error
}

func (f *fakeClientStream) SendMsg(any) error { return f.sendErr }
func (f *fakeClientStream) RecvMsg(any) error { return f.recvErr }
func (f *fakeClientStream) CloseSend() error  { return nil }

func streamDesc() *grpc.StreamDesc {
	return &grpc.StreamDesc{ServerStreams: true}
}

func TestStreamClientEOFSucceedsMeter(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.StreamClientInterceptor(slog.New(h), testOptions()...)

	streamer := func(context.Context, *grpc.StreamDesc, *grpc.ClientConn, string, ...grpc.CallOption) (grpc.ClientStream, error) {
		return &fakeClientStream{recvErr: io.EOF}, nil
	}
	cs, err := interceptor(context.Background(), streamDesc(), nil, "/example.Billing/Watch", streamer)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	if got := len(byMarker(h.records(), slogtoys.MeterMsgOK)); got != 0 {
		t.Fatalf("meter terminated before the stream ended")
	}
	var msg wrapperspb.StringValue
	if err := cs.RecvMsg(&msg); err != io.EOF {
		t.Fatalf("RecvMsg = %v, want io.EOF", err)
	}
	if got := len(byMarker(h.records(), slogtoys.MeterMsgOK)); got != 1 {
		t.Errorf("got %d OK lines after EOF, want 1", got)
	}
}

func TestStreamClientRecvErrorRejectsCallerCode(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.StreamClientInterceptor(slog.New(h), testOptions()...)

	streamer := func(context.Context, *grpc.StreamDesc, *grpc.ClientConn, string, ...grpc.CallOption) (grpc.ClientStream, error) {
		return &fakeClientStream{recvErr: status.Error(codes.PermissionDenied, "no access")}, nil
	}
	cs, err := interceptor(context.Background(), streamDesc(), nil, "/example.Billing/Watch", streamer)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	var msg wrapperspb.StringValue
	cs.RecvMsg(&msg)

	if got := len(byMarker(h.records(), slogtoys.MeterMsgReject)); got != 1 {
		t.Errorf("got %d REJECT lines, want 1", got)
	}
}

func TestStreamClientStreamerErrorFailsImmediately(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.StreamClientInterceptor(slog.New(h), testOptions()...)

	boom := status.Error(codes.Unavailable, "no connection")
	streamer := func(context.Context, *grpc.StreamDesc, *grpc.ClientConn, string, ...grpc.CallOption) (grpc.ClientStream, error) {
		return nil, boom
	}
	if _, err := interceptor(context.Background(), streamDesc(), nil, "/example.Billing/Watch", streamer); err == nil {
		t.Fatal("streamer error swallowed")
	}
	if got := len(byMarker(h.records(), slogtoys.MeterMsgFail)); got != 1 {
		t.Errorf("got %d FAIL lines, want 1", got)
	}
}

func TestServerOptionsCompose(t *testing.T) {
	if got := len(slogtoysgrpc.ServerOptions(slog.Default())); got != 3 {
		t.Errorf("ServerOptions returned %d options, want stats handler plus two interceptors", got)
	}
	if got := len(slogtoysgrpc.ServerOptions(slog.Default(), slogtoysgrpc.WithOTel(false))); got != 2 {
		t.Errorf("ServerOptions without otel returned %d options, want 2", got)
	}
}

func TestDialOptionsCompose(t *testing.T) {
	if got := len(slogtoysgrpc.DialOptions(slog.Default())); got != 3 {
		t.Errorf("DialOptions returned %d options, want stats handler plus two interceptors", got)
	}
	if got := len(slogtoysgrpc.DialOptions(slog.Default(), slogtoysgrpc.WithOTel(false))); got != 2 {
		t.Errorf("DialOptions without otel returned %d options, want 2", got)
	}
}

func TestUnaryServerInstallsContextLogger(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(slog.New(h), testOptions()...)

	handler := func(ctx context.Context, req any) (any, error) {
		slogtoys.Logger(ctx).Info("inside handler")
		return wrapperspb.String("ok"), nil
	}
	if _, err := interceptor(context.Background(), wrapperspb.String("in"), unaryInfo, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	found := false
	for _, rec := range h.records() {
		if rec.Message == "inside handler" {
			found = true
			break
		}
	}
	if !found {
		t.Error("handler line missing: RPC context does not carry the interceptor logger")
	}
}

func TestUnaryServerFallsBackToContextLogger(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryServerInterceptor(nil, testOptions()...)

	ctx := slogtoys.ContextWithLogger(context.Background(), slog.New(h))
	handler := func(ctx context.Context, req any) (any, error) {
		return wrapperspb.String("ok"), nil
	}
	if _, err := interceptor(ctx, wrapperspb.String("in"), unaryInfo, handler); err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	if got := len(byMarker(h.records(), slogtoys.MeterMsgOK)); got != 1 {
		t.Errorf("got %d OK lines through the context logger, want 1", got)
	}
}

func TestUnaryClientFallsBackToContextLogger(t *testing.T) {
	h := &captureHandler{}
	interceptor := slogtoysgrpc.UnaryClientInterceptor(nil, testOptions()...)

	ctx := slogtoys.ContextWithLogger(context.Background(), slog.New(h))
	invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
		return nil
	}
	err := interceptor(ctx, "/example.Billing/Render",
		wrapperspb.String("x"), &wrapperspb.StringValue{}, nil, invoker)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	if got := len(byMarker(h.records(), slogtoys.MeterMsgOK)); got != 1 {
		t.Errorf("got %d OK lines through the context logger, want 1", got)
	}
}
