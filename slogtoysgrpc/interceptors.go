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

package slogtoysgrpc

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/pjscruggs/slogtoys"
	"github.com/pjscruggs/slogtoys/meter"
)

// UnaryServerInterceptor meters each unary RPC against logger. A nil
// logger falls back to the logger the RPC context carries, then to
// slog.Default; the winner is installed into the handler context (see
// [slogtoys.ContextWithLogger]). The meter is reachable from the handler
// via [meter.FromContext].
func UnaryServerInterceptor(logger *slog.Logger, opts ...Option) grpc.UnaryServerInterceptor {
	cfg := applyOptions(logger, DefaultServerCategory, false, opts)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rpcLogger := cfg.rpcLogger(ctx)
		m := cfg.newMeter(ctx, rpcLogger).
			Op(operationName(info.FullMethod)).
			Ctx("kind", "unary")
		if peer := peerHost(ctx); peer != "" {
			m.Ctx("peer", peer)
		}
		m.Start()
		ctx = slogtoys.ContextWithLogger(ctx, rpcLogger)
		ctx = meter.IntoContext(ctx, m)

		defer repanicAsFailure(m)
		resp, err := handler(ctx, req)

		if m.Outcome() == "" {
			if n := messageSize(req); n > 0 {
				m.Ctx("req_bytes", n)
			}
			if n := messageSize(resp); err == nil && n > 0 {
				m.Ctx("resp_bytes", n)
			}
		}
		finishRPC(m, err)
		return resp, err
	}
}

// StreamServerInterceptor meters each streaming RPC against logger. Every
// message sent or received advances the meter's iteration count.
func StreamServerInterceptor(logger *slog.Logger, opts ...Option) grpc.StreamServerInterceptor {
	cfg := applyOptions(logger, DefaultServerCategory, false, opts)

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		rpcLogger := cfg.rpcLogger(ctx)
		m := cfg.newMeter(ctx, rpcLogger).
			Op(operationName(info.FullMethod)).
			Ctx("kind", streamKind(info))
		if peer := peerHost(ctx); peer != "" {
			m.Ctx("peer", peer)
		}
		m.Start()

		ctx = slogtoys.ContextWithLogger(ctx, rpcLogger)
		wrapped := &serverStream{
			ServerStream: ss,
			ctx:          meter.IntoContext(ctx, m),
			m:            m,
		}

		defer repanicAsFailure(m)
		err := handler(srv, wrapped)

		if m.Outcome() == "" {
			wrapped.sizeCtx()
		}
		finishRPC(m, err)
		return err
	}
}

// UnaryClientInterceptor meters each outgoing unary RPC against logger,
// falling back to the calling context's logger when nil.
func UnaryClientInterceptor(logger *slog.Logger, opts ...Option) grpc.UnaryClientInterceptor {
	cfg := applyOptions(logger, DefaultClientCategory, false, opts)

	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		m := cfg.newMeter(ctx, cfg.rpcLogger(ctx)).
			Op(operationName(method)).
			Ctx("kind", "unary")
		m.Start()
		ctx = meter.IntoContext(ctx, m)

		err := invoker(ctx, method, req, reply, cc, callOpts...)

		if m.Outcome() == "" {
			if n := messageSize(req); n > 0 {
				m.Ctx("req_bytes", n)
			}
			if n := messageSize(reply); err == nil && n > 0 {
				m.Ctx("resp_bytes", n)
			}
		}
		finishRPC(m, err)
		return err
	}
}

// StreamClientInterceptor meters each outgoing streaming RPC against
// logger. The meter terminates when the stream ends, not when it opens;
// see the package documentation.
func StreamClientInterceptor(logger *slog.Logger, opts ...Option) grpc.StreamClientInterceptor {
	cfg := applyOptions(logger, DefaultClientCategory, false, opts)

	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, callOpts ...grpc.CallOption) (grpc.ClientStream, error) {
		m := cfg.newMeter(ctx, cfg.rpcLogger(ctx)).
			Op(operationName(method)).
			Ctx("kind", clientStreamKind(desc))
		m.Start()
		ctx = meter.IntoContext(ctx, m)

		cs, err := streamer(ctx, desc, cc, method, callOpts...)
		if err != nil {
			finishRPC(m, err)
			return nil, err
		}
		return &clientStream{ClientStream: cs, m: m}, nil
	}
}

// ServerOptions bundles the server interceptors with an otelgrpc stats
// handler (unless [WithOTel] disabled it) for one-call registration.
func ServerOptions(logger *slog.Logger, opts ...Option) []grpc.ServerOption {
	cfg := applyOptions(logger, DefaultServerCategory, true, opts)

	var serverOpts []grpc.ServerOption
	if cfg.enableOTel {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	serverOpts = append(serverOpts,
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(logger, opts...)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(logger, opts...)),
	)
	return serverOpts
}

// DialOptions bundles the client interceptors with an otelgrpc stats
// handler (unless [WithOTel] disabled it) for one-call registration.
func DialOptions(logger *slog.Logger, opts ...Option) []grpc.DialOption {
	cfg := applyOptions(logger, DefaultClientCategory, true, opts)

	var dialOpts []grpc.DialOption
	if cfg.enableOTel {
		dialOpts = append(dialOpts, grpc.WithStatsHandler(otelgrpc.NewClientHandler()))
	}
	dialOpts = append(dialOpts,
		grpc.WithChainUnaryInterceptor(UnaryClientInterceptor(logger, opts...)),
		grpc.WithChainStreamInterceptor(StreamClientInterceptor(logger, opts...)),
	)
	return dialOpts
}

// repanicAsFailure records a handler panic as the meter's failure and
// lets the panic continue unwinding.
func repanicAsFailure(m *meter.Meter) {
	if rv := recover(); rv != nil {
		if m.Outcome() == "" {
			m.Fail(fmt.Errorf("handler panic: %v", rv))
		}
		panic(rv)
	}
}

// streamKind names a server stream's shape.
func streamKind(info *grpc.StreamServerInfo) string {
	switch {
	case info.IsClientStream && info.IsServerStream:
		return "bidi_stream"
	case info.IsClientStream:
		return "client_stream"
	case info.IsServerStream:
		return "server_stream"
	default:
		return "unary"
	}
}

// clientStreamKind names a client stream's shape from its descriptor.
func clientStreamKind(desc *grpc.StreamDesc) string {
	switch {
	case desc.ClientStreams && desc.ServerStreams:
		return "bidi_stream"
	case desc.ClientStreams:
		return "client_stream"
	case desc.ServerStreams:
		return "server_stream"
	default:
		return "unary"
	}
}
