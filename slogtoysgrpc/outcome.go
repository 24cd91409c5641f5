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
	"net"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/pjscruggs/slogtoys/meter"
)

// finishRPC terminates the meter from the RPC result. A meter the handler
// already terminated keeps its original outcome.
func finishRPC(m *meter.Meter, err error) {
	if m.Outcome() != "" {
		return
	}
	if err == nil {
		m.OK()
		return
	}
	if code := status.Code(err); callerAttributable(code) {
		m.Reject(code.String())
		return
	}
	m.Fail(err)
}

// callerAttributable reports whether a status code blames the caller
// rather than the service. Those RPCs reject their meter instead of
// failing it.
func callerAttributable(code codes.Code) bool {
	switch code {
	case codes.InvalidArgument,
		codes.NotFound,
		codes.AlreadyExists,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.FailedPrecondition,
		codes.OutOfRange,
		codes.Canceled,
		codes.Aborted:
		return true
	default:
		return false
	}
}

// operationName turns "/pkg.Service/Method" into "pkg.Service/Method".
func operationName(fullMethod string) string {
	return strings.TrimPrefix(fullMethod, "/")
}

// peerHost extracts the remote host from the RPC peer, without the port.
func peerHost(ctx context.Context) string {
	pr, ok := peer.FromContext(ctx)
	if !ok || pr == nil || pr.Addr == nil {
		return ""
	}
	addr := pr.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// messageSize returns the encoded size of a gRPC message when possible.
func messageSize(msg any) int64 {
	switch m := msg.(type) {
	case proto.Message:
		return int64(proto.Size(m))
	case interface{ Size() int }:
		return int64(m.Size())
	default:
		return 0
	}
}
