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

// Package slogtoysgrpc meters gRPC calls with the slogtoys meter.
//
// Each RPC gets one meter named after its service and method (category
// "grpc.server" or "grpc.client"). The final gRPC status decides the
// outcome: caller-attributable codes such as InvalidArgument or NotFound
// reject the meter, server-side codes such as Internal or Unavailable
// fail it, and OK succeeds. Message counts and encoded payload sizes
// travel as meter context values; on streams every message also advances
// the meter's iteration count, so long-lived streams emit PROGRESS lines.
//
// Handlers reach their RPC's meter through [meter.FromContext], and a
// termination they record first wins over the interceptor's verdict. The
// server interceptors install the per-RPC logger into the handler context
// as well, so [slogtoys.Logger] returns it there; a nil logger argument
// makes every interceptor defer to the calling context's logger.
//
// Interceptors can be registered individually, or in one call together
// with otelgrpc stats handlers:
//
//	server := grpc.NewServer(
//	    slogtoysgrpc.ServerOptions(logger)...,
//	)
//
//	conn, err := grpc.NewClient(
//	    target,
//	    append(
//	        []grpc.DialOption{grpc.WithTransportCredentials(creds)},
//	        slogtoysgrpc.DialOptions(logger)...,
//	    )...,
//	)
//
// [ServerOptions] and [DialOptions] enable otelgrpc instrumentation by
// default; the bare interceptors leave it off unless [WithOTel] asks for
// it.
//
// A client stream's meter terminates when the stream does: a receive
// returning io.EOF succeeds it, any other send or receive error maps
// through the status table. Streams abandoned without draining never
// terminate their meter.
package slogtoysgrpc
