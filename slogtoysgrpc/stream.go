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
	"io"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"

	"github.com/pjscruggs/slogtoys/meter"
)

// streamCounters accumulates message and byte totals for one stream.
// Send and receive may run on different goroutines.
type streamCounters struct {
	reqMsgs   atomic.Int64
	respMsgs  atomic.Int64
	reqBytes  atomic.Int64
	respBytes atomic.Int64
}

func (c *streamCounters) countRequest(msg any) {
	c.reqMsgs.Add(1)
	c.reqBytes.Add(messageSize(msg))
}

func (c *streamCounters) countResponse(msg any) {
	c.respMsgs.Add(1)
	c.respBytes.Add(messageSize(msg))
}

// applyCtx copies the totals onto the meter as context values.
func (c *streamCounters) applyCtx(m *meter.Meter) {
	if n := c.reqMsgs.Load(); n > 0 {
		m.Ctx("req_msgs", n).Ctx("req_bytes", c.reqBytes.Load())
	}
	if n := c.respMsgs.Load(); n > 0 {
		m.Ctx("resp_msgs", n).Ctx("resp_bytes", c.respBytes.Load())
	}
}

// serverStream carries the meter-bearing context and counts traffic.
type serverStream struct {
	grpc.ServerStream
	ctx context.Context
	m   *meter.Meter
	streamCounters
}

// Context returns the handler context, which carries the meter.
func (s *serverStream) Context() context.Context { return s.ctx }

func (s *serverStream) RecvMsg(msg any) error {
	err := s.ServerStream.RecvMsg(msg)
	if err == nil {
		s.countRequest(msg)
		s.m.Inc().Progress()
	}
	return err
}

func (s *serverStream) SendMsg(msg any) error {
	err := s.ServerStream.SendMsg(msg)
	if err == nil {
		s.countResponse(msg)
		s.m.Inc().Progress()
	}
	return err
}

func (s *serverStream) sizeCtx() { s.applyCtx(s.m) }

// clientStream terminates the meter when the stream ends: io.EOF on
// receive succeeds it, other errors map through the status table.
type clientStream struct {
	grpc.ClientStream
	m    *meter.Meter
	once sync.Once
	streamCounters
}

func (c *clientStream) SendMsg(msg any) error {
	err := c.ClientStream.SendMsg(msg)
	if err == nil {
		c.countRequest(msg)
		c.m.Inc().Progress()
		return nil
	}
	c.finish(err)
	return err
}

func (c *clientStream) RecvMsg(msg any) error {
	err := c.ClientStream.RecvMsg(msg)
	switch {
	case err == nil:
		c.countResponse(msg)
		c.m.Inc().Progress()
	case err == io.EOF:
		c.finish(nil)
	default:
		c.finish(err)
	}
	return err
}

func (c *clientStream) CloseSend() error {
	err := c.ClientStream.CloseSend()
	if err != nil {
		c.finish(err)
	}
	return err
}

func (c *clientStream) finish(err error) {
	c.once.Do(func() {
		if c.m.Outcome() == "" {
			c.applyCtx(c.m)
		}
		finishRPC(c.m, err)
	})
}
