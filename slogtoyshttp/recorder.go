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
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
)

// responseRecorder captures the status code and body size while forwarding
// the optional ResponseWriter interfaces to the wrapped writer.
type responseRecorder struct {
	http.ResponseWriter
	status       int
	wroteHeader  bool
	bytesWritten int64
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code written.
func (rr *responseRecorder) WriteHeader(status int) {
	if !rr.wroteHeader {
		rr.status = status
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(status)
}

// Write counts body bytes and forwards to the underlying writer.
func (rr *responseRecorder) Write(p []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	n, err := rr.ResponseWriter.Write(p)
	rr.bytesWritten += int64(n)
	if err != nil {
		return n, fmt.Errorf("write response body: %w", err)
	}
	return n, nil
}

// ReadFrom streams from src through the underlying writer when it
// supports io.ReaderFrom, keeping sendfile-style fast paths intact.
func (rr *responseRecorder) ReadFrom(src io.Reader) (int64, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	var n int64
	var err error
	if rf, ok := rr.ResponseWriter.(io.ReaderFrom); ok {
		n, err = rf.ReadFrom(src)
	} else {
		n, err = io.Copy(rr.ResponseWriter, src)
	}
	rr.bytesWritten += n
	if err != nil {
		return n, fmt.Errorf("copy response body: %w", err)
	}
	return n, nil
}

// Status returns the status code sent to the client, defaulting to 200.
func (rr *responseRecorder) Status() int { return rr.status }

// BytesWritten reports the cumulative body bytes sent to the client.
func (rr *responseRecorder) BytesWritten() int64 { return rr.bytesWritten }

// Unwrap exposes the underlying ResponseWriter for http.ResponseController.
func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}

// Flush forwards to the underlying writer when it supports flushing.
func (rr *responseRecorder) Flush() {
	if flusher, ok := rr.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack delegates to the wrapped Hijacker, or reports http.ErrNotSupported.
func (rr *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rr.ResponseWriter.(http.Hijacker); ok {
		conn, rw, err := hijacker.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, rw, nil
	}
	return nil, nil, http.ErrNotSupported
}

// Push forwards HTTP/2 pushes when the underlying writer supports them.
func (rr *responseRecorder) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := rr.ResponseWriter.(http.Pusher); ok {
		if err := pusher.Push(target, opts); err != nil {
			return fmt.Errorf("http/2 push: %w", err)
		}
		return nil
	}
	return http.ErrNotSupported
}

// CloseNotify exposes the wrapped CloseNotifier channel when available.
func (rr *responseRecorder) CloseNotify() <-chan bool {
	if cn, ok := rr.ResponseWriter.(interface{ CloseNotify() <-chan bool }); ok {
		return cn.CloseNotify()
	}
	return nil
}
