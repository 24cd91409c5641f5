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

package slogtoys

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	sessionOnce sync.Once
	sessionID   string
)

// newSessionID generates the identifier. A variable so tests can pin it.
var newSessionID = func() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SessionID returns the process-wide session identifier: a 32-character
// lowercase hexadecimal string generated once and constant for the life of
// the process. Every compact data line carries it under the "_" key so all
// output from one run can be correlated after the fact.
func SessionID() string {
	sessionOnce.Do(func() {
		sessionID = newSessionID()
	})
	return sessionID
}
