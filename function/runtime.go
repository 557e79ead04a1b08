// Copyright 2024 The RuleKit Authors.
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

package function

import (
	"time"

	"github.com/rulekit/ruleengine/value"
)

// Runtime is the narrow surface the function registry needs from the
// evaluator to implement side-effecting builtins (audit/log, REST, clock),
// without function importing eval and creating a cycle.
type Runtime interface {
	// RecordAudit appends an audit_events entry (spec.md §4.5).
	RecordAudit(kind, message string, detail value.Value)
	// HTTPRequest delegates to the external HTTP collaborator (spec.md §6);
	// it must never return an error that the caller should panic on — REST
	// failures are always surfaced as values by the caller of Call.
	HTTPRequest(method, url string, headers map[string]string, body value.Value, timeout time.Duration) (status int, respBody value.Value, err error)
	// Now returns the evaluation's notion of the current instant, fixed for
	// the duration of one evaluation so `now`/`today` are referentially
	// consistent within a single rule run.
	Now() time.Time
}
