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

// Package eval implements the tree-walking evaluator (spec.md §4.6,
// component C6): expression/condition/action semantics executed against an
// evalctx.Context, dispatching builtins through the function package and
// HTTP/clock collaborators through the narrow Runtime surface.
package eval

import (
	"time"

	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/value"
)

// HTTPClient is the collaborator surface RestCall/rest_call need. Any type
// with this method (e.g. collaborator.RetryableHTTP) satisfies it structurally.
type HTTPClient interface {
	Do(method, url string, headers map[string]string, body value.Value, timeout time.Duration) (status int, respBody value.Value, err error)
}

// Evaluator owns a single evaluation's Context and external collaborators.
// It implements function.Runtime so it can be passed directly to
// function.Call. Never shared across goroutines (spec.md §5).
type Evaluator struct {
	Ctx   *evalctx.Context
	HTTP  HTTPClient
	Clock func() time.Time

	now time.Time // first Now reading, reused for the rest of the evaluation
}

// New builds an Evaluator over a fresh Context.
func New(ctx *evalctx.Context, http HTTPClient, clock func() time.Time) *Evaluator {
	return &Evaluator{Ctx: ctx, HTTP: http, Clock: clock}
}

// RecordAudit implements function.Runtime.
func (e *Evaluator) RecordAudit(kind, message string, detail value.Value) {
	e.Ctx.RecordAudit(kind, message, detail)
}

// Now implements function.Runtime. The first reading is kept and returned
// by every later call, so one evaluation sees a single instant.
func (e *Evaluator) Now() time.Time {
	if !e.now.IsZero() {
		return e.now
	}
	if e.Clock != nil {
		e.now = e.Clock()
	} else {
		e.now = time.Now()
	}
	return e.now
}

// HTTPRequest implements function.Runtime.
func (e *Evaluator) HTTPRequest(method, url string, headers map[string]string, body value.Value, timeout time.Duration) (int, value.Value, error) {
	if e.HTTP == nil {
		return 0, value.Null{}, ErrEval.New("no HTTP collaborator configured")
	}
	return e.HTTP.Do(method, url, headers, body, timeout)
}
