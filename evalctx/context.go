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

// Package evalctx implements the three-layer Evaluation Context (spec.md
// §4.5, component C5): computed/inputs/constants maps, circuit-breaker
// state, loop-depth accounting, and the audit event trail. One Context is
// owned exclusively by a single evaluation and is never shared across
// goroutines (spec.md §5 "Shared resources and mutation rules").
package evalctx

import (
	"github.com/rulekit/ruleengine/value"
)

// MaxForEachIterations is the hard cap on ForEach loops (100,000);
// While/DoWhile use the tighter MaxWhileIterations cap instead (spec.md
// §4.6).
const MaxForEachIterations = 100000

// MaxWhileIterations caps While and DoWhile loops.
const MaxWhileIterations = 1000

// AuditEvent is one entry recorded by the audit/audit_log/log/
// send_notification builtins.
type AuditEvent struct {
	Kind    string // "audit" (audit, audit_log) | "log" | "notification"
	Message string
	Detail  value.Value
}

// Context is the per-evaluation Evaluation Context.
type Context struct {
	computed     map[string]value.Value
	computedKeys []string // insertion order, for deterministic iteration
	inputs       map[string]value.Value
	constants    map[string]value.Value

	CircuitTriggered bool
	CircuitMessage   string

	loopDepth   int
	AuditEvents []AuditEvent
}

// New builds a Context from immutable inputs and constants maps. Both maps
// are retained by reference and must not be mutated by the caller after
// construction.
func New(inputs, constants map[string]value.Value) *Context {
	return &Context{
		computed:  map[string]value.Value{},
		inputs:    inputs,
		constants: constants,
	}
}

// Lookup resolves name strictly computed → inputs → constants. An
// undefined name yields Null (not an error), per spec.md §4.5.
func (c *Context) Lookup(name string) value.Value {
	if v, ok := c.computed[name]; ok {
		return v
	}
	if v, ok := c.inputs[name]; ok {
		return v
	}
	if v, ok := c.constants[name]; ok {
		return v
	}
	return value.Null{}
}

// Set writes to the computed layer only (spec.md §4.5: "Writes only target
// computed").
func (c *Context) Set(name string, v value.Value) {
	if _, exists := c.computed[name]; !exists {
		c.computedKeys = append(c.computedKeys, name)
	}
	c.computed[name] = v
}

// Unset removes a computed binding, used to tear down ForEach's scoped
// item/index shadow once the loop body for an iteration completes.
func (c *Context) Unset(name string) {
	delete(c.computed, name)
	for i, k := range c.computedKeys {
		if k == name {
			c.computedKeys = append(c.computedKeys[:i], c.computedKeys[i+1:]...)
			break
		}
	}
}

// Computed returns the computed layer's entries as a map, whose iteration
// order is not defined; ComputedKeys gives the insertion order.
func (c *Context) Computed() map[string]value.Value {
	return c.computed
}

// ComputedKeys returns the insertion order of computed writes, for tests
// and debug output that need determinism.
func (c *Context) ComputedKeys() []string {
	return c.computedKeys
}

// EnterLoop increments the active loop nesting depth. Callers must pair
// every EnterLoop with an ExitLoop, including on early return, so a ForEach
// running inside a While's body sees depth 2, not a count that leaks across
// sibling loops. Per-loop iteration caps are tracked locally by the caller,
// not here: the cap in spec.md §4.6 applies per loop construct, not
// cumulatively across an evaluation.
func (c *Context) EnterLoop() {
	c.loopDepth++
}

// ExitLoop decrements the active loop nesting depth.
func (c *Context) ExitLoop() {
	c.loopDepth--
}

// LoopDepth returns how many loop constructs are currently nested and
// active in this evaluation (spec.md §4.5 "loop_depth").
func (c *Context) LoopDepth() int {
	return c.loopDepth
}

// RecordAudit appends an audit event collected by the audit/audit_log/log
// builtins (spec.md §4.5 "audit_events").
func (c *Context) RecordAudit(kind, message string, detail value.Value) {
	c.AuditEvents = append(c.AuditEvents, AuditEvent{Kind: kind, Message: message, Detail: detail})
}

// TriggerCircuitBreaker halts further action execution in the current
// evaluation (spec.md §4.6 CircuitBreaker semantics).
func (c *Context) TriggerCircuitBreaker(message string) {
	c.CircuitTriggered = true
	c.CircuitMessage = message
}
