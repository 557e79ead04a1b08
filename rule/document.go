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

// Package rule defines the structural rule document model that the YAML
// parser produces (spec.md §3 "Rule document", component C3): metadata,
// declared inputs, constants-with-defaults, one of three logic shapes, an
// output schema, and optional circuit-breaker configuration.
package rule

import (
	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/value"
)

// OutputType is a declared output-schema type tag.
type OutputType string

const (
	OutputBoolean OutputType = "boolean"
	OutputNumber  OutputType = "number"
	OutputText    OutputType = "text"
	OutputDate    OutputType = "date"
	OutputObject  OutputType = "object"
	OutputList    OutputType = "list"
)

// ConstantDefault pairs a constant name with its inline default value, used
// when the persistence collaborator has no stored value for it.
type ConstantDefault struct {
	Name    string
	Default value.Value
}

// CircuitConfig is the optional per-rule circuit-breaker configuration.
type CircuitConfig struct {
	Enabled          bool
	FailureThreshold int
	TimeoutDuration  int64 // milliseconds
	RecoveryTimeout  int64 // milliseconds
}

// LogicShape tags which of the three logic shapes a Logic value holds.
type LogicShape int

const (
	LogicNone LogicShape = iota
	LogicSimple
	LogicStructured
	LogicSequence
)

// SimpleLogic is `when: [...]; then: [...]; else: [...]?`.
type SimpleLogic struct {
	When []ast.Condition
	Then []ast.Action
	Else []ast.Action
}

// StructuredLogic is a nested if/then/else block (`conditions:`).
type StructuredLogic struct {
	If   ast.Condition
	Then []ast.Action
	Else []ast.Action
}

// SequenceLogic is an ordered list of sub-rules (`rules:`), each itself
// Simple or Structured, sharing and accumulating the parent context.
type SequenceLogic struct {
	Rules []SubRule
}

// SubRule is one element of a SequenceLogic. Guard is nil when the sub-rule
// is unconditional.
type SubRule struct {
	Name   string
	Guard  ast.Condition // nil if unconditional
	Simple *SimpleLogic
	Struct *StructuredLogic
}

// Logic is exactly one of Simple, Structured, or Sequence, tagged by Shape.
type Logic struct {
	Shape      LogicShape
	Simple     *SimpleLogic
	Structured *StructuredLogic
	Sequence   *SequenceLogic
}

// Document is the top-level rule document (spec.md §3).
type Document struct {
	Metadata      map[string]interface{}
	Inputs        []string
	Constants     []ConstantDefault
	Logic         Logic
	OutputSchema  map[string]OutputType
	CircuitConfig *CircuitConfig

	// RawText is the original rule text, retained for cache-key digesting
	// and for the `evaluate(rule_text, ...)` orchestrator path.
	RawText string
}

// Name returns the required metadata "name" field, or "" if absent.
func (d *Document) Name() string {
	if v, ok := d.Metadata["name"].(string); ok {
		return v
	}
	return ""
}

// Description returns the required metadata "description" field.
func (d *Document) Description() string {
	if v, ok := d.Metadata["description"].(string); ok {
		return v
	}
	return ""
}
