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

package ast

import (
	"fmt"
	"strings"
)

// Condition is the boolean-valued AST node family (spec.md §3). Every
// Condition is also representable as an Expression via ExpressionCondition,
// so a bare boolean-producing expression can appear wherever a condition is
// expected.
type Condition interface {
	Node
	condNode()
}

// CompareOp enumerates comparison operators usable inside a structured
// `compare: {left, operator, right}` condition block, plus named aliases
// (spec.md §6).
type CompareOp string

// Comparison is a left/right comparison producing a boolean.
type Comparison struct {
	base
	Op       CompareOp
	Lhs, Rhs Expression
}

func NewComparison(loc SourceLocation, op CompareOp, lhs, rhs Expression) *Comparison {
	return &Comparison{base{loc}, op, lhs, rhs}
}
func (*Comparison) condNode() {}
func (c *Comparison) Debug() string {
	return fmt.Sprintf("Comparison(%s, %s, %s)", c.Op, c.Lhs.Debug(), c.Rhs.Debug())
}

// LogicalOp enumerates the condition-level logical combinators.
type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
	LogicalNot LogicalOp = "not"
)

// Logical combines one or more sub-conditions (and/or are variadic, not is
// unary — represented as a single-element Operands slice).
type Logical struct {
	base
	Op       LogicalOp
	Operands []Condition
}

func NewLogical(loc SourceLocation, op LogicalOp, operands []Condition) *Logical {
	return &Logical{base{loc}, op, operands}
}
func (*Logical) condNode() {}
func (l *Logical) Debug() string {
	parts := make([]string, len(l.Operands))
	for i, o := range l.Operands {
		parts[i] = o.Debug()
	}
	return fmt.Sprintf("Logical(%s, [%s])", l.Op, strings.Join(parts, ", "))
}

// ExpressionCondition wraps a boolean-producing Expression so it can be
// used wherever a Condition is expected.
type ExpressionCondition struct {
	base
	Expr Expression
}

func NewExpressionCondition(loc SourceLocation, expr Expression) *ExpressionCondition {
	return &ExpressionCondition{base{loc}, expr}
}
func (*ExpressionCondition) condNode() {}
func (e *ExpressionCondition) Debug() string {
	return fmt.Sprintf("ExpressionCondition(%s)", e.Expr.Debug())
}
