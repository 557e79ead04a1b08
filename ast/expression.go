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

	"github.com/rulekit/ruleengine/value"
)

// Expression is the value-producing AST node family (spec.md §3).
// Implementations: Literal, Variable, Binary, Unary, Arithmetic,
// FunctionCall, JsonPath, RestCall, List.
type Expression interface {
	Node
	exprNode()
}

// Node is the common interface of every AST node: a source location and a
// debug string, attached uniformly by composition rather than inheritance
// (spec.md §9 Design Notes).
type Node interface {
	Loc() SourceLocation
	Debug() string
}

// base is embedded by every concrete node to supply Loc()/Debug() by
// composition; no virtual inheritance is used anywhere in this hierarchy.
type base struct {
	Location SourceLocation
}

func (b base) Loc() SourceLocation { return b.Location }

// Literal is a constant value baked into the rule text.
type Literal struct {
	base
	Value value.Value
}

func NewLiteral(loc SourceLocation, v value.Value) *Literal { return &Literal{base{loc}, v} }
func (*Literal) exprNode()                                  {}
func (l *Literal) Debug() string                             { return fmt.Sprintf("Literal(%s)", l.Value.String()) }

// Variable is a bare identifier reference resolved against the three-layer
// namespace at evaluation time (spec.md §3, §4.6).
type Variable struct {
	base
	Name string
}

func NewVariable(loc SourceLocation, name string) *Variable { return &Variable{base{loc}, name} }
func (*Variable) exprNode()                                 {}
func (v *Variable) Debug() string                            { return fmt.Sprintf("Variable(%s)", v.Name) }

// BinaryOp enumerates binary expression operators (arithmetic, comparison,
// logical-as-expression via ExpressionCondition elsewhere).
type BinaryOp string

const (
	OpAdd    BinaryOp = "+"
	OpSub    BinaryOp = "-"
	OpMul    BinaryOp = "*"
	OpDiv    BinaryOp = "/"
	OpMod    BinaryOp = "%"
	OpPow    BinaryOp = "**"
	OpEq     BinaryOp = "=="
	OpNeq    BinaryOp = "!="
	OpLt     BinaryOp = "<"
	OpGt     BinaryOp = ">"
	OpLte    BinaryOp = "<="
	OpGte    BinaryOp = ">="
	OpBetween BinaryOp = "between"
	OpAnd    BinaryOp = "and"
	OpOr     BinaryOp = "or"
)

// Binary is a two-operand expression: a comparison, `between` (with
// BetweenHigh), logical and/or, or `**`. NewBinary does not check op; the
// parser builds Binary nodes only with the BinaryOp constants above, and
// chains of + - * / % become Arithmetic nodes instead.
type Binary struct {
	base
	Op          BinaryOp
	Lhs, Rhs    Expression
	BetweenHigh Expression // only set when Op == OpBetween
}

func NewBinary(loc SourceLocation, op BinaryOp, lhs, rhs Expression) *Binary {
	return &Binary{base{loc}, op, lhs, rhs, nil}
}
func (*Binary) exprNode() {}
func (b *Binary) Debug() string {
	return fmt.Sprintf("Binary(%s, %s, %s)", b.Op, b.Lhs.Debug(), b.Rhs.Debug())
}

// UnaryOp enumerates prefix unary operators.
type UnaryOp string

const (
	UnaryNeg UnaryOp = "-"
	UnaryPos UnaryOp = "+"
	UnaryNot UnaryOp = "not"
)

// Unary is a single-operand prefix expression.
type Unary struct {
	base
	Op      UnaryOp
	Operand Expression
}

func NewUnary(loc SourceLocation, op UnaryOp, operand Expression) *Unary {
	return &Unary{base{loc}, op, operand}
}
func (*Unary) exprNode() {}
func (u *Unary) Debug() string {
	return fmt.Sprintf("Unary(%s, %s)", u.Op, u.Operand.Debug())
}

// Arithmetic is a left-associative chain of +,-,*,/,% / ** operands, used
// when the parser folds a run of same-or-related-precedence arithmetic
// operators into one node instead of a deep Binary chain (spec.md §3 AST
// node hierarchy explicitly separates Arithmetic from Binary for this
// reason — the evaluator still computes it left-to-right honoring
// precedence already baked in by the parser).
type Arithmetic struct {
	base
	Operands  []Expression
	Operators []BinaryOp // len(Operators) == len(Operands)-1
}

func NewArithmetic(loc SourceLocation, operands []Expression, operators []BinaryOp) *Arithmetic {
	if len(operands) == 0 || len(operators) != len(operands)-1 {
		panic("ast: Arithmetic operand/operator arity mismatch")
	}
	return &Arithmetic{base{loc}, operands, operators}
}
func (*Arithmetic) exprNode() {}
func (a *Arithmetic) Debug() string {
	parts := make([]string, len(a.Operands))
	for i, o := range a.Operands {
		parts[i] = o.Debug()
	}
	return fmt.Sprintf("Arithmetic(%s)", strings.Join(parts, " "))
}

// FunctionCall invokes a built-in function by name (spec.md §6 registry) or,
// inside a Run action, names a user-callable function.
type FunctionCall struct {
	base
	Name string
	Args []Expression
}

func NewFunctionCall(loc SourceLocation, name string, args []Expression) *FunctionCall {
	return &FunctionCall{base{loc}, name, args}
}
func (*FunctionCall) exprNode() {}
func (f *FunctionCall) Debug() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.Debug()
	}
	return fmt.Sprintf("FunctionCall(%s, [%s])", f.Name, strings.Join(parts, ", "))
}

// JsonPath navigates source with a dotted path ("a.b[0].c"); missing paths
// return null, json_exists returns boolean, json_size returns length.
type JsonPath struct {
	base
	Source Expression
	Path   string
}

func NewJsonPath(loc SourceLocation, source Expression, path string) *JsonPath {
	return &JsonPath{base{loc}, source, path}
}
func (*JsonPath) exprNode() {}
func (j *JsonPath) Debug() string {
	return fmt.Sprintf("JsonPath(%s, %s)", j.Source.Debug(), j.Path)
}

// RestCall performs an HTTP request via the external HTTP collaborator
// (spec.md §6). On non-2xx or timeout it evaluates to a result map; it
// never raises out of the evaluator.
type RestCall struct {
	base
	Method       string
	URL          Expression
	Body         Expression // nil if absent
	Headers      Expression // nil if absent; must evaluate to a Map
	Timeout      Expression // nil if absent; defaults to 5s
}

func NewRestCall(loc SourceLocation, method string, url, body, headers, timeout Expression) *RestCall {
	return &RestCall{base{loc}, method, url, body, headers, timeout}
}
func (*RestCall) exprNode() {}
func (r *RestCall) Debug() string {
	return fmt.Sprintf("RestCall(%s, %s)", r.Method, r.URL.Debug())
}

// List is a literal list expression (`[a, b, c]`).
type List struct {
	base
	Elements []Expression
}

func NewList(loc SourceLocation, elements []Expression) *List { return &List{base{loc}, elements} }
func (*List) exprNode()                                       {}
func (l *List) Debug() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Debug()
	}
	return fmt.Sprintf("List([%s])", strings.Join(parts, ", "))
}
