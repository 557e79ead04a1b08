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

import "fmt"

// Action is the side-effecting AST node family (spec.md §3). Implementations:
// Set, Assignment, Calculate, Run, ArithmeticAction, FunctionCallAction,
// ListAction, Conditional, ForEach, While, DoWhile, CircuitBreaker.
type Action interface {
	Node
	actionNode()
}

// Set assigns the value of Expr to Var (a Computed identifier).
type Set struct {
	base
	Var  string
	Expr Expression
}

func NewSet(loc SourceLocation, v string, expr Expression) *Set { return &Set{base{loc}, v, expr} }
func (*Set) actionNode()                                        {}
func (s *Set) Debug() string                                    { return fmt.Sprintf("Set(%s, %s)", s.Var, s.Expr.Debug()) }

// AssignOp enumerates compound assignment operators.
type AssignOp string

const (
	AssignSet AssignOp = "="
	AssignAdd AssignOp = "+="
	AssignSub AssignOp = "-="
	AssignMul AssignOp = "*="
	AssignDiv AssignOp = "/="
	AssignMod AssignOp = "%="
)

// Assignment is a compound assignment to a Computed identifier.
type Assignment struct {
	base
	Op   AssignOp
	Var  string
	Expr Expression
}

func NewAssignment(loc SourceLocation, op AssignOp, v string, expr Expression) *Assignment {
	return &Assignment{base{loc}, op, v, expr}
}
func (*Assignment) actionNode() {}
func (a *Assignment) Debug() string {
	return fmt.Sprintf("Assignment(%s, %s, %s)", a.Op, a.Var, a.Expr.Debug())
}

// Calculate requires Expr to produce a numeric value after coercion
// (spec.md §4.6); `run` is preferred for function/REST/JSON-path forms but
// `calculate` is still accepted for those on older rules (DESIGN.md Open
// Question 3).
type Calculate struct {
	base
	Var    string
	Expr   Expression
	Legacy bool // true when Expr is a function/REST/JSON-path form, not pure arithmetic
}

func NewCalculate(loc SourceLocation, v string, expr Expression, legacy bool) *Calculate {
	return &Calculate{base{loc}, v, expr, legacy}
}
func (*Calculate) actionNode() {}
func (c *Calculate) Debug() string {
	return fmt.Sprintf("Calculate(%s, %s)", c.Var, c.Expr.Debug())
}

// Run assigns the result of a FunctionCall, RestCall, or JsonPath
// expression to Var.
type Run struct {
	base
	Var  string
	Expr Expression // FunctionCall | RestCall | JsonPath
}

func NewRun(loc SourceLocation, v string, expr Expression) *Run { return &Run{base{loc}, v, expr} }
func (*Run) actionNode()                                        {}
func (r *Run) Debug() string                                    { return fmt.Sprintf("Run(%s, %s)", r.Var, r.Expr.Debug()) }

// ArithmeticActionOp enumerates the `add/subtract/multiply/divide` action verbs.
type ArithmeticActionOp string

const (
	ActAdd      ArithmeticActionOp = "add"
	ActSubtract ArithmeticActionOp = "subtract"
	ActMultiply ArithmeticActionOp = "multiply"
	ActDivide   ArithmeticActionOp = "divide"
)

// ArithmeticAction mutates Var in place: `add <expr> to <var>`, etc.
type ArithmeticAction struct {
	base
	Op   ArithmeticActionOp
	Var  string
	Expr Expression
}

func NewArithmeticAction(loc SourceLocation, op ArithmeticActionOp, v string, expr Expression) *ArithmeticAction {
	return &ArithmeticAction{base{loc}, op, v, expr}
}
func (*ArithmeticAction) actionNode() {}
func (a *ArithmeticAction) Debug() string {
	return fmt.Sprintf("ArithmeticAction(%s, %s, %s)", a.Op, a.Var, a.Expr.Debug())
}

// FunctionCallAction invokes a built-in by name for its side effects
// (notably audit/log/send_notification), optionally storing its result.
type FunctionCallAction struct {
	base
	Name      string
	Args      []Expression
	ResultVar string // "" if not stored
}

func NewFunctionCallAction(loc SourceLocation, name string, args []Expression, resultVar string) *FunctionCallAction {
	return &FunctionCallAction{base{loc}, name, args, resultVar}
}
func (*FunctionCallAction) actionNode() {}
func (f *FunctionCallAction) Debug() string {
	return fmt.Sprintf("FunctionCallAction(%s)", f.Name)
}

// ListActionOp enumerates `append/prepend/remove`.
type ListActionOp string

const (
	ListAppend  ListActionOp = "append"
	ListPrepend ListActionOp = "prepend"
	ListRemove  ListActionOp = "remove"
)

// ListAction mutates a list-valued Computed variable.
type ListAction struct {
	base
	Op      ListActionOp
	ListVar string
	Expr    Expression
}

func NewListAction(loc SourceLocation, op ListActionOp, listVar string, expr Expression) *ListAction {
	return &ListAction{base{loc}, op, listVar, expr}
}
func (*ListAction) actionNode() {}
func (l *ListAction) Debug() string {
	return fmt.Sprintf("ListAction(%s, %s, %s)", l.Op, l.ListVar, l.Expr.Debug())
}

// Conditional is `if <cond> then <actions> (else <actions>)?`.
type Conditional struct {
	base
	Cond       Condition
	ThenAction []Action
	ElseAction []Action
}

func NewConditional(loc SourceLocation, cond Condition, thenA, elseA []Action) *Conditional {
	return &Conditional{base{loc}, cond, thenA, elseA}
}
func (*Conditional) actionNode() {}
func (c *Conditional) Debug() string {
	return fmt.Sprintf("Conditional(%s, then=%d, else=%d)", c.Cond.Debug(), len(c.ThenAction), len(c.ElseAction))
}

// ForEach iterates ListExpr, binding ItemVar (and IndexVar, if set) as a
// scoped shadow for the duration of Body. Capped at 100,000 iterations
// (spec.md §4.6).
type ForEach struct {
	base
	ItemVar  string
	IndexVar string // "" if absent
	ListExpr Expression
	Body     []Action
}

func NewForEach(loc SourceLocation, itemVar, indexVar string, listExpr Expression, body []Action) *ForEach {
	return &ForEach{base{loc}, itemVar, indexVar, listExpr, body}
}
func (*ForEach) actionNode() {}
func (f *ForEach) Debug() string {
	return fmt.Sprintf("ForEach(%s, %s)", f.ItemVar, f.ListExpr.Debug())
}

// While is a pre-condition loop capped at 1,000 iterations.
type While struct {
	base
	Cond Condition
	Body []Action
}

func NewWhile(loc SourceLocation, cond Condition, body []Action) *While {
	return &While{base{loc}, cond, body}
}
func (*While) actionNode() {}
func (w *While) Debug() string { return fmt.Sprintf("While(%s)", w.Cond.Debug()) }

// DoWhile is a post-condition loop: Body always runs at least once, capped
// at 1,000 iterations.
type DoWhile struct {
	base
	Body []Action
	Cond Condition
}

func NewDoWhile(loc SourceLocation, body []Action, cond Condition) *DoWhile {
	return &DoWhile{base{loc}, body, cond}
}
func (*DoWhile) actionNode() {}
func (d *DoWhile) Debug() string { return fmt.Sprintf("DoWhile(%s)", d.Cond.Debug()) }

// CircuitBreaker halts all further action execution in the current
// evaluation and records Message.
type CircuitBreaker struct {
	base
	Message Expression
}

func NewCircuitBreaker(loc SourceLocation, message Expression) *CircuitBreaker {
	return &CircuitBreaker{base{loc}, message}
}
func (*CircuitBreaker) actionNode() {}
func (c *CircuitBreaker) Debug() string {
	return fmt.Sprintf("CircuitBreaker(%s)", c.Message.Debug())
}
