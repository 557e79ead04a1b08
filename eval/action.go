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

package eval

import (
	"context"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/function"
	"github.com/rulekit/ruleengine/value"
)

// ExecActions runs a list of actions in order, stopping immediately (without
// error) once the circuit breaker has tripped (spec.md §4.6 CircuitBreaker
// semantics: halts all further action execution in the evaluation).
func (e *Evaluator) ExecActions(ctx context.Context, actions []ast.Action) error {
	for _, a := range actions {
		if e.Ctx.CircuitTriggered {
			return nil
		}
		if err := e.ExecAction(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// ExecAction runs a single Action node.
func (e *Evaluator) ExecAction(ctx context.Context, action ast.Action) error {
	switch a := action.(type) {
	case *ast.Set:
		v, err := e.EvalExpression(a.Expr)
		if err != nil {
			return err
		}
		e.Ctx.Set(a.Var, v)
		return nil

	case *ast.Assignment:
		return e.execAssignment(a)

	case *ast.Calculate:
		v, err := e.EvalExpression(a.Expr)
		if err != nil {
			return err
		}
		if !isNull(v) {
			if _, err := value.AsNumber(v); err != nil {
				return ErrEval.New("calculate target " + a.Var + " did not produce a number: " + err.Error())
			}
		}
		e.Ctx.Set(a.Var, v)
		return nil

	case *ast.Run:
		v, err := e.EvalExpression(a.Expr)
		if err != nil {
			return err
		}
		e.Ctx.Set(a.Var, v)
		return nil

	case *ast.ArithmeticAction:
		return e.execArithmeticAction(a)

	case *ast.FunctionCallAction:
		args, err := e.evalArgs(a.Args)
		if err != nil {
			return err
		}
		v, err := function.Call(a.Name, args, e)
		if err != nil {
			return err
		}
		if a.ResultVar != "" {
			e.Ctx.Set(a.ResultVar, v)
		}
		return nil

	case *ast.ListAction:
		return e.execListAction(a)

	case *ast.Conditional:
		ok, err := e.EvalCondition(a.Cond)
		if err != nil {
			return err
		}
		if ok {
			return e.ExecActions(ctx, a.ThenAction)
		}
		return e.ExecActions(ctx, a.ElseAction)

	case *ast.ForEach:
		return e.execForEach(ctx, a)

	case *ast.While:
		return e.execWhile(ctx, a)

	case *ast.DoWhile:
		return e.execDoWhile(ctx, a)

	case *ast.CircuitBreaker:
		msg, err := e.EvalExpression(a.Message)
		if err != nil {
			return err
		}
		e.Ctx.TriggerCircuitBreaker(string(value.AsString(msg)))
		return nil
	}
	return ErrEval.New("unsupported action node")
}

func (e *Evaluator) execAssignment(a *ast.Assignment) error {
	rhs, err := e.EvalExpression(a.Expr)
	if err != nil {
		return err
	}
	if a.Op == ast.AssignSet {
		e.Ctx.Set(a.Var, rhs)
		return nil
	}
	current := e.Ctx.Lookup(a.Var)
	if isNull(current) {
		current = value.NumberFromInt(0)
	}
	if isNull(rhs) {
		e.Ctx.Set(a.Var, value.Null{})
		return nil
	}
	cn, err := value.AsNumber(current)
	if err != nil {
		return ErrEval.New(err.Error())
	}
	rn, err := value.AsNumber(rhs)
	if err != nil {
		return ErrEval.New(err.Error())
	}
	switch a.Op {
	case ast.AssignAdd:
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Add(rn.D)))
	case ast.AssignSub:
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Sub(rn.D)))
	case ast.AssignMul:
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Mul(rn.D)))
	case ast.AssignDiv:
		if rn.D.IsZero() {
			return ErrDivideByZero.New()
		}
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Div(rn.D)))
	case ast.AssignMod:
		if rn.D.IsZero() {
			return ErrDivideByZero.New()
		}
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Mod(rn.D)))
	default:
		return ErrEval.New("unsupported assignment operator " + string(a.Op))
	}
	return nil
}

// execArithmeticAction implements add/subtract/multiply/divide <expr> to/
// from/by <var>. Only "add" treats a null target as zero; subtract,
// multiply, and divide raise EvalError on a null target (spec.md §4.6
// "Arithmetic action").
func (e *Evaluator) execArithmeticAction(a *ast.ArithmeticAction) error {
	delta, err := e.EvalExpression(a.Expr)
	if err != nil {
		return err
	}
	current := e.Ctx.Lookup(a.Var)

	if isNull(current) {
		if a.Op == ast.ActAdd {
			current = value.NumberFromInt(0)
		} else {
			return ErrEval.New("arithmetic action target is null")
		}
	}
	if isNull(delta) {
		delta = value.NumberFromInt(0)
	}

	cn, err := value.AsNumber(current)
	if err != nil {
		return ErrEval.New(err.Error())
	}
	dn, err := value.AsNumber(delta)
	if err != nil {
		return ErrEval.New(err.Error())
	}
	switch a.Op {
	case ast.ActAdd:
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Add(dn.D)))
	case ast.ActSubtract:
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Sub(dn.D)))
	case ast.ActMultiply:
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Mul(dn.D)))
	case ast.ActDivide:
		if dn.D.IsZero() {
			return ErrDivideByZero.New()
		}
		e.Ctx.Set(a.Var, value.NewNumber(cn.D.Div(dn.D)))
	}
	return nil
}

// execListAction implements append/prepend/remove on a Computed list
// variable. A null or absent target is treated as an empty list. A target
// bound to a non-list, non-null value is replaced outright by a new
// single-element list for append/prepend, and left untouched for remove
// (spec.md §4.6 "ListAction").
func (e *Evaluator) execListAction(a *ast.ListAction) error {
	v, err := e.EvalExpression(a.Expr)
	if err != nil {
		return err
	}
	current := e.Ctx.Lookup(a.ListVar)
	list, isList := current.(value.List)
	_, isNullTarget := current.(value.Null)

	if !isList && !isNullTarget {
		switch a.Op {
		case ast.ListAppend, ast.ListPrepend:
			e.Ctx.Set(a.ListVar, value.NewList(v))
		}
		return nil
	}

	var items []value.Value
	if isList {
		items = append([]value.Value{}, list.Items...)
	}

	switch a.Op {
	case ast.ListAppend:
		items = append(items, v)
	case ast.ListPrepend:
		items = append([]value.Value{v}, items...)
	case ast.ListRemove:
		out := items[:0]
		for _, it := range items {
			if !value.Equal(it, v) {
				out = append(out, it)
			}
		}
		items = out
	}
	e.Ctx.Set(a.ListVar, value.NewList(items...))
	return nil
}

// ctxErr reports ctx's cancellation error, if any, without blocking. Loop
// bodies call it once per iteration so a caller's timeout or cancellation
// (spec.md §5 "loops check cancellation every iteration") stops a
// long-running loop instead of running it to its iteration cap regardless.
func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (e *Evaluator) execForEach(ctx context.Context, a *ast.ForEach) error {
	lv, err := e.EvalExpression(a.ListExpr)
	if err != nil {
		return err
	}
	list, ok := lv.(value.List)
	if !ok {
		return nil
	}
	e.Ctx.EnterLoop()
	defer e.Ctx.ExitLoop()
	iterations := 0
	for i, item := range list.Items {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		iterations++
		if iterations > evalctx.MaxForEachIterations {
			return ErrLoopCapExceeded.New("for_each", evalctx.MaxForEachIterations)
		}
		e.Ctx.Set(a.ItemVar, item)
		if a.IndexVar != "" {
			e.Ctx.Set(a.IndexVar, value.NumberFromInt(int64(i)))
		}
		err := e.ExecActions(ctx, a.Body)
		e.Ctx.Unset(a.ItemVar)
		if a.IndexVar != "" {
			e.Ctx.Unset(a.IndexVar)
		}
		if err != nil {
			return err
		}
		if e.Ctx.CircuitTriggered {
			return nil
		}
	}
	return nil
}

func (e *Evaluator) execWhile(ctx context.Context, a *ast.While) error {
	e.Ctx.EnterLoop()
	defer e.Ctx.ExitLoop()
	iterations := 0
	for {
		ok, err := e.EvalCondition(a.Cond)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := ctxErr(ctx); err != nil {
			return err
		}
		iterations++
		if iterations > evalctx.MaxWhileIterations {
			return ErrLoopCapExceeded.New("while", evalctx.MaxWhileIterations)
		}
		if err := e.ExecActions(ctx, a.Body); err != nil {
			return err
		}
		if e.Ctx.CircuitTriggered {
			return nil
		}
	}
}

func (e *Evaluator) execDoWhile(ctx context.Context, a *ast.DoWhile) error {
	e.Ctx.EnterLoop()
	defer e.Ctx.ExitLoop()
	iterations := 0
	for {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		iterations++
		if iterations > evalctx.MaxWhileIterations {
			return ErrLoopCapExceeded.New("do_while", evalctx.MaxWhileIterations)
		}
		if err := e.ExecActions(ctx, a.Body); err != nil {
			return err
		}
		if e.Ctx.CircuitTriggered {
			return nil
		}
		ok, err := e.EvalCondition(a.Cond)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}
