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
	"math"
	"time"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/function"
	"github.com/rulekit/ruleengine/value"
)

const defaultRestTimeout = 5 * time.Second

// EvalExpression evaluates an Expression node to a Value (spec.md §4.6).
func (e *Evaluator) EvalExpression(expr ast.Expression) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.Variable:
		return e.Ctx.Lookup(n.Name), nil

	case *ast.Binary:
		return e.evalBinary(n)

	case *ast.Unary:
		return e.evalUnary(n)

	case *ast.Arithmetic:
		return e.evalArithmetic(n)

	case *ast.FunctionCall:
		args, err := e.evalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return function.Call(n.Name, args, e)

	case *ast.JsonPath:
		src, err := e.EvalExpression(n.Source)
		if err != nil {
			return nil, err
		}
		v, ok := function.NavigateJSONPath(src, n.Path)
		if !ok {
			return value.Null{}, nil
		}
		return v, nil

	case *ast.RestCall:
		return e.evalRestCall(n)

	case *ast.List:
		items := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := e.EvalExpression(el)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return value.NewList(items...), nil
	}
	return nil, ErrEval.New("unsupported expression node")
}

func (e *Evaluator) evalArgs(exprs []ast.Expression) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.EvalExpression(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) evalBinary(n *ast.Binary) (value.Value, error) {
	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		return e.evalArithmeticOp(n.Op, n.Lhs, n.Rhs)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		return e.evalCompareOp(string(n.Op), n.Lhs, n.Rhs)
	case ast.OpBetween:
		return e.evalBetween(n)
	case ast.OpAnd, ast.OpOr:
		lhs, err := e.EvalExpression(n.Lhs)
		if err != nil {
			return nil, err
		}
		if n.Op == ast.OpAnd && !lhs.Truthy() {
			return value.Bool(false), nil
		}
		if n.Op == ast.OpOr && lhs.Truthy() {
			return value.Bool(true), nil
		}
		rhs, err := e.EvalExpression(n.Rhs)
		if err != nil {
			return nil, err
		}
		return value.Bool(rhs.Truthy()), nil
	}
	return nil, ErrEval.New("unsupported binary operator " + string(n.Op))
}

func (e *Evaluator) evalBetween(n *ast.Binary) (value.Value, error) {
	v, err := e.EvalExpression(n.Lhs)
	if err != nil {
		return nil, err
	}
	lo, err := e.EvalExpression(n.Rhs)
	if err != nil {
		return nil, err
	}
	hi, err := e.EvalExpression(n.BetweenHigh)
	if err != nil {
		return nil, err
	}
	if isNull(v) || isNull(lo) || isNull(hi) {
		return value.Null{}, nil
	}
	vn, err := value.AsNumber(v)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	lon, err := value.AsNumber(lo)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	hin, err := value.AsNumber(hi)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	// Bounds are normalized regardless of the order they were written in:
	// `between 10 and 5` behaves the same as `between 5 and 10`.
	if lon.D.GreaterThan(hin.D) {
		lon, hin = hin, lon
	}
	return value.Bool(!vn.D.LessThan(lon.D) && !vn.D.GreaterThan(hin.D)), nil
}

// evalArithmeticOp evaluates +,-,*,/,%,** with null propagation: either
// operand being null yields null (spec.md §4.6 "arithmetic: null
// propagates").
func (e *Evaluator) evalArithmeticOp(op ast.BinaryOp, lhsExpr, rhsExpr ast.Expression) (value.Value, error) {
	lhs, err := e.EvalExpression(lhsExpr)
	if err != nil {
		return nil, err
	}
	// String concatenation: + with a string operand concatenates via
	// AsString coercion rather than numeric addition.
	if op == ast.OpAdd {
		if _, ok := lhs.(value.String); ok {
			rhs, err := e.EvalExpression(rhsExpr)
			if err != nil {
				return nil, err
			}
			if isNull(lhs) || isNull(rhs) {
				return value.Null{}, nil
			}
			return value.String(string(value.AsString(lhs)) + string(value.AsString(rhs))), nil
		}
	}
	if isNull(lhs) {
		return value.Null{}, nil
	}
	rhs, err := e.EvalExpression(rhsExpr)
	if err != nil {
		return nil, err
	}
	if op == ast.OpAdd {
		if _, ok := rhs.(value.String); ok {
			return value.String(string(value.AsString(lhs)) + string(value.AsString(rhs))), nil
		}
	}
	if isNull(rhs) {
		return value.Null{}, nil
	}
	ln, err := value.AsNumber(lhs)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	rn, err := value.AsNumber(rhs)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	switch op {
	case ast.OpAdd:
		return value.NewNumber(ln.D.Add(rn.D)), nil
	case ast.OpSub:
		return value.NewNumber(ln.D.Sub(rn.D)), nil
	case ast.OpMul:
		return value.NewNumber(ln.D.Mul(rn.D)), nil
	case ast.OpDiv:
		if rn.D.IsZero() {
			return nil, ErrDivideByZero.New()
		}
		return value.NewNumber(ln.D.Div(rn.D)), nil
	case ast.OpMod:
		if rn.D.IsZero() {
			return nil, ErrDivideByZero.New()
		}
		return value.NewNumber(ln.D.Mod(rn.D)), nil
	case ast.OpPow:
		return powValue(ln, rn)
	}
	return nil, ErrEval.New("unsupported arithmetic operator " + string(op))
}

func (e *Evaluator) evalCompareOp(op string, lhsExpr, rhsExpr ast.Expression) (value.Value, error) {
	lhs, err := e.EvalExpression(lhsExpr)
	if err != nil {
		return nil, err
	}
	rhs, err := e.EvalExpression(rhsExpr)
	if err != nil {
		return nil, err
	}
	switch op {
	case "==":
		return value.Bool(value.Equal(lhs, rhs)), nil
	case "!=":
		return value.Bool(!value.Equal(lhs, rhs)), nil
	}
	ln, errL := value.AsNumber(lhs)
	rn, errR := value.AsNumber(rhs)
	if errL != nil || errR != nil {
		if ls, ok1 := lhs.(value.String); ok1 {
			if rs, ok2 := rhs.(value.String); ok2 {
				return value.Bool(compareStrings(op, string(ls), string(rs))), nil
			}
		}
		return nil, ErrOrderingUnlikeTypes.New(lhs.Type(), rhs.Type())
	}
	switch op {
	case "<":
		return value.Bool(ln.D.LessThan(rn.D)), nil
	case ">":
		return value.Bool(ln.D.GreaterThan(rn.D)), nil
	case "<=":
		return value.Bool(!ln.D.GreaterThan(rn.D)), nil
	case ">=":
		return value.Bool(!ln.D.LessThan(rn.D)), nil
	}
	return nil, ErrEval.New("unsupported comparison operator " + op)
}

func compareStrings(op, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func (e *Evaluator) evalUnary(n *ast.Unary) (value.Value, error) {
	v, err := e.EvalExpression(n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.UnaryNot:
		return value.Bool(!v.Truthy()), nil
	case ast.UnaryPos:
		if isNull(v) {
			return value.Null{}, nil
		}
		n, err := value.AsNumber(v)
		if err != nil {
			return nil, ErrEval.New(err.Error())
		}
		return value.NewNumber(n.D), nil
	case ast.UnaryNeg:
		if isNull(v) {
			return value.Null{}, nil
		}
		n, err := value.AsNumber(v)
		if err != nil {
			return nil, ErrEval.New(err.Error())
		}
		return value.NewNumber(n.D.Neg()), nil
	}
	return nil, ErrEval.New("unsupported unary operator " + string(n.Op))
}

// evalArithmetic folds a left-associative chain with the same null
// propagation and string-concat rules as a single Binary node.
func (e *Evaluator) evalArithmetic(n *ast.Arithmetic) (value.Value, error) {
	acc, err := e.EvalExpression(n.Operands[0])
	if err != nil {
		return nil, err
	}
	for i, op := range n.Operators {
		rhs, err := e.EvalExpression(n.Operands[i+1])
		if err != nil {
			return nil, err
		}
		acc, err = e.combine(op, acc, rhs)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func (e *Evaluator) combine(op ast.BinaryOp, lhs, rhs value.Value) (value.Value, error) {
	if op == ast.OpAdd {
		if _, ok := lhs.(value.String); ok {
			if isNull(lhs) || isNull(rhs) {
				return value.Null{}, nil
			}
			return value.String(string(value.AsString(lhs)) + string(value.AsString(rhs))), nil
		}
		if _, ok := rhs.(value.String); ok {
			if isNull(lhs) || isNull(rhs) {
				return value.Null{}, nil
			}
			return value.String(string(value.AsString(lhs)) + string(value.AsString(rhs))), nil
		}
	}
	if isNull(lhs) || isNull(rhs) {
		return value.Null{}, nil
	}
	ln, err := value.AsNumber(lhs)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	rn, err := value.AsNumber(rhs)
	if err != nil {
		return nil, ErrEval.New(err.Error())
	}
	switch op {
	case ast.OpAdd:
		return value.NewNumber(ln.D.Add(rn.D)), nil
	case ast.OpSub:
		return value.NewNumber(ln.D.Sub(rn.D)), nil
	case ast.OpMul:
		return value.NewNumber(ln.D.Mul(rn.D)), nil
	case ast.OpDiv:
		if rn.D.IsZero() {
			return nil, ErrDivideByZero.New()
		}
		return value.NewNumber(ln.D.Div(rn.D)), nil
	case ast.OpMod:
		if rn.D.IsZero() {
			return nil, ErrDivideByZero.New()
		}
		return value.NewNumber(ln.D.Mod(rn.D)), nil
	case ast.OpPow:
		return powValue(ln, rn)
	}
	return nil, ErrEval.New("unsupported arithmetic operator " + string(op))
}

// evalRestCall evaluates a RestCall expression node. Like the rest_call
// builtin, it never raises out of the evaluator: transport failure
// materializes as a result map with a non-nil error field instead (spec.md
// §4.6).
func (e *Evaluator) evalRestCall(n *ast.RestCall) (value.Value, error) {
	url, err := e.EvalExpression(n.URL)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{}
	if n.Headers != nil {
		hv, err := e.EvalExpression(n.Headers)
		if err != nil {
			return nil, err
		}
		if m, ok := hv.(value.Map); ok {
			for k, v := range m.Entries {
				headers[k] = string(value.AsString(v))
			}
		}
	}

	var body value.Value = value.Null{}
	if n.Body != nil {
		body, err = e.EvalExpression(n.Body)
		if err != nil {
			return nil, err
		}
	}

	timeout := defaultRestTimeout
	if n.Timeout != nil {
		tv, err := e.EvalExpression(n.Timeout)
		if err != nil {
			return nil, err
		}
		if tn, err := value.AsNumber(tv); err == nil {
			timeout = time.Duration(tn.D.IntPart()) * time.Second
		}
	}

	status, respBody, err := e.HTTPRequest(n.Method, string(value.AsString(url)), headers, body, timeout)
	if err != nil {
		return value.NewMap(map[string]value.Value{
			"status": value.NumberFromInt(0),
			"error":  value.String(err.Error()),
			"body":   value.Null{},
		}), nil
	}
	return value.NewMap(map[string]value.Value{
		"status": value.NumberFromInt(int64(status)),
		"error":  value.Null{},
		"body":   respBody,
	}), nil
}

func isNull(v value.Value) bool {
	_, ok := v.(value.Null)
	return ok
}

func powValue(base, exp value.Number) (value.Value, error) {
	if exp.D.IsInteger() && !exp.D.IsNegative() && exp.D.LessThanOrEqual(value.NumberFromInt(1000).D) {
		return value.NewNumber(base.D.Pow(exp.D)), nil
	}
	bf, _ := base.D.Float64()
	ef, _ := exp.D.Float64()
	return value.NumberFromFloat(math.Pow(bf, ef)), nil
}
