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
	"github.com/rulekit/ruleengine/ast"
)

// EvalCondition evaluates a Condition node to a boolean (spec.md §4.6).
// Logical And/Or short-circuit.
func (e *Evaluator) EvalCondition(cond ast.Condition) (bool, error) {
	switch c := cond.(type) {
	case *ast.Comparison:
		v, err := e.evalCompareOp(string(c.Op), c.Lhs, c.Rhs)
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil

	case *ast.Logical:
		switch c.Op {
		case ast.LogicalNot:
			v, err := e.EvalCondition(c.Operands[0])
			if err != nil {
				return false, err
			}
			return !v, nil
		case ast.LogicalAnd:
			for _, op := range c.Operands {
				v, err := e.EvalCondition(op)
				if err != nil {
					return false, err
				}
				if !v {
					return false, nil
				}
			}
			return true, nil
		case ast.LogicalOr:
			for _, op := range c.Operands {
				v, err := e.EvalCondition(op)
				if err != nil {
					return false, err
				}
				if v {
					return true, nil
				}
			}
			return false, nil
		}

	case *ast.ExpressionCondition:
		v, err := e.EvalExpression(c.Expr)
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil
	}
	return false, ErrEval.New("unsupported condition node")
}
