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

package parser

import (
	"fmt"

	"github.com/rulekit/ruleengine/ast"
)

// ParseCondition parses a lexical condition string into a Comparison,
// Logical, or ExpressionCondition node (spec.md §4.3 Condition parser). It
// reuses the expression parser's full precedence chain and then folds the
// resulting Expression tree into the Condition family.
func ParseCondition(src string) (ast.Condition, error) {
	p, err := NewExprParser(src)
	if err != nil {
		return nil, err
	}
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return ExpressionToCondition(expr), nil
}

// ExpressionToCondition folds an Expression into the Condition family:
// top-level and/or/not/comparison operators become Logical/Comparison
// nodes; anything else is wrapped in ExpressionCondition.
func ExpressionToCondition(expr ast.Expression) ast.Condition {
	switch e := expr.(type) {
	case *ast.Binary:
		switch e.Op {
		case ast.OpAnd:
			return ast.NewLogical(e.Loc(), ast.LogicalAnd, []ast.Condition{ExpressionToCondition(e.Lhs), ExpressionToCondition(e.Rhs)})
		case ast.OpOr:
			return ast.NewLogical(e.Loc(), ast.LogicalOr, []ast.Condition{ExpressionToCondition(e.Lhs), ExpressionToCondition(e.Rhs)})
		case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
			return ast.NewComparison(e.Loc(), ast.CompareOp(e.Op), e.Lhs, e.Rhs)
		case ast.OpBetween:
			return ast.NewExpressionCondition(e.Loc(), e)
		}
	case *ast.Unary:
		if e.Op == ast.UnaryNot {
			return ast.NewLogical(e.Loc(), ast.LogicalNot, []ast.Condition{ExpressionToCondition(e.Operand)})
		}
	}
	return ast.NewExpressionCondition(expr.Loc(), expr)
}

// ParseStructuredCondition converts the generic YAML tree for a structured
// `conditions:` block into a Condition. Supported shapes: `and: [..]`,
// `or: [..]`, `not: ..`, `compare: {left, operator, right}`, or a bare
// lexical condition string.
func ParseStructuredCondition(node interface{}) (ast.Condition, error) {
	switch n := node.(type) {
	case string:
		return ParseCondition(n)
	case map[string]interface{}:
		if sub, ok := n["and"]; ok {
			conds, err := parseConditionList(sub)
			if err != nil {
				return nil, err
			}
			return ast.NewLogical(ast.SourceLocation{}, ast.LogicalAnd, conds), nil
		}
		if sub, ok := n["or"]; ok {
			conds, err := parseConditionList(sub)
			if err != nil {
				return nil, err
			}
			return ast.NewLogical(ast.SourceLocation{}, ast.LogicalOr, conds), nil
		}
		if sub, ok := n["not"]; ok {
			c, err := ParseStructuredCondition(sub)
			if err != nil {
				return nil, err
			}
			return ast.NewLogical(ast.SourceLocation{}, ast.LogicalNot, []ast.Condition{c}), nil
		}
		if sub, ok := n["compare"]; ok {
			m, ok := sub.(map[string]interface{})
			if !ok {
				return nil, ErrStructure.New("compare block must be a mapping")
			}
			left, _ := m["left"].(string)
			right, _ := m["right"].(string)
			op, _ := m["operator"].(string)
			lp, err := NewExprParser(left)
			if err != nil {
				return nil, err
			}
			lhs, err := lp.ParseExpression()
			if err != nil {
				return nil, err
			}
			rp, err := NewExprParser(right)
			if err != nil {
				return nil, err
			}
			rhs, err := rp.ParseExpression()
			if err != nil {
				return nil, err
			}
			cop, ok := binaryCompareOps[op]
			if !ok {
				return nil, ErrStructure.New("unknown compare operator: " + op)
			}
			return ast.NewComparison(ast.SourceLocation{}, ast.CompareOp(cop), lhs, rhs), nil
		}
		return nil, ErrStructure.New("unrecognized structured condition shape")
	default:
		return nil, ErrStructure.New(fmt.Sprintf("unsupported condition node type %T", node))
	}
}

func parseConditionList(node interface{}) ([]ast.Condition, error) {
	items, ok := node.([]interface{})
	if !ok {
		return nil, ErrStructure.New("expected a list")
	}
	conds := make([]ast.Condition, 0, len(items))
	for _, item := range items {
		c, err := ParseStructuredCondition(item)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}
