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

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/parser"
)

func TestParseCondition_ComparisonFoldsToComparisonNode(t *testing.T) {
	cond, err := parser.ParseCondition("income > 1000")
	require.NoError(t, err)
	cmp, ok := cond.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.CompareOp(ast.OpGt), cmp.Op)
}

func TestParseCondition_NamedComparisonIsEquivalentToSymbol(t *testing.T) {
	symbol, err := parser.ParseCondition("income > 1000")
	require.NoError(t, err)
	named, err := parser.ParseCondition("income greater_than 1000")
	require.NoError(t, err)
	assert.Equal(t, symbol.(*ast.Comparison).Op, named.(*ast.Comparison).Op)
}

func TestParseCondition_AndOrFoldToLogicalNodes(t *testing.T) {
	cond, err := parser.ParseCondition("income > 1000 and debt < 500")
	require.NoError(t, err)
	logical, ok := cond.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalAnd, logical.Op)
	assert.Len(t, logical.Operands, 2)

	cond, err = parser.ParseCondition("income > 1000 or debt < 500")
	require.NoError(t, err)
	logical, ok = cond.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalOr, logical.Op)
}

func TestParseCondition_NotFoldsToLogicalNot(t *testing.T) {
	cond, err := parser.ParseCondition("not approved")
	require.NoError(t, err)
	logical, ok := cond.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalNot, logical.Op)
	assert.Len(t, logical.Operands, 1)
}

// `and` inside `between a and b` is a lexical piece of the between
// expression, not the logical operator, so the whole thing folds into a
// single ExpressionCondition rather than a Logical/Comparison split.
func TestParseCondition_BetweenStaysAWholeExpressionCondition(t *testing.T) {
	cond, err := parser.ParseCondition("income between 1000 and 5000")
	require.NoError(t, err)
	_, ok := cond.(*ast.ExpressionCondition)
	assert.True(t, ok, "between must not be split at its internal 'and'")
}

func TestParseCondition_PlainExpressionWrapsAsExpressionCondition(t *testing.T) {
	cond, err := parser.ParseCondition("is_valid_ssn(ssn)")
	require.NoError(t, err)
	_, ok := cond.(*ast.ExpressionCondition)
	assert.True(t, ok)
}

func TestParseStructuredCondition_And(t *testing.T) {
	cond, err := parser.ParseStructuredCondition(map[string]interface{}{
		"and": []interface{}{"income > 1000", "debt < 500"},
	})
	require.NoError(t, err)
	logical, ok := cond.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalAnd, logical.Op)
	assert.Len(t, logical.Operands, 2)
}

func TestParseStructuredCondition_Or(t *testing.T) {
	cond, err := parser.ParseStructuredCondition(map[string]interface{}{
		"or": []interface{}{"income > 1000", "debt < 500"},
	})
	require.NoError(t, err)
	logical, ok := cond.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalOr, logical.Op)
}

func TestParseStructuredCondition_Not(t *testing.T) {
	cond, err := parser.ParseStructuredCondition(map[string]interface{}{
		"not": "income > 1000",
	})
	require.NoError(t, err)
	logical, ok := cond.(*ast.Logical)
	require.True(t, ok)
	assert.Equal(t, ast.LogicalNot, logical.Op)
}

func TestParseStructuredCondition_Compare(t *testing.T) {
	cond, err := parser.ParseStructuredCondition(map[string]interface{}{
		"compare": map[string]interface{}{
			"left": "income", "operator": "greater_than", "right": "1000",
		},
	})
	require.NoError(t, err)
	cmp, ok := cond.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.CompareOp(ast.OpGt), cmp.Op)
}

func TestParseStructuredCondition_UnknownOperatorErrors(t *testing.T) {
	_, err := parser.ParseStructuredCondition(map[string]interface{}{
		"compare": map[string]interface{}{
			"left": "income", "operator": "nonsense", "right": "1000",
		},
	})
	assert.Error(t, err)
}

func TestParseStructuredCondition_UnrecognizedShapeErrors(t *testing.T) {
	_, err := parser.ParseStructuredCondition(map[string]interface{}{
		"whatever": "income > 1000",
	})
	assert.Error(t, err)
}

// Arithmetic binds tighter than comparison: `2 + 3 > 4` must parse as
// `(2 + 3) > 4`, not a parse error or a different grouping.
func TestParseCondition_ArithmeticBindsTighterThanComparison(t *testing.T) {
	cond, err := parser.ParseCondition("2 + 3 > 4")
	require.NoError(t, err)
	cmp, ok := cond.(*ast.Comparison)
	require.True(t, ok)
	_, lhsIsArithmetic := cmp.Lhs.(*ast.Arithmetic)
	_, lhsIsBinary := cmp.Lhs.(*ast.Binary)
	assert.True(t, lhsIsArithmetic || lhsIsBinary, "left side of the comparison must be the folded '2 + 3' expression")
}

func TestParseCondition_ParenthesesOverridePrecedence(t *testing.T) {
	cond, err := parser.ParseCondition("income > (1000 - 200)")
	require.NoError(t, err)
	cmp, ok := cond.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.CompareOp(ast.OpGt), cmp.Op)
}

func TestParseCondition_ChainedPostfixValidationOperators(t *testing.T) {
	cond, err := parser.ParseCondition("income is_positive is_not_null")
	require.NoError(t, err)
	exprCond, ok := cond.(*ast.ExpressionCondition)
	require.True(t, ok)
	outer, ok := exprCond.Expr.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "is_not_null", outer.Name)
	inner, ok := outer.Args[0].(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "is_positive", inner.Name)
}
