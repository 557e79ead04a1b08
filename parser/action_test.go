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

func parseActions(t *testing.T, src string) []ast.Action {
	t.Helper()
	p, err := parser.NewActionParser(src)
	require.NoError(t, err)
	actions, err := p.ParseActions()
	require.NoError(t, err)
	return actions
}

func TestActionParser_Set(t *testing.T) {
	actions := parseActions(t, "set approved to true")
	require.Len(t, actions, 1)
	set, ok := actions[0].(*ast.Set)
	require.True(t, ok)
	assert.Equal(t, "approved", set.Var)
}

func TestActionParser_SetWithInlineIfElse(t *testing.T) {
	actions := parseActions(t, "set tier to 1 if income > 1000 else 0")
	require.Len(t, actions, 1)
	cond, ok := actions[0].(*ast.Conditional)
	require.True(t, ok)
	require.Len(t, cond.ThenAction, 1)
	require.Len(t, cond.ElseAction, 1)
	assert.Equal(t, "tier", cond.ThenAction[0].(*ast.Set).Var)
	assert.Equal(t, "tier", cond.ElseAction[0].(*ast.Set).Var)
}

func TestActionParser_Calculate(t *testing.T) {
	actions := parseActions(t, "calculate total as income + debt")
	require.Len(t, actions, 1)
	calc, ok := actions[0].(*ast.Calculate)
	require.True(t, ok)
	assert.Equal(t, "total", calc.Var)
	assert.False(t, calc.Legacy)
}

// `calculate` is still accepted for function/REST/JSON-path forms even
// though `run` is the preferred verb for those (legacy compatibility).
func TestActionParser_CalculateWithFunctionCallIsLegacy(t *testing.T) {
	actions := parseActions(t, "calculate score as credit_score(income, debt)")
	require.Len(t, actions, 1)
	calc, ok := actions[0].(*ast.Calculate)
	require.True(t, ok)
	assert.True(t, calc.Legacy)
}

func TestActionParser_Run(t *testing.T) {
	actions := parseActions(t, "run score as credit_score(income, debt)")
	require.Len(t, actions, 1)
	run, ok := actions[0].(*ast.Run)
	require.True(t, ok)
	assert.Equal(t, "score", run.Var)
}

func TestActionParser_ArithmeticActionsUseTheirOwnPreposition(t *testing.T) {
	cases := map[string]ast.ArithmeticActionOp{
		"add 100 to total":       ast.ActAdd,
		"subtract 50 from total": ast.ActSubtract,
		"multiply 2 by total":    ast.ActMultiply,
		"divide 2 by total":      ast.ActDivide,
	}
	for src, op := range cases {
		actions := parseActions(t, src)
		require.Len(t, actions, 1, src)
		a, ok := actions[0].(*ast.ArithmeticAction)
		require.True(t, ok, src)
		assert.Equal(t, op, a.Op, src)
		assert.Equal(t, "total", a.Var, src)
	}
}

func TestActionParser_ListActions(t *testing.T) {
	actions := parseActions(t, "append income to history")
	require.Len(t, actions, 1)
	la, ok := actions[0].(*ast.ListAction)
	require.True(t, ok)
	assert.Equal(t, ast.ListAppend, la.Op)
	assert.Equal(t, "history", la.ListVar)

	actions = parseActions(t, "remove income from history")
	la, ok = actions[0].(*ast.ListAction)
	require.True(t, ok)
	assert.Equal(t, ast.ListRemove, la.Op)
}

func TestActionParser_CallWithArgsAndStore(t *testing.T) {
	actions := parseActions(t, "call credit_score with [income, debt] and store in score")
	require.Len(t, actions, 1)
	call, ok := actions[0].(*ast.FunctionCallAction)
	require.True(t, ok)
	assert.Equal(t, "credit_score", call.Name)
	assert.Len(t, call.Args, 2)
	assert.Equal(t, "score", call.ResultVar)
}

func TestActionParser_CallWithoutStore(t *testing.T) {
	actions := parseActions(t, "call audit with [\"checked\"]")
	call, ok := actions[0].(*ast.FunctionCallAction)
	require.True(t, ok)
	assert.Equal(t, "", call.ResultVar)
}

func TestActionParser_IfThenElseBlock(t *testing.T) {
	actions := parseActions(t, "if income > 1000 then set approved to true else set approved to false")
	require.Len(t, actions, 1)
	cond, ok := actions[0].(*ast.Conditional)
	require.True(t, ok)
	require.Len(t, cond.ThenAction, 1)
	require.Len(t, cond.ElseAction, 1)
}

func TestActionParser_ForEachWithIndexAndChainedBody(t *testing.T) {
	actions := parseActions(t, "foreach item, idx in history: add item to total; set seen to true")
	require.Len(t, actions, 1)
	fe, ok := actions[0].(*ast.ForEach)
	require.True(t, ok)
	assert.Equal(t, "item", fe.ItemVar)
	assert.Equal(t, "idx", fe.IndexVar)
	assert.Len(t, fe.Body, 2)
}

func TestActionParser_While(t *testing.T) {
	actions := parseActions(t, "while total < 100: add 1 to total")
	require.Len(t, actions, 1)
	w, ok := actions[0].(*ast.While)
	require.True(t, ok)
	assert.Len(t, w.Body, 1)
}

func TestActionParser_DoWhile(t *testing.T) {
	actions := parseActions(t, "do: add 1 to total while total < 100")
	require.Len(t, actions, 1)
	dw, ok := actions[0].(*ast.DoWhile)
	require.True(t, ok)
	assert.Len(t, dw.Body, 1)
}

func TestActionParser_CircuitBreaker(t *testing.T) {
	actions := parseActions(t, `circuit_breaker "manual review required"`)
	require.Len(t, actions, 1)
	_, ok := actions[0].(*ast.CircuitBreaker)
	assert.True(t, ok)
}

func TestActionParser_SemicolonChainsMultipleActions(t *testing.T) {
	actions := parseActions(t, "set approved to true; add 1 to count")
	require.Len(t, actions, 2)
}

func TestActionParser_UnrecognizedKeywordErrors(t *testing.T) {
	_, err := parser.NewActionParser("frobnicate total")
	require.NoError(t, err)
	p, _ := parser.NewActionParser("frobnicate total")
	_, err = p.ParseActions()
	assert.Error(t, err)
}

func TestActionParser_TrailingGarbageErrors(t *testing.T) {
	p, err := parser.NewActionParser("set approved to true this-is-extra")
	require.NoError(t, err)
	_, err = p.ParseActions()
	assert.Error(t, err)
}
