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

package eval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulekit/ruleengine/eval"
	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/parser"
	"github.com/rulekit/ruleengine/value"
)

func run(t *testing.T, inputs map[string]value.Value, actionText string) *evalctx.Context {
	t.Helper()
	p, err := parser.NewActionParser(actionText)
	require.NoError(t, err)
	actions, err := p.ParseActions()
	require.NoError(t, err)

	ctx := evalctx.New(inputs, nil)
	ev := eval.New(ctx, nil, nil)
	require.NoError(t, ev.ExecActions(context.Background(), actions))
	return ctx
}

// Only "add" defaults a null target to zero; subtract/multiply/divide must
// raise an evaluation error on a null target.
func TestArithmeticAction_AddOnNullTargetDefaultsToZero(t *testing.T) {
	ctx := run(t, nil, `add 5 to total`)
	assert.Equal(t, value.NumberFromInt(5), ctx.Lookup("total"))
}

func TestArithmeticAction_SubtractMultiplyDivideOnNullTargetError(t *testing.T) {
	for _, text := range []string{
		`subtract 1 from total`,
		`multiply 2 by total`,
		`divide 2 by total`,
	} {
		p, err := parser.NewActionParser(text)
		require.NoError(t, err)
		actions, err := p.ParseActions()
		require.NoError(t, err)

		ctx := evalctx.New(nil, nil)
		ev := eval.New(ctx, nil, nil)
		err = ev.ExecActions(context.Background(), actions)
		assert.Error(t, err, "expected an error for %q", text)
	}
}

// A non-list, non-null target is replaced outright by a new single-element
// list for append/prepend, and is a no-op for remove.
func TestListAction_AppendOnNonListTargetReplacesIt(t *testing.T) {
	ctx := run(t, map[string]value.Value{"tags": value.String("not-a-list")}, `append "x" to tags`)
	list, ok := ctx.Lookup("tags").(value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 1)
	assert.Equal(t, value.String("x"), list.Items[0])
}

func TestListAction_PrependOnNonListTargetReplacesIt(t *testing.T) {
	ctx := run(t, map[string]value.Value{"tags": value.NumberFromInt(7)}, `prepend "x" to tags`)
	list, ok := ctx.Lookup("tags").(value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 1)
	assert.Equal(t, value.String("x"), list.Items[0])
}

func TestListAction_RemoveOnNonListTargetIsNoop(t *testing.T) {
	ctx := run(t, map[string]value.Value{"tags": value.NumberFromInt(7)}, `remove "x" from tags`)
	assert.Equal(t, value.NumberFromInt(7), ctx.Lookup("tags"), "remove on a non-list target must leave it untouched")
}

func TestListAction_AppendOnNullTargetCreatesList(t *testing.T) {
	ctx := run(t, nil, `append "x" to tags`)
	list, ok := ctx.Lookup("tags").(value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 1)
	assert.Equal(t, value.String("x"), list.Items[0])
}

func TestListAction_AppendPrependRemoveOnExistingList(t *testing.T) {
	ctx := evalctx.New(map[string]value.Value{
		"tags": value.NewList(value.String("a"), value.String("b")),
	}, nil)
	ev := eval.New(ctx, nil, nil)

	p, err := parser.NewActionParser(`append "c" to tags; prepend "z" to tags; remove "b" from tags`)
	require.NoError(t, err)
	actions, err := p.ParseActions()
	require.NoError(t, err)
	require.NoError(t, ev.ExecActions(context.Background(), actions))

	list, ok := ctx.Lookup("tags").(value.List)
	require.True(t, ok)
	var got []string
	for _, it := range list.Items {
		got = append(got, string(it.(value.String)))
	}
	assert.Equal(t, []string{"z", "a", "c"}, got)
}

// Two independent while loops, each well under the 1,000-iteration cap on
// its own, must not share a single evaluation-wide iteration budget. A
// sequence rule evaluates each sub-rule's actions as its own ExecActions
// call against the shared, accumulating Context (eval/logic.go
// runSequence), exactly the shape described in the bug report: two
// unrelated while blocks run one after the other in the same evaluation.
func TestWhile_TwoSequentialLoopsDoNotShareAnIterationBudget(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	ev := eval.New(ctx, nil, nil)

	first, err := parser.NewActionParser(`set a to 0; while a < 600: add 1 to a`)
	require.NoError(t, err)
	firstActions, err := first.ParseActions()
	require.NoError(t, err)
	require.NoError(t, ev.ExecActions(context.Background(), firstActions))
	assert.Equal(t, value.NumberFromInt(600), ctx.Lookup("a"))

	second, err := parser.NewActionParser(`set b to 0; while b < 600: add 1 to b`)
	require.NoError(t, err)
	secondActions, err := second.ParseActions()
	require.NoError(t, err)
	require.NoError(t, ev.ExecActions(context.Background(), secondActions))
	assert.Equal(t, value.NumberFromInt(600), ctx.Lookup("b"), "second loop must not inherit the first loop's iteration count")

	assert.Equal(t, 0, ctx.LoopDepth(), "both loops must have exited cleanly, leaving nesting depth at zero")
}

// A forEach nested inside a while reports nesting depth 2 while it runs, but
// that depth never leaks into a loop that runs afterward.
func TestForEach_NestedInsideWhileDoesNotInflateALaterLoopsDepth(t *testing.T) {
	ctx := evalctx.New(map[string]value.Value{
		"items": value.NewList(value.NumberFromInt(1), value.NumberFromInt(2), value.NumberFromInt(3)),
	}, nil)
	ev := eval.New(ctx, nil, nil)

	outer, err := parser.NewActionParser(`set a to 0; while a < 300: foreach it in items: add it to a`)
	require.NoError(t, err)
	outerActions, err := outer.ParseActions()
	require.NoError(t, err)
	require.NoError(t, ev.ExecActions(context.Background(), outerActions))
	assert.Equal(t, value.NumberFromInt(300), ctx.Lookup("a"))
	assert.Equal(t, 0, ctx.LoopDepth())

	later, err := parser.NewActionParser(`set b to 0; while b < 600: add 1 to b`)
	require.NoError(t, err)
	laterActions, err := later.ParseActions()
	require.NoError(t, err)
	require.NoError(t, ev.ExecActions(context.Background(), laterActions))
	assert.Equal(t, value.NumberFromInt(600), ctx.Lookup("b"))
}

func TestWhile_CancelledContextStopsTheLoopBeforeItsCap(t *testing.T) {
	p, err := parser.NewActionParser(`while total < 100000: add 1 to total`)
	require.NoError(t, err)
	actions, err := p.ParseActions()
	require.NoError(t, err)

	ctx := evalctx.New(map[string]value.Value{"total": value.NumberFromInt(0)}, nil)
	ev := eval.New(ctx, nil, nil)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err = ev.ExecActions(cancelled, actions)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDivideByZero(t *testing.T) {
	p, err := parser.NewActionParser(`set total to 10; divide 0 by total`)
	require.NoError(t, err)
	actions, err := p.ParseActions()
	require.NoError(t, err)

	ctx := evalctx.New(nil, nil)
	ev := eval.New(ctx, nil, nil)
	err = ev.ExecActions(context.Background(), actions)
	require.Error(t, err)
	assert.True(t, eval.ErrDivideByZero.Is(err))
}
