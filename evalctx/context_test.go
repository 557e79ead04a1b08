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

package evalctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/value"
)

func TestLookup_PrecedenceIsComputedThenInputsThenConstants(t *testing.T) {
	ctx := evalctx.New(
		map[string]value.Value{"income": value.NumberFromInt(100)},
		map[string]value.Value{"income": value.NumberFromInt(1), "limit": value.NumberFromInt(9)},
	)
	// Unset: falls through to inputs.
	assert.Equal(t, value.NumberFromInt(100), ctx.Lookup("income"))
	// Only a constant is declared: falls through all the way.
	assert.Equal(t, value.NumberFromInt(9), ctx.Lookup("limit"))

	ctx.Set("income", value.NumberFromInt(500))
	// Computed shadows input once written.
	assert.Equal(t, value.NumberFromInt(500), ctx.Lookup("income"))
}

func TestLookup_UndefinedNameIsNullNotError(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	assert.Equal(t, value.Null{}, ctx.Lookup("nonexistent"))
}

func TestSet_OnlyTargetsComputedLayer(t *testing.T) {
	ctx := evalctx.New(map[string]value.Value{"income": value.NumberFromInt(1)}, nil)
	ctx.Set("income", value.NumberFromInt(2))
	assert.Equal(t, value.NumberFromInt(2), ctx.Lookup("income"))
	assert.Equal(t, value.NumberFromInt(2), ctx.Computed()["income"])
}

func TestSet_TracksInsertionOrderAndDoesNotDuplicateOnOverwrite(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	ctx.Set("b", value.NumberFromInt(1))
	ctx.Set("a", value.NumberFromInt(2))
	ctx.Set("b", value.NumberFromInt(3))
	assert.Equal(t, []string{"b", "a"}, ctx.ComputedKeys())
	assert.Equal(t, value.NumberFromInt(3), ctx.Computed()["b"])
}

func TestUnset_RemovesBindingAndItsInsertionOrderEntry(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	ctx.Set("a", value.NumberFromInt(1))
	ctx.Set("b", value.NumberFromInt(2))
	ctx.Unset("a")
	_, ok := ctx.Computed()["a"]
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, ctx.ComputedKeys())
	assert.Equal(t, value.Null{}, ctx.Lookup("a"))
}

// LoopDepth tracks active loop nesting, not a cumulative iteration count:
// EnterLoop/ExitLoop are pushed and popped around a single loop construct's
// whole run, so three loops nested inside one another read depth 3, but two
// sibling loops running one after another never see more than depth 1 each.
func TestEnterLoop_TracksNestingNotCumulativeIterations(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	assert.Equal(t, 0, ctx.LoopDepth())

	ctx.EnterLoop() // outer loop starts
	ctx.EnterLoop() // inner loop starts
	ctx.EnterLoop() // innermost loop starts
	assert.Equal(t, 3, ctx.LoopDepth())

	ctx.ExitLoop() // innermost loop ends
	assert.Equal(t, 2, ctx.LoopDepth())
}

func TestEnterLoop_SiblingLoopsDoNotAccumulateDepth(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	ctx.EnterLoop()
	assert.Equal(t, 1, ctx.LoopDepth())
	ctx.ExitLoop()
	assert.Equal(t, 0, ctx.LoopDepth())

	ctx.EnterLoop()
	assert.Equal(t, 1, ctx.LoopDepth())
	ctx.ExitLoop()
	assert.Equal(t, 0, ctx.LoopDepth())
}

func TestRecordAudit_AppendsEventsInOrder(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	ctx.RecordAudit("audit", "first", value.Bool(true))
	ctx.RecordAudit("log", "second", value.Null{})
	assert.Len(t, ctx.AuditEvents, 2)
	assert.Equal(t, "first", ctx.AuditEvents[0].Message)
	assert.Equal(t, "log", ctx.AuditEvents[1].Kind)
}

func TestTriggerCircuitBreaker_SetsFlagAndMessage(t *testing.T) {
	ctx := evalctx.New(nil, nil)
	assert.False(t, ctx.CircuitTriggered)
	ctx.TriggerCircuitBreaker("manual review required")
	assert.True(t, ctx.CircuitTriggered)
	assert.Equal(t, "manual review required", ctx.CircuitMessage)
}
