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

package collaborator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulekit/ruleengine/evalctx"
	"github.com/rulekit/ruleengine/rule"
	"github.com/rulekit/ruleengine/value"
)

func TestMemoryPersistence_LoadRuleByCode_NotFound(t *testing.T) {
	m := NewMemoryPersistence(nil)
	_, err := m.LoadRuleByCode(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestMemoryPersistence_PutRule_RejectsStaleWrite(t *testing.T) {
	m := NewMemoryPersistence(nil)
	docV1 := &rule.Document{RawText: "v1"}
	docV2 := &rule.Document{RawText: "v2"}

	require.NoError(t, m.PutRule("R1", docV1, 1))
	require.NoError(t, m.PutRule("R1", docV2, 2))

	err := m.PutRule("R1", docV1, 2)
	assert.Error(t, err, "equal version must be rejected as stale")

	err = m.PutRule("R1", docV1, 1)
	assert.Error(t, err, "older version must be rejected as stale")

	got, err := m.LoadRuleByCode(context.Background(), "R1")
	require.NoError(t, err)
	assert.Same(t, docV2, got, "stale writes must not clobber the newer stored version")
}

func TestMemoryPersistence_LoadConstants_OmitsUnknownNames(t *testing.T) {
	m := NewMemoryPersistence(nil)
	m.PutConstant("MIN_CREDIT_SCORE", value.NumberFromInt(650))

	out, err := m.LoadConstants(context.Background(), []string{"MIN_CREDIT_SCORE", "UNKNOWN"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, value.NumberFromInt(650), out["MIN_CREDIT_SCORE"])
	_, present := out["UNKNOWN"]
	assert.False(t, present)
}

func TestMemoryPersistence_RecordAudit_CallsSink(t *testing.T) {
	var gotCode string
	var gotEvents []evalctx.AuditEvent
	m := NewMemoryPersistence(func(ruleCode string, events []evalctx.AuditEvent) {
		gotCode = ruleCode
		gotEvents = events
	})

	events := []evalctx.AuditEvent{{Kind: "circuit_breaker", Message: "stop"}}
	m.RecordAudit("R1", events)

	assert.Equal(t, "R1", gotCode)
	assert.Equal(t, events, gotEvents)
}

func TestMemoryPersistence_RecordAudit_NilSinkIsNoop(t *testing.T) {
	m := NewMemoryPersistence(nil)
	assert.NotPanics(t, func() {
		m.RecordAudit("R1", []evalctx.AuditEvent{{Kind: "x"}})
	})
}
