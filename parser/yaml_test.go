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

	"github.com/rulekit/ruleengine/parser"
	"github.com/rulekit/ruleengine/rule"
)

func TestParseYAML_SimpleLogicShape(t *testing.T) {
	doc, warnings, err := parser.ParseYAML(`
name: loan approval
description: approves a loan when income clears the threshold
inputs: [income]
output:
  approved: boolean
when:
  - "income > 1000"
then:
  - "set approved to true"
else:
  - "set approved to false"
`)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, rule.LogicSimple, doc.Logic.Shape)
	require.NotNil(t, doc.Logic.Simple)
	assert.Len(t, doc.Logic.Simple.When, 1)
	assert.Len(t, doc.Logic.Simple.Then, 1)
	assert.Len(t, doc.Logic.Simple.Else, 1)
	assert.Equal(t, "loan approval", doc.Name())
	assert.Equal(t, rule.OutputBoolean, doc.OutputSchema["approved"])
}

func TestParseYAML_StructuredLogicShape(t *testing.T) {
	doc, _, err := parser.ParseYAML(`
name: structured
description: uses a nested conditions block
inputs: [income]
output:
  approved: boolean
conditions:
  and: ["income > 1000", "income < 5000"]
then:
  - "set approved to true"
`)
	require.NoError(t, err)
	assert.Equal(t, rule.LogicStructured, doc.Logic.Shape)
	require.NotNil(t, doc.Logic.Structured)
	assert.NotNil(t, doc.Logic.Structured.If)
}

func TestParseYAML_SequenceLogicShape(t *testing.T) {
	doc, _, err := parser.ParseYAML(`
name: sequence
description: a sequence of sub-rules
inputs: [income]
output:
  approved: boolean
rules:
  - name: first
    when: "income > 1000"
    then:
      - "set approved to true"
  - name: second
    then:
      - "set approved to false"
`)
	require.NoError(t, err)
	assert.Equal(t, rule.LogicSequence, doc.Logic.Shape)
	require.NotNil(t, doc.Logic.Sequence)
	require.Len(t, doc.Logic.Sequence.Rules, 2)
	assert.Equal(t, "first", doc.Logic.Sequence.Rules[0].Name)
	assert.NotNil(t, doc.Logic.Sequence.Rules[0].Guard)
	assert.Nil(t, doc.Logic.Sequence.Rules[1].Guard)
}

func TestParseYAML_ConstantsCarryInlineDefaults(t *testing.T) {
	doc, _, err := parser.ParseYAML(`
name: constants
description: declares a constant with an inline default
inputs: [income]
constants:
  - name: MAX_INCOME
    default: 100000
output:
  approved: boolean
when:
  - "income < MAX_INCOME"
then:
  - "set approved to true"
`)
	require.NoError(t, err)
	require.Len(t, doc.Constants, 1)
	assert.Equal(t, "MAX_INCOME", doc.Constants[0].Name)
}

func TestParseYAML_CircuitBreakerConfig(t *testing.T) {
	doc, _, err := parser.ParseYAML(`
name: breaker
description: declares a circuit breaker block
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to true"
circuit_breaker:
  enabled: true
  failure_threshold: 5
  timeout_duration: 1000
  recovery_timeout: 30000
`)
	require.NoError(t, err)
	require.NotNil(t, doc.CircuitConfig)
	assert.True(t, doc.CircuitConfig.Enabled)
	assert.Equal(t, 5, doc.CircuitConfig.FailureThreshold)
	assert.Equal(t, int64(1000), doc.CircuitConfig.TimeoutDuration)
	assert.Equal(t, int64(30000), doc.CircuitConfig.RecoveryTimeout)
}

func TestParseYAML_UnknownTopLevelKeyIsAWarningNotAnError(t *testing.T) {
	doc, warnings, err := parser.ParseYAML(`
name: unknown key
description: carries an unrecognized top-level key
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to true"
made_up_key: true
`)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Len(t, warnings, 1)
	assert.Equal(t, "unknown_key", warnings[0].Code)
}

func TestParseYAML_InvalidYAMLErrors(t *testing.T) {
	_, _, err := parser.ParseYAML("name: [unterminated")
	assert.Error(t, err)
}

func TestParseYAML_NoLogicShapeErrors(t *testing.T) {
	_, _, err := parser.ParseYAML(`
name: no logic
description: declares neither when/then, conditions, nor rules
inputs: [income]
output:
  approved: boolean
`)
	assert.Error(t, err)
}

func TestParseYAML_RuleEntryNotAMappingErrors(t *testing.T) {
	_, _, err := parser.ParseYAML(`
name: bad sequence
description: a rules entry that isn't a mapping
inputs: [income]
output:
  approved: boolean
rules:
  - "not a mapping"
`)
	assert.Error(t, err)
}

func TestParseYAML_ActionEntryNotAStringErrors(t *testing.T) {
	_, _, err := parser.ParseYAML(`
name: bad action
description: a then entry that isn't a string
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - 42
`)
	assert.Error(t, err)
}
