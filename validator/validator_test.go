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

package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulekit/ruleengine/parser"
	"github.com/rulekit/ruleengine/rule"
	"github.com/rulekit/ruleengine/validator"
)

func parseAndValidate(t *testing.T, yamlText string) *validator.Report {
	t.Helper()
	doc, warnings, err := parser.ParseYAML(yamlText)
	require.NoError(t, err)
	return validator.Validate(doc, warnings)
}

func codes(issues []validator.Issue) []string {
	out := make([]string, len(issues))
	for i, iss := range issues {
		out[i] = iss.Code
	}
	return out
}

func TestValidate_MissingRequiredKeysAreBlocking(t *testing.T) {
	// ParseYAML rejects a document with no logic block, so the empty
	// document is handed to Validate directly.
	report := validator.Validate(&rule.Document{Metadata: map[string]interface{}{"name": ""}}, nil)
	assert.Equal(t, "invalid", report.Status)
	assert.True(t, report.Blocking())
	assert.Contains(t, codes(report.Syntax), "missing_name")
	assert.Contains(t, codes(report.Syntax), "missing_description")
	assert.Contains(t, codes(report.Syntax), "missing_inputs")
	assert.Contains(t, codes(report.Syntax), "missing_output")
	assert.Contains(t, codes(report.Syntax), "missing_logic")
	assert.True(t, report.Summary.Critical >= 3, "missing name/output/logic are all CRITICAL")
}

func TestValidate_CompleteSimpleRuleIsValid(t *testing.T) {
	report := parseAndValidate(t, `
name: loan approval
description: approves a loan when income clears the threshold
inputs: [income]
output:
  approved: boolean
when:
  - "income > 1000"
then:
  - "set approved to true"
`)
	assert.Equal(t, "valid", report.Status)
	assert.False(t, report.Blocking())
	assert.Equal(t, 0, report.Summary.Critical)
	assert.Equal(t, 0, report.Summary.Errors)
}

// An assignment target that is a declared input can never be a valid
// computed write target.
func TestValidate_RejectsInputShadowing(t *testing.T) {
	report := parseAndValidate(t, `
name: bad assignment
description: reassigns a declared input
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set income to 0"
`)
	assert.True(t, report.Blocking())
	assert.Contains(t, codes(report.Logic), "assign_target_is_input")
}

func TestValidate_FlagsUndeclaredInputReference(t *testing.T) {
	report := parseAndValidate(t, `
name: undeclared ref
description: references an input that was never declared
inputs: []
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to true"
`)
	assert.Contains(t, codes(report.Logic), "undeclared_input")
}

func TestValidate_FlagsUndefinedComputedReference(t *testing.T) {
	report := parseAndValidate(t, `
name: undefined computed ref
description: reads a computed variable with no prior defining action
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to running_total"
`)
	assert.Contains(t, codes(report.Logic), "undefined_computed")
}

func TestValidate_FlagsUnknownFunctionAndArityMismatch(t *testing.T) {
	report := parseAndValidate(t, `
name: bad calls
description: calls an unregistered function and a known one with wrong arity
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to not_a_real_function(income); calculate approved as abs(income, income)"
`)
	assert.Contains(t, codes(report.Logic), "unknown_function")
	assert.Contains(t, codes(report.Logic), "arity_mismatch")
}

func TestValidate_FlagsNonIdiomaticInputAndConstantNames(t *testing.T) {
	report := parseAndValidate(t, `
name: naming
description: declares an input and constant with the wrong case convention
inputs: [IncomeLevel]
constants:
  - name: threshold
    default: 10
output:
  approved: boolean
when:
  - "IncomeLevel > 0"
then:
  - "set approved to true"
`)
	assert.Contains(t, codes(report.Naming), "naming_input")
	assert.Contains(t, codes(report.Naming), "naming_constant")
}

func TestValidate_MixedLogicShapesIsAmbiguous(t *testing.T) {
	report := parseAndValidate(t, `
name: mixed shapes
description: declares both when/then and conditions with real content
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to true"
conditions:
  and: ["income > 0"]
`)
	assert.Contains(t, codes(report.Logic), "ambiguous_logic_shape")
	assert.True(t, report.Blocking())
}

func TestValidate_UnknownTopLevelKeyBecomesBestPracticeWarning(t *testing.T) {
	report := parseAndValidate(t, `
name: unknown key
description: carries a top-level key the structural parser doesn't recognize
inputs: [income]
output:
  approved: boolean
when:
  - "income > 0"
then:
  - "set approved to true"
totally_made_up_key: true
`)
	assert.Contains(t, codes(report.BestPractices), "unknown_key")
}

func TestSortIssues_OrdersBySeverityThenCode(t *testing.T) {
	issues := []validator.Issue{
		{Code: "zzz", Severity: validator.Warning},
		{Code: "aaa", Severity: validator.Critical},
		{Code: "bbb", Severity: validator.Error},
		{Code: "ccc", Severity: validator.Critical},
	}
	validator.SortIssues(issues)
	assert.Equal(t, []string{"aaa", "ccc", "bbb", "zzz"}, codes(issues))
}
