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

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rulekit/ruleengine/ast"
)

func TestClassifyIdentifier_Input(t *testing.T) {
	assert.Equal(t, ast.NamespaceInput, ast.ClassifyIdentifier("income"))
	assert.Equal(t, ast.NamespaceInput, ast.ClassifyIdentifier("total"))
	assert.Equal(t, ast.NamespaceInput, ast.ClassifyIdentifier("loanAmount"))
}

func TestClassifyIdentifier_Constant(t *testing.T) {
	assert.Equal(t, ast.NamespaceConstant, ast.ClassifyIdentifier("MAX_INCOME"))
	assert.Equal(t, ast.NamespaceConstant, ast.ClassifyIdentifier("THRESHOLD"))
}

// A lowercase identifier only counts as Computed when it additionally
// contains an underscore or the substring "lower" — plain lowercase words
// with no such marker classify as Input instead.
func TestClassifyIdentifier_Computed(t *testing.T) {
	assert.Equal(t, ast.NamespaceComputed, ast.ClassifyIdentifier("running_total"))
	assert.Equal(t, ast.NamespaceComputed, ast.ClassifyIdentifier("lowerbound"))
}

func TestClassifyIdentifier_NoUnderscoreOrLowerIsInputNotComputed(t *testing.T) {
	assert.Equal(t, ast.NamespaceInput, ast.ClassifyIdentifier("threshold"))
}

// An identifier matching none of the three shapes (e.g. PascalCase, which
// fails the all-uppercase constant shape because of its lowercase letters
// and fails the two lowercase-starting shapes because of its uppercase
// start) classifies as Unknown.
func TestClassifyIdentifier_Unknown(t *testing.T) {
	assert.Equal(t, ast.NamespaceUnknown, ast.ClassifyIdentifier("IncomeLevel"))
	assert.Equal(t, ast.NamespaceUnknown, ast.ClassifyIdentifier("123abc"))
	assert.Equal(t, ast.NamespaceUnknown, ast.ClassifyIdentifier(""))
}

func TestNamespace_String(t *testing.T) {
	assert.Equal(t, "input", ast.NamespaceInput.String())
	assert.Equal(t, "constant", ast.NamespaceConstant.String())
	assert.Equal(t, "computed", ast.NamespaceComputed.String())
	assert.Equal(t, "unknown", ast.NamespaceUnknown.String())
}
