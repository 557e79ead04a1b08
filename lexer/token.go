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

// Package lexer tokenizes DSL expression, condition, and action strings
// embedded in a rule document (spec.md §4.1, component C1). It is a
// single-pass, single-threaded, restartable tokenizer: create a new Lexer
// per string.
package lexer

// Kind enumerates the fixed set of token kinds the lexer produces.
type Kind int

const (
	EOF Kind = iota
	Identifier
	IntegerLiteral
	DecimalLiteral
	StringLiteral
	BooleanLiteral
	NullLiteral
	Punctuation
	ArithmeticOp
	ComparisonOp
	AssignmentOp
	Keyword
	ValidationOp
	NamedComparisonOp
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Identifier:
		return "identifier"
	case IntegerLiteral:
		return "integer"
	case DecimalLiteral:
		return "decimal"
	case StringLiteral:
		return "string"
	case BooleanLiteral:
		return "boolean"
	case NullLiteral:
		return "null"
	case Punctuation:
		return "punctuation"
	case ArithmeticOp:
		return "arithmetic operator"
	case ComparisonOp:
		return "comparison operator"
	case AssignmentOp:
		return "assignment operator"
	case Keyword:
		return "keyword"
	case ValidationOp:
		return "validation operator"
	case NamedComparisonOp:
		return "named comparison operator"
	}
	return "unknown"
}

// Position is a single point in the source text.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is one lexical unit. Literal is the decoded value for literals
// (string literals have escapes already resolved); Text is the raw source
// text (used for keyword/operator token matching and diagnostics).
type Token struct {
	Kind     Kind
	Text     string
	Literal  interface{}
	Start    Position
	End      Position
}

// keywords is the perfect-match keyword table; keywords and named operators
// take precedence over plain identifiers (spec.md §4.1).
var keywords = map[string]Kind{
	"when": Keyword, "then": Keyword, "else": Keyword, "if": Keyword,
	"set": Keyword, "to": Keyword, "calculate": Keyword, "as": Keyword,
	"run": Keyword, "add": Keyword, "subtract": Keyword, "multiply": Keyword,
	"divide": Keyword, "append": Keyword, "prepend": Keyword, "remove": Keyword,
	"call": Keyword, "with": Keyword, "and_store_in": Keyword, "store": Keyword,
	"in": Keyword, "forEach": Keyword, "while": Keyword, "do": Keyword,
	"circuit_breaker": Keyword, "not": Keyword, "and": Keyword, "or": Keyword,
	"true": BooleanLiteral, "false": BooleanLiteral, "null": NullLiteral,
	"between": NamedComparisonOp, "exists": Keyword,
}

var namedComparisons = map[string]Kind{
	"equals": NamedComparisonOp, "not_equals": NamedComparisonOp,
	"greater_than": NamedComparisonOp, "less_than": NamedComparisonOp,
	"at_least": NamedComparisonOp, "at_most": NamedComparisonOp,
	"greater_than_or_equal": NamedComparisonOp, "less_than_or_equal": NamedComparisonOp,
	"between": NamedComparisonOp, "not_between": NamedComparisonOp,
	"contains": NamedComparisonOp, "not_contains": NamedComparisonOp,
	"starts_with": NamedComparisonOp, "ends_with": NamedComparisonOp,
	"matches": NamedComparisonOp, "not_matches": NamedComparisonOp,
	"in_list": NamedComparisonOp, "in": NamedComparisonOp,
	"not_in_list": NamedComparisonOp, "not_in": NamedComparisonOp,
	"length_equals": NamedComparisonOp, "length_greater_than": NamedComparisonOp,
	"length_less_than": NamedComparisonOp,
	"age_at_least": NamedComparisonOp, "age_less_than": NamedComparisonOp,
}

var validationOps = map[string]bool{
	"is_null": true, "is_not_null": true, "is_empty": true, "is_not_empty": true,
	"is_numeric": true, "is_not_numeric": true, "is_number": true, "is_string": true,
	"is_boolean": true, "is_list": true, "is_email": true, "is_phone": true,
	"is_date": true, "is_positive": true, "is_negative": true, "is_zero": true,
	"is_non_zero": true, "is_percentage": true, "is_currency": true,
	"is_credit_score": true, "is_ssn": true, "is_account_number": true,
	"is_routing_number": true, "is_business_day": true, "is_weekend": true,
}
