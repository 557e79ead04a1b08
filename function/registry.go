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

// Package function implements the fixed builtin function registry
// (spec.md §6, component C6 support): math, string, date/time, list, type
// conversion, validation, financial, formatting/ID, audit, security, HTTP,
// and JSON groups, plus the synthetic names the parser emits for named
// comparison/range/string/list/length/age operators and postfix validation
// operators.
package function

// Arity bounds one function's accepted argument count. Max of -1 means
// unbounded (variadic above Min).
type Arity struct {
	Min int
	Max int // -1 = unbounded
}

// Signatures is the fixed registry of every callable name reachable from a
// FunctionCall or FunctionCallAction node, keyed by name, grouped per
// spec.md §6. Names produced internally by the parser for operators
// (contains, in_list, length_equals, __index__, __exists__, and the
// is_* validation operators) are registered here too since they reach the
// evaluator as ordinary FunctionCall nodes.
var Signatures = map[string]Arity{
	// Math
	"max": {1, -1}, "min": {1, -1}, "abs": {1, 1}, "round": {1, 2},
	"ceil": {1, 1}, "floor": {1, 1}, "sqrt": {1, 1}, "pow": {2, 2},
	"sum": {1, 1}, "avg": {1, 1}, "average": {1, 1},

	// String
	"length": {1, 1}, "len": {1, 1}, "substring": {2, 3}, "substr": {2, 3},
	"upper": {1, 1}, "uppercase": {1, 1}, "lower": {1, 1}, "lowercase": {1, 1},
	"trim": {1, 1}, "contains": {2, 2}, "startswith": {2, 2}, "endswith": {2, 2},
	"replace": {3, 3},

	// Date/time
	"now": {0, 0}, "today": {0, 0}, "dateadd": {3, 3}, "datediff": {2, 3},
	"time_hour": {1, 1}, "format_date": {1, 2}, "calculate_age": {1, 2},

	// List
	"size": {1, 1}, "count": {1, 1}, "first": {1, 1}, "last": {1, 1},

	// Type conversion
	"tonumber": {1, 1}, "number": {1, 1}, "tostring": {1, 1}, "string": {1, 1},
	"toboolean": {1, 1}, "boolean": {1, 1},

	// Validation
	"is_valid_credit_score": {1, 1}, "is_valid_ssn": {1, 1},
	"is_valid_account": {1, 1}, "is_valid_routing": {1, 1},
	"is_business_day": {1, 1}, "age_meets_requirement": {2, 2},
	"validate_email": {1, 1}, "validate_phone": {1, 1},
	"is_valid": {1, 1}, "in_range": {3, 3},

	// Financial domain
	"calculate_loan_payment": {3, 3}, "calculate_compound_interest": {3, 4},
	"calculate_amortization": {3, 3}, "calculate_apr": {3, 4},
	"calculate_credit_score": {1, 1}, "calculate_risk_score": {1, 1},
	"calculate_debt_ratio": {2, 2}, "calculate_ltv": {2, 2},
	"calculate_payment_schedule": {3, 3}, "debt_to_income_ratio": {2, 2},
	"credit_utilization": {2, 2}, "loan_to_value": {2, 2},
	"payment_history_score": {2, 2},

	// Formatting & IDs
	"format_currency": {1, 2}, "format_percentage": {1, 2},
	"generate_account_number": {0, 1}, "generate_transaction_id": {0, 0},
	"distance_between": {4, 4},

	// Audit/logging
	"audit": {1, 2}, "audit_log": {1, 2}, "log": {1, 2}, "send_notification": {2, 3},

	// Security
	"encrypt": {1, 2}, "decrypt": {1, 2}, "mask_data": {1, 2},

	// HTTP (generic dynamic-method call; rest_get/post/put/delete/patch are
	// parsed directly into ast.RestCall and never reach the registry)
	"rest_call": {2, 5},

	// JSON
	"json_get": {2, 2}, "json_path": {2, 2}, "json_exists": {2, 2},
	"json_size": {1, 1}, "json_type": {1, 1},

	// Operator-synthesized names (spec.md §4.3 parser folds these named
	// operators into FunctionCall nodes)
	"starts_with": {2, 2}, "ends_with": {2, 2}, "matches": {2, 2},
	"in_list": {2, 2}, "length_equals": {2, 2}, "length_greater_than": {2, 2},
	"length_less_than": {2, 2}, "age_at_least": {2, 2}, "age_less_than": {2, 2},
	"__index__": {2, 2}, "__exists__": {1, 1},

	// Postfix validation operators (spec.md §6 "Unary validation")
	"is_null": {1, 1}, "is_not_null": {1, 1}, "is_empty": {1, 1},
	"is_not_empty": {1, 1}, "is_numeric": {1, 1}, "is_not_numeric": {1, 1},
	"is_number": {1, 1}, "is_string": {1, 1}, "is_boolean": {1, 1},
	"is_list": {1, 1}, "is_email": {1, 1}, "is_phone": {1, 1}, "is_date": {1, 1},
	"is_positive": {1, 1}, "is_negative": {1, 1}, "is_zero": {1, 1},
	"is_non_zero": {1, 1}, "is_percentage": {1, 1}, "is_currency": {1, 1},
	"is_credit_score": {1, 1}, "is_ssn": {1, 1}, "is_account_number": {1, 1},
	"is_routing_number": {1, 1}, "is_weekend": {1, 1},
}

// Exists reports whether name is a registered callable.
func Exists(name string) bool {
	_, ok := Signatures[name]
	return ok
}

// Accepts reports whether argc is within the registered arity for name. It
// returns true for unknown names — callers should check Exists separately
// so arity mismatches and unknown-function errors are distinguishable.
func Accepts(name string, argc int) bool {
	a, ok := Signatures[name]
	if !ok {
		return true
	}
	if argc < a.Min {
		return false
	}
	if a.Max == -1 {
		return true
	}
	return argc <= a.Max
}
