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

package function

import (
	"time"

	"github.com/rulekit/ruleengine/value"
)

const defaultRestTimeout = 5 * time.Second

// Call dispatches a builtin function by name. It is the single entry point
// the evaluator uses for every FunctionCall and FunctionCallAction node,
// including names the parser synthesizes for operators and postfix
// validation. Unknown names and arity mismatches are validator-time
// concerns (see the validator package); Call itself still guards arg count
// defensively since it can be reached directly by tests.
func Call(name string, args []value.Value, rt Runtime) (value.Value, error) {
	if !Exists(name) {
		return nil, errUnknownFunction(name)
	}
	if !Accepts(name, len(args)) {
		return nil, errArgCount(name)
	}

	switch name {
	case "max", "min", "abs", "round", "ceil", "floor", "sqrt", "pow", "sum", "avg", "average":
		return callMath(name, args)

	case "length", "len", "substring", "substr", "upper", "uppercase", "lower", "lowercase",
		"trim", "contains", "startswith", "endswith", "replace", "starts_with", "ends_with",
		"matches", "length_equals", "length_greater_than", "length_less_than":
		return callString(name, args)

	case "now", "today", "dateadd", "datediff", "time_hour", "format_date", "calculate_age":
		return callDateTime(name, args, rt)

	case "size", "count", "first", "last", "in_list", "__index__", "__exists__":
		return callList(name, args)

	case "tonumber", "number", "tostring", "string", "toboolean", "boolean":
		return callConvert(name, args)

	case "is_valid_credit_score", "is_valid_ssn", "is_valid_account", "is_valid_routing",
		"is_business_day", "age_meets_requirement", "validate_email", "validate_phone",
		"is_valid", "in_range", "age_at_least", "age_less_than",
		"is_null", "is_not_null", "is_empty", "is_not_empty", "is_numeric", "is_not_numeric",
		"is_number", "is_string", "is_boolean", "is_list", "is_email", "is_phone", "is_date",
		"is_positive", "is_negative", "is_zero", "is_non_zero", "is_percentage", "is_currency",
		"is_credit_score", "is_ssn", "is_account_number", "is_routing_number", "is_weekend":
		return callValidation(name, args, rt)

	case "calculate_loan_payment", "calculate_compound_interest", "calculate_amortization",
		"calculate_apr", "calculate_credit_score", "calculate_risk_score", "calculate_debt_ratio",
		"calculate_ltv", "calculate_payment_schedule", "debt_to_income_ratio",
		"credit_utilization", "loan_to_value", "payment_history_score":
		return callFinancial(name, args)

	case "format_currency", "format_percentage", "generate_account_number",
		"generate_transaction_id", "distance_between":
		return callFormat(name, args)

	case "audit", "audit_log", "log", "send_notification":
		return callAudit(name, args, rt)

	case "encrypt", "decrypt", "mask_data":
		return callSecurity(name, args)

	case "rest_call":
		return callRest(args, rt)

	case "json_get", "json_path", "json_exists", "json_size", "json_type":
		return callJSON(name, args)
	}
	return nil, errUnknownFunction(name)
}

// callRest implements the generic rest_call(method, url[, headers[, body[, timeoutSeconds]]])
// builtin. Like the RestCall expression node, it never raises on transport
// failure: it materializes as a map with a status field and an error detail
// instead (spec.md §4.6 RestCall semantics).
func callRest(args []value.Value, rt Runtime) (value.Value, error) {
	method, _ := stringArg(args, 0)
	url, _ := stringArg(args, 1)

	headers := map[string]string{}
	if len(args) > 2 {
		if m, ok := args[2].(value.Map); ok {
			for k, v := range m.Entries {
				headers[k] = string(value.AsString(v))
			}
		}
	}

	var body value.Value = value.Null{}
	if len(args) > 3 {
		body = args[3]
	}

	timeout := defaultRestTimeout
	if len(args) > 4 {
		if n, isNull, err := numericArg(args, 4); err == nil && !isNull {
			timeout = time.Duration(n.D.IntPart()) * time.Second
		}
	}

	status, respBody, err := rt.HTTPRequest(method, url, headers, body, timeout)
	if err != nil {
		return value.NewMap(map[string]value.Value{
			"status": value.NumberFromInt(0),
			"error":  value.String(err.Error()),
			"body":   value.Null{},
		}), nil
	}
	return value.NewMap(map[string]value.Value{
		"status": value.NumberFromInt(int64(status)),
		"error":  value.Null{},
		"body":   respBody,
	}), nil
}
