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
	"regexp"

	"github.com/rulekit/ruleengine/value"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9\-\s()]{6,}[0-9]$`)
	ssnPattern     = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	accountPattern = regexp.MustCompile(`^\d{6,17}$`)
	routingPattern = regexp.MustCompile(`^\d{9}$`)
)

// callValidation implements both the named §6 validation functions and the
// postfix validation unary operators; neither ever raises (spec.md §4.6,
// §6) — a coercion failure or missing argument yields false, not an error.
func callValidation(name string, args []value.Value, rt Runtime) (value.Value, error) {
	switch name {
	case "is_null":
		return value.Bool(isNullArg(args, 0)), nil
	case "is_not_null":
		return value.Bool(!isNullArg(args, 0)), nil
	case "is_empty":
		return value.Bool(isEmptyArg(args, 0)), nil
	case "is_not_empty":
		return value.Bool(!isEmptyArg(args, 0)), nil
	case "is_numeric", "is_number":
		if isNullArg(args, 0) {
			return value.Bool(false), nil
		}
		_, err := value.AsNumber(args[0])
		return value.Bool(err == nil), nil
	case "is_not_numeric":
		if isNullArg(args, 0) {
			return value.Bool(true), nil
		}
		_, err := value.AsNumber(args[0])
		return value.Bool(err != nil), nil
	case "is_string":
		_, ok := valueAt(args, 0).(value.String)
		return value.Bool(ok), nil
	case "is_boolean":
		_, ok := valueAt(args, 0).(value.Bool)
		return value.Bool(ok), nil
	case "is_list":
		_, ok := valueAt(args, 0).(value.List)
		return value.Bool(ok), nil
	case "is_date":
		_, ok := valueAt(args, 0).(value.Instant)
		return value.Bool(ok), nil
	case "is_email", "validate_email":
		s, isNull := stringArg(args, 0)
		return value.Bool(!isNull && emailPattern.MatchString(s)), nil
	case "is_phone", "validate_phone":
		s, isNull := stringArg(args, 0)
		return value.Bool(!isNull && phonePattern.MatchString(s)), nil
	case "is_positive":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(n.D.IsPositive()), nil
	case "is_negative":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(n.D.IsNegative()), nil
	case "is_zero":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(n.D.IsZero()), nil
	case "is_non_zero":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(!n.D.IsZero()), nil
	case "is_percentage":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		f, _ := n.D.Float64()
		return value.Bool(f >= 0 && f <= 100), nil
	case "is_currency":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(n.D.Exponent() >= -4), nil
	case "is_credit_score", "is_valid_credit_score":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		f, _ := n.D.Float64()
		return value.Bool(f >= 300 && f <= 850), nil
	case "is_ssn", "is_valid_ssn":
		s, isNull := stringArg(args, 0)
		return value.Bool(!isNull && ssnPattern.MatchString(s)), nil
	case "is_account_number", "is_valid_account":
		s, isNull := stringArg(args, 0)
		return value.Bool(!isNull && accountPattern.MatchString(s)), nil
	case "is_routing_number", "is_valid_routing":
		s, isNull := stringArg(args, 0)
		return value.Bool(!isNull && routingPattern.MatchString(s) && routingChecksumValid(s)), nil
	case "is_business_day":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(isBusinessDay(t)), nil
	case "is_weekend":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		return value.Bool(isWeekend(t)), nil
	case "age_at_least", "age_less_than", "age_meets_requirement":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Bool(false), nil
		}
		n, nNull, err := numericArg(args, 1)
		if err != nil || nNull {
			return value.Bool(false), nil
		}
		age := ageInYears(t, rt.Now())
		threshold := int(n.D.IntPart())
		if name == "age_less_than" {
			return value.Bool(age < threshold), nil
		}
		return value.Bool(age >= threshold), nil
	case "is_valid":
		return value.Bool(!isNullArg(args, 0)), nil
	case "in_range":
		n, nNull, err := numericArg(args, 0)
		if err != nil {
			return value.Bool(false), nil
		}
		lo, loNull, err := numericArg(args, 1)
		if err != nil {
			return value.Bool(false), nil
		}
		hi, hiNull, err := numericArg(args, 2)
		if err != nil {
			return value.Bool(false), nil
		}
		if nNull || loNull || hiNull {
			return value.Bool(false), nil
		}
		return value.Bool(!n.D.LessThan(lo.D) && !n.D.GreaterThan(hi.D)), nil
	}
	return nil, errUnknownFunction(name)
}

func valueAt(args []value.Value, i int) value.Value {
	if i >= len(args) || args[i] == nil {
		return value.Null{}
	}
	return args[i]
}

func isNullArg(args []value.Value, i int) bool {
	_, ok := valueAt(args, i).(value.Null)
	return ok
}

func isEmptyArg(args []value.Value, i int) bool {
	v := valueAt(args, i)
	switch t := v.(type) {
	case value.Null:
		return true
	case value.String:
		return t == ""
	case value.List:
		return len(t.Items) == 0
	case value.Map:
		return len(t.Entries) == 0
	default:
		return false
	}
}

// routingChecksumValid applies the standard ABA routing-number checksum:
// 3*(d1+d4+d7) + 7*(d2+d5+d8) + (d3+d6+d9) must be a multiple of 10.
func routingChecksumValid(s string) bool {
	if len(s) != 9 {
		return false
	}
	digits := make([]int, 9)
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}
	sum := 3*(digits[0]+digits[3]+digits[6]) + 7*(digits[1]+digits[4]+digits[7]) + (digits[2] + digits[5] + digits[8])
	return sum%10 == 0
}
