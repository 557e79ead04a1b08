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

package value

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/shopspring/decimal"
)

// AsNumber coerces v to Number for arithmetic/comparison: a Bool becomes 1
// or 0 and a String holding a decimal literal becomes that number, so
// binary arithmetic other than string concatenation accepts a numeric
// string operand rather than rejecting it; a non-numeric string is an
// error. Null coerces to a zero-valued Number only by the caller's choice (arithmetic actions handle null
// specially; binary arithmetic propagates null to null before calling this).
func AsNumber(v Value) (Number, error) {
	switch t := v.(type) {
	case Number:
		return t, nil
	case Bool:
		if t {
			return NumberFromInt(1), nil
		}
		return NumberFromInt(0), nil
	case String:
		d, err := decimal.NewFromString(string(t))
		if err != nil {
			return Number{}, fmt.Errorf("cannot coerce string %q to number", string(t))
		}
		return Number{D: d}, nil
	case Null:
		return Number{}, fmt.Errorf("cannot coerce null to number")
	default:
		return Number{}, fmt.Errorf("cannot coerce %s to number", v.Type())
	}
}

// AsBool implements the engine's boolean-coercion rule (spec.md §4.6):
// null → false, 0 → false, "" → false, empty list → false, else true.
func AsBool(v Value) Bool {
	if v == nil {
		return Bool(false)
	}
	return Bool(v.Truthy())
}

// AsString renders v as rule-DSL text: numbers with no trailing zeros,
// booleans as true/false, null as "", lists/maps as canonical JSON.
func AsString(v Value) String {
	if v == nil {
		return String("")
	}
	return String(v.String())
}

// ToGo converts a Value to a plain Go value for interop with external
// libraries such as spf13/cast and encoding/json.
func ToGo(v Value) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		f, _ := t.D.Float64()
		return f
	case String:
		return string(t)
	case Instant:
		return t.T
	case List:
		out := make([]interface{}, len(t.Items))
		for i, e := range t.Items {
			out[i] = ToGo(e)
		}
		return out
	case Map:
		out := make(map[string]interface{}, len(t.Entries))
		for k, e := range t.Entries {
			out[k] = ToGo(e)
		}
		return out
	default:
		return nil
	}
}

// ToNumberLoose uses spf13/cast's lenient conversion rules for the
// `tonumber`/`number` builtin, which must accept a broader range of textual
// forms than strict decimal parsing (e.g. "  42 ", "1e3").
func ToNumberLoose(v Value) (Number, error) {
	if n, ok := v.(Number); ok {
		return n, nil
	}
	f, err := cast.ToFloat64E(ToGo(v))
	if err != nil {
		return Number{}, err
	}
	return NumberFromFloat(f), nil
}

// ToBoolLoose backs the `toboolean`/`boolean` builtin, accepting common
// textual forms ("yes", "1", "true") via spf13/cast before falling back to
// the engine's own truthiness rule.
func ToBoolLoose(v Value) Bool {
	if s, ok := v.(String); ok {
		if b, err := cast.ToBoolE(string(s)); err == nil {
			return Bool(b)
		}
	}
	return AsBool(v)
}

// ToStringLoose backs the `tostring`/`string` builtin.
func ToStringLoose(v Value) String {
	return AsString(v)
}
