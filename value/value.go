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

// Package value implements the runtime value domain of the rule engine: the
// tagged union of null, boolean, arbitrary-precision number, string,
// date/time, list and map values that every expression produces and every
// action consumes.
package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Value is any runtime value understood by the evaluator. It is implemented
// by Null, Bool, Number, String, Instant, List and Map.
type Value interface {
	// Type names the kind for error messages and output-schema coercion.
	Type() string
	// Truthy implements the engine's boolean-coercion rule (spec.md §4.6).
	Truthy() bool
	// String renders the value the way string concatenation does.
	String() string
}

// Null is the absence of a value. A bare nil Value is never passed around;
// Null{} is used instead so type switches don't need a nil case.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) Truthy() bool   { return false }
func (Null) String() string { return "" }

// Bool is a boolean value.
type Bool bool

func (Bool) Type() string    { return "boolean" }
func (b Bool) Truthy() bool  { return bool(b) }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is an arbitrary-precision decimal. All rule arithmetic and numeric
// comparison is performed in this domain; integer/float distinctions never
// surface to rule authors.
type Number struct {
	D decimal.Decimal
}

// NewNumber wraps a decimal.Decimal as a Value.
func NewNumber(d decimal.Decimal) Number { return Number{D: d} }

// NumberFromInt builds a Number from an int64.
func NumberFromInt(i int64) Number { return Number{D: decimal.NewFromInt(i)} }

// NumberFromFloat builds a Number from a float64, as decoders (YAML/JSON) do
// at the value domain boundary.
func NumberFromFloat(f float64) Number { return Number{D: decimal.NewFromFloat(f)} }

// ParseNumber parses a decimal literal.
func ParseNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, err
	}
	return Number{D: d}, nil
}

func (Number) Type() string   { return "number" }
func (n Number) Truthy() bool { return !n.D.IsZero() }

// String renders without trailing zeros, per spec.md §4.6 string-concat rule.
func (n Number) String() string {
	return stripTrailingZeros(n.D.String())
}

// decimalPrecision is a fixed-point precision for the value domain. No code
// reads it: financial and arithmetic results are not clamped to it.
const decimalPrecision = 18

func stripTrailingZeros(s string) string {
	if !stringsContainsDot(s) {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

func stringsContainsDot(s string) bool {
	for _, c := range s {
		if c == '.' {
			return true
		}
	}
	return false
}

// String is a text value.
type String string

func (String) Type() string    { return "string" }
func (s String) Truthy() bool  { return s != "" }
func (s String) String() string { return string(s) }

// Instant is a date/time value.
type Instant struct {
	T time.Time
}

func NewInstant(t time.Time) Instant { return Instant{T: t} }

func (Instant) Type() string    { return "date" }
func (i Instant) Truthy() bool   { return true }
func (i Instant) String() string { return i.T.Format(time.RFC3339) }

// List is an ordered sequence of values.
type List struct {
	Items []Value
}

func NewList(items ...Value) List { return List{Items: items} }

func (List) Type() string   { return "list" }
func (l List) Truthy() bool { return len(l.Items) > 0 }
func (l List) String() string {
	b, _ := json.Marshal(canonicalize(l))
	return string(b)
}

// Map is a string-keyed mapping of values, used for JSON results and
// structured payloads (RestCall responses, json_* function results).
type Map struct {
	Entries map[string]Value
}

func NewMap(entries map[string]Value) Map {
	if entries == nil {
		entries = map[string]Value{}
	}
	return Map{Entries: entries}
}

func (Map) Type() string   { return "object" }
func (m Map) Truthy() bool { return len(m.Entries) > 0 }
func (m Map) String() string {
	b, _ := json.Marshal(canonicalize(m))
	return string(b)
}

// canonicalize converts a Value into a plain Go value suitable for
// json.Marshal with sorted map keys, matching the "canonical JSON" emission
// rule in spec.md §6 (caller surface).
func canonicalize(v Value) interface{} {
	switch t := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		return json.Number(stripTrailingZeros(t.D.String()))
	case String:
		return string(t)
	case Instant:
		return t.T.Format(time.RFC3339)
	case List:
		out := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			out[i] = canonicalize(item)
		}
		return out
	case Map:
		keys := make([]string, 0, len(t.Entries))
		for k := range t.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(t.Entries))
		for _, k := range keys {
			out[k] = canonicalize(t.Entries[k])
		}
		return out
	default:
		return nil
	}
}

// ToJSON marshals a Value into canonical JSON (sorted map keys).
func ToJSON(v Value) ([]byte, error) {
	return json.Marshal(canonicalize(v))
}

// Equal implements structural equality. Unlike types are never equal
// (spec.md §9 Open Question 4, §4.6): "5" == 5 is false, not an error.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av.D.Equal(bv.D)
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Instant:
		bv, ok := b.(Instant)
		return ok && av.T.Equal(bv.T)
	case List:
		bv, ok := b.(List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for k, v := range av.Entries {
			ov, ok := bv.Entries[k]
			if !ok || !Equal(v, ov) {
				return false
			}
		}
		return true
	}
	return false
}

// FromGo converts a decoded Go value (from YAML/JSON) into the Value domain.
func FromGo(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return NumberFromInt(int64(t))
	case int64:
		return NumberFromInt(t)
	case float64:
		return NumberFromFloat(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return Null{}
		}
		return Number{D: d}
	case time.Time:
		return Instant{T: t}
	case []interface{}:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromGo(e)
		}
		return List{Items: items}
	case []Value:
		return List{Items: t}
	case map[string]interface{}:
		entries := make(map[string]Value, len(t))
		for k, e := range t {
			entries[k] = FromGo(e)
		}
		return Map{Entries: entries}
	case map[interface{}]interface{}:
		entries := make(map[string]Value, len(t))
		for k, e := range t {
			entries[fmt.Sprintf("%v", k)] = FromGo(e)
		}
		return Map{Entries: entries}
	default:
		return String(fmt.Sprintf("%v", t))
	}
}
