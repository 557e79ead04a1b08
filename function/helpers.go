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
	"fmt"

	"github.com/rulekit/ruleengine/value"
)

func errEval(msg string) error { return fmt.Errorf("%s", msg) }

func errUnknownFunction(name string) error {
	return fmt.Errorf("unknown function %q", name)
}

func errArgCount(name string) error {
	return fmt.Errorf("%s: wrong number of arguments", name)
}

// numericArg coerces args[i] to Number, reporting (zero, true, nil) for a
// null argument per the pure-function null-propagation rule (spec.md §6:
// "null → null for pure functions").
func numericArg(args []value.Value, i int) (value.Number, bool, error) {
	if i >= len(args) {
		return value.Number{}, false, errArgCount("function")
	}
	if _, ok := args[i].(value.Null); ok {
		return value.Number{}, true, nil
	}
	n, err := value.AsNumber(args[i])
	return n, false, err
}

// numericArgsOrNull coerces every arg to Number; if any is null, reports
// (nil, true, nil) so the caller returns Null.
func numericArgsOrNull(args []value.Value) ([]value.Number, bool, error) {
	if len(args) == 0 {
		return nil, false, errArgCount("function")
	}
	out := make([]value.Number, 0, len(args))
	for _, a := range args {
		if _, ok := a.(value.Null); ok {
			return nil, true, nil
		}
		n, err := value.AsNumber(a)
		if err != nil {
			return nil, false, err
		}
		out = append(out, n)
	}
	return out, false, nil
}

// listArg coerces args[i] to a slice of values, treating a null or missing
// argument as an empty list.
func listArg(args []value.Value, i int) ([]value.Value, error) {
	if i >= len(args) {
		return nil, nil
	}
	switch t := args[i].(type) {
	case value.List:
		return t.Items, nil
	case value.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a list argument, got %s", args[i].Type())
	}
}

func stringArg(args []value.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	if _, ok := args[i].(value.Null); ok {
		return "", true
	}
	return string(value.AsString(args[i])), false
}
