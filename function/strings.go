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
	"strings"

	"github.com/rulekit/ruleengine/value"
)

func callString(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "length", "len":
		s, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		return value.NumberFromInt(int64(len([]rune(s)))), nil

	case "substring", "substr":
		s, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		runes := []rune(s)
		start, _, err := numericArg(args, 1)
		if err != nil {
			return nil, err
		}
		from := clampIndex(int(start.D.IntPart()), len(runes))
		to := len(runes)
		if len(args) > 2 {
			length, _, err := numericArg(args, 2)
			if err != nil {
				return nil, err
			}
			to = clampIndex(from+int(length.D.IntPart()), len(runes))
		}
		if to < from {
			to = from
		}
		return value.String(string(runes[from:to])), nil

	case "upper", "uppercase":
		s, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		return value.String(strings.ToUpper(s)), nil

	case "lower", "lowercase":
		s, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		return value.String(strings.ToLower(s)), nil

	case "trim":
		s, isNull := stringArg(args, 0)
		if isNull {
			return value.Null{}, nil
		}
		return value.String(strings.TrimSpace(s)), nil

	case "contains", "startswith", "endswith":
		s, sNull := stringArg(args, 0)
		sub, subNull := stringArg(args, 1)
		if sNull || subNull {
			return value.Bool(false), nil
		}
		switch name {
		case "contains":
			return value.Bool(strings.Contains(s, sub)), nil
		case "startswith":
			return value.Bool(strings.HasPrefix(s, sub)), nil
		default:
			return value.Bool(strings.HasSuffix(s, sub)), nil
		}

	case "matches":
		s, sNull := stringArg(args, 0)
		pattern, patNull := stringArg(args, 1)
		if sNull || patNull {
			return value.Bool(false), nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return value.Bool(false), nil
		}
		return value.Bool(re.MatchString(s)), nil

	case "replace":
		s, sNull := stringArg(args, 0)
		old, oldNull := stringArg(args, 1)
		repl, replNull := stringArg(args, 2)
		if sNull {
			return value.Null{}, nil
		}
		if oldNull || replNull {
			return value.String(s), nil
		}
		return value.String(strings.ReplaceAll(s, old, repl)), nil

	case "starts_with":
		s, sNull := stringArg(args, 0)
		sub, subNull := stringArg(args, 1)
		if sNull || subNull {
			return value.Bool(false), nil
		}
		return value.Bool(strings.HasPrefix(s, sub)), nil

	case "ends_with":
		s, sNull := stringArg(args, 0)
		sub, subNull := stringArg(args, 1)
		if sNull || subNull {
			return value.Bool(false), nil
		}
		return value.Bool(strings.HasSuffix(s, sub)), nil

	case "length_equals", "length_greater_than", "length_less_than":
		n, err := lengthOf(args, 0)
		if err != nil {
			return nil, err
		}
		cmp, isNull, err := numericArg(args, 1)
		if err != nil {
			return nil, err
		}
		if isNull {
			return value.Bool(false), nil
		}
		target := cmp.D.IntPart()
		switch name {
		case "length_equals":
			return value.Bool(int64(n) == target), nil
		case "length_greater_than":
			return value.Bool(int64(n) > target), nil
		default:
			return value.Bool(int64(n) < target), nil
		}
	}
	return nil, errUnknownFunction(name)
}

func lengthOf(args []value.Value, i int) (int, error) {
	if i >= len(args) {
		return 0, errArgCount("length")
	}
	switch t := args[i].(type) {
	case value.String:
		return len([]rune(string(t))), nil
	case value.List:
		return len(t.Items), nil
	case value.Null:
		return 0, nil
	default:
		return 0, nil
	}
}

func clampIndex(i, length int) int {
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}
