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

import "github.com/rulekit/ruleengine/value"

func callList(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "size", "count":
		items, err := listArg(args, 0)
		if err != nil {
			return nil, err
		}
		return value.NumberFromInt(int64(len(items))), nil

	case "first":
		items, err := listArg(args, 0)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return value.Null{}, nil
		}
		return items[0], nil

	case "last":
		items, err := listArg(args, 0)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return value.Null{}, nil
		}
		return items[len(items)-1], nil

	case "in_list":
		if len(args) < 2 {
			return nil, errArgCount(name)
		}
		items, err := listArg(args, 1)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if value.Equal(args[0], it) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil

	case "__index__":
		if len(args) < 2 {
			return nil, errArgCount(name)
		}
		return indexInto(args[0], args[1]), nil

	case "__exists__":
		if len(args) < 1 {
			return nil, errArgCount(name)
		}
		_, isNull := args[0].(value.Null)
		return value.Bool(!isNull), nil
	}
	return nil, errUnknownFunction(name)
}

// indexInto implements the [n]/[key] postfix indexing operator: never
// raises, a missing key or out-of-bounds index yields Null.
func indexInto(collection, key value.Value) value.Value {
	switch c := collection.(type) {
	case value.List:
		n, err := value.AsNumber(key)
		if err != nil {
			return value.Null{}
		}
		i := int(n.D.IntPart())
		if i < 0 {
			i += len(c.Items)
		}
		if i < 0 || i >= len(c.Items) {
			return value.Null{}
		}
		return c.Items[i]
	case value.Map:
		k := string(value.AsString(key))
		v, ok := c.Entries[k]
		if !ok {
			return value.Null{}
		}
		return v
	case value.String:
		n, err := value.AsNumber(key)
		if err != nil {
			return value.Null{}
		}
		runes := []rune(string(c))
		i := int(n.D.IntPart())
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return value.Null{}
		}
		return value.String(string(runes[i]))
	default:
		return value.Null{}
	}
}
