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
	"strconv"
	"strings"

	"github.com/rulekit/ruleengine/value"
)

// callJSON implements the json_* builtins that navigate a Map/List value
// using the same dotted/bracket path syntax as the JsonPath expression node.
func callJSON(name string, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, errArgCount(name)
	}
	switch name {
	case "json_get", "json_path":
		path, _ := stringArg(args, 1)
		v, ok := NavigateJSONPath(args[0], path)
		if !ok {
			return value.Null{}, nil
		}
		return v, nil

	case "json_exists":
		path, _ := stringArg(args, 1)
		_, ok := NavigateJSONPath(args[0], path)
		return value.Bool(ok), nil

	case "json_size":
		switch t := args[0].(type) {
		case value.List:
			return value.NumberFromInt(int64(len(t.Items))), nil
		case value.Map:
			return value.NumberFromInt(int64(len(t.Entries))), nil
		case value.Null:
			return value.NumberFromInt(0), nil
		default:
			return value.NumberFromInt(1), nil
		}

	case "json_type":
		return value.String(args[0].Type()), nil
	}
	return nil, errUnknownFunction(name)
}

// NavigateJSONPath walks a dotted path with optional [n] index segments,
// e.g. "address.lines[0].zip", the same segment grammar the parser builds
// for JsonPath expression nodes. Exported so the eval package can reuse it
// for ast.JsonPath expression nodes without going through the registry.
func NavigateJSONPath(root value.Value, path string) (value.Value, bool) {
	if path == "" {
		return root, true
	}
	segments := splitJSONPath(path)
	cur := root
	for _, seg := range segments {
		key, idx, hasIdx := seg.key, seg.index, seg.hasIndex
		if key != "" {
			m, ok := cur.(value.Map)
			if !ok {
				return nil, false
			}
			v, ok := m.Entries[key]
			if !ok {
				return nil, false
			}
			cur = v
		}
		if hasIdx {
			l, ok := cur.(value.List)
			if !ok {
				return nil, false
			}
			if idx < 0 {
				idx += len(l.Items)
			}
			if idx < 0 || idx >= len(l.Items) {
				return nil, false
			}
			cur = l.Items[idx]
		}
	}
	return cur, true
}

type jsonPathSegment struct {
	key      string
	index    int
	hasIndex bool
}

func splitJSONPath(path string) []jsonPathSegment {
	var segments []jsonPathSegment
	for _, part := range strings.Split(path, ".") {
		key := part
		for {
			open := strings.IndexByte(key, '[')
			if open < 0 {
				break
			}
			close := strings.IndexByte(key[open:], ']')
			if close < 0 {
				break
			}
			close += open
			idxStr := key[open+1 : close]
			rest := key[close+1:]
			base := key[:open]
			if base != "" {
				segments = append(segments, jsonPathSegment{key: base})
			}
			if n, err := strconv.Atoi(idxStr); err == nil {
				segments = append(segments, jsonPathSegment{index: n, hasIndex: true})
			}
			key = rest
		}
		if key != "" {
			segments = append(segments, jsonPathSegment{key: key})
		}
	}
	return segments
}
