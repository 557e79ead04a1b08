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

func callConvert(name string, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, errArgCount(name)
	}
	if _, isNull := args[0].(value.Null); isNull {
		return value.Null{}, nil
	}
	switch name {
	case "tonumber", "number":
		n, err := value.ToNumberLoose(args[0])
		if err != nil {
			return value.Null{}, nil
		}
		return n, nil
	case "tostring", "string":
		return value.ToStringLoose(args[0]), nil
	case "toboolean", "boolean":
		return value.ToBoolLoose(args[0]), nil
	}
	return nil, errUnknownFunction(name)
}
