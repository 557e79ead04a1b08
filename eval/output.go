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

package eval

import (
	"github.com/rulekit/ruleengine/rule"
	"github.com/rulekit/ruleengine/value"
)

// BuildOutput reads one computed value per declared output-schema field,
// coercing it toward the declared type. A missing computed value yields
// null for that field rather than an error — the validator, not the
// evaluator, is responsible for flagging rules that never set a declared
// output.
func (e *Evaluator) BuildOutput(doc *rule.Document) map[string]value.Value {
	out := make(map[string]value.Value, len(doc.OutputSchema))
	for field, typ := range doc.OutputSchema {
		out[field] = coerceOutput(e.Ctx.Lookup(field), typ)
	}
	return out
}

func coerceOutput(v value.Value, typ rule.OutputType) value.Value {
	if _, isNull := v.(value.Null); isNull {
		return v
	}
	switch typ {
	case rule.OutputBoolean:
		return value.AsBool(v)
	case rule.OutputNumber:
		if n, err := value.AsNumber(v); err == nil {
			return n
		}
		return v
	case rule.OutputText:
		return value.AsString(v)
	default:
		return v
	}
}
