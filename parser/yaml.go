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

package parser

import (
	"fmt"

	yaml "gopkg.in/yaml.v2"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/rule"
	"github.com/rulekit/ruleengine/value"
)

// knownTopLevelKeys is used to emit validation warnings (not errors) for
// unrecognized keys, per spec.md §4.3.
var knownTopLevelKeys = map[string]bool{
	"name": true, "description": true, "inputs": true, "constants": true,
	"when": true, "then": true, "else": true, "conditions": true,
	"rules": true, "output": true, "circuit_breaker": true, "metadata": true,
	"version": true, "tags": true, "author": true, "category": true,
	"risk_level": true, "priority": true,
}

// Warning is a non-fatal issue surfaced by the structural parser (unknown
// keys) that the validator folds into its issue list.
type Warning struct {
	Code    string
	Message string
}

// ParseYAML parses a rule document's YAML text into the generic
// mapping/list/scalar tree, then converts it into the structural Document
// (spec.md §4.3 YAML-to-structural parser). Unknown keys produce Warnings
// but never fail parsing.
func ParseYAML(text string) (*rule.Document, []Warning, error) {
	var generic map[string]interface{}
	if err := yaml.Unmarshal([]byte(text), &generic); err != nil {
		return nil, nil, ErrStructure.New("invalid YAML: " + err.Error())
	}
	generic = normalizeKeys(generic)

	var warnings []Warning
	for k := range generic {
		if !knownTopLevelKeys[k] {
			warnings = append(warnings, Warning{Code: "unknown_key", Message: "unrecognized top-level key: " + k})
		}
	}

	doc := &rule.Document{RawText: text}
	doc.Metadata = map[string]interface{}{}
	for _, k := range []string{"name", "description", "version", "tags", "author", "category", "risk_level", "priority"} {
		if v, ok := generic[k]; ok {
			doc.Metadata[k] = v
		}
	}
	if m, ok := generic["metadata"].(map[string]interface{}); ok {
		for k, v := range m {
			doc.Metadata[k] = v
		}
	}

	if inputsRaw, ok := generic["inputs"].([]interface{}); ok {
		for _, i := range inputsRaw {
			if s, ok := i.(string); ok {
				doc.Inputs = append(doc.Inputs, s)
			}
		}
	}

	if constantsRaw, ok := generic["constants"].([]interface{}); ok {
		for _, c := range constantsRaw {
			cm, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := cm["name"].(string)
			doc.Constants = append(doc.Constants, rule.ConstantDefault{
				Name:    name,
				Default: value.FromGo(cm["default"]),
			})
		}
	}

	if outRaw, ok := generic["output"].(map[string]interface{}); ok {
		doc.OutputSchema = map[string]rule.OutputType{}
		for k, v := range outRaw {
			if s, ok := v.(string); ok {
				doc.OutputSchema[k] = rule.OutputType(s)
			}
		}
	}

	if cbRaw, ok := generic["circuit_breaker"].(map[string]interface{}); ok {
		cfg := &rule.CircuitConfig{}
		if v, ok := cbRaw["enabled"].(bool); ok {
			cfg.Enabled = v
		}
		if v, ok := cbRaw["failure_threshold"].(int); ok {
			cfg.FailureThreshold = v
		}
		if v, ok := cbRaw["timeout_duration"].(int); ok {
			cfg.TimeoutDuration = int64(v)
		}
		if v, ok := cbRaw["recovery_timeout"].(int); ok {
			cfg.RecoveryTimeout = int64(v)
		}
		doc.CircuitConfig = cfg
	}

	logic, err := parseLogic(generic)
	if err != nil {
		return nil, warnings, err
	}
	doc.Logic = logic

	return doc, warnings, nil
}

// parseLogic extracts the logic shapes present in the generic tree (spec.md
// §3 "logic"): each one found is filled in, and Shape names the first of
// simple, structured, sequence that is present. Mixing shapes is allowed at the parse
// stage (a WARNING, not an ERROR — see DESIGN.md Open Question 1 for the
// validator-level tightening of "ambiguous" mixes).
func parseLogic(generic map[string]interface{}) (rule.Logic, error) {
	_, hasWhen := generic["when"]
	_, hasThen := generic["then"]
	_, hasConditions := generic["conditions"]
	_, hasRules := generic["rules"]

	var logic rule.Logic

	if hasWhen || hasThen {
		simple, err := parseSimpleLogic(generic)
		if err != nil {
			return logic, err
		}
		logic.Shape = rule.LogicSimple
		logic.Simple = simple
	}
	if hasConditions {
		structured, err := parseStructuredLogic(generic)
		if err != nil {
			return logic, err
		}
		if logic.Shape == rule.LogicNone {
			logic.Shape = rule.LogicStructured
		}
		logic.Structured = structured
	}
	if hasRules {
		seq, err := parseSequenceLogic(generic)
		if err != nil {
			return logic, err
		}
		if logic.Shape == rule.LogicNone {
			logic.Shape = rule.LogicSequence
		}
		logic.Sequence = seq
	}
	if logic.Shape == rule.LogicNone {
		return logic, ErrStructure.New("rule document has no when/then, conditions, or rules block")
	}
	return logic, nil
}

func parseSimpleLogic(generic map[string]interface{}) (*rule.SimpleLogic, error) {
	s := &rule.SimpleLogic{}
	whenList, _ := generic["when"].([]interface{})
	for _, w := range whenList {
		str, ok := w.(string)
		if !ok {
			return nil, ErrStructure.New("when entries must be strings")
		}
		c, err := ParseCondition(str)
		if err != nil {
			return nil, err
		}
		s.When = append(s.When, c)
	}
	then, err := parseActionList(generic["then"])
	if err != nil {
		return nil, err
	}
	s.Then = then
	els, err := parseActionList(generic["else"])
	if err != nil {
		return nil, err
	}
	s.Else = els
	return s, nil
}

func parseStructuredLogic(generic map[string]interface{}) (*rule.StructuredLogic, error) {
	sl := &rule.StructuredLogic{}
	condNode, ok := generic["conditions"]
	if !ok {
		return sl, nil
	}
	cond, err := ParseStructuredCondition(condNode)
	if err != nil {
		return nil, err
	}
	sl.If = cond
	then, err := parseActionList(generic["then"])
	if err != nil {
		return nil, err
	}
	sl.Then = then
	els, err := parseActionList(generic["else"])
	if err != nil {
		return nil, err
	}
	sl.Else = els
	return sl, nil
}

func parseSequenceLogic(generic map[string]interface{}) (*rule.SequenceLogic, error) {
	seq := &rule.SequenceLogic{}
	rulesRaw, ok := generic["rules"].([]interface{})
	if !ok {
		return seq, nil
	}
	for _, r := range rulesRaw {
		rm, ok := r.(map[string]interface{})
		if !ok {
			return nil, ErrStructure.New("rules entries must be mappings")
		}
		sub := rule.SubRule{}
		if name, ok := rm["name"].(string); ok {
			sub.Name = name
		}
		if whenStr, ok := rm["when"].(string); ok {
			c, err := ParseCondition(whenStr)
			if err != nil {
				return nil, err
			}
			sub.Guard = c
		} else if whenList, ok := rm["when"].([]interface{}); ok {
			var conds []ast.Condition
			for _, w := range whenList {
				str, _ := w.(string)
				c, err := ParseCondition(str)
				if err != nil {
					return nil, err
				}
				conds = append(conds, c)
			}
			if len(conds) > 0 {
				sub.Guard = ast.NewLogical(ast.SourceLocation{}, ast.LogicalAnd, conds)
			}
		}
		if _, hasConditions := rm["conditions"]; hasConditions {
			structured, err := parseStructuredLogic(rm)
			if err != nil {
				return nil, err
			}
			sub.Struct = structured
		} else {
			simple, err := parseSimpleLogic(rm)
			if err != nil {
				return nil, err
			}
			sub.Simple = simple
		}
		seq.Rules = append(seq.Rules, sub)
	}
	return seq, nil
}

func parseActionList(node interface{}) ([]ast.Action, error) {
	items, ok := node.([]interface{})
	if !ok {
		return nil, nil
	}
	var actions []ast.Action
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, ErrStructure.New(fmt.Sprintf("action entries must be strings, got %T", item))
		}
		p, err := NewActionParser(str)
		if err != nil {
			return nil, err
		}
		parsed, err := p.ParseActions()
		if err != nil {
			return nil, err
		}
		actions = append(actions, parsed...)
	}
	return actions, nil
}

// normalizeKeys recursively converts yaml.v2's map[interface{}]interface{}
// decoding into map[string]interface{} so the rest of the parser (and the
// structural-condition parser) can use plain string-keyed maps uniformly.
func normalizeKeys(v interface{}) map[string]interface{} {
	out, _ := normalize(v).(map[string]interface{})
	return out
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalize(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
