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
	"context"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/rule"
)

// RunLogic dispatches to whichever of the three logic shapes the document
// carries (spec.md §3 "Rule document", §4.6 rule-level semantics). ctx
// bounds the whole run: loop bodies check it once per iteration (spec.md §5)
// and a nil ctx is treated as never cancelled.
func (e *Evaluator) RunLogic(ctx context.Context, logic rule.Logic) error {
	switch logic.Shape {
	case rule.LogicSimple:
		return e.runSimple(ctx, logic.Simple)
	case rule.LogicStructured:
		return e.runStructured(ctx, logic.Structured)
	case rule.LogicSequence:
		return e.runSequence(ctx, logic.Sequence)
	default:
		return ErrEval.New("rule document has no evaluable logic")
	}
}

// runSimple evaluates `when: [...]` as an implicit AND of every listed
// condition, then runs `then:` or `else:`.
func (e *Evaluator) runSimple(ctx context.Context, s *rule.SimpleLogic) error {
	matched, err := e.allTrue(s.When)
	if err != nil {
		return err
	}
	if matched {
		return e.ExecActions(ctx, s.Then)
	}
	return e.ExecActions(ctx, s.Else)
}

func (e *Evaluator) runStructured(ctx context.Context, s *rule.StructuredLogic) error {
	if s.If == nil {
		return e.ExecActions(ctx, s.Then)
	}
	ok, err := e.EvalCondition(s.If)
	if err != nil {
		return err
	}
	if ok {
		return e.ExecActions(ctx, s.Then)
	}
	return e.ExecActions(ctx, s.Else)
}

// runSequence runs every sub-rule in order against the shared, accumulating
// Context, skipping any whose guard evaluates false. Execution stops early
// if the circuit breaker trips.
func (e *Evaluator) runSequence(ctx context.Context, s *rule.SequenceLogic) error {
	for _, sub := range s.Rules {
		if e.Ctx.CircuitTriggered {
			return nil
		}
		if sub.Guard != nil {
			ok, err := e.EvalCondition(sub.Guard)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		var err error
		switch {
		case sub.Simple != nil:
			err = e.runSimple(ctx, sub.Simple)
		case sub.Struct != nil:
			err = e.runStructured(ctx, sub.Struct)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) allTrue(conds []ast.Condition) (bool, error) {
	for _, c := range conds {
		ok, err := e.EvalCondition(c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
