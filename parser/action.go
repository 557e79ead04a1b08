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
	"strings"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/lexer"
)

// ActionParser parses one or more `;`-separated actions from a single DSL
// string (spec.md §4.3 Action parser). It dispatches on the first keyword.
type ActionParser struct {
	toks []lexer.Token
	pos  int
}

// NewActionParser tokenizes src and returns a parser positioned at the
// first token.
func NewActionParser(src string) (*ActionParser, error) {
	toks, err := lexer.All(src)
	if err != nil {
		return nil, err
	}
	return &ActionParser{toks: toks}, nil
}

func (p *ActionParser) cur() lexer.Token { return p.toks[p.pos] }
func (p *ActionParser) atEnd() bool      { return p.cur().Kind == lexer.EOF }
func (p *ActionParser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *ActionParser) loc(t lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: t.Start.Line, Column: t.Start.Column, Offset: t.Start.Offset}
}
func (p *ActionParser) errf(msg string) error {
	t := p.cur()
	return ErrParser.New(t.Start.Line, t.Start.Column, msg)
}
func (p *ActionParser) is(text string) bool { return strings.EqualFold(p.cur().Text, text) }
func (p *ActionParser) expect(text string) error {
	if p.is(text) {
		p.advance()
		return nil
	}
	return p.errf("expected '" + text + "', got '" + p.cur().Text + "'")
}

// expressionUntil parses a sub-expression using the remaining token slice
// up to (not including) the next occurrence, at depth 0, of any of the
// given stop keywords, then returns it along with the number of tokens
// consumed by reconstructing a fresh ExprParser over that slice.
func (p *ActionParser) expressionUntil(stops ...string) (ast.Expression, error) {
	start := p.pos
	depth := 0
	end := start
	for end < len(p.toks) {
		t := p.toks[end]
		if t.Kind == lexer.EOF {
			break
		}
		// Stop-keyword matching happens before the depth update: a closing
		// bracket passed in stops (e.g. the "]" closing a call's argument
		// list, whose "[" was already consumed by the caller) must end the
		// scan immediately rather than first decrementing depth negative.
		if depth == 0 {
			for _, s := range stops {
				if strings.EqualFold(t.Text, s) {
					goto done
				}
			}
			if t.Text == ";" {
				goto done
			}
		}
		switch t.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		end++
	}
done:
	sub := append([]lexer.Token{}, p.toks[start:end]...)
	sub = append(sub, lexer.Token{Kind: lexer.EOF})
	ep := &ExprParser{toks: sub}
	expr, err := ep.ParseExpression()
	if err != nil {
		return nil, err
	}
	p.pos = end
	return expr, nil
}

// ParseActions parses a full `;`-separated action sequence.
func (p *ActionParser) ParseActions() ([]ast.Action, error) {
	var actions []ast.Action
	for {
		a, err := p.parseOneAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
		if p.is(";") {
			p.advance()
			continue
		}
		break
	}
	if !p.atEnd() {
		return nil, p.errf("unexpected trailing input '" + p.cur().Text + "'")
	}
	return actions, nil
}

func (p *ActionParser) parseOneAction() (ast.Action, error) {
	tok := p.cur()
	switch strings.ToLower(tok.Text) {
	case "set":
		p.advance()
		v := p.advance().Text
		if err := p.expect("to"); err != nil {
			return nil, err
		}
		expr, err := p.expressionUntil("if")
		if err != nil {
			return nil, err
		}
		if p.is("if") {
			p.advance()
			cond, condErr := p.expressionUntilCondition("else")
			if condErr != nil {
				return nil, condErr
			}
			if err := p.expect("else"); err != nil {
				return nil, err
			}
			elseExpr, err := p.expressionUntil()
			if err != nil {
				return nil, err
			}
			return ast.NewConditional(p.loc(tok), ExpressionToCondition(cond),
				[]ast.Action{ast.NewSet(p.loc(tok), v, expr)},
				[]ast.Action{ast.NewSet(p.loc(tok), v, elseExpr)}), nil
		}
		return ast.NewSet(p.loc(tok), v, expr), nil

	case "calculate":
		p.advance()
		v := p.advance().Text
		if err := p.expect("as"); err != nil {
			return nil, err
		}
		expr, err := p.expressionUntil()
		if err != nil {
			return nil, err
		}
		legacy := isLegacyCalculateForm(expr)
		return ast.NewCalculate(p.loc(tok), v, expr, legacy), nil

	case "run":
		p.advance()
		v := p.advance().Text
		if err := p.expect("as"); err != nil {
			return nil, err
		}
		expr, err := p.expressionUntil()
		if err != nil {
			return nil, err
		}
		return ast.NewRun(p.loc(tok), v, expr), nil

	case "add", "subtract", "multiply", "divide":
		op := ast.ArithmeticActionOp(strings.ToLower(tok.Text))
		p.advance()
		expr, err := p.expressionUntil("to", "from", "by")
		if err != nil {
			return nil, err
		}
		prep := map[ast.ArithmeticActionOp]string{
			ast.ActAdd: "to", ast.ActSubtract: "from", ast.ActMultiply: "by", ast.ActDivide: "by",
		}[op]
		if err := p.expect(prep); err != nil {
			return nil, err
		}
		v := p.advance().Text
		return ast.NewArithmeticAction(p.loc(tok), op, v, expr), nil

	case "append", "prepend", "remove":
		op := ast.ListActionOp(strings.ToLower(tok.Text))
		p.advance()
		expr, err := p.expressionUntil("to", "from")
		if err != nil {
			return nil, err
		}
		if p.is("to") || p.is("from") {
			p.advance()
		}
		v := p.advance().Text
		return ast.NewListAction(p.loc(tok), op, v, expr), nil

	case "call":
		p.advance()
		name := p.advance().Text
		if err := p.expect("with"); err != nil {
			return nil, err
		}
		if err := p.expect("["); err != nil {
			return nil, err
		}
		var args []ast.Expression
		for !p.is("]") {
			a, err := p.expressionUntil(",", "]")
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.is(",") {
				p.advance()
			}
		}
		p.advance() // "]"
		resultVar := ""
		if p.is("and") {
			p.advance()
			if err := p.expect("store"); err != nil {
				return nil, err
			}
			if err := p.expect("in"); err != nil {
				return nil, err
			}
			resultVar = p.advance().Text
		}
		return ast.NewFunctionCallAction(p.loc(tok), name, args, resultVar), nil

	case "if":
		p.advance()
		cond, err := p.expressionUntilCondition("then")
		if err != nil {
			return nil, err
		}
		if err := p.expect("then"); err != nil {
			return nil, err
		}
		// Grammar is `if <cond> then <action> (else <action>)?`: then/else
		// each take exactly one action, unlike forEach/while/do bodies
		// which allow a `;`-chained block.
		thenAction, err := p.parseOneAction()
		if err != nil {
			return nil, err
		}
		var elseAction []ast.Action
		if p.is("else") {
			p.advance()
			e, err := p.parseOneAction()
			if err != nil {
				return nil, err
			}
			elseAction = []ast.Action{e}
		}
		return ast.NewConditional(p.loc(tok), ExpressionToCondition(cond), []ast.Action{thenAction}, elseAction), nil

	case "foreach":
		p.advance()
		itemVar := p.advance().Text
		indexVar := ""
		if p.is(",") {
			p.advance()
			indexVar = p.advance().Text
		}
		if err := p.expect("in"); err != nil {
			return nil, err
		}
		listExpr, err := p.expressionUntil(":")
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		body, err := p.parseActionOrBlockUntil()
		if err != nil {
			return nil, err
		}
		return ast.NewForEach(p.loc(tok), itemVar, indexVar, listExpr, body), nil

	case "while":
		p.advance()
		cond, err := p.expressionUntilCondition(":")
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		body, err := p.parseActionOrBlockUntil()
		if err != nil {
			return nil, err
		}
		return ast.NewWhile(p.loc(tok), ExpressionToCondition(cond), body), nil

	case "do":
		p.advance()
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		body, err := p.parseActionOrBlockUntil("while")
		if err != nil {
			return nil, err
		}
		if err := p.expect("while"); err != nil {
			return nil, err
		}
		cond, err := p.expressionUntilCondition()
		if err != nil {
			return nil, err
		}
		return ast.NewDoWhile(p.loc(tok), body, ExpressionToCondition(cond)), nil

	case "circuit_breaker":
		p.advance()
		msg, err := p.expressionUntil()
		if err != nil {
			return nil, err
		}
		return ast.NewCircuitBreaker(p.loc(tok), msg), nil
	}

	return nil, p.errf("unrecognized action keyword '" + tok.Text + "'")
}

// expressionUntilCondition is expressionUntil but folds directly through the
// full OR/AND/NOT/comparison chain (identical grammar, kept as a named
// wrapper for readability at call sites that parse a condition clause).
func (p *ActionParser) expressionUntilCondition(stops ...string) (ast.Expression, error) {
	return p.expressionUntil(stops...)
}

// parseActionOrBlockUntil parses either a single action or, when the
// remaining clause contains `;`-chained sub-actions before a stop keyword,
// the whole chain, returning it as an action slice.
func (p *ActionParser) parseActionOrBlockUntil(stops ...string) ([]ast.Action, error) {
	var actions []ast.Action
	for {
		a, err := p.parseOneAction()
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
		if p.is(";") {
			p.advance()
			if p.atEndOfBlock(stops) {
				break
			}
			continue
		}
		break
	}
	return actions, nil
}

func (p *ActionParser) atEndOfBlock(stops []string) bool {
	if p.atEnd() {
		return true
	}
	for _, s := range stops {
		if p.is(s) {
			return true
		}
	}
	return false
}

// isLegacyCalculateForm reports whether expr is a function/REST/JSON-path
// form rather than pure arithmetic (DESIGN.md Open Question 3: `calculate`
// historically doubled for `run`).
func isLegacyCalculateForm(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.FunctionCall, *ast.RestCall, *ast.JsonPath:
		return true
	default:
		return false
	}
}
