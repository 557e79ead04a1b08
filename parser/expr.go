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

// Package parser implements the DSL's recursive-descent parsers (spec.md
// §4.3, component C3): the YAML-to-structural conversion, and the
// expression/condition/action sub-parsers that walk the lexer's token
// stream with precedence climbing.
package parser

import (
	"strconv"
	"strings"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/lexer"
	"github.com/rulekit/ruleengine/value"
)

// ExprParser is a recursive-descent, precedence-climbing parser over a
// lexer token stream. One ExprParser is constructed per DSL string; it is
// not safe for concurrent use.
type ExprParser struct {
	toks []lexer.Token
	pos  int
}

// NewExprParser tokenizes src up front (it is always short — a single rule
// clause) and returns a parser positioned at the first token.
func NewExprParser(src string) (*ExprParser, error) {
	toks, err := lexer.All(src)
	if err != nil {
		return nil, err
	}
	return &ExprParser{toks: toks}, nil
}

func (p *ExprParser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *ExprParser) atEnd() bool       { return p.cur().Kind == lexer.EOF }
func (p *ExprParser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *ExprParser) loc(t lexer.Token) ast.SourceLocation {
	return ast.SourceLocation{Line: t.Start.Line, Column: t.Start.Column, Offset: t.Start.Offset, Length: t.End.Offset - t.Start.Offset}
}

func (p *ExprParser) errf(msg string) error {
	t := p.cur()
	return ErrParser.New(t.Start.Line, t.Start.Column, msg)
}

func (p *ExprParser) expectText(text string) error {
	if strings.EqualFold(p.cur().Text, text) {
		p.advance()
		return nil
	}
	return p.errf("expected '" + text + "', got '" + p.cur().Text + "'")
}

// ParseExpression parses a full expression and requires the token stream be
// fully consumed (EOF reached).
func (p *ExprParser) ParseExpression() (ast.Expression, error) {
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errf("unexpected trailing input '" + p.cur().Text + "'")
	}
	return e, nil
}

// Precedence level 1: logical OR.
func (p *ExprParser) parseOr() (ast.Expression, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lexer.Keyword && strings.EqualFold(p.cur().Text, "or") {
		tok := p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinary(p.loc(tok), ast.OpOr, lhs, rhs)
	}
	return lhs, nil
}

// Precedence level 2: logical AND.
func (p *ExprParser) parseAnd() (ast.Expression, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lexer.Keyword && strings.EqualFold(p.cur().Text, "and") {
		tok := p.advance()
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lhs = ast.NewBinary(p.loc(tok), ast.OpAnd, lhs, rhs)
	}
	return lhs, nil
}

// Precedence level 3: prefix logical NOT.
func (p *ExprParser) parseNot() (ast.Expression, error) {
	if p.cur().Kind == lexer.Keyword && strings.EqualFold(p.cur().Text, "not") {
		tok := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(p.loc(tok), ast.UnaryNot, operand), nil
	}
	return p.parseComparison()
}

var binaryCompareOps = map[string]ast.BinaryOp{
	"==": ast.OpEq, "!=": ast.OpNeq, "<": ast.OpLt, ">": ast.OpGt,
	"<=": ast.OpLte, ">=": ast.OpGte,
	"equals": ast.OpEq, "not_equals": ast.OpNeq,
	"greater_than": ast.OpGt, "less_than": ast.OpLt,
	"at_least": ast.OpGte, "at_most": ast.OpLte,
	"greater_than_or_equal": ast.OpGte, "less_than_or_equal": ast.OpLte,
}

// Precedence level 4: comparison, `between a and b`, named comparisons, and
// postfix validation operators.
func (p *ExprParser) parseComparison() (ast.Expression, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	// Postfix validation operators (is_positive, is_email, ...) bind here;
	// zero or more may chain, each wrapping the previous result.
	for p.cur().Kind == lexer.ValidationOp {
		tok := p.advance()
		lhs = ast.NewFunctionCall(p.loc(tok), tok.Text, []ast.Expression{lhs})
	}

	text := strings.ToLower(p.cur().Text)
	if text == "between" || text == "not_between" {
		tok := p.advance()
		low, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		// "and" here is a lexical piece of `between`, not the logical
		// operator (spec.md §4.3 tie-break): consume it directly.
		if !(p.cur().Kind == lexer.Keyword && strings.EqualFold(p.cur().Text, "and")) {
			return nil, p.errf("expected 'and' in between expression")
		}
		p.advance()
		high, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		b := ast.NewBinary(p.loc(tok), ast.OpBetween, lhs, low)
		b.BetweenHigh = high
		if text == "not_between" {
			return ast.NewUnary(p.loc(tok), ast.UnaryNot, b), nil
		}
		return b, nil
	}

	if op, ok := binaryCompareOps[text]; ok || isSymbolCompare(p.cur()) {
		if !ok {
			op = binaryCompareOps[p.cur().Text]
		}
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(p.loc(tok), op, lhs, rhs), nil
	}

	switch text {
	case "in_list", "in":
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionCall(p.loc(tok), "in_list", []ast.Expression{lhs, rhs}), nil
	case "not_in_list", "not_in":
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		fc := ast.NewFunctionCall(p.loc(tok), "in_list", []ast.Expression{lhs, rhs})
		return ast.NewUnary(p.loc(tok), ast.UnaryNot, fc), nil
	case "contains", "not_contains", "starts_with", "ends_with", "matches", "not_matches":
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		name := strings.TrimPrefix(text, "not_")
		fc := ast.NewFunctionCall(p.loc(tok), name, []ast.Expression{lhs, rhs})
		if strings.HasPrefix(text, "not_") {
			return ast.NewUnary(p.loc(tok), ast.UnaryNot, fc), nil
		}
		return fc, nil
	case "length_equals", "length_greater_than", "length_less_than":
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionCall(p.loc(tok), text, []ast.Expression{lhs, rhs}), nil
	case "age_at_least", "age_less_than":
		tok := p.advance()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionCall(p.loc(tok), text, []ast.Expression{lhs, rhs}), nil
	}

	return lhs, nil
}

func isSymbolCompare(t lexer.Token) bool {
	_, ok := binaryCompareOps[t.Text]
	return ok && t.Kind == lexer.ComparisonOp
}

// Precedence level 5: additive +, -.
func (p *ExprParser) parseAdditive() (ast.Expression, error) {
	operands := []ast.Expression{}
	operators := []ast.BinaryOp{}
	first, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	operands = append(operands, first)
	for p.cur().Text == "+" || p.cur().Text == "-" {
		op := ast.BinaryOp(p.advance().Text)
		next, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		operators = append(operators, op)
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return ast.NewArithmetic(operands[0].Loc(), operands, operators), nil
}

// Precedence level 6: multiplicative *, /, %.
func (p *ExprParser) parseMultiplicative() (ast.Expression, error) {
	operands := []ast.Expression{}
	operators := []ast.BinaryOp{}
	first, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	operands = append(operands, first)
	for p.cur().Text == "*" || p.cur().Text == "/" || p.cur().Text == "%" {
		op := ast.BinaryOp(p.advance().Text)
		next, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		operators = append(operators, op)
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return ast.NewArithmetic(operands[0].Loc(), operands, operators), nil
}

// Precedence level 7: exponentiation **, right-associative, tighter than
// unary sign (spec.md §4.3 tie-break: `-x ** y` parses as `-(x ** y)`).
func (p *ExprParser) parseExponent() (ast.Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.cur().Text == "**" {
		tok := p.advance()
		rhs, err := p.parseExponent() // right-associative
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(p.loc(tok), ast.OpPow, lhs, rhs), nil
	}
	return lhs, nil
}

// Precedence level 8: unary prefix -, +, not. Binds exponentiation inside
// it, never the reverse.
func (p *ExprParser) parseUnary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Text {
	case "-":
		p.advance()
		operand, err := p.parseExponentForUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(p.loc(tok), ast.UnaryNeg, operand), nil
	case "+":
		p.advance()
		operand, err := p.parseExponentForUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnary(p.loc(tok), ast.UnaryPos, operand), nil
	}
	return p.parsePostfix()
}

// parseExponentForUnary lets `-x ** y` bind as `-(x ** y)`: the unary
// operand recurses through exponentiation before returning to unary.
func (p *ExprParser) parseExponentForUnary() (ast.Expression, error) {
	lhs, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur().Text == "**" {
		tok := p.advance()
		rhs, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(p.loc(tok), ast.OpPow, lhs, rhs), nil
	}
	return lhs, nil
}

// Precedence level 9: postfix function call and index.
func (p *ExprParser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if p.cur().Text == "(" {
			if v, ok := expr.(*ast.Variable); ok {
				p.advance()
				args, err := p.parseArgList(")")
				if err != nil {
					return nil, err
				}
				if method, ok := restMethods[v.Name]; ok {
					expr = buildRestCall(v.Loc(), method, args)
				} else {
					expr = ast.NewFunctionCall(v.Loc(), v.Name, args)
				}
				continue
			}
			break
		}
		if p.cur().Text == "[" {
			tok := p.advance()
			idx, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectText("]"); err != nil {
				return nil, err
			}
			expr = ast.NewFunctionCall(p.loc(tok), "__index__", []ast.Expression{expr, idx})
			continue
		}
		if p.cur().Text == "." {
			p.advance()
			field := p.advance()
			expr = ast.NewJsonPath(p.loc(field), expr, field.Text)
			continue
		}
		break
	}
	return expr, nil
}

func (p *ExprParser) parseArgList(closer string) ([]ast.Expression, error) {
	var args []ast.Expression
	if p.cur().Text == closer {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Text == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectText(closer); err != nil {
		return nil, err
	}
	return args, nil
}

// Precedence level 10: literal, variable, parenthesized, list literal.
func (p *ExprParser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.IntegerLiteral, lexer.DecimalLiteral:
		p.advance()
		n, err := value.ParseNumber(tok.Text)
		if err != nil {
			return nil, p.errf("invalid numeric literal '" + tok.Text + "'")
		}
		return ast.NewLiteral(p.loc(tok), n), nil
	case lexer.StringLiteral:
		p.advance()
		return ast.NewLiteral(p.loc(tok), value.String(tok.Literal.(string))), nil
	case lexer.BooleanLiteral:
		p.advance()
		return ast.NewLiteral(p.loc(tok), value.Bool(tok.Literal.(bool))), nil
	case lexer.NullLiteral:
		p.advance()
		return ast.NewLiteral(p.loc(tok), value.Null{}), nil
	case lexer.Identifier:
		p.advance()
		return ast.NewVariable(p.loc(tok), tok.Text), nil
	case lexer.Keyword:
		if tok.Text == "exists" {
			p.advance()
			operand, err := p.parsePostfix()
			if err != nil {
				return nil, err
			}
			return ast.NewFunctionCall(p.loc(tok), "__exists__", []ast.Expression{operand}), nil
		}
	}
	if tok.Text == "(" {
		p.advance()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expectText(")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	if tok.Text == "[" {
		p.advance()
		elems, err := p.parseArgList("]")
		if err != nil {
			return nil, err
		}
		return ast.NewList(p.loc(tok), elems), nil
	}
	return nil, p.errf("unexpected token '" + tok.Text + "'")
}

// parseIntLiteral is a small helper used by the action parser for index
// literals in error messages.
func parseIntLiteral(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// restMethods maps the `rest_*` builtin names to HTTP methods so the parser
// can build a dedicated ast.RestCall node (spec.md §3 AST node hierarchy),
// rather than a generic FunctionCall, whenever one of these is invoked.
var restMethods = map[string]string{
	"rest_get": "GET", "rest_post": "POST", "rest_put": "PUT",
	"rest_delete": "DELETE", "rest_patch": "PATCH",
}

// buildRestCall maps the positional rest_* call arguments
// (url, body?, headers?, timeout?) onto an ast.RestCall. `rest_call` itself
// (method as first argument) is left as a plain FunctionCall and handled by
// the function registry, since its method is dynamic rather than fixed by
// the call name.
func buildRestCall(loc ast.SourceLocation, method string, args []ast.Expression) ast.Expression {
	var url, body, headers, timeout ast.Expression
	if len(args) > 0 {
		url = args[0]
	}
	if len(args) > 1 {
		body = args[1]
	}
	if len(args) > 2 {
		headers = args[2]
	}
	if len(args) > 3 {
		timeout = args[3]
	}
	return ast.NewRestCall(loc, method, url, body, headers, timeout)
}
