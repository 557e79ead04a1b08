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

// Package validator implements the semantic validator (spec.md §4.4,
// component C4): a single AST traversal that collects severity-ranked
// issues, checks reference resolution against the three-layer namespace,
// checks operator/function registry membership and arity, flags naming
// convention violations, and computes a numeric quality score.
package validator

import (
	"sort"
	"time"

	"github.com/rulekit/ruleengine/ast"
	"github.com/rulekit/ruleengine/function"
	"github.com/rulekit/ruleengine/parser"
	"github.com/rulekit/ruleengine/rule"
)

// Severity is one of the four validation severity bands.
type Severity string

const (
	Info     Severity = "INFO"
	Warning  Severity = "WARNING"
	Error    Severity = "ERROR"
	Critical Severity = "CRITICAL"
)

// Category buckets an Issue into the validation result's four issue lists.
type Category string

const (
	CategorySyntax       Category = "syntax"
	CategoryNaming       Category = "naming"
	CategoryLogic        Category = "logic"
	CategoryBestPractice Category = "best_practices"
)

// Location pinpoints an issue within the rule text.
type Location struct {
	Path    string
	Line    int
	Column  int
	Snippet string
}

// Issue is a single validation finding.
type Issue struct {
	Code        string
	Severity    Severity
	Category    Category
	Description string
	Message     string
	Location    Location
	Suggestion  string
}

// Summary tallies issues by severity and holds the computed quality score.
type Summary struct {
	TotalIssues int
	Critical    int
	Errors      int
	Warnings    int
	Suggestions int // INFO count
	QualityScore int
}

// Report is the full validation result (spec.md "Validation result format").
type Report struct {
	Status           string // "valid" | "invalid"
	Summary          Summary
	Syntax           []Issue
	Naming           []Issue
	Logic            []Issue
	BestPractices    []Issue
	ValidatedAt      time.Time
	ValidationTimeMs int64
}

// Blocking reports whether the report contains an ERROR or CRITICAL issue,
// per spec.md §4.4 ("Validation stops evaluation only if any ERROR or
// CRITICAL is raised").
func (r *Report) Blocking() bool {
	return r.Summary.Critical > 0 || r.Summary.Errors > 0
}

// validRiskLevels is the fixed set of acceptable risk_level metadata values.
var validRiskLevels = map[string]bool{"LOW": true, "MEDIUM": true, "HIGH": true, "CRITICAL": true}

// Validate runs every check of spec.md §4.4 against doc and returns a
// Report. parseWarnings carries forward any unknown-top-level-key warnings
// the YAML structural parser already collected.
func Validate(doc *rule.Document, parseWarnings []parser.Warning) *Report {
	start := time.Now()
	v := &validator{doc: doc}

	v.checkRequiredKeys()
	v.checkMixedShapes()
	v.checkMetadataTypes()
	v.checkNamingConventions()
	v.walkLogicForReferences()

	for _, w := range parseWarnings {
		v.add(Issue{Code: w.Code, Severity: Warning, Category: CategoryBestPractice, Message: w.Message})
	}

	report := &Report{
		Syntax: v.syntax, Naming: v.naming, Logic: v.logic, BestPractices: v.best,
		ValidatedAt: start, ValidationTimeMs: time.Since(start).Milliseconds(),
	}
	report.Summary = summarize(v.all())
	if report.Blocking() {
		report.Status = "invalid"
	} else {
		report.Status = "valid"
	}
	return report
}

type validator struct {
	doc    *rule.Document
	syntax []Issue
	naming []Issue
	logic  []Issue
	best   []Issue

	// computedDefined accumulates, conservatively, every Computed name any
	// reachable action could define, in no particular order (spec.md §4.4:
	// "union of Computed names produced by any reachable action").
	computedDefined map[string]bool
}

func (v *validator) all() []Issue {
	out := make([]Issue, 0, len(v.syntax)+len(v.naming)+len(v.logic)+len(v.best))
	out = append(out, v.syntax...)
	out = append(out, v.naming...)
	out = append(out, v.logic...)
	out = append(out, v.best...)
	return out
}

func (v *validator) add(i Issue) {
	switch i.Category {
	case CategorySyntax:
		v.syntax = append(v.syntax, i)
	case CategoryNaming:
		v.naming = append(v.naming, i)
	case CategoryBestPractice:
		v.best = append(v.best, i)
	default:
		v.logic = append(v.logic, i)
	}
}

func summarize(issues []Issue) Summary {
	var s Summary
	for _, i := range issues {
		s.TotalIssues++
		switch i.Severity {
		case Critical:
			s.Critical++
		case Error:
			s.Errors++
		case Warning:
			s.Warnings++
		case Info:
			s.Suggestions++
		}
	}
	score := 100 - 25*s.Critical - 15*s.Errors - 5*s.Warnings - 1*s.Suggestions
	if score < 0 {
		score = 0
	}
	s.QualityScore = score
	return s
}

func (v *validator) checkRequiredKeys() {
	if v.doc.Name() == "" {
		v.add(Issue{Code: "missing_name", Severity: Critical, Category: CategorySyntax,
			Description: "rule document missing required 'name'", Message: "top-level key 'name' is required"})
	}
	if v.doc.Description() == "" {
		v.add(Issue{Code: "missing_description", Severity: Error, Category: CategorySyntax,
			Description: "rule document missing required 'description'", Message: "top-level key 'description' is required"})
	}
	if len(v.doc.Inputs) == 0 {
		v.add(Issue{Code: "missing_inputs", Severity: Warning, Category: CategorySyntax,
			Description: "rule document declares no inputs", Message: "top-level key 'inputs' is empty or absent"})
	}
	if len(v.doc.OutputSchema) == 0 {
		v.add(Issue{Code: "missing_output", Severity: Critical, Category: CategorySyntax,
			Description: "rule document missing required 'output' schema", Message: "top-level key 'output' is required"})
	}
	if v.doc.Logic.Shape == rule.LogicNone {
		v.add(Issue{Code: "missing_logic", Severity: Critical, Category: CategorySyntax,
			Description: "rule document has none of when/then, conditions, or rules",
			Message:     "exactly one of 'when'+'then', 'conditions', or 'rules' is required"})
	}
}

// checkMixedShapes flags when more than one logic shape was populated by the
// YAML parser (spec.md §4.4: "Mixed top-level shapes ... WARNING"). A shape
// that is merely present but empty (e.g. an empty `conditions:` block
// alongside a real `when`/`then`) doesn't count — only shapes with actual
// content make the document ambiguous (DESIGN.md Open Question 1), which
// escalates to ERROR since the orchestrator cannot then pick one
// deterministically.
func (v *validator) checkMixedShapes() {
	nonEmpty := 0
	if s := v.doc.Logic.Simple; s != nil && (len(s.When) > 0 || len(s.Then) > 0 || len(s.Else) > 0) {
		nonEmpty++
	}
	if s := v.doc.Logic.Structured; s != nil && (s.If != nil || len(s.Then) > 0 || len(s.Else) > 0) {
		nonEmpty++
	}
	if s := v.doc.Logic.Sequence; s != nil && len(s.Rules) > 0 {
		nonEmpty++
	}
	if nonEmpty > 1 {
		v.add(Issue{Code: "ambiguous_logic_shape", Severity: Error, Category: CategoryLogic,
			Description: "rule document has more than one non-empty logic shape",
			Message:     "exactly one of when/then, conditions, or rules may have content; the orchestrator cannot pick one deterministically"})
		return
	}
	count := 0
	if v.doc.Logic.Simple != nil {
		count++
	}
	if v.doc.Logic.Structured != nil {
		count++
	}
	if v.doc.Logic.Sequence != nil {
		count++
	}
	if count > 1 {
		v.add(Issue{Code: "mixed_logic_shapes", Severity: Warning, Category: CategoryLogic,
			Description: "rule document declares more than one logic shape, though only one has content",
			Message:     "a rule document should declare exactly one of when/then, conditions, or rules"})
	}
}

func (v *validator) checkMetadataTypes() {
	if tags, ok := v.doc.Metadata["tags"]; ok {
		if list, ok := tags.([]interface{}); ok {
			for _, t := range list {
				if _, ok := t.(string); !ok {
					v.add(Issue{Code: "metadata_type", Severity: Info, Category: CategoryBestPractice,
						Message: "metadata 'tags' should be a list of strings"})
					break
				}
			}
		} else {
			v.add(Issue{Code: "metadata_type", Severity: Info, Category: CategoryBestPractice,
				Message: "metadata 'tags' should be a list of strings"})
		}
	}
	if priority, ok := v.doc.Metadata["priority"]; ok {
		switch priority.(type) {
		case int, int64, float64:
		default:
			v.add(Issue{Code: "metadata_type", Severity: Info, Category: CategoryBestPractice,
				Message: "metadata 'priority' should be a number"})
		}
	}
	if risk, ok := v.doc.Metadata["risk_level"].(string); ok {
		if !validRiskLevels[risk] {
			v.add(Issue{Code: "metadata_type", Severity: Info, Category: CategoryBestPractice,
				Message: "metadata 'risk_level' should be one of LOW, MEDIUM, HIGH, CRITICAL"})
		}
	}
}

func (v *validator) checkNamingConventions() {
	for _, in := range v.doc.Inputs {
		if ast.ClassifyIdentifier(in) != ast.NamespaceInput {
			v.add(Issue{Code: "naming_input", Severity: Warning, Category: CategoryNaming,
				Message: "declared input '" + in + "' does not look like lowerCamelCase"})
		}
	}
	for _, c := range v.doc.Constants {
		if ast.ClassifyIdentifier(c.Name) != ast.NamespaceConstant {
			v.add(Issue{Code: "naming_constant", Severity: Warning, Category: CategoryNaming,
				Message: "declared constant '" + c.Name + "' does not look like UPPER_SNAKE_CASE"})
		}
	}
}

// walkLogicForReferences performs the reference-resolution and
// operator/function registry checks by first collecting every Computed
// name any reachable action might define (a conservative
// over-approximation, per spec.md §4.4), then re-walking to check each
// Variable read and FunctionCall/FunctionCallAction against it and the
// registries.
func (v *validator) walkLogicForReferences() {
	v.computedDefined = map[string]bool{}
	collectComputedTargets(v.doc.Logic, v.computedDefined)

	inputSet := map[string]bool{}
	for _, in := range v.doc.Inputs {
		inputSet[in] = true
	}
	constSet := map[string]bool{}
	for _, c := range v.doc.Constants {
		constSet[c.Name] = true
	}

	ctx := &refChecker{v: v, inputs: inputSet, constants: constSet}
	ctx.walkLogic(v.doc.Logic)
}

// collectComputedTargets walks every action reachable from logic (including
// nested conditionals/loops/sub-rules) and records the Computed-shaped
// target of every assigning action.
func collectComputedTargets(l rule.Logic, out map[string]bool) {
	switch l.Shape {
	case rule.LogicSimple:
		collectActionsTargets(l.Simple.Then, out)
		collectActionsTargets(l.Simple.Else, out)
	case rule.LogicStructured:
		collectActionsTargets(l.Structured.Then, out)
		collectActionsTargets(l.Structured.Else, out)
	case rule.LogicSequence:
		for _, sub := range l.Sequence.Rules {
			if sub.Simple != nil {
				collectActionsTargets(sub.Simple.Then, out)
				collectActionsTargets(sub.Simple.Else, out)
			}
			if sub.Struct != nil {
				collectActionsTargets(sub.Struct.Then, out)
				collectActionsTargets(sub.Struct.Else, out)
			}
		}
	}
}

func collectActionsTargets(actions []ast.Action, out map[string]bool) {
	for _, a := range actions {
		switch n := a.(type) {
		case *ast.Set:
			out[n.Var] = true
		case *ast.Assignment:
			out[n.Var] = true
		case *ast.Calculate:
			out[n.Var] = true
		case *ast.Run:
			out[n.Var] = true
		case *ast.ArithmeticAction:
			out[n.Var] = true
		case *ast.ListAction:
			out[n.ListVar] = true
		case *ast.FunctionCallAction:
			if n.ResultVar != "" {
				out[n.ResultVar] = true
			}
		case *ast.Conditional:
			collectActionsTargets(n.ThenAction, out)
			collectActionsTargets(n.ElseAction, out)
		case *ast.ForEach:
			out[n.ItemVar] = true
			if n.IndexVar != "" {
				out[n.IndexVar] = true
			}
			collectActionsTargets(n.Body, out)
		case *ast.While:
			collectActionsTargets(n.Body, out)
		case *ast.DoWhile:
			collectActionsTargets(n.Body, out)
		}
	}
}

// refChecker performs the per-node reference and registry checks, given the
// full conservative set of Computed names the rule document can produce.
type refChecker struct {
	v         *validator
	inputs    map[string]bool
	constants map[string]bool
}

func (c *refChecker) walkLogic(l rule.Logic) {
	switch l.Shape {
	case rule.LogicSimple:
		for _, cond := range l.Simple.When {
			c.walkCondition(cond)
		}
		c.walkActions(l.Simple.Then)
		c.walkActions(l.Simple.Else)
	case rule.LogicStructured:
		c.walkCondition(l.Structured.If)
		c.walkActions(l.Structured.Then)
		c.walkActions(l.Structured.Else)
	case rule.LogicSequence:
		for _, sub := range l.Sequence.Rules {
			if sub.Guard != nil {
				c.walkCondition(sub.Guard)
			}
			if sub.Simple != nil {
				for _, cond := range sub.Simple.When {
					c.walkCondition(cond)
				}
				c.walkActions(sub.Simple.Then)
				c.walkActions(sub.Simple.Else)
			}
			if sub.Struct != nil {
				c.walkCondition(sub.Struct.If)
				c.walkActions(sub.Struct.Then)
				c.walkActions(sub.Struct.Else)
			}
		}
	}
}

func (c *refChecker) walkActions(actions []ast.Action) {
	for _, a := range actions {
		c.walkAction(a)
	}
}

func (c *refChecker) walkAction(a ast.Action) {
	switch n := a.(type) {
	case *ast.Set:
		c.checkAssignTarget(n.Var, n.Loc())
		c.walkExpr(n.Expr)
	case *ast.Assignment:
		c.checkAssignTarget(n.Var, n.Loc())
		c.walkExpr(n.Expr)
	case *ast.Calculate:
		c.checkAssignTarget(n.Var, n.Loc())
		c.walkExpr(n.Expr)
	case *ast.Run:
		c.checkAssignTarget(n.Var, n.Loc())
		c.walkExpr(n.Expr)
	case *ast.ArithmeticAction:
		c.checkAssignTarget(n.Var, n.Loc())
		c.walkExpr(n.Expr)
	case *ast.ListAction:
		c.checkAssignTarget(n.ListVar, n.Loc())
		c.walkExpr(n.Expr)
	case *ast.FunctionCallAction:
		c.checkCall(n.Name, len(n.Args), n.Loc())
		for _, arg := range n.Args {
			c.walkExpr(arg)
		}
		if n.ResultVar != "" {
			c.checkAssignTarget(n.ResultVar, n.Loc())
		}
	case *ast.Conditional:
		c.walkCondition(n.Cond)
		c.walkActions(n.ThenAction)
		c.walkActions(n.ElseAction)
	case *ast.ForEach:
		c.walkExpr(n.ListExpr)
		c.walkActions(n.Body)
	case *ast.While:
		c.walkCondition(n.Cond)
		c.walkActions(n.Body)
	case *ast.DoWhile:
		c.walkActions(n.Body)
		c.walkCondition(n.Cond)
	case *ast.CircuitBreaker:
		c.walkExpr(n.Message)
	}
}

// checkAssignTarget enforces the computed-shadows-constant rule (spec.md
// §4.4: "ERROR for computed targets that look like constants"; S6 expects
// CRITICAL when an Input is reassigned, since that can never be a valid
// Computed write target).
func (c *refChecker) checkAssignTarget(name string, loc ast.SourceLocation) {
	if c.inputs[name] {
		c.v.add(Issue{Code: "assign_target_is_input", Severity: Critical, Category: CategoryLogic,
			Message:  "assignment target '" + name + "' is a declared input; assignment target must be computed",
			Location: Location{Line: loc.Line, Column: loc.Column}})
		return
	}
	if ast.ClassifyIdentifier(name) == ast.NamespaceConstant {
		c.v.add(Issue{Code: "assign_target_constant_shape", Severity: Error, Category: CategoryNaming,
			Message:    "assignment target '" + name + "' looks like a constant (UPPER_SNAKE); computed targets must be snake_case",
			Location:   Location{Line: loc.Line, Column: loc.Column},
			Suggestion: "rename the computed variable to avoid shadowing a constant"})
	}
}

func (c *refChecker) walkCondition(cond ast.Condition) {
	switch n := cond.(type) {
	case *ast.Comparison:
		c.walkExpr(n.Lhs)
		c.walkExpr(n.Rhs)
	case *ast.Logical:
		for _, op := range n.Operands {
			c.walkCondition(op)
		}
	case *ast.ExpressionCondition:
		c.walkExpr(n.Expr)
	}
}

func (c *refChecker) walkExpr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.Literal:
	case *ast.Variable:
		c.checkVariableRead(n.Name, n.Loc())
	case *ast.Binary:
		c.walkExpr(n.Lhs)
		c.walkExpr(n.Rhs)
		if n.BetweenHigh != nil {
			c.walkExpr(n.BetweenHigh)
		}
	case *ast.Unary:
		c.walkExpr(n.Operand)
	case *ast.Arithmetic:
		for _, o := range n.Operands {
			c.walkExpr(o)
		}
	case *ast.FunctionCall:
		c.checkCall(n.Name, len(n.Args), n.Loc())
		for _, a := range n.Args {
			c.walkExpr(a)
		}
	case *ast.JsonPath:
		c.walkExpr(n.Source)
	case *ast.RestCall:
		if n.URL != nil {
			c.walkExpr(n.URL)
		}
		if n.Body != nil {
			c.walkExpr(n.Body)
		}
		if n.Headers != nil {
			c.walkExpr(n.Headers)
		}
		if n.Timeout != nil {
			c.walkExpr(n.Timeout)
		}
	case *ast.List:
		for _, el := range n.Elements {
			c.walkExpr(el)
		}
	}
}

func (c *refChecker) checkVariableRead(name string, loc ast.SourceLocation) {
	switch ast.ClassifyIdentifier(name) {
	case ast.NamespaceInput:
		if !c.inputs[name] && !c.v.computedDefined[name] {
			c.v.add(Issue{Code: "undeclared_input", Severity: Error, Category: CategoryLogic,
				Message:  "reference to '" + name + "' is not a declared input and is never computed",
				Location: Location{Line: loc.Line, Column: loc.Column}})
		}
	case ast.NamespaceComputed:
		if !c.v.computedDefined[name] {
			c.v.add(Issue{Code: "undefined_computed", Severity: Error, Category: CategoryLogic,
				Message:  "reference to computed variable '" + name + "' has no prior defining action in this rule document",
				Location: Location{Line: loc.Line, Column: loc.Column}})
		}
	case ast.NamespaceConstant:
		// Constants with no declared default still resolve (to null, or to
		// whatever the persistence collaborator returns) rather than being a
		// validation error — spec.md §4.6 "Missing constants".
	}
}

func (c *refChecker) checkCall(name string, argc int, loc ast.SourceLocation) {
	if !function.Exists(name) {
		c.v.add(Issue{Code: "unknown_function", Severity: Error, Category: CategoryLogic,
			Message:  "'" + name + "' is not a registered operator or function",
			Location: Location{Line: loc.Line, Column: loc.Column}})
		return
	}
	if !function.Accepts(name, argc) {
		c.v.add(Issue{Code: "arity_mismatch", Severity: Error, Category: CategoryLogic,
			Message:  "'" + name + "' called with an unexpected number of arguments",
			Location: Location{Line: loc.Line, Column: loc.Column}})
	}
}

// SortIssues orders a slice of issues by descending severity, then by code,
// for stable, deterministic report output.
func SortIssues(issues []Issue) {
	rank := map[Severity]int{Critical: 0, Error: 1, Warning: 2, Info: 3}
	sort.SliceStable(issues, func(i, j int) bool {
		if rank[issues[i].Severity] != rank[issues[j].Severity] {
			return rank[issues[i].Severity] < rank[issues[j].Severity]
		}
		return issues[i].Code < issues[j].Code
	})
}
