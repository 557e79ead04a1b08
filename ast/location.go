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

// Package ast defines the typed AST node hierarchy for the rule DSL
// (spec.md §3, component C2): three disjoint node families — Expression,
// Condition, Action — each a tagged variant, every node carrying a
// SourceLocation. This package is pure data: node constructors store their
// arguments without checking them, and each node's Debug method renders a
// debug representation of the node.
package ast

import "fmt"

// SourceLocation pinpoints a node in the original rule text.
type SourceLocation struct {
	Line    int
	Column  int
	Offset  int
	Length  int
	Snippet string
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}
