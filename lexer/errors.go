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

package lexer

import "gopkg.in/src-d/go-errors.v1"

// ErrLexer is raised for tokenization failures: unterminated strings and
// unknown characters. The lexer never attempts recovery (spec.md §4.1).
var ErrLexer = errors.NewKind("lex error at line %d, column %d: %s")

// Error wraps ErrLexer with the exact source position.
func Error(pos Position, msg string) error {
	return ErrLexer.New(pos.Line, pos.Column, msg)
}
