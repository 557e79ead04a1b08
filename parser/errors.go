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

import "gopkg.in/src-d/go-errors.v1"

// ErrParser is raised when the token stream doesn't match the grammar.
var ErrParser = errors.NewKind("parse error at line %d, column %d: %s")

// ErrStructure is raised by the YAML-to-structural conversion for malformed
// top-level rule document shapes.
var ErrStructure = errors.NewKind("rule document error: %s")
