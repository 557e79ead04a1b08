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

package ast

import (
	"regexp"
	"strings"
)

// Namespace classifies an identifier by shape (spec.md §3).
type Namespace int

const (
	NamespaceUnknown Namespace = iota
	NamespaceInput
	NamespaceConstant
	NamespaceComputed
)

func (n Namespace) String() string {
	switch n {
	case NamespaceInput:
		return "input"
	case NamespaceConstant:
		return "constant"
	case NamespaceComputed:
		return "computed"
	default:
		return "unknown"
	}
}

var (
	inputShape    = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
	constantShape = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	computedShape = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// ClassifyIdentifier implements the three-way shape classification of
// spec.md §3's namespace table. Computed identifiers must additionally
// contain an underscore or the substring "lower" to disambiguate from a
// plain lowerCamelCase Input (spec.md: "containing `_` or `lower`").
func ClassifyIdentifier(name string) Namespace {
	if constantShape.MatchString(name) {
		return NamespaceConstant
	}
	if computedShape.MatchString(name) && (strings.Contains(name, "_") || strings.Contains(name, "lower")) {
		return NamespaceComputed
	}
	if inputShape.MatchString(name) {
		return NamespaceInput
	}
	return NamespaceUnknown
}
