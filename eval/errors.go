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

import "gopkg.in/src-d/go-errors.v1"

// ErrEval is raised for any runtime evaluation failure that is not one of
// the more specific kinds below (e.g. a string that cannot coerce to a
// number in a context that requires one).
var ErrEval = errors.NewKind("evaluation error: %s")

// ErrDivideByZero is raised by `/` and `%` when the right-hand operand is
// zero (spec.md §4.6).
var ErrDivideByZero = errors.NewKind("division by zero")

// ErrOrderingUnlikeTypes is raised by <, >, <=, >= across unlike types
// (spec.md §4.6, §9 Open Question 4 — equality is false-not-error, ordering
// is an error).
var ErrOrderingUnlikeTypes = errors.NewKind("cannot order %s against %s")

// ErrLoopCapExceeded is raised when a ForEach/While/DoWhile loop exceeds its
// iteration cap (spec.md §4.6).
var ErrLoopCapExceeded = errors.NewKind("%s exceeded the %d iteration cap")
