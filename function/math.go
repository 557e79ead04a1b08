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

package function

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rulekit/ruleengine/value"
)

func callMath(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "max", "min":
		nums, null, err := numericArgsOrNull(args)
		if err != nil {
			return nil, err
		}
		if null {
			return value.Null{}, nil
		}
		best := nums[0]
		for _, n := range nums[1:] {
			if (name == "max" && n.D.GreaterThan(best.D)) || (name == "min" && n.D.LessThan(best.D)) {
				best = n
			}
		}
		return best, nil

	case "abs":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		return value.NewNumber(n.D.Abs()), nil

	case "round":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		places := int32(0)
		if len(args) > 1 {
			p, pNull, err := numericArg(args, 1)
			if err != nil {
				return nil, err
			}
			if !pNull {
				places = int32(p.D.IntPart())
			}
		}
		return value.NewNumber(n.D.Round(places)), nil

	case "ceil":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		return value.NewNumber(n.D.Ceil()), nil

	case "floor":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		return value.NewNumber(n.D.Floor()), nil

	case "sqrt":
		n, isNull, err := numericArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		f, _ := n.D.Float64()
		if f < 0 {
			return nil, errEval("sqrt of negative number")
		}
		return value.NewNumber(decimal.NewFromFloat(math.Sqrt(f))), nil

	case "pow":
		base, baseNull, err := numericArg(args, 0)
		if err != nil {
			return nil, err
		}
		exp, expNull, err := numericArg(args, 1)
		if err != nil {
			return nil, err
		}
		if baseNull || expNull {
			return value.Null{}, nil
		}
		return powNumber(base, exp)

	case "sum":
		items, err := listArg(args, 0)
		if err != nil {
			return nil, err
		}
		total := decimal.Zero
		for _, it := range items {
			n, err := value.AsNumber(it)
			if err != nil {
				continue
			}
			total = total.Add(n.D)
		}
		return value.NewNumber(total), nil

	case "avg", "average":
		items, err := listArg(args, 0)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return value.Null{}, nil
		}
		total := decimal.Zero
		count := 0
		for _, it := range items {
			n, err := value.AsNumber(it)
			if err != nil {
				continue
			}
			total = total.Add(n.D)
			count++
		}
		if count == 0 {
			return value.Null{}, nil
		}
		return value.NewNumber(total.Div(decimal.NewFromInt(int64(count)))), nil
	}
	return nil, errUnknownFunction(name)
}

// powNumber computes base**exp using an integer fast-path when exp is a
// whole number, falling back to float exponentiation otherwise (spec.md
// §4.6: "** uses integer exponent when possible, otherwise falls back to
// logarithm-based computation").
func powNumber(base, exp value.Number) (value.Value, error) {
	if exp.D.Exponent() >= 0 {
		e := exp.D.IntPart()
		if e >= 0 && e <= 1000 {
			return value.NewNumber(base.D.Pow(exp.D)), nil
		}
	}
	bf, _ := base.D.Float64()
	ef, _ := exp.D.Float64()
	return value.NewNumber(decimal.NewFromFloat(math.Pow(bf, ef))), nil
}
