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
	"github.com/rulekit/ruleengine/value"
	"github.com/shopspring/decimal"
)

func callFinancial(name string, args []value.Value) (value.Value, error) {
	nums, isNull, err := numericArgsOrNull(args)
	if err != nil {
		return nil, err
	}
	if isNull {
		return value.Null{}, nil
	}
	switch name {
	case "calculate_loan_payment":
		if len(nums) < 3 {
			return nil, errArgCount(name)
		}
		monthlyRate := nums[1].D.Div(decimal.NewFromInt(12))
		return value.NewNumber(loanPayment(nums[0].D, monthlyRate, nums[2].D)), nil

	case "calculate_compound_interest":
		if len(nums) < 3 {
			return nil, errArgCount(name)
		}
		principal, rate, periods := nums[0].D, nums[1].D, nums[2].D
		n := decimal.NewFromInt(1)
		if len(nums) > 3 {
			n = nums[3].D
		}
		growth := decimal.NewFromInt(1).Add(rate.Div(n))
		factor := growth.Pow(periods.Mul(n))
		return value.NewNumber(principal.Mul(factor).Sub(principal)), nil

	case "calculate_amortization", "calculate_payment_schedule":
		if len(nums) < 3 {
			return nil, errArgCount(name)
		}
		monthlyRate := nums[1].D.Div(decimal.NewFromInt(12))
		return value.NewList(amortizationSchedule(nums[0].D, monthlyRate, int(nums[2].D.IntPart()))...), nil

	case "calculate_apr":
		if len(nums) < 3 {
			return nil, errArgCount(name)
		}
		fees, principal, termYears := nums[0].D, nums[1].D, nums[2].D
		return value.NewNumber(fees.Div(principal).Div(termYears).Mul(decimal.NewFromInt(100))), nil

	case "calculate_credit_score":
		if len(nums) < 1 {
			return nil, errArgCount(name)
		}
		return value.NewNumber(clampDecimal(nums[0].D, decimal.NewFromInt(300), decimal.NewFromInt(850))), nil

	case "calculate_risk_score":
		if len(nums) < 1 {
			return nil, errArgCount(name)
		}
		return value.NewNumber(clampDecimal(nums[0].D, decimal.Zero, decimal.NewFromInt(100))), nil

	case "calculate_debt_ratio", "debt_to_income_ratio":
		if len(nums) < 2 {
			return nil, errArgCount(name)
		}
		return value.NewNumber(safeRatio(nums[0].D, nums[1].D)), nil

	case "calculate_ltv", "loan_to_value":
		if len(nums) < 2 {
			return nil, errArgCount(name)
		}
		return value.NewNumber(safeRatio(nums[0].D, nums[1].D).Mul(decimal.NewFromInt(100))), nil

	case "credit_utilization":
		if len(nums) < 2 {
			return nil, errArgCount(name)
		}
		return value.NewNumber(safeRatio(nums[0].D, nums[1].D).Mul(decimal.NewFromInt(100))), nil

	case "payment_history_score":
		if len(nums) < 2 {
			return nil, errArgCount(name)
		}
		onTime, total := nums[0].D, nums[1].D
		return value.NewNumber(safeRatio(onTime, total).Mul(decimal.NewFromInt(100))), nil
	}
	return nil, errUnknownFunction(name)
}

// loanPayment computes the standard fixed-rate amortized payment:
// P * r / (1 - (1+r)^-n), falling back to a straight-line split when the
// periodic rate is zero.
func loanPayment(principal, periodicRate, numPeriods decimal.Decimal) decimal.Decimal {
	if numPeriods.IsZero() {
		return decimal.Zero
	}
	if periodicRate.IsZero() {
		return principal.Div(numPeriods)
	}
	onePlusR := decimal.NewFromInt(1).Add(periodicRate)
	denom := decimal.NewFromInt(1).Sub(onePlusR.Pow(numPeriods.Neg()))
	if denom.IsZero() {
		return decimal.Zero
	}
	return principal.Mul(periodicRate).Div(denom)
}

func amortizationSchedule(principal, periodicRate decimal.Decimal, numPeriods int) []value.Value {
	if numPeriods <= 0 {
		return nil
	}
	payment := loanPayment(principal, periodicRate, decimal.NewFromInt(int64(numPeriods)))
	balance := principal
	schedule := make([]value.Value, 0, numPeriods)
	for period := 1; period <= numPeriods; period++ {
		interest := balance.Mul(periodicRate)
		principalPortion := payment.Sub(interest)
		balance = balance.Sub(principalPortion)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		schedule = append(schedule, value.NewMap(map[string]value.Value{
			"period":    value.NumberFromInt(int64(period)),
			"payment":   value.NewNumber(payment),
			"interest":  value.NewNumber(interest),
			"principal": value.NewNumber(principalPortion),
			"balance":   value.NewNumber(balance),
		}))
	}
	return schedule
}

func safeRatio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}

func clampDecimal(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
