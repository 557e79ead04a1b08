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

package function_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulekit/ruleengine/function"
	"github.com/rulekit/ruleengine/value"
)

// fakeRuntime is a minimal function.Runtime for functions that need a
// clock, audit sink, or HTTP collaborator without pulling in eval/evalctx.
type fakeRuntime struct {
	now        time.Time
	audited    []string
	httpStatus int
	httpBody   value.Value
	httpErr    error
}

func (f *fakeRuntime) RecordAudit(kind, message string, detail value.Value) {
	f.audited = append(f.audited, kind+":"+message)
}

func (f *fakeRuntime) HTTPRequest(method, url string, headers map[string]string, body value.Value, timeout time.Duration) (int, value.Value, error) {
	return f.httpStatus, f.httpBody, f.httpErr
}

func (f *fakeRuntime) Now() time.Time { return f.now }

func num(f float64) value.Value { return value.NumberFromFloat(f) }

func TestCall_UnknownNameAndArityMismatchError(t *testing.T) {
	_, err := function.Call("not_a_real_function", nil, &fakeRuntime{})
	assert.Error(t, err)

	_, err = function.Call("abs", []value.Value{num(1), num(2)}, &fakeRuntime{})
	assert.Error(t, err)
}

func TestMath_MaxMinAbsRoundCeilFloor(t *testing.T) {
	v, err := function.Call("max", []value.Value{num(3), num(7), num(1)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(7), v)

	v, err = function.Call("min", []value.Value{num(3), num(7), num(1)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(1), v)

	v, err = function.Call("abs", []value.Value{num(-5)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(5), v)

	v, err = function.Call("round", []value.Value{num(3.14159), num(2)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, "3.14", v.String())

	v, err = function.Call("ceil", []value.Value{num(3.1)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(4), v)

	v, err = function.Call("floor", []value.Value{num(3.9)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(3), v)
}

func TestMath_SqrtOfNegativeErrors(t *testing.T) {
	_, err := function.Call("sqrt", []value.Value{num(-4)}, &fakeRuntime{})
	assert.Error(t, err)
}

func TestMath_PowUsesIntegerFastPath(t *testing.T) {
	v, err := function.Call("pow", []value.Value{num(2), num(10)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(1024), v)
}

func TestMath_SumAndAverageSkipNonNumericEntries(t *testing.T) {
	list := value.NewList(num(1), num(2), value.String("not a number"), num(3))
	v, err := function.Call("sum", []value.Value{list}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(6), v)

	v, err = function.Call("avg", []value.Value{list}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(2), mustFloat(t, v))
}

func TestMath_AverageOfEmptyListIsNull(t *testing.T) {
	v, err := function.Call("avg", []value.Value{value.NewList()}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, v)
}

func mustFloat(t *testing.T, v value.Value) float64 {
	t.Helper()
	n, err := value.AsNumber(v)
	require.NoError(t, err)
	f, _ := n.D.Float64()
	return f
}

func TestString_LengthSubstringCaseTrim(t *testing.T) {
	v, err := function.Call("length", []value.Value{value.String("hello")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(5), v)

	v, err = function.Call("substring", []value.Value{value.String("hello world"), num(6)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("world"), v)

	v, err = function.Call("substring", []value.Value{value.String("hello world"), num(0), num(5)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("hello"), v)

	v, err = function.Call("upper", []value.Value{value.String("shout")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("SHOUT"), v)

	v, err = function.Call("trim", []value.Value{value.String("  padded  ")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("padded"), v)
}

func TestString_ContainsStartsEndsReplace(t *testing.T) {
	v, err := function.Call("contains", []value.Value{value.String("hello world"), value.String("wor")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = function.Call("startswith", []value.Value{value.String("hello"), value.String("he")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = function.Call("replace", []value.Value{value.String("a-b-c"), value.String("-"), value.String("_")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("a_b_c"), v)
}

func TestList_SizeFirstLastInList(t *testing.T) {
	list := value.NewList(num(1), num(2), num(3))
	v, err := function.Call("size", []value.Value{list}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(3), v)

	v, err = function.Call("first", []value.Value{list}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(1), v)

	v, err = function.Call("last", []value.Value{list}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.NumberFromInt(3), v)

	v, err = function.Call("in_list", []value.Value{num(2), list}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestList_FirstLastOfEmptyListIsNull(t *testing.T) {
	v, err := function.Call("first", []value.Value{value.NewList()}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, v)
}

func TestConvert_ToNumberToStringToBoolean(t *testing.T) {
	v, err := function.Call("tonumber", []value.Value{value.String("42.5")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(42.5), mustFloat(t, v))

	v, err = function.Call("tostring", []value.Value{num(7)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("7"), v)

	v, err = function.Call("toboolean", []value.Value{value.String("true")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)
}

func TestConvert_NullPassesThrough(t *testing.T) {
	v, err := function.Call("tonumber", []value.Value{value.Null{}}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Null{}, v)
}

func TestValidation_PostfixOperatorsNeverError(t *testing.T) {
	v, err := function.Call("is_positive", []value.Value{value.String("not a number")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)

	v, err = function.Call("is_email", []value.Value{value.String("a@b.com")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = function.Call("is_email", []value.Value{value.String("not-an-email")}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestValidation_InRange(t *testing.T) {
	v, err := function.Call("in_range", []value.Value{num(5), num(1), num(10)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = function.Call("in_range", []value.Value{num(50), num(1), num(10)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestValidation_AgeAtLeastUsesRuntimeClock(t *testing.T) {
	rt := &fakeRuntime{now: time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)}
	birthdate := value.NewInstant(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))

	v, err := function.Call("age_at_least", []value.Value{birthdate, num(18)}, rt)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = function.Call("age_less_than", []value.Value{birthdate, num(18)}, rt)
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestFinancial_DebtRatioAndLoanToValue(t *testing.T) {
	v, err := function.Call("calculate_debt_ratio", []value.Value{num(2000), num(8000)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(0.25), mustFloat(t, v))

	v, err = function.Call("calculate_ltv", []value.Value{num(180000), num(200000)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(90), mustFloat(t, v))
}

func TestFinancial_DebtRatioWithZeroIncomeIsSafe(t *testing.T) {
	v, err := function.Call("calculate_debt_ratio", []value.Value{num(2000), num(0)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(0), mustFloat(t, v))
}

func TestFinancial_CreditScoreClamps(t *testing.T) {
	v, err := function.Call("calculate_credit_score", []value.Value{num(1000)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(850), mustFloat(t, v))

	v, err = function.Call("calculate_credit_score", []value.Value{num(100)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, float64(300), mustFloat(t, v))
}

// calculate_loan_payment takes annual_rate (a fraction, e.g. 0.06 for 6%)
// and term_months, converting to a monthly periodic rate internally before
// applying the standard amortization formula. $200,000 at 6%/year over 360
// months amortizes to a payment of about $1,199.10.
func TestFinancial_CalculateLoanPaymentConvertsAnnualRateToMonthly(t *testing.T) {
	v, err := function.Call("calculate_loan_payment", []value.Value{num(200000), num(0.06), num(360)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.InDelta(t, 1199.10, mustFloat(t, v), 0.01)
}

func TestFinancial_CalculateAmortizationScheduleMatchesKnownTable(t *testing.T) {
	v, err := function.Call("calculate_amortization", []value.Value{num(200000), num(0.06), num(360)}, &fakeRuntime{})
	require.NoError(t, err)
	list, ok := v.(value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 360)

	first, ok := list.Items[0].(value.Map)
	require.True(t, ok)
	assert.InDelta(t, 1199.10, mustFloat(t, first.Entries["payment"]), 0.01)
	assert.InDelta(t, 1000.0, mustFloat(t, first.Entries["interest"]), 0.01)
	assert.InDelta(t, 199.10, mustFloat(t, first.Entries["principal"]), 0.01)
	assert.InDelta(t, 199800.90, mustFloat(t, first.Entries["balance"]), 0.01)

	last, ok := list.Items[359].(value.Map)
	require.True(t, ok)
	assert.InDelta(t, 0, mustFloat(t, last.Entries["balance"]), 0.01)
}

func TestFormat_CurrencyAndPercentage(t *testing.T) {
	v, err := function.Call("format_currency", []value.Value{num(1234.5)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("$1234.50"), v)

	v, err = function.Call("format_percentage", []value.Value{num(12.345), num(1)}, &fakeRuntime{})
	require.NoError(t, err)
	assert.Equal(t, value.String("12.3%"), v)
}

func TestAudit_CallDelegatesToRuntime(t *testing.T) {
	rt := &fakeRuntime{}
	_, err := function.Call("audit", []value.Value{value.String("rule fired")}, rt)
	require.NoError(t, err)
	require.Len(t, rt.audited, 1)
}

func TestRestCall_TransportFailureMaterializesAsMap(t *testing.T) {
	rt := &fakeRuntime{httpErr: assert.AnError}
	v, err := function.Call("rest_call", []value.Value{value.String("GET"), value.String("http://example.test")}, rt)
	require.NoError(t, err)
	m, ok := v.(value.Map)
	require.True(t, ok)
	assert.Equal(t, value.NumberFromInt(0), m.Entries["status"])
	assert.NotEqual(t, value.Null{}, m.Entries["error"])
}

func TestRestCall_SuccessCarriesStatusAndBody(t *testing.T) {
	rt := &fakeRuntime{httpStatus: 200, httpBody: value.NewMap(map[string]value.Value{"ok": value.Bool(true)})}
	v, err := function.Call("rest_call", []value.Value{value.String("GET"), value.String("http://example.test")}, rt)
	require.NoError(t, err)
	m, ok := v.(value.Map)
	require.True(t, ok)
	assert.Equal(t, value.NumberFromInt(200), m.Entries["status"])
	assert.Equal(t, value.Null{}, m.Entries["error"])
}
