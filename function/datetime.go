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
	"time"

	"github.com/rulekit/ruleengine/value"
)

func callDateTime(name string, args []value.Value, rt Runtime) (value.Value, error) {
	switch name {
	case "now":
		return value.NewInstant(rt.Now()), nil

	case "today":
		n := rt.Now()
		return value.NewInstant(time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())), nil

	case "dateadd":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		amount, _, err := numericArg(args, 1)
		if err != nil {
			return nil, err
		}
		unit, _ := stringArg(args, 2)
		return value.NewInstant(addUnit(t, int(amount.D.IntPart()), unit)), nil

	case "datediff":
		a, aNull, err := instantArg(args, 0)
		if err != nil {
			return nil, err
		}
		b, bNull, err := instantArg(args, 1)
		if err != nil {
			return nil, err
		}
		if aNull || bNull {
			return value.Null{}, nil
		}
		unit := "days"
		if u, isNull := stringArg(args, 2); !isNull {
			unit = u
		}
		d := b.Sub(a)
		switch unit {
		case "hours":
			return value.NumberFromFloat(d.Hours()), nil
		case "minutes":
			return value.NumberFromFloat(d.Minutes()), nil
		default:
			return value.NumberFromFloat(d.Hours() / 24), nil
		}

	case "time_hour":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		return value.NumberFromInt(int64(t.Hour())), nil

	case "format_date":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		layout := time.RFC3339
		if l, isNull := stringArg(args, 1); !isNull {
			layout = goLayout(l)
		}
		return value.String(t.Format(layout)), nil

	case "calculate_age":
		t, isNull, err := instantArg(args, 0)
		if err != nil || isNull {
			return value.Null{}, err
		}
		as := rt.Now()
		if a, aNull, err := instantArg(args, 1); err != nil {
			return nil, err
		} else if !aNull {
			as = a
		}
		return value.NumberFromInt(int64(ageInYears(t, as))), nil
	}
	return nil, errUnknownFunction(name)
}

func instantArg(args []value.Value, i int) (time.Time, bool, error) {
	if i >= len(args) {
		return time.Time{}, true, nil
	}
	switch t := args[i].(type) {
	case value.Instant:
		return t.T, false, nil
	case value.Null:
		return time.Time{}, true, nil
	case value.String:
		parsed, err := time.Parse(time.RFC3339, string(t))
		if err != nil {
			parsed, err = time.Parse("2006-01-02", string(t))
			if err != nil {
				return time.Time{}, false, err
			}
		}
		return parsed, false, nil
	default:
		return time.Time{}, false, errEval("expected a date value")
	}
}

func addUnit(t time.Time, amount int, unit string) time.Time {
	switch unit {
	case "", "days", "day":
		return t.AddDate(0, 0, amount)
	case "months", "month":
		return t.AddDate(0, amount, 0)
	case "years", "year":
		return t.AddDate(amount, 0, 0)
	case "hours", "hour":
		return t.Add(time.Duration(amount) * time.Hour)
	case "minutes", "minute":
		return t.Add(time.Duration(amount) * time.Minute)
	default:
		return t.AddDate(0, 0, amount)
	}
}

// goLayout maps a handful of common strftime-like tokens onto Go's
// reference-time layout; unrecognized input is passed through verbatim so
// callers can supply a raw Go layout directly.
func goLayout(l string) string {
	switch l {
	case "YYYY-MM-DD":
		return "2006-01-02"
	case "MM/DD/YYYY":
		return "01/02/2006"
	case "YYYY-MM-DDTHH:mm:ssZ":
		return time.RFC3339
	default:
		return l
	}
}

func ageInYears(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	return years
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
