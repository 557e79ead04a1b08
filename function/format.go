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
	"fmt"
	"math"
	"strings"

	"github.com/rulekit/ruleengine/value"
	uuid "github.com/satori/go.uuid"
)

func callFormat(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "format_currency":
		n, isNull, err := numericArg(args, 0)
		if err != nil {
			return nil, err
		}
		if isNull {
			return value.Null{}, nil
		}
		symbol := "$"
		if s, isNull := stringArg(args, 1); !isNull {
			symbol = s
		}
		return value.String(fmt.Sprintf("%s%s", symbol, n.D.StringFixed(2))), nil

	case "format_percentage":
		n, isNull, err := numericArg(args, 0)
		if err != nil {
			return nil, err
		}
		if isNull {
			return value.Null{}, nil
		}
		decimals := int32(2)
		if d, isNull, err := numericArg(args, 1); err == nil && !isNull {
			decimals = int32(d.D.IntPart())
		}
		return value.String(n.D.StringFixed(decimals) + "%"), nil

	case "generate_account_number":
		id := uuid.NewV4()
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, id.String())
		for len(digits) < 10 {
			digits += "0"
		}
		return value.String(digits[:10]), nil

	case "generate_transaction_id":
		return value.String("txn_" + uuid.NewV4().String()), nil

	case "distance_between":
		nums, isNull, err := numericArgsOrNull(args)
		if err != nil {
			return nil, err
		}
		if isNull || len(nums) < 4 {
			return value.Null{}, nil
		}
		lat1, _ := nums[0].D.Float64()
		lon1, _ := nums[1].D.Float64()
		lat2, _ := nums[2].D.Float64()
		lon2, _ := nums[3].D.Float64()
		return value.NumberFromFloat(haversineKm(lat1, lon1, lat2, lon2)), nil
	}
	return nil, errUnknownFunction(name)
}

// haversineKm returns great-circle distance in kilometers between two
// latitude/longitude points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
