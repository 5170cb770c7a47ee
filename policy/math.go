// Copyright 2026 ARS Labs
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

package policy

import "math/bits"

// PassThresholdBps is the approval ratio a proposal must strictly
// exceed to pass.
const PassThresholdBps = 5000

// checkedAdd adds two stake amounts, failing on overflow instead of
// wrapping.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// approvalRatioBps computes yes*10000/(yes+no) through a 128-bit
// intermediate so the widening multiply cannot overflow. The caller
// must ensure the total stake is positive.
func approvalRatioBps(yesStake, noStake uint64) (uint64, error) {
	total, err := checkedAdd(yesStake, noStake)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, ErrInsufficientStake
	}
	// The quotient is at most 10000, so it always fits and Div64
	// cannot trap.
	hi, lo := bits.Mul64(yesStake, 10000)
	quo, _ := bits.Div64(hi, lo, total)
	return quo, nil
}
