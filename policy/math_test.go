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

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := checkedAdd(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	sum, err = checkedAdd(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = checkedAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestApprovalRatioBps(t *testing.T) {
	testDefs := []struct {
		name     string
		yes      uint64
		no       uint64
		expected uint64
		err      error
	}{
		{name: "unanimous yes", yes: 100, no: 0, expected: 10000},
		{name: "unanimous no", yes: 0, no: 100, expected: 0},
		{name: "exact split", yes: 500, no: 500, expected: 5000},
		{name: "sixty forty", yes: 600, no: 400, expected: 6000},
		{name: "zero total", yes: 0, no: 0, err: ErrInsufficientStake},
		{
			// A naive 64-bit yes*10000 would wrap here
			name:     "huge stakes",
			yes:      math.MaxUint64 / 2,
			no:       math.MaxUint64 / 2,
			expected: 5000,
		},
		{
			name: "total overflow",
			yes:  math.MaxUint64,
			no:   1,
			err:  ErrArithmeticOverflow,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			ratio, err := approvalRatioBps(testDef.yes, testDef.no)
			if testDef.err != nil {
				require.ErrorIs(t, err, testDef.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, ratio)
		})
	}
}
