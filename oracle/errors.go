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

package oracle

import "errors"

var (
	ErrInvalidIndexValue = errors.New("index value out of bounds")
	ErrInvalidYield      = errors.New("yield out of bounds")
	ErrInvalidVolatility = errors.New("volatility out of bounds")
	ErrInvalidTVL        = errors.New("TVL must be positive")
	ErrUpdateTooSoon     = errors.New(
		"update interval has not elapsed since last admitted batch",
	)
	ErrSlotBufferNotMet = errors.New(
		"slot buffer has not elapsed since last admitted batch",
	)
)
