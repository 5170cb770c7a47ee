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

import "time"

// Clock provides the two time sources every window check uses: wall
// time and the slot counter. The engine never schedules timers; each
// entry point compares the clock against absolute thresholds at call
// time.
type Clock interface {
	Now() time.Time
	Slot() uint64
}

// SystemClock derives the slot from genesis time and a fixed slot
// length.
type SystemClock struct {
	Genesis    time.Time
	SlotLength time.Duration
}

func (c SystemClock) Now() time.Time {
	return time.Now()
}

func (c SystemClock) Slot() uint64 {
	elapsed := time.Since(c.Genesis)
	if elapsed < 0 || c.SlotLength <= 0 {
		return 0
	}
	return uint64(elapsed / c.SlotLength)
}
