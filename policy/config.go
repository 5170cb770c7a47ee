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

// Defaults for the engine timing parameters.
const (
	DefaultMinVotingPeriod     = 1 * time.Hour
	DefaultMaxVotingPeriod     = 7 * 24 * time.Hour
	DefaultExecutionDelay      = 12 * time.Hour
	DefaultCircuitBreakerDelay = 24 * time.Hour
)

// Config holds the engine timing parameters. Zero values are replaced
// with the defaults above.
type Config struct {
	MinVotingPeriod     time.Duration
	MaxVotingPeriod     time.Duration
	ExecutionDelay      time.Duration
	CircuitBreakerDelay time.Duration
}

func (c *Config) populateDefaults() {
	if c.MinVotingPeriod == 0 {
		c.MinVotingPeriod = DefaultMinVotingPeriod
	}
	if c.MaxVotingPeriod == 0 {
		c.MaxVotingPeriod = DefaultMaxVotingPeriod
	}
	if c.ExecutionDelay == 0 {
		c.ExecutionDelay = DefaultExecutionDelay
	}
	if c.CircuitBreakerDelay == 0 {
		c.CircuitBreakerDelay = DefaultCircuitBreakerDelay
	}
}
