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

import "errors"

var (
	ErrUnauthorized         = errors.New("caller is not the protocol authority")
	ErrInvalidVotingPeriod  = errors.New("voting period outside allowed bounds")
	ErrInvalidPolicyType    = errors.New("unknown policy type")
	ErrInvalidPayload       = errors.New("policy payload failed validation")
	ErrPayloadTooLarge      = errors.New("policy payload exceeds size cap")
	ErrProposalNotActive    = errors.New("proposal is not active")
	ErrProposalStillActive  = errors.New("voting period has not ended")
	ErrProposalNotPassed    = errors.New("proposal has not passed")
	ErrVotingEnded          = errors.New("voting period has ended")
	ErrZeroStake            = errors.New("stake amount must be positive")
	ErrAlreadyVoted         = errors.New("agent already voted on this proposal")
	ErrInsufficientStake    = errors.New("no stake was placed on the proposal")
	ErrArithmeticOverflow   = errors.New("stake arithmetic overflow")
	ErrExecutionDelayNotMet = errors.New("execution delay has not elapsed")
	ErrCircuitBreakerActive = errors.New("circuit breaker is active")

	ErrBreakerAlreadyRequested = errors.New(
		"circuit breaker activation already requested",
	)
	ErrBreakerNotRequested = errors.New(
		"circuit breaker activation was not requested",
	)
	ErrBreakerNotActive             = errors.New("circuit breaker is not active")
	ErrCircuitBreakerTimelockNotMet = errors.New(
		"circuit breaker timelock has not elapsed",
	)
)
