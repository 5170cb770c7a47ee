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

package event

// Event types published by the policy engine, oracle gate, and vault
// monitor. Signal flow is one-way: the monitor consumes oracle and
// execution events and publishes health signals; it never publishes
// anything that mutates engine state directly.
const (
	ProposalCreatedEventType   EventType = "policy.proposal.created"
	VoteCastEventType          EventType = "policy.vote.cast"
	ProposalFinalizedEventType EventType = "policy.proposal.finalized"
	ProposalExecutedEventType  EventType = "policy.proposal.executed"
	ProposalCancelledEventType EventType = "policy.proposal.cancelled"
	BreakerChangedEventType    EventType = "policy.breaker.changed"
	OracleUpdatedEventType     EventType = "oracle.updated"
	VaultHealthEventType       EventType = "vault.health"
)

type ProposalCreatedEvent struct {
	ProposalID uint64
	Proposer   []byte
	PolicyType uint8
	EndTime    int64
}

type VoteCastEvent struct {
	ProposalID uint64
	Agent      []byte
	Stake      uint64
	Prediction bool
}

type ProposalFinalizedEvent struct {
	ProposalID uint64
	Passed     bool
	YesStake   uint64
	NoStake    uint64
	RatioBps   uint64
}

type ProposalExecutedEvent struct {
	ProposalID uint64
	PolicyType uint8
	Payload    []byte
}

type ProposalCancelledEvent struct {
	ProposalID uint64
}

type BreakerChangedEvent struct {
	State       uint8
	RequestedAt int64
	ActivatedAt int64
}

type OracleUpdatedEvent struct {
	IndexValue    uint64
	YieldBps      uint64
	VolatilityBps uint64
	TotalTVL      uint64
	Timestamp     int64
	Slot          uint64
}

// VaultHealthEvent is the monitor's signal. Severity is informational
// only; acting on it (e.g. requesting the circuit breaker) is left to
// the authority.
type VaultHealthEvent struct {
	VHRBps   uint64
	Warn     bool
	Critical bool
}
