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

package models

import "errors"

var ErrPolicyProposalNotFound = errors.New("policy proposal not found")

// Proposal status values. Transitions: Active -> Passed | Failed | Cancelled,
// Passed -> Executed. Executed, Failed, and Cancelled are terminal.
const (
	ProposalActive    uint8 = 0
	ProposalPassed    uint8 = 1
	ProposalFailed    uint8 = 2
	ProposalExecuted  uint8 = 3
	ProposalCancelled uint8 = 4
)

// Policy types a proposal may carry.
const (
	PolicyMintSupply      uint8 = 0
	PolicyBurnSupply      uint8 = 1
	PolicyRebalance       uint8 = 2
	PolicyParameterUpdate uint8 = 3
)

// PolicyProposal is one futarchy policy proposal. The ID is assigned
// from the global proposal counter, never derived from time.
type PolicyProposal struct {
	ID         uint64 `gorm:"primarykey;autoIncrement:false"`
	Proposer   []byte `gorm:"size:32;not null;index"`
	PolicyType uint8  `gorm:"not null"`
	Payload    []byte `gorm:"size:256"`
	StartTime  int64  `gorm:"not null"`
	EndTime    int64  `gorm:"not null;index"`
	YesStake   uint64 `gorm:"not null"`
	NoStake    uint64 `gorm:"not null"`
	Status     uint8  `gorm:"not null;index"`
	PassedAt   int64
}

// TableName returns the table name
func (PolicyProposal) TableName() string {
	return "policy_proposal"
}
