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

var ErrVoteRecordNotFound = errors.New("vote record not found")

// VoteRecord is one agent's bet on one proposal. The composite unique
// index makes the (proposal, agent) pair write-once at the storage level.
type VoteRecord struct {
	ID             uint   `gorm:"primarykey"`
	ProposalID     uint64 `gorm:"uniqueIndex:idx_vote_unique,priority:1;not null"`
	Agent          []byte `gorm:"uniqueIndex:idx_vote_unique,priority:2;size:32;not null"`
	StakeAmount    uint64 `gorm:"not null"`
	Prediction     bool   `gorm:"not null"`
	Claimed        bool   `gorm:"not null"`
	AgentSignature []byte `gorm:"size:64;not null"`
	VotedAt        int64  `gorm:"not null"`
}

// TableName returns the table name
func (VoteRecord) TableName() string {
	return "vote_record"
}
