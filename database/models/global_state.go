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

var ErrGlobalStateNotFound = errors.New("global state not found")

// Circuit breaker states. Transitions are Idle -> Requested -> Active
// and Active -> Idle; Requested -> Idle on explicit deactivation.
const (
	BreakerIdle      uint8 = 0
	BreakerRequested uint8 = 1
	BreakerActive    uint8 = 2
)

// GlobalState is the protocol-wide singleton row (ID is always 1).
// Custody references (oracle authority, reserve vault, token mint) are
// pinned at initialization and never change afterward.
type GlobalState struct {
	ID                   uint   `gorm:"primarykey"`
	Authority            []byte `gorm:"size:32;not null"`
	OracleAuthority      []byte `gorm:"size:32;not null"`
	ReserveVault         []byte `gorm:"size:32;not null"`
	TokenMint            []byte `gorm:"size:32;not null"`
	EpochDuration        int64  `gorm:"not null"`
	MintBurnCapBps       uint16 `gorm:"not null"`
	StabilityFeeBps      uint16 `gorm:"not null"`
	VHRWarnThresholdBps  uint64 `gorm:"not null"`
	VHRCritThresholdBps  uint64 `gorm:"not null"`
	ProposalCounter      uint64 `gorm:"not null"`
	BreakerState         uint8  `gorm:"not null"`
	BreakerRequestedAt   int64
	BreakerActivatedAt   int64
	LastOracleTimestamp  int64
	LastOracleSlot       uint64
}

// TableName returns the table name
func (GlobalState) TableName() string {
	return "global_state"
}
