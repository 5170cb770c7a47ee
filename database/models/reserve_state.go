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

var ErrReserveStateNotFound = errors.New("reserve state not found")

// ReserveState is the reserve accounting singleton row (ID is always 1).
// VHRBps is total value over liabilities in basis points, recomputed on
// every mutation and on oracle admission.
type ReserveState struct {
	ID                    uint   `gorm:"primarykey"`
	TotalValueUSD         uint64 `gorm:"not null"`
	LiabilitiesUSD        uint64 `gorm:"not null"`
	VHRBps                uint64 `gorm:"not null"`
	RebalanceThresholdBps uint16 `gorm:"not null"`
	LastRebalanceAt       int64
}

// TableName returns the table name
func (ReserveState) TableName() string {
	return "reserve_state"
}
