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

var ErrOracleSnapshotNotFound = errors.New("oracle snapshot not found")

// OracleSnapshot is one admitted oracle batch. Rejected batches are
// never persisted, so the table doubles as the admission history.
type OracleSnapshot struct {
	ID            uint   `gorm:"primarykey"`
	IndexValue    uint64 `gorm:"not null"`
	YieldBps      uint64 `gorm:"not null"`
	VolatilityBps uint64 `gorm:"not null"`
	TotalTVL      uint64 `gorm:"not null"`
	Timestamp     int64  `gorm:"not null;index"`
	Slot          uint64 `gorm:"not null;index"`
}

// TableName returns the table name
func (OracleSnapshot) TableName() string {
	return "oracle_snapshot"
}
