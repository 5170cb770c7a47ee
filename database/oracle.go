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

package database

import (
	"errors"

	"github.com/arslabs/arsd/database/models"
	"gorm.io/gorm"
)

// AddOracleSnapshot records an admitted oracle batch.
func (d *Database) AddOracleSnapshot(
	txn *Txn,
	snapshot *models.OracleSnapshot,
) error {
	result := txn.Metadata().Create(snapshot)
	return result.Error
}

// GetLatestOracleSnapshot returns the most recently admitted batch.
func (d *Database) GetLatestOracleSnapshot(
	txn *Txn,
) (*models.OracleSnapshot, error) {
	var snapshot models.OracleSnapshot
	result := txn.Metadata().
		Order("id DESC").
		First(&snapshot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrOracleSnapshotNotFound
		}
		return nil, result.Error
	}
	return &snapshot, nil
}

// GetOracleSnapshots returns admitted batches newest first, capped at
// limit (0 means no cap).
func (d *Database) GetOracleSnapshots(
	txn *Txn,
	limit int,
) ([]models.OracleSnapshot, error) {
	var snapshots []models.OracleSnapshot
	query := txn.Metadata().Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&snapshots)
	if result.Error != nil {
		return nil, result.Error
	}
	return snapshots, nil
}
