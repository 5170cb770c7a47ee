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

// reserveStateID is the fixed primary key of the singleton row.
const reserveStateID = 1

// GetReserveState fetches the reserve accounting singleton row.
func (d *Database) GetReserveState(txn *Txn) (*models.ReserveState, error) {
	var state models.ReserveState
	result := txn.Metadata().First(&state, reserveStateID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrReserveStateNotFound
		}
		return nil, result.Error
	}
	return &state, nil
}

// InitReserveState creates the reserve singleton row.
func (d *Database) InitReserveState(
	txn *Txn,
	state *models.ReserveState,
) error {
	state.ID = reserveStateID
	result := txn.Metadata().Create(state)
	return result.Error
}

// UpdateReserveState persists changes to the reserve singleton row.
func (d *Database) UpdateReserveState(
	txn *Txn,
	state *models.ReserveState,
) error {
	state.ID = reserveStateID
	result := txn.Metadata().Save(state)
	return result.Error
}
