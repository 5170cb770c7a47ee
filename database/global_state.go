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
	"math"

	"github.com/arslabs/arsd/database/models"
	"gorm.io/gorm"
)

var ErrProposalCounterOverflow = errors.New("proposal counter overflow")

// globalStateID is the fixed primary key of the singleton row.
const globalStateID = 1

// GetGlobalState fetches the protocol singleton row.
func (d *Database) GetGlobalState(txn *Txn) (*models.GlobalState, error) {
	var state models.GlobalState
	result := txn.Metadata().First(&state, globalStateID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrGlobalStateNotFound
		}
		return nil, result.Error
	}
	return &state, nil
}

// InitGlobalState creates the singleton row. Custody references are
// pinned here and never updated afterward.
func (d *Database) InitGlobalState(
	txn *Txn,
	state *models.GlobalState,
) error {
	state.ID = globalStateID
	result := txn.Metadata().Create(state)
	return result.Error
}

// UpdateGlobalState persists changes to the singleton row.
func (d *Database) UpdateGlobalState(
	txn *Txn,
	state *models.GlobalState,
) error {
	state.ID = globalStateID
	result := txn.Metadata().Save(state)
	return result.Error
}

// AllocateProposalID returns the next proposal ID and advances the
// counter with an overflow check. IDs are handed out strictly in
// sequence and never reused, regardless of wall-clock time.
func (d *Database) AllocateProposalID(txn *Txn) (uint64, error) {
	state, err := d.GetGlobalState(txn)
	if err != nil {
		return 0, err
	}
	id := state.ProposalCounter
	if id == math.MaxUint64 {
		return 0, ErrProposalCounterOverflow
	}
	state.ProposalCounter = id + 1
	if err := d.UpdateGlobalState(txn, state); err != nil {
		return 0, err
	}
	return id, nil
}
