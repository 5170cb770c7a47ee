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

// CreateProposal inserts a new proposal row. The ID must come from
// AllocateProposalID in the same transaction.
func (d *Database) CreateProposal(
	txn *Txn,
	proposal *models.PolicyProposal,
) error {
	result := txn.Metadata().Create(proposal)
	return result.Error
}

// GetProposal fetches a proposal by ID.
func (d *Database) GetProposal(
	txn *Txn,
	id uint64,
) (*models.PolicyProposal, error) {
	var proposal models.PolicyProposal
	result := txn.Metadata().First(&proposal, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrPolicyProposalNotFound
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// UpdateProposal persists changes to an existing proposal row.
func (d *Database) UpdateProposal(
	txn *Txn,
	proposal *models.PolicyProposal,
) error {
	result := txn.Metadata().Save(proposal)
	return result.Error
}

// GetProposalsByStatus returns proposals in the given status, newest
// first, capped at limit (0 means no cap).
func (d *Database) GetProposalsByStatus(
	txn *Txn,
	status uint8,
	limit int,
) ([]models.PolicyProposal, error) {
	var proposals []models.PolicyProposal
	query := txn.Metadata().
		Where("status = ?", status).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&proposals)
	if result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// GetProposals returns proposals newest first, capped at limit
// (0 means no cap).
func (d *Database) GetProposals(
	txn *Txn,
	limit int,
) ([]models.PolicyProposal, error) {
	var proposals []models.PolicyProposal
	query := txn.Metadata().Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&proposals)
	if result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}
