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

// CreateVote inserts a vote record. The composite unique index on
// (proposal_id, agent) rejects a second vote by the same agent at the
// storage level even if a caller skips the existence check.
func (d *Database) CreateVote(
	txn *Txn,
	vote *models.VoteRecord,
) error {
	result := txn.Metadata().Create(vote)
	return result.Error
}

// GetVote fetches the vote by the given agent on the given proposal.
func (d *Database) GetVote(
	txn *Txn,
	proposalID uint64,
	agent []byte,
) (*models.VoteRecord, error) {
	var vote models.VoteRecord
	result := txn.Metadata().
		Where("proposal_id = ? AND agent = ?", proposalID, agent).
		First(&vote)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrVoteRecordNotFound
		}
		return nil, result.Error
	}
	return &vote, nil
}

// GetVotesByProposal returns all votes on a proposal in vote order.
func (d *Database) GetVotesByProposal(
	txn *Txn,
	proposalID uint64,
) ([]models.VoteRecord, error) {
	var votes []models.VoteRecord
	result := txn.Metadata().
		Where("proposal_id = ?", proposalID).
		Order("id ASC").
		Find(&votes)
	if result.Error != nil {
		return nil, result.Error
	}
	return votes, nil
}

// UpdateVote persists changes to an existing vote record.
func (d *Database) UpdateVote(
	txn *Txn,
	vote *models.VoteRecord,
) error {
	result := txn.Metadata().Save(vote)
	return result.Error
}
