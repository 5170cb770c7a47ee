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

package policy

import (
	"errors"
	"fmt"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/event"
)

// VoteRequest carries one agent's bet on a proposal.
type VoteRequest struct {
	ProposalID uint64
	Agent      []byte
	Stake      uint64
	Prediction bool
}

// VoteOnProposal records a stake-weighted bet. Each agent gets exactly
// one vote per proposal; a duplicate is rejected before any stake
// accumulator changes.
func (e *Engine) VoteOnProposal(
	sub *auth.Submission,
	req VoteRequest,
) (*models.VoteRecord, error) {
	now := e.clock.Now()
	if err := auth.RequireAgent(sub, req.Agent, now); err != nil {
		e.metrics.reject("vote")
		return nil, err
	}
	if req.Stake == 0 {
		e.metrics.reject("vote")
		return nil, ErrZeroStake
	}
	var vote *models.VoteRecord
	err := e.withTxn(func(txn *database.Txn) error {
		proposal, err := e.db.GetProposal(txn, req.ProposalID)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalActive {
			return ErrProposalNotActive
		}
		if now.Unix() >= proposal.EndTime {
			return ErrVotingEnded
		}
		_, err = e.db.GetVote(txn, req.ProposalID, req.Agent)
		if err == nil {
			return ErrAlreadyVoted
		}
		if !errors.Is(err, models.ErrVoteRecordNotFound) {
			return err
		}
		// Widened accumulators stay correct only if every addition is
		// checked; a failed check aborts the whole transaction.
		if req.Prediction {
			proposal.YesStake, err = checkedAdd(proposal.YesStake, req.Stake)
		} else {
			proposal.NoStake, err = checkedAdd(proposal.NoStake, req.Stake)
		}
		if err != nil {
			return err
		}
		step := sub.Verifications[len(sub.Verifications)-1]
		vote = &models.VoteRecord{
			ProposalID:     req.ProposalID,
			Agent:          req.Agent,
			StakeAmount:    req.Stake,
			Prediction:     req.Prediction,
			AgentSignature: step.Signature,
			VotedAt:        now.Unix(),
		}
		if err := e.db.CreateVote(txn, vote); err != nil {
			return fmt.Errorf("failed to create vote: %w", err)
		}
		if err := e.db.UpdateProposal(txn, proposal); err != nil {
			return fmt.Errorf("failed to update proposal: %w", err)
		}
		return e.recordSubmission(txn, sub)
	})
	if err != nil {
		e.metrics.reject("vote")
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.votesTotal.Inc()
		e.metrics.stakeTotal.Add(float64(req.Stake))
	}
	e.logger.Info(
		"vote cast",
		"proposal_id", req.ProposalID,
		"stake", req.Stake,
		"prediction", req.Prediction,
	)
	e.publish(event.VoteCastEventType, event.VoteCastEvent{
		ProposalID: req.ProposalID,
		Agent:      req.Agent,
		Stake:      req.Stake,
		Prediction: req.Prediction,
	})
	return vote, nil
}

// ClaimVote flips the claimed flag on a settled vote. The settlement
// service computes payouts externally; this call only marks the vote
// so a payout cannot be taken twice. It is idempotent.
func (e *Engine) ClaimVote(
	proposalID uint64,
	agent []byte,
) (*models.VoteRecord, error) {
	var vote *models.VoteRecord
	err := e.withTxn(func(txn *database.Txn) error {
		proposal, err := e.db.GetProposal(txn, proposalID)
		if err != nil {
			return err
		}
		// Claims open once the proposal has left the Active state,
		// including cancellation refunds.
		if proposal.Status == models.ProposalActive {
			return ErrProposalNotActive
		}
		vote, err = e.db.GetVote(txn, proposalID, agent)
		if err != nil {
			return err
		}
		if vote.Claimed {
			return nil
		}
		vote.Claimed = true
		if err := e.db.UpdateVote(txn, vote); err != nil {
			return fmt.Errorf("failed to update vote: %w", err)
		}
		return nil
	})
	if err != nil {
		e.metrics.reject("claim_vote")
		return nil, err
	}
	e.logger.Debug(
		"vote claimed",
		"proposal_id", proposalID,
	)
	return vote, nil
}

// GetVotes returns all votes on a proposal.
func (e *Engine) GetVotes(proposalID uint64) ([]models.VoteRecord, error) {
	txn := e.db.Transaction(false)
	defer txn.Release()
	return e.db.GetVotesByProposal(txn, proposalID)
}
