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
	"bytes"
	"fmt"
	"time"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/event"
)

// CreateProposalRequest carries the proposer's inputs for a new
// policy proposal.
type CreateProposalRequest struct {
	Proposer     []byte
	PolicyType   uint8
	Payload      []byte
	VotingPeriod time.Duration
}

// CreateProposal registers a new proposal. The ID comes from the
// global counter, so two proposals submitted in the same instant still
// get distinct sequential IDs.
func (e *Engine) CreateProposal(
	sub *auth.Submission,
	req CreateProposalRequest,
) (*models.PolicyProposal, error) {
	now := e.clock.Now()
	if err := auth.RequireAgent(sub, req.Proposer, now); err != nil {
		e.metrics.reject("create_proposal")
		return nil, err
	}
	if req.VotingPeriod < e.cfg.MinVotingPeriod ||
		req.VotingPeriod > e.cfg.MaxVotingPeriod {
		e.metrics.reject("create_proposal")
		return nil, ErrInvalidVotingPeriod
	}
	if err := validatePayload(req.PolicyType, req.Payload); err != nil {
		e.metrics.reject("create_proposal")
		return nil, err
	}
	var proposal *models.PolicyProposal
	err := e.withTxn(func(txn *database.Txn) error {
		id, err := e.db.AllocateProposalID(txn)
		if err != nil {
			return err
		}
		proposal = &models.PolicyProposal{
			ID:         id,
			Proposer:   req.Proposer,
			PolicyType: req.PolicyType,
			Payload:    req.Payload,
			StartTime:  now.Unix(),
			EndTime:    now.Add(req.VotingPeriod).Unix(),
			Status:     models.ProposalActive,
		}
		if err := e.db.CreateProposal(txn, proposal); err != nil {
			return fmt.Errorf("failed to create proposal: %w", err)
		}
		return e.recordSubmission(txn, sub)
	})
	if err != nil {
		e.metrics.reject("create_proposal")
		return nil, err
	}
	e.metrics.proposalEvent("created")
	e.logger.Info(
		"proposal created",
		"proposal_id", proposal.ID,
		"policy_type", proposal.PolicyType,
		"end_time", proposal.EndTime,
	)
	e.publish(event.ProposalCreatedEventType, event.ProposalCreatedEvent{
		ProposalID: proposal.ID,
		Proposer:   proposal.Proposer,
		PolicyType: proposal.PolicyType,
		EndTime:    proposal.EndTime,
	})
	return proposal, nil
}

// FinalizeProposal settles an active proposal after its voting window
// ends. Any authenticated agent may finalize; the outcome depends only
// on the recorded stakes.
func (e *Engine) FinalizeProposal(
	sub *auth.Submission,
	caller []byte,
	proposalID uint64,
) (*models.PolicyProposal, error) {
	now := e.clock.Now()
	if err := auth.RequireAgent(sub, caller, now); err != nil {
		e.metrics.reject("finalize_proposal")
		return nil, err
	}
	var proposal *models.PolicyProposal
	var ratioBps uint64
	err := e.withTxn(func(txn *database.Txn) error {
		var err error
		proposal, err = e.db.GetProposal(txn, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalActive {
			return ErrProposalNotActive
		}
		if now.Unix() < proposal.EndTime {
			return ErrProposalStillActive
		}
		ratioBps, err = approvalRatioBps(proposal.YesStake, proposal.NoStake)
		if err != nil {
			return err
		}
		if ratioBps > PassThresholdBps {
			proposal.Status = models.ProposalPassed
			proposal.PassedAt = now.Unix()
		} else {
			proposal.Status = models.ProposalFailed
		}
		if err := e.db.UpdateProposal(txn, proposal); err != nil {
			return fmt.Errorf("failed to update proposal: %w", err)
		}
		return e.recordSubmission(txn, sub)
	})
	if err != nil {
		e.metrics.reject("finalize_proposal")
		return nil, err
	}
	passed := proposal.Status == models.ProposalPassed
	if passed {
		e.metrics.proposalEvent("passed")
	} else {
		e.metrics.proposalEvent("failed")
	}
	e.logger.Info(
		"proposal finalized",
		"proposal_id", proposal.ID,
		"passed", passed,
		"ratio_bps", ratioBps,
	)
	e.publish(event.ProposalFinalizedEventType, event.ProposalFinalizedEvent{
		ProposalID: proposal.ID,
		Passed:     passed,
		YesStake:   proposal.YesStake,
		NoStake:    proposal.NoStake,
		RatioBps:   ratioBps,
	})
	return proposal, nil
}

// ExecuteProposal applies a passed proposal after the execution delay.
// Only the protocol authority may execute, and execution is refused
// while the circuit breaker is active.
func (e *Engine) ExecuteProposal(
	sub *auth.Submission,
	caller []byte,
	proposalID uint64,
) (*models.PolicyProposal, error) {
	now := e.clock.Now()
	if err := auth.RequireAgent(sub, caller, now); err != nil {
		e.metrics.reject("execute_proposal")
		return nil, err
	}
	var proposal *models.PolicyProposal
	err := e.withTxn(func(txn *database.Txn) error {
		state, err := e.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		if !bytes.Equal(caller, state.Authority) {
			return ErrUnauthorized
		}
		if state.BreakerState == models.BreakerActive {
			return ErrCircuitBreakerActive
		}
		proposal, err = e.db.GetProposal(txn, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalPassed {
			return ErrProposalNotPassed
		}
		executableAt := time.Unix(proposal.PassedAt, 0).
			Add(e.cfg.ExecutionDelay)
		if now.Before(executableAt) {
			return ErrExecutionDelayNotMet
		}
		proposal.Status = models.ProposalExecuted
		if err := e.db.UpdateProposal(txn, proposal); err != nil {
			return fmt.Errorf("failed to update proposal: %w", err)
		}
		// Parameter updates take effect within the same transaction;
		// mint/burn/rebalance effects flow to the reserve through the
		// execution event
		if proposal.PolicyType == models.PolicyParameterUpdate {
			if err := applyParameterUpdate(state, proposal.Payload); err != nil {
				return err
			}
			if err := e.db.UpdateGlobalState(txn, state); err != nil {
				return fmt.Errorf("failed to update global state: %w", err)
			}
		}
		return e.recordSubmission(txn, sub)
	})
	if err != nil {
		e.metrics.reject("execute_proposal")
		return nil, err
	}
	e.metrics.proposalEvent("executed")
	e.logger.Info(
		"proposal executed",
		"proposal_id", proposal.ID,
		"policy_type", proposal.PolicyType,
	)
	e.publish(event.ProposalExecutedEventType, event.ProposalExecutedEvent{
		ProposalID: proposal.ID,
		PolicyType: proposal.PolicyType,
		Payload:    proposal.Payload,
	})
	return proposal, nil
}

// CancelProposal withdraws an active proposal before its voting window
// ends. This is an authority override, not an agent action, so it is
// identity-checked but not submission-gated. Stake already placed is
// returned through the regular claim path.
func (e *Engine) CancelProposal(
	caller []byte,
	proposalID uint64,
) (*models.PolicyProposal, error) {
	now := e.clock.Now()
	var proposal *models.PolicyProposal
	err := e.withTxn(func(txn *database.Txn) error {
		state, err := e.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		if !bytes.Equal(caller, state.Authority) {
			return ErrUnauthorized
		}
		proposal, err = e.db.GetProposal(txn, proposalID)
		if err != nil {
			return err
		}
		if proposal.Status != models.ProposalActive {
			return ErrProposalNotActive
		}
		if now.Unix() >= proposal.EndTime {
			return ErrVotingEnded
		}
		proposal.Status = models.ProposalCancelled
		if err := e.db.UpdateProposal(txn, proposal); err != nil {
			return fmt.Errorf("failed to update proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		e.metrics.reject("cancel_proposal")
		return nil, err
	}
	e.metrics.proposalEvent("cancelled")
	e.logger.Info("proposal cancelled", "proposal_id", proposal.ID)
	e.publish(event.ProposalCancelledEventType, event.ProposalCancelledEvent{
		ProposalID: proposal.ID,
	})
	return proposal, nil
}

// GetProposal returns a proposal by ID.
func (e *Engine) GetProposal(id uint64) (*models.PolicyProposal, error) {
	txn := e.db.Transaction(false)
	defer txn.Release()
	return e.db.GetProposal(txn, id)
}

// ListProposals returns proposals newest first, capped at limit.
func (e *Engine) ListProposals(limit int) ([]models.PolicyProposal, error) {
	txn := e.db.Transaction(false)
	defer txn.Release()
	return e.db.GetProposals(txn, limit)
}
