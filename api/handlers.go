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

package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/policy"
)

const defaultListLimit = 100

type proposalResponse struct {
	ID         uint64 `json:"id"`
	Proposer   string `json:"proposer"`
	PolicyType uint8  `json:"policy_type"`
	Payload    string `json:"payload,omitempty"`
	StartTime  int64  `json:"start_time"`
	EndTime    int64  `json:"end_time"`
	YesStake   uint64 `json:"yes_stake"`
	NoStake    uint64 `json:"no_stake"`
	Status     uint8  `json:"status"`
	PassedAt   int64  `json:"passed_at,omitempty"`
}

type voteResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Agent      string `json:"agent"`
	Stake      uint64 `json:"stake"`
	Prediction bool   `json:"prediction"`
	Claimed    bool   `json:"claimed"`
	VotedAt    int64  `json:"voted_at"`
}

type stateResponse struct {
	Authority           string `json:"authority"`
	ProposalCounter     uint64 `json:"proposal_counter"`
	BreakerState        uint8  `json:"breaker_state"`
	BreakerRequestedAt  int64  `json:"breaker_requested_at,omitempty"`
	BreakerActivatedAt  int64  `json:"breaker_activated_at,omitempty"`
	LastOracleTimestamp int64  `json:"last_oracle_timestamp,omitempty"`
	LastOracleSlot      uint64 `json:"last_oracle_slot,omitempty"`
	TotalValueUSD       uint64 `json:"total_value_usd"`
	LiabilitiesUSD      uint64 `json:"liabilities_usd"`
	VHRBps              uint64 `json:"vhr_bps"`
}

func toProposalResponse(p *models.PolicyProposal) proposalResponse {
	return proposalResponse{
		ID:         p.ID,
		Proposer:   hex.EncodeToString(p.Proposer),
		PolicyType: p.PolicyType,
		Payload:    hex.EncodeToString(p.Payload),
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		YesStake:   p.YesStake,
		NoStake:    p.NoStake,
		Status:     p.Status,
		PassedAt:   p.PassedAt,
	}
}

func toVoteResponse(v *models.VoteRecord) voteResponse {
	return voteResponse{
		ProposalID: v.ProposalID,
		Agent:      hex.EncodeToString(v.Agent),
		Stake:      v.StakeAmount,
		Prediction: v.Prediction,
		Claimed:    v.Claimed,
		VotedAt:    v.VotedAt,
	}
}

func (a *Api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *Api) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrPolicyProposalNotFound),
		errors.Is(err, models.ErrVoteRecordNotFound),
		errors.Is(err, models.ErrOracleSnapshotNotFound),
		errors.Is(err, models.ErrReserveStateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, policy.ErrProposalNotActive):
		status = http.StatusConflict
	}
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *Api) handleRoot(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{
		"service": "arsd",
	})
}

func (a *Api) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := a.engine.GlobalState(); err != nil {
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]bool{
			"healthy": false,
		})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]bool{"healthy": true})
}

func (a *Api) handleState(w http.ResponseWriter, r *http.Request) {
	global, err := a.engine.GlobalState()
	if err != nil {
		a.writeError(w, err)
		return
	}
	reserve, err := a.reserve.State()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, stateResponse{
		Authority:           hex.EncodeToString(global.Authority),
		ProposalCounter:     global.ProposalCounter,
		BreakerState:        global.BreakerState,
		BreakerRequestedAt:  global.BreakerRequestedAt,
		BreakerActivatedAt:  global.BreakerActivatedAt,
		LastOracleTimestamp: global.LastOracleTimestamp,
		LastOracleSlot:      global.LastOracleSlot,
		TotalValueUSD:       reserve.TotalValueUSD,
		LiabilitiesUSD:      reserve.LiabilitiesUSD,
		VHRBps:              reserve.VHRBps,
	})
}

func (a *Api) handleProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := a.engine.ListProposals(defaultListLimit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resp := make([]proposalResponse, 0, len(proposals))
	for i := range proposals {
		resp = append(resp, toProposalResponse(&proposals[i]))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *Api) handleProposal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid proposal id",
		})
		return
	}
	proposal, err := a.engine.GetProposal(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toProposalResponse(proposal))
}

func (a *Api) handleProposalVotes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid proposal id",
		})
		return
	}
	votes, err := a.engine.GetVotes(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	resp := make([]voteResponse, 0, len(votes))
	for i := range votes {
		resp = append(resp, toVoteResponse(&votes[i]))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *Api) handleOracleLatest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.gate.LatestSnapshot()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, snapshot)
}

type claimRequest struct {
	ProposalID uint64 `json:"proposal_id"`
	Agent      string `json:"agent"`
}

func (a *Api) handleClaimVote(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
		return
	}
	agent, err := hex.DecodeString(req.Agent)
	if err != nil || len(agent) != 32 {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid agent key",
		})
		return
	}
	vote, err := a.engine.ClaimVote(req.ProposalID, agent)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toVoteResponse(vote))
}
