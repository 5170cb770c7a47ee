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
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAuthority = bytes.Repeat([]byte{0x01}, 32)
	testProposer  = bytes.Repeat([]byte{0x10}, 32)
	testVoterA    = bytes.Repeat([]byte{0x20}, 32)
	testVoterB    = bytes.Repeat([]byte{0x21}, 32)
)

// mockClock is a controllable Clock for window checks.
type mockClock struct {
	now  time.Time
	slot uint64
}

func (c *mockClock) Now() time.Time { return c.now }
func (c *mockClock) Slot() uint64   { return c.slot }

func (c *mockClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setupTestEngine(t *testing.T) (*Engine, *mockClock) {
	t.Helper()
	db, err := database.New("", nil, nil)
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	txn := db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		return db.InitGlobalState(txn, &models.GlobalState{
			Authority:       testAuthority,
			OracleAuthority: bytes.Repeat([]byte{0x02}, 32),
			ReserveVault:    bytes.Repeat([]byte{0x03}, 32),
			TokenMint:       bytes.Repeat([]byte{0x04}, 32),
			EpochDuration:   86400,
		})
	})
	require.NoError(t, err, "failed to init global state")
	clock := &mockClock{now: time.Unix(1_700_000_000, 0), slot: 1000}
	engine := NewEngine(Config{}, db, nil, clock, nil, nil)
	return engine, clock
}

// testSub builds a submission whose preceding verification step was
// verified for the given agent at the clock's current time.
func testSub(agent []byte, now time.Time) *auth.Submission {
	return &auth.Submission{
		Verifications: []auth.SignatureVerification{
			{
				PublicKey: agent,
				Signature: bytes.Repeat([]byte{0x33}, 64),
				Timestamp: now.Unix(),
				Verified:  true,
			},
		},
		Raw: []byte(`{"agent":"test"}`),
	}
}

func mintPayload(amount uint64) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, amount)
	return payload
}

func createTestProposal(
	t *testing.T,
	engine *Engine,
	clock *mockClock,
) *models.PolicyProposal {
	t.Helper()
	proposal, err := engine.CreateProposal(
		testSub(testProposer, clock.now),
		CreateProposalRequest{
			Proposer:     testProposer,
			PolicyType:   models.PolicyMintSupply,
			Payload:      mintPayload(1000),
			VotingPeriod: 24 * time.Hour,
		},
	)
	require.NoError(t, err)
	return proposal
}

func castVote(
	t *testing.T,
	engine *Engine,
	clock *mockClock,
	agent []byte,
	proposalID uint64,
	stake uint64,
	prediction bool,
) {
	t.Helper()
	_, err := engine.VoteOnProposal(
		testSub(agent, clock.now),
		VoteRequest{
			ProposalID: proposalID,
			Agent:      agent,
			Stake:      stake,
			Prediction: prediction,
		},
	)
	require.NoError(t, err)
}

func TestCreateProposalSequentialIDs(t *testing.T) {
	engine, clock := setupTestEngine(t)

	// Two proposals in the same instant must get distinct IDs
	p1 := createTestProposal(t, engine, clock)
	p2 := createTestProposal(t, engine, clock)
	assert.Equal(t, uint64(0), p1.ID)
	assert.Equal(t, uint64(1), p2.ID)
}

func TestCreateProposalRequiresAuthGate(t *testing.T) {
	engine, clock := setupTestEngine(t)

	req := CreateProposalRequest{
		Proposer:     testProposer,
		PolicyType:   models.PolicyMintSupply,
		Payload:      mintPayload(1000),
		VotingPeriod: 24 * time.Hour,
	}

	_, err := engine.CreateProposal(nil, req)
	require.ErrorIs(t, err, auth.ErrMissingSignatureVerification)

	// Verified step for a different key must not pass
	other := bytes.Repeat([]byte{0x77}, 32)
	_, err = engine.CreateProposal(testSub(other, clock.now), req)
	require.ErrorIs(t, err, auth.ErrAgentMismatch)

	// Stale signature must not pass
	stale := testSub(testProposer, clock.now.Add(-6*time.Minute))
	_, err = engine.CreateProposal(stale, req)
	require.ErrorIs(t, err, auth.ErrSignatureExpired)
}

func TestCreateProposalVotingPeriodBounds(t *testing.T) {
	engine, clock := setupTestEngine(t)

	for _, period := range []time.Duration{
		time.Minute,
		30 * 24 * time.Hour,
	} {
		_, err := engine.CreateProposal(
			testSub(testProposer, clock.now),
			CreateProposalRequest{
				Proposer:     testProposer,
				PolicyType:   models.PolicyMintSupply,
				Payload:      mintPayload(1000),
				VotingPeriod: period,
			},
		)
		require.ErrorIs(t, err, ErrInvalidVotingPeriod)
	}
}

func TestVoteAndFinalizePassed(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	castVote(t, engine, clock, testVoterA, proposal.ID, 600, true)
	castVote(t, engine, clock, testVoterB, proposal.ID, 400, false)

	clock.advance(24*time.Hour + time.Second)
	finalized, err := engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.NoError(t, err)
	// 600/1000 = 6000 bps > 5000
	assert.Equal(t, models.ProposalPassed, finalized.Status)
	assert.Equal(t, clock.now.Unix(), finalized.PassedAt)
}

func TestFinalizeExactSplitFails(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	castVote(t, engine, clock, testVoterA, proposal.ID, 500, true)
	castVote(t, engine, clock, testVoterB, proposal.ID, 500, false)

	clock.advance(24*time.Hour + time.Second)
	finalized, err := engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.NoError(t, err)
	// Exactly 5000 bps does not strictly exceed the threshold
	assert.Equal(t, models.ProposalFailed, finalized.Status)
	assert.Equal(t, int64(0), finalized.PassedAt)
}

func TestFinalizeZeroStake(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	clock.advance(24*time.Hour + time.Second)
	_, err := engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.ErrorIs(t, err, ErrInsufficientStake)

	// The proposal stays active and can still not be re-finalized
	// into a different state by the failure
	got, err := engine.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalActive, got.Status)
}

func TestFinalizeBeforeEnd(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)
	_, err := engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.ErrorIs(t, err, ErrProposalStillActive)
}

func TestDuplicateVoteLeavesStakesUnchanged(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)

	_, err := engine.VoteOnProposal(
		testSub(testVoterA, clock.now),
		VoteRequest{
			ProposalID: proposal.ID,
			Agent:      testVoterA,
			Stake:      900,
			Prediction: false,
		},
	)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	got, err := engine.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.YesStake)
	assert.Equal(t, uint64(0), got.NoStake)
}

func TestVoteAfterWindowEnd(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	clock.advance(24 * time.Hour)
	_, err := engine.VoteOnProposal(
		testSub(testVoterA, clock.now),
		VoteRequest{
			ProposalID: proposal.ID,
			Agent:      testVoterA,
			Stake:      100,
			Prediction: true,
		},
	)
	require.ErrorIs(t, err, ErrVotingEnded)
}

func TestVoteZeroStake(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	_, err := engine.VoteOnProposal(
		testSub(testVoterA, clock.now),
		VoteRequest{
			ProposalID: proposal.ID,
			Agent:      testVoterA,
			Stake:      0,
			Prediction: true,
		},
	)
	require.ErrorIs(t, err, ErrZeroStake)
}

func TestExecuteProposal(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)
	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)

	clock.advance(24*time.Hour + time.Second)
	_, err := engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.NoError(t, err)

	// Passed is not executable: the delay has to elapse first
	_, err = engine.ExecuteProposal(
		testSub(testAuthority, clock.now),
		testAuthority,
		proposal.ID,
	)
	require.ErrorIs(t, err, ErrExecutionDelayNotMet)

	// Non-authority callers are refused even after the delay
	clock.advance(12 * time.Hour)
	_, err = engine.ExecuteProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.ErrorIs(t, err, ErrUnauthorized)

	executed, err := engine.ExecuteProposal(
		testSub(testAuthority, clock.now),
		testAuthority,
		proposal.ID,
	)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalExecuted, executed.Status)

	// Executed is terminal
	_, err = engine.ExecuteProposal(
		testSub(testAuthority, clock.now),
		testAuthority,
		proposal.ID,
	)
	require.ErrorIs(t, err, ErrProposalNotPassed)
}

func TestExecuteBlockedByBreaker(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)
	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)

	clock.advance(24*time.Hour + time.Second)
	_, err := engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.NoError(t, err)

	require.NoError(t, engine.RequestCircuitBreaker(testAuthority))
	clock.advance(25 * time.Hour)
	require.NoError(t, engine.ActivateCircuitBreaker(testAuthority))

	_, err = engine.ExecuteProposal(
		testSub(testAuthority, clock.now),
		testAuthority,
		proposal.ID,
	)
	require.ErrorIs(t, err, ErrCircuitBreakerActive)

	// Deactivation unblocks execution immediately
	require.NoError(t, engine.DeactivateCircuitBreaker(testAuthority))
	_, err = engine.ExecuteProposal(
		testSub(testAuthority, clock.now),
		testAuthority,
		proposal.ID,
	)
	require.NoError(t, err)
}

func TestCancelProposal(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)
	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)

	// Only the authority may cancel
	_, err := engine.CancelProposal(testVoterA, proposal.ID)
	require.ErrorIs(t, err, ErrUnauthorized)

	cancelled, err := engine.CancelProposal(testAuthority, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalCancelled, cancelled.Status)

	// Refunds run through the regular claim path after cancellation
	vote, err := engine.ClaimVote(proposal.ID, testVoterA)
	require.NoError(t, err)
	assert.True(t, vote.Claimed)
}

func TestCancelAfterEnd(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	clock.advance(24 * time.Hour)
	_, err := engine.CancelProposal(testAuthority, proposal.ID)
	require.ErrorIs(t, err, ErrVotingEnded)
}

func TestClaimVoteIdempotent(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)
	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)

	// Claims stay closed while the proposal is active
	_, err := engine.ClaimVote(proposal.ID, testVoterA)
	require.ErrorIs(t, err, ErrProposalNotActive)

	clock.advance(24*time.Hour + time.Second)
	_, err = engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.NoError(t, err)

	first, err := engine.ClaimVote(proposal.ID, testVoterA)
	require.NoError(t, err)
	assert.True(t, first.Claimed)

	// A second claim is a no-op, not an error
	second, err := engine.ClaimVote(proposal.ID, testVoterA)
	require.NoError(t, err)
	assert.True(t, second.Claimed)
}

func TestCircuitBreakerTimelock(t *testing.T) {
	engine, clock := setupTestEngine(t)

	// Activation without a request is refused
	err := engine.ActivateCircuitBreaker(testAuthority)
	require.ErrorIs(t, err, ErrBreakerNotRequested)

	require.NoError(t, engine.RequestCircuitBreaker(testAuthority))

	// One hour after the request the timelock has not elapsed
	clock.advance(time.Hour)
	err = engine.ActivateCircuitBreaker(testAuthority)
	require.ErrorIs(t, err, ErrCircuitBreakerTimelockNotMet)

	// Just past the full delay it succeeds
	clock.advance(23*time.Hour + time.Second)
	require.NoError(t, engine.ActivateCircuitBreaker(testAuthority))

	state, err := engine.BreakerState()
	require.NoError(t, err)
	assert.Equal(t, models.BreakerActive, state)
}

func TestCircuitBreakerAuthority(t *testing.T) {
	engine, _ := setupTestEngine(t)

	require.ErrorIs(
		t,
		engine.RequestCircuitBreaker(testVoterA),
		ErrUnauthorized,
	)
	require.NoError(t, engine.RequestCircuitBreaker(testAuthority))
	require.ErrorIs(
		t,
		engine.RequestCircuitBreaker(testAuthority),
		ErrBreakerAlreadyRequested,
	)

	// A pending request can be withdrawn without waiting
	require.NoError(t, engine.DeactivateCircuitBreaker(testAuthority))
	state, err := engine.BreakerState()
	require.NoError(t, err)
	assert.Equal(t, models.BreakerIdle, state)
}

func TestConcurrentCreateProposalUniqueIDs(t *testing.T) {
	engine, clock := setupTestEngine(t)

	// IDs handed out under interleaved creation must be strictly
	// sequential with no repeats and no gaps
	const workers = 16
	ids := make(chan uint64, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			proposer := bytes.Repeat([]byte{byte(0x40 + n)}, 32)
			proposal, err := engine.CreateProposal(
				testSub(proposer, clock.now),
				CreateProposalRequest{
					Proposer:     proposer,
					PolicyType:   models.PolicyMintSupply,
					Payload:      mintPayload(1000),
					VotingPeriod: 24 * time.Hour,
				},
			)
			if err != nil {
				t.Errorf("failed to create proposal: %v", err)
				return
			}
			ids <- proposal.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	var maxId uint64
	for id := range ids {
		require.False(t, seen[id], "duplicate proposal ID %d", id)
		seen[id] = true
		if id > maxId {
			maxId = id
		}
	}
	require.Len(t, seen, workers)
	assert.Equal(t, uint64(workers-1), maxId)
}

func TestConcurrentDuplicateVotesSingleWinner(t *testing.T) {
	engine, clock := setupTestEngine(t)
	proposal := createTestProposal(t, engine, clock)

	// Simultaneous votes from the same agent leave exactly one winner
	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.VoteOnProposal(
				testSub(testVoterA, clock.now),
				VoteRequest{
					ProposalID: proposal.ID,
					Agent:      testVoterA,
					Stake:      100,
					Prediction: true,
				},
			)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrAlreadyVoted)
	}
	require.Equal(t, 1, succeeded)

	votes, err := engine.GetVotes(proposal.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)

	// Only the winning vote's stake was accumulated
	updated, err := engine.GetProposal(proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), updated.YesStake)
	assert.Equal(t, uint64(0), updated.NoStake)
}

func TestExecuteParameterUpdate(t *testing.T) {
	engine, clock := setupTestEngine(t)

	payload := make([]byte, 9)
	payload[0] = ParamStabilityFeeBps
	binary.BigEndian.PutUint64(payload[1:], 250)
	proposal, err := engine.CreateProposal(
		testSub(testProposer, clock.now),
		CreateProposalRequest{
			Proposer:     testProposer,
			PolicyType:   models.PolicyParameterUpdate,
			Payload:      payload,
			VotingPeriod: 24 * time.Hour,
		},
	)
	require.NoError(t, err)
	castVote(t, engine, clock, testVoterA, proposal.ID, 100, true)

	clock.advance(24*time.Hour + time.Second)
	_, err = engine.FinalizeProposal(
		testSub(testVoterA, clock.now),
		testVoterA,
		proposal.ID,
	)
	require.NoError(t, err)

	clock.advance(12 * time.Hour)
	executed, err := engine.ExecuteProposal(
		testSub(testAuthority, clock.now),
		testAuthority,
		proposal.ID,
	)
	require.NoError(t, err)
	require.Equal(t, models.ProposalExecuted, executed.Status)

	// The new parameter value lands in the same transaction as the
	// status change
	state, err := engine.GlobalState()
	require.NoError(t, err)
	assert.Equal(t, uint16(250), state.StabilityFeeBps)
}
