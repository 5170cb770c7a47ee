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
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/oracle"
	"github.com/arslabs/arsd/policy"
	"github.com/arslabs/arsd/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAuthority = bytes.Repeat([]byte{0x01}, 32)
	testProposer  = bytes.Repeat([]byte{0x10}, 32)
)

type mockClock struct {
	now  time.Time
	slot uint64
}

func (c *mockClock) Now() time.Time { return c.now }
func (c *mockClock) Slot() uint64   { return c.slot }

func setupTestApi(t *testing.T) (*Api, *policy.Engine, *mockClock) {
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
		if err := db.InitGlobalState(txn, &models.GlobalState{
			Authority:       testAuthority,
			OracleAuthority: bytes.Repeat([]byte{0x02}, 32),
			ReserveVault:    bytes.Repeat([]byte{0x03}, 32),
			TokenMint:       bytes.Repeat([]byte{0x04}, 32),
			EpochDuration:   86400,
		}); err != nil {
			return err
		}
		return db.InitReserveState(txn, &models.ReserveState{
			TotalValueUSD:  1_000_000,
			LiabilitiesUSD: 800_000,
			VHRBps:         12500,
		})
	})
	require.NoError(t, err)
	clock := &mockClock{now: time.Unix(1_700_000_000, 0), slot: 1000}
	engine := policy.NewEngine(policy.Config{}, db, nil, clock, nil, nil)
	gate := oracle.NewGate(oracle.Config{}, db, nil, clock, nil, nil)
	reserve := vault.NewReserve(db, clock, nil)
	api := New(Config{}, engine, gate, reserve, nil)
	return api, engine, clock
}

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

func createTestProposal(
	t *testing.T,
	engine *policy.Engine,
	clock *mockClock,
) *models.PolicyProposal {
	t.Helper()
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, 1000)
	proposal, err := engine.CreateProposal(
		testSub(testProposer, clock.now),
		policy.CreateProposalRequest{
			Proposer:     testProposer,
			PolicyType:   models.PolicyMintSupply,
			Payload:      payload,
			VotingPeriod: 24 * time.Hour,
		},
	)
	require.NoError(t, err)
	return proposal
}

func doRequest(
	t *testing.T,
	api *Api,
	method string,
	path string,
	body string,
) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	api.routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	api, _, _ := setupTestApi(t)

	rec := doRequest(t, api, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"healthy":true}`, rec.Body.String())
}

func TestStateEndpoint(t *testing.T) {
	api, _, _ := setupTestApi(t)

	rec := doRequest(t, api, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, hex.EncodeToString(testAuthority), state.Authority)
	assert.Equal(t, uint64(12500), state.VHRBps)
}

func TestProposalEndpoints(t *testing.T) {
	api, engine, clock := setupTestApi(t)
	proposal := createTestProposal(t, engine, clock)

	rec := doRequest(t, api, http.MethodGet, "/api/v1/proposals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []proposalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, proposal.ID, list[0].ID)

	rec = doRequest(
		t,
		api,
		http.MethodGet,
		fmt.Sprintf("/api/v1/proposals/%d", proposal.ID),
		"",
	)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, api, http.MethodGet, "/api/v1/proposals/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, api, http.MethodGet, "/api/v1/proposals/bogus", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimVoteEndpoint(t *testing.T) {
	api, engine, clock := setupTestApi(t)
	proposal := createTestProposal(t, engine, clock)

	voter := bytes.Repeat([]byte{0x20}, 32)
	_, err := engine.VoteOnProposal(
		testSub(voter, clock.now),
		policy.VoteRequest{
			ProposalID: proposal.ID,
			Agent:      voter,
			Stake:      100,
			Prediction: true,
		},
	)
	require.NoError(t, err)

	body := fmt.Sprintf(
		`{"proposal_id":%d,"agent":"%s"}`,
		proposal.ID,
		hex.EncodeToString(voter),
	)

	// Claims stay closed while the proposal is active
	rec := doRequest(t, api, http.MethodPost, "/api/v1/votes/claim", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	clock.now = clock.now.Add(24*time.Hour + time.Second)
	_, err = engine.FinalizeProposal(
		testSub(voter, clock.now),
		voter,
		proposal.ID,
	)
	require.NoError(t, err)

	rec = doRequest(t, api, http.MethodPost, "/api/v1/votes/claim", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var vote voteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vote))
	assert.True(t, vote.Claimed)

	rec = doRequest(
		t,
		api,
		http.MethodPost,
		"/api/v1/votes/claim",
		`{"proposal_id":0,"agent":"zz"}`,
	)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOracleLatestNotFound(t *testing.T) {
	api, _, _ := setupTestApi(t)

	rec := doRequest(t, api, http.MethodGet, "/api/v1/oracle/latest", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
