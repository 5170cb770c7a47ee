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

package oracle

import (
	"bytes"
	"testing"
	"time"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOracleAuthority = bytes.Repeat([]byte{0x02}, 32)

type mockClock struct {
	now  time.Time
	slot uint64
}

func (c *mockClock) Now() time.Time { return c.now }
func (c *mockClock) Slot() uint64   { return c.slot }

func setupTestGate(t *testing.T) (*Gate, *mockClock) {
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
			Authority:       bytes.Repeat([]byte{0x01}, 32),
			OracleAuthority: testOracleAuthority,
			ReserveVault:    bytes.Repeat([]byte{0x03}, 32),
			TokenMint:       bytes.Repeat([]byte{0x04}, 32),
			EpochDuration:   86400,
		})
	})
	require.NoError(t, err, "failed to init global state")
	clock := &mockClock{now: time.Unix(1_700_000_000, 0), slot: 10_000}
	gate := NewGate(Config{}, db, nil, clock, nil, nil)
	return gate, clock
}

func oracleSub(key []byte, now time.Time) *auth.Submission {
	return &auth.Submission{
		Verifications: []auth.SignatureVerification{
			{
				PublicKey: key,
				Signature: bytes.Repeat([]byte{0x55}, 64),
				Timestamp: now.Unix(),
				Verified:  true,
			},
		},
		Raw: []byte(`{"action":"oracle_update"}`),
	}
}

func validUpdate() Update {
	return Update{
		IndexValue:    1_000_000,
		YieldBps:      450,
		VolatilityBps: 1200,
		TotalTVL:      50_000_000,
	}
}

func TestSubmitUpdate(t *testing.T) {
	gate, clock := setupTestGate(t)

	snapshot, err := gate.SubmitUpdate(
		oracleSub(testOracleAuthority, clock.now),
		validUpdate(),
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), snapshot.IndexValue)
	assert.Equal(t, clock.now.Unix(), snapshot.Timestamp)
	assert.Equal(t, uint64(10_000), snapshot.Slot)

	latest, err := gate.LatestSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snapshot.IndexValue, latest.IndexValue)
}

func TestSubmitUpdateAuthority(t *testing.T) {
	gate, clock := setupTestGate(t)

	_, err := gate.SubmitUpdate(nil, validUpdate())
	require.ErrorIs(t, err, auth.ErrMissingSignatureVerification)

	other := bytes.Repeat([]byte{0x99}, 32)
	_, err = gate.SubmitUpdate(oracleSub(other, clock.now), validUpdate())
	require.ErrorIs(t, err, auth.ErrAgentMismatch)
}

func TestSubmitUpdateCadence(t *testing.T) {
	gate, clock := setupTestGate(t)

	_, err := gate.SubmitUpdate(
		oracleSub(testOracleAuthority, clock.now),
		validUpdate(),
	)
	require.NoError(t, err)

	// Three minutes later: wall-clock interval not met
	clock.now = clock.now.Add(3 * time.Minute)
	clock.slot += 200
	_, err = gate.SubmitUpdate(
		oracleSub(testOracleAuthority, clock.now),
		validUpdate(),
	)
	require.ErrorIs(t, err, ErrUpdateTooSoon)

	// Interval met but only 10 slots elapsed: slot buffer not met
	clock.now = clock.now.Add(2*time.Minute + time.Second)
	clock.slot = 10_010
	_, err = gate.SubmitUpdate(
		oracleSub(testOracleAuthority, clock.now),
		validUpdate(),
	)
	require.ErrorIs(t, err, ErrSlotBufferNotMet)

	// Both conditions met
	clock.slot = 10_100
	_, err = gate.SubmitUpdate(
		oracleSub(testOracleAuthority, clock.now),
		validUpdate(),
	)
	require.NoError(t, err)
}

func TestSubmitUpdateBounds(t *testing.T) {
	gate, clock := setupTestGate(t)

	testDefs := []struct {
		name   string
		mutate func(*Update)
		err    error
	}{
		{
			name:   "zero index",
			mutate: func(u *Update) { u.IndexValue = 0 },
			err:    ErrInvalidIndexValue,
		},
		{
			name:   "index above cap",
			mutate: func(u *Update) { u.IndexValue = DefaultMaxIndexValue + 1 },
			err:    ErrInvalidIndexValue,
		},
		{
			name:   "yield above cap",
			mutate: func(u *Update) { u.YieldBps = DefaultMaxYieldBps + 1 },
			err:    ErrInvalidYield,
		},
		{
			name: "volatility above cap",
			mutate: func(u *Update) {
				u.VolatilityBps = DefaultMaxVolatilityBps + 1
			},
			err: ErrInvalidVolatility,
		},
		{
			name:   "zero TVL",
			mutate: func(u *Update) { u.TotalTVL = 0 },
			err:    ErrInvalidTVL,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			update := validUpdate()
			testDef.mutate(&update)
			_, err := gate.SubmitUpdate(
				oracleSub(testOracleAuthority, clock.now),
				update,
			)
			require.ErrorIs(t, err, testDef.err)
		})
	}

	// Rejected batches leave no snapshot behind
	_, err := gate.LatestSnapshot()
	require.ErrorIs(t, err, models.ErrOracleSnapshotNotFound)
}
