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

// Package vault tracks reserve accounting and vault health. Custody of
// the underlying assets is external; this package mirrors the balances
// the custodian reports and enforces the circuit breaker on debits.
package vault

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"math/bits"
	"sync"

	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/policy"
)

var (
	ErrZeroAmount          = errors.New("amount must be positive")
	ErrDebitsHalted        = errors.New("reserve debits halted by circuit breaker")
	ErrInsufficientReserve = errors.New("reserve balance too low")
)

// Reserve mirrors the custodian's balances and recomputes the vault
// health ratio on every change.
type Reserve struct {
	mu     sync.Mutex
	db     *database.Database
	clock  policy.Clock
	logger *slog.Logger
}

func NewReserve(
	db *database.Database,
	clock policy.Clock,
	logger *slog.Logger,
) *Reserve {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Reserve{
		db:     db,
		clock:  clock,
		logger: logger.With("component", "vault"),
	}
}

// vhrBps computes value/liabilities in basis points through a 128-bit
// intermediate. A vault with no liabilities is reported as maximally
// healthy.
func vhrBps(totalValue, liabilities uint64) uint64 {
	if liabilities == 0 {
		return math.MaxUint64
	}
	hi, lo := bits.Mul64(totalValue, 10000)
	if hi >= liabilities {
		// Quotient would not fit in 64 bits
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, liabilities)
	return quo
}

// Deposit credits the reserve.
func (r *Reserve) Deposit(amount uint64) (*models.ReserveState, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var state *models.ReserveState
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		var err error
		state, err = r.db.GetReserveState(txn)
		if err != nil {
			return err
		}
		sum, carry := bits.Add64(state.TotalValueUSD, amount, 0)
		if carry != 0 {
			return errors.New("reserve value overflow")
		}
		state.TotalValueUSD = sum
		state.VHRBps = vhrBps(state.TotalValueUSD, state.LiabilitiesUSD)
		return r.db.UpdateReserveState(txn, state)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("reserve deposit", "amount", amount, "vhr_bps", state.VHRBps)
	return state, nil
}

// Withdraw debits the reserve. Debits are refused while the circuit
// breaker is active.
func (r *Reserve) Withdraw(amount uint64) (*models.ReserveState, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var state *models.ReserveState
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		global, err := r.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		if global.BreakerState == models.BreakerActive {
			return ErrDebitsHalted
		}
		state, err = r.db.GetReserveState(txn)
		if err != nil {
			return err
		}
		if amount > state.TotalValueUSD {
			return ErrInsufficientReserve
		}
		state.TotalValueUSD -= amount
		state.VHRBps = vhrBps(state.TotalValueUSD, state.LiabilitiesUSD)
		return r.db.UpdateReserveState(txn, state)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("reserve withdrawal", "amount", amount, "vhr_bps", state.VHRBps)
	return state, nil
}

// ApplyPolicy applies an executed proposal's effect to the reserve
// accounting. Mint grows liabilities (more tokens backed by the same
// reserve), burn shrinks them, rebalance stamps the rebalance time.
func (r *Reserve) ApplyPolicy(policyType uint8, amount uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn := r.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		state, err := r.db.GetReserveState(txn)
		if err != nil {
			return err
		}
		switch policyType {
		case models.PolicyMintSupply:
			sum, carry := bits.Add64(state.LiabilitiesUSD, amount, 0)
			if carry != 0 {
				return errors.New("liabilities overflow")
			}
			state.LiabilitiesUSD = sum
		case models.PolicyBurnSupply:
			if amount > state.LiabilitiesUSD {
				state.LiabilitiesUSD = 0
			} else {
				state.LiabilitiesUSD -= amount
			}
		case models.PolicyRebalance:
			state.LastRebalanceAt = r.clock.Now().Unix()
		default:
			return nil
		}
		state.VHRBps = vhrBps(state.TotalValueUSD, state.LiabilitiesUSD)
		return r.db.UpdateReserveState(txn, state)
	})
	if err != nil {
		return err
	}
	r.logger.Info("policy applied to reserve", "policy_type", policyType)
	return nil
}

// State returns a copy of the reserve accounting row.
func (r *Reserve) State() (*models.ReserveState, error) {
	txn := r.db.Transaction(false)
	defer txn.Release()
	return r.db.GetReserveState(txn)
}
