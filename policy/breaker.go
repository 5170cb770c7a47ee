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
	"time"

	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/event"
)

// RequestCircuitBreaker starts the activation timelock. Activation
// only becomes possible after the configured delay has elapsed.
func (e *Engine) RequestCircuitBreaker(caller []byte) error {
	now := e.clock.Now()
	err := e.withTxn(func(txn *database.Txn) error {
		state, err := e.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		if !bytes.Equal(caller, state.Authority) {
			return ErrUnauthorized
		}
		switch state.BreakerState {
		case models.BreakerRequested:
			return ErrBreakerAlreadyRequested
		case models.BreakerActive:
			return ErrCircuitBreakerActive
		}
		state.BreakerState = models.BreakerRequested
		state.BreakerRequestedAt = now.Unix()
		return e.db.UpdateGlobalState(txn, state)
	})
	if err != nil {
		e.metrics.reject("breaker_request")
		return err
	}
	if e.metrics != nil {
		e.metrics.breakerState.Set(float64(models.BreakerRequested))
	}
	e.logger.Warn("circuit breaker activation requested")
	e.publish(event.BreakerChangedEventType, event.BreakerChangedEvent{
		State:       models.BreakerRequested,
		RequestedAt: now.Unix(),
	})
	return nil
}

// ActivateCircuitBreaker halts reserve debits and proposal execution.
// It succeeds only after the timelock started by RequestCircuitBreaker
// has fully elapsed.
func (e *Engine) ActivateCircuitBreaker(caller []byte) error {
	now := e.clock.Now()
	var requestedAt int64
	err := e.withTxn(func(txn *database.Txn) error {
		state, err := e.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		if !bytes.Equal(caller, state.Authority) {
			return ErrUnauthorized
		}
		if state.BreakerState != models.BreakerRequested {
			return ErrBreakerNotRequested
		}
		activatableAt := time.Unix(state.BreakerRequestedAt, 0).
			Add(e.cfg.CircuitBreakerDelay)
		if now.Before(activatableAt) {
			return ErrCircuitBreakerTimelockNotMet
		}
		requestedAt = state.BreakerRequestedAt
		state.BreakerState = models.BreakerActive
		state.BreakerActivatedAt = now.Unix()
		return e.db.UpdateGlobalState(txn, state)
	})
	if err != nil {
		e.metrics.reject("breaker_activate")
		return err
	}
	if e.metrics != nil {
		e.metrics.breakerState.Set(float64(models.BreakerActive))
	}
	e.logger.Warn("circuit breaker activated")
	e.publish(event.BreakerChangedEventType, event.BreakerChangedEvent{
		State:       models.BreakerActive,
		RequestedAt: requestedAt,
		ActivatedAt: now.Unix(),
	})
	return nil
}

// DeactivateCircuitBreaker returns the breaker to idle immediately.
// It also withdraws a pending request.
func (e *Engine) DeactivateCircuitBreaker(caller []byte) error {
	err := e.withTxn(func(txn *database.Txn) error {
		state, err := e.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		if !bytes.Equal(caller, state.Authority) {
			return ErrUnauthorized
		}
		if state.BreakerState == models.BreakerIdle {
			return ErrBreakerNotActive
		}
		state.BreakerState = models.BreakerIdle
		state.BreakerRequestedAt = 0
		state.BreakerActivatedAt = 0
		return e.db.UpdateGlobalState(txn, state)
	})
	if err != nil {
		e.metrics.reject("breaker_deactivate")
		return err
	}
	if e.metrics != nil {
		e.metrics.breakerState.Set(float64(models.BreakerIdle))
	}
	e.logger.Info("circuit breaker deactivated")
	e.publish(event.BreakerChangedEventType, event.BreakerChangedEvent{
		State: models.BreakerIdle,
	})
	return nil
}

// BreakerState returns the current breaker state.
func (e *Engine) BreakerState() (uint8, error) {
	txn := e.db.Transaction(false)
	defer txn.Release()
	state, err := e.db.GetGlobalState(txn)
	if err != nil {
		return 0, err
	}
	return state.BreakerState, nil
}

// GlobalState returns a copy of the protocol singleton row.
func (e *Engine) GlobalState() (*models.GlobalState, error) {
	txn := e.db.Transaction(false)
	defer txn.Release()
	return e.db.GetGlobalState(txn)
}
