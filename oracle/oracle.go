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

// Package oracle implements the oracle update gate. An update batch is
// admitted only when every field is within bounds AND both cadence
// conditions hold: enough wall-clock time and enough slots since the
// last admitted batch.
package oracle

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/event"
	"github.com/arslabs/arsd/policy"
	"github.com/prometheus/client_golang/prometheus"
)

// Defaults for the gate parameters.
const (
	DefaultUpdateInterval   = 5 * time.Minute
	DefaultMinSlotBuffer    = 100
	DefaultMaxIndexValue    = 1_000_000_000_000
	DefaultMaxYieldBps      = 10000
	DefaultMaxVolatilityBps = 10000
)

// Config holds the gate bounds. Zero values are replaced with the
// defaults above.
type Config struct {
	UpdateInterval   time.Duration
	MinSlotBuffer    uint64
	MaxIndexValue    uint64
	MaxYieldBps      uint64
	MaxVolatilityBps uint64
}

func (c *Config) populateDefaults() {
	if c.UpdateInterval == 0 {
		c.UpdateInterval = DefaultUpdateInterval
	}
	if c.MinSlotBuffer == 0 {
		c.MinSlotBuffer = DefaultMinSlotBuffer
	}
	if c.MaxIndexValue == 0 {
		c.MaxIndexValue = DefaultMaxIndexValue
	}
	if c.MaxYieldBps == 0 {
		c.MaxYieldBps = DefaultMaxYieldBps
	}
	if c.MaxVolatilityBps == 0 {
		c.MaxVolatilityBps = DefaultMaxVolatilityBps
	}
}

// Update is one oracle batch submitted by the oracle authority.
type Update struct {
	IndexValue    uint64
	YieldBps      uint64
	VolatilityBps uint64
	TotalTVL      uint64
}

// Gate admits or rejects oracle update batches.
type Gate struct {
	mu       sync.Mutex
	cfg      Config
	db       *database.Database
	eventBus *event.EventBus
	clock    policy.Clock
	logger   *slog.Logger
	metrics  *gateMetrics
}

func NewGate(
	cfg Config,
	db *database.Database,
	eventBus *event.EventBus,
	clock policy.Clock,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Gate {
	cfg.populateDefaults()
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	g := &Gate{
		cfg:      cfg,
		db:       db,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger.With("component", "oracle"),
	}
	if promRegistry != nil {
		g.metrics = newGateMetrics(promRegistry)
	}
	return g
}

// SubmitUpdate runs one batch through the gate. Admission persists the
// snapshot, advances the cadence anchors, and publishes an event for
// the vault health monitor. Rejected batches leave no trace in state.
func (g *Gate) SubmitUpdate(
	sub *auth.Submission,
	update Update,
) (*models.OracleSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Now()
	slot := g.clock.Slot()
	var snapshot *models.OracleSnapshot
	txn := g.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		state, err := g.db.GetGlobalState(txn)
		if err != nil {
			return err
		}
		// Only the pinned oracle authority may feed the index
		if err := auth.RequireAgent(sub, state.OracleAuthority, now); err != nil {
			return err
		}
		if err := g.validateBounds(update); err != nil {
			return err
		}
		// Both cadence conditions must hold. The first admitted
		// batch has no anchor and bypasses cadence entirely.
		if state.LastOracleTimestamp > 0 {
			elapsed := now.Sub(time.Unix(state.LastOracleTimestamp, 0))
			if elapsed < g.cfg.UpdateInterval {
				return ErrUpdateTooSoon
			}
			if slot < state.LastOracleSlot+g.cfg.MinSlotBuffer {
				return ErrSlotBufferNotMet
			}
		}
		snapshot = &models.OracleSnapshot{
			IndexValue:    update.IndexValue,
			YieldBps:      update.YieldBps,
			VolatilityBps: update.VolatilityBps,
			TotalTVL:      update.TotalTVL,
			Timestamp:     now.Unix(),
			Slot:          slot,
		}
		if err := g.db.AddOracleSnapshot(txn, snapshot); err != nil {
			return err
		}
		state.LastOracleTimestamp = now.Unix()
		state.LastOracleSlot = slot
		if err := g.db.UpdateGlobalState(txn, state); err != nil {
			return err
		}
		if sub != nil && len(sub.Raw) > 0 {
			return database.StoreSubmission(txn, sub.Hash(), sub.Raw)
		}
		return nil
	})
	if err != nil {
		g.metrics.reject()
		return nil, err
	}
	g.metrics.admit()
	g.logger.Info(
		"oracle update admitted",
		"index_value", update.IndexValue,
		"slot", slot,
	)
	if g.eventBus != nil {
		g.eventBus.Publish(
			event.OracleUpdatedEventType,
			event.NewEvent(
				event.OracleUpdatedEventType,
				event.OracleUpdatedEvent{
					IndexValue:    update.IndexValue,
					YieldBps:      update.YieldBps,
					VolatilityBps: update.VolatilityBps,
					TotalTVL:      update.TotalTVL,
					Timestamp:     now.Unix(),
					Slot:          slot,
				},
			),
		)
	}
	return snapshot, nil
}

func (g *Gate) validateBounds(update Update) error {
	if update.IndexValue == 0 || update.IndexValue > g.cfg.MaxIndexValue {
		return ErrInvalidIndexValue
	}
	if update.YieldBps > g.cfg.MaxYieldBps {
		return ErrInvalidYield
	}
	if update.VolatilityBps > g.cfg.MaxVolatilityBps {
		return ErrInvalidVolatility
	}
	if update.TotalTVL == 0 {
		return ErrInvalidTVL
	}
	return nil
}

// LatestSnapshot returns the most recently admitted batch.
func (g *Gate) LatestSnapshot() (*models.OracleSnapshot, error) {
	txn := g.db.Transaction(false)
	defer txn.Release()
	return g.db.GetLatestOracleSnapshot(txn)
}

// Snapshots returns admitted batches newest first, capped at limit.
func (g *Gate) Snapshots(limit int) ([]models.OracleSnapshot, error) {
	txn := g.db.Transaction(false)
	defer txn.Release()
	return g.db.GetOracleSnapshots(txn, limit)
}
