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

package vault

import (
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor recomputes vault health whenever an oracle batch is admitted
// or a reserve-affecting proposal executes. It publishes signal events
// only; requesting the circuit breaker stays an authority decision.
type Monitor struct {
	db       *database.Database
	reserve  *Reserve
	eventBus *event.EventBus
	logger   *slog.Logger
	vhrGauge prometheus.Gauge
	subIds   []subscription
}

type subscription struct {
	eventType event.EventType
	id        event.EventSubscriberId
}

func NewMonitor(
	db *database.Database,
	reserve *Reserve,
	eventBus *event.EventBus,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Monitor {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	m := &Monitor{
		db:       db,
		reserve:  reserve,
		eventBus: eventBus,
		logger:   logger.With("component", "vault_monitor"),
	}
	if promRegistry != nil {
		m.vhrGauge = promauto.With(promRegistry).NewGauge(
			prometheus.GaugeOpts{
				Name: "vault_vhr_bps",
				Help: "current vault health ratio in basis points",
			},
		)
	}
	return m
}

// Start subscribes the monitor to its trigger events.
func (m *Monitor) Start() {
	oracleSub := m.eventBus.SubscribeFunc(
		event.OracleUpdatedEventType,
		m.handleOracleUpdate,
	)
	execSub := m.eventBus.SubscribeFunc(
		event.ProposalExecutedEventType,
		m.handleProposalExecuted,
	)
	m.subIds = []subscription{
		{event.OracleUpdatedEventType, oracleSub},
		{event.ProposalExecutedEventType, execSub},
	}
}

// Stop detaches the monitor from the event bus.
func (m *Monitor) Stop() {
	for _, sub := range m.subIds {
		m.eventBus.Unsubscribe(sub.eventType, sub.id)
	}
	m.subIds = nil
}

func (m *Monitor) handleOracleUpdate(event.Event) {
	m.checkHealth()
}

func (m *Monitor) handleProposalExecuted(evt event.Event) {
	data, ok := evt.Data.(event.ProposalExecutedEvent)
	if !ok {
		return
	}
	switch data.PolicyType {
	case models.PolicyMintSupply, models.PolicyBurnSupply:
		if len(data.Payload) != 8 {
			m.logger.Error(
				"executed policy carries malformed payload",
				"proposal_id", data.ProposalID,
			)
			return
		}
		amount := binary.BigEndian.Uint64(data.Payload)
		if err := m.reserve.ApplyPolicy(data.PolicyType, amount); err != nil {
			m.logger.Error(
				"failed to apply executed policy",
				"proposal_id", data.ProposalID,
				"error", err,
			)
			return
		}
	case models.PolicyRebalance:
		if err := m.reserve.ApplyPolicy(data.PolicyType, 0); err != nil {
			m.logger.Error(
				"failed to apply executed policy",
				"proposal_id", data.ProposalID,
				"error", err,
			)
			return
		}
	}
	m.checkHealth()
}

// checkHealth compares the current VHR against the configured warn
// and critical thresholds and publishes the result. It never mutates
// breaker state.
func (m *Monitor) checkHealth() {
	txn := m.db.Transaction(false)
	defer txn.Release()
	global, err := m.db.GetGlobalState(txn)
	if err != nil {
		m.logger.Error("failed to read global state", "error", err)
		return
	}
	reserve, err := m.db.GetReserveState(txn)
	if err != nil {
		m.logger.Error("failed to read reserve state", "error", err)
		return
	}
	if m.vhrGauge != nil {
		m.vhrGauge.Set(float64(reserve.VHRBps))
	}
	signal := event.VaultHealthEvent{
		VHRBps:   reserve.VHRBps,
		Warn:     reserve.VHRBps < global.VHRWarnThresholdBps,
		Critical: reserve.VHRBps < global.VHRCritThresholdBps,
	}
	if signal.Critical {
		m.logger.Warn(
			"vault health critical",
			"vhr_bps", signal.VHRBps,
			"threshold_bps", global.VHRCritThresholdBps,
		)
	} else if signal.Warn {
		m.logger.Warn(
			"vault health below warning threshold",
			"vhr_bps", signal.VHRBps,
			"threshold_bps", global.VHRWarnThresholdBps,
		)
	}
	m.eventBus.Publish(
		event.VaultHealthEventType,
		event.NewEvent(event.VaultHealthEventType, signal),
	)
}
