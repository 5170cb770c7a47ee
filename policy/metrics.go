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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	proposalsTotal *prometheus.CounterVec
	votesTotal     prometheus.Counter
	stakeTotal     prometheus.Counter
	rejectsTotal   *prometheus.CounterVec
	breakerState   prometheus.Gauge
}

func newEngineMetrics(promRegistry prometheus.Registerer) *engineMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &engineMetrics{
		proposalsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policy_proposals_total",
				Help: "proposals by lifecycle event",
			},
			[]string{"event"},
		),
		votesTotal: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "policy_votes_total",
				Help: "accepted votes",
			},
		),
		stakeTotal: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "policy_stake_total",
				Help: "cumulative stake accepted across all votes",
			},
		),
		rejectsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "policy_rejects_total",
				Help: "rejected submissions by entry point",
			},
			[]string{"op"},
		),
		breakerState: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "policy_breaker_state",
				Help: "circuit breaker state (0 idle, 1 requested, 2 active)",
			},
		),
	}
}

func (m *engineMetrics) reject(op string) {
	if m == nil {
		return
	}
	m.rejectsTotal.WithLabelValues(op).Inc()
}

func (m *engineMetrics) proposalEvent(evt string) {
	if m == nil {
		return
	}
	m.proposalsTotal.WithLabelValues(evt).Inc()
}
