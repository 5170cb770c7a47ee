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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type gateMetrics struct {
	admittedTotal prometheus.Counter
	rejectedTotal prometheus.Counter
}

func newGateMetrics(promRegistry prometheus.Registerer) *gateMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &gateMetrics{
		admittedTotal: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "oracle_updates_admitted_total",
				Help: "oracle update batches admitted",
			},
		),
		rejectedTotal: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "oracle_updates_rejected_total",
				Help: "oracle update batches rejected",
			},
		),
	}
}

func (m *gateMetrics) admit() {
	if m == nil {
		return
	}
	m.admittedTotal.Inc()
}

func (m *gateMetrics) reject() {
	if m == nil {
		return
	}
	m.rejectedTotal.Inc()
}
