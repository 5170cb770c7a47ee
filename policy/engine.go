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

// Package policy implements the futarchy governance state machine:
// proposal registry, voting ledger, finalization, delayed execution,
// and the two-phase circuit breaker.
package policy

import (
	"io"
	"log/slog"
	"sync"

	"github.com/arslabs/arsd/auth"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/event"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine is the single writer over governance state. Every mutating
// entry point takes the mutex, runs to completion inside one database
// transaction, and either fully commits or fully aborts.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	db       *database.Database
	eventBus *event.EventBus
	clock    Clock
	logger   *slog.Logger
	metrics  *engineMetrics
}

func NewEngine(
	cfg Config,
	db *database.Database,
	eventBus *event.EventBus,
	clock Clock,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Engine {
	cfg.populateDefaults()
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &Engine{
		cfg:      cfg,
		db:       db,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger.With("component", "policy"),
	}
	if promRegistry != nil {
		e.metrics = newEngineMetrics(promRegistry)
	}
	return e
}

// withTxn runs fn under the engine mutex inside one read-write
// transaction.
func (e *Engine) withTxn(fn func(*database.Txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	txn := e.db.Transaction(true)
	return txn.Do(fn)
}

// recordSubmission appends the raw submission envelope to the audit
// log as part of the same transaction as the state change.
func (e *Engine) recordSubmission(
	txn *database.Txn,
	sub *auth.Submission,
) error {
	if sub == nil || len(sub.Raw) == 0 {
		return nil
	}
	return database.StoreSubmission(txn, sub.Hash(), sub.Raw)
}

func (e *Engine) publish(eventType event.EventType, data any) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
