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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arslabs/arsd/api"
	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/event"
	"github.com/arslabs/arsd/internal/config"
	"github.com/arslabs/arsd/oracle"
	"github.com/arslabs/arsd/policy"
	"github.com/arslabs/arsd/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")

	shutdownTimeout := 30 * time.Second
	if cfg.ShutdownTimeout != "" {
		var err error
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown timeout: %w", err)
		}
	}

	slotLength, err := config.ParseDuration("slot length", cfg.SlotLength)
	if err != nil {
		return err
	}
	if slotLength <= 0 {
		slotLength = time.Second
	}
	minVotingPeriod, err := config.ParseDuration(
		"min voting period",
		cfg.MinVotingPeriod,
	)
	if err != nil {
		return err
	}
	maxVotingPeriod, err := config.ParseDuration(
		"max voting period",
		cfg.MaxVotingPeriod,
	)
	if err != nil {
		return err
	}
	executionDelay, err := config.ParseDuration(
		"execution delay",
		cfg.ExecutionDelay,
	)
	if err != nil {
		return err
	}
	breakerDelay, err := config.ParseDuration(
		"circuit breaker delay",
		cfg.CircuitBreakerDelay,
	)
	if err != nil {
		return err
	}
	oracleInterval, err := config.ParseDuration(
		"oracle update interval",
		cfg.OracleUpdateInterval,
	)
	if err != nil {
		return err
	}

	tracingShutdown, err := setupTracing(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)

	db, err := database.New(cfg.DataDir, logger, promRegistry)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	eventBus := event.NewEventBus(promRegistry, logger)

	clock := &policy.SystemClock{
		Genesis:    time.Unix(cfg.GenesisTime, 0),
		SlotLength: slotLength,
	}

	engine := policy.NewEngine(
		policy.Config{
			MinVotingPeriod:     minVotingPeriod,
			MaxVotingPeriod:     maxVotingPeriod,
			ExecutionDelay:      executionDelay,
			CircuitBreakerDelay: breakerDelay,
		},
		db,
		eventBus,
		clock,
		logger,
		promRegistry,
	)
	gate := oracle.NewGate(
		oracle.Config{
			UpdateInterval: oracleInterval,
			MinSlotBuffer:  cfg.OracleMinSlotBuffer,
		},
		db,
		eventBus,
		clock,
		logger,
		promRegistry,
	)
	reserve := vault.NewReserve(db, clock, logger)
	monitor := vault.NewMonitor(
		db,
		reserve,
		eventBus,
		logger,
		promRegistry,
	)
	monitor.Start()

	apiServer := api.New(
		api.Config{
			ListenAddress: fmt.Sprintf(
				"%s:%d",
				cfg.BindAddr,
				cfg.ApiPort,
			),
		},
		engine,
		gate,
		reserve,
		logger,
	)

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	if err := apiServer.Start(signalCtx); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Metrics and debug listener
	metricsMux := http.NewServeMux()
	metricsMux.Handle(
		"/metrics",
		promhttp.HandlerFor(
			promRegistry,
			promhttp.HandlerOpts{},
		),
	)
	metricsMux.Handle("/debug/", http.DefaultServeMux)
	logger.Info(
		"serving prometheus metrics on "+fmt.Sprintf(
			"%s:%d",
			cfg.PrivateBindAddr,
			cfg.MetricsPort,
		),
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr: fmt.Sprintf(
			"%s:%d",
			cfg.PrivateBindAddr,
			cfg.MetricsPort,
		),
		Handler:           metricsMux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			logger.Error(
				fmt.Sprintf(
					"failed to start metrics listener: %s",
					err,
				),
				"component", "node",
			)
			os.Exit(1)
		}
	}()

	<-signalCtx.Done()
	logger.Info("signal received, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()

	var shutdownErrs []error
	if err := apiServer.Stop(shutdownCtx); err != nil {
		shutdownErrs = append(shutdownErrs, err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		shutdownErrs = append(
			shutdownErrs,
			fmt.Errorf("metrics server shutdown: %w", err),
		)
	}
	monitor.Stop()
	eventBus.Stop()
	if err := db.Close(); err != nil {
		shutdownErrs = append(
			shutdownErrs,
			fmt.Errorf("database close: %w", err),
		)
	}
	if tracingShutdown != nil {
		if err := tracingShutdown(shutdownCtx); err != nil {
			shutdownErrs = append(
				shutdownErrs,
				fmt.Errorf("tracing shutdown: %w", err),
			)
		}
	}
	if len(shutdownErrs) > 0 {
		return errors.Join(shutdownErrs...)
	}
	logger.Info("shutdown complete")
	return nil
}
