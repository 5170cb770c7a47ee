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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "arsd.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DataDir          string `yaml:"dataDir"                                   split_words:"true"`
	BindAddr         string `yaml:"bindAddr"                                  split_words:"true"`
	PrivateBindAddr  string `yaml:"privateBindAddr"                           split_words:"true"`
	ShutdownTimeout  string `yaml:"shutdownTimeout"                           split_words:"true"`
	OtlpEndpoint     string `yaml:"otlpEndpoint"       envconfig:"ARSD_OTLP_ENDPOINT"`
	AuthorityKeyFile string `yaml:"authorityKeyFile"                          split_words:"true"`
	OracleKeyFile    string `yaml:"oracleKeyFile"                             split_words:"true"`
	ApiPort          uint   `yaml:"apiPort"                                   split_words:"true"`
	MetricsPort      uint   `yaml:"metricsPort"                               split_words:"true"`
	TracingEnabled   bool   `yaml:"tracingEnabled"                            split_words:"true"`
	TracingStdout    bool   `yaml:"tracingStdout"                             split_words:"true"`

	// Slot clock
	GenesisTime int64  `yaml:"genesisTime" split_words:"true"`
	SlotLength  string `yaml:"slotLength"  split_words:"true"`

	// Engine timing. Durations are strings ("12h") parsed at startup;
	// empty values fall back to the engine defaults.
	MinVotingPeriod     string `yaml:"minVotingPeriod"     split_words:"true"`
	MaxVotingPeriod     string `yaml:"maxVotingPeriod"     split_words:"true"`
	ExecutionDelay      string `yaml:"executionDelay"      split_words:"true"`
	CircuitBreakerDelay string `yaml:"circuitBreakerDelay" split_words:"true"`

	// Oracle gate
	OracleUpdateInterval string `yaml:"oracleUpdateInterval" split_words:"true"`
	OracleMinSlotBuffer  uint64 `yaml:"oracleMinSlotBuffer"  split_words:"true"`

	// Vault health thresholds
	VHRWarnThresholdBps uint64 `yaml:"vhrWarnThresholdBps" envconfig:"ARSD_VHR_WARN_THRESHOLD_BPS"`
	VHRCritThresholdBps uint64 `yaml:"vhrCritThresholdBps" envconfig:"ARSD_VHR_CRIT_THRESHOLD_BPS"`
}

var globalConfig = &Config{
	DataDir:             ".arsd",
	BindAddr:            "0.0.0.0",
	PrivateBindAddr:     "127.0.0.1",
	ShutdownTimeout:     DefaultShutdownTimeout,
	ApiPort:             3000,
	MetricsPort:         12798,
	SlotLength:          "1s",
	VHRWarnThresholdBps: 12000,
	VHRCritThresholdBps: 10000,
}

// LoadConfig loads the YAML config file (if any) over the defaults,
// then overlays environment variables.
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		// Check for config file in this path: ~/.arsd/arsd.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".arsd", "arsd.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/arsd/arsd.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/arsd/arsd.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("arsd", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if _, err := time.ParseDuration(globalConfig.ShutdownTimeout); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return globalConfig, nil
}

// ParseDuration parses an optional duration value. An empty value
// returns zero, which callers treat as "use the default".
func ParseDuration(name string, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

func GetConfig() *Config {
	return globalConfig
}
