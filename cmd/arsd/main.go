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

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arslabs/arsd/internal/config"
	"github.com/arslabs/arsd/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "arsd"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

var globalFlags = struct {
	debug      bool
	configFile string
}{}

func commonRun() *slog.Logger {
	// Configure default logger
	logLevel := slog.LevelInfo
	if globalFlags.debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(
		fmt.Sprintf(
			"%s %s started",
			programName,
			version.GetVersionString(),
		),
	)
	return logger
}

func main() {
	rootCmd := &cobra.Command{
		Use: programName,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(globalFlags.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cmd.SetContext(config.WithContext(cmd.Context(), cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(
		&globalFlags.debug,
		"debug",
		"D",
		false,
		"enable debug logging",
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalFlags.configFile,
		"config",
		"c",
		"",
		"path to config file",
	)

	rootCmd.AddCommand(
		serveCommand(),
		initCommand(),
		versionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have
		// already displayed it
		os.Exit(1)
	}
}
