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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arslabs/arsd/database"
	"github.com/arslabs/arsd/database/models"
	"github.com/arslabs/arsd/internal/config"
	"github.com/arslabs/arsd/keystore"
	"github.com/spf13/cobra"
)

type initFlags struct {
	reserveVault  string
	tokenMint     string
	epochDuration int64
	encryptKeys   bool
	force         bool
}

func initCommand() *cobra.Command {
	flags := initFlags{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generates authority keys and seeds the initial state",
		Long: `Generates the protocol authority and oracle authority keypairs and
creates the global state singleton with pinned custody references.
Custody references cannot be changed after init.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := commonRun()
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return fmt.Errorf("no config found in context")
			}

			authorityKeyFile := cfg.AuthorityKeyFile
			if authorityKeyFile == "" {
				authorityKeyFile = filepath.Join(
					cfg.DataDir,
					"authority.skey",
				)
			}
			oracleKeyFile := cfg.OracleKeyFile
			if oracleKeyFile == "" {
				oracleKeyFile = filepath.Join(
					cfg.DataDir,
					"oracle.skey",
				)
			}

			if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}

			authorityKey, err := loadOrGenerateKey(
				authorityKeyFile,
				"protocol authority",
				flags.encryptKeys,
				flags.force,
			)
			if err != nil {
				return err
			}
			oracleKey, err := loadOrGenerateKey(
				oracleKeyFile,
				"oracle authority",
				flags.encryptKeys,
				flags.force,
			)
			if err != nil {
				return err
			}

			reserveVault, err := parseCustodyRef(
				flags.reserveVault,
				"reserve vault",
			)
			if err != nil {
				return err
			}
			tokenMint, err := parseCustodyRef(
				flags.tokenMint,
				"token mint",
			)
			if err != nil {
				return err
			}

			db, err := database.New(cfg.DataDir, logger, nil)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			txn := db.Transaction(true)
			err = txn.Do(func(txn *database.Txn) error {
				if _, err := db.GetGlobalState(txn); err == nil {
					return fmt.Errorf(
						"global state already initialized",
					)
				}
				if err := db.InitGlobalState(txn, &models.GlobalState{
					Authority:           authorityKey.VKey,
					OracleAuthority:     oracleKey.VKey,
					ReserveVault:        reserveVault,
					TokenMint:           tokenMint,
					EpochDuration:       flags.epochDuration,
					VHRWarnThresholdBps: cfg.VHRWarnThresholdBps,
					VHRCritThresholdBps: cfg.VHRCritThresholdBps,
				}); err != nil {
					return err
				}
				return db.InitReserveState(
					txn,
					&models.ReserveState{},
				)
			})
			if err != nil {
				return err
			}

			logger.Info(
				"initialized global state",
				"authority",
				hex.EncodeToString(authorityKey.VKey),
				"oracle_authority",
				hex.EncodeToString(oracleKey.VKey),
				"reserve_vault",
				hex.EncodeToString(reserveVault),
				"token_mint",
				hex.EncodeToString(tokenMint),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(
		&flags.reserveVault,
		"reserve-vault",
		"",
		"hex-encoded 32-byte reserve vault reference (random if empty)",
	)
	cmd.Flags().StringVar(
		&flags.tokenMint,
		"token-mint",
		"",
		"hex-encoded 32-byte token mint reference (random if empty)",
	)
	cmd.Flags().Int64Var(
		&flags.epochDuration,
		"epoch-duration",
		86400,
		"epoch duration in seconds",
	)
	cmd.Flags().BoolVar(
		&flags.encryptKeys,
		"encrypt-keys",
		false,
		"encrypt generated key files with sops",
	)
	cmd.Flags().BoolVar(
		&flags.force,
		"force",
		false,
		"regenerate key files even if they already exist",
	)
	return cmd
}

func loadOrGenerateKey(
	path string,
	description string,
	encrypt bool,
	force bool,
) (*keystore.LoadedKey, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			key, err := keystore.LoadKeyFromFile(path)
			if err != nil {
				return nil, fmt.Errorf(
					"failed to load existing key %s: %w",
					path,
					err,
				)
			}
			return key, nil
		}
	}
	key, err := keystore.GenerateKey()
	if err != nil {
		return nil, err
	}
	key.Description = description
	if err := keystore.SaveKeyFile(path, key, encrypt); err != nil {
		return nil, fmt.Errorf(
			"failed to save key %s: %w",
			path,
			err,
		)
	}
	return key, nil
}

func parseCustodyRef(value string, name string) ([]byte, error) {
	if value == "" {
		ref := make([]byte, 32)
		if _, err := rand.Read(ref); err != nil {
			return nil, fmt.Errorf(
				"failed to generate %s reference: %w",
				name,
				err,
			)
		}
		return ref, nil
	}
	ref, err := hex.DecodeString(value)
	if err != nil || len(ref) != 32 {
		return nil, fmt.Errorf(
			"invalid %s reference: expected 64 hex characters",
			name,
		)
	}
	return ref, nil
}
