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

// Package keystore loads and stores the ed25519 key files used by the
// authority and by agents. Key files can be sops-encrypted at rest;
// plaintext files must not be readable by group or other.
package keystore

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Key file envelope types.
const (
	TypeAgentSigningKey      = "AgentSigningKey_ed25519"
	TypeAgentVerificationKey = "AgentVerificationKey_ed25519"
)

var (
	ErrInsecureFileMode = errors.New(
		"key file is readable by group or other",
	)
	ErrUnknownKeyType = errors.New("unknown key type")
)

// keyFileEnvelope is the JSON structure of a key file on disk.
type keyFileEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Hex         string `json:"hex"`
}

// LoadedKey holds the parsed contents of a key file. SKey is nil for
// verification-only files.
type LoadedKey struct {
	Type        string
	Description string
	SKey        ed25519.PrivateKey
	VKey        ed25519.PublicKey
}

// GenerateKey creates a fresh ed25519 keypair.
func GenerateKey() (*LoadedKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &LoadedKey{
		Type: TypeAgentSigningKey,
		SKey: priv,
		VKey: pub,
	}, nil
}

// LoadKeyFromFile loads a key file, transparently decrypting a
// sops-encrypted envelope. Returns ErrInsecureFileMode if a plaintext
// file has group or other access.
//
// The file is opened first and permissions are checked on the open
// handle to avoid a TOCTOU race between the permission check and the
// read.
func LoadKeyFromFile(path string) (*LoadedKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file %q: %w", path, err)
	}
	defer f.Close()

	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}

	// Limit read to 1 MiB to guard against accidentally pointing at a
	// large file. Valid key files are well under this size.
	const maxKeyFileSize = 1 << 20
	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	if bytes.Contains(data, []byte(`"sops"`)) {
		data, err = decryptKeyFile(data)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to decrypt key file %q: %w",
				path,
				err,
			)
		}
	}
	key, err := parseKeyEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	return key, nil
}

// SaveKeyFile writes a key file with owner-only permissions. When
// encrypt is set the envelope is sops-encrypted with the master keys
// configured through the environment.
func SaveKeyFile(path string, key *LoadedKey, encrypt bool) error {
	env := keyFileEnvelope{
		Type:        key.Type,
		Description: key.Description,
	}
	switch key.Type {
	case TypeAgentSigningKey:
		env.Hex = hex.EncodeToString(key.SKey.Seed())
	case TypeAgentVerificationKey:
		env.Hex = hex.EncodeToString(key.VKey)
	default:
		return ErrUnknownKeyType
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal key envelope: %w", err)
	}
	data = append(data, '\n')
	if encrypt {
		data, err = encryptKeyFile(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt key file: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	return nil
}

// parseKeyEnvelope parses a key file envelope and derives the public
// key from the seed rather than trusting file contents.
func parseKeyEnvelope(fileBytes []byte) (*LoadedKey, error) {
	var env keyFileEnvelope
	if err := json.Unmarshal(fileBytes, &env); err != nil {
		return nil, fmt.Errorf("could not parse key file envelope: %w", err)
	}
	keyBytes, err := hex.DecodeString(env.Hex)
	if err != nil {
		return nil, fmt.Errorf("could not decode key from hex: %w", err)
	}
	lk := &LoadedKey{
		Type:        env.Type,
		Description: env.Description,
	}
	switch env.Type {
	case TypeAgentSigningKey:
		if len(keyBytes) != ed25519.SeedSize {
			return nil, fmt.Errorf(
				"invalid signing key: expected %d bytes, got %d",
				ed25519.SeedSize,
				len(keyBytes),
			)
		}
		lk.SKey = ed25519.NewKeyFromSeed(keyBytes)
		lk.VKey = lk.SKey.Public().(ed25519.PublicKey)
		return lk, nil
	case TypeAgentVerificationKey:
		if len(keyBytes) != ed25519.PublicKeySize {
			return nil, fmt.Errorf(
				"invalid verification key: expected %d bytes, got %d",
				ed25519.PublicKeySize,
				len(keyBytes),
			)
		}
		lk.VKey = ed25519.PublicKey(keyBytes)
		return lk, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyType, env.Type)
	}
}

// checkOpenFilePermissions rejects key files readable by group or
// other, checked against the open handle.
func checkOpenFilePermissions(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat key file: %w", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("%w: %s", ErrInsecureFileMode, f.Name())
	}
	return nil
}
