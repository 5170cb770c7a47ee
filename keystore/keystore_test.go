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

package keystore

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFileRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	key.Description = "test agent key"

	path := filepath.Join(t.TempDir(), "agent.skey")
	require.NoError(t, SaveKeyFile(path, key, false))

	loaded, err := LoadKeyFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, TypeAgentSigningKey, loaded.Type)
	assert.Equal(t, "test agent key", loaded.Description)
	assert.Equal(t, key.SKey, loaded.SKey)
	assert.Equal(t, key.VKey, loaded.VKey)
}

func TestVerificationKeyFile(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	pub := &LoadedKey{
		Type: TypeAgentVerificationKey,
		VKey: key.VKey,
	}

	path := filepath.Join(t.TempDir(), "agent.vkey")
	require.NoError(t, SaveKeyFile(path, pub, false))

	loaded, err := LoadKeyFromFile(path)
	require.NoError(t, err)
	assert.Nil(t, loaded.SKey)
	assert.Equal(t, key.VKey, loaded.VKey)

	// Loaded keys must verify signatures made with the original
	msg := []byte("propose:mint:1000")
	sig := ed25519.Sign(key.SKey, msg)
	assert.True(t, ed25519.Verify(loaded.VKey, msg, sig))
}

func TestInsecureFileMode(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "agent.skey")
	require.NoError(t, SaveKeyFile(path, key, false))
	require.NoError(t, os.Chmod(path, 0o644))

	_, err = LoadKeyFromFile(path)
	require.ErrorIs(t, err, ErrInsecureFileMode)
}

func TestParseKeyEnvelopeUnknownType(t *testing.T) {
	_, err := parseKeyEnvelope(
		[]byte(`{"type":"Bogus","description":"","hex":"00"}`),
	)
	require.ErrorIs(t, err, ErrUnknownKeyType)
}
