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

// Package auth implements the agent authentication gate. The engine
// performs no signature cryptography itself: an external identity
// provider verifies detached ed25519 signatures and reports the
// verified steps inside the submission envelope. The gate checks that
// a verification step actually precedes the action and that its key
// matches the claimed agent.
package auth

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"time"
)

var (
	ErrMissingSignatureVerification = errors.New(
		"submission carries no verified signature step",
	)
	ErrAgentMismatch = errors.New(
		"verified key does not match claimed agent",
	)
	ErrSignatureExpired = errors.New("signature timestamp outside freshness window")
)

// MaxSignatureAge is the freshness window for the signed message
// timestamp. A verified signature older than this is replayable and
// gets rejected.
const MaxSignatureAge = 5 * time.Minute

// SignatureVerification is one detached-signature verification step
// as reported by the external identity provider.
type SignatureVerification struct {
	PublicKey []byte
	Signature []byte
	Message   []byte
	Timestamp int64
	Verified  bool
}

// Submission is the envelope around one mutating action. Verifications
// are the ordered signature steps that preceded the action within the
// same atomic submission.
type Submission struct {
	Verifications []SignatureVerification
	Raw           []byte
}

// Hash returns the content hash of the raw envelope, used as the audit
// log key.
func (s *Submission) Hash() []byte {
	sum := sha256.Sum256(s.Raw)
	return sum[:]
}

// RequireAgent enforces the authentication gate for one claimed agent.
// Every mutating entry point calls this with the same semantics: the
// step immediately preceding the action must exist, must have been
// verified by the provider, must carry the claimed agent's key, and
// must be fresh.
func RequireAgent(sub *Submission, agent []byte, now time.Time) error {
	if sub == nil || len(sub.Verifications) == 0 {
		return ErrMissingSignatureVerification
	}
	// The step immediately preceding the action is the last one in
	// submission order.
	step := sub.Verifications[len(sub.Verifications)-1]
	if !step.Verified {
		return ErrMissingSignatureVerification
	}
	if !bytes.Equal(step.PublicKey, agent) {
		return ErrAgentMismatch
	}
	ts := time.Unix(step.Timestamp, 0)
	if ts.After(now) {
		return ErrSignatureExpired
	}
	if now.Sub(ts) > MaxSignatureAge {
		return ErrSignatureExpired
	}
	return nil
}
