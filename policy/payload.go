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
	"encoding/binary"
	"math"

	"github.com/arslabs/arsd/database/models"
)

// MaxPayloadSize caps the type-specific payload carried by a proposal.
const MaxPayloadSize = 256

// Parameter IDs a ParameterUpdate payload may target.
const (
	ParamMintBurnCapBps  uint8 = 0
	ParamStabilityFeeBps uint8 = 1
	ParamEpochDuration   uint8 = 2
)

// validatePayload checks the type-specific payload at proposal
// creation so a malformed policy can never reach execution.
//
// Layouts:
//
//	MintSupply / BurnSupply: 8-byte big-endian amount, nonzero
//	Rebalance:               list of 2-byte big-endian allocation bps,
//	                         each <= 10000, summing to 10000
//	ParameterUpdate:         1-byte parameter ID + 8-byte value
func validatePayload(policyType uint8, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	switch policyType {
	case models.PolicyMintSupply, models.PolicyBurnSupply:
		if len(payload) != 8 {
			return ErrInvalidPayload
		}
		if binary.BigEndian.Uint64(payload) == 0 {
			return ErrInvalidPayload
		}
		return nil
	case models.PolicyRebalance:
		if len(payload) == 0 || len(payload)%2 != 0 {
			return ErrInvalidPayload
		}
		var totalBps uint64
		for i := 0; i < len(payload); i += 2 {
			bps := uint64(binary.BigEndian.Uint16(payload[i:]))
			if bps > 10000 {
				return ErrInvalidPayload
			}
			totalBps += bps
		}
		if totalBps != 10000 {
			return ErrInvalidPayload
		}
		return nil
	case models.PolicyParameterUpdate:
		if len(payload) != 9 {
			return ErrInvalidPayload
		}
		switch payload[0] {
		case ParamMintBurnCapBps, ParamStabilityFeeBps:
			if binary.BigEndian.Uint64(payload[1:]) > 10000 {
				return ErrInvalidPayload
			}
		case ParamEpochDuration:
			seconds := binary.BigEndian.Uint64(payload[1:])
			if seconds == 0 || seconds > math.MaxInt64 {
				return ErrInvalidPayload
			}
		default:
			return ErrInvalidPayload
		}
		return nil
	default:
		return ErrInvalidPolicyType
	}
}

// applyParameterUpdate writes an executed ParameterUpdate payload into
// the global state row. The payload was validated at proposal creation,
// so a malformed one here means stored state was corrupted.
func applyParameterUpdate(
	state *models.GlobalState,
	payload []byte,
) error {
	if len(payload) != 9 {
		return ErrInvalidPayload
	}
	value := binary.BigEndian.Uint64(payload[1:])
	switch payload[0] {
	case ParamMintBurnCapBps:
		state.MintBurnCapBps = uint16(value)
	case ParamStabilityFeeBps:
		state.StabilityFeeBps = uint16(value)
	case ParamEpochDuration:
		state.EpochDuration = int64(value)
	default:
		return ErrInvalidPayload
	}
	return nil
}
