// Copyright 2024 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package crypto

import (
	"errors"

	"github.com/btcsuite/btcd/btcec"

	"github.com/probeum/zkevm-core/common"
)

var errInvalidSignatureLen = errors.New("invalid signature length")

// Ecrecover recovers the uncompressed public key that produced the given
// recoverable signature over hash. sig is the 65-byte (R || S || V) layout,
// V in {0,1,27,28}, the same convention the ecrecover precompile's ABI uses.
func Ecrecover(hash, sig []byte) ([]byte, error) {
	if len(sig) != 65 {
		return nil, errInvalidSignatureLen
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	compact := make([]byte, 65)
	compact[0] = v + 27
	copy(compact[1:], sig[:64])

	pub, _, err := btcec.RecoverCompact(btcec.S256(), compact, hash)
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}

// PubkeyToAddress derives the 20-byte address from an uncompressed
// secp256k1 public key, the last 20 bytes of Keccak256(pubkey[1:]).
func PubkeyToAddress(pubkey []byte) common.Address {
	if len(pubkey) == 65 {
		pubkey = pubkey[1:]
	}
	return common.BytesToAddress(Keccak256(pubkey)[12:])
}
