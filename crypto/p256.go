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
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"
)

// VerifyP256 verifies a raw (r, s) signature over hash against an
// uncompressed P-256 public key, the shape the secp256r1-verify precompile
// (RIP-7212) exposes. No ecosystem package improves on the standard
// library's elliptic.P256 implementation for this NIST curve; see DESIGN.md.
func VerifyP256(hash, r, s, pubX, pubY []byte) bool {
	curve := elliptic.P256()
	x := new(big.Int).SetBytes(pubX)
	y := new(big.Int).SetBytes(pubY)
	if !curve.IsOnCurve(x, y) {
		return false
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	return ecdsa.Verify(pub, hash, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s))
}
