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

// Package common holds the address/hash primitives shared by the storage,
// state and vm packages.
package common

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// AddressLength is the number of bytes in an Address.
const AddressLength = 20

// Address is a 20-byte contract or account address.
type Address [AddressLength]byte

// BytesToAddress right-aligns b inside a new Address, truncating from the
// left if b is longer than AddressLength.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// BigToAddress creates an Address from the low 20 bytes of v.
func BigToAddress(v *uint256.Int) Address {
	b := v.Bytes32()
	return BytesToAddress(b[:])
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Hash32 returns a with the address right-aligned into the low 20 bytes of a
// 32-byte big-endian word, the representation used when an address is used
// as a tagged register value (see addressValue in core/vm/context_ops.go).
func (a Address) Hash32() [32]byte {
	var out [32]byte
	copy(out[12:], a[:])
	return out
}

// HashLength is the number of bytes in a Hash.
const HashLength = 32

// Hash is a 32-byte storage key, code hash, or log topic.
type Hash [HashLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// U256FromHash reinterprets h as a big-endian 256-bit unsigned integer.
func U256FromHash(h Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

// HashFromU256 renders v as a 32-byte big-endian Hash.
func HashFromU256(v *uint256.Int) Hash {
	b := v.Bytes32()
	return Hash(b)
}

// StorageKey is a per-contract storage slot, the (address, key) pair used by
// both the persistent storage and the transient storage maps.
type StorageKey struct {
	Address Address
	Key     Hash
}

func (k StorageKey) String() string {
	return fmt.Sprintf("%s/%s", k.Address, k.Key)
}
