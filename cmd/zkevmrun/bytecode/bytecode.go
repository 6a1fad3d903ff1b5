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

// Package bytecode is the zkevmrun CLI's bytecode-file and storage-backend
// collaborator: hex decode, LevelDB-vs-in-memory backend selection and
// code-info registration are treated as external to the core (spec.md §1:
// "bytecode file parsing (hex decode)... treated as external
// collaborators").
package bytecode

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/state"
	"github.com/probeum/zkevm-core/core/state/leveldbstore"
	"github.com/probeum/zkevm-core/core/vm"
	"github.com/probeum/zkevm-core/crypto"
	"github.com/probeum/zkevm-core/vmerrors"
)

// leveldbCacheBytes sizes the fastcache layer leveldbstore.Open puts in
// front of the database, the same default scale gprobe's cmd flags use
// for a small single-run cache.
const leveldbCacheBytes = 8 << 20

// codeInfoTagRegular mirrors core/vm/decommit.go's unexported constant of
// the same name: a code_info entry whose first byte is 1 names plain
// zkEVM bytecode (as opposed to tag 2, EVM-compatibility bytecode).
const codeInfoTagRegular = 1

// DecodeHex parses a bytecode file's contents: a single 0x-prefixed hex
// string, hex-decoded and grouped into 32-byte (256-bit) code-page words,
// each holding four packed 64-bit raw opcodes (spec.md §3/§6), the same
// format program_from_file reads (one hex string, chunked into 32-byte
// words rather than a line-per-opcode text format).
func DecodeHex(raw []byte) ([]common.Hash, error) {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("%w: bytecode must be a single 0x-prefixed hex string", vmerrors.ErrIncorrectBytecodeFormat)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vmerrors.ErrIncorrectBytecodeFormat, err)
	}
	if len(b)%32 != 0 {
		return nil, fmt.Errorf("%w: bytecode length must be a multiple of 32 bytes", vmerrors.ErrIncorrectBytecodeFormat)
	}

	words := make([]common.Hash, len(b)/32)
	for i := range words {
		copy(words[i][:], b[i*32:i*32+32])
	}
	return words, nil
}

// DecodeHexString decodes an optionally 0x-prefixed hex string, returning
// nil for an empty input.
func DecodeHexString(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

// OpenBackend selects the zkevmrun storage backend: an ephemeral
// state.MemStorage when dir is empty, otherwise a persistent
// leveldbstore.Store rooted at dir. The returned close func is always
// safe to call, even for the in-memory backend.
func OpenBackend(dir string) (state.Storage, func() error, error) {
	if dir == "" {
		return state.NewMemStorage(), func() error { return nil }, nil
	}
	store, err := leveldbstore.Open(dir, leveldbCacheBytes)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// HashCodeWords derives the code key DeployerSystemContract keys code
// under: Keccak256 over the words' concatenated 32-byte encoding, with
// byte 0 set to the regular-bytecode tag and byte 1 cleared, so the key
// equals the code_info body RegisterCodeInfo stores for it.
func HashCodeWords(words []common.Hash) common.Hash {
	buf := make([]byte, 32*len(words))
	for i, w := range words {
		copy(buf[i*32:], w[:])
	}
	h := crypto.Keccak256Hash(buf)
	h[0] = codeInfoTagRegular
	h[1] = 0
	return h
}

// RegisterCodeInfo writes the code_info storage entry core/vm's Decommit
// reads: a tag-1 (regular bytecode) record under
// (vm.DeployerSystemContractAddress, contractAddr.Hash32()), whose body
// is hash with its second byte cleared to match the actual code key
// (spec.md §4.H: "zero code_info[1] to form the code key").
func RegisterCodeInfo(backend state.Storage, contractAddr common.Address, hash common.Hash) error {
	codeInfo := hash
	codeInfo[0] = codeInfoTagRegular
	key := common.StorageKey{
		Address: vm.DeployerSystemContractAddress,
		Key:     common.Hash(contractAddr.Hash32()),
	}
	return backend.StorageWrite(key, codeInfo)
}
