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

package vm

import (
	"crypto/sha256"

	"github.com/probeum/zkevm-core/crypto"
)

// Fixed precompile addresses, selected by the low 16 bits of the target
// contract address (spec.md §4.K).
const (
	precompileKeccak256      = 0x0001
	precompileSha256         = 0x0002
	precompileEcrecover      = 0x0003
	precompileSecp256r1Verify = 0x0004
)

// precompileABI is the decoded PrecompileCallABI-style operand carried in
// src0 for a PrecompileCall instruction (spec.md §4.K): which heap pages
// to read input from and write output to, the byte ranges within them,
// and the advertised extra gas cost.
type precompileABI struct {
	InputPage        heapIndex
	InputOffset      uint32
	InputLen         uint32
	OutputPage       heapIndex
	OutputOffset     uint32
	ExtraErgsCost    uint32
}

// decodePrecompileABI unpacks the src0/src1 register pair the way the
// far-call ABI packs a fat pointer plus a side cost word: src0 is a fat
// pointer to the input span, src1's low 32 bits carry the extra ergs
// cost, its next 32 bits the output page (0 meaning "current heap", the
// reserved sentinel page per spec.md §4.C).
func (ex *Execution) decodePrecompileABI(frame *CallFrame, in Instruction) precompileABI {
	src0 := ex.Registers[in.Src0]
	fp := DecodeFatPointer(&src0.Value)
	src1 := ex.Registers[in.Src1]

	outputPage := uint32(src1.Value[0] >> 32)
	if outputPage == 0 {
		outputPage = frame.HeapID
	}

	return precompileABI{
		InputPage:     fp.Page,
		InputOffset:   fp.Start + fp.Offset,
		InputLen:      fp.Len,
		OutputPage:    outputPage,
		OutputOffset:  0,
		ExtraErgsCost: uint32(src1.Value[0]),
	}
}

func (ex *Execution) readPrecompileInput(abi precompileABI) []byte {
	heap := ex.Heaps.Get(abi.InputPage)
	if heap == nil {
		return nil
	}
	out := make([]byte, 0, abi.InputLen)
	for i := uint32(0); i < abi.InputLen; i += 32 {
		word, _, err := heap.Read(abi.InputOffset + i)
		if err != nil {
			break
		}
		n := abi.InputLen - i
		if n > 32 {
			n = 32
		}
		out = append(out, word[:n]...)
	}
	return out
}

func (ex *Execution) writePrecompileOutput(abi precompileABI, result []byte) {
	heap := ex.Heaps.Get(abi.OutputPage)
	if heap == nil {
		return
	}
	for i := 0; i < len(result); i += 32 {
		var word [32]byte
		copy(word[:], result[i:])
		grown, _ := heap.Store(abi.OutputOffset+uint32(i), word)
		ex.billMemoryGrowth(grown)
	}
}

// opPrecompileCall implements PrecompileCall: decode the ABI, debit the
// advertised extra ergs cost, dispatch by the low 16 bits of the target
// contract address, write the result words to the output page and the ok
// flag to dst0 (spec.md §4.I/§4.K); the ok flag is not written to the
// page. Unknown addresses just burn the advertised gas.
func (ex *Execution) opPrecompileCall(frame *CallFrame, in Instruction) error {
	abi := ex.decodePrecompileABI(frame, in)
	if ex.DebitGas(abi.ExtraErgsCost) {
		return ex.StoreDst0(frame, in, ZeroValue())
	}

	addr := uint16(frame.ContractAddress[18])<<8 | uint16(frame.ContractAddress[19])
	input := ex.readPrecompileInput(abi)

	var (
		ok     bool
		result []byte
	)
	switch addr {
	case precompileKeccak256:
		result = crypto.Keccak256(input)
		ok = true
	case precompileSha256:
		sum := sha256.Sum256(input)
		result = sum[:]
		ok = true
	case precompileEcrecover:
		ok, result = runEcrecover(input)
	case precompileSecp256r1Verify:
		ok, result = runSecp256r1Verify(input)
	default:
		ok = false
	}

	if ok {
		ex.writePrecompileOutput(abi, result)
	}
	return ex.StoreDst0(frame, in, boolValue(ok))
}

// runEcrecover implements the ecrecover precompile's input layout: 32
// bytes hash, 32 bytes v (right-aligned), 32 bytes r, 32 bytes s,
// producing the 32-byte left-zero-padded recovered address.
func runEcrecover(input []byte) (bool, []byte) {
	if len(input) < 128 {
		return false, nil
	}
	hash := input[0:32]
	v := input[63]
	sig := make([]byte, 65)
	copy(sig[0:32], input[64:96])
	copy(sig[32:64], input[96:128])
	sig[64] = v

	pub, err := crypto.Ecrecover(hash, sig)
	if err != nil {
		return false, nil
	}
	addr := crypto.PubkeyToAddress(pub)
	out := make([]byte, 32)
	copy(out[12:], addr[:])
	return true, out
}

// runSecp256r1Verify implements the RIP-7212 P-256 verification
// precompile's input layout: hash || r || s || pubX || pubY, each 32
// bytes, yielding a word whose last byte is 1 on success and 0 otherwise.
func runSecp256r1Verify(input []byte) (bool, []byte) {
	if len(input) < 160 {
		return false, nil
	}
	hash := input[0:32]
	r := input[32:64]
	s := input[64:96]
	pubX := input[96:128]
	pubY := input[128:160]

	verified := crypto.VerifyP256(hash, r, s, pubX, pubY)
	out := make([]byte, 32)
	if verified {
		out[31] = 1
	}
	return true, out
}

func boolValue(b bool) TaggedValue {
	if b {
		return NewIntegerValue(u256FromU64(1))
	}
	return ZeroValue()
}
