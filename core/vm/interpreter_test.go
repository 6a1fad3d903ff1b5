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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/state"
)

// code packs instructions into a 256-bit-word-indexed code page, four
// 64-bit raw opcodes per word (spec.md §3/§6), padding a trailing partial
// word with zero (OpInvalid) slots that a well-formed program never
// reaches.
func code(instructions ...Instruction) []common.Hash {
	words := make([]common.Hash, (len(instructions)+3)/4)
	for i, in := range instructions {
		raw := Encode(in)
		quarter := i % 4
		binary.BigEndian.PutUint64(words[i/4][quarter*8:quarter*8+8], raw)
	}
	return words
}

func TestRunAddThenRetOk(t *testing.T) {
	ex := New(state.NewMemStorage(), common.Address{}, nil, 100_000, Config{DisableKernel: true})
	ex.CurrentFrame().CodePage = code(
		Instruction{Variant: OpAdd, Src0: 1, Src1: 2, Dst0: 3, AltersVMFlags: true},
		Instruction{Variant: OpRet},
	)
	ex.Registers[1] = NewIntegerValue(u256FromU64(5))
	ex.Registers[2] = NewIntegerValue(u256FromU64(7))

	out, err := ex.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutputOk, out.Kind)
	assert.Equal(t, uint64(12), ex.Registers[3].Value.Uint64())
	assert.True(t, ex.FlagGT)
}

// TestRunNearCallPanicResumesAtExceptionHandler exercises the near-call
// error-propagation rule (spec.md §7): a panicking callee pops its frame
// and resumes the caller at the caller-supplied exception handler label,
// rather than aborting the whole run.
func TestRunNearCallPanicResumesAtExceptionHandler(t *testing.T) {
	ex := New(state.NewMemStorage(), common.Address{}, nil, 100_000, Config{DisableKernel: true})
	root := ex.CurrentFrame()
	root.GasLeft = 1000
	root.CodePage = code(
		/*0*/ Instruction{Variant: OpNearCall, Src0: 4, Imm0: 5, Imm1: 2},
		/*1*/ Instruction{Variant: OpNop},
		/*2*/ Instruction{Variant: OpNop},
		/*3*/ Instruction{Variant: OpNop},
		/*4*/ Instruction{Variant: OpPanic},
		/*5*/ Instruction{Variant: OpRet},
	)
	ex.Registers[4] = NewIntegerValue(u256FromU64(100))

	out, err := ex.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutputOk, out.Kind)
	// The callee's 100 ergs were burned, not refunded, on panic; the
	// resumed caller then pays its own NearCall (30) and Ret (1) costs.
	assert.Equal(t, uint32(1000-30-100-1), root.GasLeft)
}

// TestRunFarCallRevertUndoesStorageWrites exercises spec.md §7's nested
// far-call revert rule: the callee's storage writes roll back to the
// snapshot taken on entry, and the caller resumes with empty return data
// rather than the whole run aborting.
func TestRunFarCallRevertUndoesStorageWrites(t *testing.T) {
	backend := state.NewMemStorage()
	target := common.Address{0x01, 0x02, 0x03}

	// Key 0 (Get_Ctx_U128 defaults to zero on a fresh far call), value the
	// contract's own address (guaranteed nonzero), so the test can tell a
	// successful-then-reverted write apart from one that never happened.
	calleeCode := code(
		/*0*/ Instruction{Variant: OpContextGetCtxU128, Dst0: 1},
		/*1*/ Instruction{Variant: OpContextThis, Dst0: 2},
		/*2*/ Instruction{Variant: OpStorageWrite, Src0: 1, Src1: 2},
		/*3*/ Instruction{Variant: OpRevert},
	)
	registerContractCode(backend, target, calleeCode)

	ex := New(backend, common.Address{0xAA}, nil, 1_000_000, Config{DisableKernel: true})
	root := ex.CurrentFrame()

	key := common.StorageKey{Address: target, Key: common.Hash{}}
	sentinel := common.HashFromU256(u256FromU64(777))
	assert.NoError(t, ex.State.SetStorage(key, sentinel))

	cdPtr := FatPointer{Page: CalldataHeapID(), Len: 0}
	ex.Registers[1] = NewPointerValue(cdPtr.Encode())       // src0 operand register for FarCall: calldata pointer
	ex.Registers[2] = NewIntegerValue(u256FromU64(500_000)) // ergs passed, register 2 by convention
	ex.Registers[3] = addressValue(target)                  // Dst0 register repurposed as address source

	root.CodePage = code(
		/*0*/ Instruction{Variant: OpFarCall, Src0: 1, Dst0: 3, Imm0: 1},
		/*1*/ Instruction{Variant: OpRet},
	)

	out, err := ex.Run()
	assert.NoError(t, err)
	assert.Equal(t, OutputOk, out.Kind)

	got, err := ex.State.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, sentinel, got, "callee's Revert must undo its storage write, restoring the pre-call value")
}

func registerContractCode(backend *state.MemStorage, addr common.Address, words []common.Hash) {
	codeInfo := common.BytesToHash(addr[:])
	codeInfo[0] = 1
	key := common.StorageKey{Address: DeployerSystemContractAddress, Key: common.Hash(addr.Hash32())}
	_ = backend.StorageWrite(key, codeInfo)
	_ = backend.AddContract(codeInfo, words)
}
