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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/state"
)

// TestDecommitBillsOncePerHash exercises spec.md §4.H: the first decommit
// of a hash bills code_length_in_words * ErgsPerCodeWordDecommittment;
// decommitting the same contract again finds it already in the
// decommitted set and charges nothing further.
func TestDecommitBillsOncePerHash(t *testing.T) {
	backend := state.NewMemStorage()
	target := common.Address{0x09}
	words := []common.Hash{{1}, {2}, {3}}
	registerContractCode(backend, target, words)

	ex := New(backend, common.Address{}, nil, 1_000_000, Config{DisableKernel: true})
	ex.CurrentFrame().GasLeft = 1_000_000

	before := ex.CurrentFrame().GasLeft
	res, err := ex.Decommit(target)
	assert.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.Charged)
	assert.Equal(t, words, res.CodeWords)
	assert.Equal(t, before-uint32(len(words))*ErgsPerCodeWordDecommittment, ex.CurrentFrame().GasLeft)

	afterFirst := ex.CurrentFrame().GasLeft
	res, err = ex.Decommit(target)
	assert.NoError(t, err)
	assert.True(t, res.Found)
	assert.False(t, res.Charged)
	assert.Equal(t, afterFirst, ex.CurrentFrame().GasLeft, "a repeat decommit of the same hash must not bill again")
}

// TestDecommitOpcodeRefundsRepeatedCall is the §8 "Decommit refund"
// testable property, exercised through the opcode (not the bare
// Execution.Decommit helper): decommitting an already-decommitted
// contract refunds exactly the extra_ergs_cost the caller advanced.
func TestDecommitOpcodeRefundsRepeatedCall(t *testing.T) {
	backend := state.NewMemStorage()
	target := common.Address{0x0A}
	registerContractCode(backend, target, []common.Hash{{1}, {2}})

	ex := New(backend, common.Address{}, nil, 1_000_000, Config{DisableKernel: true})
	frame := ex.CurrentFrame()
	frame.GasLeft = 1_000_000

	extraCost := uint32(500)
	ex.Registers[1] = addressValue(target)
	ex.Registers[2] = NewIntegerValue(u256FromU64(uint64(extraCost)))
	in := Instruction{Variant: OpDecommit, Src0: 1, Src1: 2, Dst0: 3}

	// First call: pays extraCost plus the per-word decommit charge.
	before := frame.GasLeft
	assert.NoError(t, ex.opDecommitOpcode(frame, in))
	assert.True(t, ex.Registers[3].IsPointer)
	firstCallCost := before - frame.GasLeft
	assert.True(t, firstCallCost > extraCost, "first call should also pay the per-word decommit charge")

	// Second call against the same contract: extraCost is paid up front
	// then refunded in full, since the contract is already decommitted,
	// leaving only the (zero, since cached) per-word charge.
	beforeSecond := frame.GasLeft
	assert.NoError(t, ex.opDecommitOpcode(frame, in))
	assert.Equal(t, beforeSecond, frame.GasLeft, "repeat decommit refunds exactly the extra cost the caller advanced")
}

// TestDecommitNotPresentReturnsNotFound covers the unregistered (tag 0)
// ("else -> not-present") branch of spec.md §4.H's decommit algorithm.
func TestDecommitNotPresentReturnsNotFound(t *testing.T) {
	backend := state.NewMemStorage()
	ex := New(backend, common.Address{}, nil, 1_000_000, Config{DisableKernel: true})

	res, err := ex.Decommit(common.Address{0xFE})
	assert.NoError(t, err)
	assert.False(t, res.Found)
}
