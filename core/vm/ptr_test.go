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
)

func TestOpPtrAddAdvancesOffset(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	fp := FatPointer{Page: 2, Start: 100, Len: 50, Offset: 4}
	ex.Registers[1] = NewPointerValue(fp.Encode())
	ex.Registers[2] = NewIntegerValue(u256FromU64(10))

	in := Instruction{Variant: OpPtrAdd, Src0: 1, Src1: 2, Dst0: 3}
	assert.NoError(t, ex.opPtrAdd(frame, in))

	got := DecodeFatPointer(&ex.Registers[3].Value)
	assert.True(t, ex.Registers[3].IsPointer)
	assert.Equal(t, uint32(14), got.Offset)
	assert.Equal(t, fp.Start, got.Start)
	assert.Equal(t, fp.Len, got.Len)
}

func TestOpPtrAddRejectsNonPointerSrc0(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()
	ex.Registers[1] = NewIntegerValue(u256FromU64(1))
	ex.Registers[2] = NewIntegerValue(u256FromU64(1))

	in := Instruction{Variant: OpPtrAdd, Src0: 1, Src1: 2, Dst0: 3}
	assert.Error(t, ex.opPtrAdd(frame, in))
}

func TestOpPtrSubUnderflowErrors(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	fp := FatPointer{Page: 2, Start: 0, Len: 50, Offset: 4}
	ex.Registers[1] = NewPointerValue(fp.Encode())
	ex.Registers[2] = NewIntegerValue(u256FromU64(5))

	in := Instruction{Variant: OpPtrSub, Src0: 1, Src1: 2, Dst0: 3}
	assert.Error(t, ex.opPtrSub(frame, in))
}

func TestOpPtrShrinkReducesLen(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	fp := FatPointer{Page: 2, Start: 0, Len: 50, Offset: 0}
	ex.Registers[1] = NewPointerValue(fp.Encode())
	ex.Registers[2] = NewIntegerValue(u256FromU64(20))

	in := Instruction{Variant: OpPtrShrink, Src0: 1, Src1: 2, Dst0: 3}
	assert.NoError(t, ex.opPtrShrink(frame, in))

	got := DecodeFatPointer(&ex.Registers[3].Value)
	assert.Equal(t, uint32(30), got.Len)
}

func TestOpPtrPackCombinesHighBitsWithLowBits(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	fp := FatPointer{Page: 2, Start: 10, Len: 20, Offset: 0}
	ex.Registers[1] = NewPointerValue(fp.Encode())

	var src1 TaggedValue
	src1.Value[2] = 0xDEAD
	src1.Value[3] = 0xBEEF
	ex.Registers[2] = src1

	in := Instruction{Variant: OpPtrPack, Src0: 1, Src1: 2, Dst0: 3}
	assert.NoError(t, ex.opPtrPack(frame, in))

	result := ex.Registers[3]
	assert.True(t, result.IsPointer)
	assert.Equal(t, fp.Encode()[0], result.Value[0])
	assert.Equal(t, fp.Encode()[1], result.Value[1])
	assert.Equal(t, uint64(0xDEAD), result.Value[2])
	assert.Equal(t, uint64(0xBEEF), result.Value[3])
}

func TestOpPtrPackRejectsNonZeroLowBitsInSrc1(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	fp := FatPointer{Page: 2, Start: 10, Len: 20}
	ex.Registers[1] = NewPointerValue(fp.Encode())
	ex.Registers[2] = NewIntegerValue(u256FromU64(1))

	in := Instruction{Variant: OpPtrPack, Src0: 1, Src1: 2, Dst0: 3}
	assert.Error(t, ex.opPtrPack(frame, in))
}

func TestOpPtrReadReturnsHeapWord(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	var word [32]byte
	for i := range word {
		word[i] = byte(i + 1)
	}
	heap := ex.Heaps.Get(frame.HeapID)
	_, err := heap.Store(64, word)
	assert.NoError(t, err)

	fp := FatPointer{Page: frame.HeapID, Start: 64, Len: 32, Offset: 0}
	ex.Registers[1] = NewPointerValue(fp.Encode())

	in := Instruction{Variant: OpPtrRead, Src0: 1, Dst0: 2}
	assert.NoError(t, ex.opPtrRead(frame, in))
	assert.False(t, ex.Registers[2].IsPointer)
	assert.Equal(t, word, ex.Registers[2].Value.Bytes32())
}

func TestOpPtrReadZeroPadsPastLen(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	var word [32]byte
	for i := range word {
		word[i] = 0xFF
	}
	heap := ex.Heaps.Get(frame.HeapID)
	_, err := heap.Store(0, word)
	assert.NoError(t, err)

	// len=10 means only the first 10 bytes of the stored word are live; the
	// rest must read back as zero.
	fp := FatPointer{Page: frame.HeapID, Start: 0, Len: 10, Offset: 0}
	ex.Registers[1] = NewPointerValue(fp.Encode())

	in := Instruction{Variant: OpPtrRead, Src0: 1, Dst0: 2}
	assert.NoError(t, ex.opPtrRead(frame, in))

	got := ex.Registers[2].Value.Bytes32()
	assert.Equal(t, byte(0xFF), got[9])
	assert.Equal(t, byte(0), got[10])
}

func TestOpPtrReadIncAdvancesDst1Pointer(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()

	fp := FatPointer{Page: frame.HeapID, Start: 0, Len: 64, Offset: 8}
	ex.Registers[1] = NewPointerValue(fp.Encode())

	in := Instruction{Variant: OpPtrRead, Src0: 1, Dst0: 2, Dst1: 3, AltersVMFlags: true}
	assert.NoError(t, ex.opPtrRead(frame, in))

	assert.True(t, ex.Registers[3].IsPointer)
	advanced := DecodeFatPointer(&ex.Registers[3].Value)
	assert.Equal(t, uint32(40), advanced.Offset)
	assert.Equal(t, fp.Start, advanced.Start)
	assert.Equal(t, fp.Len, advanced.Len)
}

func TestOpPtrReadRejectsNonPointerSrc0(t *testing.T) {
	ex := newTestExecution()
	frame := ex.CurrentFrame()
	ex.Registers[1] = NewIntegerValue(u256FromU64(1))

	in := Instruction{Variant: OpPtrRead, Src0: 1, Dst0: 2}
	assert.Error(t, ex.opPtrRead(frame, in))
}
