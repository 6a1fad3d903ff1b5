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
	"github.com/holiman/uint256"

	"github.com/probeum/zkevm-core/vmerrors"
)

// MaxOffsetForAddSub bounds the integer operand of ptr.add/ptr.sub/
// ptr.shrink: it must fit the 32-bit offset/len fields it is added to or
// subtracted from (spec.md §4.I).
const MaxOffsetForAddSub = 1<<32 - 1

// opPtrAdd implements Ptr.Add: src0 must be a pointer, src1 a non-pointer
// whose value is <= MaxOffsetForAddSub; offset advances by src1 while
// start is unchanged, re-emitting a pointer that preserves src1's high
// 128 bits (spec.md §4.I).
func (ex *Execution) opPtrAdd(frame *CallFrame, in Instruction) error {
	return ex.ptrArith(frame, in, func(fp FatPointer, delta uint32) (FatPointer, error) {
		newOffset := fp.Offset + delta
		if newOffset < fp.Offset {
			return FatPointer{}, vmerrors.ErrPointerOverflow
		}
		fp.Offset = newOffset
		return fp, nil
	})
}

// opPtrSub implements Ptr.Sub: offset decreases by src1's value; error on
// underflow.
func (ex *Execution) opPtrSub(frame *CallFrame, in Instruction) error {
	return ex.ptrArith(frame, in, func(fp FatPointer, delta uint32) (FatPointer, error) {
		if delta > fp.Offset {
			return FatPointer{}, vmerrors.ErrPointerOverflow
		}
		fp.Offset -= delta
		return fp, nil
	})
}

// opPtrShrink implements Ptr.Shrink: len decreases by src1's value; error
// on underflow.
func (ex *Execution) opPtrShrink(frame *CallFrame, in Instruction) error {
	return ex.ptrArith(frame, in, func(fp FatPointer, delta uint32) (FatPointer, error) {
		if delta > fp.Len {
			return FatPointer{}, vmerrors.ErrPointerOverflow
		}
		fp.Len -= delta
		return fp, nil
	})
}

func (ex *Execution) ptrArith(frame *CallFrame, in Instruction, mutate func(FatPointer, uint32) (FatPointer, error)) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	if !src0.IsPointer {
		return vmerrors.ErrInvalidSrcNotPointer
	}
	src1 := ex.ResolveSrc1(in)
	if src1.IsPointer {
		return vmerrors.ErrSrcIsPointer
	}
	if src1.Value[2] != 0 || src1.Value[3] != 0 || src1.Value[1] != 0 {
		return vmerrors.ErrSrcOversized
	}
	delta := uint32(src1.Value[0])
	if src1.Value[0] > MaxOffsetForAddSub {
		return vmerrors.ErrSrcOversized
	}

	fp := DecodeFatPointer(&src0.Value)
	newFP, err := mutate(fp, delta)
	if err != nil {
		return err
	}

	result := newFP.Encode()
	// Preserve src1's high 128 bits in the result, per the ISA's
	// pointer-pack composition area (spec.md §4.I).
	result[2], result[3] = src1.Value[2], src1.Value[3]
	out := NewPointerValue(result)
	return ex.StoreDst0(frame, in, out)
}

// opPtrPack implements Ptr.Pack: src0 must be a pointer, src1 a
// non-pointer whose low 128 bits are zero; result is src0's low 128 bits
// combined with src1's high 128 bits, tagged as a pointer (spec.md §4.I).
func (ex *Execution) opPtrPack(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	if !src0.IsPointer {
		return vmerrors.ErrInvalidSrcNotPointer
	}
	src1 := ex.ResolveSrc1(in)
	if src1.IsPointer {
		return vmerrors.ErrSrcIsPointer
	}
	if src1.Value[0] != 0 || src1.Value[1] != 0 {
		return vmerrors.ErrNonZeroLow128InPtrPack
	}

	result := src0.Value
	result[2], result[3] = src1.Value[2], src1.Value[3]
	return ex.StoreDst0(frame, in, NewPointerValue(&result))
}

// opPtrRead implements the fat-pointer read family: src0 must be a
// pointer; bytes are read relative to (start+offset), zero-padded past
// start+len. When AltersVMFlags (".inc") is set, dst1 receives a new
// pointer with offset advanced by 32 (spec.md §4.I).
func (ex *Execution) opPtrRead(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	if !src0.IsPointer {
		return vmerrors.ErrInvalidSrcNotPointer
	}
	fp := DecodeFatPointer(&src0.Value)

	heap := ex.Heaps.Get(fp.Page)
	if heap == nil {
		return vmerrors.ErrHeapReadOutOfBounds
	}

	var word [32]byte
	if fp.Offset < fp.Len {
		raw, grown, err := heap.Read(fp.Start + fp.Offset)
		if err != nil {
			return err
		}
		ex.billMemoryGrowth(grown)
		word = raw
		remaining := fp.Len - fp.Offset
		if remaining < 32 {
			for i := remaining; i < 32; i++ {
				word[i] = 0
			}
		}
	}

	if err := ex.StoreDst0(frame, in, NewIntegerValue(new(uint256.Int).SetBytes32(word[:]))); err != nil {
		return err
	}

	if in.AltersVMFlags {
		advanced := fp
		advanced.Offset += 32
		ex.StoreDst1(in, NewPointerValue(advanced.Encode()))
	}
	return nil
}
