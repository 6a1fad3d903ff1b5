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

// MaxOffsetToDerefLowU32 bounds a UMA address operand: it must fit in 32
// bits and not be flagged as a pointer (spec.md §4.I).
const MaxOffsetToDerefLowU32 = 1<<32 - 1

func (ex *Execution) umaAddr(frame *CallFrame, in Instruction) (uint32, error) {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return 0, err
	}
	if src0.IsPointer {
		return 0, vmerrors.ErrSrcIsPointer
	}
	if src0.Value[1] != 0 || src0.Value[2] != 0 || src0.Value[3] != 0 || src0.Value[0] > MaxOffsetToDerefLowU32 {
		return 0, vmerrors.ErrSrcOversized
	}
	return uint32(src0.Value[0]), nil
}

func (ex *Execution) umaRead(frame *CallFrame, in Instruction, heapID heapIndex) error {
	addr, err := ex.umaAddr(frame, in)
	if err != nil {
		return err
	}
	heap := ex.Heaps.Get(heapID)
	if heap == nil {
		return vmerrors.ErrHeapReadOutOfBounds
	}
	word, grown, err := heap.Read(addr)
	if err != nil {
		return err
	}
	ex.billMemoryGrowth(grown)

	if err := ex.StoreDst0(frame, in, NewIntegerValue(new(uint256.Int).SetBytes32(word[:]))); err != nil {
		return err
	}
	if in.AltersVMFlags {
		next, ok := addU32(addr, 32)
		if !ok {
			return vmerrors.ErrHeapReadOutOfBounds
		}
		ex.StoreDst1(in, NewIntegerValue(u256FromU64(uint64(next))))
	}
	return nil
}

func (ex *Execution) umaWrite(frame *CallFrame, in Instruction, heapID heapIndex) error {
	addr, err := ex.umaAddr(frame, in)
	if err != nil {
		return err
	}
	value := ex.ResolveSrc1(in)
	heap := ex.Heaps.Get(heapID)
	if heap == nil {
		return vmerrors.ErrHeapStoreOutOfBounds
	}
	grown, err := heap.Store(addr, value.Value.Bytes32())
	if err != nil {
		return err
	}
	ex.billMemoryGrowth(grown)

	if in.AltersVMFlags {
		next, ok := addU32(addr, 32)
		if !ok {
			return vmerrors.ErrHeapStoreOutOfBounds
		}
		ex.StoreDst1(in, NewIntegerValue(u256FromU64(uint64(next))))
	}
	return nil
}

func (ex *Execution) opUMAHeapRead(frame *CallFrame, in Instruction) error {
	return ex.umaRead(frame, in, frame.HeapID)
}

func (ex *Execution) opUMAHeapWrite(frame *CallFrame, in Instruction) error {
	return ex.umaWrite(frame, in, frame.HeapID)
}

func (ex *Execution) opUMAAuxHeapRead(frame *CallFrame, in Instruction) error {
	return ex.umaRead(frame, in, frame.AuxHeapID)
}

func (ex *Execution) opUMAAuxHeapWrite(frame *CallFrame, in Instruction) error {
	return ex.umaWrite(frame, in, frame.AuxHeapID)
}
