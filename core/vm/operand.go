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
	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/vmerrors"
)

// ResolveSrc0 reads the instruction's first source operand, applying
// whichever addressing case the variant's OperandType selects
// (spec.md §4.E).
func (ex *Execution) ResolveSrc0(frame *CallFrame, in Instruction) (TaggedValue, error) {
	switch in.Variant.Src0OperandType() {
	case OperandRegOnly, OperandRegOrImmReg, OperandFullReg:
		return ex.Registers[in.Src0], nil
	case OperandRegOrImmImm16, OperandFullImm16:
		return TaggedValue{Value: *u256FromU16(in.Imm0)}, nil
	case OperandFullStackPushPop:
		return frame.Stack.Pop()
	case OperandFullStackOffset:
		offset := uint32(ex.Registers[in.Src0].Value.Uint64()) + uint32(in.Imm0)
		return frame.Stack.GetWithOffset(offset)
	case OperandFullAbsoluteStack:
		idx := uint32(ex.Registers[in.Src0].Value.Uint64()) + uint32(in.Imm0)
		return frame.Stack.GetAbsolute(idx)
	case OperandFullCodePage:
		idx := uint32(ex.Registers[in.Src0].Value.Uint64()) + uint32(in.Imm0)
		if int(idx) >= len(frame.CodePage) {
			return TaggedValue{}, vmerrors.ErrHeapReadOutOfBounds
		}
		return TaggedValue{Value: *common.U256FromHash(frame.CodePage[idx])}, nil
	default:
		return TaggedValue{}, vmerrors.ErrInvalidSrcNotPointer
	}
}

// ResolveSrc1 reads the instruction's second source operand, always a
// plain register (spec.md §4.E: only the first operand slot carries the
// full addressing space).
func (ex *Execution) ResolveSrc1(in Instruction) TaggedValue {
	return ex.Registers[in.Src1]
}

// StoreDst0 writes result into the instruction's first destination
// operand, resolved independently from src0 via Dst0OperandType
// (spec.md §4.E). An imm16-only or code-page destination is illegal;
// variants whose src0 is one of those read-only cases register a
// dst0OperandOverride instead of reaching this branch.
func (ex *Execution) StoreDst0(frame *CallFrame, in Instruction, result TaggedValue) error {
	switch in.Variant.Dst0OperandType() {
	case OperandRegOnly, OperandRegOrImmReg, OperandFullReg:
		if in.Dst0 == 0 {
			return nil // reg0 is hard-wired to zero; writes are discarded.
		}
		ex.Registers[in.Dst0] = result
		return nil
	case OperandRegOrImmImm16, OperandFullImm16:
		return vmerrors.ErrInvalidDestImm16Only
	case OperandFullStackPushPop:
		return frame.Stack.Push(result)
	case OperandFullStackOffset:
		offset := uint32(ex.Registers[in.Dst0].Value.Uint64()) + uint32(in.Imm1)
		return frame.Stack.StoreWithOffset(offset, result)
	case OperandFullAbsoluteStack:
		idx := uint32(ex.Registers[in.Dst0].Value.Uint64()) + uint32(in.Imm1)
		return frame.Stack.StoreAbsolute(idx, result)
	case OperandFullCodePage:
		return vmerrors.ErrInvalidDestCodePage
	default:
		return vmerrors.ErrInvalidDestImm16Only
	}
}

// StoreDst1 writes result into the instruction's second destination
// register, always a plain register.
func (ex *Execution) StoreDst1(in Instruction, result TaggedValue) {
	if in.Dst1 == 0 {
		return
	}
	ex.Registers[in.Dst1] = result
}
