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

	"github.com/probeum/zkevm-core/common"
)

// addressValue renders addr the way a context opcode places it in a
// register: right-aligned into the low 160 bits of a non-pointer tagged
// value (spec.md §3 Hash32 convention).
func addressValue(addr common.Address) TaggedValue {
	h := addr.Hash32()
	return NewIntegerValue(new(uint256.Int).SetBytes32(h[:]))
}

func (ex *Execution) opContextThis(frame *CallFrame, in Instruction) error {
	return ex.StoreDst0(frame, in, addressValue(frame.ContractAddress))
}

func (ex *Execution) opContextCaller(frame *CallFrame, in Instruction) error {
	return ex.StoreDst0(frame, in, addressValue(frame.Caller))
}

func (ex *Execution) opContextCodeAddress(frame *CallFrame, in Instruction) error {
	return ex.StoreDst0(frame, in, addressValue(frame.CodeAddress))
}

// opContextMeta reports packed metadata about the running frame: ergs
// left in the low 32 bits, kernel-mode flag in bit 32 (spec.md §4.I).
func (ex *Execution) opContextMeta(frame *CallFrame, in Instruction) error {
	meta := u256FromU64(uint64(frame.GasLeft))
	if ex.IsKernelMode() {
		meta[0] |= 1 << 32
	}
	return ex.StoreDst0(frame, in, NewIntegerValue(meta))
}

func (ex *Execution) opContextErgsLeft(frame *CallFrame, in Instruction) error {
	return ex.StoreDst0(frame, in, NewIntegerValue(u256FromU64(uint64(frame.GasLeft))))
}

func (ex *Execution) opContextSp(frame *CallFrame, in Instruction) error {
	return ex.StoreDst0(frame, in, NewIntegerValue(u256FromU64(uint64(frame.Stack.SP()))))
}

func (ex *Execution) opContextGetCtxU128(frame *CallFrame, in Instruction) error {
	return ex.StoreDst0(frame, in, NewIntegerValue(u256FromU64(frame.ContextU128)))
}

// opContextSetCtxU128 requires kernel mode (enforced by the interpreter's
// IsKernelOnly gate before dispatch).
func (ex *Execution) opContextSetCtxU128(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	frame.ContextU128 = src0.Value[0]
	return nil
}

func (ex *Execution) opContextIncrementTxNumber(frame *CallFrame, in Instruction) error {
	ex.IncrementTxNumber()
	return nil
}
