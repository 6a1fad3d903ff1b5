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
	"github.com/probeum/zkevm-core/core/state"
	"github.com/probeum/zkevm-core/vmerrors"
)

// EventWriterAddress is the only system-contract address allowed to emit
// Event/L2ToL1Message (spec.md §4.I).
var EventWriterAddress = common.BytesToAddress([]byte{0x00, 0x00, 0x80, 0x09})

// opEvent implements Event: append to the rollbackable event log; only
// callable from EventWriterAddress (spec.md §4.I). Each Event becomes one
// EventLog entry; the is_first bit is ignored, so an event's leading
// word is not told apart from its tail words.
func (ex *Execution) opEvent(frame *CallFrame, in Instruction) error {
	if frame.ContractAddress != EventWriterAddress {
		return vmerrors.ErrNotKernelMode
	}
	key, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	value := ex.ResolveSrc1(in)

	ex.State.AppendEvent(state.EventLog{
		Address: frame.ContractAddress,
		Topics:  []common.Hash{common.HashFromU256(&key.Value)},
		Data:    value.Value.Bytes32()[:],
	})
	return nil
}

// opL2ToL1Log implements ToL1Message: append to the rollbackable L2->L1
// log, the mirror of opEvent gated by the same system address.
func (ex *Execution) opL2ToL1Log(frame *CallFrame, in Instruction) error {
	if frame.ContractAddress != EventWriterAddress {
		return vmerrors.ErrNotKernelMode
	}
	key, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	value := ex.ResolveSrc1(in)

	ex.State.AppendL2ToL1Log(state.L2ToL1Log{
		Sender:  frame.ContractAddress,
		Key:     common.HashFromU256(&key.Value),
		Value:   common.HashFromU256(&value.Value),
		IsFirst: in.AltersVMFlags,
	})
	return nil
}
