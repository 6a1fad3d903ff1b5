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
	"github.com/probeum/zkevm-core/vmerrors"
)

func (ex *Execution) storageKey(frame *CallFrame, keyValue uint256.Int) common.StorageKey {
	return common.StorageKey{Address: frame.ContractAddress, Key: common.HashFromU256(&keyValue)}
}

// opStorageRead implements Log.StorageRead (spec.md §4.I).
func (ex *Execution) opStorageRead(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	key := ex.storageKey(frame, src0.Value)
	value, err := ex.State.GetStorage(key)
	if err != nil {
		return err
	}
	return ex.StoreDst0(frame, in, NewIntegerValue(common.U256FromHash(value)))
}

// opStorageWrite implements Log.StorageWrite: rejected in a static
// context; cost is queried from the backend and billed before the
// mutation becomes visible (spec.md §4.I).
func (ex *Execution) opStorageWrite(frame *CallFrame, in Instruction) error {
	if frame.IsStatic {
		return vmerrors.ErrOpcodeIsNotStatic
	}
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	value := ex.ResolveSrc1(in)
	key := ex.storageKey(frame, src0.Value)
	newValue := common.HashFromU256(&value.Value)

	cost := ex.State.CostOfWritingStorage(key, newValue)
	if ex.DebitGas(cost) {
		return vmerrors.ErrOutOfGas
	}
	return ex.State.SetStorage(key, newValue)
}

// opTransientRead implements TransientStorageRead: same key shape as
// persistent storage, but served entirely from the in-memory map.
func (ex *Execution) opTransientRead(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	key := ex.storageKey(frame, src0.Value)
	value := ex.State.GetTransientStorage(key)
	return ex.StoreDst0(frame, in, NewIntegerValue(common.U256FromHash(value)))
}

// opTransientWrite implements TransientStorageWrite: rejected in a
// static context, like its persistent counterpart.
func (ex *Execution) opTransientWrite(frame *CallFrame, in Instruction) error {
	if frame.IsStatic {
		return vmerrors.ErrOpcodeIsNotStatic
	}
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	value := ex.ResolveSrc1(in)
	key := ex.storageKey(frame, src0.Value)
	ex.State.SetTransientStorage(key, common.HashFromU256(&value.Value))
	return nil
}
