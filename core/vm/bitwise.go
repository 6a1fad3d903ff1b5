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

import "github.com/holiman/uint256"

// opAnd/opOr/opXor implement the bitwise family: LT and GT always
// cleared, EQ set on a zero result (spec.md §4.I).
func (ex *Execution) opAnd(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	var result uint256.Int
	result.And(&a.Value, &b.Value)
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}

func (ex *Execution) opOr(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	var result uint256.Int
	result.Or(&a.Value, &b.Value)
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}

func (ex *Execution) opXor(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	var result uint256.Int
	result.Xor(&a.Value, &b.Value)
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}
