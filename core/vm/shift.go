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

// shiftLeft returns v shifted left by n bits (0 <= n < 256), zero-filling
// from the low end.
func shiftLeft(v *uint256.Int, n uint) uint256.Int {
	if n == 0 {
		return *v
	}
	wordShift := n / 64
	bitShift := n % 64
	var out uint256.Int
	for i := 3; i >= 0; i-- {
		srcIdx := i - int(wordShift)
		if srcIdx < 0 {
			continue
		}
		val := v[srcIdx] << bitShift
		if bitShift > 0 && srcIdx-1 >= 0 {
			val |= v[srcIdx-1] >> (64 - bitShift)
		}
		out[i] = val
	}
	return out
}

// shiftRight returns v shifted right by n bits (0 <= n < 256), zero-filling
// from the high end.
func shiftRight(v *uint256.Int, n uint) uint256.Int {
	if n == 0 {
		return *v
	}
	wordShift := n / 64
	bitShift := n % 64
	var out uint256.Int
	for i := 0; i < 4; i++ {
		srcIdx := i + int(wordShift)
		if srcIdx > 3 {
			continue
		}
		val := v[srcIdx] >> bitShift
		if bitShift > 0 && srcIdx+1 <= 3 {
			val |= v[srcIdx+1] << (64 - bitShift)
		}
		out[i] = val
	}
	return out
}

func orWords(a, b *uint256.Int) uint256.Int {
	return uint256.Int{a[0] | b[0], a[1] | b[1], a[2] | b[2], a[3] | b[3]}
}

// shiftAmount reduces src1 to the [0,256) rotation/shift amount spec.md
// §4.I fixes ("shift amount = src1 mod 256").
func shiftAmount(src1 TaggedValue) uint {
	return uint(src1.Value[0] % 256)
}

// opShl implements Shl: left shift by src1 mod 256; EQ set on a zero
// result, LT/GT cleared (spec.md §4.I).
func (ex *Execution) opShl(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	result := shiftLeft(&a.Value, shiftAmount(b))
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}

// opShr implements Shr: right shift by src1 mod 256.
func (ex *Execution) opShr(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	result := shiftRight(&a.Value, shiftAmount(b))
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}

// opRol implements Rol: 256-bit rotate-left by src1 mod 256.
func (ex *Execution) opRol(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	n := shiftAmount(b)
	var result uint256.Int
	if n == 0 {
		result = a.Value
	} else {
		left := shiftLeft(&a.Value, n)
		right := shiftRight(&a.Value, 256-n)
		result = orWords(&left, &right)
	}
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}

// opRor implements Ror: 256-bit rotate-right by src1 mod 256.
func (ex *Execution) opRor(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)
	n := shiftAmount(b)
	var result uint256.Int
	if n == 0 {
		result = a.Value
	} else {
		right := shiftRight(&a.Value, n)
		left := shiftLeft(&a.Value, 256-n)
		result = orWords(&right, &left)
	}
	ex.setFlags(in, false, false, result.IsZero())
	return ex.StoreDst0(frame, in, TaggedValue{Value: result})
}
