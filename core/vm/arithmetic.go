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
	"math/bits"

	"github.com/holiman/uint256"
)

// setFlags applies the decoded flag triple when the instruction's
// AltersVMFlags bit is set, and leaves the existing flags untouched
// otherwise (spec.md §3: "every non-flag-altering opcode leaves them
// untouched").
func (ex *Execution) setFlags(in Instruction, lt, gt, eq bool) {
	if !in.AltersVMFlags {
		return
	}
	ex.FlagLT, ex.FlagGT, ex.FlagEQ = lt, gt, eq
}

// opAdd implements Add: 256-bit wrapping addition; LT/overflow set on
// carry, EQ on a zero result, GT otherwise (spec.md §4.I).
func (ex *Execution) opAdd(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)

	var sum uint256.Int
	sum.Add(&a.Value, &b.Value)
	overflow := sum.Lt(&a.Value)
	eq := sum.IsZero()
	ex.setFlags(in, overflow, !overflow && !eq, eq)
	return ex.StoreDst0(frame, in, TaggedValue{Value: sum})
}

// opSub implements Sub: 256-bit wrapping subtraction; LT/overflow set on
// borrow, EQ on a zero result, GT otherwise.
func (ex *Execution) opSub(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)

	var diff uint256.Int
	diff.Sub(&a.Value, &b.Value)
	borrow := a.Value.Lt(&b.Value)
	eq := diff.IsZero()
	ex.setFlags(in, borrow, !borrow && !eq, eq)
	return ex.StoreDst0(frame, in, TaggedValue{Value: diff})
}

// opMul implements Mul: full 512-bit product, low half to dst0, optional
// high half to dst1; overflow flag set iff the high half is nonzero
// (spec.md §4.I).
func (ex *Execution) opMul(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)

	lo, hi := mul256(&a.Value, &b.Value)

	eq := lo.IsZero()
	overflow := !hi.IsZero()
	ex.setFlags(in, overflow, !overflow && !eq, eq)

	if err := ex.StoreDst0(frame, in, TaggedValue{Value: lo}); err != nil {
		return err
	}
	ex.StoreDst1(in, TaggedValue{Value: hi})
	return nil
}

// mul256 computes the full 512-bit product of a*b via schoolbook
// multiplication over the four 64-bit limbs uint256.Int stores
// least-significant-word-first, returning (low 256 bits, high 256 bits).
func mul256(a, b *uint256.Int) (lo, hi uint256.Int) {
	var acc [8]uint64
	for i := 0; i < 4; i++ {
		if a[i] == 0 {
			continue
		}
		var carry uint64
		for j := 0; j < 4; j++ {
			hiPart, loPart := bits.Mul64(a[i], b[j])
			var c1, c2 uint64
			acc[i+j], c1 = bits.Add64(acc[i+j], loPart, 0)
			acc[i+j], c2 = bits.Add64(acc[i+j], carry, 0)
			carry = hiPart + c1 + c2
		}
		acc[i+4], _ = bits.Add64(acc[i+4], carry, 0)
	}
	lo = uint256.Int{acc[0], acc[1], acc[2], acc[3]}
	hi = uint256.Int{acc[4], acc[5], acc[6], acc[7]}
	return lo, hi
}

// opDiv implements Div: (quotient,remainder) = divmod(src0,src1), with
// the div-by-zero special case setting (0,0) and LT=EQ=true (spec.md
// §4.I).
func (ex *Execution) opDiv(frame *CallFrame, in Instruction) error {
	a, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	b := ex.ResolveSrc1(in)

	var q, r uint256.Int
	if b.Value.IsZero() {
		ex.setFlags(in, true, false, true)
	} else {
		q.Div(&a.Value, &b.Value)
		r.Mod(&a.Value, &b.Value)
		eq := q.IsZero()
		gt := r.IsZero()
		ex.setFlags(in, false, gt, eq)
	}

	if err := ex.StoreDst0(frame, in, TaggedValue{Value: q}); err != nil {
		return err
	}
	ex.StoreDst1(in, TaggedValue{Value: r})
	return nil
}
