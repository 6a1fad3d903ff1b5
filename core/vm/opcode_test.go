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

func TestDecodeEncodeRoundTrip(t *testing.T) {
	in := Instruction{
		Variant:       OpAdd,
		Predicate:     PredicateGe,
		Src0:          3,
		Src1:          5,
		Dst0:          2,
		Dst1:          7,
		Imm0:          0x1234,
		Imm1:          0xABCD,
		AltersVMFlags: true,
	}
	raw := Encode(in)
	got := Decode(raw)
	assert.Equal(t, in, got)
}

// TestPredicateHoldsIsComplete checks spec §8's predicate completeness
// property: every predicate's Holds value is fully determined by the
// flag triple, checked on representative flag combinations for each
// predicate.
func TestPredicateHoldsIsComplete(t *testing.T) {
	cases := []struct {
		p          Predicate
		lt, gt, eq bool
		want       bool
	}{
		{PredicateAlways, false, false, false, true},
		{PredicateGt, true, false, false, false},
		{PredicateGt, false, true, false, true},
		{PredicateLt, true, false, false, true},
		{PredicateLt, false, false, false, false},
		{PredicateEq, false, false, true, true},
		{PredicateEq, false, false, false, false},
		{PredicateGe, false, true, false, true},
		{PredicateGe, false, false, true, true},
		{PredicateGe, false, false, false, false},
		{PredicateLe, true, false, false, true},
		{PredicateLe, false, false, true, true},
		{PredicateLe, false, false, false, false},
		{PredicateNe, false, false, true, false},
		{PredicateNe, false, false, false, true},
		{PredicateGtOrLt, true, false, false, true},
		{PredicateGtOrLt, false, true, false, true},
		{PredicateGtOrLt, false, false, true, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.p.Holds(c.lt, c.gt, c.eq))
	}
}

func TestIsKernelOnlyAndIsStateChanging(t *testing.T) {
	assert.True(t, OpDecommit.IsKernelOnly())
	assert.True(t, OpContextSetCtxU128.IsKernelOnly())
	assert.False(t, OpAdd.IsKernelOnly())

	assert.True(t, OpStorageWrite.IsStateChanging())
	assert.True(t, OpEvent.IsStateChanging())
	assert.False(t, OpStorageRead.IsStateChanging())
}

func TestGasCostUsesVariantBase(t *testing.T) {
	assert.Equal(t, uint32(0), Instruction{Variant: OpNop}.GasCost())
	assert.Equal(t, uint32(60), Instruction{Variant: OpStorageRead}.GasCost())
	assert.Equal(t, uint32(1), Instruction{Variant: OpAdd}.GasCost())
}
