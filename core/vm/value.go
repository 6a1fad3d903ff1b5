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
)

// TaggedValue is a 256-bit word paired with the pointer tag every register
// and stack cell carries (spec.md §3, component A).
type TaggedValue struct {
	Value     uint256.Int
	IsPointer bool
}

// NewIntegerValue wraps v as a non-pointer tagged value.
func NewIntegerValue(v *uint256.Int) TaggedValue {
	return TaggedValue{Value: *v}
}

// NewPointerValue wraps v as a pointer-tagged value. The caller is
// responsible for v decoding to a valid FatPointer.
func NewPointerValue(v *uint256.Int) TaggedValue {
	return TaggedValue{Value: *v, IsPointer: true}
}

// ZeroValue is the untagged zero integer.
func ZeroValue() TaggedValue { return TaggedValue{} }

// ToInteger clears the pointer tag in place, the way a plain arithmetic
// result always does regardless of its operands' tags.
func (t *TaggedValue) ToInteger() { t.IsPointer = false }

// Add performs wrapping 256-bit addition; the result is always untagged,
// matching "arithmetic/logic produces non-pointer results" (spec.md §3).
func (t TaggedValue) Add(other TaggedValue) TaggedValue {
	var out uint256.Int
	out.Add(&t.Value, &other.Value)
	return TaggedValue{Value: out}
}

// BitOrAssign ors other's value into t in place without touching the tag.
func (t *TaggedValue) BitOrAssign(other TaggedValue) {
	t.Value.Or(&t.Value, &other.Value)
}

// FatPointer is the (offset, page, start, len) view packed into the low 128
// bits of a 256-bit word (spec.md §3/§4.A). All four fields are 32 bits wide.
type FatPointer struct {
	Offset uint32
	Page   uint32
	Start  uint32
	Len    uint32
}

// Encode packs fp into the low 128 bits of a 256-bit word: offset|page occupy
// the lower 64 bits, start|len the next 64. The high 128 bits are left zero
// here; ptr.pack is the only opcode that populates them (see ptr.go).
func (fp FatPointer) Encode() *uint256.Int {
	lo := uint64(fp.Offset) | uint64(fp.Page)<<32
	hi := uint64(fp.Start) | uint64(fp.Len)<<32
	var out uint256.Int
	out[0] = lo
	out[1] = hi
	return &out
}

// DecodeFatPointer unpacks the low 128 bits of v into a FatPointer. The high
// 128 bits (the ptr.pack composition area) are ignored.
func DecodeFatPointer(v *uint256.Int) FatPointer {
	lo := v[0]
	hi := v[1]
	return FatPointer{
		Offset: uint32(lo),
		Page:   uint32(lo >> 32),
		Start:  uint32(hi),
		Len:    uint32(hi >> 32),
	}
}

func u256FromU16(v uint16) *uint256.Int { return uint256.NewInt(0).SetUint64(uint64(v)) }
func u256FromU64(v uint64) *uint256.Int { return uint256.NewInt(0).SetUint64(v) }

// Narrow moves offset into start, zeroing offset: "consume the consumed
// prefix" (spec.md §4.A). Undefined (caller must check) if offset > len.
func (fp FatPointer) Narrow() FatPointer {
	return FatPointer{
		Offset: 0,
		Page:   fp.Page,
		Start:  fp.Start + fp.Offset,
		Len:    fp.Len - fp.Offset,
	}
}
