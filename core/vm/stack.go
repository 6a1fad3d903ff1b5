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

import "github.com/probeum/zkevm-core/vmerrors"

// maxStackSlots bounds how far a single frame's stack may grow, mirroring
// the heap's word-aligned, monotonic-until-frame-exit growth discipline
// (spec.md §4.D).
const maxStackSlots = 1 << 16

// Stack is a per-frame array of tagged values addressed relative to a
// moving stack pointer (spec.md §4.D). Slots above the current length read
// as untagged zero, the same "grows on demand" contract the heap has.
type Stack struct {
	slots []TaggedValue
	sp    uint32
}

// NewStack returns an empty stack.
func NewStack() *Stack { return &Stack{} }

// SP reports the current stack pointer.
func (s *Stack) SP() uint32 { return s.sp }

func (s *Stack) ensure(n uint32) {
	if n <= uint32(len(s.slots)) {
		return
	}
	grown := make([]TaggedValue, n)
	copy(grown, s.slots)
	s.slots = grown
}

// Push writes v at the current SP and increments SP, the semantics
// UseStackWithPushPop relies on for a destination operand (spec.md §4.E).
func (s *Stack) Push(v TaggedValue) error {
	if s.sp >= maxStackSlots {
		return vmerrors.ErrStackStoreOutOfBounds
	}
	s.ensure(s.sp + 1)
	s.slots[s.sp] = v
	s.sp++
	return nil
}

// Pop decrements SP and returns the value now below it, the semantics
// UseStackWithPushPop relies on for a source operand.
func (s *Stack) Pop() (TaggedValue, error) {
	if s.sp == 0 {
		return TaggedValue{}, vmerrors.ErrStackUnderflow
	}
	s.sp--
	return s.slots[s.sp], nil
}

// GetWithOffset reads the value at sp-offset (offset counted downward from
// the current stack pointer). A not-yet-written slot reads as untagged
// zero; the stack is not grown.
func (s *Stack) GetWithOffset(offset uint32) (TaggedValue, error) {
	if offset > s.sp {
		return TaggedValue{}, vmerrors.ErrStackReadOutOfBounds
	}
	idx := s.sp - offset
	if idx >= uint32(len(s.slots)) {
		return TaggedValue{}, nil
	}
	return s.slots[idx], nil
}

// StoreWithOffset writes v at sp-offset, growing the stack as needed.
func (s *Stack) StoreWithOffset(offset uint32, v TaggedValue) error {
	if offset > s.sp {
		return vmerrors.ErrStackStoreOutOfBounds
	}
	idx := s.sp - offset
	s.ensure(idx + 1)
	s.slots[idx] = v
	return nil
}

// GetAbsolute reads the value at a fixed index from the base of the frame,
// used by UseAbsoluteOnStack operands.
func (s *Stack) GetAbsolute(idx uint32) (TaggedValue, error) {
	if idx >= uint32(len(s.slots)) {
		return TaggedValue{}, nil
	}
	return s.slots[idx], nil
}

// StoreAbsolute writes v at a fixed index from the base of the frame.
func (s *Stack) StoreAbsolute(idx uint32, v TaggedValue) error {
	if idx >= maxStackSlots {
		return vmerrors.ErrStackStoreOutOfBounds
	}
	s.ensure(idx + 1)
	s.slots[idx] = v
	return nil
}
