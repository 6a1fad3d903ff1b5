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
	"github.com/probeum/zkevm-core/vmerrors"
)

// heapWordSize is the byte width of one heap cell's natural alignment unit.
const heapWordSize = 32

// Heap is a byte-addressable, monotonically growing memory page
// (spec.md §4.C). Growth always rounds up to a whole number of words, and a
// heap never shrinks: bytes beyond what was explicitly written read as zero.
type Heap struct {
	bytes []byte
}

// NewHeap returns an empty heap.
func NewHeap() *Heap { return &Heap{} }

// Len reports the heap's current byte length (always a multiple of
// heapWordSize once any growth has occurred).
func (h *Heap) Len() uint32 { return uint32(len(h.bytes)) }

// expandMemory grows the heap, if needed, so that byte index upTo-1 is
// addressable. Returns the number of newly allocated bytes, which the
// caller bills at the per-byte UMA growth rate.
func (h *Heap) expandMemory(upTo uint32) uint32 {
	if upTo <= uint32(len(h.bytes)) {
		return 0
	}
	newLen := ((upTo + heapWordSize - 1) / heapWordSize) * heapWordSize
	grown := newLen - uint32(len(h.bytes))
	grown32 := make([]byte, newLen)
	copy(grown32, h.bytes)
	h.bytes = grown32
	return grown
}

// Store writes a 32-byte word at the given byte offset, growing the heap
// as needed. Returns the number of newly allocated bytes.
func (h *Heap) Store(offset uint32, word [32]byte) (uint32, error) {
	end, ok := addU32(offset, heapWordSize)
	if !ok {
		return 0, vmerrors.ErrHeapStoreOutOfBounds
	}
	grown := h.expandMemory(end)
	copy(h.bytes[offset:end], word[:])
	return grown, nil
}

// Read loads the 32-byte word at the given byte offset, growing the heap
// as needed. Returns the number of newly allocated bytes.
func (h *Heap) Read(offset uint32) ([32]byte, uint32, error) {
	end, ok := addU32(offset, heapWordSize)
	if !ok {
		return [32]byte{}, 0, vmerrors.ErrHeapReadOutOfBounds
	}
	grown := h.expandMemory(end)
	var out [32]byte
	copy(out[:], h.bytes[offset:end])
	return out, grown, nil
}

// ReadUnaligned reads a 32-byte span starting at a byte offset that need
// not be word-aligned, as fat-pointer-relative reads require.
func (h *Heap) ReadUnaligned(offset uint32) ([32]byte, uint32, error) {
	return h.Read(offset)
}

// ReadU256 loads offset as a big-endian uint256, for UMA opcodes that
// operate directly on tagged register values.
func (h *Heap) ReadU256(offset uint32) ([]byte, uint32, error) {
	word, grown, err := h.Read(offset)
	if err != nil {
		return nil, 0, err
	}
	return word[:], grown, nil
}

func addU32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// heapIndex identifies a page within the Heaps collection. Index 0 is a
// reserved sentinel that is never dereferenced (spec.md §4.C).
type heapIndex = uint32

const (
	heapNone       heapIndex = 0
	heapCalldata   heapIndex = 1
	heapPrimary    heapIndex = 2
	heapAux        heapIndex = 3
	firstAllocatable heapIndex = 4
)

// Heaps is the VM-wide collection of heap pages, indexed by page id
// (spec.md §4.C). Page 1/2/3 are always the root frame's calldata/primary
// heap/aux heap; every far call allocates a fresh (primary, aux) pair.
type Heaps struct {
	pages map[heapIndex]*Heap
	next  heapIndex
}

// NewHeaps seeds the collection with the root frame's calldata heap
// pre-populated with calldata, plus empty primary/aux heaps.
func NewHeaps(calldata []byte) *Heaps {
	h := &Heaps{pages: make(map[heapIndex]*Heap), next: firstAllocatable}
	cd := NewHeap()
	cd.expandMemory(uint32(len(calldata)))
	copy(cd.bytes, calldata)
	h.pages[heapCalldata] = cd
	h.pages[heapPrimary] = NewHeap()
	h.pages[heapAux] = NewHeap()
	return h
}

// Get returns the heap at id, or nil if it does not exist.
func (h *Heaps) Get(id heapIndex) *Heap { return h.pages[id] }

// Allocate creates a fresh heap page, seeds it with stipend zero bytes of
// pre-expanded capacity (the far-call stipend), and returns its id.
func (h *Heaps) Allocate(stipend uint32) heapIndex {
	id := h.next
	h.next++
	page := NewHeap()
	page.expandMemory(stipend)
	h.pages[id] = page
	return id
}

// Deallocate drops a heap page. The interpreter does not call it; pages
// stay in place after their frame exits.
func (h *Heaps) Deallocate(id heapIndex) { delete(h.pages, id) }

// PutU256 stores v (big-endian) into heap id at offset, the helper used by
// decommit to materialize a contract's code page.
func (h *Heaps) PutU256(id heapIndex, offset uint32, v []byte) {
	page := h.pages[id]
	var word [32]byte
	copy(word[32-len(v):], v)
	page.Store(offset, word)
}

// CalldataHeapID, PrimaryHeapID and AuxHeapID name the root frame's three
// fixed pages.
func CalldataHeapID() heapIndex { return heapCalldata }
func PrimaryHeapID() heapIndex  { return heapPrimary }
func AuxHeapID() heapIndex      { return heapAux }
