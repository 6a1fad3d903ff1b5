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

func TestHeapGrowthIsMonotonic(t *testing.T) {
	h := NewHeap()
	assert.Equal(t, uint32(0), h.Len())

	grown, err := h.Store(10, [32]byte{1})
	assert.NoError(t, err)
	assert.Equal(t, uint32(64), grown)
	lenAfterFirst := h.Len()

	grown, err = h.Store(5, [32]byte{2})
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), grown)
	assert.Equal(t, lenAfterFirst, h.Len())

	grown, err = h.Store(1000, [32]byte{3})
	assert.NoError(t, err)
	assert.True(t, grown > 0)
	assert.True(t, h.Len() > lenAfterFirst)
}

func TestHeapReadIsStoreInverse(t *testing.T) {
	h := NewHeap()
	var word [32]byte
	for i := range word {
		word[i] = byte(i + 1)
	}
	_, err := h.Store(64, word)
	assert.NoError(t, err)

	got, grown, err := h.Read(64)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), grown)
	assert.Equal(t, word, got)
}

func TestHeapReadPastWrittenBytesIsZero(t *testing.T) {
	h := NewHeap()
	h.expandMemory(128)
	got, _, err := h.Read(96)
	assert.NoError(t, err)
	assert.Equal(t, [32]byte{}, got)
}

func TestHeapsAllocateReturnsDistinctPages(t *testing.T) {
	hs := NewHeaps([]byte{0xAA, 0xBB})
	cd := hs.Get(CalldataHeapID())
	assert.NotNil(t, cd)
	word, _, err := cd.Read(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAA), word[0])
	assert.Equal(t, byte(0xBB), word[1])

	a := hs.Allocate(32)
	b := hs.Allocate(32)
	assert.NotEqual(t, a, b)
	assert.NotNil(t, hs.Get(a))
	assert.NotNil(t, hs.Get(b))
}

func TestHeapsDeallocateRemovesPage(t *testing.T) {
	hs := NewHeaps(nil)
	id := hs.Allocate(32)
	assert.NotNil(t, hs.Get(id))
	hs.Deallocate(id)
	assert.Nil(t, hs.Get(id))
}
