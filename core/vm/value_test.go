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

func TestFatPointerEncodeDecodeRoundTrip(t *testing.T) {
	cases := []FatPointer{
		{},
		{Offset: 1, Page: 2, Start: 3, Len: 4},
		{Offset: 0xFFFFFFFF, Page: 0xFFFFFFFF, Start: 0xFFFFFFFF, Len: 0xFFFFFFFF},
		{Offset: 0, Page: 7, Start: 128, Len: 64},
	}
	for _, fp := range cases {
		got := DecodeFatPointer(fp.Encode())
		assert.Equal(t, fp, got)
	}
}

func TestFatPointerNarrowPreservesByteView(t *testing.T) {
	h := NewHeap()
	h.expandMemory(256)
	for i := uint32(0); i < 256; i += 32 {
		var word [32]byte
		word[0] = byte(i)
		h.Store(i, word)
	}

	fp := FatPointer{Page: 0, Start: 64, Len: 128, Offset: 32}
	narrowed := fp.Narrow()

	original, _, err := h.Read(fp.Start + fp.Offset)
	assert.NoError(t, err)
	viaNarrow, _, err := h.Read(narrowed.Start)
	assert.NoError(t, err)
	assert.Equal(t, original, viaNarrow)
	assert.Equal(t, uint32(0), narrowed.Offset)
	assert.Equal(t, fp.Len-fp.Offset, narrowed.Len)
}

func TestNewPointerValueTagsResult(t *testing.T) {
	v := NewIntegerValue(u256FromU64(5))
	assert.False(t, v.IsPointer)

	p := NewPointerValue(u256FromU64(5))
	assert.True(t, p.IsPointer)

	p.ToInteger()
	assert.False(t, p.IsPointer)
}
