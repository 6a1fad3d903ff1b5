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

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/probeum/zkevm-core/common"
)

func u256(v uint64) *uint256.Int { return uint256.NewInt(0).SetUint64(v) }

func testKey(n byte) common.StorageKey {
	return common.StorageKey{Address: common.Address{n}, Key: common.Hash{n}}
}

func TestSetStorageGetStorageRoundTrip(t *testing.T) {
	s := New(NewMemStorage())
	key := testKey(1)
	value := common.HashFromU256(u256(42))

	assert.NoError(t, s.SetStorage(key, value))
	got, err := s.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, value, got)
}

// TestRevertToSnapshotUndoesLaterWrites is spec.md §4.G's snapshot law:
// a snapshot taken before N writes, reverted to, undoes exactly those N
// writes and nothing recorded before the snapshot.
func TestRevertToSnapshotUndoesLaterWrites(t *testing.T) {
	s := New(NewMemStorage())
	key := testKey(2)

	assert.NoError(t, s.SetStorage(key, common.HashFromU256(u256(1))))
	snap := s.Snapshot()
	assert.NoError(t, s.SetStorage(key, common.HashFromU256(u256(2))))
	assert.NoError(t, s.SetStorage(key, common.HashFromU256(u256(3))))

	s.RevertToSnapshot(snap)

	got, err := s.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, common.HashFromU256(u256(1)), got)
}

// TestNestedSnapshotsCompose checks that an inner revert leaves an outer
// snapshot's own undo range intact (spec.md §4.G "nested snapshots
// compose").
func TestNestedSnapshotsCompose(t *testing.T) {
	s := New(NewMemStorage())
	key := testKey(3)

	outer := s.Snapshot()
	assert.NoError(t, s.SetStorage(key, common.HashFromU256(u256(10))))

	inner := s.Snapshot()
	assert.NoError(t, s.SetStorage(key, common.HashFromU256(u256(20))))
	s.RevertToSnapshot(inner)

	got, err := s.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, common.HashFromU256(u256(10)), got)

	s.RevertToSnapshot(outer)
	got, err = s.GetStorage(key)
	assert.NoError(t, err)
	assert.Equal(t, common.Hash{}, got)
}

func TestRevertToSnapshotUndoesEventsAndLogs(t *testing.T) {
	s := New(NewMemStorage())
	snap := s.Snapshot()

	s.AppendEvent(EventLog{Address: common.Address{1}})
	s.AppendL2ToL1Log(L2ToL1Log{Sender: common.Address{2}})
	assert.Len(t, s.Events(), 1)
	assert.Len(t, s.L2ToL1Logs(), 1)

	s.RevertToSnapshot(snap)
	assert.Empty(t, s.Events())
	assert.Empty(t, s.L2ToL1Logs())
}

func TestTransientStorageDoesNotTouchBackend(t *testing.T) {
	backend := NewMemStorage()
	s := New(backend)
	key := testKey(4)

	s.SetTransientStorage(key, common.HashFromU256(u256(99)))
	assert.Equal(t, common.HashFromU256(u256(99)), s.GetTransientStorage(key))

	v, err := backend.StorageRead(key)
	assert.NoError(t, err)
	assert.Equal(t, common.Hash{}, v)
}
