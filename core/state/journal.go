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

import "github.com/probeum/zkevm-core/common"

// journalEntry is a single undoable mutation recorded against a
// RollbackableState (spec.md §4.G). Every storage write, transient-storage
// write, event emission and L2->L1 log append pushes one of these, the way
// go-ethereum's StateDB journals account mutations.
type journalEntry interface {
	revert(*RollbackableState)
}

// journal is the log of every entry recorded since the state was created;
// a snapshot is an index into it, and a rollback truncates it.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal { return &journal{} }

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revertTo undoes every entry recorded after snapshot, in reverse order.
func (j *journal) revertTo(s *RollbackableState, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:snapshot]
}

// length is the current snapshot id: the number of entries recorded so far.
func (j *journal) length() int { return len(j.entries) }

type storageChange struct {
	key      common.StorageKey
	hadValue bool
	prev     common.Hash
}

func (c storageChange) revert(s *RollbackableState) {
	if c.hadValue {
		s.storage[c.key] = c.prev
	} else {
		delete(s.storage, c.key)
	}
}

type transientStorageChange struct {
	key      common.StorageKey
	hadValue bool
	prev     common.Hash
}

func (c transientStorageChange) revert(s *RollbackableState) {
	if c.hadValue {
		s.transientStorage[c.key] = c.prev
	} else {
		delete(s.transientStorage, c.key)
	}
}

type eventLogAppend struct{}

func (eventLogAppend) revert(s *RollbackableState) {
	s.events = s.events[:len(s.events)-1]
}

type l2l1LogAppend struct{}

func (l2l1LogAppend) revert(s *RollbackableState) {
	s.l2ToL1Logs = s.l2ToL1Logs[:len(s.l2ToL1Logs)-1]
}
