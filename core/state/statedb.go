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

// Package state provides a rollbackable, journaled caching layer over the
// execution core's persistent storage backend (spec.md §4.G/§4.H), in the
// shape go-ethereum's StateDB provides a journaled cache over the account
// trie: every mutation is recorded so a later Revert/Panic can undo exactly
// the changes a snapshot range covers.
package state

import "github.com/probeum/zkevm-core/common"

// SnapshotID is an opaque rollback token, handed out by Snapshot and
// consumed by RevertToSnapshot (spec.md §4.G).
type SnapshotID int

// EventLog is one emitted event (the Event opcode's effect), captured
// verbatim for the caller to surface once the transaction completes.
type EventLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// L2ToL1Log is one message queued for L1 consumption (the L2->L1 log
// opcode's effect).
type L2ToL1Log struct {
	Sender  common.Address
	Key     common.Hash
	Value   common.Hash
	IsFirst bool
}

// RollbackableState is the in-memory, journaled view of everything a
// running VM can mutate and later unwind: persistent storage slots,
// transient storage slots, the event log and the L2->L1 log (spec.md
// §4.G). A Storage backend supplies the slots that were not touched this
// execution; RollbackableState caches reads and journals writes on top of
// it, exactly the layering StateDB gives go-ethereum's trie.
type RollbackableState struct {
	backend Storage

	storage          map[common.StorageKey]common.Hash
	transientStorage map[common.StorageKey]common.Hash

	events     []EventLog
	l2ToL1Logs []L2ToL1Log

	journal *journal
}

// New wraps backend in a fresh, empty RollbackableState.
func New(backend Storage) *RollbackableState {
	return &RollbackableState{
		backend:          backend,
		storage:          make(map[common.StorageKey]common.Hash),
		transientStorage: make(map[common.StorageKey]common.Hash),
		journal:          newJournal(),
	}
}

// GetStorage reads a persistent slot, consulting the journaled overlay
// before falling through to the backend.
func (s *RollbackableState) GetStorage(key common.StorageKey) (common.Hash, error) {
	if v, ok := s.storage[key]; ok {
		return v, nil
	}
	v, err := s.backend.StorageRead(key)
	if err != nil {
		return common.Hash{}, err
	}
	s.storage[key] = v
	return v, nil
}

// SetStorage journals and applies a persistent-storage write.
func (s *RollbackableState) SetStorage(key common.StorageKey, value common.Hash) error {
	prev, hadValue := s.storage[key]
	if !hadValue {
		v, err := s.backend.StorageRead(key)
		if err != nil {
			return err
		}
		prev, hadValue = v, true
	}
	s.journal.append(storageChange{key: key, hadValue: hadValue, prev: prev})
	s.storage[key] = value
	return nil
}

// GetTransientStorage reads a transient slot. Transient storage never
// touches the backend: it does not outlive the top-level transaction.
func (s *RollbackableState) GetTransientStorage(key common.StorageKey) common.Hash {
	return s.transientStorage[key]
}

// SetTransientStorage journals and applies a transient-storage write.
func (s *RollbackableState) SetTransientStorage(key common.StorageKey, value common.Hash) {
	prev, hadValue := s.transientStorage[key]
	s.journal.append(transientStorageChange{key: key, hadValue: hadValue, prev: prev})
	s.transientStorage[key] = value
}

// AppendEvent journals and records an emitted event.
func (s *RollbackableState) AppendEvent(e EventLog) {
	s.events = append(s.events, e)
	s.journal.append(eventLogAppend{})
}

// AppendL2ToL1Log journals and records a queued L2->L1 message.
func (s *RollbackableState) AppendL2ToL1Log(l L2ToL1Log) {
	s.l2ToL1Logs = append(s.l2ToL1Logs, l)
	s.journal.append(l2l1LogAppend{})
}

// Events returns every event recorded so far, in emission order.
func (s *RollbackableState) Events() []EventLog { return s.events }

// L2ToL1Logs returns every L2->L1 log recorded so far, in append order.
func (s *RollbackableState) L2ToL1Logs() []L2ToL1Log { return s.l2ToL1Logs }

// Snapshot returns a token capturing the journal's current length. A later
// RevertToSnapshot with this token undoes exactly the mutations recorded
// since this call (spec.md §4.G, the "nested snapshots compose" invariant).
func (s *RollbackableState) Snapshot() SnapshotID {
	return SnapshotID(s.journal.length())
}

// RevertToSnapshot undoes every storage/transient-storage/event/L2-to-L1-log
// mutation recorded since id was taken.
func (s *RollbackableState) RevertToSnapshot(id SnapshotID) {
	s.journal.revertTo(s, int(id))
}

// IsFreeStorageSlot reports whether reading key should be billed as a
// warm (already-paid-for) access this execution, delegating to the
// backend's notion of "free" slots (e.g. slots touched earlier in the same
// block).
func (s *RollbackableState) IsFreeStorageSlot(key common.StorageKey) bool {
	if _, ok := s.storage[key]; ok {
		return true
	}
	return s.backend.IsFreeStorageSlot(key)
}

// CostOfWritingStorage reports the gas the backend charges for overwriting
// key's persistent value with newValue; the price is the backend's alone
// and does not depend on writes made earlier in this execution (spec.md
// §4.G).
func (s *RollbackableState) CostOfWritingStorage(key common.StorageKey, newValue common.Hash) uint32 {
	return s.backend.CostOfWritingStorage(key, newValue)
}

// Decommit resolves a content-addressed code hash to its executable code
// words via the backend's decommit store (spec.md §4.H).
func (s *RollbackableState) Decommit(hash common.Hash) ([]common.Hash, bool, error) {
	return s.backend.Decommit(hash)
}

// AddContract registers codeWords under hash in the backend's decommit
// store, the counterpart collaborators use to seed deployed bytecode.
func (s *RollbackableState) AddContract(hash common.Hash, codeWords []common.Hash) error {
	return s.backend.AddContract(hash, codeWords)
}

// Backend exposes the underlying persistent Storage, for components (the
// decommit handler's cache, the CLI's final-state dump) that need to reach
// past the journaled overlay.
func (s *RollbackableState) Backend() Storage { return s.backend }
