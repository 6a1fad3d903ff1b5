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

// BackendSnapshot is an opaque rollback token issued by a Storage backend.
// It is unrelated to RollbackableState's in-memory SnapshotID: this one
// covers whatever durability layer the backend itself keeps (e.g. a
// leveldb write batch that hasn't been committed yet).
type BackendSnapshot int

// Storage is the persistence contract a RollbackableState overlays
// (spec.md §6): a key/value store for storage slots plus the decommit
// table, with its own coarse rollback primitive for the durability layer
// beneath the per-opcode journal.
type Storage interface {
	// StorageRead returns the persisted value at key, the zero Hash if
	// the slot has never been written.
	StorageRead(key common.StorageKey) (common.Hash, error)

	// StorageWrite persists value at key.
	StorageWrite(key common.StorageKey, value common.Hash) error

	// StorageDrop removes key from persistent storage entirely (distinct
	// from writing the zero value, for backends that bill refunds on
	// slot deletion).
	StorageDrop(key common.StorageKey) error

	// AddContract registers codeWords in the content-addressed decommit
	// store under hash, so later Decommit calls for hash resolve to it
	// (spec.md §6: add_contract(hash, code)). Each entry is one 256-bit
	// code-page word, four packed 64-bit raw opcodes (spec.md §3/§6).
	AddContract(hash common.Hash, codeWords []common.Hash) error

	// Decommit resolves a contract-code hash to its code words
	// (spec.md §4.H/§6: decommit(hash) -> Option<Vec<u256>>). ok is false
	// if hash has never been registered via AddContract.
	Decommit(hash common.Hash) (codeWords []common.Hash, ok bool, err error)

	// RecordL2ToL1Log durably appends l so it survives past the
	// in-memory RollbackableState that produced it.
	RecordL2ToL1Log(l L2ToL1Log) error

	// CostOfWritingStorage reports the ergs cost of overwriting key's
	// current persisted value with newValue (new-slot vs. update vs.
	// no-op pricing).
	CostOfWritingStorage(key common.StorageKey, newValue common.Hash) uint32

	// IsFreeStorageSlot reports whether key has already been paid for
	// this block, per the backend's warm-slot bookkeeping.
	IsFreeStorageSlot(key common.StorageKey) bool

	// GetAllKeys returns every storage key the backend currently holds a
	// value for, for tracers and the final-state dump.
	GetAllKeys() []common.StorageKey

	// Snapshot and Rollback give the backend's own durability layer a
	// coarse undo point, independent of RollbackableState's journal.
	Snapshot() BackendSnapshot
	Rollback(to BackendSnapshot) error
}
