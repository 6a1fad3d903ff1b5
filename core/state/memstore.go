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

// MemStorage is a bare in-memory Storage backend, the zkevmrun CLI's
// default when no leveldb data directory is configured. It keeps a
// snapshot-by-copy undo stack rather than a write-ahead log, acceptable
// for a single in-process run.
type MemStorage struct {
	slots     map[common.StorageKey]common.Hash
	warmSlots map[common.StorageKey]bool
	code      map[common.Hash][]common.Hash
	l2l1Logs  []L2ToL1Log

	history []memStorageFrame
}

type memStorageFrame struct {
	slots     map[common.StorageKey]common.Hash
	warmSlots map[common.StorageKey]bool
}

// NewMemStorage returns an empty in-memory backend.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		slots:     make(map[common.StorageKey]common.Hash),
		warmSlots: make(map[common.StorageKey]bool),
		code:      make(map[common.Hash][]common.Hash),
	}
}

func (m *MemStorage) StorageRead(key common.StorageKey) (common.Hash, error) {
	m.warmSlots[key] = true
	return m.slots[key], nil
}

func (m *MemStorage) StorageWrite(key common.StorageKey, value common.Hash) error {
	m.warmSlots[key] = true
	m.slots[key] = value
	return nil
}

func (m *MemStorage) StorageDrop(key common.StorageKey) error {
	delete(m.slots, key)
	return nil
}

func (m *MemStorage) AddContract(hash common.Hash, codeWords []common.Hash) error {
	m.code[hash] = codeWords
	return nil
}

func (m *MemStorage) Decommit(hash common.Hash) ([]common.Hash, bool, error) {
	words, ok := m.code[hash]
	return words, ok, nil
}

func (m *MemStorage) RecordL2ToL1Log(l L2ToL1Log) error {
	m.l2l1Logs = append(m.l2l1Logs, l)
	return nil
}

// CostOfWritingStorage applies the zero-to-nonzero / nonzero-to-zero /
// update tiers common to storage-metered VMs: writing a previously-unset
// slot is the most expensive, clearing one to zero the cheapest.
func (m *MemStorage) CostOfWritingStorage(key common.StorageKey, newValue common.Hash) uint32 {
	cur := m.slots[key]
	switch {
	case cur == (common.Hash{}) && newValue == (common.Hash{}):
		return 0
	case cur == (common.Hash{}):
		return 5000
	case newValue == (common.Hash{}):
		return 800
	default:
		return 2900
	}
}

func (m *MemStorage) IsFreeStorageSlot(key common.StorageKey) bool {
	return m.warmSlots[key]
}

func (m *MemStorage) GetAllKeys() []common.StorageKey {
	keys := make([]common.StorageKey, 0, len(m.slots))
	for k := range m.slots {
		keys = append(keys, k)
	}
	return keys
}

func (m *MemStorage) Snapshot() BackendSnapshot {
	m.history = append(m.history, memStorageFrame{
		slots:     copyHashMap(m.slots),
		warmSlots: copyBoolMap(m.warmSlots),
	})
	return BackendSnapshot(len(m.history) - 1)
}

func (m *MemStorage) Rollback(to BackendSnapshot) error {
	frame := m.history[int(to)]
	m.slots = frame.slots
	m.warmSlots = frame.warmSlots
	m.history = m.history[:int(to)]
	return nil
}

func copyHashMap(in map[common.StorageKey]common.Hash) map[common.StorageKey]common.Hash {
	out := make(map[common.StorageKey]common.Hash, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyBoolMap(in map[common.StorageKey]bool) map[common.StorageKey]bool {
	out := make(map[common.StorageKey]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
