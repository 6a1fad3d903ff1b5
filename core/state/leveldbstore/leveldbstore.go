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

// Package leveldbstore is the persistent state.Storage backend: a leveldb
// key/value store fronted by a fastcache read cache, the same pairing
// go-probeum's probedb/leveldb package and its freezer use goleveldb plus
// an in-memory cache layer for hot reads.
package leveldbstore

import (
	"encoding/binary"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/state"
)

const (
	slotPrefix     = 's'
	codeInfoPrefix = 'c'
	l2l1LogPrefix  = 'l'
)

// Store is a state.Storage backed by a leveldb database, with a fastcache
// layer absorbing repeat reads of hot storage slots within a run.
type Store struct {
	mu    sync.Mutex
	db    *leveldb.DB
	cache *fastcache.Cache

	batch      *leveldb.Batch
	warmSlots  map[common.StorageKey]bool
	l2l1Seq    uint64
}

// Open opens (creating if absent) a leveldb database at dir, with a
// cacheBytes-sized fastcache in front of it. Passing an empty dir opens an
// ephemeral in-memory leveldb instance, useful for tests that still want
// to exercise the real goleveldb code path.
func Open(dir string, cacheBytes int) (*Store, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if dir == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}
	return &Store{
		db:        db,
		cache:     fastcache.New(cacheBytes),
		warmSlots: make(map[common.StorageKey]bool),
	}, nil
}

// Close releases the underlying leveldb handle.
func (s *Store) Close() error { return s.db.Close() }

func slotDBKey(key common.StorageKey) []byte {
	out := make([]byte, 1+len(key.Address)+len(key.Key))
	out[0] = slotPrefix
	n := copy(out[1:], key.Address[:])
	copy(out[1+n:], key.Key[:])
	return out
}

func codeInfoDBKey(hash common.Hash) []byte {
	out := make([]byte, 1+len(hash))
	out[0] = codeInfoPrefix
	copy(out[1:], hash[:])
	return out
}

func (s *Store) StorageRead(key common.StorageKey) (common.Hash, error) {
	dbKey := slotDBKey(key)
	if v, ok := s.cache.HasGet(nil, dbKey); ok {
		return common.BytesToHash(v), nil
	}
	v, err := s.db.Get(dbKey, nil)
	if err == leveldb.ErrNotFound {
		return common.Hash{}, nil
	}
	if err != nil {
		return common.Hash{}, err
	}
	s.cache.Set(dbKey, v)
	return common.BytesToHash(v), nil
}

func (s *Store) StorageWrite(key common.StorageKey, value common.Hash) error {
	s.mu.Lock()
	s.warmSlots[key] = true
	s.mu.Unlock()

	dbKey := slotDBKey(key)
	s.cache.Set(dbKey, value.Bytes())
	return s.db.Put(dbKey, value.Bytes(), nil)
}

func (s *Store) StorageDrop(key common.StorageKey) error {
	dbKey := slotDBKey(key)
	s.cache.Del(dbKey)
	return s.db.Delete(dbKey, nil)
}

func (s *Store) AddContract(hash common.Hash, codeWords []common.Hash) error {
	buf := make([]byte, 32*len(codeWords))
	for i, w := range codeWords {
		copy(buf[i*32:], w[:])
	}
	return s.db.Put(codeInfoDBKey(hash), buf, nil)
}

func (s *Store) Decommit(hash common.Hash) ([]common.Hash, bool, error) {
	buf, err := s.db.Get(codeInfoDBKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	words := make([]common.Hash, len(buf)/32)
	for i := range words {
		copy(words[i][:], buf[i*32:])
	}
	return words, true, nil
}

func (s *Store) RecordL2ToL1Log(l state.L2ToL1Log) error {
	s.mu.Lock()
	seq := s.l2l1Seq
	s.l2l1Seq++
	s.mu.Unlock()

	key := make([]byte, 9)
	key[0] = l2l1LogPrefix
	binary.BigEndian.PutUint64(key[1:], seq)

	val := make([]byte, 0, len(l.Sender)+len(l.Key)+len(l.Value)+1)
	val = append(val, l.Sender[:]...)
	val = append(val, l.Key[:]...)
	val = append(val, l.Value[:]...)
	if l.IsFirst {
		val = append(val, 1)
	} else {
		val = append(val, 0)
	}
	return s.db.Put(key, val, nil)
}

// CostOfWritingStorage mirrors state.MemStorage's tiered pricing; a real
// deployment would price this off the chain's fee schedule instead.
func (s *Store) CostOfWritingStorage(key common.StorageKey, newValue common.Hash) uint32 {
	cur, err := s.StorageRead(key)
	if err != nil {
		return 5000
	}
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

func (s *Store) IsFreeStorageSlot(key common.StorageKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warmSlots[key]
}

func (s *Store) GetAllKeys() []common.StorageKey {
	var keys []common.StorageKey
	iter := s.db.NewIterator(util.BytesPrefix([]byte{slotPrefix}), nil)
	defer iter.Release()
	for iter.Next() {
		k := iter.Key()
		var addr common.Address
		copy(addr[:], k[1:1+len(addr)])
		var h common.Hash
		copy(h[:], k[1+len(addr):])
		keys = append(keys, common.StorageKey{Address: addr, Key: h})
	}
	return keys
}

// Snapshot opens a fresh, empty leveldb batch. StorageWrite does not stage
// writes in it, so writes made after this call still go straight to the
// database.
func (s *Store) Snapshot() state.BackendSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = new(leveldb.Batch)
	return state.BackendSnapshot(0)
}

// Rollback discards the batch opened by Snapshot. Writes issued through
// StorageWrite go straight to the database and are not undone here.
func (s *Store) Rollback(state.BackendSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = nil
	return nil
}
