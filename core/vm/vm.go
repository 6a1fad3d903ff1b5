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
	"github.com/hashicorp/golang-lru"

	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/state"
)

// numRegisters is the register file width; reg0 is hard-wired to zero
// (spec.md §3).
const numRegisters = 16

// decommitCacheSize bounds the number of decoded code pages the
// interpreter keeps around across far calls within one run, avoiding a
// re-decode of a contract called repeatedly (spec.md §2 domain stack).
const decommitCacheSize = 256

// Config tunes an Execution: which tracers observe it, how large its
// decommit cache is, whether kernel-mode checks are enforced, and which
// code hashes stand in for missing or EVM code. It plays the role vm.Config plays for go-ethereum's
// EVM: a bag of knobs threaded through at construction time (spec.md §6
// process-wide inputs).
type Config struct {
	Tracers       []Tracer
	DecommitCache int
	DisableKernel bool

	// DefaultAAHash is the code hash (the default account-abstraction
	// contract) New loads when the root contract has no decommittable
	// code. Far calls do not fall back to it.
	DefaultAAHash common.Hash
	// EVMInterpreterHash replaces a code_info tag-2 (EVM bytecode) entry's
	// hash, the address of the EVM-compatibility interpreter contract.
	EVMInterpreterHash common.Hash

	// HookAddress and DebugHookEnabled configure the debug-hook
	// collaborator described in spec.md §6/§9: a heap write of the magic
	// constant at HookAddress triggers formatted output. The core only
	// stores the knob; printing is an external tracer's job.
	HookAddress     common.Hash
	DebugHookEnabled bool
}

// DebugHookMagic is the heap value that, written at Config.HookAddress,
// signals the debug-hook tracer to print formatted execution state
// (spec.md §6: "a magic constant 0x4A17...2981").
var DebugHookMagic = func() common.Hash {
	var h common.Hash
	h[0], h[1] = 0x4A, 0x17
	h[30], h[31] = 0x29, 0x81
	return h
}()

// Execution is the complete machine state for one running program: the
// register file, flags, heaps, and the context/call-frame stack
// (spec.md §3). It is the receiver every opcode handler mutates.
type Execution struct {
	Registers [numRegisters]TaggedValue

	FlagLT bool
	FlagGT bool
	FlagEQ bool

	Heaps *Heaps

	Contexts []*Context

	State *state.RollbackableState

	decommitCache *lru.Cache
	decommittedSet map[common.Address]struct{}

	tracers []Tracer

	kernelModeDisabled bool

	txNumberInBlock uint16

	defaultAAHash      common.Hash
	evmInterpreterHash common.Hash
	hookAddress        common.Hash
	debugHookEnabled   bool
}

// HookAddress reports the configured debug-hook heap slot.
func (ex *Execution) HookAddress() common.Hash { return ex.hookAddress }

// DebugHookEnabled reports whether the debug-hook collaborator is wired
// up for this run.
func (ex *Execution) DebugHookEnabled() bool { return ex.debugHookEnabled }

// New constructs an Execution ready to run a root far call into
// contractAddr with the given calldata.
func New(backend state.Storage, contractAddr common.Address, calldata []byte, initialGas uint32, cfg Config) *Execution {
	cacheSize := cfg.DecommitCache
	if cacheSize <= 0 {
		cacheSize = decommitCacheSize
	}
	cache, _ := lru.New(cacheSize)

	ex := &Execution{
		Heaps:              NewHeaps(calldata),
		State:              state.New(backend),
		decommitCache:      cache,
		decommittedSet:     make(map[common.Address]struct{}),
		tracers:            cfg.Tracers,
		kernelModeDisabled: cfg.DisableKernel,
		defaultAAHash:      cfg.DefaultAAHash,
		evmInterpreterHash: cfg.EVMInterpreterHash,
		hookAddress:        cfg.HookAddress,
		debugHookEnabled:   cfg.DebugHookEnabled,
	}

	root := &Context{}
	frame := NewRootFrame(nil, initialGas, contractAddr, PrimaryHeapID(), AuxHeapID(), CalldataHeapID(), ex.State.Snapshot())
	root.Push(frame)
	ex.Contexts = append(ex.Contexts, root)

	if res, err := ex.Decommit(contractAddr); err == nil && res.Found {
		frame.CodePage = res.CodeWords
	} else if !res.Found {
		if aaWords, ok, _ := ex.State.Decommit(ex.defaultAAHash); ok {
			frame.CodePage = aaWords
		}
	}

	return ex
}

// CurrentContext returns the innermost context, or nil if none remain.
func (ex *Execution) CurrentContext() *Context {
	if len(ex.Contexts) == 0 {
		return nil
	}
	return ex.Contexts[len(ex.Contexts)-1]
}

// CurrentFrame returns the innermost frame across the whole context
// stack, or nil if execution has fully unwound.
func (ex *Execution) CurrentFrame() *CallFrame {
	ctx := ex.CurrentContext()
	if ctx == nil {
		return nil
	}
	return ctx.Current()
}

// Flags packages the three comparison flags for Predicate evaluation.
func (ex *Execution) Flags() (lt, gt, eq bool) { return ex.FlagLT, ex.FlagGT, ex.FlagEQ }

// IsKernelMode reports whether the currently executing contract runs with
// kernel privileges (system-contract address range), unless the Config
// disabled the check entirely for a test harness.
func (ex *Execution) IsKernelMode() bool {
	if ex.kernelModeDisabled {
		return true
	}
	frame := ex.CurrentFrame()
	if frame == nil {
		return false
	}
	return common.IsKernelAddress(frame.ContractAddress)
}

// IsStatic reports whether the current frame forbids state mutation.
func (ex *Execution) IsStatic() bool {
	frame := ex.CurrentFrame()
	return frame != nil && frame.IsStatic
}

// TxNumberInBlock returns the counter IncrementTxNumber advances.
func (ex *Execution) TxNumberInBlock() uint16 { return ex.txNumberInBlock }

// IncrementTxNumber advances the per-block transaction counter
// (spec.md §3 SUPPLEMENTED FEATURES: tx_number_in_block).
func (ex *Execution) IncrementTxNumber() { ex.txNumberInBlock++ }

// HasDecommitted reports whether contract has already been decommitted
// during this run, for the decommit handler's refund-vs-charge branch
// (spec.md §4.H).
func (ex *Execution) HasDecommitted(contract common.Address) bool {
	_, ok := ex.decommittedSet[contract]
	return ok
}

// MarkDecommitted records that contract's code has now been decommitted.
func (ex *Execution) MarkDecommitted(contract common.Address) {
	ex.decommittedSet[contract] = struct{}{}
}

// CachedCode returns a previously decoded code page for contract, if the
// decommit cache still holds one.
func (ex *Execution) CachedCode(contract common.Address) ([]common.Hash, bool) {
	v, ok := ex.decommitCache.Get(contract)
	if !ok {
		return nil, false
	}
	return v.([]common.Hash), true
}

// CacheCode stores contract's decoded code page for reuse by a later call.
func (ex *Execution) CacheCode(contract common.Address, words []common.Hash) {
	ex.decommitCache.Add(contract, words)
}
