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
	"github.com/probeum/zkevm-core/common"
	"github.com/probeum/zkevm-core/core/state"
)

// CallType distinguishes a near call, which shares its parent's heaps, code
// page and contract address, from a far call, which gets a fresh one of
// each (spec.md §4.F).
type CallType uint8

const (
	CallFar CallType = iota
	CallNear
)

// ExceptionHandler is the quarter-word PC a frame resumes at when the
// callee it invoked exits abnormally (spec.md §4.F).
type ExceptionHandler uint32

// CallFrame is one entry of the context stack: everything that is private
// to a single call, near or far (spec.md §4.F).
type CallFrame struct {
	Type CallType

	// CodePage is the owning Context's decommitted code, 256-bit-word
	// indexed (spec.md §3/§6): each entry packs four 64-bit raw opcodes.
	// A near call directly references the parent frame's code page.
	CodePage []common.Hash
	PC       uint32

	Stack *Stack

	GasLeft uint32

	ExceptionHandler ExceptionHandler
	IsStatic         bool

	// The three fat-pointer-addressed heaps this frame sees. A near call
	// inherits its parent's ids (spec.md §3 invariant); a far call gets
	// fresh primary/aux pages and the calldata page built for the call.
	HeapID        heapIndex
	AuxHeapID     heapIndex
	CalldataHeapID heapIndex

	ContractAddress common.Address
	CodeAddress     common.Address
	Caller          common.Address

	// ContextU128 is the caller-supplied side channel a far call may read
	// via Get_Ctx_U128 / overwrite via Set_Ctx_U128. Only the low 64 bits
	// are kept; higher bits of a Set_Ctx_U128 operand are dropped.
	ContextU128 uint64

	// StorageSnapshot is the rollback token taken when this frame was
	// entered, so a Revert/Panic can undo its writes (near calls take one
	// too: spec.md §3 "near-call...takes own storage snapshot").
	StorageSnapshot state.SnapshotID

	// ToLabel/Imm0 cache the destination label for the frame's own Ret/
	// Panic/Revert path is irrelevant here; kept on Instruction instead.
}

// NewRootFrame builds the single far-call frame a fresh Execution starts
// in: the outermost call into the transaction's entry contract.
func NewRootFrame(code []common.Hash, gas uint32, contract common.Address, heapID, auxHeapID, calldataHeapID heapIndex, snapshot state.SnapshotID) *CallFrame {
	return &CallFrame{
		Type:            CallFar,
		CodePage:        code,
		Stack:           NewStack(),
		GasLeft:         gas,
		HeapID:          heapID,
		AuxHeapID:       auxHeapID,
		CalldataHeapID:  calldataHeapID,
		ContractAddress: contract,
		CodeAddress:     contract,
		StorageSnapshot: snapshot,
	}
}

// NewFarCallFrame builds a fresh far-call frame per spec.md §4.F's
// push_far_call_frame: a new context, new storage snapshot, new heaps,
// and a new code page, but gas is billed against (not copied from) the
// caller by the caller before this constructor runs.
func NewFarCallFrame(
	code []common.Hash,
	gas uint32,
	contractAddress, codeAddress, caller common.Address,
	heapID, auxHeapID, calldataHeapID heapIndex,
	exceptionHandler ExceptionHandler,
	contextU128 uint64,
	snapshot state.SnapshotID,
	isStatic bool,
) *CallFrame {
	return &CallFrame{
		Type:             CallFar,
		CodePage:         code,
		Stack:            NewStack(),
		GasLeft:          gas,
		ExceptionHandler: exceptionHandler,
		IsStatic:         isStatic,
		HeapID:           heapID,
		AuxHeapID:        auxHeapID,
		CalldataHeapID:   calldataHeapID,
		ContractAddress:  contractAddress,
		CodeAddress:      codeAddress,
		Caller:           caller,
		ContextU128:      contextU128,
		StorageSnapshot:  snapshot,
	}
}

// NewNearCallFrame builds a near-call frame inheriting the enclosing
// frame's heaps, calldata id, code page and contract address, taking its
// own storage snapshot (spec.md §3 invariant, §4.F push_near_call_frame).
func NewNearCallFrame(parent *CallFrame, gas uint32, exceptionHandler ExceptionHandler, snapshot state.SnapshotID) *CallFrame {
	return &CallFrame{
		Type:             CallNear,
		CodePage:         parent.CodePage,
		Stack:            NewStack(),
		GasLeft:          gas,
		ExceptionHandler: exceptionHandler,
		IsStatic:         parent.IsStatic,
		HeapID:           parent.HeapID,
		AuxHeapID:        parent.AuxHeapID,
		CalldataHeapID:   parent.CalldataHeapID,
		ContractAddress:  parent.ContractAddress,
		CodeAddress:      parent.CodeAddress,
		Caller:           parent.Caller,
		ContextU128:      parent.ContextU128,
		StorageSnapshot:  snapshot,
	}
}

// Context groups the chain of call frames belonging to one far call and
// its descendant near calls: they all execute the same contract's code and
// share the same pair of heaps (spec.md §4.F).
type Context struct {
	Frames []*CallFrame
}

// Current returns the innermost (currently executing) frame of the context,
// or nil if the context has no frames left.
func (c *Context) Current() *CallFrame {
	if len(c.Frames) == 0 {
		return nil
	}
	return c.Frames[len(c.Frames)-1]
}

// Push adds a new frame, making it the context's current one.
func (c *Context) Push(f *CallFrame) { c.Frames = append(c.Frames, f) }

// Pop removes and returns the current frame.
func (c *Context) Pop() *CallFrame {
	if len(c.Frames) == 0 {
		return nil
	}
	f := c.Frames[len(c.Frames)-1]
	c.Frames = c.Frames[:len(c.Frames)-1]
	return f
}

// FrameExitStatus is the outcome a callee frame reports to its caller when
// it exits (spec.md §4.F/§4.I).
type FrameExitStatus uint8

const (
	FrameOk FrameExitStatus = iota
	FrameReverted
	FramePanicked
)

// MergeResidualGas folds a callee's unspent gas back into the caller per
// the frame-exit rule: Ok and Revert return unspent gas to the caller,
// Panic burns everything the callee was given (spec.md §4.F).
func MergeResidualGas(caller *CallFrame, calleeGasLeft uint32, status FrameExitStatus) {
	if status == FramePanicked {
		return
	}
	caller.GasLeft += calleeGasLeft
}
