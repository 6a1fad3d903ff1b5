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

import "github.com/probeum/zkevm-core/common"

// InNearCall reports whether the innermost running context has at least
// one near-call frame on top of its root far-call frame (spec.md §4.F).
func (ex *Execution) InNearCall() bool {
	ctx := ex.CurrentContext()
	return ctx != nil && len(ctx.Frames) > 1
}

// InFarCall reports whether more than one context is currently running,
// i.e. the root context has made at least one cross-contract call.
func (ex *Execution) InFarCall() bool {
	return len(ex.Contexts) > 1
}

// PushFarCallFrame opens a new context for a cross-contract call: fresh
// primary/aux heaps, a fresh calldata page, and a fresh storage snapshot
// (spec.md §4.F push_far_call_frame). Gas must already have been debited
// from the caller by the time this is called; gasForCallee is what the
// new frame starts with.
func (ex *Execution) PushFarCallFrame(
	code []common.Hash,
	gasForCallee uint32,
	contractAddress, codeAddress, caller common.Address,
	calldata []byte,
	exceptionHandler ExceptionHandler,
	contextU128 uint64,
	isStatic bool,
) *CallFrame {
	stipend := uint32(0)
	if common.IsKernelAddress(contractAddress) {
		stipend = NewKernelFrameMemoryStipend
	}
	heapID := ex.Heaps.Allocate(stipend)
	auxHeapID := ex.Heaps.Allocate(stipend)
	calldataID := ex.Heaps.Allocate(uint32(len(calldata)))
	if cd := ex.Heaps.Get(calldataID); cd != nil && len(calldata) > 0 {
		cd.expandMemory(uint32(len(calldata)))
		copy(cd.bytes, calldata)
	}

	frame := NewFarCallFrame(
		code, gasForCallee,
		contractAddress, codeAddress, caller,
		heapID, auxHeapID, calldataID,
		exceptionHandler, contextU128,
		ex.State.Snapshot(), isStatic,
	)

	ctx := &Context{}
	ctx.Push(frame)
	ex.Contexts = append(ex.Contexts, ctx)
	return frame
}

// PushNearCallFrame opens a new frame within the current context, sharing
// its heaps and code page, taking its own storage snapshot (spec.md §4.F
// push_near_call_frame).
func (ex *Execution) PushNearCallFrame(gasForCallee uint32, exceptionHandler ExceptionHandler) *CallFrame {
	parent := ex.CurrentFrame()
	frame := NewNearCallFrame(parent, gasForCallee, exceptionHandler, ex.State.Snapshot())
	ex.CurrentContext().Push(frame)
	return frame
}

// PopFrame pops the innermost near-call frame if one is running, else
// pops the entire context (spec.md §4.F pop_frame). Returns the popped
// frame and, when a whole context was popped, the frame now exposed one
// level up (nil at the outermost exit).
func (ex *Execution) PopFrame() (popped *CallFrame, caller *CallFrame) {
	ctx := ex.CurrentContext()
	if ctx == nil {
		return nil, nil
	}
	if len(ctx.Frames) > 1 {
		popped = ctx.Pop()
		return popped, ctx.Current()
	}
	popped = ctx.Pop()
	ex.Contexts = ex.Contexts[:len(ex.Contexts)-1]
	return popped, ex.CurrentFrame()
}
