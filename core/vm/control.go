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
	"github.com/probeum/zkevm-core/vmerrors"
)

// opJump implements Jump: pc := (src0 & 2^64-1) - 1, the -1 accounting
// for the interpreter's unconditional post-step increment (spec.md §4.I).
func (ex *Execution) opJump(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	target := src0.Value[0]
	frame.PC = uint32(target) - 1
	return nil
}

// splitGas implements the near/far-call gas-split rule (spec.md §4.I):
// ergsPassed==0 means "give the callee everything, caller keeps nothing";
// otherwise the callee gets min(ergsPassed, callerGas), caller keeps the
// rest.
func splitGas(callerGas, ergsPassed uint32) (calleeGas, callerRemaining uint32) {
	if ergsPassed == 0 {
		return callerGas, 0
	}
	if ergsPassed > callerGas {
		ergsPassed = callerGas
	}
	return ergsPassed, callerGas - ergsPassed
}

// opNearCall implements Near-call: reads ergs-passed from src0's low 32
// bits, splits gas per splitGas, clears all flags, and pushes a new frame
// within the current context (spec.md §4.I).
func (ex *Execution) opNearCall(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	ergsPassed := uint32(src0.Value[0])
	calleeGas, callerGas := splitGas(frame.GasLeft, ergsPassed)
	frame.GasLeft = callerGas

	ex.FlagLT, ex.FlagGT, ex.FlagEQ = false, false, false

	callee := ex.PushNearCallFrame(calleeGas, ExceptionHandler(in.Imm0))
	callee.PC = uint32(in.Imm1)
	return nil
}

// opFarCall implements Far-call: decommits the target's code, splits
// gas, and opens a fresh context with its own snapshot and heaps
// (spec.md §4.I). calldata is read from the fat pointer in the src0
// operand.
func (ex *Execution) opFarCall(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	if !src0.IsPointer {
		return vmerrors.ErrInvalidSrcNotPointer
	}
	targetAddrValue := ex.Registers[in.Dst0]
	targetAddr := common.BytesToAddress(targetAddrValue.Value.Bytes32()[12:])

	fp := DecodeFatPointer(&src0.Value)
	heap := ex.Heaps.Get(fp.Page)
	var calldata []byte
	if heap != nil {
		calldata = make([]byte, fp.Len)
		for i := uint32(0); i < fp.Len; i += 32 {
			word, _, err := heap.Read(fp.Start + fp.Offset + i)
			if err != nil {
				break
			}
			copy(calldata[i:], word[:])
		}
	}

	res, err := ex.Decommit(targetAddr)
	if err != nil {
		return err
	}
	if !res.Found {
		return ex.panicFromFarCall(frame)
	}

	ergsPassed := uint32(ex.Registers[2].Value[0])
	calleeGas, callerGas := splitGas(frame.GasLeft, ergsPassed)
	frame.GasLeft = callerGas

	isStatic := frame.IsStatic
	ex.PushFarCallFrame(
		res.CodeWords, calleeGas,
		targetAddr, targetAddr, frame.ContractAddress,
		calldata,
		ExceptionHandler(in.Imm0),
		0,
		isStatic,
	)
	ex.Registers = [numRegisters]TaggedValue{}
	return nil
}

// panicFromFarCall implements ret.rs's panic_from_far_call: a far call
// whose target decommit/dispatch step fails jumps straight to the
// caller's exception handler without pushing a frame (spec.md §3
// SUPPLEMENTED FEATURES).
func (ex *Execution) panicFromFarCall(frame *CallFrame) error {
	ex.FlagLT = true
	// No post-step pc increment applies on this path (Run's OpFarCall case
	// continues without it), so the target is exception_handler itself,
	// not exception_handler-1 (spec.md §9 ambiguity note).
	frame.PC = uint32(frame.ExceptionHandler)
	return nil
}

// exitFrame implements the shared tail of Ret.Ok/Ret.Revert/Ret.Panic
// (spec.md §4.F): merge residual gas, roll back state on a non-Ok exit,
// and compute the caller's resuming PC.
func (ex *Execution) exitFrame(in Instruction, status FrameExitStatus) (*ExecutionOutput, error) {
	frame := ex.CurrentFrame()
	if frame == nil {
		return nil, vmerrors.ErrNoRunningContext
	}

	var returnData []byte
	if status != FramePanicked {
		returnData = ex.readReturnPointer(frame)
	}

	if status != FrameOk {
		ex.State.RevertToSnapshot(frame.StorageSnapshot)
	}

	wasNearCall := ex.InNearCall()
	popped, caller := ex.PopFrame()
	_ = popped

	if caller == nil {
		// Outermost frame exiting: report the final ExecutionOutput.
		switch status {
		case FrameOk:
			return &ExecutionOutput{Kind: OutputOk, ReturnData: returnData}, nil
		case FrameReverted:
			return &ExecutionOutput{Kind: OutputRevert, ReturnData: returnData}, nil
		default:
			return &ExecutionOutput{Kind: OutputPanic}, nil
		}
	}

	MergeResidualGas(caller, frame.GasLeft, status)

	if wasNearCall {
		switch status {
		case FrameOk:
			ex.promoteTransientStorage()
			if in.AltersVMFlags {
				caller.PC = uint32(in.Imm0) - 1
			} else {
				caller.PC = caller.PC + 1
			}
			ex.FlagLT, ex.FlagGT, ex.FlagEQ = false, false, false
		case FrameReverted:
			if in.AltersVMFlags {
				caller.PC = uint32(in.Imm0) - 1
			} else {
				// No post-step pc increment applies on this path (Run's
				// OpRevert/OpPanic cases continue without one), so the
				// non-label target is exception_handler itself (spec.md
				// §9 ambiguity note's "or exception_handler when the
				// post-step increment does not apply").
				caller.PC = uint32(frame.ExceptionHandler)
			}
			ex.FlagLT, ex.FlagGT, ex.FlagEQ = false, false, false
		default: // FramePanicked
			if in.AltersVMFlags {
				caller.PC = uint32(in.Imm0) - 1
			} else {
				caller.PC = uint32(frame.ExceptionHandler)
			}
			ex.FlagLT = true
		}
		return nil, nil
	}

	// Far-call exit: place the result pointer in reg1, clear the rest of
	// the register file, and clear context_u128 (spec.md §4.F).
	ex.Registers = [numRegisters]TaggedValue{}
	if status != FramePanicked {
		ex.Registers[1] = ex.returnPointerValue(returnData)
	}
	if status == FramePanicked {
		ex.FlagLT = true
	} else {
		ex.FlagLT, ex.FlagGT, ex.FlagEQ = false, false, false
	}
	caller.PC++
	return nil, nil
}

// readReturnPointer reads the fat pointer in register 1 and clamps it to
// its page's actual length, the shape Ret.Ok's outermost return uses
// (spec.md §4.I).
func (ex *Execution) readReturnPointer(frame *CallFrame) []byte {
	reg1 := ex.Registers[1]
	if !reg1.IsPointer {
		return nil
	}
	fp := DecodeFatPointer(&reg1.Value)
	heap := ex.Heaps.Get(fp.Page)
	if heap == nil {
		return nil
	}
	length := fp.Len
	if fp.Start+length > heap.Len() {
		if heap.Len() < fp.Start {
			return nil
		}
		length = heap.Len() - fp.Start
	}
	out := make([]byte, 0, length)
	for i := uint32(0); i < length; i += 32 {
		word, _, err := heap.Read(fp.Start + i)
		if err != nil {
			break
		}
		n := length - i
		if n > 32 {
			n = 32
		}
		out = append(out, word[:n]...)
	}
	return out
}

// returnPointerValue re-wraps returnData as a fat pointer into a fresh
// heap page, the value a far-call caller sees in reg1 on Ok/Revert.
func (ex *Execution) returnPointerValue(returnData []byte) TaggedValue {
	id := ex.Heaps.Allocate(uint32(len(returnData)))
	heap := ex.Heaps.Get(id)
	for i := 0; i < len(returnData); i += 32 {
		var word [32]byte
		copy(word[:], returnData[i:])
		heap.Store(uint32(i), word)
	}
	fp := FatPointer{Page: id, Len: uint32(len(returnData))}
	return NewPointerValue(fp.Encode())
}

// promoteTransientStorage copies a successfully-returning near-call
// frame's transient-storage writes into the parent's view (ret.rs's
// save_transient_store; spec.md §3 SUPPLEMENTED FEATURES). Because
// transient storage already lives in the shared RollbackableState (one
// map per Execution, not per frame), a successful Ok needs no copy: the
// writes are already visible to the caller. This is the no-op half of
// that promotion; Revert/Panic's snapshot rollback is what makes the
// discard half observable.
func (ex *Execution) promoteTransientStorage() {}

// opRetOk/opRetRevert/opRetPanic are the three Ret variants (spec.md
// §4.F/§4.I). They return a non-nil *ExecutionOutput only when the
// outermost frame has just exited.
func (ex *Execution) opRetOk(frame *CallFrame, in Instruction) (*ExecutionOutput, error) {
	return ex.exitFrame(in, FrameOk)
}

func (ex *Execution) opRetRevert(frame *CallFrame, in Instruction) (*ExecutionOutput, error) {
	return ex.exitFrame(in, FrameReverted)
}

func (ex *Execution) opRetPanic(frame *CallFrame, in Instruction) (*ExecutionOutput, error) {
	return ex.exitFrame(in, FramePanicked)
}
