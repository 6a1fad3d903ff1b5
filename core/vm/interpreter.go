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
	"encoding/binary"

	"github.com/probeum/zkevm-core/vmerrors"
)

// OutputKind classifies how a run finished (spec.md §4.J/§6).
type OutputKind uint8

const (
	OutputOk OutputKind = iota
	OutputRevert
	OutputPanic
)

func (k OutputKind) String() string {
	switch k {
	case OutputOk:
		return "Ok"
	case OutputRevert:
		return "Revert"
	default:
		return "Panic"
	}
}

// ExecutionOutput is what Run reports once the outermost frame has
// exited: the outcome and, for Ok/Revert, the return buffer (spec.md
// §4.J: "only Ok at the outermost frame yields ExecutionOutput::Ok").
type ExecutionOutput struct {
	Kind       OutputKind
	ReturnData []byte
}

// plainHandler is an opcode handler that cannot itself end the run: every
// variant except Ret/Revert/Panic.
type plainHandler func(ex *Execution, frame *CallFrame, in Instruction) error

// dispatchTable maps each decoded Variant to the handler that implements
// it (spec.md §4.I/§4.J "dispatch to the variant handler"). OpRet/
// OpRevert/OpPanic are handled separately in Run since they can produce a
// final ExecutionOutput.
var dispatchTable = map[Variant]plainHandler{
	OpNop: func(ex *Execution, frame *CallFrame, in Instruction) error { return nil },

	OpAdd:              (*Execution).opAdd,
	OpAddStackPushPop:  (*Execution).opAdd,
	OpAddStackOffset:   (*Execution).opAdd,
	OpAddAbsoluteStack: (*Execution).opAdd,
	OpAddImm16:         (*Execution).opAdd,
	OpAddCodePage:      (*Execution).opAdd,
	OpSub:              (*Execution).opSub,
	OpMul:              (*Execution).opMul,
	OpDiv:              (*Execution).opDiv,

	OpAnd: (*Execution).opAnd,
	OpOr:  (*Execution).opOr,
	OpXor: (*Execution).opXor,

	OpShl: (*Execution).opShl,
	OpShr: (*Execution).opShr,
	OpRol: (*Execution).opRol,
	OpRor: (*Execution).opRor,

	OpJump: (*Execution).opJump,

	OpUMAHeapRead:    (*Execution).opUMAHeapRead,
	OpUMAHeapWrite:   (*Execution).opUMAHeapWrite,
	OpUMAAuxHeapRead: (*Execution).opUMAAuxHeapRead,
	OpUMAAuxHeapWrite: (*Execution).opUMAAuxHeapWrite,

	OpPtrAdd:    (*Execution).opPtrAdd,
	OpPtrSub:    (*Execution).opPtrSub,
	OpPtrPack:   (*Execution).opPtrPack,
	OpPtrShrink: (*Execution).opPtrShrink,
	OpPtrRead:   (*Execution).opPtrRead,

	OpContextThis:              (*Execution).opContextThis,
	OpContextCaller:            (*Execution).opContextCaller,
	OpContextCodeAddress:       (*Execution).opContextCodeAddress,
	OpContextMeta:              (*Execution).opContextMeta,
	OpContextErgsLeft:          (*Execution).opContextErgsLeft,
	OpContextSp:                (*Execution).opContextSp,
	OpContextGetCtxU128:        (*Execution).opContextGetCtxU128,
	OpContextSetCtxU128:        (*Execution).opContextSetCtxU128,
	OpContextIncrementTxNumber: (*Execution).opContextIncrementTxNumber,

	OpStorageRead:   (*Execution).opStorageRead,
	OpStorageWrite:  (*Execution).opStorageWrite,
	OpTransientRead: (*Execution).opTransientRead,
	OpTransientWrite: (*Execution).opTransientWrite,

	OpEvent:     (*Execution).opEvent,
	OpL2ToL1Log: (*Execution).opL2ToL1Log,

	OpDecommit:       (*Execution).opDecommitOpcode,
	OpPrecompileCall: (*Execution).opPrecompileCall,

	OpNearCall: (*Execution).opNearCall,
	OpFarCall:  (*Execution).opFarCall,
}

// fetch reads and decodes the instruction at the current frame's pc,
// reporting ErrIncorrectBytecodeFormat if pc runs off the end of the
// code page (spec.md §4.J step 1). pc counts 64-bit opcode slots, while
// CodePage is indexed in 256-bit words (spec.md §3/§4.B: "pc/4 <
// code_page.len"), so pc/4 selects the word and pc%4 selects which of
// its four packed quarters to decode.
func fetch(frame *CallFrame) (Instruction, error) {
	wordIdx := frame.PC / 4
	if int(wordIdx) >= len(frame.CodePage) {
		return Instruction{}, vmerrors.ErrIncorrectBytecodeFormat
	}
	quarter := frame.PC % 4
	word := frame.CodePage[wordIdx]
	raw := binary.BigEndian.Uint64(word[quarter*8 : quarter*8+8])
	return Decode(raw), nil
}

// Run drives the fetch-decode-execute loop until the outermost frame
// exits or an unrecoverable error occurs (spec.md §4.J).
func (ex *Execution) Run() (*ExecutionOutput, error) {
	for {
		frame := ex.CurrentFrame()
		if frame == nil {
			return &ExecutionOutput{Kind: OutputOk}, nil
		}

		in, err := fetch(frame)
		if err != nil {
			if out, herr := ex.handleError(err); herr != nil || out != nil {
				return out, herr
			}
			continue
		}

		for _, t := range ex.tracers {
			if err := t.BeforeExecution(ex, frame, in); err != nil {
				return nil, err
			}
		}

		if ex.DebitGas(in.GasCost()) {
			if out, herr := ex.handleError(vmerrors.ErrOutOfGas); herr != nil || out != nil {
				return out, herr
			}
			continue
		}

		if in.Variant.IsKernelOnly() && !ex.IsKernelMode() {
			if out, herr := ex.handleError(vmerrors.ErrNotKernelMode); herr != nil || out != nil {
				return out, herr
			}
			continue
		}
		if in.Variant.IsStateChanging() && frame.IsStatic {
			if out, herr := ex.handleError(vmerrors.ErrOpcodeIsNotStatic); herr != nil || out != nil {
				return out, herr
			}
			continue
		}

		if !in.Predicate.Holds(ex.FlagLT, ex.FlagGT, ex.FlagEQ) {
			frame.PC++
			continue
		}

		switch in.Variant {
		case OpRet:
			out, err := ex.opRetOk(frame, in)
			if err != nil {
				if out, herr := ex.handleError(err); herr != nil || out != nil {
					return out, herr
				}
				continue
			}
			if out != nil {
				return out, nil
			}
			continue

		case OpRevert:
			out, err := ex.opRetRevert(frame, in)
			if err != nil {
				if out, herr := ex.handleError(err); herr != nil || out != nil {
					return out, herr
				}
				continue
			}
			if out != nil {
				return out, nil
			}
			continue

		case OpPanic:
			out, err := ex.opRetPanic(frame, in)
			if err != nil {
				if out, herr := ex.handleError(err); herr != nil || out != nil {
					return out, herr
				}
				continue
			}
			if out != nil {
				return out, nil
			}
			continue

		case OpFarCall:
			if err := ex.opFarCall(frame, in); err != nil {
				if out, herr := ex.handleError(err); herr != nil || out != nil {
					return out, herr
				}
			}
			// pc for the callee's fresh frame starts at 0; nothing further
			// to advance here (spec.md §4.J step 7: "FarCall sets pc=0").
			continue

		default:
			handler, ok := dispatchTable[in.Variant]
			if !ok {
				if out, herr := ex.handleError(vmerrors.ErrOpcodeInvalid); herr != nil || out != nil {
					return out, herr
				}
				continue
			}
			if err := handler(ex, frame, in); err != nil {
				if out, herr := ex.handleError(err); herr != nil || out != nil {
					return out, herr
				}
				continue
			}
		}

		frame.PC++
	}
}

// handleError implements spec.md §4.J step 6 / §9 "Propagation": a
// handler error becomes a Panic of the innermost frame. If that frame
// is a near call, it pops and resumes the caller at its exception
// handler; if it is a nested far call, the call reverts with empty
// return data; at the outermost frame the whole run fails.
func (ex *Execution) handleError(cause error) (*ExecutionOutput, error) {
	frame := ex.CurrentFrame()
	if frame == nil {
		return &ExecutionOutput{Kind: OutputPanic}, nil
	}

	ex.State.RevertToSnapshot(frame.StorageSnapshot)

	wasNearCall := ex.InNearCall()
	_, caller := ex.PopFrame()

	ex.FlagLT = true

	if caller == nil {
		return &ExecutionOutput{Kind: OutputPanic}, nil
	}

	MergeResidualGas(caller, frame.GasLeft, FramePanicked)

	if wasNearCall {
		caller.PC = uint32(frame.ExceptionHandler)
		return nil, nil
	}

	ex.Registers = [numRegisters]TaggedValue{}
	caller.PC++
	return nil, nil
}
