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

// Predicate gates whether a decoded instruction actually executes against
// the current flag triple (spec.md §3/§4.B).
type Predicate uint8

const (
	PredicateAlways Predicate = iota
	PredicateGt
	PredicateLt
	PredicateEq
	PredicateGe
	PredicateLe
	PredicateNe
	PredicateGtOrLt
)

// Holds reports whether the predicate is satisfied by the given flags.
func (p Predicate) Holds(lt, gt, eq bool) bool {
	switch p {
	case PredicateAlways:
		return true
	case PredicateGt:
		return gt
	case PredicateLt:
		return lt
	case PredicateEq:
		return eq
	case PredicateGe:
		return gt || eq
	case PredicateLe:
		return lt || eq
	case PredicateNe:
		return !eq
	case PredicateGtOrLt:
		return gt || lt
	default:
		return false
	}
}

// Variant identifies the opcode family a decoded instruction belongs to.
type Variant uint16

const (
	OpInvalid Variant = iota
	OpNop

	OpAdd
	OpSub
	OpMul
	OpDiv

	// OpAddStackPushPop through OpAddCodePage exercise Add against each of
	// the Full category's non-RegOnly addressing cases (spec.md §4.E):
	// Add's handler is addressing-agnostic, so it doubles as the carrier
	// for the stack and code-page resolver paths rather than inventing a
	// separate no-op variant per mode.
	OpAddStackPushPop
	OpAddStackOffset
	OpAddAbsoluteStack
	OpAddImm16
	OpAddCodePage

	OpAnd
	OpOr
	OpXor

	OpShl
	OpShr
	OpRol
	OpRor

	OpJump

	OpNearCall
	OpFarCall
	OpRet
	OpRevert
	OpPanic

	OpUMAHeapRead
	OpUMAHeapWrite
	OpUMAAuxHeapRead
	OpUMAAuxHeapWrite

	OpPtrAdd
	OpPtrSub
	OpPtrPack
	OpPtrShrink
	OpPtrRead

	OpContextThis
	OpContextCaller
	OpContextCodeAddress
	OpContextMeta
	OpContextErgsLeft
	OpContextSp
	OpContextGetCtxU128
	OpContextSetCtxU128
	OpContextIncrementTxNumber

	OpStorageRead
	OpStorageWrite
	OpTransientRead
	OpTransientWrite

	OpEvent
	OpL2ToL1Log

	OpDecommit
	OpPrecompileCall
)

// OperandType is the concrete, fully-resolved addressing case for a
// variant's first source/destination operand (spec.md §4.B/§4.E). Unlike
// src1/dst1 (always plain registers), src0/dst0 can address the stack or
// code page; which exact case applies is fixed per variant by the ISA's
// variant table, not decoded from the instruction word at runtime.
type OperandType uint8

const (
	// OperandRegOnly: always a plain register (the RegOnly category).
	OperandRegOnly OperandType = iota
	// OperandRegOrImmReg: RegOrImm category, resolved to a register.
	OperandRegOrImmReg
	// OperandRegOrImmImm16: RegOrImm category, resolved to imm0.
	OperandRegOrImmImm16
	// OperandFullReg: Full category, resolved to a register.
	OperandFullReg
	// OperandFullStackPushPop: Full category, SP-relative push/pop.
	OperandFullStackPushPop
	// OperandFullStackOffset: Full category, SP-relative, no SP change.
	OperandFullStackOffset
	// OperandFullAbsoluteStack: Full category, absolute stack index.
	OperandFullAbsoluteStack
	// OperandFullImm16: Full category, resolved to imm0; read-only.
	OperandFullImm16
	// OperandFullCodePage: Full category, code page word; read-only.
	OperandFullCodePage
)

// variantTable records, per Variant, the OperandType governing its src0
// operand. Unlisted variants default to OperandRegOnly.
var variantTable = map[Variant]OperandType{
	OpAdd:              OperandFullReg,
	OpAddStackPushPop:  OperandFullStackPushPop,
	OpAddStackOffset:   OperandFullStackOffset,
	OpAddAbsoluteStack: OperandFullAbsoluteStack,
	OpAddImm16:         OperandFullImm16,
	OpAddCodePage:      OperandFullCodePage,
	OpSub:              OperandFullReg,
	OpAnd:              OperandFullReg,
	OpOr:               OperandFullReg,
	OpXor:              OperandFullReg,
	OpJump:             OperandRegOrImmReg,
	OpFarCall:          OperandRegOrImmReg,
	OpPtrAdd:           OperandFullReg,
	OpPtrSub:           OperandFullReg,
	OpPtrPack:          OperandFullReg,
	OpPtrShrink:        OperandFullReg,
	OpPtrRead:          OperandFullReg,
}

// dst0OperandOverride records, per Variant, a dst0 addressing case that
// differs from its src0 one. The real ISA decodes src0_operand_type and
// dst0_operand_type as independent fields (original_source/src/opcode.rs);
// this table carries the one case that matters in practice: a variant
// whose src0 reads from an immediate or the code page still needs to
// write its result somewhere, so its dst0 falls back to a plain register
// rather than inheriting the read-only src0 case. Variants not listed
// here address the same category on both sides.
var dst0OperandOverride = map[Variant]OperandType{
	OpAddImm16:    OperandFullReg,
	OpAddCodePage: OperandFullReg,
}

// Src0OperandType reports the resolved addressing case for this variant's
// first source operand slot.
func (v Variant) Src0OperandType() OperandType {
	if t, ok := variantTable[v]; ok {
		return t
	}
	return OperandRegOnly
}

// Dst0OperandType reports the resolved addressing case for this variant's
// first destination operand slot, falling back to Src0OperandType when no
// override is registered (spec.md §4.E).
func (v Variant) Dst0OperandType() OperandType {
	if t, ok := dst0OperandOverride[v]; ok {
		return t
	}
	return v.Src0OperandType()
}

// Instruction is a fully decoded 64-bit opcode word (spec.md §4.B).
type Instruction struct {
	Variant   Variant
	Predicate Predicate
	Src0      uint8 // low nibble of the src byte
	Src1      uint8 // high nibble of the src byte
	Dst0      uint8
	Dst1      uint8
	Imm0      uint16
	Imm1      uint16

	// AltersVMFlags is the ISA's generic per-instruction modifier bit: it
	// means "set LT/GT/EQ from this op's result" for arithmetic/logic,
	// ".inc" (write the address plus 32 to dst1) for UMA ops, and
	// ".to_label" for Ret/Revert/Panic (spec.md §4.B/§9). Which meaning
	// applies is fixed by the variant, not by this field.
	AltersVMFlags bool
}

// Decode splits a raw 64-bit instruction word into its fields. Layout:
//
//	bits [0:12)  variant
//	bit  12      alters_vm_flags
//	bits [13:16) predicate
//	bits [16:24) src0 (low nibble) | src1 (high nibble)
//	bits [24:32) dst0 (low nibble) | dst1 (high nibble)
//	bits [32:48) imm0
//	bits [48:64) imm1
func Decode(raw uint64) Instruction {
	variant := Variant(raw & 0xFFF)
	alters := (raw>>12)&0x1 != 0
	predicate := Predicate((raw >> 13) & 0x7)
	srcByte := uint8((raw >> 16) & 0xFF)
	dstByte := uint8((raw >> 24) & 0xFF)
	imm0 := uint16((raw >> 32) & 0xFFFF)
	imm1 := uint16((raw >> 48) & 0xFFFF)

	return Instruction{
		Variant:       variant,
		Predicate:     predicate,
		Src0:          srcByte & 0x0F,
		Src1:          srcByte >> 4,
		Dst0:          dstByte & 0x0F,
		Dst1:          dstByte >> 4,
		Imm0:          imm0,
		Imm1:          imm1,
		AltersVMFlags: alters,
	}
}

// Encode is Decode's inverse, used by tests and by the bytecode-loading
// collaborator that assembles raw code pages.
func Encode(in Instruction) uint64 {
	srcByte := uint64(in.Src0&0x0F) | uint64(in.Src1&0x0F)<<4
	dstByte := uint64(in.Dst0&0x0F) | uint64(in.Dst1&0x0F)<<4
	var alters uint64
	if in.AltersVMFlags {
		alters = 1
	}
	return uint64(in.Variant)&0xFFF |
		alters<<12 |
		uint64(in.Predicate&0x7)<<13 |
		srcByte<<16 |
		dstByte<<24 |
		uint64(in.Imm0)<<32 |
		uint64(in.Imm1)<<48
}

// baseGasCost is the static ergs price of a variant, excluding the dynamic
// UMA/decommit/precompile surcharges applied by the interpreter and
// handlers (spec.md §4.J).
func (v Variant) baseGasCost() uint32 {
	switch v {
	case OpNop, OpInvalid:
		return 0
	case OpNearCall, OpFarCall:
		return 30
	case OpUMAHeapRead, OpUMAHeapWrite, OpUMAAuxHeapRead, OpUMAAuxHeapWrite:
		return 6
	case OpStorageRead:
		return 60
	case OpStorageWrite:
		return 60
	case OpDecommit:
		return 20
	case OpPrecompileCall:
		return 15
	default:
		return 1
	}
}

// GasCost is the static ergs price of this instruction (spec.md §4.B's
// opcode-record `gas_cost` field).
func (in Instruction) GasCost() uint32 { return in.Variant.baseGasCost() }

// IsKernelOnly reports whether the variant may only execute while the
// current contract runs in kernel mode (spec.md §4.B/§4.J).
func (v Variant) IsKernelOnly() bool {
	switch v {
	case OpContextSetCtxU128, OpContextIncrementTxNumber, OpDecommit:
		return true
	default:
		return false
	}
}

// IsStateChanging reports whether the variant is disallowed inside a
// static (non-mutating) execution context.
func (v Variant) IsStateChanging() bool {
	switch v {
	case OpStorageWrite, OpTransientWrite, OpEvent, OpL2ToL1Log:
		return true
	default:
		return false
	}
}
