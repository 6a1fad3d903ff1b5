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

// Package vmerrors holds the execution-core error taxonomy (spec.md §7),
// grouped the way common/error.go groups its sentinel values: one var block
// per kind, plain errors.New / fmt.Errorf, no custom error framework.
package vmerrors

import "errors"

// Context errors: no running contract.
var (
	ErrNoRunningContext = errors.New("vm: no running contract context")
)

// Operand errors.
var (
	ErrInvalidDestImm16Only  = errors.New("vm: operand: destination cannot be imm16-only")
	ErrInvalidDestCodePage   = errors.New("vm: operand: destination cannot be the code page")
	ErrInvalidSrcNotPointer  = errors.New("vm: operand: source must be a pointer")
	ErrSrcIsPointer          = errors.New("vm: operand: source must not be a pointer")
	ErrSrcOversized          = errors.New("vm: operand: source value exceeds the allowed offset")
	ErrNonZeroLow128InPtrPack = errors.New("vm: operand: low 128 bits of a pointer-packing source must be zero")
	ErrPointerOverflow       = errors.New("vm: operand: pointer arithmetic overflow")
)

// Stack errors.
var (
	ErrStackReadOutOfBounds  = errors.New("vm: stack: read out of bounds")
	ErrStackStoreOutOfBounds = errors.New("vm: stack: store out of bounds")
	ErrStackUnderflow        = errors.New("vm: stack: underflow")
)

// Heap errors.
var (
	ErrHeapReadOutOfBounds  = errors.New("vm: heap: read out of bounds")
	ErrHeapStoreOutOfBounds = errors.New("vm: heap: store out of bounds")
)

// Storage errors.
var (
	ErrStorageKeyNotPresent = errors.New("vm: storage: key not present")
	ErrStorageRead          = errors.New("vm: storage: read error")
	ErrStorageWrite         = errors.New("vm: storage: write error")
)

// Opcode errors.
var (
	ErrOpcodeUnimplemented = errors.New("vm: opcode: unimplemented")
	ErrOpcodeInvalid       = errors.New("vm: opcode: decoded as invalid")
)

// Mode errors.
var (
	ErrNotKernelMode       = errors.New("vm: mode: not in kernel mode")
	ErrOpcodeIsNotStatic   = errors.New("vm: mode: opcode is not allowed in a static context")
)

// Resource errors.
var (
	ErrOutOfGas = errors.New("vm: resource: out of gas")
)

// Decommit errors.
var (
	ErrDecommitFailed        = errors.New("vm: decommit: failed")
	ErrInvalidCalldataAccess = errors.New("vm: decommit: invalid calldata access")
)

// Format errors.
var (
	ErrIncorrectBytecodeFormat = errors.New("vm: format: incorrect bytecode format")
)
