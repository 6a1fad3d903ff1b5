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

// Tracer observes the interpreter loop before each instruction runs, the
// same hook go-ethereum's vm.Tracer gives
// debug/trace collaborators (spec.md §6: debug tracers are an external
// collaborator, not core-scope).
type Tracer interface {
	// BeforeExecution is called once per fetched instruction, before the
	// predicate is evaluated or the opcode dispatched. Returning an error
	// aborts the run (spec.md §6: "tracers... may return an error to
	// abort").
	BeforeExecution(ex *Execution, frame *CallFrame, in Instruction) error
}

// NopTracer implements Tracer by doing nothing; it is the zero value
// Config.Tracers needs when the caller wants no observation at all.
type NopTracer struct{}

// BeforeExecution implements Tracer.
func (NopTracer) BeforeExecution(*Execution, *CallFrame, Instruction) error { return nil }
