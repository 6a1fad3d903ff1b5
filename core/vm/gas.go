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

// MemoryGrowthErgsPerByte is the per-byte ergs charge for heap expansion
// (spec.md §4.C/§8 scenario 4).
const MemoryGrowthErgsPerByte uint32 = 1

// NewKernelFrameMemoryStipend seeds a kernel far call's freshly allocated
// heap pages so system contracts (decommit among them) start with some
// pre-expanded working memory without paying for it word by word
// (spec.md §3 SUPPLEMENTED FEATURES).
const NewKernelFrameMemoryStipend uint32 = 1 << 10

// billMemoryGrowth charges the current frame MemoryGrowthErgsPerByte for
// every newly allocated heap byte, saturating into an out-of-gas debit
// rather than underflowing (spec.md §3 "gas_remaining is saturating").
func (ex *Execution) billMemoryGrowth(grownBytes uint32) {
	if grownBytes == 0 {
		return
	}
	cost, overflow := mulU32Checked(grownBytes, MemoryGrowthErgsPerByte)
	if overflow {
		cost = ^uint32(0)
	}
	ex.debitCurrentFrame(cost)
}

// DebitGas spends cost ergs from the current frame, saturating at zero
// and reporting whether the frame ran out (spec.md §4.J step 3, §8 gas
// saturation property).
func (ex *Execution) DebitGas(cost uint32) (outOfGas bool) {
	frame := ex.CurrentFrame()
	if frame == nil {
		return true
	}
	if frame.GasLeft < cost {
		frame.GasLeft = 0
		return true
	}
	frame.GasLeft -= cost
	return false
}
