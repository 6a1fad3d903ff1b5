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
)

// ErgsPerCodeWordDecommittment is the per-word charge billed the first
// time a contract's code is decommitted this run (spec.md §4.H). A "word"
// here is one 256-bit code-page entry, matching opcode_decommit.rs's
// code.len() * 32 (four packed 64-bit raw opcodes per word, spec.md §3/§6),
// not a single 64-bit opcode.
const ErgsPerCodeWordDecommittment uint32 = 4

// DeployerSystemContractAddress is the fixed system-contract address
// whose storage map holds contract_address -> code_info entries
// (spec.md §4.H). It is a kernel address: the leading 18 bytes are zero.
var DeployerSystemContractAddress = common.BytesToAddress([]byte{0x00, 0x00, 0x80, 0x06})

const (
	codeInfoTagRegular = 1
	codeInfoTagEVM     = 2
)

// DecommitResult is what the decommit algorithm hands back to its caller
// (the far-call handler or the explicit Decommit opcode): the code words
// if decommitting succeeded, whether gas was charged, and whether the
// contract has any code at all.
type DecommitResult struct {
	CodeWords []common.Hash
	Found     bool
	Charged   bool
}

// Decommit implements spec.md §4.H: resolve contract_address's code_info
// entry in the Deployer system contract's storage map, classify it as
// regular bytecode, EVM bytecode (substituted with the configured
// EVM-interpreter hash), or not-present; and bill the per-word decommit
// charge once per contract address per run. The decommitted set and the
// code cache are keyed by contract address, so two contracts sharing a
// code hash are each billed. No heap page is allocated here;
// opDecommitOpcode copies the words into one.
func (ex *Execution) Decommit(contractAddress common.Address) (DecommitResult, error) {
	codeInfoKey := common.StorageKey{
		Address: DeployerSystemContractAddress,
		Key:     common.Hash(contractAddress.Hash32()),
	}
	codeInfo, err := ex.State.GetStorage(codeInfoKey)
	if err != nil {
		return DecommitResult{}, err
	}

	tag := codeInfo[0]
	var hash common.Hash
	switch tag {
	case codeInfoTagRegular:
		hash = codeInfo
		hash[1] = 0 // zero code_info[1] to form the code key (spec.md §4.H)
	case codeInfoTagEVM:
		hash = ex.evmInterpreterHash
	default:
		return DecommitResult{Found: false}, nil
	}

	if ex.HasDecommitted(contractAddress) {
		words, ok := ex.CachedCode(contractAddress)
		if ok {
			return DecommitResult{CodeWords: words, Found: true, Charged: false}, nil
		}
	}

	words, ok, err := ex.State.Decommit(hash)
	if err != nil {
		return DecommitResult{}, err
	}
	if !ok {
		return DecommitResult{Found: false}, nil
	}

	cost, overflow := mulU32Checked(uint32(len(words)), ErgsPerCodeWordDecommittment)
	if overflow || ex.CurrentFrame() == nil || ex.CurrentFrame().GasLeft < cost {
		// Not decommitted and no charge: the caller sees Found=false and
		// must itself raise out-of-gas if it needed the code to proceed.
		return DecommitResult{Found: false}, nil
	}
	ex.debitCurrentFrame(cost)

	ex.MarkDecommitted(contractAddress)
	ex.CacheCode(contractAddress, words)
	return DecommitResult{CodeWords: words, Found: true, Charged: true}, nil
}

func mulU32Checked(a, b uint32) (uint32, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	p := uint64(a) * uint64(b)
	if p > 0xFFFFFFFF {
		return 0, true
	}
	return uint32(p), false
}

func (ex *Execution) debitCurrentFrame(cost uint32) {
	frame := ex.CurrentFrame()
	if frame == nil {
		return
	}
	if frame.GasLeft < cost {
		frame.GasLeft = 0
		return
	}
	frame.GasLeft -= cost
}

// opDecommitOpcode implements the Decommit instruction: a dual gas path
// distinct from the per-word charge inside Decommit itself (spec.md §3
// SUPPLEMENTED FEATURES, opcode_decommit.rs). The caller-supplied
// extra_ergs_cost in src1's low 32 bits is always paid up front and
// refunded only if the contract's code was already decommitted this run;
// the result is materialized into a fresh heap page seeded with the
// kernel-frame memory stipend, and a pointer to it is stored in dst0.
func (ex *Execution) opDecommitOpcode(frame *CallFrame, in Instruction) error {
	src0, err := ex.ResolveSrc0(frame, in)
	if err != nil {
		return err
	}
	contractAddr := common.BigToAddress(&src0.Value)
	extraCost := uint32(ex.Registers[in.Src1].Value[0])

	alreadyDecommitted := ex.HasDecommitted(contractAddr)

	if ex.DebitGas(extraCost) {
		return ex.StoreDst0(frame, in, ZeroValue())
	}

	res, err := ex.Decommit(contractAddr)
	if err != nil {
		return err
	}
	if !res.Found {
		return ex.StoreDst0(frame, in, ZeroValue())
	}

	if alreadyDecommitted {
		frame.GasLeft += extraCost
	}

	page := ex.Heaps.Allocate(NewKernelFrameMemoryStipend)
	for i, word := range res.CodeWords {
		ex.Heaps.PutU256(page, uint32(i*32), word[:])
	}

	fp := FatPointer{Page: page, Len: uint32(len(res.CodeWords)) * 32}
	return ex.StoreDst0(frame, in, NewPointerValue(fp.Encode()))
}
