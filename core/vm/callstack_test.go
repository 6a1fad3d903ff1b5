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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/probeum/zkevm-core/common"
)

func TestNearCallPushPopLifecycle(t *testing.T) {
	ex := newTestExecution()
	root := ex.CurrentFrame()
	root.GasLeft = 1000

	assert.False(t, ex.InNearCall())

	callee := ex.PushNearCallFrame(400, ExceptionHandler(10))
	assert.True(t, ex.InNearCall())
	assert.Equal(t, uint32(400), callee.GasLeft)
	assert.Same(t, callee, ex.CurrentFrame())

	popped, caller := ex.PopFrame()
	assert.Same(t, callee, popped)
	assert.Same(t, root, caller)
	assert.False(t, ex.InNearCall())
}

func TestFarCallPushPopOpensFreshContext(t *testing.T) {
	ex := newTestExecution()
	root := ex.CurrentFrame()

	assert.False(t, ex.InFarCall())

	callee := ex.PushFarCallFrame(
		[]common.Hash{{1}, {2}, {3}}, 500,
		common.Address{1}, common.Address{1}, common.Address{},
		[]byte("hi"),
		ExceptionHandler(3), 0, false,
	)
	assert.True(t, ex.InFarCall())
	assert.Same(t, callee, ex.CurrentFrame())
	assert.NotEqual(t, root.HeapID, callee.HeapID)

	popped, caller := ex.PopFrame()
	assert.Same(t, callee, popped)
	assert.Same(t, root, caller)
	assert.False(t, ex.InFarCall())
}

func TestPopFrameAtOutermostReturnsNilCaller(t *testing.T) {
	ex := newTestExecution()
	_, caller := ex.PopFrame()
	assert.Nil(t, caller)
	assert.Nil(t, ex.CurrentFrame())
}

func TestMergeResidualGasBurnsOnPanic(t *testing.T) {
	caller := &CallFrame{GasLeft: 100}
	MergeResidualGas(caller, 50, FramePanicked)
	assert.Equal(t, uint32(100), caller.GasLeft)

	MergeResidualGas(caller, 50, FrameOk)
	assert.Equal(t, uint32(150), caller.GasLeft)

	MergeResidualGas(caller, 25, FrameReverted)
	assert.Equal(t, uint32(175), caller.GasLeft)
}
