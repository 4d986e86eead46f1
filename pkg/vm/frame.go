package vm

import "github.com/kristofer/blox/pkg/value"

// frameState is the state machine of a call frame: Fresh, then Executing,
// ending Completed or Faulted.
type frameState int

const (
	frameFresh frameState = iota
	frameExecuting
	frameCompleted
	frameFaulted
)

// callFrame is one activation record: the function being executed, its
// instruction pointer, and the base slot into the VM's shared value stack
// at which this frame's locals begin.
//
// blox has no call opcode (see pkg/compiler's funDeclaration doc comment),
// so exactly one callFrame is ever pushed: the top-level script, with
// slotsStart 0 and no reserved slot for the function value itself. That
// reservation matters only once a Call opcode needs somewhere to find the
// callee while setting up its frame.
type callFrame struct {
	function   *value.Function
	ip         int
	slotsStart int
	state      frameState
}
