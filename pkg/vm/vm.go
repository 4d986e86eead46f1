// Package vm implements the bytecode dispatch loop: a value stack
// partitioned by call frames, the globals table, and the opcode semantics.
// The loop is a switch over an Op byte read from the current frame's
// chunk, advancing an instruction pointer; the first dispatch failure
// aborts the run with a RuntimeError naming the source line.
package vm

import (
	"fmt"
	"io"

	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/value"
)

const (
	maxFrames = 64
	stackHint = maxFrames * 256
)

// VM executes one script's compiled chunk to completion. It is not reused
// across scripts: the REPL adapter (pkg/blox) constructs a fresh VM per
// line, each sharing the same globals table across the session.
type VM struct {
	frames []callFrame
	stack  []value.Value

	globals map[string]value.Value
	heap    *value.Heap

	stdout io.Writer

	debugTrace bool
}

// New returns a VM with an empty stack and the given globals table (pass a
// fresh map for a new session, or a prior VM's Globals() to keep state
// across REPL lines).
func New(stdout io.Writer, globals map[string]value.Value, heap *value.Heap) *VM {
	if globals == nil {
		globals = make(map[string]value.Value)
	}
	return &VM{
		stack:   make([]value.Value, 0, stackHint),
		globals: globals,
		heap:    heap,
		stdout:  stdout,
	}
}

// Globals returns the VM's globals table, for reuse by a subsequent VM in
// the same REPL session.
func (vm *VM) Globals() map[string]value.Value { return vm.globals }

// SetTrace enables or disables the per-step stack/disassembly trace (the
// CLI's -t flag).
func (vm *VM) SetTrace(enabled bool) { vm.debugTrace = enabled }

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (value.Value, error) {
	if len(vm.stack) == 0 {
		return nil, errStackUnderflow
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek(distance int) (value.Value, error) {
	idx := len(vm.stack) - 1 - distance
	if idx < 0 {
		return nil, errStackUnderflow
	}
	return vm.stack[idx], nil
}

// Run executes fn (the compiled top-level script, or a function value) to
// completion, returning a *RuntimeError on the first dispatch failure.
func (vm *VM) Run(fn *value.Function) error {
	vm.frames = append(vm.frames, callFrame{function: fn, ip: 0, slotsStart: 0, state: frameExecuting})

	for {
		f := &vm.frames[len(vm.frames)-1]
		chunk := f.function.Chunk.(*bytecode.Chunk)

		if f.ip >= len(chunk.Code) {
			f.state = frameCompleted
			return nil
		}

		if vm.debugTrace {
			vm.printTrace(chunk, f)
		}

		offset := f.ip
		op := bytecode.Op(chunk.Code[offset])
		line := chunk.LineAt(offset)

		next, err := vm.dispatch(chunk, f, op, offset)
		if err != nil {
			f.state = frameFaulted
			if re, ok := err.(*RuntimeError); ok {
				return re
			}
			return &RuntimeError{Message: err.Error(), Line: line}
		}
		f.ip = next
	}
}

// dispatch executes the single instruction at offset and returns the next
// instruction pointer.
func (vm *VM) dispatch(chunk *bytecode.Chunk, f *callFrame, op bytecode.Op, offset int) (int, error) {
	switch op {
	case bytecode.OpConstant:
		idx := chunk.Code[offset+1]
		vm.push(chunk.Constants[idx])
		return offset + 2, nil

	case bytecode.OpNil:
		vm.push(value.Nil{})
		return offset + 1, nil
	case bytecode.OpTrue:
		vm.push(value.Bool(true))
		return offset + 1, nil
	case bytecode.OpFalse:
		vm.push(value.Bool(false))
		return offset + 1, nil

	case bytecode.OpPop:
		if _, err := vm.pop(); err != nil {
			return 0, err
		}
		return offset + 1, nil

	case bytecode.OpNegate:
		v, err := vm.peek(0)
		if err != nil {
			return 0, err
		}
		n, ok := v.(value.Number)
		if !ok {
			return 0, errOperandMustBeNumber
		}
		vm.pop()
		vm.push(-n)
		return offset + 1, nil

	case bytecode.OpNot:
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		vm.push(value.Bool(value.IsFalsey(v)))
		return offset + 1, nil

	case bytecode.OpAdd:
		return offset + 1, vm.add()
	case bytecode.OpSubtract:
		return offset + 1, vm.numericBinary(func(a, b float64) float64 { return a - b })
	case bytecode.OpMultiply:
		return offset + 1, vm.numericBinary(func(a, b float64) float64 { return a * b })
	case bytecode.OpDivide:
		return offset + 1, vm.numericBinary(func(a, b float64) float64 { return a / b })

	case bytecode.OpEqual:
		b, err := vm.pop()
		if err != nil {
			return 0, err
		}
		a, err := vm.pop()
		if err != nil {
			return 0, err
		}
		eq, ok := value.Equal(a, b)
		if !ok {
			return 0, errOperandsNumStrBool
		}
		vm.push(value.Bool(eq))
		return offset + 1, nil

	case bytecode.OpGreater:
		return offset + 1, vm.comparisonBinary(func(a, b float64) bool { return a > b })
	case bytecode.OpLess:
		return offset + 1, vm.comparisonBinary(func(a, b float64) bool { return a < b })

	case bytecode.OpPrint:
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(vm.stdout, v.String())
		return offset + 1, nil

	case bytecode.OpDefineGlobal:
		idx := chunk.Code[offset+1]
		name, ok := value.IdentName(chunk.Constants[idx])
		if !ok {
			return 0, errNotValidIdentifier
		}
		v, err := vm.pop()
		if err != nil {
			return 0, err
		}
		vm.globals[name] = v
		return offset + 2, nil

	case bytecode.OpGetGlobal:
		idx := chunk.Code[offset+1]
		name, ok := value.IdentName(chunk.Constants[idx])
		if !ok {
			return 0, errNotValidIdentifier
		}
		v, exists := vm.globals[name]
		if !exists {
			return 0, errUndefinedVariable(name)
		}
		vm.push(v)
		return offset + 2, nil

	case bytecode.OpSetGlobal:
		idx := chunk.Code[offset+1]
		name, ok := value.IdentName(chunk.Constants[idx])
		if !ok {
			return 0, errNotValidIdentifier
		}
		if _, exists := vm.globals[name]; !exists {
			return 0, errUndefinedVariable(name)
		}
		top, err := vm.peek(0)
		if err != nil {
			return 0, err
		}
		vm.globals[name] = top
		return offset + 2, nil

	case bytecode.OpGetLocal:
		slot := int(chunk.Code[offset+1])
		idx := f.slotsStart + slot
		if idx < 0 || idx >= len(vm.stack) {
			return 0, errStackUnderflow
		}
		vm.push(vm.stack[idx])
		return offset + 2, nil

	case bytecode.OpSetLocal:
		slot := int(chunk.Code[offset+1])
		idx := f.slotsStart + slot
		top, err := vm.peek(0)
		if err != nil {
			return 0, err
		}
		if idx < 0 || idx >= len(vm.stack) {
			return 0, errStackUnderflow
		}
		vm.stack[idx] = top
		return offset + 2, nil

	case bytecode.OpJumpIfFalse:
		top, err := vm.peek(0)
		if err != nil {
			return 0, err
		}
		jump := readUint16(chunk, offset)
		if value.IsFalsey(top) {
			return offset + 3 + jump, nil
		}
		return offset + 3, nil

	case bytecode.OpJump:
		jump := readUint16(chunk, offset)
		return offset + 3 + jump, nil

	case bytecode.OpLoop:
		jump := readUint16(chunk, offset)
		return offset + 3 - jump, nil

	case bytecode.OpCase:
		caseExpr, err := vm.peek(0)
		if err != nil {
			return 0, err
		}
		discriminant, err := vm.peek(1)
		if err != nil {
			return 0, err
		}
		eq, ok := value.Equal(discriminant, caseExpr)
		if !ok {
			return 0, errMismatchedCaseTypes
		}
		jump := readUint16(chunk, offset)
		if !eq {
			vm.pop()
			return offset + 3 + jump, nil
		}
		return offset + 3, nil

	case bytecode.OpReturn:
		return offset + 1, nil

	default:
		return 0, fmt.Errorf("unknown opcode %v", op)
	}
}

func (vm *VM) add() error {
	b, err := vm.peek(0)
	if err != nil {
		return err
	}
	a, err := vm.peek(1)
	if err != nil {
		return err
	}

	if an, ok := a.(value.Number); ok {
		if bn, ok := b.(value.Number); ok {
			vm.pop()
			vm.pop()
			vm.push(an + bn)
			return nil
		}
	}

	if as, aIsStr := value.Text(a); aIsStr {
		if bs, bIsStr := value.Text(b); bIsStr {
			vm.pop()
			vm.pop()
			result := value.Str(as + bs)
			vm.heap.Track(result)
			vm.push(result)
			return nil
		}
	}

	return errOperandsNumbersOrStrings
}

func (vm *VM) numericBinary(f func(a, b float64) float64) error {
	b, err := vm.peek(0)
	if err != nil {
		return err
	}
	a, err := vm.peek(1)
	if err != nil {
		return err
	}
	an, aOK := a.(value.Number)
	bn, bOK := b.(value.Number)
	if !aOK || !bOK {
		return errOperandMustBeNumber
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(f(float64(an), float64(bn))))
	return nil
}

func (vm *VM) comparisonBinary(f func(a, b float64) bool) error {
	b, err := vm.peek(0)
	if err != nil {
		return err
	}
	a, err := vm.peek(1)
	if err != nil {
		return err
	}
	an, aOK := a.(value.Number)
	bn, bOK := b.(value.Number)
	if !aOK || !bOK {
		return errOperandMustBeNumber
	}
	vm.pop()
	vm.pop()
	vm.push(value.Bool(f(float64(an), float64(bn))))
	return nil
}

func readUint16(chunk *bytecode.Chunk, offset int) int {
	return int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
}
