// Package bytecode defines the chunk data layout: the compiled instruction
// stream, its constant pool, and the line table used to attribute runtime
// errors back to source lines, plus a disassembler for debug/trace output.
package bytecode

import "fmt"

// Op identifies a VM instruction. Operands are always constant-pool or
// locals-slot indices, or jump offsets.
type Op byte

const (
	OpConstant Op = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpNegate
	OpNot
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpGreater
	OpLess
	OpPrint
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpJumpIfFalse
	OpJump
	OpLoop
	OpCase
	OpReturn
)

var opNames = map[Op]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpNegate:       "OP_NEGATE",
	OpNot:          "OP_NOT",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpPrint:        "OP_PRINT",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpJump:         "OP_JUMP",
	OpLoop:         "OP_LOOP",
	OpCase:         "OP_CASE",
	OpReturn:       "OP_RETURN",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}

// HasOperand reports whether op is followed by a one-byte operand in the
// instruction stream: a constant-pool index, a locals slot, or the high
// byte of a two-byte jump offset.
func (op Op) HasOperand() bool {
	switch op {
	case OpConstant, OpDefineGlobal, OpGetGlobal, OpSetGlobal, OpGetLocal, OpSetLocal:
		return true
	case OpJumpIfFalse, OpJump, OpLoop, OpCase:
		return true
	default:
		return false
	}
}

// IsJump reports whether op carries a two-byte jump offset operand rather
// than a one-byte constant/slot index.
func (op Op) IsJump() bool {
	switch op {
	case OpJumpIfFalse, OpJump, OpLoop, OpCase:
		return true
	default:
		return false
	}
}
