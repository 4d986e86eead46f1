// Package value implements blox's tagged runtime value and the compile-time
// identifier markers used for global variable access.
//
// Value is a closed variant set: an interface with an unexported marker
// method, implemented by one concrete type per variant.
package value

import (
	"fmt"
	"strconv"
)

// Value is any runtime or compile-time constant-pool value.
type Value interface {
	fmt.Stringer
	isValue()
}

// Number is a float64-valued number. Comparison (Less/Greater) is defined
// only on this kind.
type Number float64

func (Number) isValue() {}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Bool is a boolean value.
type Bool bool

func (Bool) isValue() {}

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Nil is the singleton nil value.
type Nil struct{}

func (Nil) isValue() {}

func (Nil) String() string { return "nil" }

// Str is an owned, heap-allocated string, produced by runtime
// concatenation. It is linked into the VM's heap-object list for
// deterministic teardown.
type Str string

func (Str) isValue() {}

func (s Str) String() string { return `"` + string(s) + `"` }

// SourceStr is a value that points into the original source buffer rather
// than owning its characters: a string literal's value, materialized
// lazily. SourceStr and Str compare and concatenate interchangeably via
// their materialized characters.
type SourceStr struct {
	Source string
	Start  int
	Length int
}

func (SourceStr) isValue() {}

// Text materializes the slice's characters.
func (s SourceStr) Text() string {
	return s.Source[s.Start : s.Start+s.Length]
}

func (s SourceStr) String() string { return `"` + s.Text() + `"` }

// VarIdent is a constant-pool marker for a mutable global's name, used at
// compile time by DefineGlobal/GetGlobal/SetGlobal. It never reaches the
// value stack as an operand to anything but those opcodes.
type VarIdent struct{ Name string }

func (VarIdent) isValue() {}

func (v VarIdent) String() string { return "<var " + v.Name + ">" }

// ValIdent is the immutable counterpart to VarIdent.
type ValIdent struct{ Name string }

func (ValIdent) isValue() {}

func (v ValIdent) String() string { return "<val " + v.Name + ">" }

// Function is a compiled function object. The top-level script is
// represented as a Function with an empty Name and zero Arity.
//
// Chunk is declared as `any` here (rather than importing pkg/bytecode) to
// avoid an import cycle: pkg/bytecode's disassembler prints constants,
// which may themselves be Functions. Callers type-assert to
// *bytecode.Chunk.
type Function struct {
	Arity int
	Chunk any
	Name  string
}

func (*Function) isValue() {}

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return "<fn " + f.Name + ">"
}

// Text returns the materialized character content of a string-kind value
// (Str or SourceStr), and ok=false for any other kind. Used by the VM for
// concatenation and string equality, which treat Str and SourceStr as
// interchangeable.
func Text(v Value) (string, bool) {
	switch t := v.(type) {
	case Str:
		return string(t), true
	case SourceStr:
		return t.Text(), true
	default:
		return "", false
	}
}

// IsFalsey reports whether v is one of the two falsey values: Nil and
// Bool(false). Everything else is truthy.
func IsFalsey(v Value) bool {
	switch t := v.(type) {
	case Nil:
		return true
	case Bool:
		return !bool(t)
	default:
		return false
	}
}

// Equal implements the VM's Equal opcode rules: numbers compare by value,
// string-kind values compare by materialized content, booleans compare by
// value. Any other pairing (including either operand being Nil or a
// Function) is not comparable and ok reports false.
func Equal(a, b Value) (equal, ok bool) {
	if as, aIsStr := Text(a); aIsStr {
		if bs, bIsStr := Text(b); bIsStr {
			return as == bs, true
		}
		return false, false
	}

	switch av := a.(type) {
	case Number:
		if bv, isNum := b.(Number); isNum {
			return av == bv, true
		}
	case Bool:
		if bv, isBool := b.(Bool); isBool {
			return av == bv, true
		}
	}

	return false, false
}

// IdentName returns the name carried by a VarIdent/ValIdent constant, and
// ok=false for any other value kind.
func IdentName(v Value) (name string, ok bool) {
	switch t := v.(type) {
	case VarIdent:
		return t.Name, true
	case ValIdent:
		return t.Name, true
	default:
		return "", false
	}
}
