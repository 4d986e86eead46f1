// Package compiler implements blox's single-pass compiler: a
// recursive-descent statement parser with a Pratt-style expression parser,
// emitting bytecode directly into a pkg/bytecode.Chunk with no
// intermediate AST. The parser looks exactly one token ahead
// (current/previous) and reports diagnostics to stderr as it goes,
// recovering at statement boundaries.
package compiler

import (
	"fmt"
	"io"

	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/scanner"
	"github.com/kristofer/blox/pkg/token"
	"github.com/kristofer/blox/pkg/value"
)

// local is one entry in the compiler's locals stack.
type local struct {
	name  string
	depth int // -1 until the initializer finishes (two-phase init)
	kind  token.Type
}

// Compiler parses source and emits bytecode for a single function body
// (the script itself, or one `fun` declaration). Nested function bodies
// get their own Compiler linked via enclosing; blox has no closures, so a
// nested Compiler starts with an empty locals stack rather than resolving
// names in enclosing frames.
type Compiler struct {
	scanner *scanner.Scanner
	source  string
	stderr  io.Writer

	current, previous token.Token
	hadError          bool
	panicMode         bool

	function *value.Function
	chunk    *bytecode.Chunk

	locals     []local
	scopeDepth int

	heap *value.Heap

	enclosing *Compiler
}

// Compile parses the entirety of source and returns the top-level script
// function. On a compile error, diagnostics have already been written to
// stderr and ok is false; the returned function must be discarded.
func Compile(source string, heap *value.Heap, stderr io.Writer) (fn *value.Function, ok bool) {
	c := newCompiler(source, heap, stderr, nil, "")
	c.advance()
	for !c.match(token.Eof) {
		c.declaration()
	}
	c.consume(token.Eof, "Expect end of expression.")
	return c.end()
}

func newCompiler(source string, heap *value.Heap, stderr io.Writer, enclosing *Compiler, name string) *Compiler {
	c := &Compiler{
		scanner:   scanner.New(source),
		source:    source,
		stderr:    stderr,
		heap:      heap,
		enclosing: enclosing,
		chunk:     bytecode.New(),
	}
	c.function = &value.Function{Name: name, Chunk: c.chunk}
	if enclosing != nil {
		c.current, c.previous = enclosing.current, enclosing.previous
	}
	return c
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Kind != token.Error {
			return
		}
		c.errorAtCurrent(c.current.Message)
	}
}

func (c *Compiler) check(kind token.Type) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind token.Type) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Type, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// end finalizes the current function's chunk and, for a script, reports
// whether compilation succeeded overall.
func (c *Compiler) end() (*value.Function, bool) {
	c.emitOp(bytecode.OpReturn)
	return c.function, !c.hadError
}

func (c *Compiler) emitOp(op bytecode.Op) int {
	return c.chunk.WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOpByte(op bytecode.Op, operand byte) int {
	return c.chunk.WriteOpByte(op, operand, c.previous.Line)
}

func (c *Compiler) emitJump(op bytecode.Op) int {
	return c.chunk.WriteJump(op, c.previous.Line)
}

func (c *Compiler) patchJump(offset int) {
	if err := c.chunk.PatchJump(offset); err != nil {
		c.errorAtPrevious(err.Error())
	}
}

func (c *Compiler) emitLoop(loopStart int) {
	if err := c.chunk.WriteLoop(loopStart, c.previous.Line); err != nil {
		c.errorAtPrevious(err.Error())
	}
}

// makeConstant appends v to the function's chunk and returns its pool
// index, reporting a compile error instead of overflowing silently.
func (c *Compiler) makeConstant(v value.Value) byte {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		c.errorAtPrevious(err.Error())
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(bytecode.OpConstant, c.makeConstant(v))
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAtPrevious(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := ""
	switch tok.Kind {
	case token.Eof:
		where = " at end"
	case token.Error:
		// the token's Message (passed in as message) is the diagnostic; omit location detail
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme(c.source))
	}
	fmt.Fprintf(c.stderr, "[line %d] Error%s: %s\n", tok.Line, where, message)
}
