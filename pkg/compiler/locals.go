package compiler

import (
	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/token"
	"github.com/kristofer/blox/pkg/value"
)

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops every local whose depth exceeds the new scope depth,
// emitting one Pop per popped local.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(bytecode.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// parseVariable consumes the identifier naming a declaration, records it as
// a local (scope depth > 0) or returns its global constant-pool index
// (scope depth 0). kind is token.Var or token.Val.
func (c *Compiler) parseVariable(kind token.Type, errorMessage string) byte {
	c.consume(token.Identifier, errorMessage)

	c.declareVariable(kind)
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(kind, c.previous.Lexeme(c.source))
}

// declareVariable registers the just-consumed identifier as a new local.
// A no-op at global scope, where identifierConstant does the equivalent
// work lazily at use/definition time.
func (c *Compiler) declareVariable(kind token.Type) {
	if c.scopeDepth == 0 {
		return
	}

	name := c.previous.Lexeme(c.source)
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.errorAtPrevious("Already a variable with this name in this scope.")
		}
	}

	c.addLocal(name, kind)
}

func (c *Compiler) addLocal(name string, kind token.Type) {
	c.locals = append(c.locals, local{name: name, depth: -1, kind: kind})
}

// markInitialized flips the most recently declared local from "being
// initialized" (depth -1) to live, making it resolvable. A no-op at global
// scope, where globals are live as soon as DefineGlobal executes at
// runtime rather than at compile time.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// defineVariable emits the instruction that makes a declaration's value
// available: DefineGlobal at global scope, or (at local scope) simply marks
// the local initialized, since its value is already sitting in its slot.
func (c *Compiler) defineVariable(kind token.Type, global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(bytecode.OpDefineGlobal, global)
}

// identifierConstant returns the constant-pool index for name, creating a
// VarIdent/ValIdent entry if this is the first reference, or reusing the
// existing entry (preserving its original mutability tag) otherwise.
func (c *Compiler) identifierConstant(kind token.Type, name string) byte {
	for i, v := range c.chunk.Constants {
		if existing, ok := value.IdentName(v); ok && existing == name {
			return byte(i)
		}
	}

	var ident value.Value
	if kind == token.Val {
		ident = value.ValIdent{Name: name}
	} else {
		ident = value.VarIdent{Name: name}
	}
	return c.makeConstant(ident)
}

// resolveLocal scans the locals stack from top to bottom for name. found is
// false if name isn't a local, meaning the caller should treat it as
// global.
func (c *Compiler) resolveLocal(name string) (slot int, kind token.Type, found bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.errorAtPrevious("Can't read local variable in its own initializer.")
			}
			return i, c.locals[i].kind, true
		}
	}
	return 0, 0, false
}
