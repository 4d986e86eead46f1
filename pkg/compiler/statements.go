package compiler

import (
	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/token"
)

// declaration compiles one declaration := varDecl | valDecl | funDecl |
// statement, synchronizing at the next statement boundary if a parse error
// occurred within it.
func (c *Compiler) declaration() {
	switch {
	case c.match(token.Var):
		c.varDeclaration(token.Var)
	case c.match(token.Val):
		c.varDeclaration(token.Val)
	case c.match(token.Fun):
		c.funDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

// synchronize clears panic mode, then skips tokens until a semicolon
// boundary or the start of a new statement keyword.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Kind != token.Eof {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.Val, token.For,
			token.If, token.While, token.Print, token.Return, token.Switch:
			return
		}
		c.advance()
	}
}

// varDeclaration compiles `var IDENT ('=' expression)? ';'` or the `val`
// equivalent. kind is token.Var or token.Val and tags the binding's
// mutability.
func (c *Compiler) varDeclaration(kind token.Type) {
	global := c.parseVariable(kind, "Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(kind, global)
}

// funDeclaration compiles `fun IDENT '(' params? ')' '{' declaration* '}'`.
// The body compiles into its own Chunk via a nested Compiler; with no
// closures, a nested body resolves only its own parameters and locals,
// never the enclosing scope. The resulting Function value is bound like
// any other declaration.
//
// blox has no call expression, so a declared function can be stored,
// passed around and printed, but never invoked.
func (c *Compiler) funDeclaration() {
	global := c.parseVariable(token.Val, "Expect function name.")
	c.markInitialized()
	c.compileFunctionBody(c.previous.Lexeme(c.source))
	c.defineVariable(token.Val, global)
}

// compileFunctionBody parses one function body (params + block) with a
// fresh nested Compiler and emits the resulting Function as a constant on
// the enclosing compiler's chunk.
func (c *Compiler) compileFunctionBody(name string) {
	sub := newCompiler(c.source, c.heap, c.stderr, c, name)
	sub.scanner = c.scanner // share scan position: single source buffer, single token stream
	sub.current, sub.previous = c.current, c.previous

	sub.beginScope()
	sub.consume(token.LeftParen, "Expect '(' after function name.")
	if !sub.check(token.RightParen) {
		for {
			sub.function.Arity++
			if sub.function.Arity > 255 {
				sub.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := sub.parseVariable(token.Var, "Expect parameter name.")
			sub.defineVariable(token.Var, paramConst)
			if !sub.match(token.Comma) {
				break
			}
		}
	}
	sub.consume(token.RightParen, "Expect ')' after parameters.")
	sub.consume(token.LeftBrace, "Expect '{' before function body.")
	sub.block()

	fn, ok := sub.end()
	if !ok {
		c.hadError = true
	}

	// Pull the shared scanner/token state back onto the enclosing
	// compiler so it can keep parsing right after the function body.
	c.current, c.previous = sub.current, sub.previous

	c.emitConstant(fn)
}

// statement compiles one of the non-declaration statement forms.
func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.Switch):
		c.switchStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(bytecode.OpPop)
}

// block compiles `declaration*` up to (not including) the closing '}'.
func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.Eof) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk.Code)
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
}

// forStatement desugars `for (init; cond; incr) body` into the equivalent
// while-loop bytecode shape.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration(token.Var)
	case c.match(token.Val):
		c.varDeclaration(token.Val)
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk.Code)
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
	}

	if !c.check(token.RightParen) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrStart := len(c.chunk.Code)
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RightParen, "Expect ')' after for clauses.")
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop)
	}

	c.endScope()
}

// switchStatement compiles `switch (expr) { case E: decls... }* default?`.
// The Case opcode carries the protocol: on mismatch it pops the case
// expression and jumps to the next case; on match it leaves both the case
// expression and the discriminant on the stack for the compiler-emitted
// Pop,Pop that precedes the matched body.
func (c *Compiler) switchStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'switch'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after switch expression.")
	c.consume(token.LeftBrace, "Expect '{' before switch body.")

	var endJumps []int

	for c.match(token.Case) {
		c.expression()
		c.consume(token.Colon, "Expect ':' after case value.")

		caseJump := c.emitJump(bytecode.OpCase)
		c.emitOp(bytecode.OpPop) // case expression
		c.emitOp(bytecode.OpPop) // discriminant
		// Each body is its own scope: only the matched branch's bytecode
		// runs, so its locals must be popped before the jump to the end,
		// not left for the enclosing scope to account for.
		c.beginScope()
		for !c.check(token.Case) && !c.check(token.Default) && !c.check(token.RightBrace) && !c.check(token.Eof) {
			c.declaration()
		}
		c.endScope()
		endJumps = append(endJumps, c.emitJump(bytecode.OpJump))
		c.patchJump(caseJump)
	}

	if c.match(token.Default) {
		c.consume(token.Colon, "Expect ':' after 'default'.")
		c.emitOp(bytecode.OpPop) // discriminant
		c.beginScope()
		for !c.check(token.RightBrace) && !c.check(token.Eof) {
			c.declaration()
		}
		c.endScope()
	} else {
		c.emitOp(bytecode.OpPop) // no case matched: discriminant still pending
	}

	c.consume(token.RightBrace, "Expect '}' after switch body.")

	for _, j := range endJumps {
		c.patchJump(j)
	}
}
