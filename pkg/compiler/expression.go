package compiler

import (
	"strconv"

	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/token"
	"github.com/kristofer/blox/pkg/value"
)

// prefixFn and infixFn are a Pratt rule's parse actions. canAssign is true
// only when the surrounding call to parsePrecedence was made at
// PrecAssignment or lower; assignment is legal nowhere else.
type prefixFn func(c *Compiler, canAssign bool)
type infixFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     prefixFn
	infix      infixFn
	precedence token.Precedence
}

// rules is the Pratt dispatch table, keyed by token kind. Built in init to
// break the initialization cycle between the table and the parse functions
// that recurse through it.
var rules map[token.Type]rule

func init() {
	rules = map[token.Type]rule{
		token.LeftParen:    {prefix: grouping},
		token.Minus:        {prefix: unary, infix: binary, precedence: token.PrecTerm},
		token.Plus:         {infix: binary, precedence: token.PrecTerm},
		token.Slash:        {infix: binary, precedence: token.PrecFactor},
		token.Star:         {infix: binary, precedence: token.PrecFactor},
		token.Bang:         {prefix: unary},
		token.BangEqual:    {infix: binary, precedence: token.PrecEquality},
		token.EqualEqual:   {infix: binary, precedence: token.PrecEquality},
		token.Greater:      {infix: binary, precedence: token.PrecComparison},
		token.GreaterEqual: {infix: binary, precedence: token.PrecComparison},
		token.Less:         {infix: binary, precedence: token.PrecComparison},
		token.LessEqual:    {infix: binary, precedence: token.PrecComparison},
		token.Identifier:   {prefix: variable},
		token.String:       {prefix: stringLiteral},
		token.Number:       {prefix: numberLiteral},
		token.And:          {infix: and_, precedence: token.PrecAnd},
		token.Or:           {infix: or_, precedence: token.PrecOr},
		token.False:        {prefix: literal},
		token.Nil:          {prefix: literal},
		token.True:         {prefix: literal},
	}
}

func getRule(kind token.Type) rule {
	return rules[kind]
}

func (c *Compiler) expression() {
	c.parsePrecedence(token.PrecAssignment)
}

// parsePrecedence consumes one token, dispatches its prefix rule, then
// repeatedly consumes and dispatches the current token's infix rule while
// its precedence is at least p.
func (c *Compiler) parsePrecedence(p token.Precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Kind).prefix
	if prefixRule == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}

	canAssign := p <= token.PrecAssignment
	prefixRule(c, canAssign)

	for p <= getRule(c.current.Kind).precedence {
		c.advance()
		infixRule := getRule(c.previous.Kind).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func grouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func unary(c *Compiler, _ bool) {
	operatorKind := c.previous.Kind
	c.parsePrecedence(token.PrecUnary)

	switch operatorKind {
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	case token.Bang:
		c.emitOp(bytecode.OpNot)
	}
}

func binary(c *Compiler, _ bool) {
	operatorKind := c.previous.Kind
	r := getRule(operatorKind)
	c.parsePrecedence(r.precedence + 1)

	switch operatorKind {
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSubtract)
	case token.Star:
		c.emitOp(bytecode.OpMultiply)
	case token.Slash:
		c.emitOp(bytecode.OpDivide)
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual)
	case token.BangEqual:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case token.Greater:
		c.emitOp(bytecode.OpGreater)
	case token.GreaterEqual:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case token.Less:
		c.emitOp(bytecode.OpLess)
	case token.LessEqual:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	}
}

func literal(c *Compiler, _ bool) {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(bytecode.OpFalse)
	case token.True:
		c.emitOp(bytecode.OpTrue)
	case token.Nil:
		c.emitOp(bytecode.OpNil)
	}
}

func numberLiteral(c *Compiler, _ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme(c.source), 64)
	if err != nil {
		c.errorAtPrevious("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

// stringLiteral builds a SourceStr pointing into the shared source buffer
// rather than copying the literal's characters, and links it into the
// heap-object list like any other compile-time-materialized string.
func stringLiteral(c *Compiler, _ bool) {
	tok := c.previous
	s := value.SourceStr{Source: c.source, Start: tok.Start, Length: tok.Length}
	c.heap.Track(s)
	c.emitConstant(s)
}

func variable(c *Compiler, canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func and_(c *Compiler, _ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(token.PrecAnd)
	c.patchJump(endJump)
}

func or_(c *Compiler, _ bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)

	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)

	c.parsePrecedence(token.PrecOr)
	c.patchJump(endJump)
}

// namedVariable compiles a read, or (when canAssign and the next token is
// '=') a write, of the identifier in tok. Locals resolve to GetLocal/
// SetLocal; anything else is treated as global.
func (c *Compiler) namedVariable(tok token.Token, canAssign bool) {
	name := tok.Lexeme(c.source)

	var getOp, setOp bytecode.Op
	var arg byte
	var kind token.Type

	if slot, localKind, found := c.resolveLocal(name); found {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
		arg = byte(slot)
		kind = localKind
	} else {
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
		arg = c.identifierConstant(token.Var, name)
		kind = c.identifierKind(arg)
	}

	if canAssign && c.match(token.Equal) {
		if kind == token.Val {
			c.errorAtPrevious("Cannot reassign to value.")
		}
		c.expression()
		c.emitOpByte(setOp, arg)
	} else {
		c.emitOpByte(getOp, arg)
	}
}

// identifierKind reports whether the constant-pool entry at idx is a
// mutable (token.Var) or immutable (token.Val) identifier marker.
func (c *Compiler) identifierKind(idx byte) token.Type {
	if _, ok := c.chunk.Constants[idx].(value.ValIdent); ok {
		return token.Val
	}
	return token.Var
}
