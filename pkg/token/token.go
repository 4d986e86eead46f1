// Package token defines the lexical token kinds, the precedence levels used
// for expression parsing, and the keyword table shared by the scanner and
// compiler.
package token

import "fmt"

// Type identifies the lexical category of a Token.
type Type int

// Token kinds recognized by the scanner: punctuation, one- or two-char
// operators, literals, identifiers/keywords, then the two sentinel kinds
// (Error, Eof).
const (
	// Single-character punctuation.
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star
	Colon

	// One- or two-character operators.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	Val
	While
	Case
	Default
	Switch

	// Sentinels.
	Error
	Eof
)

var names = map[Type]string{
	LeftParen: "LEFT_PAREN", RightParen: "RIGHT_PAREN",
	LeftBrace: "LEFT_BRACE", RightBrace: "RIGHT_BRACE",
	Comma: "COMMA", Dot: "DOT", Minus: "MINUS", Plus: "PLUS",
	Semicolon: "SEMICOLON", Slash: "SLASH", Star: "STAR", Colon: "COLON",
	Bang: "BANG", BangEqual: "BANG_EQUAL",
	Equal: "EQUAL", EqualEqual: "EQUAL_EQUAL",
	Greater: "GREATER", GreaterEqual: "GREATER_EQUAL",
	Less: "LESS", LessEqual: "LESS_EQUAL",
	Identifier: "IDENTIFIER", String: "STRING", Number: "NUMBER",
	And: "AND", Class: "CLASS", Else: "ELSE", False: "FALSE",
	Fun: "FUN", For: "FOR", If: "IF", Nil: "NIL", Or: "OR",
	Print: "PRINT", Return: "RETURN", Super: "SUPER", This: "THIS",
	True: "TRUE", Var: "VAR", Val: "VAL", While: "WHILE",
	Case: "CASE", Default: "DEFAULT", Switch: "SWITCH",
	Error: "ERROR", Eof: "EOF",
}

// String renders the token kind name, e.g. "LEFT_PAREN".
func (t Type) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// Keywords maps reserved words to their token kind. The scanner's
// identifier path consults this after reading a full identifier lexeme.
var Keywords = map[string]Type{
	"and": And, "class": Class, "else": Else, "false": False,
	"fun": Fun, "for": For, "if": If, "nil": Nil, "or": Or,
	"print": Print, "return": Return, "super": Super, "this": This,
	"true": True, "var": Var, "val": Val, "while": While,
	"case": Case, "default": Default, "switch": Switch,
}

// Precedence orders binding strength for Pratt-style expression parsing,
// low to high.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment        // =
	PrecOr                // or
	PrecAnd               // and
	PrecEquality          // == !=
	PrecComparison        // < > <= >=
	PrecTerm              // + -
	PrecFactor            // * /
	PrecUnary             // ! -
	PrecCall              // . (
	PrecPrimary
)

// Token is a lexeme span into the source buffer plus its kind and line.
// Tokens own no string data themselves; Start/Length index into the
// scanner's source buffer.
type Token struct {
	Kind    Type
	Start   int
	Length  int
	Line    int
	Message string // diagnostic text, only set when Kind == Error
}

// Lexeme returns the token's source text given the original source buffer.
func (t Token) Lexeme(source string) string {
	return source[t.Start : t.Start+t.Length]
}
