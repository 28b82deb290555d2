package asm

// TokenKind is the lexical class of a token.
type TokenKind int

//go:generate go tool stringer -linecomment -type=TokenKind
const (
	TOKEN_EOL        = TokenKind(0) // end of line
	TOKEN_IDENT      = TokenKind(1) // identifier
	TOKEN_LABEL      = TokenKind(2) // label
	TOKEN_NUMBER     = TokenKind(3) // number
	TOKEN_STRING     = TokenKind(4) // string
	TOKEN_COMMA      = TokenKind(5) // comma
	TOKEN_DIRECTIVE  = TokenKind(6) // directive
	TOKEN_EXPRESSION = TokenKind(7) // expression
)

// Token is a lexical unit of the source.
type Token struct {
	Kind   TokenKind
	Text   string  // Identifier, label name, directive, unescaped string, or expression body.
	Number float64 // Value of a TOKEN_NUMBER.
	Line   int     // Source line, counting from 1.
	Column int     // Source column, counting from 1.
}
