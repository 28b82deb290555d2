package asm

import (
	"strconv"
	"strings"
	"unicode"
)

// lexer is a rune scanner over the whole source text.
type lexer struct {
	source []rune
	pos    int
	line   int
	column int
	tokens []Token
}

func (lx *lexer) peek(offset int) (r rune, ok bool) {
	n := lx.pos + offset
	if n >= len(lx.source) {
		return
	}
	return lx.source[n], true
}

func (lx *lexer) next() (r rune) {
	r = lx.source[lx.pos]
	lx.pos++
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return
}

func (lx *lexer) emit(token Token) {
	lx.tokens = append(lx.tokens, token)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize splits source text into tokens. Every line, including the
// last one, is terminated by a TOKEN_EOL.
func Tokenize(source string) (tokens []Token, err error) {
	lx := &lexer{
		source: []rune(source),
		line:   1,
		column: 1,
	}

	for lx.pos < len(lx.source) {
		r, _ := lx.peek(0)
		line, column := lx.line, lx.column

		fail := func(err_kind error) error {
			return &LexError{Line: line, Column: column, Err: err_kind}
		}

		switch {
		case r == '\n':
			lx.next()
			lx.emit(Token{Kind: TOKEN_EOL, Line: line, Column: column})
		case r == ' ' || r == '\t' || r == '\r':
			lx.next()
		case r == ';':
			for lx.pos < len(lx.source) && lx.source[lx.pos] != '\n' {
				lx.next()
			}
		case r == ',':
			lx.next()
			lx.emit(Token{Kind: TOKEN_COMMA, Text: ",", Line: line, Column: column})
		case r == '"':
			var text string
			text, err = lx.scanString()
			if err != nil {
				err = fail(err)
				return
			}
			lx.emit(Token{Kind: TOKEN_STRING, Text: text, Line: line, Column: column})
		case isDigit(r):
			var number float64
			var text string
			number, text, err = lx.scanNumber()
			if err != nil {
				err = fail(err)
				return
			}
			lx.emit(Token{Kind: TOKEN_NUMBER, Text: text, Number: number, Line: line, Column: column})
		case r == '.':
			lx.next()
			next, ok := lx.peek(0)
			if !ok || !isIdentStart(next) {
				err = fail(ErrInvalidToken)
				return
			}
			text := "." + lx.scanIdent()
			lx.emit(Token{Kind: TOKEN_DIRECTIVE, Text: strings.ToLower(text), Line: line, Column: column})
		case r == '$':
			var text string
			text, err = lx.scanExpression()
			if err != nil {
				err = fail(err)
				return
			}
			lx.emit(Token{Kind: TOKEN_EXPRESSION, Text: text, Line: line, Column: column})
		case isIdentStart(r):
			text := lx.scanIdent()
			if next, ok := lx.peek(0); ok && next == ':' {
				lx.next()
				lx.emit(Token{Kind: TOKEN_LABEL, Text: text, Line: line, Column: column})
			} else {
				lx.emit(Token{Kind: TOKEN_IDENT, Text: text, Line: line, Column: column})
			}
		default:
			err = fail(ErrInvalidToken)
			return
		}
	}

	if len(lx.tokens) == 0 || lx.tokens[len(lx.tokens)-1].Kind != TOKEN_EOL {
		lx.emit(Token{Kind: TOKEN_EOL, Line: lx.line, Column: lx.column})
	}

	tokens = lx.tokens
	return
}

func (lx *lexer) scanIdent() string {
	var sb strings.Builder
	for {
		r, ok := lx.peek(0)
		if !ok || !isIdent(r) {
			break
		}
		sb.WriteRune(lx.next())
	}
	return sb.String()
}

// scanNumber scans a non-negative decimal, with an optional fraction.
func (lx *lexer) scanNumber() (number float64, text string, err error) {
	var sb strings.Builder
	for {
		r, ok := lx.peek(0)
		if !ok || !isDigit(r) {
			break
		}
		sb.WriteRune(lx.next())
	}

	if r, ok := lx.peek(0); ok && r == '.' {
		if r, ok := lx.peek(1); ok && isDigit(r) {
			sb.WriteRune(lx.next())
			for {
				r, ok := lx.peek(0)
				if !ok || !isDigit(r) {
					break
				}
				sb.WriteRune(lx.next())
			}
		}
	}

	if r, ok := lx.peek(0); ok && (isIdent(r) || r == '.') {
		err = ErrInvalidToken
		return
	}

	text = sb.String()
	number, err = strconv.ParseFloat(text, 64)
	if err != nil {
		err = ErrInvalidToken
	}
	return
}

// scanString scans a double quoted string, and returns its unescaped text.
func (lx *lexer) scanString() (text string, err error) {
	var sb strings.Builder

	lx.next()
	for {
		r, ok := lx.peek(0)
		if !ok || r == '\n' {
			err = ErrUnterminatedString
			return
		}
		lx.next()

		switch r {
		case '"':
			text = sb.String()
			return
		case '\\':
			esc, ok := lx.peek(0)
			if !ok || esc == '\n' {
				err = ErrUnterminatedString
				return
			}
			lx.next()
			switch esc {
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				err = ErrInvalidToken
				return
			}
		default:
			sb.WriteRune(r)
		}
	}
}

// scanExpression scans a $( ... ) expression, and returns its body.
func (lx *lexer) scanExpression() (text string, err error) {
	lx.next()
	if r, ok := lx.peek(0); !ok || r != '(' {
		err = ErrInvalidToken
		return
	}
	lx.next()

	var sb strings.Builder
	depth := 1
	for {
		r, ok := lx.peek(0)
		if !ok || r == '\n' {
			err = ErrInvalidToken
			return
		}
		lx.next()

		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				text = strings.TrimSpace(sb.String())
				return
			}
		}
		sb.WriteRune(r)
	}
}
