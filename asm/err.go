package asm

import (
	"errors"

	"github.com/ezrec/lpu/isa"
	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	// Lexer errors
	ErrUnterminatedString = errors.New(f("unterminated string"))
	ErrInvalidToken       = errors.New(f("invalid token"))

	// Assembler errors
	ErrDuplicateLabel   = errors.New(f("label duplicated"))
	ErrLabelRegister    = errors.New(f("label is a register name"))
	ErrUnknownLabel     = errors.New(f("label unknown"))
	ErrUnknownMnemonic  = errors.New(f("mnemonic unknown"))
	ErrUnknownDirective = errors.New(f("directive unknown"))
	ErrOperandSyntax    = errors.New(f("operand syntax"))
	ErrEquateSyntax     = errors.New(f(".equ syntax"))
	ErrEquateDuplicate  = errors.New(f(".equ duplicated"))

	ErrOperandCount    = isa.ErrOperandCount
	ErrOperandKind     = isa.ErrOperandKind
	ErrInvalidRegister = isa.ErrInvalidRegister
	ErrRegisterCount   = isa.ErrRegisterCount
	ErrAddressRange    = isa.ErrAddressRange
)

// LexError locates a tokenization error.
type LexError struct {
	Line   int
	Column int
	Err    error
}

func (err *LexError) Error() string {
	return f("%d:%d %v", err.Line, err.Column, err.Err)
}

func (err *LexError) Unwrap() error {
	return err.Err
}

// ErrSyntax locates an assembly error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrLabelMissing names a label that is referenced, but never defined.
type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

func (err ErrLabelMissing) Unwrap() error {
	return ErrUnknownLabel
}

// ErrParseExpression is a $(...) expression that does not evaluate to a number.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
