// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"errors"
	"io"
	"log"
	"maps"
	"math"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/lpu/internal"
	"github.com/ezrec/lpu/isa"
)

// statement is a single instruction, after pass 1.
type statement struct {
	LineNo   int
	Opcode   isa.Opcode
	Operands [][]Token // Operand token groups, comma separated.
}

// Assembler is a two pass assembler for LPU source text.
type Assembler struct {
	Verbose   bool   // If set, verbosely logs the assembler actions.
	Registers int    // Register file size, 8 or 32. Zero selects isa.DEFAULT_REGISTERS.
	Source    string // Source name recorded in the program symbols.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to instruction addresses.
	Equate    map[string]Token  // Map of equates.
	constants map[isa.Value]int // Constant pool interning.
	program   *isa.Program      // Program under construction.
	lines     []string          // Source lines, for error reports.
	stmts     []statement       // Pass 1 output.
}

// Predefine defines a new equate or redefines an existing equate, as if
// '.equ NAME VALUE' was at the top of the source.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// registerOf parses a register name, X followed by digits, case
// insensitive. Numbers too large to be any register yield n = -1.
func registerOf(word string) (n int, ok bool) {
	if len(word) < 2 || (word[0] != 'X' && word[0] != 'x') {
		return
	}

	for _, r := range word[1:] {
		if !isDigit(r) {
			return
		}
	}

	n, err := strconv.Atoi(word[1:])
	if err != nil {
		n = -1
	}

	ok = true
	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string, lineno int) (value float64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, token := range asm.Equate {
		if token.Kind != TOKEN_NUMBER {
			// Ignore non-numeric equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlarkNumber(token.Number)
	}
	pred["LINENO"] = starlark.MakeInt(lineno)

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}

	switch st_rc := dict["rc"].(type) {
	case starlark.Int:
		st_int64, ok := st_rc.Int64()
		if !ok {
			err = ErrParseExpression(expr)
			return
		}
		value = float64(st_int64)
	case starlark.Float:
		value = float64(st_rc)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			err = ErrParseExpression(expr)
			return
		}
	default:
		err = ErrParseExpression(expr)
	}

	return
}

func starlarkNumber(number float64) starlark.Value {
	if number == math.Trunc(number) && math.Abs(number) < (1<<53) {
		return starlark.MakeInt64(int64(number))
	}
	return starlark.Float(number)
}

// expand replaces equates and evaluates expressions in a token group.
func (asm *Assembler) expand(tokens []Token, lineno int) (out []Token, err error) {
	out = make([]Token, 0, len(tokens))
	for _, token := range tokens {
		switch token.Kind {
		case TOKEN_IDENT:
			equate, ok := asm.Equate[token.Text]
			if ok {
				equate.Line = token.Line
				equate.Column = token.Column
				token = equate
			}
		case TOKEN_EXPRESSION:
			var value float64
			value, err = asm.parenEval(token.Text, lineno)
			if err != nil {
				return
			}
			token = Token{
				Kind:   TOKEN_NUMBER,
				Text:   isa.Number(value).String(),
				Number: value,
				Line:   token.Line,
				Column: token.Column,
			}
		}
		out = append(out, token)
	}

	return
}

// defineEquate handles '.equ NAME VALUE'.
func (asm *Assembler) defineEquate(words []Token, lineno int) (err error) {
	if len(words) != 3 || words[1].Kind != TOKEN_IDENT {
		return ErrEquateSyntax
	}

	name := words[1].Text
	_, ok := asm.Equate[name]
	if ok {
		return ErrEquateDuplicate
	}

	value, err := asm.expand(words[2:], lineno)
	if err != nil {
		return
	}

	switch value[0].Kind {
	case TOKEN_IDENT, TOKEN_NUMBER, TOKEN_STRING:
		asm.Equate[name] = value[0]
	default:
		return ErrEquateSyntax
	}

	return
}

// parseLine handles pass 1 of a single source line.
func (asm *Assembler) parseLine(words []Token, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	if asm.Verbose {
		log.Printf("%v: %v\n", lineno, asm.lines[lineno-1])
	}

	for len(words) > 0 && words[0].Kind == TOKEN_LABEL {
		label := words[0].Text
		if _, is_reg := registerOf(label); is_reg {
			return ErrLabelRegister
		}
		_, ok := asm.Label[label]
		if ok {
			return ErrDuplicateLabel
		}
		asm.Label[label] = len(asm.stmts)
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	switch words[0].Kind {
	case TOKEN_DIRECTIVE:
		switch words[0].Text {
		case ".equ":
			return asm.defineEquate(words, lineno)
		}
		return ErrUnknownDirective
	case TOKEN_IDENT:
	default:
		return ErrInvalidToken
	}

	op, ok := isa.Lookup(words[0].Text)
	if !ok {
		return ErrUnknownMnemonic
	}

	stmt := statement{LineNo: lineno, Opcode: op}

	args := words[1:]
	if len(args) > 0 {
		var group []Token
		for _, token := range args {
			if token.Kind == TOKEN_COMMA {
				if len(group) == 0 {
					return ErrOperandSyntax
				}
				stmt.Operands = append(stmt.Operands, group)
				group = nil
				continue
			}
			group = append(group, token)
		}
		if len(group) == 0 {
			return ErrOperandSyntax
		}
		stmt.Operands = append(stmt.Operands, group)
	}

	asm.stmts = append(asm.stmts, stmt)
	return
}

// intern returns the constant pool index of a literal.
func (asm *Assembler) intern(value isa.Value) int {
	index, ok := asm.constants[value]
	if ok {
		return index
	}

	index = len(asm.program.Constants)
	asm.program.Constants = append(asm.program.Constants, value)
	asm.constants[value] = index
	return index
}

// resolveOperand handles pass 2 of a single operand.
func (asm *Assembler) resolveOperand(shape isa.Shape, group []Token, lineno int) (op isa.Operand, err error) {
	group, err = asm.expand(group, lineno)
	if err != nil {
		return
	}

	if len(group) != 1 {
		err = ErrOperandSyntax
		return
	}
	token := group[0]

	reg, is_reg := 0, false
	if token.Kind == TOKEN_IDENT {
		reg, is_reg = registerOf(token.Text)
	}

	switch shape {
	case isa.SHAPE_REGISTER, isa.SHAPE_VALUE:
		if is_reg {
			if reg < 1 || reg > asm.program.Registers {
				err = ErrInvalidRegister
				return
			}
			op = isa.RegisterOperand(reg)
			return
		}
		if shape == isa.SHAPE_REGISTER {
			err = ErrOperandKind
			return
		}
		switch token.Kind {
		case TOKEN_NUMBER:
			op = isa.ConstantOperand(asm.intern(isa.Number(token.Number)))
		case TOKEN_STRING:
			op = isa.ConstantOperand(asm.intern(isa.Text(token.Text)))
		default:
			err = ErrOperandKind
		}
	case isa.SHAPE_NUMBER:
		if token.Kind != TOKEN_NUMBER {
			err = ErrOperandKind
			return
		}
		op = isa.ConstantOperand(asm.intern(isa.Number(token.Number)))
	case isa.SHAPE_STRING:
		if token.Kind != TOKEN_STRING {
			err = ErrOperandKind
			return
		}
		op = isa.ConstantOperand(asm.intern(isa.Text(token.Text)))
	case isa.SHAPE_LABEL:
		if token.Kind != TOKEN_IDENT || is_reg {
			err = ErrOperandKind
			return
		}
		address, ok := asm.Label[token.Text]
		if !ok {
			err = ErrLabelMissing(token.Text)
			return
		}
		if address >= len(asm.stmts) {
			err = ErrAddressRange
			return
		}
		op = isa.AddressOperand(address)
	case isa.SHAPE_ROLE:
		role, ok := isa.Role(0), false
		if token.Kind == TOKEN_IDENT {
			role, ok = isa.ParseRole(token.Text)
		}
		if !ok {
			err = ErrOperandKind
			return
		}
		op = isa.RoleOperand(role)
	default:
		err = ErrOperandKind
	}

	return
}

// link handles pass 2 of a single statement.
func (asm *Assembler) link(stmt statement) (inst isa.Instruction, err error) {
	info, _ := stmt.Opcode.Info()
	if len(stmt.Operands) < info.MinOperands() || len(stmt.Operands) > info.MaxOperands() {
		err = ErrOperandCount
		return
	}

	inst.Opcode = stmt.Opcode
	for n, group := range stmt.Operands {
		var op isa.Operand
		op, err = asm.resolveOperand(info.Operands[n], group, stmt.LineNo)
		if err != nil {
			return
		}
		inst.Operands = append(inst.Operands, op)
	}

	return
}

func (asm *Assembler) reset() (err error) {
	registers := asm.Registers
	if registers == 0 {
		registers = isa.DEFAULT_REGISTERS
	}
	if !isa.ValidRegisters(registers) {
		return ErrRegisterCount
	}

	asm.Label = make(map[string]int, 16)
	asm.Equate = make(map[string]Token)
	asm.constants = make(map[isa.Value]int)
	asm.stmts = asm.stmts[:0]
	asm.program = &isa.Program{
		Registers: registers,
		Labels:    asm.Label,
		Symbols:   &isa.Symbols{Source: asm.Source},
	}

	builtin := map[string]string{
		"REGISTERS": strconv.Itoa(registers),
	}

	// Predefines override the builtin equates.
	for equ, text := range internal.Concat2(maps.All(builtin), maps.All(asm.predefine)) {
		var tokens []Token
		tokens, err = Tokenize(text)
		if err != nil {
			return
		}
		if len(tokens) != 2 {
			return ErrEquateSyntax
		}
		asm.Equate[equ] = tokens[0]
	}

	return
}

// Parse parses an input stream into a Program. No Program is returned
// on error.
func (asm *Assembler) Parse(input io.Reader) (prog *isa.Program, err error) {
	var lineno int

	defer func() {
		if err != nil && lineno > 0 {
			line := ""
			if lineno <= len(asm.lines) {
				line = strings.TrimSpace(asm.lines[lineno-1])
			}
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	err = asm.reset()
	if err != nil {
		return
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return
	}
	source := string(data)
	asm.lines = strings.Split(source, "\n")

	tokens, err := Tokenize(source)
	if err != nil {
		var lex_err *LexError
		if errors.As(err, &lex_err) {
			lineno = lex_err.Line
		}
		return
	}

	// Pass 1: labels, equates and statements.
	var words []Token
	for _, token := range tokens {
		if token.Kind != TOKEN_EOL {
			words = append(words, token)
			continue
		}
		lineno = token.Line
		err = asm.parseLine(words, lineno)
		if err != nil {
			return
		}
		words = words[:0]
	}

	// Pass 2: operand resolution and label linking.
	for _, stmt := range asm.stmts {
		lineno = stmt.LineNo

		var inst isa.Instruction
		inst, err = asm.link(stmt)
		if err != nil {
			return
		}

		asm.program.Instructions = append(asm.program.Instructions, inst)
		asm.program.Symbols.Lines = append(asm.program.Symbols.Lines, stmt.LineNo)
	}
	lineno = 0

	asm.program.Labels = maps.Clone(asm.Label)

	err = asm.program.Validate()
	if err != nil {
		return
	}

	prog = asm.program
	asm.program = nil

	return
}
