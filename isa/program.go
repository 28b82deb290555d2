package isa

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// DEFAULT_REGISTERS is the register count used when none is selected.
const DEFAULT_REGISTERS = 32

// ValidRegisters returns true for a legal register file size.
func ValidRegisters(n int) bool {
	return n == 8 || n == 32
}

// Symbols holds optional debug information of a program.
type Symbols struct {
	Source string // Name of the source file.
	Lines  []int  // Source line of each instruction.
}

// Program is an assembled, immutable program.
type Program struct {
	Registers    int            // Register file size, 8 or 32.
	Instructions []Instruction  // Instructions, by address.
	Constants    []Value        // Constant pool.
	Labels       map[string]int // Label addresses.
	Symbols      *Symbols       // Debug information, if any.
}

// Validate checks every operand of every instruction against the opcode
// table, the register file size, the constant pool and the address range.
func (prog *Program) Validate() (err error) {
	if !ValidRegisters(prog.Registers) {
		return ErrRegisterCount
	}

	for _, value := range prog.Constants {
		if value.Empty() {
			return ErrConstantEmpty
		}
	}

	for address, inst := range prog.Instructions {
		err = prog.validateInstruction(inst)
		if err != nil {
			err = &ErrInstruction{Address: address, Err: err}
			return
		}
	}

	for _, address := range prog.Labels {
		if address < 0 || address > len(prog.Instructions) {
			return ErrAddressRange
		}
	}

	return
}

func (prog *Program) validateInstruction(inst Instruction) (err error) {
	info, ok := inst.Opcode.Info()
	if !ok {
		return ErrOpcodeUnknown
	}

	if len(inst.Operands) < info.MinOperands() || len(inst.Operands) > info.MaxOperands() {
		return ErrOperandCount
	}

	for n, op := range inst.Operands {
		switch op.Kind {
		case OPERAND_REGISTER:
			if op.Index < 1 || op.Index > prog.Registers {
				return ErrInvalidRegister
			}
		case OPERAND_CONSTANT:
			if op.Index < 0 || op.Index >= len(prog.Constants) {
				return ErrConstantRange
			}
		case OPERAND_ADDRESS:
			if op.Index < 0 || op.Index >= len(prog.Instructions) {
				return ErrAddressRange
			}
		case OPERAND_ROLE:
			if op.Role() != ROLE_USER && op.Role() != ROLE_ASSISTANT {
				return ErrRoleInvalid
			}
		}

		var literal Kind
		if op.Kind == OPERAND_CONSTANT {
			literal = prog.Constants[op.Index].Kind()
		}
		if !info.Operands[n].Accepts(op.Kind, literal) {
			return ErrOperandKind
		}
	}

	return
}

// Literal returns the value of an immediate or constant operand.
func (prog *Program) Literal(op Operand) (value Value, ok bool) {
	switch op.Kind {
	case OPERAND_IMMEDIATE:
		return Number(op.Immediate), true
	case OPERAND_CONSTANT:
		if op.Index < 0 || op.Index >= len(prog.Constants) {
			return
		}
		return prog.Constants[op.Index], true
	}

	return
}

// Line returns the source line of an instruction, if known.
func (prog *Program) Line(address int) (line int, ok bool) {
	if prog.Symbols == nil || address < 0 || address >= len(prog.Symbols.Lines) {
		return
	}

	return prog.Symbols.Lines[address], true
}

// LabelOf returns the first label, alphabetically, at an address.
func (prog *Program) LabelOf(address int) (label string, ok bool) {
	for _, name := range slices.Sorted(maps.Keys(prog.Labels)) {
		if prog.Labels[name] == address {
			return name, true
		}
	}

	return
}

// Format formats an instruction, resolving constants and labels.
func (prog *Program) Format(inst Instruction) string {
	return inst.format(prog)
}

// Disassemble writes an assembly listing of the program.
func (prog *Program) Disassemble(w io.Writer) (err error) {
	labels := map[int][]string{}
	for _, name := range slices.Sorted(maps.Keys(prog.Labels)) {
		address := prog.Labels[name]
		labels[address] = append(labels[address], name)
	}

	if prog.Symbols != nil && len(prog.Symbols.Source) != 0 {
		_, err = fmt.Fprintf(w, "; %v\n", prog.Symbols.Source)
		if err != nil {
			return
		}
	}

	_, err = fmt.Fprintf(w, "; registers %d\n", prog.Registers)
	if err != nil {
		return
	}

	for address := 0; address <= len(prog.Instructions); address++ {
		for _, name := range labels[address] {
			_, err = fmt.Fprintf(w, "%v:\n", name)
			if err != nil {
				return
			}
		}

		if address == len(prog.Instructions) {
			break
		}

		text := fmt.Sprintf("%04d    %v", address, prog.Format(prog.Instructions[address]))
		if line, ok := prog.Line(address); ok {
			text = fmt.Sprintf("%-40v ; line %d", text, line)
		}
		_, err = fmt.Fprintln(w, text)
		if err != nil {
			return
		}
	}

	return
}
