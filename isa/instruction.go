package isa

import (
	"fmt"
	"strings"
)

// Instruction is a single decoded operation.
type Instruction struct {
	Opcode   Opcode
	Operands []Operand
}

// String formats the instruction without access to the constant pool.
func (inst Instruction) String() string {
	return inst.format(nil)
}

func (inst Instruction) format(prog *Program) string {
	var sb strings.Builder

	sb.WriteString(inst.Opcode.String())
	for n, op := range inst.Operands {
		if n == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(formatOperand(prog, op))
	}

	return sb.String()
}

func formatOperand(prog *Program, op Operand) string {
	switch op.Kind {
	case OPERAND_REGISTER:
		return fmt.Sprintf("X%d", op.Index)
	case OPERAND_IMMEDIATE:
		return Number(op.Immediate).String()
	case OPERAND_CONSTANT:
		if prog != nil && op.Index >= 0 && op.Index < len(prog.Constants) {
			return prog.Constants[op.Index].GoString()
		}
		return fmt.Sprintf("#%d", op.Index)
	case OPERAND_ADDRESS:
		if prog != nil {
			if label, ok := prog.LabelOf(op.Index); ok {
				return label
			}
		}
		return fmt.Sprintf("@%d", op.Index)
	case OPERAND_ROLE:
		return op.Role().String()
	}

	return op.Kind.String()
}
