// Package isa defines the instruction set of the LPU, the language processing
// unit: tagged register values, conversational roles, the opcode table with
// the operand shape of every instruction, and the assembled Program.
//
// Most of the "ALU" of the LPU is semantic. Opcodes such as MOR, AUD or SIM
// are evaluated by an external language model, while data movement, branches
// and the context stack are executed locally by the virtual machine.
package isa
