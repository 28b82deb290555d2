package isa

import (
	"fmt"
	"strings"
)

// Opcode is the instruction identifier, as stored in the bytecode records.
type Opcode uint8

const (
	// Data movement.
	OP_LI  = Opcode(0x01) // Load numeric immediate.
	OP_LS  = Opcode(0x02) // Load string.
	OP_LF  = Opcode(0x03) // Load file text.
	OP_MV  = Opcode(0x04) // Copy register.
	OP_INC = Opcode(0x05) // Increment numeric register.
	OP_DEC = Opcode(0x06) // Decrement numeric register.

	// Control flow.
	OP_BEQ  = Opcode(0x10)
	OP_BLT  = Opcode(0x11)
	OP_BLE  = Opcode(0x12)
	OP_BGT  = Opcode(0x13)
	OP_BGE  = Opcode(0x14)
	OP_JMP  = Opcode(0x15)
	OP_EXIT = Opcode(0x16)

	// Output.
	OP_OUT = Opcode(0x20)

	// Context stack.
	OP_PSH = Opcode(0x30)
	OP_POP = Opcode(0x31)
	OP_DRP = Opcode(0x32)
	OP_CLR = Opcode(0x33)
	OP_SNP = Opcode(0x34)
	OP_RST = Opcode(0x35)
	OP_SRL = Opcode(0x36)

	// Semantic.
	OP_MOR = Opcode(0x40) // Transform.
	OP_PRJ = Opcode(0x41) // Project, predict.
	OP_DST = Opcode(0x42) // Distill.
	OP_COR = Opcode(0x43) // Correlate.
	OP_AUD = Opcode(0x44) // Audit compliance.
	OP_HAL = Opcode(0x45) // Hallucination check.
	OP_SIM = Opcode(0x46) // Embedding similarity.
	OP_EQV = Opcode(0x47) // Equivalence.
	OP_INT = Opcode(0x48) // Intent alignment.
	OP_INF = Opcode(0x49) // Infer.
	OP_ADT = Opcode(0x4a) // Explain non-compliance.
	OP_ADD = Opcode(0x4b) // Merge.
	OP_SUB = Opcode(0x4c) // Split away.
	OP_MUL = Opcode(0x4d) // Scale.
	OP_DIV = Opcode(0x4e) // Partition.
)

// CodeClass is the opcode family.
type CodeClass int

//go:generate go tool stringer -linecomment -type=CodeClass
const (
	CLASS_DATA     = CodeClass(0) // data
	CLASS_BRANCH   = CodeClass(1) // branch
	CLASS_IO       = CodeClass(2) // io
	CLASS_CONTEXT  = CodeClass(3) // context
	CLASS_SEMANTIC = CodeClass(4) // semantic
)

// Shape is the kind of operand an instruction slot accepts.
type Shape int

//go:generate go tool stringer -linecomment -type=Shape
const (
	SHAPE_REGISTER = Shape(0) // register
	SHAPE_VALUE    = Shape(1) // value
	SHAPE_NUMBER   = Shape(2) // number
	SHAPE_STRING   = Shape(3) // string
	SHAPE_LABEL    = Shape(4) // label
	SHAPE_ROLE     = Shape(5) // role
)

// Accepts returns true if an operand of the given kind may fill the slot.
// The literal kind is only consulted for constant pool operands.
func (shape Shape) Accepts(kind OperandKind, literal Kind) bool {
	switch shape {
	case SHAPE_REGISTER:
		return kind == OPERAND_REGISTER
	case SHAPE_VALUE:
		return kind == OPERAND_REGISTER || kind == OPERAND_IMMEDIATE || kind == OPERAND_CONSTANT
	case SHAPE_NUMBER:
		return kind == OPERAND_IMMEDIATE || (kind == OPERAND_CONSTANT && literal == KIND_NUMBER)
	case SHAPE_STRING:
		return kind == OPERAND_CONSTANT && literal == KIND_TEXT
	case SHAPE_LABEL:
		return kind == OPERAND_ADDRESS
	case SHAPE_ROLE:
		return kind == OPERAND_ROLE
	}

	return false
}

// OpcodeInfo describes the assembly syntax of an opcode.
type OpcodeInfo struct {
	Mnemonic string    // Upper case mnemonic.
	Class    CodeClass // Opcode family.
	Operands []Shape   // Operand slots, in order.
	Optional int       // Number of trailing slots that may be omitted.
}

// MinOperands is the smallest legal operand count.
func (info OpcodeInfo) MinOperands() int {
	return len(info.Operands) - info.Optional
}

// MaxOperands is the largest legal operand count.
func (info OpcodeInfo) MaxOperands() int {
	return len(info.Operands)
}

var (
	shapeNone          = []Shape{}
	shapeLoadNumber    = []Shape{SHAPE_REGISTER, SHAPE_NUMBER}
	shapeLoadString    = []Shape{SHAPE_REGISTER, SHAPE_STRING}
	shapeMove          = []Shape{SHAPE_REGISTER, SHAPE_REGISTER}
	shapeBranch        = []Shape{SHAPE_VALUE, SHAPE_VALUE, SHAPE_LABEL}
	shapeUnarySemantic = []Shape{SHAPE_REGISTER, SHAPE_VALUE}
	shapeBinarySematic = []Shape{SHAPE_REGISTER, SHAPE_VALUE, SHAPE_VALUE}
)

var opcodeTable = map[Opcode]OpcodeInfo{
	OP_LI:  {"LI", CLASS_DATA, shapeLoadNumber, 0},
	OP_LS:  {"LS", CLASS_DATA, shapeLoadString, 0},
	OP_LF:  {"LF", CLASS_DATA, shapeLoadString, 0},
	OP_MV:  {"MV", CLASS_DATA, shapeMove, 0},
	OP_INC: {"INC", CLASS_DATA, shapeLoadNumber, 0},
	OP_DEC: {"DEC", CLASS_DATA, shapeLoadNumber, 0},

	OP_BEQ:  {"BEQ", CLASS_BRANCH, shapeBranch, 0},
	OP_BLT:  {"BLT", CLASS_BRANCH, shapeBranch, 0},
	OP_BLE:  {"BLE", CLASS_BRANCH, shapeBranch, 0},
	OP_BGT:  {"BGT", CLASS_BRANCH, shapeBranch, 0},
	OP_BGE:  {"BGE", CLASS_BRANCH, shapeBranch, 0},
	OP_JMP:  {"JMP", CLASS_BRANCH, []Shape{SHAPE_LABEL}, 0},
	OP_EXIT: {"EXIT", CLASS_BRANCH, shapeNone, 0},

	OP_OUT: {"OUT", CLASS_IO, []Shape{SHAPE_VALUE}, 0},

	OP_PSH: {"PSH", CLASS_CONTEXT, []Shape{SHAPE_VALUE, SHAPE_ROLE}, 1},
	OP_POP: {"POP", CLASS_CONTEXT, []Shape{SHAPE_REGISTER}, 0},
	OP_DRP: {"DRP", CLASS_CONTEXT, shapeNone, 0},
	OP_CLR: {"CLR", CLASS_CONTEXT, shapeNone, 0},
	OP_SNP: {"SNP", CLASS_CONTEXT, []Shape{SHAPE_REGISTER}, 0},
	OP_RST: {"RST", CLASS_CONTEXT, []Shape{SHAPE_VALUE}, 0},
	OP_SRL: {"SRL", CLASS_CONTEXT, []Shape{SHAPE_ROLE}, 0},

	OP_MOR: {"MOR", CLASS_SEMANTIC, shapeUnarySemantic, 0},
	OP_PRJ: {"PRJ", CLASS_SEMANTIC, shapeUnarySemantic, 0},
	OP_DST: {"DST", CLASS_SEMANTIC, shapeUnarySemantic, 0},
	OP_COR: {"COR", CLASS_SEMANTIC, shapeUnarySemantic, 0},
	OP_AUD: {"AUD", CLASS_SEMANTIC, shapeUnarySemantic, 0},
	OP_HAL: {"HAL", CLASS_SEMANTIC, shapeUnarySemantic, 0},
	OP_SIM: {"SIM", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_EQV: {"EQV", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_INT: {"INT", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_INF: {"INF", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_ADT: {"ADT", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_ADD: {"ADD", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_SUB: {"SUB", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_MUL: {"MUL", CLASS_SEMANTIC, shapeBinarySematic, 0},
	OP_DIV: {"DIV", CLASS_SEMANTIC, shapeBinarySematic, 0},
}

// mnemonicMap is the reverse of opcodeTable, keyed by lower case mnemonic.
var mnemonicMap = func() map[string]Opcode {
	mnemonics := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		mnemonics[strings.ToLower(info.Mnemonic)] = op
	}
	return mnemonics
}()

// Lookup finds the opcode for a mnemonic, case insensitive.
func Lookup(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonicMap[strings.ToLower(mnemonic)]
	return
}

// Info returns the opcode table entry.
func (op Opcode) Info() (info OpcodeInfo, ok bool) {
	info, ok = opcodeTable[op]
	return
}

// Valid returns true if the opcode is in the opcode table.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Class returns the opcode family.
func (op Opcode) Class() CodeClass {
	return opcodeTable[op].Class
}

// String returns the mnemonic.
func (op Opcode) String() string {
	info, ok := opcodeTable[op]
	if !ok {
		return fmt.Sprintf("opcode(0x%02x)", uint8(op))
	}
	return info.Mnemonic
}
