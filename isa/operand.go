package isa

// OperandKind is the type tag of an instruction operand.
type OperandKind uint8

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	OPERAND_NONE      = OperandKind(0) // none
	OPERAND_REGISTER  = OperandKind(1) // register
	OPERAND_IMMEDIATE = OperandKind(2) // immediate
	OPERAND_CONSTANT  = OperandKind(3) // constant
	OPERAND_ADDRESS   = OperandKind(4) // address
	OPERAND_ROLE      = OperandKind(5) // role
)

// Operand is a single instruction argument.
type Operand struct {
	Kind      OperandKind // Type tag.
	Index     int         // Register number, constant pool index, address or role.
	Immediate float64     // Inline numeric literal, for OPERAND_IMMEDIATE.
}

// RegisterOperand refers to register Xn, counting from 1.
func RegisterOperand(n int) Operand {
	return Operand{Kind: OPERAND_REGISTER, Index: n}
}

// ConstantOperand refers to a constant pool entry.
func ConstantOperand(index int) Operand {
	return Operand{Kind: OPERAND_CONSTANT, Index: index}
}

// ImmediateOperand is an inline numeric literal.
func ImmediateOperand(number float64) Operand {
	return Operand{Kind: OPERAND_IMMEDIATE, Immediate: number}
}

// AddressOperand is a resolved instruction index.
func AddressOperand(address int) Operand {
	return Operand{Kind: OPERAND_ADDRESS, Index: address}
}

// RoleOperand is a role literal.
func RoleOperand(role Role) Operand {
	return Operand{Kind: OPERAND_ROLE, Index: int(role)}
}

// Role returns the role of an OPERAND_ROLE operand.
func (op Operand) Role() Role {
	return Role(op.Index)
}
