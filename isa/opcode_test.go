package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	for op, info := range opcodeTable {
		found, ok := Lookup(info.Mnemonic)
		assert.True(ok, info.Mnemonic)
		assert.Equal(op, found)
		assert.Equal(info.Mnemonic, op.String())
	}

	op, ok := Lookup("beq")
	assert.True(ok)
	assert.Equal(OP_BEQ, op)
	assert.Equal(CLASS_BRANCH, op.Class())

	_, ok = Lookup("NOP")
	assert.False(ok)

	assert.False(Opcode(0xff).Valid())
	assert.Equal("opcode(0xff)", Opcode(0xff).String())
}

func TestOpcodeInfo_Arity(t *testing.T) {
	assert := assert.New(t)

	info, ok := OP_PSH.Info()
	assert.True(ok)
	assert.Equal(1, info.MinOperands())
	assert.Equal(2, info.MaxOperands())

	info, ok = OP_SIM.Info()
	assert.True(ok)
	assert.Equal(3, info.MinOperands())
	assert.Equal(CLASS_SEMANTIC, info.Class)
}

func TestShape_Accepts(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		shape   Shape
		kind    OperandKind
		literal Kind
		ok      bool
	}{
		{SHAPE_REGISTER, OPERAND_REGISTER, KIND_EMPTY, true},
		{SHAPE_REGISTER, OPERAND_CONSTANT, KIND_TEXT, false},
		{SHAPE_VALUE, OPERAND_CONSTANT, KIND_TEXT, true},
		{SHAPE_VALUE, OPERAND_IMMEDIATE, KIND_EMPTY, true},
		{SHAPE_VALUE, OPERAND_ADDRESS, KIND_EMPTY, false},
		{SHAPE_NUMBER, OPERAND_CONSTANT, KIND_NUMBER, true},
		{SHAPE_NUMBER, OPERAND_CONSTANT, KIND_TEXT, false},
		{SHAPE_STRING, OPERAND_CONSTANT, KIND_TEXT, true},
		{SHAPE_STRING, OPERAND_CONSTANT, KIND_NUMBER, false},
		{SHAPE_LABEL, OPERAND_ADDRESS, KIND_EMPTY, true},
		{SHAPE_ROLE, OPERAND_ROLE, KIND_EMPTY, true},
		{SHAPE_ROLE, OPERAND_REGISTER, KIND_EMPTY, false},
	}

	for _, entry := range table {
		assert.Equal(entry.ok, entry.shape.Accepts(entry.kind, entry.literal), "%v %v %v", entry.shape, entry.kind, entry.literal)
	}
}
