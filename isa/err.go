package isa

import (
	"errors"

	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrOperandCount    = errors.New(f("operand count"))
	ErrOperandKind     = errors.New(f("operand kind"))
	ErrInvalidRegister = errors.New(f("register invalid"))
	ErrRegisterCount   = errors.New(f("register count must be 8 or 32"))
	ErrAddressRange    = errors.New(f("address out of range"))
	ErrConstantRange   = errors.New(f("constant out of range"))
	ErrConstantEmpty   = errors.New(f("constant empty"))
	ErrRoleInvalid     = errors.New(f("role invalid"))
)

// ErrInstruction locates a program validation error.
type ErrInstruction struct {
	Address int
	Err     error
}

func (err *ErrInstruction) Error() string {
	return f("instruction %d %v", err.Address, err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}
