package vm

import (
	"errors"

	"github.com/ezrec/lpu/isa"
	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	ErrUninitializedRegister  = errors.New(f("register uninitialized"))
	ErrInvalidRegister        = errors.New(f("register invalid"))
	ErrTypeMismatch           = errors.New(f("type mismatch"))
	ErrStackUnderflow         = errors.New(f("context stack underflow"))
	ErrUnknownSnapshot        = errors.New(f("snapshot unknown"))
	ErrIoFailure              = errors.New(f("i/o failure"))
	ErrSemanticBackendFailure = errors.New(f("semantic backend failure"))
	ErrSemanticResult         = errors.New(f("semantic result invalid"))
	ErrStepLimit              = errors.New(f("step limit exceeded"))
	ErrNoProgram              = errors.New(f("no program"))
)

// ErrRuntime locates a fault of a running program.
type ErrRuntime struct {
	Address int
	Opcode  isa.Opcode
	Line    int // Source line, zero if unknown.
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.Line > 0 {
		return f("address %d %v (line %d) %v", err.Address, err.Opcode, err.Line, err.Err)
	}
	return f("address %d %v %v", err.Address, err.Opcode, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
