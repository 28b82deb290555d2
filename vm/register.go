package vm

import (
	"github.com/ezrec/lpu/isa"
)

// RegisterFile holds registers X1 through Xn.
type RegisterFile struct {
	values []isa.Value
}

// NewRegisterFile creates n empty registers.
func NewRegisterFile(n int) RegisterFile {
	return RegisterFile{values: make([]isa.Value, n)}
}

// Len returns the number of registers.
func (rf *RegisterFile) Len() int {
	return len(rf.values)
}

// Get reads register Xn.
func (rf *RegisterFile) Get(n int) (value isa.Value, err error) {
	if n < 1 || n > len(rf.values) {
		err = ErrInvalidRegister
		return
	}

	value = rf.values[n-1]
	if value.Empty() {
		err = ErrUninitializedRegister
	}
	return
}

// Set writes register Xn.
func (rf *RegisterFile) Set(n int, value isa.Value) (err error) {
	if n < 1 || n > len(rf.values) {
		return ErrInvalidRegister
	}

	rf.values[n-1] = value
	return
}

// Reset empties all registers.
func (rf *RegisterFile) Reset() {
	clear(rf.values)
}
