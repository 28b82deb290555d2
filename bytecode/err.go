package bytecode

import (
	"errors"

	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	ErrBadMagic        = errors.New(f("bad magic"))
	ErrVersionMismatch = errors.New(f("version mismatch"))
	ErrTruncated       = errors.New(f("truncated"))
	ErrUnknownOpcode   = errors.New(f("opcode unknown"))
	ErrMalformed       = errors.New(f("malformed"))
	ErrTooLarge        = errors.New(f("program too large"))
)

// FormatError locates a decoding error in the image.
type FormatError struct {
	Offset int
	Err    error
}

func (err *FormatError) Error() string {
	return f("bytecode offset %d: %v", err.Offset, err.Err)
}

func (err *FormatError) Unwrap() error {
	return err.Err
}
