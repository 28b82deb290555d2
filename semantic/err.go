package semantic

import (
	"errors"

	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	ErrNotSemantic       = errors.New(f("opcode is not semantic"))
	ErrOperandCount      = errors.New(f("semantic operand count"))
	ErrStrategy          = errors.New(f("strategy unknown"))
	ErrEmptyResponse     = errors.New(f("empty response"))
	ErrEmbeddingMismatch = errors.New(f("embedding dimensions mismatch"))
	ErrEmbeddingZero     = errors.New(f("embedding has zero length"))
)

// ErrStatus is an unexpected HTTP status from the backend.
type ErrStatus struct {
	Code int
	Body string
}

func (err *ErrStatus) Error() string {
	return f("backend status %d: %v", err.Code, err.Body)
}
