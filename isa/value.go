package isa

import (
	"strconv"
)

// Kind is the type tag of a Value.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_EMPTY  = Kind(0) // empty
	KIND_NUMBER = Kind(1) // number
	KIND_TEXT   = Kind(2) // text
)

// Value is the content of a register or constant: a number or a text.
// The zero Value is empty, and is never a legal register content.
type Value struct {
	kind   Kind
	number float64
	text   string
}

// Number creates a numeric value.
func Number(number float64) Value {
	return Value{kind: KIND_NUMBER, number: number}
}

// Text creates a text value.
func Text(text string) Value {
	return Value{kind: KIND_TEXT, text: text}
}

// Kind returns the type tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// Empty returns true for the zero Value.
func (v Value) Empty() bool {
	return v.kind == KIND_EMPTY
}

// Number returns the numeric content, if the value is a number.
func (v Value) Number() (number float64, ok bool) {
	if v.kind != KIND_NUMBER {
		return
	}
	return v.number, true
}

// Text returns the text content, if the value is a text.
func (v Value) Text() (text string, ok bool) {
	if v.kind != KIND_TEXT {
		return
	}
	return v.text, true
}

// Equal compares kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KIND_NUMBER:
		return v.number == other.number
	case KIND_TEXT:
		return v.text == other.text
	}

	return true
}

// String returns the textual representation of the value, as written by OUT
// and pushed onto the context stack. Numbers have no trailing zeros.
func (v Value) String() string {
	switch v.kind {
	case KIND_NUMBER:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KIND_TEXT:
		return v.text
	}

	return ""
}

// GoString is used by %#v, and quotes texts.
func (v Value) GoString() string {
	switch v.kind {
	case KIND_NUMBER:
		return v.String()
	case KIND_TEXT:
		return strconv.Quote(v.text)
	}

	return "<empty>"
}
