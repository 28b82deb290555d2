package io

import (
	"errors"

	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	// File errors
	ErrPathEscapes = errors.New(f("path escapes root"))
	ErrNotText     = errors.New(f("file is not UTF-8 text"))
)
