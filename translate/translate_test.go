package translate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(SetLanguage("en-US"))
	assert.Equal("register X3 empty", From("register X%d empty", 3))
	assert.Equal("plain", From("plain"))
}

func TestSetLanguageInvalid(t *testing.T) {
	assert := assert.New(t)

	assert.Error(SetLanguage("not a language tag!"))
}

func TestFprintln(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(SetLanguage("en-US"))

	buf := &bytes.Buffer{}
	assert.NoError(Fprintln(buf, "build %v ok", "hello.lpu"))
	assert.Equal("build hello.lpu ok\n", buf.String())
}
