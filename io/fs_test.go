package io

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_ReadFile(t *testing.T) {
	assert := assert.New(t)

	dir := &Dir{FS: fstest.MapFS{
		"notes.txt":        {Data: []byte("remember the milk\n")},
		"prompts/tone.txt": {Data: []byte("formal")},
		"binary.dat":       {Data: []byte{0xff, 0xfe, 0x00}},
	}}

	text, err := dir.ReadFile("notes.txt")
	assert.NoError(err)
	assert.Equal("remember the milk\n", text)

	text, err = dir.ReadFile("prompts/../prompts/tone.txt")
	assert.NoError(err)
	assert.Equal("formal", text)

	_, err = dir.ReadFile("missing.txt")
	assert.True(errors.Is(err, fs.ErrNotExist))

	_, err = dir.ReadFile("binary.dat")
	assert.True(errors.Is(err, ErrNotText))

	for _, name := range []string{"../secret", "/etc/passwd", "prompts/../../secret"} {
		_, err = dir.ReadFile(name)
		assert.True(errors.Is(err, ErrPathEscapes), name)
	}
}

func TestOpenDir(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "input.txt"), []byte("hello"), 0o644))

	dir, err := OpenDir(root)
	require.NoError(t, err)

	text, err := dir.ReadFile("input.txt")
	assert.NoError(err)
	assert.Equal("hello", text)

	assert.NoError(dir.Close())
	_, err = dir.ReadFile("input.txt")
	assert.Error(err)
	assert.NoError(dir.Close())

	_, err = OpenDir(filepath.Join(root, "missing"))
	assert.Error(err)

	mapped := &Dir{FS: fstest.MapFS{}}
	assert.NoError(mapped.Close())
}

func TestTape_Send(t *testing.T) {
	assert := assert.New(t)

	var output strings.Builder
	tape := &Tape{Output: &output}

	assert.NoError(tape.Send("yes"))
	assert.NoError(tape.Send(""))
	assert.Equal("yes\n\n", output.String())
	assert.Equal(2, tape.Lines())

	discard := &Tape{}
	assert.NoError(discard.Send("ignored"))
	assert.Equal(1, discard.Lines())

	tape.Reset()
	assert.Equal(0, tape.Lines())
	assert.Equal("yes\n\n", output.String())
}
