package io

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"unicode/utf8"
)

// Files reads text files on behalf of the LF opcode.
type Files interface {
	// ReadFile returns the content of a file as text.
	ReadFile(name string) (text string, err error)
}

// Dir is a Files view of a directory tree. Names are slash separated and
// relative to the root; names escaping the root are rejected.
type Dir struct {
	FS fs.FS

	root *os.Root
}

var _ Files = (*Dir)(nil)

// OpenDir opens a directory as a Dir. Symbolic links may not escape it.
func OpenDir(root string) (dir *Dir, err error) {
	rooted, err := os.OpenRoot(root)
	if err != nil {
		return
	}

	dir = &Dir{FS: rooted.FS(), root: rooted}
	return
}

// Close releases the directory opened by OpenDir.
func (dir *Dir) Close() (err error) {
	if dir.root == nil {
		return
	}

	err = dir.root.Close()
	dir.root = nil
	return
}

// ReadFile implements Files.
func (dir *Dir) ReadFile(name string) (text string, err error) {
	clean := path.Clean(filepath.ToSlash(name))
	if !fs.ValidPath(clean) {
		err = &fs.PathError{Op: "read", Path: name, Err: ErrPathEscapes}
		return
	}

	data, err := fs.ReadFile(dir.FS, clean)
	if err != nil {
		return
	}

	if !utf8.Valid(data) {
		err = &fs.PathError{Op: "read", Path: name, Err: ErrNotText}
		return
	}

	text = string(data)
	return
}
