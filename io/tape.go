package io

import (
	"io"
)

// Tape is the line oriented output of a machine.
type Tape struct {
	Output io.Writer // Destination of each line. Discarded if nil.

	lines int
}

// Send writes a line, terminated by a newline.
func (tc *Tape) Send(line string) (err error) {
	if tc.Output != nil {
		_, err = io.WriteString(tc.Output, line+"\n")
		if err != nil {
			return
		}
	}

	tc.lines++
	return
}

// Lines returns the number of lines sent.
func (tc *Tape) Lines() int {
	return tc.lines
}

// Reset clears the line count. The output is kept.
func (tc *Tape) Reset() {
	tc.lines = 0
}
