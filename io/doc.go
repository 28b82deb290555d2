// Package io provides the collaborators a machine uses to reach outside
// of itself: Files for loading text, and Tape for its output lines.
package io
