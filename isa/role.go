package isa

import (
	"strings"
)

// Role tags a message of the context stack.
type Role int

//go:generate go tool stringer -linecomment -type=Role
const (
	ROLE_USER      = Role(0) // user
	ROLE_ASSISTANT = Role(1) // assistant
)

// ParseRole parses a role literal, case insensitive.
func ParseRole(word string) (role Role, ok bool) {
	switch strings.ToLower(word) {
	case "user":
		return ROLE_USER, true
	case "assistant":
		return ROLE_ASSISTANT, true
	}

	return
}
