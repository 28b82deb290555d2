package isa

// Message is an element of the context stack.
type Message struct {
	Role    Role
	Content string
}
