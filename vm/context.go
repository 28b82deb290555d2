package vm

import (
	"slices"

	"github.com/ezrec/lpu/isa"
)

// ContextStack is the LIFO conversational memory of a machine. Push, Pop
// and Drop all act on the most recently pushed message.
type ContextStack struct {
	Data []isa.Message
}

func (s *ContextStack) Push(msg isa.Message) {
	s.Data = append(s.Data, msg)
}

func (s *ContextStack) Pop() (msg isa.Message, ok bool) {
	msg, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *ContextStack) Empty() bool {
	return len(s.Data) == 0
}

func (s *ContextStack) Len() int {
	return len(s.Data)
}

func (s *ContextStack) Peek() (msg isa.Message, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *ContextStack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}

// Messages returns a copy of the stack, oldest message first.
func (s *ContextStack) Messages() []isa.Message {
	return slices.Clone(s.Data)
}
