package vm

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/ezrec/lpu/isa"
)

// SNAPSHOT_PREFIX starts every snapshot handle.
const SNAPSHOT_PREFIX = "snapshot:"

// Snapshots is the table of saved context stacks, keyed by handle.
type Snapshots struct {
	table map[string][]isa.Message
}

// Save copies the stack, and returns the handle of the copy.
func (ss *Snapshots) Save(stack *ContextStack) (handle string) {
	if ss.table == nil {
		ss.table = make(map[string][]isa.Message)
	}

	handle = SNAPSHOT_PREFIX + uuid.NewString()
	ss.table[handle] = slices.Clone(stack.Data)
	return
}

// Restore returns a copy of a saved stack. The saved stack is unchanged,
// so a handle may be restored any number of times.
func (ss *Snapshots) Restore(handle string) (stack ContextStack, ok bool) {
	if !strings.HasPrefix(handle, SNAPSHOT_PREFIX) {
		return
	}

	saved, ok := ss.table[handle]
	if !ok {
		return
	}

	stack.Data = slices.Clone(saved)
	return
}

// Len returns the number of saved snapshots.
func (ss *Snapshots) Len() int {
	return len(ss.table)
}

// Reset forgets all snapshots.
func (ss *Snapshots) Reset() {
	clear(ss.table)
}
