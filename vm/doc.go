// Package vm executes assembled LPU programs.
//
// A Machine owns its register file, context stack and snapshot table.
// Machines share no mutable state, so independent machines may run
// concurrently without locking.
package vm
