// Package semantic evaluates the semantic opcodes of the LPU.
//
// Each semantic opcode maps to a fixed micro-prompt and a response
// strategy in the Operations table. A Request built from that table is
// handed to an Adapter, which returns a Number or a Text.
//
// Client is an Adapter for OpenAI-compatible chat completion and
// embedding services. Cache memoizes any Adapter in a sqlite database.
package semantic
