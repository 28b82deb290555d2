// Package bytecode encodes and decodes the persisted form of an isa.Program.
//
// All integers are big endian.
//
//	header:  magic "LPU\x1a" | version u16 | flags u16 | registers u16 | reserved u16 | count u32
//	records: count * { opcode u8 | 3 * { kind u8 | payload u64 } }
//	pool:    n u32 | n * { tag u8 | number: f64 bits u64 | text: len u32, UTF-8 bytes }
//	symbols: if flags & FLAG_SYMBOLS, len u32 | canonical CBOR {source, lines, labels}
//
// Decoding is all or nothing: a malformed image never yields a Program.
package bytecode
