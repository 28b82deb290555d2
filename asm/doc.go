// Package asm assembles LPU source text into an isa.Program.
//
// Source is line oriented. Each line holds optional labels, then either an
// instruction or a directive, then an optional ';' comment:
//
//	.equ LIMIT 3
//	        LI  X1, 0
//	LOOP:   INC X1, 1
//	        BLT X1, LIMIT, LOOP
//	        OUT "done"
//
// Numeric operands may be compile-time expressions, $(LIMIT * 2), which
// are evaluated with starlark. Numeric equates and LINENO are visible to
// the expression.
package asm
