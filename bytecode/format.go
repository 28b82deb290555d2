package bytecode

// MAGIC starts every image.
const MAGIC = "LPU\x1a"

// VERSION is the only image version understood by Decode.
const VERSION = 1

const (
	FLAG_SYMBOLS = uint16(1 << 0) // Symbol section present.
)

const (
	HEADER_SIZE  = 4 + 2 + 2 + 2 + 2 + 4
	OPERAND_SIZE = 1 + 8
	OPERAND_MAX  = 3
	RECORD_SIZE  = 1 + OPERAND_MAX*OPERAND_SIZE
)

// Constant pool entry tags.
const (
	TAG_NUMBER = uint8(1)
	TAG_TEXT   = uint8(2)
)

// symbolTable is the CBOR payload of the symbol section.
type symbolTable struct {
	Source string         `cbor:"1,keyasint"`
	Lines  []int          `cbor:"2,keyasint"`
	Labels map[string]int `cbor:"3,keyasint"`
}
