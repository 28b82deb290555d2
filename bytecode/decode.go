package bytecode

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/lpu/isa"
)

// decoder reads an image, tracking the current offset.
type decoder struct {
	data   []byte
	offset int
}

func (dec *decoder) fail(err error) error {
	return &FormatError{Offset: dec.offset, Err: err}
}

func (dec *decoder) need(n int) (err error) {
	if n < 0 || len(dec.data)-dec.offset < n {
		return dec.fail(ErrTruncated)
	}
	return
}

func (dec *decoder) bytes(n int) (buf []byte, err error) {
	err = dec.need(n)
	if err != nil {
		return
	}
	buf = dec.data[dec.offset : dec.offset+n]
	dec.offset += n
	return
}

func (dec *decoder) u8() (value uint8, err error) {
	buf, err := dec.bytes(1)
	if err != nil {
		return
	}
	value = buf[0]
	return
}

func (dec *decoder) u16() (value uint16, err error) {
	buf, err := dec.bytes(2)
	if err != nil {
		return
	}
	value = binary.BigEndian.Uint16(buf)
	return
}

func (dec *decoder) u32() (value uint32, err error) {
	buf, err := dec.bytes(4)
	if err != nil {
		return
	}
	value = binary.BigEndian.Uint32(buf)
	return
}

func (dec *decoder) u64() (value uint64, err error) {
	buf, err := dec.bytes(8)
	if err != nil {
		return
	}
	value = binary.BigEndian.Uint64(buf)
	return
}

// Decode deserializes and validates a program image.
func Decode(data []byte) (prog *isa.Program, err error) {
	dec := &decoder{data: data}

	magic, err := dec.bytes(len(MAGIC))
	if err != nil {
		return
	}
	if string(magic) != MAGIC {
		err = &FormatError{Offset: 0, Err: ErrBadMagic}
		return
	}

	version, err := dec.u16()
	if err != nil {
		return
	}
	if version != VERSION {
		err = &FormatError{Offset: len(MAGIC), Err: ErrVersionMismatch}
		return
	}

	flags, err := dec.u16()
	if err != nil {
		return
	}
	if flags&^FLAG_SYMBOLS != 0 {
		err = &FormatError{Offset: dec.offset - 2, Err: ErrMalformed}
		return
	}

	registers, err := dec.u16()
	if err != nil {
		return
	}

	reserved, err := dec.u16()
	if err != nil {
		return
	}
	if reserved != 0 {
		err = &FormatError{Offset: dec.offset - 2, Err: ErrMalformed}
		return
	}

	count, err := dec.u32()
	if err != nil {
		return
	}
	if uint64(count)*RECORD_SIZE > uint64(len(data)-dec.offset) {
		err = dec.fail(ErrTruncated)
		return
	}

	decoded := &isa.Program{
		Registers: int(registers),
	}
	if count > 0 {
		decoded.Instructions = make([]isa.Instruction, 0, count)
	}

	for range count {
		var inst isa.Instruction
		inst, err = dec.instruction()
		if err != nil {
			return
		}
		decoded.Instructions = append(decoded.Instructions, inst)
	}

	decoded.Constants, err = dec.pool()
	if err != nil {
		return
	}

	if flags&FLAG_SYMBOLS != 0 {
		err = dec.symbols(decoded)
		if err != nil {
			return
		}
	}

	if dec.offset != len(data) {
		err = dec.fail(ErrMalformed)
		return
	}

	err = decoded.Validate()
	if err != nil {
		offset := HEADER_SIZE
		var inst_err *isa.ErrInstruction
		if errors.As(err, &inst_err) {
			offset += inst_err.Address * RECORD_SIZE
		}
		err = &FormatError{Offset: offset, Err: errors.Join(ErrMalformed, err)}
		return
	}

	prog = decoded
	return
}

func (dec *decoder) instruction() (inst isa.Instruction, err error) {
	code, err := dec.u8()
	if err != nil {
		return
	}

	inst.Opcode = isa.Opcode(code)
	if !inst.Opcode.Valid() {
		dec.offset--
		err = dec.fail(ErrUnknownOpcode)
		return
	}

	done := false
	for range OPERAND_MAX {
		var kind uint8
		var payload uint64
		kind, err = dec.u8()
		if err != nil {
			return
		}
		payload, err = dec.u64()
		if err != nil {
			return
		}

		op := isa.Operand{Kind: isa.OperandKind(kind)}
		switch op.Kind {
		case isa.OPERAND_NONE:
			if payload != 0 {
				err = dec.fail(ErrMalformed)
				return
			}
			done = true
			continue
		case isa.OPERAND_IMMEDIATE:
			op.Immediate = math.Float64frombits(payload)
			if math.IsNaN(op.Immediate) || math.IsInf(op.Immediate, 0) {
				err = dec.fail(ErrMalformed)
				return
			}
		case isa.OPERAND_REGISTER, isa.OPERAND_CONSTANT, isa.OPERAND_ADDRESS, isa.OPERAND_ROLE:
			if payload > math.MaxInt32 {
				err = dec.fail(ErrMalformed)
				return
			}
			op.Index = int(payload)
		default:
			err = dec.fail(ErrMalformed)
			return
		}

		if done {
			// Operands follow an empty slot.
			err = dec.fail(ErrMalformed)
			return
		}
		inst.Operands = append(inst.Operands, op)
	}

	return
}

func (dec *decoder) pool() (constants []isa.Value, err error) {
	count, err := dec.u32()
	if err != nil {
		return
	}

	// Every entry takes at least five bytes.
	if uint64(count)*5 > uint64(len(dec.data)-dec.offset) {
		err = dec.fail(ErrTruncated)
		return
	}

	if count > 0 {
		constants = make([]isa.Value, 0, count)
	}
	for range count {
		var tag uint8
		tag, err = dec.u8()
		if err != nil {
			return
		}

		switch tag {
		case TAG_NUMBER:
			var bits uint64
			bits, err = dec.u64()
			if err != nil {
				return
			}
			number := math.Float64frombits(bits)
			if math.IsNaN(number) || math.IsInf(number, 0) {
				err = dec.fail(ErrMalformed)
				return
			}
			constants = append(constants, isa.Number(number))
		case TAG_TEXT:
			var size uint32
			size, err = dec.u32()
			if err != nil {
				return
			}
			var buf []byte
			buf, err = dec.bytes(int(size))
			if err != nil {
				return
			}
			if !utf8.Valid(buf) {
				err = dec.fail(ErrMalformed)
				return
			}
			constants = append(constants, isa.Text(string(buf)))
		default:
			dec.offset--
			err = dec.fail(ErrMalformed)
			return
		}
	}

	return
}

func (dec *decoder) symbols(prog *isa.Program) (err error) {
	size, err := dec.u32()
	if err != nil {
		return
	}

	offset := dec.offset
	section, err := dec.bytes(int(size))
	if err != nil {
		return
	}

	var table symbolTable
	err = cbor.Unmarshal(section, &table)
	if err != nil {
		err = &FormatError{Offset: offset, Err: errors.Join(ErrMalformed, err)}
		return
	}

	if len(table.Lines) != 0 && len(table.Lines) != len(prog.Instructions) {
		err = &FormatError{Offset: offset, Err: ErrMalformed}
		return
	}

	prog.Symbols = &isa.Symbols{Source: table.Source, Lines: table.Lines}
	prog.Labels = table.Labels
	return
}
