package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/lpu/isa"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode serializes a program. The symbol section is written if the
// program has symbols or labels.
func Encode(prog *isa.Program) (data []byte, err error) {
	if prog.Registers < 0 || prog.Registers > math.MaxUint16 ||
		uint64(len(prog.Instructions)) > math.MaxUint32 ||
		uint64(len(prog.Constants)) > math.MaxUint32 {
		err = ErrTooLarge
		return
	}

	var flags uint16
	if prog.Symbols != nil || len(prog.Labels) != 0 {
		flags |= FLAG_SYMBOLS
	}

	data = make([]byte, 0, HEADER_SIZE+len(prog.Instructions)*RECORD_SIZE)
	data = append(data, MAGIC...)
	data = binary.BigEndian.AppendUint16(data, VERSION)
	data = binary.BigEndian.AppendUint16(data, flags)
	data = binary.BigEndian.AppendUint16(data, uint16(prog.Registers))
	data = binary.BigEndian.AppendUint16(data, 0)
	data = binary.BigEndian.AppendUint32(data, uint32(len(prog.Instructions)))

	for _, inst := range prog.Instructions {
		if len(inst.Operands) > OPERAND_MAX {
			err = ErrTooLarge
			return
		}
		data = append(data, uint8(inst.Opcode))
		for n := range OPERAND_MAX {
			var op isa.Operand
			if n < len(inst.Operands) {
				op = inst.Operands[n]
			}
			data = append(data, uint8(op.Kind))
			data = binary.BigEndian.AppendUint64(data, operandPayload(op))
		}
	}

	data = binary.BigEndian.AppendUint32(data, uint32(len(prog.Constants)))
	for _, value := range prog.Constants {
		switch value.Kind() {
		case isa.KIND_NUMBER:
			number, _ := value.Number()
			data = append(data, TAG_NUMBER)
			data = binary.BigEndian.AppendUint64(data, math.Float64bits(number))
		case isa.KIND_TEXT:
			text, _ := value.Text()
			if uint64(len(text)) > math.MaxUint32 {
				err = ErrTooLarge
				return
			}
			data = append(data, TAG_TEXT)
			data = binary.BigEndian.AppendUint32(data, uint32(len(text)))
			data = append(data, text...)
		default:
			err = isa.ErrConstantEmpty
			return
		}
	}

	if flags&FLAG_SYMBOLS != 0 {
		table := symbolTable{Labels: prog.Labels}
		if prog.Symbols != nil {
			table.Source = prog.Symbols.Source
			table.Lines = prog.Symbols.Lines
		}
		var section []byte
		section, err = cborEncMode.Marshal(&table)
		if err != nil {
			return
		}
		data = binary.BigEndian.AppendUint32(data, uint32(len(section)))
		data = append(data, section...)
	}

	return
}

func operandPayload(op isa.Operand) uint64 {
	switch op.Kind {
	case isa.OPERAND_IMMEDIATE:
		return math.Float64bits(op.Immediate)
	case isa.OPERAND_NONE:
		return 0
	}
	return uint64(op.Index)
}
