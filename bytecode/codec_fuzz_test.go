package bytecode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// FuzzDecode ensures the decoder never panics, and that anything it
// accepts without a symbol section encodes back to the same image.
func FuzzDecode(f *testing.F) {
	prog := assemble(f, sampleSource...)
	data, err := Encode(prog)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(data)
	f.Add([]byte(MAGIC))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		prog, err := Decode(data)
		if err != nil {
			if prog != nil {
				t.Fatalf("partial program on error %v", err)
			}
			return
		}

		reencoded, err := Encode(prog)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}

		flags := binary.BigEndian.Uint16(data[len(MAGIC)+2:])
		if flags&FLAG_SYMBOLS == 0 && !bytes.Equal(data, reencoded) {
			t.Fatalf("re-encode: image differs\n%x\n%x", data, reencoded)
		}
	})
}
