package vm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/lpu/asm"
	"github.com/ezrec/lpu/io"
	"github.com/ezrec/lpu/isa"
	"github.com/ezrec/lpu/semantic"
)

// newMachine assembles a program, and attaches an output buffer.
func newMachine(t *testing.T, program ...string) (m *Machine, output *bytes.Buffer) {
	t.Helper()

	a := &asm.Assembler{Source: "test.aasm"}
	prog, err := a.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	m = NewMachine(prog)
	output = &bytes.Buffer{}
	m.Tape.Output = output
	return
}

// fakeAdapter answers every request by strategy, and records the requests.
type fakeAdapter struct {
	requests []semantic.Request
}

func (fa *fakeAdapter) Evaluate(ctx context.Context, req semantic.Request) (value isa.Value, err error) {
	fa.requests = append(fa.requests, req)

	switch req.Strategy {
	case semantic.STRATEGY_GENERATE:
		value = isa.Text(req.Operation.String() + "(" + strings.Join(req.Operands, ",") + ")")
	case semantic.STRATEGY_JUDGE:
		value = isa.Number(100)
	case semantic.STRATEGY_EMBED:
		value = isa.Number(42)
	}
	return
}

func TestMachine(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(&isa.Program{Registers: 8})
	assert.False(m.Verbose)
	assert.Equal(STATUS_RUNNING, m.Status())
	assert.Equal(0, m.PC())
	assert.Equal(8, m.Registers.Len())
	assert.Equal(isa.ROLE_USER, m.Role)
}

func TestMachine_Run(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"        LI  X1, 5",
		"        LI  X2, 5",
		"        BEQ X1, X2, DONE",
		"        OUT \"no\"",
		"DONE:   OUT \"yes\"",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("yes\n", output.String())
	assert.Equal(STATUS_HALTED, m.Status())
	assert.Equal(4, m.Steps())
	assert.Equal(1, m.Tape.Lines())
}

func TestMachine_Step(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t,
		"LI X1, 1",
		"INC X1, 2",
	)

	done, err := m.Step(context.Background())
	assert.NoError(err)
	assert.False(done)
	assert.Equal(1, m.PC())
	assert.Equal(2, m.LineNo())

	done, err = m.Step(context.Background())
	assert.NoError(err)
	assert.False(done)
	assert.Equal(2, m.PC())

	// Running off the end halts normally.
	done, err = m.Step(context.Background())
	assert.NoError(err)
	assert.True(done)
	assert.Equal(STATUS_HALTED, m.Status())

	value, ok := m.Register(1)
	assert.True(ok)
	assert.Equal(isa.Number(3), value)

	// Halted machines stay halted.
	done, err = m.Step(context.Background())
	assert.NoError(err)
	assert.True(done)
	assert.Equal(2, m.Steps())
}

func TestMachine_Exit(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"OUT 1",
		"EXIT",
		"OUT 2",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("1\n", output.String())
	assert.Equal(STATUS_HALTED, m.Status())
	assert.Equal(1, m.PC())
}

func TestMachine_Data(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"LI  X1, 2.5",
		"INC X1, 1",
		"MV  X2, X1",
		"DEC X2, 10",
		"LS  X3, \"text\"",
		"OUT X1",
		"OUT X2",
		"OUT X3",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("3.5\n-6.5\ntext\n", output.String())

	_, ok := m.Register(4)
	assert.False(ok)
}

func TestMachine_Branch(t *testing.T) {
	table := [](struct {
		name   string
		load   []string
		branch string
		taken  bool
	}){
		{"beq-self", []string{"LI X1, 7"}, "BEQ X1, X1, TAKEN", true},
		{"beq-self-text", []string{"LS X1, \"a\""}, "BEQ X1, X1, TAKEN", true},
		{"beq-text", []string{"LS X1, \"a\"", "LS X2, \"b\""}, "BEQ X1, X2, TAKEN", false},
		{"blt-self", []string{"LI X1, 7"}, "BLT X1, X1, TAKEN", false},
		{"ble-self", []string{"LI X1, 7"}, "BLE X1, X1, TAKEN", true},
		{"bgt-self", []string{"LI X1, 7"}, "BGT X1, X1, TAKEN", false},
		{"bge-self", []string{"LI X1, 7"}, "BGE X1, X1, TAKEN", true},
		{"blt", []string{"LI X1, 1"}, "BLT X1, 2, TAKEN", true},
		{"bgt", []string{"LI X1, 1"}, "BGT X1, 2, TAKEN", false},
		{"beq-literal", []string{"LI X1, 2"}, "BEQ 2, X1, TAKEN", true},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			program := append([]string{}, entry.load...)
			program = append(program,
				entry.branch,
				"OUT \"fallthrough\"",
				"EXIT",
				"TAKEN: OUT \"taken\"",
			)

			m, output := newMachine(t, program...)
			err := m.Run(context.Background())
			assert.NoError(err)
			if entry.taken {
				assert.Equal("taken\n", output.String())
			} else {
				assert.Equal("fallthrough\n", output.String())
			}
		})
	}
}

func TestMachine_Loop(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"        LI  X1, 0",
		"LOOP:   INC X1, 1",
		"        OUT X1",
		"        BLT X1, 3, LOOP",
		"        JMP END",
		"        OUT \"skipped\"",
		"END:    EXIT",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("1\n2\n3\n", output.String())
}

func TestMachine_Context(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"PSH \"one\"",
		"PSH 2",
		"SRL assistant",
		"PSH \"three\"",
		"PSH \"four\", user",
		"DRP",
		"POP X1",
		"POP X2",
		"POP X3",
		"OUT X1",
		"OUT X2",
		"OUT X3",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("three\n2\none\n", output.String())
	assert.True(m.Context.Empty())
	assert.Equal(isa.ROLE_ASSISTANT, m.Role)
}

func TestMachine_Roles(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t,
		"PSH \"one\"",
		"SRL assistant",
		"PSH \"two\"",
		"PSH \"three\", user",
		"SRL user",
		"PSH \"four\"",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal([]isa.Message{
		{Role: isa.ROLE_USER, Content: "one"},
		{Role: isa.ROLE_ASSISTANT, Content: "two"},
		{Role: isa.ROLE_USER, Content: "three"},
		{Role: isa.ROLE_USER, Content: "four"},
	}, m.Context.Messages())
}

func TestMachine_Snapshot(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"PSH \"a\"",
		"PSH \"b\"",
		"SNP X1",
		"DRP",
		"PSH \"c\"",
		"PSH \"d\"",
		"CLR",
		"RST X1",
		"POP X2",
		"OUT X2",
		"PSH \"e\"",
		"RST X1",
		"POP X3",
		"OUT X3",
	)

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("b\nb\n", output.String())
	assert.Equal([]isa.Message{{Role: isa.ROLE_USER, Content: "a"}}, m.Context.Messages())
	assert.Equal(1, m.Snapshots.Len())

	handle, ok := m.Register(1)
	assert.True(ok)
	assert.True(strings.HasPrefix(handle.String(), SNAPSHOT_PREFIX))
}

func TestMachine_LoadFile(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"LF  X1, \"notes/today.txt\"",
		"OUT X1",
	)
	m.Files = &io.Dir{FS: fstest.MapFS{
		"notes/today.txt": &fstest.MapFile{Data: []byte("remember the milk")},
	}}

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("remember the milk\n", output.String())
}

func TestMachine_Semantic(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"        PSH \"the quick brown fox\"",
		"        MOR X1, \"json\"",
		"        SIM X2, X1, \"fox\"",
		"        AUD X3, 5",
		"        OUT X1",
		"        OUT X2",
		"        OUT X3",
	)
	adapter := &fakeAdapter{}
	m.Adapter = adapter

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("MOR(json)\n42\n100\n", output.String())

	require.Len(t, adapter.requests, 3)

	mor := adapter.requests[0]
	assert.Equal(isa.OP_MOR, mor.Operation)
	assert.Equal([]isa.Message{{Role: isa.ROLE_USER, Content: "the quick brown fox"}}, mor.Messages)
	assert.Contains(mor.Prompt, "json")

	sim := adapter.requests[1]
	assert.Equal(semantic.STRATEGY_EMBED, sim.Strategy)
	assert.Equal([]string{"MOR(json)", "fox"}, sim.Operands)

	aud := adapter.requests[2]
	assert.Equal(semantic.STRATEGY_JUDGE, aud.Strategy)
	assert.Equal([]string{"5"}, aud.Operands)
}

func TestMachine_SemanticResult(t *testing.T) {
	errBackend := errors.New("backend down")

	table := [](struct {
		name    string
		source  string
		value   isa.Value
		err     error
		success bool
	}){
		{"generate-text", "MOR X1, \"a\"", isa.Text("ok"), nil, true},
		{"generate-number", "MOR X1, \"a\"", isa.Number(5), nil, false},
		{"judge-number", "AUD X1, \"a\"", isa.Number(0), nil, true},
		{"judge-text", "AUD X1, \"a\"", isa.Text("YES"), nil, false},
		{"judge-range", "EQV X1, \"a\", \"b\"", isa.Number(101), nil, false},
		{"embed-negative", "SIM X1, \"a\", \"b\"", isa.Number(-1), nil, false},
		{"embed-empty", "SIM X1, \"a\", \"b\"", isa.Value{}, nil, false},
		{"error", "DST X1, \"a\"", isa.Value{}, errBackend, false},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			m, _ := newMachine(t, entry.source)
			m.Adapter = semantic.AdapterFunc(func(ctx context.Context, req semantic.Request) (isa.Value, error) {
				return entry.value, entry.err
			})

			err := m.Run(context.Background())
			if entry.success {
				assert.NoError(err)
				value, ok := m.Register(1)
				assert.True(ok)
				assert.Equal(entry.value, value)
				return
			}

			assert.ErrorIs(err, ErrSemanticBackendFailure)
			if entry.err != nil {
				assert.ErrorIs(err, entry.err)
			}
			assert.Equal(STATUS_FAULTED, m.Status())
			_, ok := m.Register(1)
			assert.False(ok)
		})
	}
}

func TestMachine_Fault(t *testing.T) {
	invalid := func(insts ...isa.Instruction) *isa.Program {
		return &isa.Program{Registers: 8, Instructions: insts}
	}
	exit := isa.Instruction{Opcode: isa.OP_EXIT}

	table := [](struct {
		name    string
		program []string
		prog    *isa.Program
		address int
		err     error
	}){
		{"pop-empty", []string{"POP X1"}, nil, 0, ErrStackUnderflow},
		{"drop-empty", []string{"PSH 1", "DRP", "DRP"}, nil, 2, ErrStackUnderflow},
		{"uninitialized", []string{"OUT X1"}, nil, 0, ErrUninitializedRegister},
		{"uninitialized-mv", []string{"MV X1, X2"}, nil, 0, ErrUninitializedRegister},
		{"inc-text", []string{"LS X1, \"a\"", "INC X1, 1"}, nil, 1, ErrTypeMismatch},
		{"inc-uninitialized", []string{"INC X1, 1"}, nil, 0, ErrUninitializedRegister},
		{"beq-mixed", []string{"LI X1, 1", "LS X2, \"1\"", "BEQ X1, X2, L", "L: EXIT"}, nil, 2, ErrTypeMismatch},
		{"blt-text", []string{"LS X1, \"a\"", "BLT X1, X1, L", "L: EXIT"}, nil, 1, ErrTypeMismatch},
		{"rst-number", []string{"LI X1, 3", "RST X1"}, nil, 1, ErrTypeMismatch},
		{"rst-unknown", []string{"RST \"snapshot:nope\""}, nil, 0, ErrUnknownSnapshot},
		{"lf-no-files", []string{"LF X1, \"a.txt\""}, nil, 0, ErrIoFailure},
		{"semantic-no-adapter", []string{"MOR X1, \"a\""}, nil, 0, ErrSemanticBackendFailure},
		{"no-operands", nil, invalid(isa.Instruction{Opcode: isa.OP_LI}), 0, isa.ErrOperandCount},
		{"operand-kind", nil, invalid(exit, isa.Instruction{Opcode: isa.OP_LI, Operands: []isa.Operand{isa.ImmediateOperand(1), isa.RegisterOperand(1)}}), 1, isa.ErrOperandKind},
		{"register-range", nil, invalid(exit, exit, isa.Instruction{Opcode: isa.OP_POP, Operands: []isa.Operand{isa.RegisterOperand(9)}}), 2, isa.ErrInvalidRegister},
		{"unknown-opcode", nil, invalid(isa.Instruction{Opcode: isa.Opcode(0xff)}), 0, isa.ErrOpcodeUnknown},
		{"register-count", nil, &isa.Program{Registers: 4}, 0, isa.ErrRegisterCount},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			var m *Machine
			var output *bytes.Buffer
			if entry.prog != nil {
				m = NewMachine(entry.prog)
				output = &bytes.Buffer{}
				m.Tape.Output = output
			} else {
				m, output = newMachine(t, entry.program...)
			}

			var err error
			assert.NotPanics(func() { err = m.Run(context.Background()) })
			assert.ErrorIs(err, entry.err)
			assert.Equal(STATUS_FAULTED, m.Status())
			assert.Equal(entry.address, m.PC())
			assert.Equal(err, m.Fault())
			assert.Empty(output.String())

			var rt_err *ErrRuntime
			if assert.ErrorAs(err, &rt_err) {
				assert.Equal(entry.address, rt_err.Address)
				if entry.prog == nil {
					assert.Equal(entry.address+1, rt_err.Line)
				} else {
					assert.Equal(0, rt_err.Line)
				}
				if entry.address < len(m.Program.Instructions) {
					assert.Equal(m.Program.Instructions[entry.address].Opcode, rt_err.Opcode)
				}
			}

			// Faulted machines stay faulted.
			done, again := m.Step(context.Background())
			assert.True(done)
			assert.Equal(err, again)
		})
	}
}

func TestMachine_LoadFileMissing(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "LF X1, \"missing.txt\"")
	m.Files = &io.Dir{FS: fstest.MapFS{}}

	err := m.Run(context.Background())
	assert.ErrorIs(err, ErrIoFailure)
}

func TestMachine_StepLimit(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "SPIN: JMP SPIN")
	m.StepLimit = 10

	err := m.Run(context.Background())
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(10, m.Steps())
	assert.Equal(STATUS_FAULTED, m.Status())
}

func TestMachine_Cancel(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "SPIN: JMP SPIN")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, m.Steps())
}

func TestMachine_Reset(t *testing.T) {
	assert := assert.New(t)

	m, output := newMachine(t,
		"PSH \"a\"",
		"SNP X1",
		"SRL assistant",
		"OUT X1",
	)

	assert.NoError(m.Run(context.Background()))
	assert.Equal(STATUS_HALTED, m.Status())
	assert.Equal(1, m.Tape.Lines())

	m.Reset()
	assert.Equal(STATUS_RUNNING, m.Status())
	assert.Equal(0, m.Tape.Lines())
	assert.Equal(0, m.PC())
	assert.True(m.Context.Empty())
	assert.Equal(0, m.Snapshots.Len())
	assert.Equal(isa.ROLE_USER, m.Role)
	_, ok := m.Register(1)
	assert.False(ok)

	assert.NoError(m.Run(context.Background()))
	assert.Equal(1, m.Tape.Lines())
	assert.Equal(2, strings.Count(output.String(), SNAPSHOT_PREFIX))
}

func TestMachine_NoProgram(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(nil)
	err := m.Run(context.Background())
	assert.ErrorIs(err, ErrNoProgram)
	assert.Equal(STATUS_FAULTED, m.Status())
}

func TestMachine_Immediate(t *testing.T) {
	assert := assert.New(t)

	prog := &isa.Program{
		Registers: 8,
		Instructions: []isa.Instruction{
			{Opcode: isa.OP_LI, Operands: []isa.Operand{isa.RegisterOperand(1), isa.ImmediateOperand(4)}},
			{Opcode: isa.OP_INC, Operands: []isa.Operand{isa.RegisterOperand(1), isa.ImmediateOperand(0.5)}},
			{Opcode: isa.OP_OUT, Operands: []isa.Operand{isa.RegisterOperand(1)}},
		},
	}
	require.NoError(t, prog.Validate())

	m := NewMachine(prog)
	output := &bytes.Buffer{}
	m.Tape.Output = output

	err := m.Run(context.Background())
	assert.NoError(err)
	assert.Equal("4.5\n", output.String())
}
