// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"context"
	"errors"
	"log"

	"github.com/ezrec/lpu/io"
	"github.com/ezrec/lpu/isa"
	"github.com/ezrec/lpu/semantic"
)

// Status is the run state of a machine.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_RUNNING = Status(0) // running
	STATUS_HALTED  = Status(1) // halted
	STATUS_FAULTED = Status(2) // faulted
)

// Machine state. Program + registers + context stack + snapshots.
type Machine struct {
	Verbose   bool             // If set, traces every executed instruction.
	StepLimit int              // Maximum instructions per run. Zero is unlimited.
	Adapter   semantic.Adapter // Semantic backend. Required by semantic opcodes.
	Files     io.Files         // File access. Required by LF.
	Tape      io.Tape          // Output of OUT.

	Program   *isa.Program // Reference to the running program.
	Registers RegisterFile // Register file, X1 through Xn.
	Context   ContextStack // Conversational context.
	Snapshots Snapshots    // Saved context stacks.
	Role      isa.Role     // Role of PSH, when none is explicit.

	pc        int
	steps     int
	status    Status
	fault     error
	validated bool
}

// NewMachine creates a machine, ready to run a program.
func NewMachine(prog *isa.Program) (m *Machine) {
	m = &Machine{
		Program: prog,
	}

	m.Reset()

	return
}

// Reset returns the machine to its initial state. The program, adapter,
// files and output writer are kept; the output line count is cleared.
func (m *Machine) Reset() {
	registers := isa.DEFAULT_REGISTERS
	if m.Program != nil {
		registers = m.Program.Registers
	}

	m.Registers = NewRegisterFile(registers)
	m.Context.Reset()
	m.Snapshots.Reset()
	m.Role = isa.ROLE_USER
	m.Tape.Reset()
	m.pc = 0
	m.steps = 0
	m.status = STATUS_RUNNING
	m.fault = nil
	m.validated = false
}

// PC returns the program counter.
func (m *Machine) PC() int {
	return m.pc
}

// Status returns the run state.
func (m *Machine) Status() Status {
	return m.status
}

// Fault returns the error that faulted the machine, if any.
func (m *Machine) Fault() error {
	return m.fault
}

// Steps returns the number of instructions executed since a reset.
func (m *Machine) Steps() int {
	return m.steps
}

// Register returns the content of register Xn.
func (m *Machine) Register(n int) (value isa.Value, ok bool) {
	value, err := m.Registers.Get(n)
	ok = err == nil
	return
}

// LineNo returns the source line of the current instruction, or zero.
func (m *Machine) LineNo() int {
	if m.Program == nil {
		return 0
	}

	line, _ := m.Program.Line(m.pc)
	return line
}

// Step executes a single instruction. Once the machine has halted or
// faulted, done is set and no further instructions are executed.
func (m *Machine) Step(ctx context.Context) (done bool, err error) {
	switch m.status {
	case STATUS_HALTED:
		done = true
		return
	case STATUS_FAULTED:
		done = true
		err = m.fault
		return
	}

	if m.Program == nil {
		m.status = STATUS_FAULTED
		m.fault = ErrNoProgram
		done = true
		err = m.fault
		return
	}

	if !m.validated {
		err = m.validate()
		if err != nil {
			done = true
			return
		}
	}

	if m.pc < 0 || m.pc >= len(m.Program.Instructions) {
		m.status = STATUS_HALTED
		done = true
		return
	}

	inst := m.Program.Instructions[m.pc]
	defer func() {
		if err != nil {
			line, _ := m.Program.Line(m.pc)
			err = &ErrRuntime{Address: m.pc, Opcode: inst.Opcode, Line: line, Err: err}
			m.status = STATUS_FAULTED
			m.fault = err
			done = true
		}
	}()

	if m.StepLimit > 0 && m.steps >= m.StepLimit {
		err = ErrStepLimit
		return
	}

	err = ctx.Err()
	if err != nil {
		return
	}

	if m.Verbose {
		log.Printf("%03d: %v", m.pc, m.Program.Format(inst))
	}

	next, halt, err := m.execute(ctx, inst)
	if err != nil {
		return
	}

	m.steps++

	if halt {
		m.status = STATUS_HALTED
		done = true
		return
	}

	m.pc = next
	return
}

// validate checks the program once per reset. An invalid program faults
// at the address of its first invalid instruction.
func (m *Machine) validate() (err error) {
	err = m.Program.Validate()
	if err == nil {
		m.validated = true
		return
	}

	rt_err := &ErrRuntime{Address: m.pc, Err: err}
	var inst_err *isa.ErrInstruction
	if errors.As(err, &inst_err) {
		rt_err.Address = inst_err.Address
		rt_err.Opcode = m.Program.Instructions[inst_err.Address].Opcode
		rt_err.Line, _ = m.Program.Line(inst_err.Address)
		m.pc = inst_err.Address
	}

	m.status = STATUS_FAULTED
	m.fault = rt_err
	err = rt_err
	return
}

// Run executes instructions until the machine halts or faults.
func (m *Machine) Run(ctx context.Context) (err error) {
	for {
		var done bool
		done, err = m.Step(ctx)
		if done || err != nil {
			return
		}
	}
}

// value reads a register, immediate or constant operand.
func (m *Machine) value(op isa.Operand) (value isa.Value, err error) {
	if op.Kind == isa.OPERAND_REGISTER {
		return m.Registers.Get(op.Index)
	}

	value, ok := m.Program.Literal(op)
	if !ok {
		err = ErrTypeMismatch
	}
	return
}

func (m *Machine) number(op isa.Operand) (number float64, err error) {
	value, err := m.value(op)
	if err != nil {
		return
	}

	number, ok := value.Number()
	if !ok {
		err = ErrTypeMismatch
	}
	return
}

func (m *Machine) text(op isa.Operand) (text string, err error) {
	value, err := m.value(op)
	if err != nil {
		return
	}

	text, ok := value.Text()
	if !ok {
		err = ErrTypeMismatch
	}
	return
}

// compare evaluates the condition of a branch opcode.
func (m *Machine) compare(code isa.Opcode, a_op, b_op isa.Operand) (taken bool, err error) {
	a, err := m.value(a_op)
	if err != nil {
		return
	}
	b, err := m.value(b_op)
	if err != nil {
		return
	}

	if code == isa.OP_BEQ {
		if a.Kind() != b.Kind() {
			err = ErrTypeMismatch
			return
		}
		taken = a.Equal(b)
		return
	}

	a_num, a_ok := a.Number()
	b_num, b_ok := b.Number()
	if !a_ok || !b_ok {
		err = ErrTypeMismatch
		return
	}

	switch code {
	case isa.OP_BLT:
		taken = a_num < b_num
	case isa.OP_BLE:
		taken = a_num <= b_num
	case isa.OP_BGT:
		taken = a_num > b_num
	case isa.OP_BGE:
		taken = a_num >= b_num
	}

	return
}

// evaluate calls the adapter for a semantic opcode, and checks its result.
func (m *Machine) evaluate(ctx context.Context, inst isa.Instruction) (value isa.Value, err error) {
	operands := make([]string, 0, len(inst.Operands)-1)
	for _, op := range inst.Operands[1:] {
		var arg isa.Value
		arg, err = m.value(op)
		if err != nil {
			return
		}
		operands = append(operands, arg.String())
	}

	req, err := semantic.NewRequest(inst.Opcode, m.Context.Messages(), operands...)
	if err != nil {
		err = errors.Join(ErrSemanticBackendFailure, err)
		return
	}

	if m.Adapter == nil {
		err = ErrSemanticBackendFailure
		return
	}

	value, err = m.Adapter.Evaluate(ctx, req)
	if err != nil {
		err = errors.Join(ErrSemanticBackendFailure, err)
		value = isa.Value{}
		return
	}

	switch req.Strategy {
	case semantic.STRATEGY_GENERATE:
		_, ok := value.Text()
		if !ok {
			err = errors.Join(ErrSemanticBackendFailure, ErrSemanticResult)
		}
	default:
		number, ok := value.Number()
		if !ok || !(number >= 0 && number <= 100) {
			err = errors.Join(ErrSemanticBackendFailure, ErrSemanticResult)
		}
	}

	if err != nil {
		value = isa.Value{}
	}
	return
}

// execute runs a single instruction, and returns the next program counter.
func (m *Machine) execute(ctx context.Context, inst isa.Instruction) (next int, halt bool, err error) {
	next = m.pc + 1
	ops := inst.Operands

	switch inst.Opcode {
	case isa.OP_LI:
		var number float64
		number, err = m.number(ops[1])
		if err == nil {
			err = m.Registers.Set(ops[0].Index, isa.Number(number))
		}
	case isa.OP_LS:
		var text string
		text, err = m.text(ops[1])
		if err == nil {
			err = m.Registers.Set(ops[0].Index, isa.Text(text))
		}
	case isa.OP_LF:
		var path, content string
		path, err = m.text(ops[1])
		if err != nil {
			return
		}
		if m.Files == nil {
			err = ErrIoFailure
			return
		}
		content, err = m.Files.ReadFile(path)
		if err != nil {
			err = errors.Join(ErrIoFailure, err)
			return
		}
		err = m.Registers.Set(ops[0].Index, isa.Text(content))
	case isa.OP_MV:
		var value isa.Value
		value, err = m.value(ops[1])
		if err == nil {
			err = m.Registers.Set(ops[0].Index, value)
		}
	case isa.OP_INC, isa.OP_DEC:
		var current, delta float64
		current, err = m.number(ops[0])
		if err != nil {
			return
		}
		delta, err = m.number(ops[1])
		if err != nil {
			return
		}
		if inst.Opcode == isa.OP_DEC {
			delta = -delta
		}
		err = m.Registers.Set(ops[0].Index, isa.Number(current+delta))
	case isa.OP_BEQ, isa.OP_BLT, isa.OP_BLE, isa.OP_BGT, isa.OP_BGE:
		var taken bool
		taken, err = m.compare(inst.Opcode, ops[0], ops[1])
		if err == nil && taken {
			next = ops[2].Index
		}
	case isa.OP_JMP:
		next = ops[0].Index
	case isa.OP_EXIT:
		halt = true
	case isa.OP_OUT:
		var value isa.Value
		value, err = m.value(ops[0])
		if err != nil {
			return
		}
		err = m.Tape.Send(value.String())
		if err != nil {
			err = errors.Join(ErrIoFailure, err)
		}
	case isa.OP_PSH:
		var value isa.Value
		value, err = m.value(ops[0])
		if err != nil {
			return
		}
		role := m.Role
		if len(ops) > 1 {
			role = ops[1].Role()
		}
		m.Context.Push(isa.Message{Role: role, Content: value.String()})
	case isa.OP_POP:
		msg, ok := m.Context.Pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		err = m.Registers.Set(ops[0].Index, isa.Text(msg.Content))
	case isa.OP_DRP:
		_, ok := m.Context.Pop()
		if !ok {
			err = ErrStackUnderflow
		}
	case isa.OP_CLR:
		m.Context.Reset()
	case isa.OP_SNP:
		handle := m.Snapshots.Save(&m.Context)
		err = m.Registers.Set(ops[0].Index, isa.Text(handle))
	case isa.OP_RST:
		var handle string
		handle, err = m.text(ops[0])
		if err != nil {
			return
		}
		stack, ok := m.Snapshots.Restore(handle)
		if !ok {
			err = ErrUnknownSnapshot
			return
		}
		m.Context = stack
	case isa.OP_SRL:
		m.Role = ops[0].Role()
	default:
		if inst.Opcode.Class() != isa.CLASS_SEMANTIC {
			err = isa.ErrOpcodeUnknown
			return
		}
		var value isa.Value
		value, err = m.evaluate(ctx, inst)
		if err == nil {
			err = m.Registers.Set(ops[0].Index, value)
		}
	}

	return
}
