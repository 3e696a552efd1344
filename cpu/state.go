package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"
)

const (
	REGISTER_COUNT    = 8    // General purpose registers, R0-R7.
	MEMORY_SIZE       = 256  // Bytes of addressable memory.
	STACK_TOP         = 0xff // Initial stack pointer.
	DEFAULT_MAX_STEPS = 500  // Step budget used when Run is given none.
)

// Memory mapped I/O ports of the reference board.
const (
	PORT_PORTB = 0x25 // [NC|NC|LED|BUZ|BTNA|BTNB|TX|RX]
	PORT_DDRC  = 0x27 // [SDA|SCL|CS|MOSI|MISO|SCLK|INT0|INT1]
	PORT_TCCR0 = 0x2a // Timer/Counter control.
	PORT_ADMUX = 0x2d // ADC multiplexer.
	PORT_SREG  = 0x30 // Status register.
)

var _cpu_defines = map[string]string{
	"PORTB":       fmt.Sprintf("%#x", PORT_PORTB),
	"DDRC":        fmt.Sprintf("%#x", PORT_DDRC),
	"TCCR0":       fmt.Sprintf("%#x", PORT_TCCR0),
	"ADMUX":       fmt.Sprintf("%#x", PORT_ADMUX),
	"SREG":        fmt.Sprintf("%#x", PORT_SREG),
	"STACK_TOP":   fmt.Sprintf("%#x", STACK_TOP),
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
}

// Status is the run state of the CPU.
type Status int

const (
	STATUS_RUNNING        = Status(0) // running
	STATUS_HALTED         = Status(1) // halted
	STATUS_OUT_OF_PROGRAM = Status(2) // out of program
)

func (st Status) String() string {
	switch st {
	case STATUS_RUNNING:
		return "running"
	case STATUS_HALTED:
		return "halted"
	case STATUS_OUT_OF_PROGRAM:
		return "out of program"
	}
	return fmt.Sprintf("Status(%d)", int(st))
}

// PortObserver is notified of every OUT instruction executed.
type PortObserver interface {
	PortWrite(port uint8, value uint8)
}

// Cpu is the machine state of the microcontroller. It is only mutated by
// Step, Reset and program loading.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register  [REGISTER_COUNT]uint8 // Register bank.
	Pc        int                   // Index of the next instruction to execute.
	Sp        uint8                 // Stack pointer, grows down.
	FlagZero  bool                  // Zero flag.
	FlagCarry bool                  // Carry (or borrow) flag.
	Memory    [MEMORY_SIZE]uint8    // Data, stack and I/O ports.
	Halted    bool                  // Set by HALT, never cleared except by Reset.
	Output    []string              // OUT records and diagnostics, in execution order.
	Program   []Instruction         // Installed program.

	Ticks int // Instructions executed since reset.

	Observer PortObserver // Optional observer of port writes, kept across resets.
}

// NewCpu creates a new CPU in its reset state, with no program.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Sp: STACK_TOP,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers, flags, memory and output.
// - Sets the stack pointer to STACK_TOP and the program counter to 0.
// - Zeros statistics counters.
//
// The installed program is kept, so a program can be rerun from the start.
// Use Install(nil) to remove it; Load and LoadProgram replace it.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Pc = 0
	cpu.Sp = STACK_TOP
	cpu.FlagZero = false
	cpu.FlagCarry = false
	cpu.Halted = false
	cpu.Output = nil
	cpu.Ticks = 0
}

// Install replaces the program, without resetting the CPU.
func (cpu *Cpu) Install(prog *Program) {
	if prog == nil {
		cpu.Program = nil
		return
	}

	cpu.Program = prog.Instructions
}

// Load resets the CPU, assembles the source, and installs the program.
// The first bytes of memory are seeded with 1, 2, 3... one per instruction.
func (cpu *Cpu) Load(source string) (prog *Program, err error) {
	cpu.Reset()
	cpu.Program = nil

	asm := &Assembler{Verbose: cpu.Verbose}
	prog, err = asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	cpu.LoadProgram(prog)

	return
}

// LoadProgram resets the CPU and installs an already assembled program,
// seeding memory as Load does.
func (cpu *Cpu) LoadProgram(prog *Program) {
	cpu.Reset()
	cpu.Install(prog)

	for n := range min(len(cpu.Program), MEMORY_SIZE) {
		cpu.Memory[n] = uint8(n + 1)
	}
}

// Status returns the run state of the CPU.
func (cpu *Cpu) Status() Status {
	switch {
	case cpu.Halted:
		return STATUS_HALTED
	case cpu.Pc < 0 || cpu.Pc >= len(cpu.Program):
		return STATUS_OUT_OF_PROGRAM
	}
	return STATUS_RUNNING
}

// Running returns true if the next Step will execute an instruction.
func (cpu *Cpu) Running() bool {
	return cpu.Status() == STATUS_RUNNING
}
