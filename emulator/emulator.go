// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/mcu8/cpu"
	"github.com/ezrec/mcu8/internal"
	mcuio "github.com/ezrec/mcu8/io"
)

var _emulator_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", cpu.REGISTER_COUNT),
}

// Emulator state. CPU + program + port devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Strict   bool         // If set, unknown opcodes are assembly and runtime errors.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape mcuio.Tape // Tape recording every port write.

	predefine  map[string]string
	channel    []mcuio.Channel
	channelErr error
}

var _ cpu.PortObserver = (*Emulator)(nil)

// NewEmulator creates a new emulator, with the tape attached.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Observer = emu
	emu.Attach(&emu.Tape)

	return
}

// Attach a port device. Every OUT executed is sent to every device.
func (emu *Emulator) Attach(channel mcuio.Channel) {
	emu.channel = append(emu.channel, channel)
}

// PortWrite forwards a port write to the attached devices.
// The first device error is reported by Tick.
func (emu *Emulator) PortWrite(port uint8, value uint8) {
	for _, channel := range emu.channel {
		err := channel.Send(port, value)
		if err != nil && emu.channelErr == nil {
			emu.channelErr = err
		}
	}
}

// Predefine adds an equate to the defines used by Assemble.
func (emu *Emulator) Predefine(equ string, value string) {
	if emu.predefine == nil {
		emu.predefine = map[string]string{equ: value}
	} else {
		emu.predefine[equ] = value
	}
}

// Defines returns an iterator over all of the defines.
// Later defines override earlier ones when predefined into the assembler.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{
		maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	}
	for _, channel := range emu.channel {
		if definer, ok := channel.(mcuio.Definer); ok {
			seqs = append(seqs, definer.Defines())
		}
	}

	seqs = append(seqs, maps.All(emu.predefine))

	return internal.Concat2(seqs...)
}

// Assemble parses source with the emulator defines predefined, then loads it.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{
		Verbose: emu.Verbose,
		Strict:  emu.Strict,
	}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Reset()

	return
}

// Reset the emulator, reloading the current program and rewinding devices.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.LoadProgram(emu.Program)

	for _, channel := range emu.channel {
		channel.Rewind()
	}
	emu.channelErr = nil
}

// LineNo returns the current line number for the executing instruction.
func (emu *Emulator) LineNo() int {
	inst, ok := emu.Program.Debug(emu.Cpu.Pc)
	if !ok {
		return 0
	}

	return inst.LineNo
}

// Tick performs a single instruction of the emulator.
// done is set once the CPU has halted or run out of program.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if !emu.Cpu.Running() {
		done = true
		return
	}

	opcode := emu.Cpu.Program[emu.Cpu.Pc].Opcode
	_, known := cpu.LookupOp(opcode)

	emu.channelErr = nil
	emu.Cpu.Step()
	done = !emu.Cpu.Running()

	if emu.channelErr != nil {
		err = emu.channelErr
		return
	}

	if emu.Strict && !known {
		err = ErrOpcode(opcode)
		return
	}

	return
}

// Run ticks the emulator until done, an error, or maxSteps instructions.
// A maxSteps of zero or less uses cpu.DEFAULT_MAX_STEPS.
func (emu *Emulator) Run(maxSteps int) (steps int, err error) {
	if maxSteps <= 0 {
		maxSteps = cpu.DEFAULT_MAX_STEPS
	}

	for steps < maxSteps && emu.Cpu.Running() {
		var done bool
		done, err = emu.Tick()
		steps++
		if err != nil || done {
			return
		}
	}

	return
}
