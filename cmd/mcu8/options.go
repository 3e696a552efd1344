package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ezrec/mcu8/cpu"
	"github.com/ezrec/mcu8/emulator"
	mcuio "github.com/ezrec/mcu8/io"
)

// options shared by the subcommands.
type options struct {
	verbose  bool
	strict   bool
	defines  map[string]string
	maxSteps int
	output   string
	watch    []string
	memory   bool
	latches  map[string]string

	latch []*mcuio.Latch // Latches attached by newEmulator, sorted by name.
}

// addAsmFlags registers the assembler flags.
func (opts *options) addAsmFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose mode")
	fs.BoolVar(&opts.strict, "strict", false, "Reject unknown opcodes, bad operands and missing labels")
	fs.StringToStringVarP(&opts.defines, "define", "D", nil, "Predefine an equate, NAME=VALUE")
}

// addRunFlags registers the execution flags.
func (opts *options) addRunFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&opts.maxSteps, "max-steps", "n", cpu.DEFAULT_MAX_STEPS, "Maximum instructions to execute, 0 for the default")
	fs.StringVarP(&opts.output, "output", "o", "-", "Port write records output")
	fs.StringSliceVar(&opts.watch, "watch", nil, "Ports to record (default all)")
	fs.BoolVar(&opts.memory, "memory", false, "Dump memory after execution")
	fs.StringToStringVar(&opts.latches, "latch", nil, "Latch the writes to a port, NAME=PORT; NAME becomes an equate")
}

// steps is the step budget, as emulator.Run interprets it.
func (opts *options) steps() int {
	if opts.maxSteps <= 0 {
		return cpu.DEFAULT_MAX_STEPS
	}
	return opts.maxSteps
}

// ports parses the --watch ports.
func (opts *options) ports() (ports []uint8, err error) {
	for _, word := range opts.watch {
		var port uint64
		port, err = strconv.ParseUint(word, 0, 8)
		if err != nil {
			return
		}
		ports = append(ports, uint8(port))
	}
	return
}

// openOutput opens the records output. "-" is the command's standard output.
func (opts *options) openOutput(cmd *cobra.Command) (out io.Writer, closer func() error, err error) {
	if opts.output == "-" {
		out = cmd.OutOrStdout()
		closer = func() error { return nil }
		return
	}

	ouf, err := os.Create(opts.output)
	if err != nil {
		return
	}

	out = ouf
	closer = ouf.Close
	return
}

// closeOutput closes the records output, reporting its error unless one
// is already set.
func closeOutput(closer func() error, err *error) {
	cerr := closer()
	if *err == nil {
		*err = cerr
	}
}

// attachLatches attaches the --latch devices to the emulator.
func (opts *options) attachLatches(emu *emulator.Emulator) (err error) {
	opts.latch = nil
	for _, name := range slices.Sorted(maps.Keys(opts.latches)) {
		var port uint64
		port, err = strconv.ParseUint(opts.latches[name], 0, 8)
		if err != nil {
			err = fmt.Errorf("--latch %v: %w", name, err)
			return
		}
		latch := &mcuio.Latch{Name: name, Port: uint8(port)}
		emu.Attach(latch)
		opts.latch = append(opts.latch, latch)
	}
	return
}

// newEmulator assembles a source file into a new emulator.
func (opts *options) newEmulator(path string) (emu *emulator.Emulator, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	emu = emulator.NewEmulator()
	emu.Verbose = opts.verbose
	emu.Strict = opts.strict
	for name, value := range opts.defines {
		emu.Predefine(name, value)
	}

	err = opts.attachLatches(emu)
	if err != nil {
		return
	}

	err = emu.Assemble(inf)
	if err != nil {
		return
	}

	return
}
