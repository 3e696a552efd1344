package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ezrec/mcu8/cpu"
)

func newAsmCommand() *cobra.Command {
	opts := &options{}

	asmCmd := &cobra.Command{
		Use:   "asm FILE",
		Short: "Assemble a program and print its listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := args[0]

			emu, err := opts.newEmulator(path)
			if err != nil {
				return fmt.Errorf("%v: %w", path, err)
			}

			listing(cmd.OutOrStdout(), emu.Program)

			return nil
		},
	}

	opts.addAsmFlags(asmCmd.Flags())

	return asmCmd
}

// listing writes the program with its labels, followed by the label table.
func listing(w io.Writer, prog *cpu.Program) {
	for n, inst := range prog.Instructions {
		for _, label := range prog.LabelsAt(n) {
			fmt.Fprintf(w, "%v:\n", label)
		}
		fmt.Fprintf(w, "%02x %4d    %v\n", inst.Address, inst.LineNo, inst)
	}
	for _, label := range prog.LabelsAt(prog.Len()) {
		fmt.Fprintf(w, "%v:\n", label)
	}

	if len(prog.Labels) == 0 {
		return
	}

	fmt.Fprintf(w, "\n; labels\n")
	for name, addr := range prog.SortedLabels() {
		fmt.Fprintf(w, "; %-16v %02x\n", name, addr)
	}
}
