package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	opts := &options{}

	runCmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Assemble and run a program until it halts or exhausts its step budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			path := args[0]

			emu, err := opts.newEmulator(path)
			if err != nil {
				return fmt.Errorf("%v: %w", path, err)
			}

			emu.Tape.Ports, err = opts.ports()
			if err != nil {
				return fmt.Errorf("--watch: %w", err)
			}

			out, closer, err := opts.openOutput(cmd)
			if err != nil {
				return err
			}
			defer closeOutput(closer, &err)
			emu.Tape.Output = out

			steps, err := emu.Run(opts.steps())
			if err != nil {
				return fmt.Errorf("%v: %w", path, err)
			}

			for _, record := range emu.Cpu.Output {
				if !strings.HasPrefix(record, "OUT ") {
					log.Printf("%v: %v", path, record)
				}
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "%v after %d steps\n", emu.Cpu.Status(), steps)
			dumpCpu(stdout, emu.Cpu)
			dumpLatches(stdout, opts.latch)
			if opts.memory {
				dumpMemory(stdout, emu.Cpu)
			}

			return nil
		},
	}

	opts.addAsmFlags(runCmd.Flags())
	opts.addRunFlags(runCmd.Flags())

	return runCmd
}
