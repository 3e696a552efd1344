package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTraceCommand() *cobra.Command {
	opts := &options{}

	traceCmd := &cobra.Command{
		Use:   "trace FILE",
		Short: "Run a program, printing the machine state after every instruction",
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

			stdout := cmd.OutOrStdout()

			for steps := 0; steps < opts.steps(); steps++ {
				inst, ok := emu.Program.Debug(emu.Cpu.Pc)
				if !ok {
					break
				}
				pc := emu.Cpu.Pc

				done, err := emu.Tick()
				if err != nil {
					return fmt.Errorf("%v: %w", path, err)
				}

				fmt.Fprintf(stdout, "%02x: %-18v %v\n", pc, inst.String(), traceLine(emu.Cpu))
				if done {
					break
				}
			}

			fmt.Fprintf(stdout, "%v\n", emu.Cpu.Status())
			dumpLatches(stdout, opts.latch)
			if opts.memory {
				dumpMemory(stdout, emu.Cpu)
			}

			return nil
		},
	}

	opts.addAsmFlags(traceCmd.Flags())
	opts.addRunFlags(traceCmd.Flags())

	return traceCmd
}
