package main

import (
	"fmt"
	"io"

	"github.com/ezrec/mcu8/cpu"
	mcuio "github.com/ezrec/mcu8/io"
)

// dumpCpu writes the registers, flags and stack of the CPU.
func dumpCpu(w io.Writer, c *cpu.Cpu) {
	regs := []string{
		"pc", "sp", "zero", "carry",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
		"stack", "ticks",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02x", c.Pc)
		case "sp":
			strval = fmt.Sprintf("%02x", c.Sp)
		case "zero":
			strval = fmt.Sprintf("%v", c.FlagZero)
		case "carry":
			strval = fmt.Sprintf("%v", c.FlagCarry)
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7":
			val := c.Register[reg[1]-'0']
			strval = fmt.Sprintf("%02x %08b %3d", val, val, val)
		case "stack":
			val, ok := c.Peek()
			if ok {
				strval = fmt.Sprintf("%02x (depth %d)", val, c.StackDepth())
			} else {
				strval = "--"
			}
		case "ticks":
			strval = fmt.Sprintf("%d", c.Ticks)
		}
		fmt.Fprintf(w, "% 6s: %v\n", reg, strval)
	}
}

// dumpMemory writes memory as 16 rows of 16 bytes.
func dumpMemory(w io.Writer, c *cpu.Cpu) {
	for row := 0; row < cpu.MEMORY_SIZE; row += 16 {
		fmt.Fprintf(w, "%02x:", row)
		for _, val := range c.Memory[row : row+16] {
			fmt.Fprintf(w, " %02x", val)
		}
		fmt.Fprintln(w)
	}
}

// traceLine summarises the CPU state on a single line.
func traceLine(c *cpu.Cpu) string {
	flags := []byte("--")
	if c.FlagZero {
		flags[0] = 'Z'
	}
	if c.FlagCarry {
		flags[1] = 'C'
	}

	return fmt.Sprintf("%02x %02x %02x %02x %02x %02x %02x %02x %s sp=%02x",
		c.Register[0], c.Register[1], c.Register[2], c.Register[3],
		c.Register[4], c.Register[5], c.Register[6], c.Register[7],
		flags, c.Sp)
}

// dumpLatches writes the values captured by each latch, oldest first.
func dumpLatches(w io.Writer, latches []*mcuio.Latch) {
	for _, latch := range latches {
		fmt.Fprintf(w, "%v (%#x):", latch.Name, latch.Port)
		for _, val := range latch.Values {
			fmt.Fprintf(w, " %02x", val)
		}
		fmt.Fprintln(w)
	}
}
