// Package cpu implements the microcontroller core and assembler for the mcu8 system.
//
// The CPU consists of a program counter indexing the installed instruction
// list, eight 8-bit general-purpose registers (R0-R7), zero and carry flags,
// and 256 bytes of memory shared by data, the downward-growing stack, and
// memory-mapped I/O ports. Every write wraps to 8 bits.
//
// The assembler turns line-oriented source into a Program whose instructions
// keep their operands as raw words; operands are resolved lazily by the CPU
// when each instruction executes. It supports labels, equates and
// compile-time expression evaluation.
//
// Malformed programs never fault the CPU: unresolvable operands read as zero,
// unknown opcodes are logged to the output and skipped, and instructions with
// missing operands do nothing.
package cpu
