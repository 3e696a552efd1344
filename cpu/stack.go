package cpu

// The stack lives in memory, growing down from STACK_TOP. Sp addresses the
// next free byte, and both push and pop wrap modulo 256.

// Push writes a value at the stack pointer, then decrements it.
func (cpu *Cpu) Push(value uint8) {
	cpu.Memory[cpu.Sp] = value
	cpu.Sp--
}

// Pop increments the stack pointer, then reads the value there.
func (cpu *Cpu) Pop() (value uint8) {
	cpu.Sp++
	return cpu.Memory[cpu.Sp]
}

// Peek returns the most recently pushed value, if the stack is not empty.
func (cpu *Cpu) Peek() (value uint8, ok bool) {
	if cpu.StackDepth() == 0 {
		return
	}

	return cpu.Memory[cpu.Sp+1], true
}

// StackDepth is the number of bytes pushed below STACK_TOP.
// A stack that has wrapped past address 0 reports modulo 256.
func (cpu *Cpu) StackDepth() int {
	return int(uint8(STACK_TOP - cpu.Sp))
}
