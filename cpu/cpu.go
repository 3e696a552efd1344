package cpu

import (
	"fmt"
	"log"
)

// handler executes one opcode. It returns false to suppress the automatic
// advance of the program counter, which only taken jumps do.
type handler func(ctx *stepContext) (advance bool)

// _handlers is the dispatch table, indexed by opcode.
var _handlers = [OP_COUNT]handler{
	OP_NOP:  func(ctx *stepContext) bool { return true },
	OP_HALT: opHalt,
	OP_LDI:  opLdi,
	OP_MOV:  opMov,
	OP_ADD: aluOp(func(a, b int) int { return a + b },
		func(result int) bool { return result > 0xff }),
	OP_SUB: aluOp(func(a, b int) int { return a - b },
		func(result int) bool { return result < 0 }),
	OP_AND:   aluOp(func(a, b int) int { return a & b }, nil),
	OP_OR:    aluOp(func(a, b int) int { return a | b }, nil),
	OP_XOR:   aluOp(func(a, b int) int { return a ^ b }, nil),
	OP_NOT:   opNot,
	OP_SHL:   opShl,
	OP_SHR:   opShr,
	OP_CMP:   opCmp,
	OP_JMP:   condJump(func(cpu *Cpu) bool { return true }),
	OP_JZ:    condJump(func(cpu *Cpu) bool { return cpu.FlagZero }),
	OP_JNZ:   condJump(func(cpu *Cpu) bool { return !cpu.FlagZero }),
	OP_JC:    condJump(func(cpu *Cpu) bool { return cpu.FlagCarry }),
	OP_LOAD:  opLoad,
	OP_STORE: opStore,
	OP_PUSH:  opPush,
	OP_POP:   opPop,
	OP_OUT:   opOut,
	OP_IN:    opIn,
}

// FormatOut formats the output record of an OUT instruction.
func FormatOut(port uint8, value uint8) string {
	return fmt.Sprintf("OUT 0x%02x = 0x%02x (%08b)", port, value, value)
}

// FormatUnknown formats the output record of an unknown opcode.
func FormatUnknown(opcode string) string {
	return "Unknown: " + opcode
}

// Step executes the instruction at the program counter.
// Returns false if the CPU is halted or has run past the end of the program,
// either before or as a result of this step. A CPU that does not run leaves
// its state untouched.
func (cpu *Cpu) Step() bool {
	if !cpu.Running() {
		return false
	}

	inst := &cpu.Program[cpu.Pc]
	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, inst)
	}

	op, ok := LookupOp(inst.Opcode)
	if !ok {
		cpu.Output = append(cpu.Output, FormatUnknown(inst.Opcode))
		cpu.Pc++
		cpu.Ticks++
		return cpu.Running()
	}

	ctx := &stepContext{
		cpu:    cpu,
		args:   inst.Operands,
		labels: inst.Labels,
	}
	if _handlers[op](ctx) {
		cpu.Pc++
	}
	cpu.Ticks++

	return cpu.Running()
}

// Run steps the CPU until it stops running, or maxSteps instructions have
// been executed. A maxSteps of zero or less uses DEFAULT_MAX_STEPS.
// Returns the number of instructions executed.
func (cpu *Cpu) Run(maxSteps int) (steps int) {
	if maxSteps <= 0 {
		maxSteps = DEFAULT_MAX_STEPS
	}

	for steps < maxSteps && cpu.Running() {
		cpu.Step()
		steps++
	}

	return
}

func opHalt(ctx *stepContext) bool {
	ctx.cpu.Halted = true
	return true
}

// LDI Rd, imm
func opLdi(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	value, ok := ctx.value(1)
	if !ok {
		return true
	}
	ctx.cpu.Register[rd] = uint8(value & 0xff)
	return true
}

// MOV Rd, Rs
func opMov(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	rs, ok := ctx.reg(1)
	if !ok {
		return true
	}
	ctx.cpu.Register[rd] = ctx.cpu.Register[rs]
	return true
}

// aluOp builds a two operand ALU handler: Rd = fn(Rd, src).
// The zero flag always follows the result; the carry flag only if carry is set.
func aluOp(fn func(a, b int) int, carry func(result int) bool) handler {
	return func(ctx *stepContext) bool {
		rd, ok := ctx.reg(0)
		if !ok {
			return true
		}
		value, ok := ctx.value(1)
		if !ok {
			return true
		}
		cpu := ctx.cpu
		result := fn(int(cpu.Register[rd]), value)
		if carry != nil {
			cpu.FlagCarry = carry(result)
		}
		cpu.Register[rd] = uint8(result & 0xff)
		cpu.FlagZero = cpu.Register[rd] == 0
		return true
	}
}

// NOT Rd
func opNot(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	cpu := ctx.cpu
	cpu.Register[rd] = ^cpu.Register[rd]
	cpu.FlagZero = cpu.Register[rd] == 0
	return true
}

// SHL Rd
func opShl(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	cpu := ctx.cpu
	cpu.FlagCarry = (cpu.Register[rd] & 0x80) != 0
	cpu.Register[rd] <<= 1
	cpu.FlagZero = cpu.Register[rd] == 0
	return true
}

// SHR Rd
func opShr(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	cpu := ctx.cpu
	cpu.FlagCarry = (cpu.Register[rd] & 0x01) != 0
	cpu.Register[rd] >>= 1
	cpu.FlagZero = cpu.Register[rd] == 0
	return true
}

// CMP Rd, src
func opCmp(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	value, ok := ctx.value(1)
	if !ok {
		return true
	}
	cpu := ctx.cpu
	result := int(cpu.Register[rd]) - value
	cpu.FlagZero = (result & 0xff) == 0
	cpu.FlagCarry = result < 0
	return true
}

// condJump builds a jump handler, taken when cond is true.
func condJump(cond func(cpu *Cpu) bool) handler {
	return func(ctx *stepContext) bool {
		target, ok := ctx.value(0)
		if !ok || !cond(ctx.cpu) {
			return true
		}
		ctx.cpu.Pc = target
		return false
	}
}

// LOAD Rd, addr
func opLoad(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	addr, ok := ctx.value(1)
	if !ok {
		return true
	}
	ctx.cpu.Register[rd] = ctx.cpu.Memory[addr&0xff]
	return true
}

// STORE addr, Rs
func opStore(ctx *stepContext) bool {
	addr, ok := ctx.value(0)
	if !ok {
		return true
	}
	rs, ok := ctx.reg(1)
	if !ok {
		return true
	}
	ctx.cpu.Memory[addr&0xff] = ctx.cpu.Register[rs]
	return true
}

// PUSH Rs
func opPush(ctx *stepContext) bool {
	rs, ok := ctx.reg(0)
	if !ok {
		return true
	}
	ctx.cpu.Push(ctx.cpu.Register[rs])
	return true
}

// POP Rd
func opPop(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	ctx.cpu.Register[rd] = ctx.cpu.Pop()
	return true
}

// OUT port, Rs
// Ports are memory mapped, so the value is also stored in memory.
func opOut(ctx *stepContext) bool {
	addr, ok := ctx.value(0)
	if !ok {
		return true
	}
	rs, ok := ctx.reg(1)
	if !ok {
		return true
	}
	cpu := ctx.cpu
	port := uint8(addr & 0xff)
	value := cpu.Register[rs]
	cpu.Output = append(cpu.Output, FormatOut(port, value))
	cpu.Memory[port] = value
	if cpu.Observer != nil {
		cpu.Observer.PortWrite(port, value)
	}
	return true
}

// IN Rd, port
func opIn(ctx *stepContext) bool {
	rd, ok := ctx.reg(0)
	if !ok {
		return true
	}
	addr, ok := ctx.value(1)
	if !ok {
		return true
	}
	ctx.cpu.Register[rd] = ctx.cpu.Memory[addr&0xff]
	return true
}
