package cpu

import (
	"strings"
)

// CodeOp is a decoded instruction mnemonic.
type CodeOp int

const (
	OP_UNKNOWN = CodeOp(iota) // ?
	OP_NOP                    // NOP
	OP_HALT                   // HALT
	OP_LDI                    // LDI
	OP_MOV                    // MOV
	OP_ADD                    // ADD
	OP_SUB                    // SUB
	OP_AND                    // AND
	OP_OR                     // OR
	OP_XOR                    // XOR
	OP_NOT                    // NOT
	OP_SHL                    // SHL
	OP_SHR                    // SHR
	OP_CMP                    // CMP
	OP_JMP                    // JMP
	OP_JZ                     // JZ
	OP_JNZ                    // JNZ
	OP_JC                     // JC
	OP_LOAD                   // LOAD
	OP_STORE                  // STORE
	OP_PUSH                   // PUSH
	OP_POP                    // POP
	OP_OUT                    // OUT
	OP_IN                     // IN
	OP_COUNT                  // Number of opcodes, including OP_UNKNOWN.
)

// opInfo describes the assembly syntax of an opcode.
type opInfo struct {
	name string
	args int
}

var _opInfo = [OP_COUNT]opInfo{
	OP_UNKNOWN: {"?", 0},
	OP_NOP:     {"NOP", 0},
	OP_HALT:    {"HALT", 0},
	OP_LDI:     {"LDI", 2},
	OP_MOV:     {"MOV", 2},
	OP_ADD:     {"ADD", 2},
	OP_SUB:     {"SUB", 2},
	OP_AND:     {"AND", 2},
	OP_OR:      {"OR", 2},
	OP_XOR:     {"XOR", 2},
	OP_NOT:     {"NOT", 1},
	OP_SHL:     {"SHL", 1},
	OP_SHR:     {"SHR", 1},
	OP_CMP:     {"CMP", 2},
	OP_JMP:     {"JMP", 1},
	OP_JZ:      {"JZ", 1},
	OP_JNZ:     {"JNZ", 1},
	OP_JC:      {"JC", 1},
	OP_LOAD:    {"LOAD", 2},
	OP_STORE:   {"STORE", 2},
	OP_PUSH:    {"PUSH", 1},
	OP_POP:     {"POP", 1},
	OP_OUT:     {"OUT", 2},
	OP_IN:      {"IN", 2},
}

// opMap maps mnemonics to opcodes.
var opMap = func() map[string]CodeOp {
	ops := make(map[string]CodeOp, OP_COUNT)
	for op := OP_NOP; op < OP_COUNT; op++ {
		ops[_opInfo[op].name] = op
	}
	return ops
}()

// LookupOp returns the opcode for an upper-case mnemonic.
// Unrecognised mnemonics return OP_UNKNOWN and false.
func LookupOp(mnemonic string) (op CodeOp, ok bool) {
	op, ok = opMap[mnemonic]
	return
}

// String returns the mnemonic of the opcode.
func (op CodeOp) String() string {
	if op < 0 || op >= OP_COUNT {
		return _opInfo[OP_UNKNOWN].name
	}
	return _opInfo[op].name
}

// Args returns the number of operands the opcode takes.
func (op CodeOp) Args() int {
	if op < 0 || op >= OP_COUNT {
		return 0
	}
	return _opInfo[op].args
}

// IsJump returns true if the operand of the opcode is a jump target.
func (op CodeOp) IsJump() bool {
	switch op {
	case OP_JMP, OP_JZ, OP_JNZ, OP_JC:
		return true
	}
	return false
}

// Instruction is a single assembled line of code.
type Instruction struct {
	LineNo   int        // Source line number, zero if hand-constructed.
	Address  int        // Index of the instruction in the program.
	Opcode   string     // Upper-case mnemonic.
	Operands []string   // Operand words, unresolved, in source order.
	Labels   LabelTable // Label table shared by all instructions of a program.
}

// Op decodes the mnemonic of the instruction.
func (inst Instruction) Op() CodeOp {
	op, _ := LookupOp(inst.Opcode)
	return op
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() string {
	if len(inst.Operands) == 0 {
		return inst.Opcode
	}
	return inst.Opcode + " " + strings.Join(inst.Operands, ", ")
}
