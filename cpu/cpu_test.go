package cpu

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSource loads source into a new CPU and runs it.
func runSource(t *testing.T, source string, maxSteps int) (cpu *Cpu) {
	cpu = NewCpu()
	_, err := cpu.Load(source)
	require.NoError(t, err)
	cpu.Run(maxSteps)
	return
}

func TestRegisterWraparound(t *testing.T) {
	assert := assert.New(t)

	for reg := range REGISTER_COUNT {
		source := fmt.Sprintf("LDI R%d, 0xFF\nADD R%d, 0x01", reg, reg)
		cpu := runSource(t, source, 10)

		assert.Equal(uint8(0x00), cpu.Register[reg], source)
		assert.True(cpu.FlagCarry, source)
		assert.True(cpu.FlagZero, source)
	}
}

func TestSubtractionBorrow(t *testing.T) {
	assert := assert.New(t)

	cpu := runSource(t, "LDI R0, 0x00\nSUB R0, 0x01", 10)

	assert.Equal(uint8(0xff), cpu.Register[0])
	assert.True(cpu.FlagCarry)
	assert.False(cpu.FlagZero)
}

func TestLabelRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// Label on its own line.
	cpu := NewCpu()
	prog, err := cpu.Load("loop:\nJMP loop")
	assert.NoError(err)
	assert.Equal(0, prog.Labels["loop"])

	assert.True(cpu.Step())
	assert.Equal(0, cpu.Pc)
	assert.True(cpu.Step())
	assert.Equal(0, cpu.Pc)

	// Label sharing a line with its instruction.
	cpu = NewCpu()
	prog, err = cpu.Load("loop: NOP\nJMP loop")
	assert.NoError(err)
	assert.Equal(0, prog.Labels["loop"])
	assert.Equal(2, prog.Len())

	assert.True(cpu.Step())
	assert.Equal(1, cpu.Pc)
	assert.True(cpu.Step())
	assert.Equal(0, cpu.Pc)
	assert.True(cpu.Step())
	assert.True(cpu.Step())
	assert.Equal(0, cpu.Pc)
}

func TestStackSymmetry(t *testing.T) {
	assert := assert.New(t)

	for _, value := range []int{0x00, 0x01, 0x7f, 0x80, 0xff} {
		cpu := NewCpu()
		_, err := cpu.Load(fmt.Sprintf("LDI R0, %d\nPUSH R0\nPOP R1", value))
		assert.NoError(err)

		cpu.Step()
		sp := cpu.Sp
		cpu.Step()
		assert.Equal(sp-1, cpu.Sp)
		cpu.Step()

		assert.Equal(uint8(value), cpu.Register[1])
		assert.Equal(sp, cpu.Sp)
		assert.Equal(uint8(value), cpu.Memory[STACK_TOP])
	}
}

func TestHaltMonotonic(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	_, err := cpu.Load("LDI R0, 1\nHALT\nLDI R0, 2")
	assert.NoError(err)

	assert.True(cpu.Step())
	assert.False(cpu.Step())
	assert.True(cpu.Halted)
	assert.Equal(STATUS_HALTED, cpu.Status())

	before := *cpu
	for range 3 {
		assert.False(cpu.Step())
		assert.Equal(before, *cpu)
	}
	assert.Equal(0, cpu.Run(100))
	assert.Equal(before, *cpu)
	assert.Equal(uint8(1), cpu.Register[0])
}

func TestEndToEnd(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	_, err := cpu.Load("LDI R0,0x05\nLDI R1,0x03\nADD R0,R1\nOUT 0x25,R0\nHALT")
	assert.NoError(err)

	steps := cpu.Run(10)

	assert.Equal(5, steps)
	assert.Equal(uint8(8), cpu.Register[0])
	assert.Equal([]string{"OUT 0x25 = 0x08 (00001000)"}, cpu.Output)
	assert.Equal(uint8(8), cpu.Memory[0x25])
	assert.True(cpu.Halted)
}

func TestStepReturn(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	_, err := cpu.Load("NOP\nNOP")
	assert.NoError(err)

	assert.True(cpu.Step())
	assert.False(cpu.Step())
	assert.False(cpu.Halted)
	assert.Equal(STATUS_OUT_OF_PROGRAM, cpu.Status())

	before := *cpu
	assert.False(cpu.Step())
	assert.Equal(before, *cpu)

	// Nothing installed.
	cpu = NewCpu()
	assert.False(cpu.Step())
	assert.Equal(0, cpu.Pc)
}

func TestRunBudget(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	_, err := cpu.Load("spin:\nJMP spin")
	assert.NoError(err)

	assert.Equal(7, cpu.Run(7))
	assert.Equal(7, cpu.Ticks)
	assert.Equal(DEFAULT_MAX_STEPS, cpu.Run(0))
	assert.Equal(DEFAULT_MAX_STEPS, cpu.Run(-1))
	assert.Equal(STATUS_RUNNING, cpu.Status())
}

func TestOpcodes(t *testing.T) {
	table := [](struct {
		name   string
		source []string
		check  func(assert *assert.Assertions, cpu *Cpu)
	}){
		{"nop", []string{"NOP"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal([REGISTER_COUNT]uint8{}, cpu.Register)
			assert.False(cpu.FlagZero)
			assert.Equal(1, cpu.Pc)
		}},
		{"ldi_mask", []string{"LDI R0, 0x1FF", "LDI R1, 256", "LDI R2, -1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0xff), cpu.Register[0])
			assert.Equal(uint8(0x00), cpu.Register[1])
			assert.Equal(uint8(0xff), cpu.Register[2])
		}},
		{"ldi_register", []string{"LDI R1, 9", "LDI R0, R1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(9), cpu.Register[0])
		}},
		{"mov", []string{"LDI R2, 0x42", "MOV R5, R2"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x42), cpu.Register[5])
			assert.Equal(uint8(0x42), cpu.Register[2])
		}},
		{"mov_literal", []string{"LDI R5, 1", "MOV R5, 7"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(1), cpu.Register[5])
		}},
		{"add", []string{"LDI R0, 1", "ADD R0, 2"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(3), cpu.Register[0])
			assert.False(cpu.FlagCarry)
			assert.False(cpu.FlagZero)
		}},
		{"add_register", []string{"LDI R0, 0xF0", "LDI R1, 0x20", "ADD R0, R1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x10), cpu.Register[0])
			assert.True(cpu.FlagCarry)
			assert.False(cpu.FlagZero)
		}},
		{"sub_zero", []string{"LDI R0, 5", "SUB R0, 5"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[0])
			assert.True(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
		}},
		{"and_keeps_carry", []string{"LDI R0, 0xFF", "ADD R0, 1", "LDI R1, 0x0F", "AND R1, 0xF0"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[1])
			assert.True(cpu.FlagZero)
			assert.True(cpu.FlagCarry)
		}},
		{"or", []string{"LDI R1, 0x0F", "OR R1, 0xF0"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0xff), cpu.Register[1])
			assert.False(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
		}},
		{"xor_self", []string{"LDI R3, 0x5A", "XOR R3, R3"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[3])
			assert.True(cpu.FlagZero)
		}},
		{"not", []string{"LDI R0, 0x0F", "NOT R0", "LDI R1, 0xFF", "NOT R1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0xf0), cpu.Register[0])
			assert.Equal(uint8(0x00), cpu.Register[1])
			assert.True(cpu.FlagZero)
		}},
		{"shl", []string{"LDI R0, 0x81", "SHL R0"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x02), cpu.Register[0])
			assert.True(cpu.FlagCarry)
			assert.False(cpu.FlagZero)
		}},
		{"shl_zero", []string{"LDI R0, 0x80", "SHL R0"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x00), cpu.Register[0])
			assert.True(cpu.FlagCarry)
			assert.True(cpu.FlagZero)
		}},
		{"shr", []string{"LDI R0, 0x03", "SHR R0"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x01), cpu.Register[0])
			assert.True(cpu.FlagCarry)
			assert.False(cpu.FlagZero)
		}},
		{"shr_logical", []string{"LDI R0, 0x80", "SHR R0"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x40), cpu.Register[0])
			assert.False(cpu.FlagCarry)
		}},
		{"cmp_equal", []string{"LDI R0, 7", "CMP R0, 7"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(7), cpu.Register[0])
			assert.True(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
		}},
		{"cmp_less", []string{"LDI R0, 3", "LDI R1, 5", "CMP R0, R1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(3), cpu.Register[0])
			assert.False(cpu.FlagZero)
			assert.True(cpu.FlagCarry)
		}},
		{"cmp_greater", []string{"LDI R0, 5", "CMP R0, 3"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.False(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
		}},
		{"jz_taken", []string{"LDI R0, 1", "SUB R0, 1", "JZ skip", "LDI R1, 0xEE", "skip:", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[1])
			assert.True(cpu.Halted)
		}},
		{"jz_not_taken", []string{"LDI R0, 2", "SUB R0, 1", "JZ skip", "LDI R1, 0xEE", "skip:", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0xee), cpu.Register[1])
			assert.True(cpu.Halted)
		}},
		{"jnz_loop", []string{"LDI R0, 3", "LDI R1, 0", "loop:", "ADD R1, 2", "SUB R0, 1", "JNZ loop", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[0])
			assert.Equal(uint8(6), cpu.Register[1])
			assert.Equal(2+3*3+1, cpu.Ticks)
		}},
		{"jc", []string{"LDI R0, 0", "SUB R0, 1", "JC borrow", "HALT", "borrow:", "LDI R2, 1", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(1), cpu.Register[2])
		}},
		{"jmp_register", []string{"LDI R0, 3", "JMP R0", "LDI R1, 1", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[1])
			assert.True(cpu.Halted)
		}},
		{"jmp_literal", []string{"JMP 0x02", "LDI R1, 1", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0), cpu.Register[1])
			assert.True(cpu.Halted)
		}},
		{"jmp_past_end", []string{"JMP 9", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(9, cpu.Pc)
			assert.False(cpu.Halted)
			assert.Equal(STATUS_OUT_OF_PROGRAM, cpu.Status())
		}},
		{"load_store", []string{"LDI R0, 0x99", "STORE 0x80, R0", "LOAD R1, 0x80"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x99), cpu.Memory[0x80])
			assert.Equal(uint8(0x99), cpu.Register[1])
		}},
		{"store_indirect", []string{"LDI R0, 0x40", "LDI R1, 0x11", "STORE R0, R1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x11), cpu.Memory[0x40])
		}},
		{"load_seeded", []string{"LOAD R0, 0", "LOAD R1, 1", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(1), cpu.Register[0])
			assert.Equal(uint8(2), cpu.Register[1])
		}},
		{"in", []string{"LDI R0, 0x33", "OUT 0x25, R0", "IN R1, PORTB"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(0x33), cpu.Register[1])
			assert.Len(cpu.Output, 1)
		}},
		{"out", []string{"LDI R7, 0xA5", "OUT 0x2A, R7", "OUT 0x12A, R7"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal([]string{
				"OUT 0x2a = 0xa5 (10100101)",
				"OUT 0x2a = 0xa5 (10100101)",
			}, cpu.Output)
			assert.Equal(uint8(0xa5), cpu.Memory[0x2a])
		}},
		{"push_pop_order", []string{"LDI R0, 1", "LDI R1, 2", "PUSH R0", "PUSH R1", "POP R2", "POP R3"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(2), cpu.Register[2])
			assert.Equal(uint8(1), cpu.Register[3])
			assert.Equal(uint8(STACK_TOP), cpu.Sp)
		}},
		{"unknown", []string{"FOO R0", "LDI R0, 1"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal([]string{"Unknown: FOO"}, cpu.Output)
			assert.Equal(uint8(1), cpu.Register[0])
			assert.Equal(2, cpu.Pc)
			assert.False(cpu.Halted)
		}},
		{"missing_operands", []string{"LDI R0, 5", "ADD R0", "JMP", "SUB", "LDI R1", "OUT 0x10", "PUSH", "POP", "CMP R0", "HALT"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(5), cpu.Register[0])
			assert.Equal(uint8(0), cpu.Register[1])
			assert.False(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
			assert.Empty(cpu.Output)
			assert.Equal(uint8(0), cpu.Memory[0x10])
			assert.Equal(uint8(STACK_TOP), cpu.Sp)
			assert.True(cpu.Halted)
		}},
		{"unresolved_operand", []string{"LDI R0, 9", "ADD R0, bogus"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal(uint8(9), cpu.Register[0])
			assert.False(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
		}},
		{"literal_destination", []string{"ADD 5, 1", "NOT 3", "SHL 0x10"}, func(assert *assert.Assertions, cpu *Cpu) {
			assert.Equal([REGISTER_COUNT]uint8{}, cpu.Register)
			assert.False(cpu.FlagZero)
			assert.False(cpu.FlagCarry)
			assert.Equal(3, cpu.Pc)
		}},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			cpu := runSource(t, strings.Join(entry.source, "\n"), 100)
			entry.check(assert.New(t), cpu)
		})
	}
}

func TestHandConstructed(t *testing.T) {
	assert := assert.New(t)

	labels := LabelTable{"end": 3}
	prog := &Program{
		Instructions: []Instruction{
			{Address: 0, Opcode: "LDI", Operands: []string{"R0", "0x10"}, Labels: labels},
			{Address: 1, Opcode: "JMP", Operands: []string{"end"}, Labels: labels},
			{Address: 2, Opcode: "LDI", Operands: []string{"R0", "0x20"}, Labels: labels},
			{Address: 3, Opcode: "HALT"},
		},
		Labels: labels,
	}

	cpu := NewCpu()
	cpu.Install(prog)

	assert.Equal(3, cpu.Run(10))
	assert.Equal(uint8(0x10), cpu.Register[0])
	assert.True(cpu.Halted)
}

type portRecorder struct {
	writes [][2]uint8
}

func (pr *portRecorder) PortWrite(port uint8, value uint8) {
	pr.writes = append(pr.writes, [2]uint8{port, value})
}

func TestObserver(t *testing.T) {
	assert := assert.New(t)

	recorder := &portRecorder{}

	cpu := NewCpu()
	cpu.Observer = recorder
	_, err := cpu.Load("LDI R0, 1\nOUT PORTB, R0\nLDI R0, 2\nOUT 0x30, R0")
	assert.NoError(err)
	cpu.Run(10)

	assert.Equal([][2]uint8{{0x25, 1}, {0x30, 2}}, recorder.writes)

	cpu.Reset()
	assert.Equal(recorder, cpu.Observer)
}
