// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	EXPR_MAX_STEPS  = 100_000 // Starlark steps allowed per $(...) expression.
	LINE_MAX_LENGTH = 1 << 20 // Longest source line accepted, in bytes.
)

var (
	labelRegexp = regexp.MustCompile(`^\w+:$`)
	splitRegexp = regexp.MustCompile(`[\s,]+`)
	parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass assembler for the mcu8 instruction set.
//
// Operands are not resolved by the assembler, except for equate
// substitution; the CPU resolves them as each instruction executes.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.
	Strict  bool // If set, rejects unknown opcodes, bad operand counts, and missing labels.

	Instruction []Instruction     // List of generated instructions.
	Label       LabelTable        // Map of labels to instruction addresses.
	Equate      map[string]string // Map of equates.

	predefine map[string]string // Predefines
	source    []string          // Source line of each instruction.
}

// Assemble assembles source text with a default Assembler.
func Assemble(text string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(text))
}

// Predefine defines a new equate, or redefines an existing predefine.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the integer value of an equate, if it has one.
func (asm *Assembler) valueOf(word string) (value int64, ok bool) {
	if _, is_reg := registerIndex(word); is_reg {
		return
	}

	value, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		return
	}

	return value, true
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	thread.SetMaxExecutionSteps(EXPR_MAX_STEPS)
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, ok := asm.valueOf(str)
		if !ok {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine parses a single line of source, with the comment removed.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words := slices.DeleteFunc(splitRegexp.Split(line, -1), func(a string) bool { return len(a) == 0 })
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	for labelRegexp.MatchString(words[0]) {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			if asm.Strict {
				err = ErrLabelDuplicate
				return
			}
			if asm.Verbose {
				log.Printf("%v: label %v redefined", lineno, label)
			}
		}
		asm.Label[label] = len(asm.Instruction)
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	asm.Instruction = append(asm.Instruction, Instruction{
		LineNo:   lineno,
		Address:  len(asm.Instruction),
		Opcode:   strings.ToUpper(words[0]),
		Operands: words[1:],
		Labels:   asm.Label,
	})
	asm.source = append(asm.source, line)

	return
}

// Parse parses an input stream into a Program.
// Lines longer than LINE_MAX_LENGTH fail with bufio.ErrTooLong.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 4096), LINE_MAX_LENGTH)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	// Programs handed out earlier keep their own label table.
	asm.Label = make(LabelTable, 16)
	asm.Instruction = nil
	asm.source = nil
	asm.Equate = maps.Clone(_cpu_defines)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final substitution of equates, now that all labels are known.
	for n := range asm.Instruction {
		inst := &asm.Instruction[n]
		lineno = inst.LineNo
		line = asm.source[n]

		for i, word := range inst.Operands {
			if _, is_label := asm.Label[word]; is_label {
				continue
			}
			if equate, ok := asm.Equate[word]; ok {
				inst.Operands[i] = equate
			}
		}

		if asm.Strict {
			err = asm.check(inst)
			if err != nil {
				return
			}
		}
	}

	prog = &Program{
		Instructions: slices.Clone(asm.Instruction),
		Labels:       asm.Label,
	}

	return
}

// check verifies an instruction's opcode, operand count, and jump target.
func (asm *Assembler) check(inst *Instruction) (err error) {
	op, ok := LookupOp(inst.Opcode)
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	switch {
	case len(inst.Operands) < op.Args():
		err = ErrOpcodeValueMissing
		return
	case len(inst.Operands) > op.Args():
		err = ErrOpcodeExtraArgs
		return
	}

	if op.IsJump() {
		target := inst.Operands[0]
		_, is_reg := registerIndex(target)
		_, is_label := asm.Label[target]
		if !is_reg && !is_label && !isLiteral(target) {
			err = ErrLabelMissing(target)
			return
		}
	}

	return
}
