package cpu

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Program is an assembled list of instructions and its label table.
type Program struct {
	Instructions []Instruction
	Labels       LabelTable
}

// Len is the number of instructions in the program.
func (prog *Program) Len() int {
	if prog == nil {
		return 0
	}
	return len(prog.Instructions)
}

// Debug returns the instruction at a program counter, if any.
func (prog *Program) Debug(pc int) (inst *Instruction, ok bool) {
	if prog == nil || pc < 0 || pc >= len(prog.Instructions) {
		return
	}

	return &prog.Instructions[pc], true
}

// LabelsAt returns the labels defining an address, sorted by name.
func (prog *Program) LabelsAt(addr int) (names []string) {
	for name, at := range prog.Labels {
		if at == addr {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return
}

// SortedLabels iterates over the label table in address order, then by name.
func (prog *Program) SortedLabels() iter.Seq2[string, int] {
	return func(yield func(name string, addr int) bool) {
		names := slices.SortedFunc(maps.Keys(prog.Labels), func(a, b string) int {
			if prog.Labels[a] != prog.Labels[b] {
				return prog.Labels[a] - prog.Labels[b]
			}
			return strings.Compare(a, b)
		})
		for _, name := range names {
			if !yield(name, prog.Labels[name]) {
				return
			}
		}
	}
}
