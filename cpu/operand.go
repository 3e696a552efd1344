package cpu

import (
	"strconv"
	"strings"
)

// LabelTable maps label names to instruction addresses.
type LabelTable map[string]int

// Lookup returns the address of a label.
func (lt LabelTable) Lookup(name string) (addr int, ok bool) {
	addr, ok = lt[name]
	return
}

// registerIndex decodes R0-R7, in either case.
func registerIndex(word string) (reg int, ok bool) {
	if len(word) != 2 || (word[0] != 'R' && word[0] != 'r') {
		return
	}
	if word[1] < '0' || word[1] >= '0'+REGISTER_COUNT {
		return
	}
	return int(word[1] - '0'), true
}

// parseLiteral parses a hex (0x prefixed) or decimal literal.
// Negative decimals wrap, as they do when masked to a register.
// The whole word must parse: "12abc" and "1.5" are not literals, rather
// than their numeric prefix.
func parseLiteral(word string) (value uint64, ok bool) {
	var err error
	if len(word) >= 2 && (word[:2] == "0x" || word[:2] == "0X") {
		value, err = strconv.ParseUint(word[2:], 16, 64)
	} else {
		var i64 int64
		i64, err = strconv.ParseInt(word, 10, 64)
		value = uint64(i64)
	}
	if err != nil {
		return 0, false
	}
	return value, true
}

// isLiteral returns true if the word parses as a hex or decimal literal.
func isLiteral(word string) bool {
	_, ok := parseLiteral(word)
	return ok
}

// literalOf parses a literal masked to 8 bits. Words that are not literals are zero.
func literalOf(word string) (value int) {
	u64, ok := parseLiteral(word)
	if !ok {
		return 0
	}
	return int(u64 & 0xff)
}

// constOf resolves a label or literal word. Label addresses are not masked.
func constOf(word string, labels LabelTable) (value int) {
	word = strings.TrimSpace(word)
	if addr, ok := labels.Lookup(word); ok {
		return addr
	}
	return literalOf(word)
}

// stepContext is the per-step view of the CPU handed to an opcode handler.
type stepContext struct {
	cpu    *Cpu
	args   []string
	labels LabelTable
}

// arg returns operand n, if present.
func (ctx *stepContext) arg(n int) (word string, ok bool) {
	if n >= len(ctx.args) {
		return
	}
	return ctx.args[n], true
}

// reg returns the register index named by operand n.
func (ctx *stepContext) reg(n int) (reg int, ok bool) {
	word, ok := ctx.arg(n)
	if !ok {
		return
	}
	return registerIndex(word)
}

// value reads operand n as a register, label or literal.
func (ctx *stepContext) value(n int) (value int, ok bool) {
	word, ok := ctx.arg(n)
	if !ok {
		return
	}
	if reg, is_reg := registerIndex(word); is_reg {
		return int(ctx.cpu.Register[reg]), true
	}
	return constOf(word, ctx.labels), true
}
