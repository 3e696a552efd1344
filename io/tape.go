package io

import (
	"fmt"
	"io"
	"slices"

	"github.com/ezrec/mcu8/cpu"
)

// Tape writes a line for every port write to an io.Writer, in the same
// format as the CPU output log.
type Tape struct {
	Output io.Writer // Destination of the records. Nil discards them.
	Ports  []uint8   // Ports to record. Empty records all ports.

	Records int // Number of records written since the last rewind.
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape; only the record count is reset.
func (tc *Tape) Rewind() {
	tc.Records = 0
}

// Send writes the record for a port write.
func (tc *Tape) Send(port uint8, value uint8) (err error) {
	if len(tc.Ports) != 0 && !slices.Contains(tc.Ports, port) {
		return
	}

	if tc.Output == nil {
		return
	}

	_, err = fmt.Fprintln(tc.Output, cpu.FormatOut(port, value))
	if err != nil {
		return
	}

	tc.Records++

	return
}
