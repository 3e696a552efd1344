// Package io provides port devices for the mcu8 emulator.
// Devices observe the values a program writes to its memory-mapped ports
// with OUT; they never modify the machine state.
package io

import (
	"iter"
)

// Channel defines the interface for all port devices.
type Channel interface {
	// Rewind resets the device to its initial state.
	Rewind()
	// Send delivers a value written to a port.
	Send(port uint8, value uint8) error
}

// Definer is implemented by devices that name assembler equates, such as
// the port they are attached to.
type Definer interface {
	Defines() iter.Seq2[string, string]
}
