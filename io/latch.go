package io

import (
	"fmt"
	"iter"
	"maps"
)

// Latch queues the values written to a single port.
type Latch struct {
	Name     string  // If set, an equate naming the port.
	Port     uint8   // Port to latch.
	Capacity int     // Maximum queued values, zero for no limit.
	Values   []uint8 // Queued values, oldest first.
}

var _ Channel = (*Latch)(nil)

// Defines returns the equate naming the latched port, if any.
func (lc *Latch) Defines() iter.Seq2[string, string] {
	if len(lc.Name) == 0 {
		return maps.All(map[string]string{})
	}
	return maps.All(map[string]string{lc.Name: fmt.Sprintf("%#x", lc.Port)})
}

// Rewind drops all queued values.
func (lc *Latch) Rewind() {
	lc.Values = nil
}

// Send queues a value written to the latched port. Other ports are ignored.
func (lc *Latch) Send(port uint8, value uint8) (err error) {
	if port != lc.Port {
		return
	}

	if lc.Capacity > 0 && len(lc.Values) >= lc.Capacity {
		err = ErrChannelFull
		return
	}

	lc.Values = append(lc.Values, value)

	return
}

// Await removes and returns the oldest queued value.
func (lc *Latch) Await() (value uint8, ok bool) {
	if len(lc.Values) > 0 {
		ok = true
		value = lc.Values[0]
		lc.Values = lc.Values[1:]
	}
	return
}

// Last returns the most recent value without removing it.
func (lc *Latch) Last() (value uint8, ok bool) {
	if len(lc.Values) > 0 {
		ok = true
		value = lc.Values[len(lc.Values)-1]
	}
	return
}
