package emulator

import (
	"github.com/ezrec/mcu8/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrOpcode is an unknown opcode executed by a strict emulator.
type ErrOpcode string

func (eo ErrOpcode) Error() string {
	return f("unknown opcode %v", string(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}
