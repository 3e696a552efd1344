package io

import (
	"errors"

	"github.com/ezrec/mcu8/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull = errors.New(f("channel full"))
)
