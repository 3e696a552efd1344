// Package translate localizes the diagnostic messages of the mcu8 toolchain.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	printerOnce sync.Once
	printer     *message.Printer
)

// loadPrinter selects a message printer matching the user's locales,
// falling back to en-US.
func loadPrinter() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("mcu8: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	printerOnce.Do(loadPrinter)
	return printer.Sprintf(key, args...)
}
