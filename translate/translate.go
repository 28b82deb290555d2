// Package translate formats user-visible messages of the lpu toolchain
// through the x/text message catalog, using the host's preferred locale.
package translate

import (
	"fmt"
	"io"
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("lpu: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage forces the message printer to a specific BCP 47 language tag.
func SetLanguage(tag string) (err error) {
	lang, err := language.Parse(tag)
	if err != nil {
		return
	}

	printer = message.NewPrinter(lang)
	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Fprintln translates an en-US format and writes it, newline terminated, to w.
func Fprintln(w io.Writer, key message.Reference, args ...any) (err error) {
	_, err = fmt.Fprintln(w, printer.Sprintf(key, args...))
	return
}
