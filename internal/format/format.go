// Package format decodes raw resource bytes into untyped tables. Decoders
// are looked up by format name in a closed registry populated at init.
package format

import (
	"fmt"

	"github.com/ai-aide/tabq/internal/table"
)

// Decoder turns raw bytes into a Raw table.
type Decoder interface {
	Decode(data []byte) (*table.Raw, error)
}

// DecodeError reports malformed resource content. Row is the 1-based data
// row index when the failure is tied to a specific row, 0 otherwise.
type DecodeError struct {
	Format string
	Row    int
	Msg    string
}

func (e *DecodeError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("decode %s: row %d: %s", e.Format, e.Row, e.Msg)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Msg)
}

var registry = map[string]Decoder{}

func register(name string, d Decoder) {
	registry[name] = d
}

// Lookup returns the decoder registered under name.
func Lookup(name string) (Decoder, bool) {
	d, ok := registry[name]
	return d, ok
}

// Supported reports whether name is a registered format.
func Supported(name string) bool {
	_, ok := registry[name]
	return ok
}
