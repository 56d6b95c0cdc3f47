// Package source resolves resource locators and fetches the bytes behind
// them, with retry, caching and single-flight de-duplication.
package source

import (
	"fmt"
	"path"
	"strings"

	"github.com/ai-aide/tabq/internal/format"
)

// Scheme classifies how a locator is fetched.
type Scheme uint8

const (
	SchemeFile Scheme = iota
	SchemeHTTP
	SchemeS3
)

// Locator is a validated resource address plus its effective format.
// It is immutable once resolved.
type Locator struct {
	Address string // address as written in the statement
	Scheme  Scheme
	Format  string
}

// ResolveError reports a bad locator or an unsupported format.
type ResolveError struct {
	Locator string
	Msg     string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q: %s", e.Locator, e.Msg)
}

// Resolve validates text and determines the effective format. An explicit
// hint always wins; otherwise the format is guessed from the address
// extension. Unknown formats are rejected here, before any fetch.
func Resolve(text, formatHint string) (Locator, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Locator{}, &ResolveError{Locator: text, Msg: "empty locator"}
	}

	loc := Locator{Address: text}
	switch {
	case strings.HasPrefix(text, "http://"), strings.HasPrefix(text, "https://"):
		loc.Scheme = SchemeHTTP
	case strings.HasPrefix(text, "s3://"):
		loc.Scheme = SchemeS3
	case strings.HasPrefix(text, "file://"), !strings.Contains(text, "://"):
		loc.Scheme = SchemeFile
	default:
		return Locator{}, &ResolveError{Locator: text, Msg: "unsupported scheme"}
	}

	f := strings.ToLower(strings.TrimSpace(formatHint))
	if f == "" {
		ext := text
		if at := strings.IndexAny(ext, "?#"); at >= 0 {
			ext = ext[:at]
		}
		f = strings.TrimPrefix(path.Ext(ext), ".")
	}
	if f == "" {
		return Locator{}, &ResolveError{Locator: text, Msg: "format not given and not derivable from extension"}
	}
	if !format.Supported(f) {
		return Locator{}, &ResolveError{Locator: text, Msg: fmt.Sprintf("unsupported format %q", f)}
	}
	loc.Format = f
	return loc, nil
}
