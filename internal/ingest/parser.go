// Package ingest holds pluggable front ends that read some on-disk binary
// format and feed it into a program.Sink. Adding a format means adding a
// Parser and registering it; the core has no format-specific knowledge.
package ingest

import (
	"io"

	"github.com/han-qiu/binsize/internal/program"
)

// Parser recognizes and reads one binary format into a Sink.
type Parser interface {
	// CanParse previews r (which parsers must not fully consume) and
	// reports whether this parser recognizes the format.
	CanParse(r io.Reader) bool

	// Parse reads the full binary from r and populates sink. It does not
	// set the entry point unless the format encodes one explicitly (e.g.
	// an ELF's e_entry); callers may need to call sink.SetEntryPoint
	// themselves when the format is agnostic about roots.
	Parse(r io.Reader, sink program.Sink) error
}
