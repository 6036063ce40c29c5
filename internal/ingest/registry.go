package ingest

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/han-qiu/binsize/internal/program"
)

// ErrNoParser is returned when no registered Parser recognizes the input.
var ErrNoParser = errors.New("no parser found for binary format")

type parserRegistry struct {
	mu      sync.RWMutex
	parsers []Parser
}

var registry = &parserRegistry{}

// Register adds p to the set of parsers Open tries, in registration order.
func Register(p Parser) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.parsers = append(registry.parsers, p)
}

// Open detects the format of r among registered parsers and feeds it into
// sink. Detection buffers a preview so a matched parser still sees the
// full stream from the start.
func Open(r io.Reader, sink program.Sink) error {
	detectBuf := make([]byte, 4096)
	n, err := r.Read(detectBuf)
	if err != nil && err != io.EOF {
		return err
	}

	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, p := range registry.parsers {
		if p.CanParse(bytes.NewReader(detectBuf[:n])) {
			full := io.MultiReader(bytes.NewReader(detectBuf[:n]), r)
			return p.Parse(full, sink)
		}
	}

	return ErrNoParser
}
