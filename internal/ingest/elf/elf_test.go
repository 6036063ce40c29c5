package elf_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/han-qiu/binsize/internal/demangle"
	elfingest "github.com/han-qiu/binsize/internal/ingest/elf"
	"github.com/han-qiu/binsize/internal/program"
)

func TestCanParse_RecognizesMagic(t *testing.T) {
	assert.True(t, elfingest.Parser{}.CanParse(strings.NewReader("\x7fELF\x02\x01\x01\x00")))
	assert.False(t, elfingest.Parser{}.CanParse(strings.NewReader("not an elf file")))
	assert.False(t, elfingest.Parser{}.CanParse(strings.NewReader("\x7fEL")))
}

func TestParse_MalformedHeaderErrors(t *testing.T) {
	p := program.New(demangle.Identity{}, program.TraceConfig{})
	err := elfingest.Parser{}.Parse(strings.NewReader("\x7fELF\x02\x01\x01\x00"), p)
	assert.Error(t, err)
}

type noReaderAt struct{ io.Reader }

func TestParse_NonReaderAtRejected(t *testing.T) {
	p := program.New(demangle.Identity{}, program.TraceConfig{})
	err := elfingest.Parser{}.Parse(noReaderAt{strings.NewReader("\x7fELF")}, p)
	assert.Error(t, err)
}
