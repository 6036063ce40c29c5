// Package elf ingests an ELF executable's symbol table and section layout
// into a program.Sink: one Object per named, non-zero-size symbol, a file
// mapping per allocated PROGBITS section, and the entry point taken from
// the ELF header. It creates no Files: debug info is not read.
//
// There is no ELF-parsing third-party library anywhere in the retrieval
// pack this module was grounded on, so this parser is built on the
// standard library's debug/elf, the one component of binsize's ambient
// stack that is deliberately stdlib rather than a third-party dependency.
package elf

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/ingest"
	"github.com/han-qiu/binsize/internal/program"
)

// Parser ingests ELF binaries.
type Parser struct{}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// CanParse reports whether the preview starts with the ELF magic number.
func (Parser) CanParse(r io.Reader) bool {
	buf := make([]byte, 4)
	n, _ := io.ReadFull(r, buf)
	return n == 4 && bytes.Equal(buf, elfMagic)
}

// Parse requires r to also implement io.ReaderAt (an *os.File does): ELF
// section and symbol reading is inherently random-access.
func (Parser) Parse(r io.Reader, sink program.Sink) error {
	ra, ok := r.(io.ReaderAt)
	if !ok {
		return fmt.Errorf("elf ingest requires a ReaderAt, got %T", r)
	}

	f, err := elf.NewFile(ra)
	if err != nil {
		return binerr.FatalIO("parse elf header", err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return binerr.FatalIO("read elf symbols", err)
	}

	for _, s := range syms {
		if s.Size == 0 || s.Name == "" {
			continue
		}
		isData := elf.ST_TYPE(s.Info) == elf.STT_OBJECT
		sink.AddObject(s.Name, s.Value, s.Size, isData)
	}

	for _, sec := range f.Sections {
		if sec.Type != elf.SHT_PROGBITS || sec.Addr == 0 || sec.Offset == 0 {
			continue
		}
		sink.AddFileMapping(sec.Addr, sec.Offset, sec.Size)
	}

	if f.Entry != 0 {
		if entry := sink.FindObjectByAddr(f.Entry); entry != nil {
			sink.SetEntryPoint(entry)
		}
	}

	return nil
}

// Register adds Parser to the ingest registry. Callers opt in explicitly
// (rather than via an init side effect) so packages that only need the
// JSON stub, like most of this module's tests, don't pull in debug/elf.
func Register() {
	ingest.Register(Parser{})
}
