package binsize

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/demangle"
	"github.com/han-qiu/binsize/internal/ingest"
	"github.com/han-qiu/binsize/internal/program"
	"github.com/han-qiu/binsize/internal/reach"
	"github.com/han-qiu/binsize/internal/vtable"
	"github.com/han-qiu/binsize/internal/weight"
)

// Options configures a single analysis run.
type Options struct {
	Trace program.TraceConfig
	Arch  vtable.Arch
}

// Result carries everything a report needs after a full pipeline run.
// HasEntry is false when the binary declared no entry point: per spec §7
// that is fatal only to the reachability and weight-ranking passes, not
// to size-only reporting, so Program is still fully populated.
type Result struct {
	Program  *program.Program
	Reach    reach.Report
	HasEntry bool
}

// Analyze runs ingest -> vtable scan -> reachability -> dominator -> weight
// over binary (opened twice: once for symbol/format ingest via r, once for
// random-access vtable scanning via ra), demangling names through
// demangler. Mirrors the phase ordering of §5: each phase completes before
// the next begins. A missing entry point aborts only the reachability and
// weight phases, matching S6.
func Analyze(r io.Reader, ra io.ReaderAt, demangler demangle.Demangler, opts Options) (Result, error) {
	prog := program.New(demangler, opts.Trace)

	if err := ingest.Open(r, prog); err != nil {
		return Result{}, err
	}

	arch := opts.Arch
	if arch == 0 {
		arch = vtable.Arch64
	}
	if err := vtable.Scan(ra, prog, arch, defaultByteOrder()); err != nil {
		return Result{}, err
	}

	if prog.Entry() == nil {
		return Result{Program: prog}, nil
	}

	rep, err := reach.Run(prog, nil)
	if err != nil {
		return Result{}, err
	}

	if _, err := weight.Compute(prog); err != nil {
		if errors.Is(err, binerr.ErrMissingEntryPoint) {
			return Result{Program: prog, Reach: rep, HasEntry: true}, nil
		}
		return Result{}, err
	}

	return Result{Program: prog, Reach: rep, HasEntry: true}, nil
}

// defaultByteOrder assumes the analyzer runs on the same endianness as the
// binary under analysis, an explicit simplifying assumption (spec §4.E)
// rather than reading target endianness out of the object format.
func defaultByteOrder() binary.ByteOrder {
	return binary.NativeEndian
}
