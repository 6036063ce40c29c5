// Package binfile abstracts filesystem access for the CLI: opening the
// binary under analysis and writing the dot-graph report, behind an
// afero.Fs so tests can substitute an in-memory filesystem instead of
// touching disk.
package binfile

import (
	"io"

	"github.com/spf13/afero"

	"github.com/han-qiu/binsize/internal/binerr"
)

// Store bundles the filesystem binsize reads the target binary from and
// writes its dot-graph report to. The zero value is invalid; use New.
type Store struct {
	fs afero.Fs
}

// New wraps fs. Passing nil defaults to the real OS filesystem.
func New(fs afero.Fs) Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return Store{fs: fs}
}

// OpenBinary opens path for reading. The returned afero.File satisfies
// both io.Reader (format sniffing) and io.ReaderAt (vtable scanning); the
// caller must Close it when done.
func (s Store) OpenBinary(path string) (afero.File, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, binerr.FatalIO("open "+path, err)
	}
	return f, nil
}

// CreateDotFile creates (or truncates) path for the dot-graph report.
func (s Store) CreateDotFile(path string) (io.WriteCloser, error) {
	f, err := s.fs.Create(path)
	if err != nil {
		return nil, binerr.FatalIO("create "+path, err)
	}
	return f, nil
}
