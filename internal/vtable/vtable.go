// Package vtable scans data-segment objects for pointer-sized values that
// resolve to known objects, adding vtable-derived reference edges.
package vtable

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/apex/log"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/program"
)

// Arch names the pointer width of the target architecture.
type Arch int

const (
	Arch32 Arch = 4
	Arch64 Arch = 8
)

func (a Arch) wordSize() int { return int(a) }

// Scan walks the bytes of every data object with a known file offset as an
// array of pointer-sized words in order, and calls TryAddRef for each one.
// Words that resolve to nothing are silently dropped; a short read is
// CorruptInput and stops the scan.
func Scan(r io.ReaderAt, prog *program.Program, arch Arch, order binary.ByteOrder) error {
	word := arch.wordSize()
	buf := make([]byte, word)

	var scanErr error
	prog.ForEachObject(func(obj *program.Object) {
		if scanErr != nil || !obj.Data {
			return
		}

		base, ok := prog.TryGetFileOffset(obj.VMAddr)
		if !ok {
			return
		}

		watching := prog.Trace.Watching(obj.Name)
		if watching {
			log.WithField("symbol", obj.Name).Debug("vtable scanning")
		}

		for off := uint64(0); off+uint64(word) <= obj.Size; off += uint64(word) {
			n, err := r.ReadAt(buf, int64(base+off))
			if err != nil || n != word {
				scanErr = binerr.CorruptInput(
					fmt.Sprintf("vtable scan of %s at +%#x", obj.Name, off), err)
				return
			}

			var v uint64
			switch word {
			case 8:
				v = order.Uint64(buf)
			case 4:
				v = uint64(order.Uint32(buf))
			}

			if watching {
				log.WithField("value", fmt.Sprintf("%#x", v)).Debug("try add ref")
			}
			prog.TryAddRef(obj, v)
		}
	})

	return scanErr
}
