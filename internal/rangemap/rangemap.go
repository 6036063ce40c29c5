// Package rangemap maps virtual addresses to the value whose half-open
// interval [addr, addr+size) contains them.
package rangemap

import (
	"github.com/apex/log"
	"github.com/google/btree"
)

type entry[T any] struct {
	addr uint64
	size uint64
	val  T
}

// Map is an interval-keyed lookup structure: Add installs [addr, addr+size)
// intervals, TryGet finds the interval containing a given address.
type Map[T any] struct {
	tree *btree.BTreeG[entry[T]]
}

func less[T any](a, b entry[T]) bool {
	return a.addr < b.addr
}

// New creates an empty Map.
func New[T any]() *Map[T] {
	return &Map[T]{tree: btree.NewG(32, less[T])}
}

// Add installs the interval [addr, addr+size) with the given value.
// Overlapping Adds overwrite whatever was previously stored at addr;
// behavior on partial overlap between distinct intervals is undefined,
// callers are expected to supply disjoint intervals.
func (m *Map[T]) Add(addr, size uint64, val T) {
	m.tree.ReplaceOrInsert(entry[T]{addr: addr, size: size, val: val})
}

// TryGet finds the greatest key k <= addr and returns its value iff
// k+size > addr. An empty map, or an addr before the first installed
// key, is a clean miss rather than the ambiguous behavior of decrementing
// past begin().
func (m *Map[T]) TryGet(addr uint64) (T, bool) {
	var zero T
	var found entry[T]
	ok := false
	m.tree.DescendLessOrEqual(entry[T]{addr: addr}, func(e entry[T]) bool {
		found = e
		ok = true
		return false
	})
	if !ok || found.addr+found.size <= addr {
		return zero, false
	}
	return found.val, true
}

// Get returns the value for addr, aborting the process if none is found.
// Callers use Get only for addresses they have already asserted are present.
func (m *Map[T]) Get(addr uint64) T {
	v, ok := m.TryGet(addr)
	if !ok {
		log.WithField("addr", addr).Fatal("rangemap: no entry for address")
	}
	return v
}

// Len reports the number of installed intervals.
func (m *Map[T]) Len() int {
	return m.tree.Len()
}
