// Package namestrip strips parameter lists from demangled names to produce
// collision-prone "pretty" names for overload coalescing.
package namestrip

import "strings"

// Strip returns the prefix of name up to its first '(' and true if name
// contained one, otherwise it returns name unchanged and false.
func Strip(name string) (stripped string, changed bool) {
	if i := strings.IndexByte(name, '('); i >= 0 {
		return name[:i], true
	}
	return name, false
}
