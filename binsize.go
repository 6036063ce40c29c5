// Package binsize analyzes a linked executable to explain its size. It
// ingests a symbol table, disassembly-derived references, a file-offset
// mapping, and data-segment bytes; builds a reference graph over symbols;
// determines reachability from an entry point; computes each symbol's
// transitive weight via a dominator tree; and reports the heaviest
// contributors to the binary's size.
package binsize

// Version is the semantic version of the binsize tool.
const Version = "0.1.0-dev"
