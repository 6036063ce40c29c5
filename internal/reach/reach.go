// Package reach computes reachability from a Program's entry point: the
// "garbage" set of objects and files that entry cannot reach.
package reach

import (
	"fmt"
	"io"
	"os"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/program"
)

// Report summarizes a reachability pass.
type Report struct {
	TotalObjects    int
	GarbageObjects  int
	TotalFiles      int
	GarbageFiles    int
	HasFileGarbage  bool // true when entry has a File, so file counts are meaningful
}

// Run performs a depth-first traversal from prog's entry point over Refs,
// returning the set of objects (and, if entry has a File, files) that were
// not reached. TraceWriter receives the watch-symbol indented trace; if
// nil, os.Stderr is used.
func Run(prog *program.Program, traceWriter io.Writer) (Report, error) {
	entry := prog.Entry()
	if entry == nil {
		return Report{}, binerr.MissingEntryPoint("garbage collection")
	}
	if traceWriter == nil {
		traceWriter = os.Stderr
	}

	garbage := make(map[program.ObjID]*program.Object, prog.NumObjects())
	prog.ForEachObject(func(o *program.Object) { garbage[o.ID] = o })

	visitObjects(entry, garbage, prog.Trace, traceWriter)

	report := Report{
		TotalObjects:   prog.NumObjects(),
		GarbageObjects: len(garbage),
	}

	if entry.File != nil {
		report.HasFileGarbage = true
		fgarbage := make(map[string]*program.File, prog.NumFiles())
		prog.ForEachFile(func(f *program.File) { fgarbage[f.Name] = f })
		visitFiles(entry.File, fgarbage)
		report.TotalFiles = prog.NumFiles()
		report.GarbageFiles = len(fgarbage)
	}

	return report, nil
}

type objFrame struct {
	obj      *program.Object
	children []*program.Object
	idx      int
}

// visitObjects removes every object reachable from entry out of garbage.
// Each object is visited at most once: the removal from garbage doubles
// as the visited-marker, matching the reference GC's erase-and-return guard.
func visitObjects(entry *program.Object, garbage map[program.ObjID]*program.Object, trace program.TraceConfig, traceWriter io.Writer) {
	var path []*program.Object
	var stack []*objFrame

	visit := func(o *program.Object) bool {
		if _, present := garbage[o.ID]; !present {
			return false
		}
		delete(garbage, o.ID)

		children := make([]*program.Object, 0, len(o.Refs))
		for _, c := range o.Refs {
			children = append(children, c)
		}

		path = append(path, o)
		if trace.Watching(o.Name) {
			writeTrace(traceWriter, path)
		}
		stack = append(stack, &objFrame{obj: o, children: children})
		return true
	}

	if !visit(entry) {
		return
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx < len(top.children) {
			child := top.children[top.idx]
			top.idx++
			visit(child)
			continue
		}
		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
	}
}

func writeTrace(w io.Writer, path []*program.Object) {
	indent := ""
	for _, o := range path {
		indent += "  "
		fmt.Fprintf(w, "%s-> %s\n", indent, o.Name)
	}
}

type fileFrame struct {
	file     *program.File
	children []*program.File
	idx      int
}

func visitFiles(entry *program.File, garbage map[string]*program.File) {
	var stack []*fileFrame

	visit := func(f *program.File) bool {
		if _, present := garbage[f.Name]; !present {
			return false
		}
		delete(garbage, f.Name)
		children := make([]*program.File, 0, len(f.Refs))
		for _, c := range f.Refs {
			children = append(children, c)
		}
		stack = append(stack, &fileFrame{file: f, children: children})
		return true
	}

	if !visit(entry) {
		return
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx < len(top.children) {
			child := top.children[top.idx]
			top.idx++
			visit(child)
			continue
		}
		stack = stack[:len(stack)-1]
	}
}
