// Package report renders a Program's weight and reachability analysis as
// ranked text tables and a Graphviz dot file, the presentation layer
// consuming internal/weight and internal/reach's output.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/program"
	"github.com/han-qiu/binsize/internal/reach"
)

const topN = 40

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// PrintGarbage reports reachability counts for objects and, if the entry
// point has a File, for files. rep must come from reach.Run, which fails
// with MissingEntryPoint when the program has no entry point; PrintGarbage
// itself only formats the counts and does no entry-point check.
func PrintGarbage(w io.Writer, rep reach.Report) {
	fmt.Fprintf(w, "reachable objects: %d/%d (garbage: %d)\n",
		rep.TotalObjects-rep.GarbageObjects, rep.TotalObjects, rep.GarbageObjects)
	if rep.HasFileGarbage {
		fmt.Fprintf(w, "reachable files: %d/%d (garbage: %d)\n",
			rep.TotalFiles-rep.GarbageFiles, rep.TotalFiles, rep.GarbageFiles)
	}
}

// PrintSymbolsByTransitiveWeight prints the top 40 objects by weight
// descending. Requires the weight pass to have already run; if prog has no
// entry point, an error is returned but callers may still fall back to
// PrintSymbols.
func PrintSymbolsByTransitiveWeight(w io.Writer, prog *program.Program) error {
	if prog.Entry() == nil {
		return binerr.MissingEntryPoint("weight ranking")
	}

	objs := make([]*program.Object, 0, prog.NumObjects())
	prog.ForEachObject(func(o *program.Object) { objs = append(objs, o) })
	sort.Slice(objs, func(i, j int) bool { return objs[i].Weight > objs[j].Weight })

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "WEIGHT\tSYMBOL")
	n := len(objs)
	if n > topN {
		n = topN
	}
	for _, o := range objs[:n] {
		fmt.Fprintf(tw, "%s\t%s\n", humanize.Bytes(o.Weight), o.PrettyName)
	}
	return tw.Flush()
}

// PrintSymbols lists every object sorted by size descending, with a
// percentage-of-total and running cumulative-percentage column.
func PrintSymbols(w io.Writer, prog *program.Program) error {
	objs := make([]*program.Object, 0, prog.NumObjects())
	prog.ForEachObject(func(o *program.Object) { objs = append(objs, o) })
	sort.Slice(objs, func(i, j int) bool { return objs[i].Size > objs[j].Size })

	total := prog.TotalSize()
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "SIZE\t%\tCUM%\tSYMBOL")
	var cum float64
	for _, o := range objs {
		pct := percent(o.Size, total)
		cum += pct
		fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%s\n", humanize.Bytes(o.Size), pct, cum, o.PrettyName)
	}
	return tw.Flush()
}

// PrintFiles lists every file sorted by source-line weight descending,
// with the same percentage and cumulative-percentage columns as
// PrintSymbols.
func PrintFiles(w io.Writer, prog *program.Program) error {
	files := make([]*program.File, 0, prog.NumFiles())
	var total uint64
	prog.ForEachFile(func(f *program.File) {
		files = append(files, f)
		total += f.SourceLineWeight
	})
	sort.Slice(files, func(i, j int) bool { return files[i].SourceLineWeight > files[j].SourceLineWeight })

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "WEIGHT\t%\tCUM%\tFILE")
	var cum float64
	for _, f := range files {
		pct := percent(f.SourceLineWeight, total)
		cum += pct
		fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%s\n", humanize.Bytes(f.SourceLineWeight), pct, cum, f.Name)
	}
	return tw.Flush()
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// WriteDotGraph renders a Graphviz digraph rooted at prog's entry point.
// Only edges to objects whose max_weight exceeds minMaxWeight are drawn,
// pruning the graph to its heaviest subgraphs per spec §4.H.
func WriteDotGraph(w io.Writer, prog *program.Program, minMaxWeight uint64) error {
	entry := prog.Entry()
	if entry == nil {
		return binerr.MissingEntryPoint("dot graph")
	}

	maxWeight := prog.MaxWeight()
	total := prog.TotalSize()

	fmt.Fprintln(w, "digraph binsize {")
	visited := make(map[program.ObjID]bool)
	expanded := make(map[program.ObjID]bool)
	writeDotNode(w, entry, total)
	visited[entry.ID] = true
	writeDotEdges(w, entry, visited, expanded, maxWeight, total, minMaxWeight)
	fmt.Fprintln(w, "}")
	return nil
}

func writeDotNode(w io.Writer, o *program.Object, total uint64) {
	fontSize := math.Max(float64(o.Size)*80000/float64(total), 9)
	fmt.Fprintf(w, "  n%d [label=\"%s\\nsize=%s weight=%s\", fontsize=%.1f];\n",
		o.ID, o.PrettyName, humanize.Bytes(o.Size), humanize.Bytes(o.Weight), fontSize)
}

// writeDotEdges walks o's out-edges, printing each referenced node's label
// the first time it is seen. expanded guards against re-entering a node
// whose own edges have already been walked, so cycles in the reference
// graph (mutual recursion, vtable back-references) terminate instead of
// recursing forever.
func writeDotEdges(w io.Writer, o *program.Object, visited, expanded map[program.ObjID]bool, maxWeight, total, minMaxWeight uint64) {
	if expanded[o.ID] {
		return
	}
	expanded[o.ID] = true

	for _, t := range o.Refs {
		if t.MaxWeight <= minMaxWeight {
			continue
		}
		if !visited[t.ID] {
			visited[t.ID] = true
			writeDotNode(w, t, total)
		}
		penwidth := 1.0
		if maxWeight > 0 {
			penwidth = math.Pow(float64(t.Weight)*100/float64(maxWeight), 0.6)
		}
		fmt.Fprintf(w, "  n%d -> n%d [penwidth=%.2f];\n", o.ID, t.ID, penwidth)
		writeDotEdges(w, t, visited, expanded, maxWeight, total, minMaxWeight)
	}
}

// WriteDotFile is a convenience wrapper that creates (or truncates) path on
// the OS filesystem and writes the dot graph to it.
func WriteDotFile(path string, prog *program.Program, minMaxWeight uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return binerr.FatalIO("create "+path, err)
	}
	defer f.Close()
	return WriteDotGraph(f, prog, minMaxWeight)
}
