// Package weight computes each object's transitive weight (own size plus
// everything it dominates) and max_weight (the largest weight reachable
// from it along refs), the core ranking signal for size reports.
package weight

import (
	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/dominators"
	"github.com/han-qiu/binsize/internal/program"
)

// Result carries the entry point's max_weight, the global used to prune
// the dot graph.
type Result struct {
	EntryMaxWeight uint64
}

// Compute runs the dominator pass and the weight rollup over prog,
// mutating every Object's Weight and MaxWeight fields in place. Objects
// unreached from the entry point keep Weight == Size (their own size),
// so size-only rankings remain meaningful even when the reachability
// pass reports them as garbage.
func Compute(prog *program.Program) (Result, error) {
	entry := prog.Entry()
	if entry == nil {
		return Result{}, binerr.MissingEntryPoint("weight rollup")
	}

	idToObj := make(map[program.ObjID]*program.Object, prog.NumObjects())
	prog.ForEachObject(func(o *program.Object) {
		idToObj[o.ID] = o
		o.Weight = o.Size
		o.MaxWeight = o.Size
	})

	succ := func(id program.ObjID) []program.ObjID {
		o := idToObj[id]
		if o == nil {
			return nil
		}
		ids := make([]program.ObjID, 0, len(o.Refs))
		for cid := range o.Refs {
			ids = append(ids, cid)
		}
		return ids
	}

	idom := dominators.Compute(entry.ID, int(prog.IDBound()), succ)

	rollup(entry, idom, idToObj)

	prog.SetMaxWeight(entry.MaxWeight)
	return Result{EntryMaxWeight: entry.MaxWeight}, nil
}

type frame struct {
	obj      *program.Object
	children []*program.Object
	idx      int
}

// rollup performs the post-order weight DFS of spec §4.H with an explicit
// stack. Each node is entered at most once (first visit wins on cycles);
// max_weight propagates along every refs edge, including repeat visits to
// an already-finished node. When a node finishes, its weight is final
// (everything it dominates was visited below it), so its max_weight is
// raised to at least that weight before it propagates to the parent.
func rollup(entry *program.Object, idom map[program.ObjID]program.ObjID, idToObj map[program.ObjID]*program.Object) {
	visited := make(map[program.ObjID]bool)

	enter := func(o *program.Object) *frame {
		visited[o.ID] = true
		children := make([]*program.Object, 0, len(o.Refs))
		for _, c := range o.Refs {
			children = append(children, c)
		}
		return &frame{obj: o, children: children}
	}

	finish := func(o *program.Object) {
		if o.Weight > o.MaxWeight {
			o.MaxWeight = o.Weight
		}
		d, ok := idom[o.ID]
		if !ok || d == program.NoID {
			return
		}
		// Post-order add into the immediate dominator; += commutes, so the
		// dominator need not be finished yet.
		if dom := idToObj[d]; dom != nil {
			dom.Weight += o.Weight
		}
	}

	if visited[entry.ID] {
		return
	}
	stack := []*frame{enter(entry)}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.idx < len(top.children) {
			child := top.children[top.idx]
			top.idx++

			if !visited[child.ID] {
				stack = append(stack, enter(child))
				continue
			}

			if child.MaxWeight > top.obj.MaxWeight {
				top.obj.MaxWeight = child.MaxWeight
			}
			continue
		}

		stack = stack[:len(stack)-1]
		finish(top.obj)

		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			if top.obj.MaxWeight > parent.obj.MaxWeight {
				parent.obj.MaxWeight = top.obj.MaxWeight
			}
		}
	}
}
