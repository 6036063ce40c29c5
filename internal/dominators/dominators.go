// Package dominators computes immediate dominators over a directed graph
// using the Lengauer-Tarjan algorithm, near-linear in nodes plus edges.
package dominators

import "github.com/han-qiu/binsize/internal/program"

// Compute returns, for every node reachable from root (except root
// itself), its immediate dominator. n is an exclusive upper bound on node
// ids: ids are assumed dense in [1,n), with 0 reserved as "none". succ
// returns a node's outgoing edges.
func Compute(root program.ObjID, n int, succ func(program.ObjID) []program.ObjID) map[program.ObjID]program.ObjID {
	parent := make([]program.ObjID, n)
	ancestor := make([]program.ObjID, n)
	label := make([]program.ObjID, n)
	semi := make([]int, n)
	dom := make([]program.ObjID, n)
	pred := make([][]program.ObjID, n)
	bucket := make([][]program.ObjID, n)
	ordering := make([]program.ObjID, n) // dfs number -> node id

	var num int
	initialize(root, succ, &num, parent, ancestor, label, semi, ordering, pred)

	link := func(v, w program.ObjID) { ancestor[w] = v }

	eval := func(v program.ObjID) program.ObjID {
		if ancestor[v] == 0 {
			return v
		}
		compress(v, ancestor, label, semi)
		return label[v]
	}

	for i := num; i >= 2; i-- {
		w := ordering[i]

		for _, v := range pred[w] {
			u := eval(v)
			if semi[u] < semi[w] {
				semi[w] = semi[u]
			}
		}

		s := ordering[semi[w]]
		bucket[s] = append(bucket[s], w)
		link(parent[w], w)

		for _, v := range bucket[parent[w]] {
			u := eval(v)
			if semi[u] < semi[v] {
				dom[v] = u
			} else {
				dom[v] = parent[w]
			}
		}
		bucket[parent[w]] = nil
	}

	for i := 2; i <= num; i++ {
		w := ordering[i]
		if dom[w] != ordering[semi[w]] {
			dom[w] = dom[dom[w]]
		}
	}
	dom[root] = 0

	result := make(map[program.ObjID]program.ObjID, num)
	for i := 2; i <= num; i++ {
		w := ordering[i]
		result[w] = dom[w]
	}
	return result
}

type dfsFrame struct {
	v        program.ObjID
	children []program.ObjID
	idx      int
}

// initialize performs the DFS numbering pass (spec §4.G phase 1) with an
// explicit stack: Object graphs from real binaries can be tens of
// thousands of nodes deep, too deep to trust the Go call stack.
func initialize(root program.ObjID, succ func(program.ObjID) []program.ObjID, num *int,
	parent, ancestor, label []program.ObjID, semi []int, ordering []program.ObjID, pred [][]program.ObjID) {

	visit := func(v program.ObjID) bool {
		if semi[v] != 0 {
			return false
		}
		*num++
		semi[v] = *num
		ordering[*num] = v
		label[v] = v
		ancestor[v] = 0
		return true
	}

	if !visit(root) {
		return
	}

	stack := []*dfsFrame{{v: root, children: succ(root)}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.idx >= len(top.children) {
			stack = stack[:len(stack)-1]
			continue
		}
		w := top.children[top.idx]
		top.idx++
		pred[w] = append(pred[w], top.v)
		if semi[w] == 0 {
			parent[w] = top.v
			visit(w)
			stack = append(stack, &dfsFrame{v: w, children: succ(w)})
		}
	}
}

// compress path-compresses the ancestor chain from v, matching the
// reference implementation's recursive Compress but with an explicit
// stack so path length is not bounded by the Go call stack.
func compress(v program.ObjID, ancestor, label []program.ObjID, semi []int) {
	var chain []program.ObjID
	for ancestor[ancestor[v]] != 0 {
		chain = append(chain, v)
		v = ancestor[v]
	}
	for i := len(chain) - 1; i >= 0; i-- {
		w := chain[i]
		if semi[label[ancestor[w]]] < semi[label[w]] {
			label[w] = label[ancestor[w]]
		}
		ancestor[w] = ancestor[ancestor[w]]
	}
}
