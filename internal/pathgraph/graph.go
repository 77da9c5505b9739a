// Package pathgraph builds the execution graph of a pipeline from its
// enabled hops and enumerates simple paths through it.
package pathgraph

import (
	"iter"
	"slices"
	"sort"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// Graph is an adjacency list keyed by step name. It is a multigraph:
// targets keep hop order and duplicates. Steps without an enabled
// outgoing hop are not keys.
type Graph map[string][]string

// Build derives the graph from hops, skipping disabled ones.
func Build(hops []kettle.Hop) Graph {
	g := make(Graph)
	for _, h := range hops {
		if !h.Enabled {
			continue
		}
		g[h.From] = append(g[h.From], h.To)
	}
	return g
}

// Neighbors returns the direct successors of name.
func (g Graph) Neighbors(name string) []string {
	return g[name]
}

// Sources returns the graph keys in sorted order.
func (g Graph) Sources() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AllPaths is FindAllPaths on g.
func (g Graph) AllPaths(start, end string) iter.Seq[[]string] {
	return FindAllPaths(g, start, end)
}

type frame struct {
	path []string
	next int // index of the next neighbor of path's last node to expand
}

// FindAllPaths enumerates the simple paths from start to end, depth first,
// following neighbors in hop order.
//
// A node already on the current path is never expanded again, so every
// path is free of repeats and the walk ends on cyclic graphs. Reaching end
// yields the path and the walk keeps expanding past end. When start equals
// end, [start] is the first path.
//
// The sequence is lazy: breaking out of a range loop stops the walk. Each
// range restarts the walk from start, and every yielded slice is a fresh
// copy owned by the caller.
func FindAllPaths(g Graph, start, end string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		root := []string{start}
		if start == end && !yield(slices.Clone(root)) {
			return
		}

		stack := []*frame{{path: root}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			neighbors := g[top.path[len(top.path)-1]]

			if top.next >= len(neighbors) {
				stack = stack[:len(stack)-1]
				continue
			}
			candidate := neighbors[top.next]
			top.next++

			if slices.Contains(top.path, candidate) {
				continue
			}

			path := make([]string, len(top.path)+1)
			copy(path, top.path)
			path[len(top.path)] = candidate

			if candidate == end && !yield(slices.Clone(path)) {
				return
			}
			stack = append(stack, &frame{path: path})
		}
	}
}
