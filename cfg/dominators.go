// Copyright the bytecode-analysis contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// reversePostorder walks g depth-first from entry, following successor
// edges, and returns block ids in reverse postorder together with each
// visited block's postorder number (the order in which the DFS finished
// it; entry always gets the highest number). Both dominator computation
// (below) and the linearizer's block-ordering step use this single
// traversal, mirroring the Go compiler's own SSA dominator pass
// (postorderWithNumbering / intersect).
func reversePostorder(g *Graph, entry BlockID) (rpo []BlockID, postNum map[BlockID]int) {
	postNum = make(map[BlockID]int)
	visited := map[BlockID]bool{entry: true}

	type frame struct {
		id   BlockID
		next int
		succ []Edge
	}
	stack := []frame{{id: entry, succ: g.Successors(entry)}}
	var postorder []BlockID

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.succ) {
			e := top.succ[top.next]
			top.next++
			if !visited[e.Target] {
				visited[e.Target] = true
				stack = append(stack, frame{id: e.Target, succ: g.Successors(e.Target)})
			}
			continue
		}
		postorder = append(postorder, top.id)
		stack = stack[:len(stack)-1]
	}

	for i, id := range postorder {
		postNum[id] = i
	}
	rpo = make([]BlockID, len(postorder))
	for i, id := range postorder {
		rpo[len(postorder)-1-i] = id
	}
	return rpo, postNum
}

// Dominators is the result of running the iterative dominator fixpoint over
// a Graph: the immediate dominator of every block reachable from entry.
type Dominators struct {
	g       *Graph
	idom    map[BlockID]BlockID
	postNum map[BlockID]int
}

// ComputeDominators runs the Cooper-Harvey-Kennedy iterative dominator
// algorithm over g starting from g.Entry(). Blocks unreachable from entry
// (there should be none, since Build already pruned them) are simply
// absent from the result.
func ComputeDominators(g *Graph) *Dominators {
	entry := g.Entry()
	rpo, postNum := reversePostorder(g, entry)

	idom := map[BlockID]BlockID{entry: entry}
	rpoIndex := make(map[BlockID]int, len(rpo))
	for i, id := range rpo {
		rpoIndex[id] = i
	}

	intersect := func(a, b BlockID) BlockID {
		for a != b {
			for postNum[a] < postNum[b] {
				a = idom[a]
			}
			for postNum[b] < postNum[a] {
				b = idom[b]
			}
		}
		return a
	}

	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom BlockID
			haveNewIdom := false
			for _, e := range g.Predecessors(b) {
				p := e.Src
				if _, ok := idom[p]; !ok {
					continue
				}
				if !haveNewIdom {
					newIdom = p
					haveNewIdom = true
					continue
				}
				newIdom = intersect(newIdom, p)
			}
			if !haveNewIdom {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return &Dominators{g: g, idom: idom, postNum: postNum}
}

// Idom returns the immediate dominator of b, and whether b was reachable
// from entry (idom[entry] is entry itself, per spec §4.5).
func (d *Dominators) Idom(b BlockID) (BlockID, bool) {
	id, ok := d.idom[b]
	return id, ok
}

// Dominates reports whether a dominates b: every path from entry to b
// passes through a. Every block dominates itself.
func (d *Dominators) Dominates(a, b BlockID) bool {
	for {
		if a == b {
			return true
		}
		idom, ok := d.idom[b]
		if !ok || idom == b {
			return a == b
		}
		b = idom
	}
}

// Flatten returns d's immediate-dominator map as parallel slices of block
// ids, sorted by block id, for serialization by internal/domcache.
func (d *Dominators) Flatten() (blocks []int32, idom []int32) {
	ids := maps.Keys(d.idom)
	slices.Sort(ids)
	blocks = make([]int32, len(ids))
	idom = make([]int32, len(ids))
	for i, b := range ids {
		blocks[i] = int32(b)
		idom[i] = int32(d.idom[b])
	}
	return blocks, idom
}

// FromFlattened reconstructs a Dominators from the parallel slices Flatten
// produces, against g. It does not recompute postNum, since Dominates and
// Tree -- the only things a cache hit needs -- never consult it.
func FromFlattened(g *Graph, blocks, idomSlice []int32) *Dominators {
	idom := make(map[BlockID]BlockID, len(blocks))
	for i, b := range blocks {
		idom[BlockID(b)] = BlockID(idomSlice[i])
	}
	return &Dominators{g: g, idom: idom}
}

// Tree is a rooted, immutable tree keyed by the same node type a Dominators
// result carries block ids for. It is built once (Dominators.Tree) and
// walked read-only.
type Tree[T comparable] struct {
	root     T
	children map[T][]T
}

// Root returns the tree's root node.
func (t *Tree[T]) Root() T { return t.root }

// Children returns node's children, in the order they were added.
func (t *Tree[T]) Children(node T) []T { return t.children[node] }

// Tree builds the dominator tree: entry is the root, and b is a child of
// idom(b) for every other reachable block, in ascending block-id order.
func (d *Dominators) Tree() *Tree[BlockID] {
	entry := d.g.Entry()
	children := make(map[BlockID][]BlockID)
	ids := d.g.Blocks()
	for _, b := range ids {
		if b == entry {
			continue
		}
		p, ok := d.idom[b]
		if !ok {
			continue
		}
		children[p] = append(children[p], b)
	}
	return &Tree[BlockID]{root: entry, children: children}
}
