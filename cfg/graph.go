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

// Package cfg builds, edits, linearizes and analyzes control-flow graphs
// over the entry stream described by package ir. A Graph owns two arenas —
// blocks and edges — referenced by stable integer ids rather than pointers,
// so structural edits (adding a block, rewiring an edge) touch exactly the
// arena slot in question and never require chasing down every place that
// might hold a pointer to what changed.
package cfg

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"

	"github.com/cfg-tools/bytecode-analysis/internal/graphutil"
	"github.com/cfg-tools/bytecode-analysis/ir"
)

// Graph is a control-flow graph in editable mode: it owns its blocks'
// entries and is the authoritative representation of the method body until
// Linearize flattens it back into an ir.Entry stream.
type Graph struct {
	blocks map[BlockID]*Block
	order  []BlockID // ascending; recomputed whenever the block set changes

	edges    map[EdgeID]*Edge
	nextEdge EdgeID

	entry BlockID
	exit  BlockID // NoBlock if the method has no distinguished exit block

	// labels remembers, by pointer identity, the *ir.Target each block
	// originally began with (if any), so Linearize can reuse the same
	// object instead of fabricating a new one for a block that already
	// had a label.
	labels map[BlockID]*ir.Target

	generation int
}

func newGraph() *Graph {
	return &Graph{
		blocks: make(map[BlockID]*Block),
		edges:  make(map[EdgeID]*Edge),
		labels: make(map[BlockID]*ir.Target),
		entry:  NoBlock,
		exit:   NoBlock,
	}
}

// Entry returns the graph's unique entry block.
func (g *Graph) Entry() BlockID { return g.entry }

// Exit returns the graph's distinguished exit block, if it has one: the
// single block with no successors (a Return or an unhandled Throw), or the
// ghost block Build adds when there are several. A graph has no exit block
// only when every block has a successor, as in a method that loops forever.
func (g *Graph) Exit() (BlockID, bool) {
	if g.exit == NoBlock {
		return NoBlock, false
	}
	return g.exit, true
}

// Block returns the block with the given id.
func (g *Graph) Block(id BlockID) (*Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Blocks returns every surviving block id in ascending id order. This is the
// default iteration order spec §3 describes.
func (g *Graph) Blocks() []BlockID {
	out := make([]BlockID, len(g.order))
	copy(out, g.order)
	return out
}

// NumBlocks returns the number of surviving blocks.
func (g *Graph) NumBlocks() int { return len(g.order) }

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}
	return *e, ok
}

// Successors returns b's outgoing edges, in the order they were added
// (branch/switch targets before an implicit fall-through, throw edges last —
// the order Build wires them in).
func (g *Graph) Successors(b BlockID) []Edge {
	blk, ok := g.blocks[b]
	if !ok {
		return nil
	}
	out := make([]Edge, 0, len(blk.Succs))
	for _, id := range blk.Succs {
		out = append(out, *g.edges[id])
	}
	return out
}

// Predecessors returns b's incoming edges, in the order they were added.
func (g *Graph) Predecessors(b BlockID) []Edge {
	blk, ok := g.blocks[b]
	if !ok {
		return nil
	}
	out := make([]Edge, 0, len(blk.Preds))
	for _, id := range blk.Preds {
		out = append(out, *g.edges[id])
	}
	return out
}

// Generation returns the graph's current generation counter. It increments
// on every structural mutation (block removal during pruning, Linearize);
// an InstrIter compares against the generation it was created with to
// detect that the graph moved out from under it.
func (g *Graph) Generation() int { return g.generation }

// addBlock allocates and inserts a new block with the given id.
func (g *Graph) addBlock(id BlockID) *Block {
	b := &Block{ID: id, DefaultSucc: NoBlock}
	g.blocks[id] = b
	g.order = append(g.order, id)
	slices.Sort(g.order)
	return b
}

// addEdge allocates a new edge and registers it on both endpoints'
// adjacency lists. It is idempotent per (src, target, kind) triple (spec
// §1's "exactly one incoming edge per (src, target, kind) triple"): if such
// an edge already exists, its id is returned unchanged instead of adding a
// duplicate. This matters for SwitchTerminator, where two case targets
// commonly share a block.
func (g *Graph) addEdge(src, target BlockID, kind EdgeKind) EdgeID {
	if existing, ok := g.findEdge(src, target, kind); ok {
		return existing
	}
	id := g.nextEdge
	g.nextEdge++
	e := &Edge{ID: id, Src: src, Target: target, Kind: kind}
	g.edges[id] = e
	g.blocks[src].Succs = append(g.blocks[src].Succs, id)
	g.blocks[target].Preds = append(g.blocks[target].Preds, id)
	return id
}

// findEdge reports the id of the (src, target, kind) edge already wired
// from src, if any.
func (g *Graph) findEdge(src, target BlockID, kind EdgeKind) (EdgeID, bool) {
	blk, ok := g.blocks[src]
	if !ok {
		return 0, false
	}
	for _, id := range blk.Succs {
		e := g.edges[id]
		if e.Target == target && e.Kind == kind {
			return id, true
		}
	}
	return 0, false
}

// removeBlock deletes a block and every edge touching it, then bumps the
// generation counter. Used only by Build's unreachable-block pruning phase.
func (g *Graph) removeBlock(id BlockID) {
	blk, ok := g.blocks[id]
	if !ok {
		return
	}
	// detachEdge compacts blk.Succs/blk.Preds in place, so walk copies.
	for _, eid := range append([]EdgeID(nil), blk.Succs...) {
		g.detachEdge(eid)
	}
	for _, eid := range append([]EdgeID(nil), blk.Preds...) {
		g.detachEdge(eid)
	}
	delete(g.blocks, id)
	for i, bid := range g.order {
		if bid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	g.generation++
}

// detachEdge removes an edge from both endpoints' adjacency lists (if the
// endpoint still exists) and the edge table.
func (g *Graph) detachEdge(id EdgeID) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	if src, ok := g.blocks[e.Src]; ok {
		src.Succs = removeEdgeID(src.Succs, id)
	}
	if tgt, ok := g.blocks[e.Target]; ok {
		tgt.Preds = removeEdgeID(tgt.Preds, id)
	}
	delete(g.edges, id)
}

func removeEdgeID(ids []EdgeID, target EdgeID) []EdgeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// The following methods satisfy internal/graphutil.BlockGraph, letting
// graphutil.Adapter present a Graph as a gonum graph.Directed without
// graphutil importing this package (avoiding an import cycle, since cfg's
// DOT printer imports graphutil's gonum plumbing the other way).

// BlockIDs returns every surviving block id as a plain int, in ascending
// order.
func (g *Graph) BlockIDs() []int {
	out := make([]int, len(g.order))
	for i, id := range g.order {
		out[i] = int(id)
	}
	return out
}

// Succs returns the successor block ids of id, as plain ints.
func (g *Graph) Succs(id int) []int {
	blk, ok := g.blocks[BlockID(id)]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(blk.Succs))
	for _, eid := range blk.Succs {
		out = append(out, int(g.edges[eid].Target))
	}
	return out
}

// Preds returns the predecessor block ids of id, as plain ints.
func (g *Graph) Preds(id int) []int {
	blk, ok := g.blocks[BlockID(id)]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(blk.Preds))
	for _, eid := range blk.Preds {
		out = append(out, int(g.edges[eid].Src))
	}
	return out
}

// AsDirected returns a read-only view of g as a gonum graph.Directed, so
// that generic gonum algorithms (topological sort, shortest path, and so
// on) can run over a control-flow graph. The view is not a snapshot: it
// queries g on every call, so it reflects g's current blocks and edges.
func (g *Graph) AsDirected() graph.Directed {
	return graphutil.NewAdapter(g)
}
