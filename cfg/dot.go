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
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"

	"github.com/cfg-tools/bytecode-analysis/internal/graphutil"
)

// DOT renders g as Graphviz source: one node per block, labeled "B<id>"
// followed by its instruction dump, and one edge per connected pair of
// blocks, labeled with the Kind of the first Edge between them; where
// several Edges of different kinds join the same two blocks, only that
// first kind is shown. Blocks nested in try regions get an extra label line
// noting their region nesting chain, built from a graphutil.Tree so that a
// block inside two nested regions reports both, innermost first.
func DOT(g *Graph, name string) (string, error) {
	regionNode := buildRegionTree(g)

	dg := &dotGraph{g: g, name: name, regionNode: regionNode}
	out, err := dot.Marshal(dg, name, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cfg: rendering DOT: %w", err)
	}
	return string(out), nil
}

// buildRegionTree groups g's try regions into a graphutil.Tree rooted at
// the (unlabeled) method body, with a region's children being the regions
// nested directly inside it, and returns the tree node for each region's
// innermost region membership per block.
func buildRegionTree(g *Graph) map[BlockID]*graphutil.Tree[*CatchRegion] {
	root := graphutil.NewTree[*CatchRegion](nil)
	nodes := map[*CatchRegion]*graphutil.Tree[*CatchRegion]{}

	var ids []BlockID
	for _, id := range g.order {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		blk := g.blocks[id]
		// Regions is innermost first; walk it outermost first so each
		// region is attached under its immediate parent.
		for i := len(blk.Regions) - 1; i >= 0; i-- {
			r := blk.Regions[i]
			if _, ok := nodes[r]; ok {
				continue
			}
			parent := root
			if i+1 < len(blk.Regions) {
				parent = nodes[blk.Regions[i+1]]
			}
			nodes[r] = parent.AddChild(r)
		}
	}

	byBlock := map[BlockID]*graphutil.Tree[*CatchRegion]{}
	for _, id := range ids {
		if r := g.blocks[id].Region(); r != nil {
			byBlock[id] = nodes[r]
		}
	}
	return byBlock
}

// regionChain renders a block's region nesting, innermost first, for its
// DOT label: e.g. "in T2 < T1" for a block nested two regions deep.
func regionChain(node *graphutil.Tree[*CatchRegion]) string {
	if node == nil {
		return ""
	}
	chain := node.Ancestors(-1) // root (nil label) .. node
	var names []string
	for i := len(chain) - 1; i >= 0; i-- {
		if r := chain[i].Label; r != nil {
			names = append(names, r.ID)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "in " + strings.Join(names, " < ")
}

// dotGraph adapts *Graph directly to gonum's graph.Graph, wrapping each
// node and edge with the label/attribute methods dot.Marshal looks for.
// This is deliberately local to cfg rather than routed through
// internal/graphutil.Adapter: DOT rendering needs instruction dumps and
// edge-kind labels that only cfg's own types carry, and mixing that
// presentation concern into graphutil's reusable BlockGraph adapter would
// make the adapter DOT-specific for every other caller too.
type dotGraph struct {
	g          *Graph
	name       string
	regionNode map[BlockID]*graphutil.Tree[*CatchRegion]
}

func (dg *dotGraph) Node(id int64) graph.Node {
	if _, ok := dg.g.blocks[BlockID(id)]; !ok {
		return nil
	}
	return dotNode{g: dg.g, id: BlockID(id), region: dg.regionNode[BlockID(id)]}
}

func (dg *dotGraph) Nodes() graph.Nodes {
	var nodes []graph.Node
	for _, id := range dg.g.order {
		nodes = append(nodes, dotNode{g: dg.g, id: id, region: dg.regionNode[id]})
	}
	return &blockNodeIterator{nodes: nodes, cur: -1}
}

func (dg *dotGraph) From(id int64) graph.Nodes {
	var nodes []graph.Node
	for _, e := range dg.g.Successors(BlockID(id)) {
		nodes = append(nodes, dotNode{g: dg.g, id: e.Target, region: dg.regionNode[e.Target]})
	}
	return &blockNodeIterator{nodes: nodes, cur: -1}
}

func (dg *dotGraph) HasEdgeBetween(xid, yid int64) bool {
	return dg.edgeBetween(BlockID(xid), BlockID(yid)) != nil || dg.edgeBetween(BlockID(yid), BlockID(xid)) != nil
}

func (dg *dotGraph) HasEdgeFromTo(uid, vid int64) bool {
	return dg.edgeBetween(BlockID(uid), BlockID(vid)) != nil
}

func (dg *dotGraph) Edge(uid, vid int64) graph.Edge {
	e := dg.edgeBetween(BlockID(uid), BlockID(vid))
	if e == nil {
		return nil
	}
	return dotEdge{from: BlockID(uid), to: BlockID(vid), kind: e.Kind}
}

func (dg *dotGraph) edgeBetween(u, v BlockID) *Edge {
	for _, e := range dg.g.Successors(u) {
		if e.Target == v {
			ee := e
			return &ee
		}
	}
	return nil
}

// dotNode is a block presented as a graph.Node with a DOTID and a
// multi-line label holding its instruction dump.
type dotNode struct {
	g      *Graph
	id     BlockID
	region *graphutil.Tree[*CatchRegion]
}

func (n dotNode) ID() int64      { return int64(n.id) }
func (n dotNode) DOTID() string  { return fmt.Sprintf("B%d", int(n.id)) }
func (n dotNode) String() string { return n.DOTID() }

// Attributes implements encoding.Attributer.
func (n dotNode) Attributes() []encoding.Attribute {
	blk := n.g.blocks[n.id]
	var lines []string
	lines = append(lines, n.DOTID())
	if chain := regionChain(n.region); chain != "" {
		lines = append(lines, chain)
	}
	for _, instr := range blk.Instructions() {
		if instr.Text != "" {
			lines = append(lines, instr.Text)
		} else {
			lines = append(lines, instr.Op)
		}
	}
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%q", strings.Join(lines, "\\l")+"\\l")},
		{Key: "shape", Value: "box"},
	}
}

type dotEdge struct {
	from, to BlockID
	kind     EdgeKind
}

func (e dotEdge) From() graph.Node         { return dotNode{id: e.from} }
func (e dotEdge) To() graph.Node           { return dotNode{id: e.to} }
func (e dotEdge) ReversedEdge() graph.Edge { return dotEdge{from: e.to, to: e.from, kind: e.kind} }

// Attributes implements encoding.Attributer.
func (e dotEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%q", strings.ToLower(e.kind.String()))},
	}
}

type blockNodeIterator struct {
	nodes []graph.Node
	cur   int
}

func (it *blockNodeIterator) Next() bool {
	if it.cur+1 < len(it.nodes) {
		it.cur++
		return true
	}
	return false
}

func (it *blockNodeIterator) Len() int { return len(it.nodes) - it.cur - 1 }

func (it *blockNodeIterator) Reset() { it.cur = -1 }

func (it *blockNodeIterator) Node() graph.Node { return it.nodes[it.cur] }
