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

// Package graphutil adapts a plain block/edge adjacency shape to the
// third-party graph libraries the module builds on: gonum's graph.Directed
// (for anything generic gonum algorithms, or a caller outside this module,
// might want to run over a control-flow graph) and yourbasic/graph's
// Iterator (for the strongly-connected-component step of
// FindAllElementaryCycles in cycles.go).
package graphutil

import (
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
)

// BlockGraph is the minimal shape a control-flow graph needs to expose to
// be adapted to gonum's graph.Directed. cfg.Graph implements it implicitly;
// this package never imports cfg, so there is no import cycle between the
// two even though cfg's DOT printer depends on the gonum plumbing this
// package pulls in.
type BlockGraph interface {
	// BlockIDs returns every block id, in any order.
	BlockIDs() []int
	// Succs returns the successor block ids of id.
	Succs(id int) []int
	// Preds returns the predecessor block ids of id.
	Preds(id int) []int
}

// Adapter presents a BlockGraph as a gonum graph.Directed.
type Adapter struct {
	g BlockGraph
}

// NewAdapter wraps g for consumption by gonum graph algorithms.
func NewAdapter(g BlockGraph) *Adapter {
	return &Adapter{g: g}
}

// blockNode implements graph.Node.
type blockNode int64

func (n blockNode) ID() int64 { return int64(n) }

// Node implements graph.Graph.
func (a *Adapter) Node(id int64) graph.Node {
	for _, b := range a.g.BlockIDs() {
		if int64(b) == id {
			return blockNode(id)
		}
	}
	return nil
}

// Nodes implements graph.Graph.
func (a *Adapter) Nodes() graph.Nodes {
	ids := a.g.BlockIDs()
	slices.Sort(ids)
	nodes := make([]graph.Node, len(ids))
	for i, id := range ids {
		nodes[i] = blockNode(id)
	}
	return &nodeIterator{nodes: nodes, cur: -1}
}

// From implements graph.Graph.
func (a *Adapter) From(id int64) graph.Nodes {
	succs := a.g.Succs(int(id))
	nodes := make([]graph.Node, len(succs))
	for i, s := range succs {
		nodes[i] = blockNode(s)
	}
	return &nodeIterator{nodes: nodes, cur: -1}
}

// To implements graph.Directed.
func (a *Adapter) To(id int64) graph.Nodes {
	preds := a.g.Preds(int(id))
	nodes := make([]graph.Node, len(preds))
	for i, p := range preds {
		nodes[i] = blockNode(p)
	}
	return &nodeIterator{nodes: nodes, cur: -1}
}

// HasEdgeBetween implements graph.Graph.
func (a *Adapter) HasEdgeBetween(xid, yid int64) bool {
	return a.HasEdgeFromTo(xid, yid) || a.HasEdgeFromTo(yid, xid)
}

// HasEdgeFromTo implements graph.Directed.
func (a *Adapter) HasEdgeFromTo(uid, vid int64) bool {
	for _, s := range a.g.Succs(int(uid)) {
		if int64(s) == vid {
			return true
		}
	}
	return false
}

// Edge implements graph.Graph.
func (a *Adapter) Edge(uid, vid int64) graph.Edge {
	if !a.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return blockEdge{from: blockNode(uid), to: blockNode(vid)}
}

type blockEdge struct {
	from, to blockNode
}

func (e blockEdge) From() graph.Node         { return e.from }
func (e blockEdge) To() graph.Node           { return e.to }
func (e blockEdge) ReversedEdge() graph.Edge { return blockEdge{from: e.to, to: e.from} }

// nodeIterator implements graph.Nodes over a fixed slice, the same shape
// awslabs-ar-go-tools's NodeSet used for its callgraph.Graph adapter.
type nodeIterator struct {
	nodes []graph.Node
	cur   int
}

func (it *nodeIterator) Next() bool {
	if it.cur+1 < len(it.nodes) {
		it.cur++
		return true
	}
	return false
}

func (it *nodeIterator) Len() int { return len(it.nodes) - it.cur - 1 }

func (it *nodeIterator) Reset() { it.cur = -1 }

func (it *nodeIterator) Node() graph.Node { return it.nodes[it.cur] }
