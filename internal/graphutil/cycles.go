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

package graphutil

import (
	"golang.org/x/exp/slices"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles finds every elementary cycle, self loops included,
// in the graph given by succs (node ids assumed dense in [0, n)), using
// Donald B. Johnson's algorithm ("Finding All The Elementary Circuits of a
// Directed Graph", 1975). cfg.Graph.ElementaryCycles uses this for the full
// cycle listing; internal/xreach.Loops uses the cheaper strongly-connected-
// component decomposition for the coarser per-component loop report.
func FindAllElementaryCycles(n int, succs func(int) []int) [][]int {
	s := &cycleState{
		blocked: map[int]bool{},
		blist:   map[int]map[int]bool{},
	}
	floor := 0
	for floor < n {
		active := make(map[int]bool, n-floor)
		for v := floor; v < n; v++ {
			active[v] = true
		}
		sub := restrictedGraph{n: n, succs: succs, active: active}
		components := graph.StrongComponents(sub)
		for _, comp := range components {
			slices.Sort(comp)
		}
		slices.SortFunc(components, func(a, b []int) int { return a[0] - b[0] })
		foundNontrivial := false
		// Search from the least node of the lowest component holding a cycle
		// (a self edge counts), then drop that node for the next round.
		for _, comp := range components {
			if len(comp) < 2 && !slices.Contains(sub.succsOf(comp[0]), comp[0]) {
				continue
			}
			foundNontrivial = true
			node := comp[0]
			s.blocked = map[int]bool{}
			s.blist = map[int]map[int]bool{}
			s.stack = nil
			s.circuit(node, node, sub)
			floor = node + 1
			break
		}
		if !foundNontrivial {
			return s.cycles
		}
	}
	return s.cycles
}

// restrictedGraph adapts a plain successor callback, restricted to a set of
// still-active nodes, to yourbasic/graph's Iterator interface.
type restrictedGraph struct {
	n      int
	succs  func(int) []int
	active map[int]bool
}

func (r restrictedGraph) Order() int { return r.n }

func (r restrictedGraph) Visit(v int, do func(w int, c int64) bool) bool {
	if !r.active[v] {
		return false
	}
	for _, w := range r.succs(v) {
		if r.active[w] && do(w, 1) {
			return true
		}
	}
	return false
}

func (r restrictedGraph) succsOf(v int) []int {
	if !r.active[v] {
		return nil
	}
	out := r.succs(v)
	filtered := make([]int, 0, len(out))
	for _, w := range out {
		if r.active[w] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

type cycleState struct {
	blocked map[int]bool
	blist   map[int]map[int]bool
	stack   []int
	cycles  [][]int
}

func (s *cycleState) unblock(u int) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		if s.blocked[w] {
			s.unblock(w)
		}
	}
	delete(s.blist, u)
}

func (s *cycleState) circuit(v, start int, g restrictedGraph) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true

	for _, w := range g.succsOf(v) {
		if w == start {
			cycle := make([]int, len(s.stack))
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, cycle)
			found = true
		} else if !s.blocked[w] {
			if s.circuit(w, start, g) {
				found = true
			}
		}
	}

	if found {
		s.unblock(v)
	} else {
		for _, w := range g.succsOf(v) {
			if s.blist[w] == nil {
				s.blist[w] = map[int]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}
