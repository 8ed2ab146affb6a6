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
	"github.com/cfg-tools/bytecode-analysis/internal/graphutil"
	"github.com/cfg-tools/bytecode-analysis/internal/xreach"
)

// Loops reports every natural loop in g as the set of blocks in its
// strongly connected component (cheap; one component per outermost loop
// nest, shared by the loops nested in it, not one per back edge).
func (g *Graph) Loops() []xreach.Loop {
	n := density(g)
	return xreach.Loops(n, func(id int) []int { return g.Succs(id) })
}

// ElementaryCycles enumerates every elementary cycle in g: every distinct
// simple loop through the block graph, including nested and overlapping
// ones a single Loops entry collapses into one component. This is
// exponential in the worst case (a densely connected component can have
// combinatorially many elementary circuits) so callers doing more than
// reporting a handful of them should prefer Loops.
func (g *Graph) ElementaryCycles() [][]BlockID {
	n := density(g)
	raw := graphutil.FindAllElementaryCycles(n, func(id int) []int { return g.Succs(id) })
	cycles := make([][]BlockID, len(raw))
	for i, c := range raw {
		blocks := make([]BlockID, len(c))
		for j, id := range c {
			blocks[j] = BlockID(id)
		}
		cycles[i] = blocks
	}
	return cycles
}

// density returns one past the largest block id currently in g, the dense
// upper bound both xreach and graphutil's plain-int algorithms need.
func density(g *Graph) int {
	n := 0
	for _, id := range g.order {
		if int(id)+1 > n {
			n = int(id) + 1
		}
	}
	return n
}
