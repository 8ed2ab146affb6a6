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

// Package xreach provides a small, deliberately independent reachability
// and loop-detection cross-check for cfg's block-pruning phase. It knows
// nothing about cfg.Graph; it operates on a plain adjacency callback so its
// implementation cannot share a bug with whatever traversal cfg.Build uses
// internally.
package xreach

import "github.com/cfg-tools/bytecode-analysis/internal/graphutil"

// Reachable returns, in ascending order, every block id reachable from
// entry by following succs, including entry itself. n is the total number
// of block ids (ids are assumed dense in [0, n)).
func Reachable(n, entry int, succs func(int) []int) []int {
	if n == 0 {
		return nil
	}
	seen := make([]bool, n)
	queue := []int{entry}
	seen[entry] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range succs(cur) {
			if next < 0 || next >= n || seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	out := make([]int, 0, n)
	for id, ok := range seen {
		if ok {
			out = append(out, id)
		}
	}
	return out
}

// Loop describes a non-trivial strongly connected component: a set of two
// or more blocks that are mutually reachable, or a single self-looping
// block. Every natural loop's header and body blocks appear together in
// exactly one Loop.
type Loop struct {
	Blocks []int
}

// Loops runs Tarjan strongly-connected-component decomposition (via
// internal/graphutil's generic implementation, over plain block ids rather
// than any cfg type) and returns every component with more than one block,
// plus every single-block component with a self edge. It is used only for
// the human-readable loop report cfg.Graph.Loops exposes; dominator
// computation (cfg/dominators.go) does not depend on it.
func Loops(n int, succs func(int) []int) []Loop {
	nodes := make([]int, n)
	for i := range nodes {
		nodes[i] = i
	}
	components := graphutil.StronglyConnectedComponents(nodes, succs)
	var loops []Loop
	for _, comp := range components {
		if len(comp) > 1 {
			loops = append(loops, Loop{Blocks: comp})
			continue
		}
		v := comp[0]
		for _, w := range succs(v) {
			if w == v {
				loops = append(loops, Loop{Blocks: comp})
				break
			}
		}
	}
	return loops
}
