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

// StronglyConnectedComponents runs Tarjan's algorithm over nodes, following
// edges via succs, and returns every strongly connected component: a set of
// nodes each reachable from every other. A node with no self edge and no
// cycle through it still forms its own singleton component.
//
// Components come back in reverse topological order -- a component's own
// successors (outside the component) always appear before it in the result
// -- which is the order a bottom-up, summary-based analysis wants to visit
// them in. Node order within a component is arbitrary.
//
// This is the same low-link bookkeeping cfg.Graph's block ids run through
// via internal/xreach.Loops; it is written generically here so any node
// type -- not just BlockID -- can share one implementation.
func StronglyConnectedComponents[Node comparable](nodes []Node, succs func(Node) []Node) [][]Node {
	discoverAt := map[Node]int{}
	lowLink := map[Node]int{}
	onStack := map[Node]bool{}
	var stack []Node
	var clock int
	var components [][]Node

	var strongconnect func(v Node)
	strongconnect = func(v Node) {
		discoverAt[v] = clock
		lowLink[v] = clock
		clock++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succs(v) {
			if _, visited := discoverAt[w]; !visited {
				strongconnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] {
				if discoverAt[w] < lowLink[v] {
					lowLink[v] = discoverAt[w]
				}
			}
		}

		if lowLink[v] != discoverAt[v] {
			return
		}
		var component []Node
		for {
			n := len(stack) - 1
			w := stack[n]
			stack = stack[:n]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		components = append(components, component)
	}

	for _, v := range nodes {
		if _, visited := discoverAt[v]; !visited {
			strongconnect(v)
		}
	}
	return components
}
