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
	"fmt"
	"testing"
)

func hasEdge(m intGraph, u, v int) bool {
	for _, w := range m[u] {
		if w == v {
			return true
		}
	}
	return false
}

// checkCycle validates that cycle is a genuine elementary circuit of m: every
// consecutive pair (wrapping around) is an edge, and no node repeats.
func checkCycle(m intGraph, cycle []int) error {
	seen := map[int]bool{}
	for i, v := range cycle {
		if seen[v] {
			return fmt.Errorf("node %d repeated in cycle %v", v, cycle)
		}
		seen[v] = true
		next := cycle[(i+1)%len(cycle)]
		if !hasEdge(m, v, next) {
			return fmt.Errorf("no edge %d->%d in cycle %v", v, next, cycle)
		}
	}
	return nil
}

func cycleKey(cycle []int) string {
	min := 0
	for i, v := range cycle {
		if v < cycle[min] {
			min = i
		}
	}
	rot := append(append([]int(nil), cycle[min:]...), cycle[:min]...)
	return fmt.Sprint(rot)
}

func findCycles(m intGraph) [][]int {
	n := 0
	for k := range m {
		if k+1 > n {
			n = k + 1
		}
	}
	return FindAllElementaryCycles(n, succFunc(m))
}

func TestFindAllElementaryCyclesTwoOverlappingLoops(t *testing.T) {
	// A triangle 0->1->2->0 sharing node 1 with a two-cycle 1->3->1.
	m := intGraph{
		0: {1},
		1: {2, 3},
		2: {0},
		3: {1},
	}
	cycles := findCycles(m)
	if len(cycles) != 2 {
		t.Fatalf("expected 2 elementary cycles, got %d: %v", len(cycles), cycles)
	}
	seen := map[string]bool{}
	for _, c := range cycles {
		if err := checkCycle(m, c); err != nil {
			t.Fatalf("invalid cycle: %v", err)
		}
		seen[cycleKey(c)] = true
	}
	if !seen[cycleKey([]int{0, 1, 2})] {
		t.Fatalf("missing triangle cycle, got %v", cycles)
	}
	if !seen[cycleKey([]int{1, 3})] {
		t.Fatalf("missing 2-cycle, got %v", cycles)
	}
}

func TestFindAllElementaryCyclesNoCycles(t *testing.T) {
	m := intGraph{
		0: {1, 2},
		1: {3},
		2: {3},
		3: {},
	}
	cycles := findCycles(m)
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles in a DAG, got %v", cycles)
	}
}

func TestFindAllElementaryCyclesSelfLoop(t *testing.T) {
	m := intGraph{
		0: {0, 1},
		1: {},
	}
	cycles := findCycles(m)
	if len(cycles) != 1 || len(cycles[0]) != 1 || cycles[0][0] != 0 {
		t.Fatalf("expected a single self-loop cycle [0], got %v", cycles)
	}
}

func TestFindAllElementaryCyclesRandom(t *testing.T) {
	for i := 0; i < 20; i++ {
		m := randomGraph(12, 90210+int64(i))
		cycles := findCycles(m)
		for _, c := range cycles {
			if err := checkCycle(m, c); err != nil {
				t.Fatalf("invalid cycle from random graph %v: %v", m, err)
			}
		}
	}
}
