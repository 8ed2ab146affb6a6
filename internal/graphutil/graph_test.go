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

package graphutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/cfg-tools/bytecode-analysis/internal/graphutil"
)

// fakeBlockGraph is a minimal, literal BlockGraph over a fixed adjacency
// list, standing in for cfg.Graph without importing it (cfg's own tests
// already run gonum's topo.Sort over Graph.AsDirected; this test only
// checks the adapter's own contract).
type fakeBlockGraph map[int][]int

func (g fakeBlockGraph) BlockIDs() []int {
	ids := make([]int, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	return ids
}

func (g fakeBlockGraph) Succs(id int) []int { return g[id] }

func (g fakeBlockGraph) Preds(id int) []int {
	var preds []int
	for u, succs := range g {
		for _, v := range succs {
			if v == id {
				preds = append(preds, u)
			}
		}
	}
	return preds
}

func TestAdapterSatisfiesGraphDirected(t *testing.T) {
	g := fakeBlockGraph{
		0: {1, 2},
		1: {3},
		2: {3},
		3: {},
	}
	a := graphutil.NewAdapter(g)

	require.True(t, a.HasEdgeFromTo(0, 1))
	require.True(t, a.HasEdgeFromTo(0, 2))
	require.False(t, a.HasEdgeFromTo(1, 0))
	require.True(t, a.HasEdgeBetween(0, 1))
	require.True(t, a.HasEdgeBetween(1, 0))

	require.NotNil(t, a.Node(2))
	require.Nil(t, a.Node(99))

	from := a.From(0)
	count := 0
	for from.Next() {
		count++
	}
	require.Equal(t, 2, count)

	// A DAG must have a valid topological ordering; this is exactly the
	// kind of generic gonum algorithm the adapter exists to unlock.
	order, err := topo.Sort(a)
	require.NoError(t, err)
	require.Len(t, order, 4)
}

func TestAdapterDetectsCycle(t *testing.T) {
	g := fakeBlockGraph{
		0: {1},
		1: {0},
	}
	a := graphutil.NewAdapter(g)
	_, err := topo.Sort(a)
	require.Error(t, err)
}
