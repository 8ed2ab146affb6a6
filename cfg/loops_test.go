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

package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfg-tools/bytecode-analysis/cfg"
	"github.com/cfg-tools/bytecode-analysis/ir"
)

// loopEntries builds a single back-edge loop: a header block branching
// either into the loop body (which jumps back to the header) or out to a
// return, the §8 scenario-3 shape.
func loopEntries() []ir.Entry {
	header := &ir.Target{Name: "header"}
	exit := &ir.Target{Name: "exit"}
	return []ir.Entry{
		header,
		&ir.Instruction{Op: "ifeq", Terminator: ir.ConditionalBranch, Targets: []*ir.Target{exit}},
		&ir.Instruction{Op: "goto", Terminator: ir.Goto, Targets: []*ir.Target{header}},
		exit,
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
}

func TestLoopsFindsBackEdgeCycle(t *testing.T) {
	g, err := cfg.Build(loopEntries(), nil)
	require.NoError(t, err)

	loops := g.Loops()
	require.Len(t, loops, 1)
	require.Len(t, loops[0].Blocks, 2)
}

func TestLoopsEmptyForAcyclicGraph(t *testing.T) {
	entries := []ir.Entry{
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
	g, err := cfg.Build(entries, nil)
	require.NoError(t, err)
	require.Empty(t, g.Loops())
	require.Empty(t, g.ElementaryCycles())
}

func TestElementaryCyclesFindsTheBackEdgeCircuit(t *testing.T) {
	g, err := cfg.Build(loopEntries(), nil)
	require.NoError(t, err)

	cycles := g.ElementaryCycles()
	require.Len(t, cycles, 1)
	require.Len(t, cycles[0], 2)
}
