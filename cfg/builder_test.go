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

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/cfg-tools/bytecode-analysis/cfg"
	"github.com/cfg-tools/bytecode-analysis/ir"
)

func straightLineEntries() []ir.Entry {
	return []ir.Entry{
		&ir.Instruction{Op: "iconst_0", Text: "iconst_0"},
		&ir.Instruction{Op: "istore", Text: "istore 1"},
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
}

func TestBuildStraightLine(t *testing.T) {
	g, err := cfg.Build(straightLineEntries(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, g.NumBlocks())
	require.Equal(t, cfg.BlockID(0), g.Entry())
	exit, ok := g.Exit()
	require.True(t, ok)
	require.Equal(t, cfg.BlockID(0), exit)

	blk, ok := g.Block(g.Entry())
	require.True(t, ok)
	require.Len(t, blk.Instructions(), 3)
	require.Empty(t, g.Successors(blk.ID))
}

// unreachableEntries places a block after an unconditional Return that
// nothing branches to.
func unreachableEntries() []ir.Entry {
	dead := &ir.Target{Name: "dead"}
	return []ir.Entry{
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
		dead,
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
}

func TestBuildPrunesUnreachableBlocks(t *testing.T) {
	g, err := cfg.Build(unreachableEntries(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, g.NumBlocks())
	for _, id := range g.Blocks() {
		require.Equal(t, g.Entry(), id)
	}
}

func TestBuildPruneLogsDebugMessage(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	entry := logrus.NewEntry(logger)

	_, err := cfg.Build(unreachableEntries(), entry)
	require.NoError(t, err)

	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "cfg: pruning unreachable block" {
			found = true
		}
	}
	require.True(t, found, "expected a pruning debug record")
}

// tryCatchEntries builds a single try region with one handler: a
// throwing instruction inside the region, a normal exit, and the handler.
func tryCatchEntries() []ir.Entry {
	tryStart := &ir.TryStart{ID: "t0"}
	handler := &ir.Target{Name: "handler"}
	after := &ir.Target{Name: "after"}
	return []ir.Entry{
		tryStart,
		&ir.Instruction{Op: "invoke", Text: "invoke risky"},
		&ir.Instruction{Op: "goto", Terminator: ir.Goto, Targets: []*ir.Target{after}, Implicit: true},
		&ir.TryEnd{Start: tryStart},
		handler,
		&ir.Catch{Region: tryStart},
		&ir.Instruction{Op: "athrow", Terminator: ir.ThrowTerminator},
		after,
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
}

func TestBuildTryCatchAddsThrowEdgeToHandler(t *testing.T) {
	g, err := cfg.Build(tryCatchEntries(), nil)
	require.NoError(t, err)

	entryBlk, ok := g.Block(g.Entry())
	require.True(t, ok)
	require.NotEmpty(t, entryBlk.Regions)

	var sawThrow bool
	var handlerBlock cfg.BlockID = cfg.NoBlock
	for _, e := range g.Successors(entryBlk.ID) {
		if e.Kind == cfg.THROW {
			sawThrow = true
			handlerBlock = e.Target
		}
	}
	require.True(t, sawThrow, "entry block should have a THROW edge to the handler")
	require.Contains(t, entryBlk.Region().Handlers, handlerBlock)
}

func TestBuildRejectsUnopenedTryEnd(t *testing.T) {
	entries := []ir.Entry{
		&ir.TryEnd{Start: &ir.TryStart{ID: "never-opened"}},
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
	_, err := cfg.Build(entries, nil)
	require.Error(t, err)
}

func TestBuildRejectsUnopenedCatchRegion(t *testing.T) {
	entries := []ir.Entry{
		&ir.Catch{Region: &ir.TryStart{ID: "never-opened"}},
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
	_, err := cfg.Build(entries, nil)
	require.Error(t, err)
}

// switchWithSharedCaseTargetsEntries builds a tableswitch-style terminator
// whose case list names the same target twice (two case values jumping to
// the same handler, a normal outcome of case-label compaction upstream of
// this package) plus a distinct default target.
func switchWithSharedCaseTargetsEntries() []ir.Entry {
	shared := &ir.Target{Name: "shared"}
	def := &ir.Target{Name: "default"}
	return []ir.Entry{
		&ir.Instruction{
			Op:         "tableswitch",
			Terminator: ir.SwitchTerminator,
			Targets:    []*ir.Target{shared, shared},
			Default:    def,
		},
		shared,
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
		def,
		&ir.Instruction{Op: "return", Terminator: ir.ReturnTerminator},
	}
}

func TestBuildSwitchWithSharedCaseTargets(t *testing.T) {
	g, err := cfg.Build(switchWithSharedCaseTargetsEntries(), nil)
	require.NoError(t, err)

	succs := g.Successors(g.Entry())
	var branchCount int
	for _, e := range succs {
		if e.Kind == cfg.BRANCH {
			branchCount++
		}
	}
	require.Equal(t, 1, branchCount, "two switch cases sharing a target must yield exactly one BRANCH edge for that (src, target, kind) triple")
	require.Len(t, succs, 2, "expected exactly one BRANCH edge to the shared case and one GOTO edge to the default")
}

func TestBuildRejectsEmptyEntryStream(t *testing.T) {
	_, err := cfg.Build(nil, nil)
	require.Error(t, err)
}

// TestGraphAdjacencyIsConsistent walks every surviving block's successor
// and predecessor lists and checks the two agree with each other via the
// edge table, for every scenario above.
func TestGraphAdjacencyIsConsistent(t *testing.T) {
	for name, entries := range map[string][]ir.Entry{
		"straight-line": straightLineEntries(),
		"unreachable":   unreachableEntries(),
		"try-catch":     tryCatchEntries(),
		"loop":          loopEntries(),
	} {
		t.Run(name, func(t *testing.T) {
			g, err := cfg.Build(entries, nil)
			require.NoError(t, err)

			for _, id := range g.Blocks() {
				for _, e := range g.Successors(id) {
					require.Equal(t, id, e.Source())
					found := false
					for _, pe := range g.Predecessors(e.Target) {
						if pe.ID == e.ID {
							found = true
						}
					}
					require.True(t, found, "edge %v missing from target's predecessor list", e)
				}
			}
		})
	}
}

// TestEveryBlockReachableFromEntry re-derives reachability independently of
// Build's own cross-check, confirming the postcondition holds from the
// outside too.
func TestEveryBlockReachableFromEntry(t *testing.T) {
	for name, entries := range map[string][]ir.Entry{
		"straight-line": straightLineEntries(),
		"try-catch":     tryCatchEntries(),
		"loop":          loopEntries(),
	} {
		t.Run(name, func(t *testing.T) {
			g, err := cfg.Build(entries, nil)
			require.NoError(t, err)

			seen := map[cfg.BlockID]bool{g.Entry(): true}
			queue := []cfg.BlockID{g.Entry()}
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, e := range g.Successors(cur) {
					if !seen[e.Target] {
						seen[e.Target] = true
						queue = append(queue, e.Target)
					}
				}
			}
			for _, id := range g.Blocks() {
				require.True(t, seen[id], "block %d not reachable from entry", id)
			}
		})
	}
}

func TestLinearizeThenRebuildIsIsomorphic(t *testing.T) {
	// tryCatchEntries is deliberately excluded here: its handler ends in an
	// unhandled Throw, which resolveExit merges with the method's Return
	// block into a synthetic ghost exit that nothing explicitly branches
	// to, so Linearize (which only emits a Goto for an explicit
	// DefaultSucc) cannot represent that structural edge textually. Round
	// tripping a graph with more than one natural exit is out of scope
	// here; straight-line and looping single-exit graphs cover the
	// property this test checks.
	for name, entries := range map[string][]ir.Entry{
		"straight-line": straightLineEntries(),
		"loop":          loopEntries(),
	} {
		t.Run(name, func(t *testing.T) {
			g, err := cfg.Build(entries, nil)
			require.NoError(t, err)

			flat := cfg.Linearize(g)
			require.NotEmpty(t, flat)

			rebuilt, err := cfg.Build(flat, nil)
			require.NoError(t, err)
			require.Equal(t, g.NumBlocks(), rebuilt.NumBlocks())

			var wantInstrs, gotInstrs int
			it := cfg.NewInstrIter(g)
			for it.Next() {
				wantInstrs++
			}
			it2 := cfg.NewInstrIter(rebuilt)
			for it2.Next() {
				gotInstrs++
			}
			require.Equal(t, wantInstrs, gotInstrs)
		})
	}
}

func TestInstrIterPanicsAfterMutation(t *testing.T) {
	g, err := cfg.Build(straightLineEntries(), nil)
	require.NoError(t, err)

	it := cfg.NewInstrIter(g)
	cfg.Linearize(g) // bumps the generation counter

	require.Panics(t, func() { it.Next() })
}
