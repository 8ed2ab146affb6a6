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
	"github.com/sirupsen/logrus"

	"github.com/cfg-tools/bytecode-analysis/internal/xreach"
	"github.com/cfg-tools/bytecode-analysis/ir"
)

// Build constructs a Graph from a flat entry stream in four phases: find
// block boundaries, connect blocks with GOTO/BRANCH edges, add THROW edges
// for try/catch regions, then prune blocks unreachable from the entry
// block. log may be nil; when non-nil it receives debug-level records of
// the block partition and of each pruned block.
//
// entries must be non-empty; Build returns a *StructuralError if a TryEnd
// or Catch references a region that was never opened, or if the post-prune
// reachability sanity check disagrees with the pruning pass itself (which
// would indicate a bug in Build rather than a defect in entries).
func Build(entries []ir.Entry, log *logrus.Entry) (*Graph, error) {
	if len(entries) == 0 {
		return nil, newStructuralError("empty entry stream")
	}

	boundaries := findBoundaries(entries)
	blockOf := make([]BlockID, len(entries))
	for i, start := range boundaries {
		end := len(entries)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		for j := start; j < end; j++ {
			blockOf[j] = BlockID(i)
		}
	}

	g := newGraph()
	targetBlock := make(map[*ir.Target]BlockID)
	for i, start := range boundaries {
		end := len(entries)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		blk := g.addBlock(BlockID(i))
		for j := start; j < end; j++ {
			switch e := entries[j].(type) {
			case *ir.Target:
				targetBlock[e] = blk.ID
				if j == start {
					g.labels[blk.ID] = e
				}
			case *ir.TryStart, *ir.TryEnd, *ir.Catch:
				// Markers are structural; represented by edges and
				// Regions instead of being kept as owned entries.
			default:
				blk.Entries = append(blk.Entries, e)
			}
		}
	}
	g.entry = 0

	if log != nil {
		log.WithField("blocks", len(boundaries)).Debug("cfg: partitioned entries into blocks")
	}

	regionOf, err := computeRegions(entries, blockOf)
	if err != nil {
		return nil, err
	}
	for i := range boundaries {
		id := BlockID(i)
		if regions := regionOf[id]; len(regions) > 0 {
			g.blocks[id].Regions = regions
		}
	}

	// Phase 2: connect blocks with GOTO/BRANCH edges. The exit block is
	// chosen after pruning, by resolveExit.
	for i := range boundaries {
		id := BlockID(i)
		blk := g.blocks[id]
		var last *ir.Instruction
		for j := len(blk.Entries) - 1; j >= 0; j-- {
			if instr, ok := blk.Entries[j].(*ir.Instruction); ok {
				last = instr
				break
			}
		}
		nextBlock := BlockID(i + 1)
		hasNext := int(nextBlock) < len(boundaries)

		if last == nil || !last.IsTerminator() {
			// Falls through to the next block in stream order.
			if hasNext {
				g.addEdge(id, nextBlock, GOTO)
				blk.DefaultSucc = nextBlock
			}
			continue
		}

		switch last.Terminator {
		case ir.Goto:
			target := targetBlock[last.Targets[0]]
			g.addEdge(id, target, GOTO)
			if last.Implicit {
				blk.DefaultSucc = target
			}
		case ir.ConditionalBranch:
			target := targetBlock[last.Targets[0]]
			g.addEdge(id, target, BRANCH)
			if hasNext {
				g.addEdge(id, nextBlock, GOTO)
				blk.DefaultSucc = nextBlock
			}
		case ir.SwitchTerminator:
			for _, t := range last.Targets {
				g.addEdge(id, targetBlock[t], BRANCH)
			}
			if last.Default != nil {
				def := targetBlock[last.Default]
				g.addEdge(id, def, GOTO)
				blk.DefaultSucc = def
			}
		case ir.ThrowTerminator, ir.ReturnTerminator:
			// No ordinary successor from Return; Throw gets only the
			// THROW edges phase 3 adds, if any.
		}
	}

	// Phase 3: add THROW edges from every block lying in a try region to
	// each of the region's catch handlers, innermost region first.
	for i := range boundaries {
		id := BlockID(i)
		for _, region := range g.blocks[id].Regions {
			for _, handler := range region.Handlers {
				g.addEdge(id, handler, THROW)
			}
		}
	}

	// Phase 4: prune blocks unreachable from Entry, cross-checked against
	// an independently implemented BFS.
	if err := pruneUnreachable(g, log); err != nil {
		return nil, err
	}

	// The exit block is the unique surviving block with no successors; if
	// several blocks have none (multiple returns, or an unhandled throw
	// alongside a return), a synthetic ghost block is created with all of
	// them as predecessors and no instructions (spec §4.3).
	resolveExit(g)

	return g, nil
}

// resolveExit finds every block with no successors and sets g.exit
// accordingly, synthesizing a ghost block first if there is more than one.
func resolveExit(g *Graph) {
	var noSucc []BlockID
	for _, id := range g.order {
		if len(g.blocks[id].Succs) == 0 {
			noSucc = append(noSucc, id)
		}
	}
	switch len(noSucc) {
	case 0:
		g.exit = NoBlock
	case 1:
		g.exit = noSucc[0]
	default:
		ghost := g.addBlock(nextFreeBlockID(g))
		for _, pred := range noSucc {
			g.addEdge(pred, ghost.ID, GOTO)
		}
		g.exit = ghost.ID
	}
}

func nextFreeBlockID(g *Graph) BlockID {
	max := BlockID(-1)
	for _, id := range g.order {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// findBoundaries returns, in ascending order, every entry index that begins
// a new block (spec §4.3 phase 1): index 0, every *ir.Target, every
// *ir.TryEnd, every *ir.Catch, and every entry immediately following a
// terminating *ir.Instruction (including a ConditionalBranch, whose
// fall-through arm needs its own block to be a valid branch target).
func findBoundaries(entries []ir.Entry) []int {
	boundaries := []int{0}
	for i := 1; i < len(entries); i++ {
		switch entries[i].(type) {
		case *ir.Target, *ir.TryEnd, *ir.Catch:
			boundaries = append(boundaries, i)
			continue
		}
		if instr, ok := entries[i-1].(*ir.Instruction); ok && instr.IsTerminator() {
			boundaries = append(boundaries, i)
		}
	}
	return dedupSorted(boundaries)
}

func dedupSorted(xs []int) []int {
	out := xs[:0]
	var last int = -1
	for _, x := range xs {
		if x != last {
			out = append(out, x)
			last = x
		}
	}
	return out
}

// computeRegions walks entries once, tracking the stack of currently open
// try regions, and returns regionOf: for each block, the try regions it
// lies within, innermost first (only regions still open at the block's last
// entry; a TryEnd always begins a new block, but a TryStart does not, so a
// block containing a TryStart counts as lying within that region). Each
// region's handler blocks accumulate on the *CatchRegion itself
// (region.Handlers), so a caller walking a block's Regions already has
// every handler without a separate lookup table.
func computeRegions(entries []ir.Entry, blockOf []BlockID) (map[BlockID][]*CatchRegion, error) {
	regions := map[*ir.TryStart]*CatchRegion{}
	regionOf := map[BlockID][]*CatchRegion{}

	var open []*ir.TryStart
	for i, e := range entries {
		switch v := e.(type) {
		case *ir.TryStart:
			open = append(open, v)
			regions[v] = &CatchRegion{ID: v.ID, Start: v}
		case *ir.TryEnd:
			if v.Start == nil || len(open) == 0 || open[len(open)-1] != v.Start {
				return nil, newStructuralError("TryEnd references a region that is not open at entry %d", i)
			}
			open = open[:len(open)-1]
		case *ir.Catch:
			if v.Region == nil {
				return nil, newStructuralError("Catch has a nil Region at entry %d", i)
			}
			region, ok := regions[v.Region]
			if !ok {
				return nil, newStructuralError("Catch references a region that was never opened, at entry %d", i)
			}
			region.Handlers = append(region.Handlers, blockOf[i])
		}

		// If the NEXT entry starts a new block (or we are at the last
		// entry), snapshot the currently open regions for this block,
		// innermost (top of stack) first.
		atBlockEnd := i == len(entries)-1 || blockOf[i+1] != blockOf[i]
		if atBlockEnd {
			id := blockOf[i]
			if len(open) > 0 {
				snapshot := make([]*ir.TryStart, len(open))
				copy(snapshot, open)
				reversed := make([]*CatchRegion, len(snapshot))
				for k, ts := range snapshot {
					reversed[len(snapshot)-1-k] = regions[ts]
				}
				regionOf[id] = reversed
			}
		}
	}
	return regionOf, nil
}

// pruneUnreachable removes every block not reachable from g.entry,
// cross-checking the mark-and-sweep pass cfg itself performs against
// xreach's independently implemented BFS. A mismatch is a bug in Build,
// not a defect in the input, and is reported as a *StructuralError.
func pruneUnreachable(g *Graph, log *logrus.Entry) error {
	n := density(g)

	reachable := map[BlockID]bool{g.entry: true}
	queue := []BlockID{g.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Successors(cur) {
			if !reachable[e.Target] {
				reachable[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}

	crossCheck := xreach.Reachable(n, int(g.entry), func(id int) []int { return g.Succs(id) })
	if len(crossCheck) != len(reachable) {
		return newStructuralError(
			"reachability cross-check mismatch: builder found %d reachable blocks, xreach found %d",
			len(reachable), len(crossCheck))
	}

	var toRemove []BlockID
	for _, id := range g.order {
		if !reachable[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		if log != nil {
			log.WithField("block", int(id)).Debug("cfg: pruning unreachable block")
		}
		g.removeBlock(id)
	}
	if g.exit != NoBlock && !reachable[g.exit] {
		g.exit = NoBlock
	}
	return nil
}
