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
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/cfg-tools/bytecode-analysis/ir"
)

// Linearize flattens g back into a flat ir.Entry stream equivalent to it
// (spec §4.4):
//
//  1. Choose the block order (reversePostorder, shared with dominator
//     computation) and, for every block whose default successor is no
//     longer the block immediately following it in that order, synthesize
//     an explicit Goto so the transfer is still represented.
//  2. Drop a Goto that Build (or step 1) marked Implicit and that turned
//     out to still target the physically-next block.
//  3. Reinsert TryStart/TryEnd markers bracketing each try region's member
//     blocks (from its first member block to its last in the chosen order,
//     so any blocks between them are enclosed too) and a Catch marker at
//     the start of each handler block.
//  4. Emit a fresh Target entry at the start of a block only if some
//     surviving instruction actually branches to it (the
//     clean_dangling_targets postcondition).
//
// Linearize does not mutate g's blocks or edges; it bumps g's generation
// counter before returning, since any InstrIter created before the call
// now disagrees with the entries this call describes.
func Linearize(g *Graph) []ir.Entry {
	order, _ := reversePostorder(g, g.Entry())
	nextInOrder := make(map[BlockID]BlockID, len(order))
	for i, id := range order {
		if i+1 < len(order) {
			nextInOrder[id] = order[i+1]
		} else {
			nextInOrder[id] = NoBlock
		}
	}

	targetBlock := make(map[*ir.Target]BlockID, len(g.labels))
	for id, t := range g.labels {
		targetBlock[t] = id
	}
	labelFor := func(id BlockID) *ir.Target {
		if t, ok := g.labels[id]; ok {
			return t
		}
		for t, bid := range targetBlock {
			if bid == id {
				return t
			}
		}
		t := &ir.Target{Name: fmt.Sprintf("L%d", int(id))}
		targetBlock[t] = id
		return t
	}

	// Step 1: synthesize a trailing Goto wherever the default successor is
	// no longer physically adjacent.
	body := make(map[BlockID][]ir.Entry, len(order))
	for _, id := range order {
		blk, _ := g.Block(id)
		entries := append([]ir.Entry(nil), blk.Entries...)

		if next := nextInOrder[id]; blk.DefaultSucc != NoBlock && blk.DefaultSucc != next {
			if last := lastInstruction(entries); last == nil ||
				last.Terminator == ir.NotTerminator || last.Terminator == ir.ConditionalBranch {
				entries = append(entries, &ir.Instruction{
					Op:         "goto",
					Terminator: ir.Goto,
					Targets:    []*ir.Target{labelFor(blk.DefaultSucc)},
					Implicit:   true,
				})
			}
		}
		body[id] = entries
	}

	// Step 2: drop a trailing Implicit Goto that targets the block now
	// physically next.
	for _, id := range order {
		entries := body[id]
		if len(entries) == 0 {
			continue
		}
		last, ok := entries[len(entries)-1].(*ir.Instruction)
		if !ok || last.Terminator != ir.Goto || !last.Implicit {
			continue
		}
		if targetBlock[last.Targets[0]] == nextInOrder[id] {
			body[id] = entries[:len(entries)-1]
		}
	}

	// Step 4's predicate, computed now so step 3 below can consult it: a
	// block needs a Target marker iff some surviving instruction actually
	// branches to it.
	used := map[BlockID]bool{}
	for _, id := range order {
		for _, e := range body[id] {
			instr, ok := e.(*ir.Instruction)
			if !ok {
				continue
			}
			for _, t := range instr.Targets {
				used[targetBlock[t]] = true
			}
			if instr.Default != nil {
				used[targetBlock[instr.Default]] = true
			}
		}
	}

	// Step 3: bracket each try region's contiguous run of member blocks
	// with TryStart/TryEnd, and prefix each handler block with Catch.
	type span struct{ first, last int }
	regionSpan := map[*CatchRegion]span{}
	for i, id := range order {
		blk, _ := g.Block(id)
		for _, r := range blk.Regions {
			s, ok := regionSpan[r]
			if !ok {
				regionSpan[r] = span{i, i}
				continue
			}
			if i < s.first {
				s.first = i
			}
			if i > s.last {
				s.last = i
			}
			regionSpan[r] = s
		}
	}
	startsAt := map[int][]*CatchRegion{}
	endsAt := map[int][]*CatchRegion{}
	for r, s := range regionSpan {
		startsAt[s.first] = append(startsAt[s.first], r)
		endsAt[s.last] = append(endsAt[s.last], r)
	}
	// Map iteration order is randomized; when two regions share an open or
	// close position, sort by ID so output is deterministic across runs.
	byRegionID := func(a, b *CatchRegion) int { return strings.Compare(a.ID, b.ID) }
	for i := range startsAt {
		slices.SortFunc(startsAt[i], byRegionID)
	}
	for i := range endsAt {
		slices.SortFunc(endsAt[i], byRegionID)
	}
	handlerCatch := map[BlockID][]*ir.Catch{}
	for r := range regionSpan {
		for _, h := range r.Handlers {
			handlerCatch[h] = append(handlerCatch[h], &ir.Catch{Region: r.Start})
		}
	}

	var out []ir.Entry
	for i, id := range order {
		if used[id] {
			out = append(out, labelFor(id))
		}
		for _, r := range startsAt[i] {
			out = append(out, r.Start)
		}
		for _, c := range handlerCatch[id] {
			out = append(out, c)
		}
		out = append(out, body[id]...)
		for _, r := range endsAt[i] {
			out = append(out, &ir.TryEnd{Start: r.Start})
		}
	}

	g.generation++
	return out
}

func lastInstruction(entries []ir.Entry) *ir.Instruction {
	for i := len(entries) - 1; i >= 0; i-- {
		if instr, ok := entries[i].(*ir.Instruction); ok {
			return instr
		}
	}
	return nil
}
