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

import "github.com/cfg-tools/bytecode-analysis/ir"

// InstrIter walks every *ir.Instruction in a Graph, in block-id order and
// then entry order within each block, skipping Debug and Position
// annotations. Its cursor is the pair (block position, intra-block
// position); two iterators over the same unmutated graph that have taken
// the same number of Next steps compare equal by that pair.
//
// An InstrIter is a snapshot view: it captures the graph's generation
// counter at creation, and any structural mutation (block pruning during
// Build, Linearize) invalidates it. Using an invalidated iterator is a
// contract violation and panics, per spec §4.6's iterator-invalidation
// guarantee.
type InstrIter struct {
	g          *Graph
	generation int
	blocks     []BlockID

	blockPos int
	entryPos int
	cur      *ir.Instruction
	valid    bool
}

// NewInstrIter returns an iterator positioned before the first instruction
// of g's first block (in ascending block-id order).
func NewInstrIter(g *Graph) *InstrIter {
	return &InstrIter{
		g:          g,
		generation: g.Generation(),
		blocks:     g.Blocks(),
	}
}

func (it *InstrIter) checkGeneration() {
	if it.g.Generation() != it.generation {
		panic("cfg: InstrIter used after the graph was structurally mutated")
	}
}

// Next advances the iterator to the next instruction and reports whether
// one was found. It panics if the underlying graph has been structurally
// mutated since the iterator was created.
func (it *InstrIter) Next() bool {
	it.checkGeneration()
	for it.blockPos < len(it.blocks) {
		blk, ok := it.g.Block(it.blocks[it.blockPos])
		if !ok {
			// The block list was captured at creation time; this can only
			// happen after a mutation, which checkGeneration should
			// already have caught.
			panic("cfg: InstrIter block vanished without a generation bump")
		}
		for it.entryPos < len(blk.Entries) {
			e := blk.Entries[it.entryPos]
			it.entryPos++
			if instr, ok := e.(*ir.Instruction); ok {
				it.cur = instr
				it.valid = true
				return true
			}
		}
		it.blockPos++
		it.entryPos = 0
	}
	it.cur = nil
	it.valid = false
	return false
}

// Instr returns the instruction Next most recently positioned the iterator
// on. Calling it before a successful Next, or after Next has returned
// false, is a contract violation and panics.
func (it *InstrIter) Instr() *ir.Instruction {
	it.checkGeneration()
	if !it.valid {
		panic("cfg: Instr called with no current instruction")
	}
	return it.cur
}

// Cursor returns the iterator's current (block position, intra-block
// position) pair, for equality comparisons between two iterators walking
// the same unmutated graph.
func (it *InstrIter) Cursor() (blockPos, entryPos int) {
	return it.blockPos, it.entryPos
}
