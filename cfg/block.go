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

// BlockID identifies a block within a Graph's block arena. Block ids are
// stable for the lifetime of a Graph: pruning removes entries from the
// arena, it never renumbers the survivors.
type BlockID int

// NoBlock is the zero value for "no such block".
const NoBlock BlockID = -1

// CatchRegion is the runtime record of one try region: the handler blocks
// its catch chain resolves to, in declaration order.
type CatchRegion struct {
	// ID mirrors ir.TryStart.ID, for dumps and DOT labels.
	ID string
	// Start is the original *ir.TryStart this region was opened by,
	// retained so Linearize can reuse it by pointer identity (spec's
	// Target/TryStart/TryEnd/Catch entries are compared by identity, never
	// by value) instead of fabricating a new one.
	Start *ir.TryStart
	// Handlers holds the block beginning each catch handler, in the order
	// their ir.Catch entries appeared in the source stream.
	Handlers []BlockID
}

// Block is a maximal straight-line run of entries: control enters only at
// its first entry and leaves only at its last (spec §3).
type Block struct {
	ID BlockID

	// Entries are the block's owned, editable-mode entries. Target,
	// TryStart, TryEnd and Catch markers are stripped during construction;
	// they are represented structurally by edges and Regions instead.
	Entries []ir.Entry

	// Succs and Preds hold edge ids, not blocks: resolving them to the
	// neighboring Block goes through the owning Graph's edge table.
	Succs []EdgeID
	Preds []EdgeID

	// DefaultSucc is the block taken on fall-through (an ordinary
	// instruction running off the end of the block, or a ConditionalBranch
	// not taken), the target of an Implicit Goto, or a switch's default
	// case. It is NoBlock for blocks ending in Return or Throw, in a Goto
	// that is not Implicit, or in a switch with no default, and for a last
	// block that runs off the end of the method.
	DefaultSucc BlockID

	// Regions lists the try regions this block lies within, innermost
	// first. Empty for a block outside every try region.
	Regions []*CatchRegion
}

// Region returns the innermost try region containing b, or nil if b lies
// outside every try region.
func (b *Block) Region() *CatchRegion {
	if len(b.Regions) == 0 {
		return nil
	}
	return b.Regions[0]
}

// Instructions returns b's entries that are *ir.Instruction, skipping any
// Debug or Position annotations interleaved among them.
func (b *Block) Instructions() []*ir.Instruction {
	var out []*ir.Instruction
	for _, e := range b.Entries {
		if instr, ok := e.(*ir.Instruction); ok {
			out = append(out, instr)
		}
	}
	return out
}
