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

// EdgeID identifies an edge within a Graph's edge arena. Edge ids are stable
// for the lifetime of a Graph: once assigned they are never reused, even
// after the edge is removed by pruning.
type EdgeID int

// NoEdge is the zero value for "no such edge".
const NoEdge EdgeID = -1

// EdgeKind classifies why an edge exists.
type EdgeKind int

const (
	// GOTO is an unconditional or fall-through control transfer.
	GOTO EdgeKind = iota
	// BRANCH is one arm of a conditional branch or switch.
	BRANCH
	// THROW is an exceptional transfer from a block inside a try region to
	// one of the region's catch handlers.
	THROW
)

func (k EdgeKind) String() string {
	switch k {
	case GOTO:
		return "goto"
	case BRANCH:
		return "branch"
	case THROW:
		return "throw"
	default:
		return "unknown"
	}
}

// Edge is a directed, immutable (Src, Target, Kind) triple. Edges are owned
// by the Graph's single edge table; Block.Succs and Block.Preds hold only
// EdgeIDs, so rewiring an edge's endpoints is always a one-place update on
// the graph's edge arena rather than a walk of every block that references
// it.
type Edge struct {
	ID     EdgeID
	Src    BlockID
	Target BlockID
	Kind   EdgeKind
}

// Source returns the edge's source block.
func (e Edge) Source() BlockID { return e.Src }

// Dest returns the edge's destination block.
func (e Edge) Dest() BlockID { return e.Target }
