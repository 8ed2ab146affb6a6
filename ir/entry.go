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

// Package ir describes the external surface the cfg package consumes: a
// flat, ordered stream of method-item entries produced by an upstream
// bytecode reader. This package models no instruction semantics — opcodes,
// operands, and their meaning are entirely opaque to it (spec §1
// Out-of-scope) — it only exposes the discriminated kinds a control-flow
// builder needs: is this entry a branch target, a try/catch marker, or a
// terminating instruction, and if so, where can control go next.
package ir

// Kind discriminates the method-item entries a CFG builder cares about.
type Kind int

const (
	// KindInstruction is a regular bytecode instruction, possibly a
	// terminator (see Instruction.Terminator).
	KindInstruction Kind = iota
	// KindTarget is a branch label: a position other entries jump to.
	KindTarget
	// KindTryStart opens a try region.
	KindTryStart
	// KindTryEnd closes a try region.
	KindTryEnd
	// KindCatch marks the start of an exception handler for a try region.
	KindCatch
	// KindDebug is a debugger-only annotation, inert to control flow.
	KindDebug
	// KindPosition is a source-position annotation, inert to control flow.
	KindPosition
)

func (k Kind) String() string {
	switch k {
	case KindInstruction:
		return "Instruction"
	case KindTarget:
		return "Target"
	case KindTryStart:
		return "TryStart"
	case KindTryEnd:
		return "TryEnd"
	case KindCatch:
		return "Catch"
	case KindDebug:
		return "Debug"
	case KindPosition:
		return "Position"
	default:
		return "Unknown"
	}
}

// Entry is one element of the method's linear instruction stream. Targets,
// TryStarts, TryEnds and Catches are referenced by pointer identity, never
// by value equality — two entries with identical fields are still distinct
// entries if they are different pointers.
type Entry interface {
	Kind() Kind
}

// Target is a branch label. Branch-source instructions hold a *Target they
// may transfer control to; the CFG builder resolves each *Target to the
// block that begins with it.
type Target struct {
	// Name is used only for the textual dump and DOT rendering.
	Name string
}

// Kind implements Entry.
func (*Target) Kind() Kind { return KindTarget }

// TryStart opens a try region. Every block between a TryStart and its
// matching TryEnd is "in" that region for the purposes of catch-edge
// insertion (spec §4.3 phase 3).
type TryStart struct {
	// ID is used only for the textual dump and DOT rendering.
	ID string
}

// Kind implements Entry.
func (*TryStart) Kind() Kind { return KindTryStart }

// TryEnd closes the try region opened by Start.
type TryEnd struct {
	Start *TryStart
}

// Kind implements Entry.
func (*TryEnd) Kind() Kind { return KindTryEnd }

// Catch marks the start of one handler in Region's catch chain. The entry
// immediately at (and after) a Catch begins the handler block; catch
// handlers for the same region are declared, and resolved to THROW edges,
// in the order their Catch entries appear in the stream.
type Catch struct {
	Region *TryStart
}

// Kind implements Entry.
func (*Catch) Kind() Kind { return KindCatch }

// Debug is a debugger-only annotation. It never affects control flow and is
// preserved inside whichever block it falls into.
type Debug struct {
	Text string
}

// Kind implements Entry.
func (*Debug) Kind() Kind { return KindDebug }

// Position is a source-position annotation. Like Debug, it never affects
// control flow.
type Position struct {
	Line   int
	Column int
}

// Kind implements Entry.
func (*Position) Kind() Kind { return KindPosition }

// Terminator classifies how an Instruction ends its basic block, if at all.
type Terminator int

const (
	// NotTerminator: a plain instruction, control falls through to the
	// next entry in the stream.
	NotTerminator Terminator = iota
	// Goto: an unconditional branch to Targets[0].
	Goto
	// ConditionalBranch: control transfers to Targets[0] if taken,
	// otherwise falls through to the next entry in the stream.
	ConditionalBranch
	// SwitchTerminator: control transfers to one of Targets (in the order
	// declared) or, if none match, to Default.
	SwitchTerminator
	// ThrowTerminator: control leaves the method via an exception; only
	// THROW edges (if any) follow.
	ThrowTerminator
	// ReturnTerminator: control leaves the method normally; no successor
	// edges follow.
	ReturnTerminator
)

// Instruction is the generic carrier of an actual bytecode operation. The
// core never interprets Op or Text; it only inspects Terminator, Targets,
// Default and Implicit to build and linearize the CFG.
type Instruction struct {
	// Op is an opaque opcode mnemonic, used only for the textual dump.
	Op string
	// Text is the full textual rendering of the instruction, used by the
	// instruction dump and DOT printer.
	Text string
	// Terminator classifies this instruction; NotTerminator for ordinary
	// instructions.
	Terminator Terminator
	// Targets holds the branch targets for Goto (exactly one),
	// ConditionalBranch (exactly one, the taken target) and
	// SwitchTerminator (the case targets, in declaration order).
	Targets []*Target
	// Default holds the default-case target for SwitchTerminator; nil for
	// every other Terminator.
	Default *Target
	// Implicit marks a Goto that the encoder inserted purely to represent
	// a fall-through (as opposed to an explicit branch present in the
	// source bytecode). The CFG builder records an implicit Goto's target
	// as the block's default successor; the linearizer drops the emitted
	// branch back out when it turns out to still be redundant (spec
	// §4.4 step 4).
	Implicit bool
}

// Kind implements Entry.
func (*Instruction) Kind() Kind { return KindInstruction }

// IsTerminator reports whether i ends its basic block.
func (i *Instruction) IsTerminator() bool { return i.Terminator != NotTerminator }
