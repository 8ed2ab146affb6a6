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

// Package lattice implements a generic flat (three-level) abstract-domain
// scaffold: Bottom, a middle layer of incomparable Value elements, and Top.
// It is the algebra a monotonic fixpoint iterator runs over; it does not
// itself iterate anything.
package lattice

import "fmt"

// state discriminates the three levels of the flat lattice.
type state uint8

const (
	topState state = iota
	bottomState
	valueState
)

// Element is a flat-lattice value over a comparable carrier C: Bottom ⊑
// Value(c) ⊑ Top for every c, and Value(a) ⊑ Value(b) iff a == b. The zero
// Element is Top, matching the "created at Top by default constructor"
// lifecycle in the data model.
type Element[C comparable] struct {
	state state
	value C
}

// Top returns the top element.
func Top[C comparable]() Element[C] {
	return Element[C]{state: topState}
}

// Bottom returns the bottom element.
func Bottom[C comparable]() Element[C] {
	return Element[C]{state: bottomState}
}

// Of returns the element representing the single concrete value c.
func Of[C comparable](c C) Element[C] {
	return Element[C]{state: valueState, value: c}
}

// IsBottom reports whether e is the bottom element.
func (e Element[C]) IsBottom() bool { return e.state == bottomState }

// IsTop reports whether e is the top element.
func (e Element[C]) IsTop() bool { return e.state == topState }

// IsValue reports whether e holds a concrete carrier value.
func (e Element[C]) IsValue() bool { return e.state == valueState }

// AsValue returns the carrier value and true if e is a Value element,
// otherwise the carrier's zero value and false. It never panics; use Value
// when the caller has already established e.IsValue().
func (e Element[C]) AsValue() (C, bool) {
	if e.state == valueState {
		return e.value, true
	}
	var zero C
	return zero, false
}

// Value returns the carrier value of a Value element. It is a contract
// violation (spec §7) to call Value on Bottom or Top; callers that are not
// sure should use AsValue.
func (e Element[C]) Value() C {
	if e.state != valueState {
		panic("lattice: Value called on a non-Value element")
	}
	return e.value
}

// Equals reports structural equality: same state, and for Value elements,
// equal carrier values.
func (e Element[C]) Equals(other Element[C]) bool {
	if e.state != other.state {
		return false
	}
	if e.state == valueState {
		return e.value == other.value
	}
	return true
}

// Leq reports whether e ⊑ other. Leq is reflexive, transitive, and
// antisymmetric with respect to Equals: Bottom ⊑ x for all x, x ⊑ Top for
// all x, and Value(a) ⊑ Value(b) iff a == b.
func (e Element[C]) Leq(other Element[C]) bool {
	switch {
	case e.state == bottomState:
		return true
	case other.state == topState:
		return true
	case e.state == topState:
		// other is not Top (handled above): Top is leq only to itself.
		return false
	case other.state == bottomState:
		// e is not Bottom (handled above): nothing but Bottom is leq to it.
		return false
	default:
		return e.value == other.value
	}
}

// Join returns the least upper bound of e and other. Bottom ∨ x = x,
// Top ∨ x = Top, Value(a) ∨ Value(b) = Value(a) if a == b else Top.
func (e Element[C]) Join(other Element[C]) Element[C] {
	switch {
	case e.state == bottomState:
		return other
	case other.state == bottomState:
		return e
	case e.state == topState || other.state == topState:
		return Top[C]()
	case e.value == other.value:
		return e
	default:
		return Top[C]()
	}
}

// Meet returns the greatest lower bound of e and other, dually to Join.
func (e Element[C]) Meet(other Element[C]) Element[C] {
	switch {
	case e.state == topState:
		return other
	case other.state == topState:
		return e
	case e.state == bottomState || other.state == bottomState:
		return Bottom[C]()
	case e.value == other.value:
		return e
	default:
		return Bottom[C]()
	}
}

// Widen accelerates convergence toward a fixpoint. Chains in a flat lattice
// have length at most 3 (Bottom, one Value, Top), so no acceleration beyond
// Join is needed.
func (e Element[C]) Widen(other Element[C]) Element[C] {
	return e.Join(other)
}

// Narrow is the dual of Widen, used while descending from Top. For the flat
// lattice it reduces to Meet.
func (e Element[C]) Narrow(other Element[C]) Element[C] {
	return e.Meet(other)
}

// String renders e using the lattice element textual format from spec §6:
// "_|_" for Bottom, "T" for Top, and the carrier's own %v rendering for a
// Value element.
func (e Element[C]) String() string {
	switch e.state {
	case bottomState:
		return "_|_"
	case topState:
		return "T"
	default:
		return fmt.Sprintf("%v", e.value)
	}
}
