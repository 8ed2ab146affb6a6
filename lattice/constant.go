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

package lattice

// ConstantDomain instantiates the flat-lattice scaffold as the abstract
// domain of constant-propagation analyses: a program variable is either
// unconstrained (Top), known to hold exactly one value (a ConstantOf), or
// unreachable/contradictory (Bottom, e.g. after merging two incompatible
// branches that were themselves both dead). It is safe to use as the cell
// type of a map from analysis variables to abstract values consumed by a
// fixpoint iterator, since Element is a plain value type.
type ConstantDomain[C comparable] struct {
	Element[C]
}

// TopConstant returns the unconstrained constant-domain element.
func TopConstant[C comparable]() ConstantDomain[C] {
	return ConstantDomain[C]{Top[C]()}
}

// BottomConstant returns the unreachable constant-domain element.
func BottomConstant[C comparable]() ConstantDomain[C] {
	return ConstantDomain[C]{Bottom[C]()}
}

// ConstantOf returns the constant-domain element representing the single
// known value c.
func ConstantOf[C comparable](c C) ConstantDomain[C] {
	return ConstantDomain[C]{Of(c)}
}

// Constant returns the known constant and true if d holds one, otherwise
// the carrier's zero value and false.
func (d ConstantDomain[C]) Constant() (C, bool) {
	return d.AsValue()
}

// Join, Meet, Widen and Narrow re-expose the embedded Element operations
// typed over ConstantDomain, so callers composing constant-domain values
// (e.g. a fixpoint iterator merging predecessor states) never have to
// unwrap to the bare Element.

// Join returns the least upper bound of d and other.
func (d ConstantDomain[C]) Join(other ConstantDomain[C]) ConstantDomain[C] {
	return ConstantDomain[C]{d.Element.Join(other.Element)}
}

// Meet returns the greatest lower bound of d and other.
func (d ConstantDomain[C]) Meet(other ConstantDomain[C]) ConstantDomain[C] {
	return ConstantDomain[C]{d.Element.Meet(other.Element)}
}

// Widen accelerates convergence toward a fixpoint; for the flat lattice it
// reduces to Join.
func (d ConstantDomain[C]) Widen(other ConstantDomain[C]) ConstantDomain[C] {
	return ConstantDomain[C]{d.Element.Widen(other.Element)}
}

// Narrow is the dual of Widen; for the flat lattice it reduces to Meet.
func (d ConstantDomain[C]) Narrow(other ConstantDomain[C]) ConstantDomain[C] {
	return ConstantDomain[C]{d.Element.Narrow(other.Element)}
}

// Equals reports whether d and other are structurally equal.
func (d ConstantDomain[C]) Equals(other ConstantDomain[C]) bool {
	return d.Element.Equals(other.Element)
}

// Leq reports whether d ⊑ other.
func (d ConstantDomain[C]) Leq(other ConstantDomain[C]) bool {
	return d.Element.Leq(other.Element)
}
