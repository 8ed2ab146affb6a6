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

package graphutil

import "golang.org/x/exp/slices"

// Tree is a simple, parent-linked generic tree. cfg's DOT printer uses it
// to track try-region nesting: each region becomes a node, nested regions
// become children, and Ancestors walks a block's innermost region back out
// to the method body for the region line it adds to the block's label.
type Tree[T any] struct {
	Parent   *Tree[T]
	Children []*Tree[T]
	Label    T
}

// NewTree returns a new singleton tree labeled rootLabel.
func NewTree[T any](rootLabel T) *Tree[T] {
	return &Tree[T]{Label: rootLabel}
}

// AddChild appends a new child labeled label and returns it.
func (t *Tree[T]) AddChild(label T) *Tree[T] {
	child := &Tree[T]{Parent: t, Label: label}
	t.Children = append(t.Children, child)
	return child
}

// Ancestors returns the chain of up to n nodes from t outward (t itself
// counts as the first), ordered outermost first and ending at t. If n < 0
// the chain runs from the root down to t.
func (t *Tree[T]) Ancestors(n int) []*Tree[T] {
	var chain []*Tree[T]
	cur := t
	for i := 0; cur != nil && (i < n || n < 0); i++ {
		chain = append(chain, cur)
		cur = cur.Parent
	}
	slices.Reverse(chain)
	return chain
}
