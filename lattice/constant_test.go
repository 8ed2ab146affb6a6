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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantDomainBasics(t *testing.T) {
	top := TopConstant[string]()
	bot := BottomConstant[string]()
	five := ConstantOf("five")

	assert.True(t, top.IsTop())
	assert.True(t, bot.IsBottom())

	c, ok := five.Constant()
	require.True(t, ok)
	assert.Equal(t, "five", c)

	_, ok = top.Constant()
	assert.False(t, ok)
}

func TestConstantDomainJoinMeet(t *testing.T) {
	a := ConstantOf(1)
	b := ConstantOf(2)

	assert.True(t, a.Join(a).Equals(a))
	assert.True(t, a.Join(b).IsTop())
	assert.True(t, a.Meet(b).IsBottom())
	assert.True(t, a.Leq(TopConstant[int]()))
	assert.True(t, BottomConstant[int]().Leq(a))
}

func TestConstantDomainAsMapCell(t *testing.T) {
	// A fixpoint iterator merges predecessor abstract states via a map from
	// variable name to abstract value.
	stateA := map[string]ConstantDomain[int]{"x": ConstantOf(1), "y": TopConstant[int]()}
	stateB := map[string]ConstantDomain[int]{"x": ConstantOf(1), "y": ConstantOf(2)}

	merged := map[string]ConstantDomain[int]{}
	for k, v := range stateA {
		merged[k] = v
	}
	for k, v := range stateB {
		if cur, ok := merged[k]; ok {
			merged[k] = cur.Join(v)
		} else {
			merged[k] = v
		}
	}

	assert.True(t, merged["x"].Equals(ConstantOf(1)))
	assert.True(t, merged["y"].IsTop())
}

func TestConstantDomainString(t *testing.T) {
	assert.Equal(t, "_|_", BottomConstant[int]().String())
	assert.Equal(t, "T", TopConstant[int]().String())
	assert.Equal(t, "42", ConstantOf(42).String())
}
