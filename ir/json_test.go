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

package ir_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cfg-tools/bytecode-analysis/ir"
)

func TestDecodeJSONDiamond(t *testing.T) {
	src := `[
		{"kind": "instruction", "op": "ifnonnull", "terminator": "conditionalBranch", "targets": ["then"]},
		{"kind": "instruction", "op": "goto", "terminator": "goto", "targets": ["join"], "implicit": true},
		{"kind": "target", "name": "then"},
		{"kind": "instruction", "op": "nop"},
		{"kind": "target", "name": "join"},
		{"kind": "instruction", "op": "return", "terminator": "return"}
	]`

	entries, err := ir.DecodeJSON(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, entries, 6)

	branch, ok := entries[0].(*ir.Instruction)
	require.True(t, ok)
	require.Equal(t, ir.ConditionalBranch, branch.Terminator)
	require.Len(t, branch.Targets, 1)

	then, ok := entries[2].(*ir.Target)
	require.True(t, ok)
	require.Equal(t, "then", then.Name)
	require.Same(t, then, branch.Targets[0], "the branch target and the Target entry must be the same pointer")
}

func TestDecodeJSONRejectsUnknownKind(t *testing.T) {
	_, err := ir.DecodeJSON(strings.NewReader(`[{"kind": "bogus"}]`))
	require.Error(t, err)
}

func TestDecodeJSONRejectsUnknownTerminator(t *testing.T) {
	_, err := ir.DecodeJSON(strings.NewReader(`[{"kind": "instruction", "terminator": "bogus"}]`))
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	region := &ir.TryStart{ID: "T1"}
	handler := &ir.Target{Name: "handler"}
	original := []ir.Entry{
		region,
		&ir.Instruction{Op: "call", Text: "invokevirtual foo", Terminator: ir.NotTerminator},
		&ir.TryEnd{Start: region},
		handler,
		&ir.Catch{Region: region},
		&ir.Instruction{Op: "athrow", Terminator: ir.ThrowTerminator},
		&ir.Debug{Text: "line 12"},
		&ir.Position{Line: 12, Column: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, ir.EncodeJSON(&buf, original))

	decoded, err := ir.DecodeJSON(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, len(original))

	gotRegion, ok := decoded[0].(*ir.TryStart)
	require.True(t, ok)
	require.Equal(t, "T1", gotRegion.ID)

	gotEnd, ok := decoded[2].(*ir.TryEnd)
	require.True(t, ok)
	require.Same(t, gotRegion, gotEnd.Start)

	gotCatch, ok := decoded[4].(*ir.Catch)
	require.True(t, ok)
	require.Same(t, gotRegion, gotCatch.Region)

	gotDebug, ok := decoded[6].(*ir.Debug)
	require.True(t, ok)
	require.Equal(t, "line 12", gotDebug.Text)

	gotPos, ok := decoded[7].(*ir.Position)
	require.True(t, ok)
	require.Equal(t, 12, gotPos.Line)
	require.Equal(t, 4, gotPos.Column)
}
