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

package main

import (
	"github.com/cfg-tools/bytecode-analysis/cfg"
	"github.com/cfg-tools/bytecode-analysis/internal/formatutil"
)

// colorizeKind renders an edge kind the way the "text" dump format colors
// it, composing formatutil's terminal-aware color functions (which already
// no-op when stdout is not a terminal) rather than reimplementing that
// check here.
func colorizeKind(k cfg.EdgeKind) string {
	switch k {
	case cfg.GOTO:
		return formatutil.Faint(k.String())
	case cfg.BRANCH:
		return formatutil.Yellow(k.String())
	case cfg.THROW:
		return formatutil.Red(k.String())
	default:
		return k.String()
	}
}

func colorizeBlockHeader(id int) string {
	return formatutil.Bold("B", id)
}
