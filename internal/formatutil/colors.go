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

// Package formatutil styles cfgtool's terminal output: block headers,
// edge-kind labels, and the like. Every styling function degrades to plain
// text when stdout is not a terminal, so piping cfgtool's output never
// leaves ANSI escapes in a file.
package formatutil

import (
	"fmt"

	"golang.org/x/term"
)

var (
	// Bold marks up block headers ("B3") in the text dump format.
	Bold = ansiStyle("\033[1m%s\033[0m")
	// Faint marks up an edge kind that needs no visual attention (GOTO).
	Faint = ansiStyle("\033[2m%s\033[0m")
	// Yellow marks up a conditional-branch edge kind.
	Yellow = ansiStyle("\033[1;33m%s\033[0m")
	// Red marks up a throw edge kind.
	Red = ansiStyle("\033[1;31m%s\033[0m")
)

// ansiStyle builds a formatting function that wraps its arguments in the
// given ANSI escape pair, unless stdout isn't a terminal, in which case it
// falls back to plain concatenation.
func ansiStyle(escape string) func(...interface{}) string {
	return func(args ...interface{}) string {
		text := fmt.Sprint(args...)
		if !term.IsTerminal(1) {
			return text
		}
		return fmt.Sprintf(escape, text)
	}
}
