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

import (
	"fmt"

	"golang.org/x/xerrors"
)

// StructuralError reports a defect in the input entry stream that Build
// cannot recover from: a *ir.TryEnd whose Start was never opened, a
// *ir.Catch whose Region was never opened, or a post-prune sanity check
// (every remaining block reachable from Entry) that failed. StructuralError
// always wraps a frame via xerrors so %+v prints the call site that raised
// it, matching how the rest of the module reports fatal construction
// failures.
type StructuralError struct {
	frame xerrors.Frame
	msg   string
}

func newStructuralError(msg string, args ...interface{}) *StructuralError {
	return &StructuralError{
		frame: xerrors.Caller(1),
		msg:   fmt.Sprintf(msg, args...),
	}
}

func (e *StructuralError) Error() string {
	return "cfg: " + e.msg
}

// FormatError implements xerrors.Formatter.
func (e *StructuralError) FormatError(p xerrors.Printer) (next error) {
	p.Print(e.Error())
	e.frame.Format(p)
	return nil
}

// Format implements fmt.Formatter via xerrors.FormatError.
func (e *StructuralError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}
