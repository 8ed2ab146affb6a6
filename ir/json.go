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

package ir

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonEntry is the wire shape one Entry decodes to and from. It is a flat
// struct with every field any Entry kind might need; DecodeJSON and
// EncodeJSON only look at the fields relevant to Kind. This is cfgtool's
// bridge format, not a bytecode format: a real upstream reader would
// produce Entry values directly and never touch this file.
type jsonEntry struct {
	Kind       string   `json:"kind"`
	Op         string   `json:"op,omitempty"`
	Text       string   `json:"text,omitempty"`
	Terminator string   `json:"terminator,omitempty"`
	Targets    []string `json:"targets,omitempty"`
	Default    string   `json:"default,omitempty"`
	Implicit   bool     `json:"implicit,omitempty"`
	Name       string   `json:"name,omitempty"`
	ID         string   `json:"id,omitempty"`
	Start      string   `json:"start,omitempty"`
	Region     string   `json:"region,omitempty"`
	Line       int      `json:"line,omitempty"`
	Column     int      `json:"column,omitempty"`
}

var terminatorNames = map[string]Terminator{
	"":                  NotTerminator,
	"none":              NotTerminator,
	"goto":              Goto,
	"conditionalBranch": ConditionalBranch,
	"switch":            SwitchTerminator,
	"throw":             ThrowTerminator,
	"return":            ReturnTerminator,
}

var terminatorText = map[Terminator]string{
	NotTerminator:     "none",
	Goto:              "goto",
	ConditionalBranch: "conditionalBranch",
	SwitchTerminator:  "switch",
	ThrowTerminator:   "throw",
	ReturnTerminator:  "return",
}

// DecodeJSON reads a flat JSON array of entries produced by EncodeJSON (or
// hand-written test fixtures in the same shape) into a []Entry. Target and
// TryStart entries are identified by their "name"/"id" field; every other
// entry that references one (an Instruction's targets/default, a TryEnd's
// start, a Catch's region) does so by that same string, resolved to the
// same *Target/*TryStart object regardless of whether the reference comes
// before or after the declaring entry in the stream.
func DecodeJSON(r io.Reader) ([]Entry, error) {
	var raw []jsonEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("ir: decoding entry stream: %w", err)
	}

	targets := map[string]*Target{}
	tryStarts := map[string]*TryStart{}
	targetFor := func(name string) *Target {
		if t, ok := targets[name]; ok {
			return t
		}
		t := &Target{Name: name}
		targets[name] = t
		return t
	}
	tryStartFor := func(id string) *TryStart {
		if t, ok := tryStarts[id]; ok {
			return t
		}
		t := &TryStart{ID: id}
		tryStarts[id] = t
		return t
	}

	entries := make([]Entry, len(raw))
	for i, e := range raw {
		switch e.Kind {
		case "instruction":
			term, ok := terminatorNames[e.Terminator]
			if !ok {
				return nil, fmt.Errorf("ir: entry %d: unknown terminator %q", i, e.Terminator)
			}
			instr := &Instruction{Op: e.Op, Text: e.Text, Terminator: term, Implicit: e.Implicit}
			for _, name := range e.Targets {
				instr.Targets = append(instr.Targets, targetFor(name))
			}
			if e.Default != "" {
				instr.Default = targetFor(e.Default)
			}
			entries[i] = instr
		case "target":
			if e.Name == "" {
				return nil, fmt.Errorf("ir: entry %d: target missing name", i)
			}
			entries[i] = targetFor(e.Name)
		case "tryStart":
			if e.ID == "" {
				return nil, fmt.Errorf("ir: entry %d: tryStart missing id", i)
			}
			entries[i] = tryStartFor(e.ID)
		case "tryEnd":
			if e.Start == "" {
				return nil, fmt.Errorf("ir: entry %d: tryEnd missing start", i)
			}
			entries[i] = &TryEnd{Start: tryStartFor(e.Start)}
		case "catch":
			if e.Region == "" {
				return nil, fmt.Errorf("ir: entry %d: catch missing region", i)
			}
			entries[i] = &Catch{Region: tryStartFor(e.Region)}
		case "debug":
			entries[i] = &Debug{Text: e.Text}
		case "position":
			entries[i] = &Position{Line: e.Line, Column: e.Column}
		default:
			return nil, fmt.Errorf("ir: entry %d: unknown kind %q", i, e.Kind)
		}
	}
	return entries, nil
}

// EncodeJSON writes entries in the shape DecodeJSON reads. Target and
// TryStart pointer identity is preserved across the round trip by name/ID,
// not by value, so entries must carry unique, non-empty Target.Name and
// TryStart.ID values for a lossless round trip.
func EncodeJSON(w io.Writer, entries []Entry) error {
	raw := make([]jsonEntry, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case *Instruction:
			je := jsonEntry{Kind: "instruction", Op: v.Op, Text: v.Text, Implicit: v.Implicit}
			je.Terminator = terminatorText[v.Terminator]
			for _, t := range v.Targets {
				je.Targets = append(je.Targets, t.Name)
			}
			if v.Default != nil {
				je.Default = v.Default.Name
			}
			raw[i] = je
		case *Target:
			raw[i] = jsonEntry{Kind: "target", Name: v.Name}
		case *TryStart:
			raw[i] = jsonEntry{Kind: "tryStart", ID: v.ID}
		case *TryEnd:
			raw[i] = jsonEntry{Kind: "tryEnd", Start: v.Start.ID}
		case *Catch:
			raw[i] = jsonEntry{Kind: "catch", Region: v.Region.ID}
		case *Debug:
			raw[i] = jsonEntry{Kind: "debug", Text: v.Text}
		case *Position:
			raw[i] = jsonEntry{Kind: "position", Line: v.Line, Column: v.Column}
		default:
			return fmt.Errorf("ir: entry %d: unhandled entry type %T", i, entry)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}
