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

// Package domcache persists computed dominator trees to disk, keyed by a
// content hash of the entry stream cfg.Build derived them from. A method
// body's dominator tree never changes once its bytecode does not, so unlike
// an LRU cache this one never evicts on its own -- entries are addressed by
// content, not recency.
package domcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cfg-tools/bytecode-analysis/cfg"
	"github.com/cfg-tools/bytecode-analysis/ir"
)

// Store persists dominator trees under dir, one msgpack file per content
// hash.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. dir is created lazily, on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// record is the on-disk shape of a dominator tree.
type record struct {
	Blocks []int32 `msgpack:"blocks"`
	Idom   []int32 `msgpack:"idom"`
}

// Hash returns a stable content hash for entries, suitable as a cache key.
// Two entry streams that are structurally identical but built from distinct
// *ir.Target/*ir.TryStart objects (e.g. the same method decoded twice) hash
// equal, since Hash numbers marker pointers by first occurrence rather than
// hashing pointer values.
func Hash(entries []ir.Entry) string {
	h := sha256.New()
	targetID := map[*ir.Target]int{}
	tryID := map[*ir.TryStart]int{}
	labelOf := func(t *ir.Target) int {
		if id, ok := targetID[t]; ok {
			return id
		}
		id := len(targetID)
		targetID[t] = id
		return id
	}
	tryLabelOf := func(t *ir.TryStart) int {
		if id, ok := tryID[t]; ok {
			return id
		}
		id := len(tryID)
		tryID[t] = id
		return id
	}

	for _, e := range entries {
		switch v := e.(type) {
		case *ir.Instruction:
			fmt.Fprintf(h, "I|%s|%d|%v", v.Op, v.Terminator, v.Implicit)
			for _, t := range v.Targets {
				fmt.Fprintf(h, "|t%d", labelOf(t))
			}
			if v.Default != nil {
				fmt.Fprintf(h, "|d%d", labelOf(v.Default))
			}
		case *ir.Target:
			fmt.Fprintf(h, "T%d", labelOf(v))
		case *ir.TryStart:
			fmt.Fprintf(h, "S%d", tryLabelOf(v))
		case *ir.TryEnd:
			fmt.Fprintf(h, "E%d", tryLabelOf(v.Start))
		case *ir.Catch:
			fmt.Fprintf(h, "C%d", tryLabelOf(v.Region))
		case *ir.Debug, *ir.Position:
			// Inert to control flow; excluded from the key so a debug-info
			// stripping pass does not invalidate every cache entry.
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".domtree")
}

// Load returns the cached dominator tree for key against g, if present. The
// caller is responsible for only calling Load with a g that Build actually
// produced from the entries key was hashed from -- domcache has no way to
// verify that on its own.
func (s *Store) Load(g *cfg.Graph, key string) (*cfg.Dominators, bool, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("domcache: opening %s: %w", key, err)
	}
	defer f.Close()

	var rec record
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, false, fmt.Errorf("domcache: decoding %s: %w", key, err)
	}
	return cfg.FromFlattened(g, rec.Blocks, rec.Idom), true, nil
}

// Save persists d under key, replacing any existing entry. It writes to a
// temp file and renames over the destination so a reader never observes a
// partially written cache entry.
func (s *Store) Save(key string, d *cfg.Dominators) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("domcache: creating %s: %w", s.dir, err)
	}
	blocks, idom := d.Flatten()

	tmp, err := os.CreateTemp(s.dir, "domtree-*.tmp")
	if err != nil {
		return fmt.Errorf("domcache: creating temp file: %w", err)
	}
	if err := msgpack.NewEncoder(tmp).Encode(record{Blocks: blocks, Idom: idom}); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("domcache: encoding %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("domcache: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("domcache: installing %s: %w", key, err)
	}
	return nil
}

// Delete removes the cached entry for key, if any.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("domcache: removing %s: %w", key, err)
	}
	return nil
}
