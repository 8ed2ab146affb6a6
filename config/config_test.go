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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.Equal(t, DefaultBatchConcurrency, cfg.BatchConcurrency)
	assert.Empty(t, cfg.SourceFile())
}

func TestLoadEmptyFilenameReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, NewDefault().OutputFormat, cfg.OutputFormat)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfgtool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output-format: dot
fatal-on-prune-warning: true
batch-concurrency: 16
cache-dir: /tmp/cfgtool-cache
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dot", cfg.OutputFormat)
	assert.True(t, cfg.FatalOnPruneWarning)
	assert.Equal(t, 16, cfg.BatchConcurrency)
	assert.Equal(t, "/tmp/cfgtool-cache", cfg.CacheDir)
	assert.Equal(t, path, cfg.SourceFile())
}

func TestLoadRejectsUnknownOutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfgtool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output-format: xml\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadReplacesNegativeBatchConcurrencyWithDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfgtool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch-concurrency: -3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchConcurrency, cfg.BatchConcurrency)
}

func TestSetGlobalConfigAndLoadGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfgtool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output-format: dot\n"), 0o644))

	SetGlobalConfig(path)
	t.Cleanup(func() { SetGlobalConfig("") })

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "dot", cfg.OutputFormat)
}
