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

// Package config loads cmd/cfgtool's YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultBatchConcurrency is the batch subcommand's concurrency limit when
// the config file does not set a positive one.
const DefaultBatchConcurrency = 4

// The global config filename, set by SetGlobalConfig and read by LoadGlobal.
var configFile string

// SetGlobalConfig sets the filename LoadGlobal reads.
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file set by SetGlobalConfig.
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Options holds every user-settable field. It is embedded in Config so a
// config file's keys unmarshal directly into it.
type Options struct {
	// OutputFormat names a rendering, "text" or "dot"; Load rejects any
	// other value. No subcommand reads it: build always prints text and
	// dot always prints DOT.
	OutputFormat string `yaml:"output-format"`

	// FatalOnPruneWarning makes cfgtool turn Build's unreachable-block
	// pruning into a hard error instead of only a debug-level log record --
	// useful in CI, where silently discarding dead bytecode blocks should
	// fail the run.
	FatalOnPruneWarning bool `yaml:"fatal-on-prune-warning"`

	// BatchConcurrency bounds how many files the batch subcommand processes
	// concurrently.
	BatchConcurrency int `yaml:"batch-concurrency"`

	// CacheDir is where internal/domcache stores computed dominator trees.
	// Empty disables the cache.
	CacheDir string `yaml:"cache-dir"`
}

// Config is the fully loaded, post-processed configuration.
type Config struct {
	Options `yaml:",inline"`

	// sourceFile is the path Config was loaded from; empty for NewDefault.
	sourceFile string
}

// SourceFile returns the path c was loaded from, or "" for a default config.
func (c *Config) SourceFile() string { return c.sourceFile }

// NewDefault returns a Config with every field at its zero-config default.
func NewDefault() *Config {
	return &Config{
		Options: Options{
			OutputFormat:        "text",
			FatalOnPruneWarning: false,
			BatchConcurrency:    DefaultBatchConcurrency,
			CacheDir:            defaultCacheDir(),
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".cfgtool-cache"
	}
	return filepath.Join(dir, "cfgtool")
}

// Load reads and validates a YAML config file at filename. A missing file
// is not an error -- Load returns the defaults, since cfgtool has no
// required configuration.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	if filename == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", filename, err)
	}
	cfg.sourceFile = filename

	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}
	if cfg.OutputFormat != "text" && cfg.OutputFormat != "dot" {
		return nil, fmt.Errorf("config: %s: unknown output-format %q (want %q or %q)",
			filename, cfg.OutputFormat, "text", "dot")
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = DefaultBatchConcurrency
	}
	return cfg, nil
}
