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

// cfgtool builds, renders and inspects control-flow graphs from a flat
// JSON-encoded instruction stream (ir.DecodeJSON's format).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/cfg-tools/bytecode-analysis/cfg"
	"github.com/cfg-tools/bytecode-analysis/config"
	"github.com/cfg-tools/bytecode-analysis/internal/domcache"
	"github.com/cfg-tools/bytecode-analysis/ir"
)

var log = logrus.New()

func main() {
	app := &cli.App{
		Name:  "cfgtool",
		Usage: "build, render and inspect control-flow graphs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log debug-level detail"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: ".cfgtool.yaml", Usage: "config file"},
		},
		Before: func(c *cli.Context) error {
			log.SetFormatter(&logrus.TextFormatter{})
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			config.SetGlobalConfig(c.String("config"))
			return nil
		},
		Commands: []*cli.Command{
			buildCommand,
			dotCommand,
			dominatorsCommand,
			batchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		var structural *cfg.StructuralError
		if xerrors.As(err, &structural) {
			fmt.Fprintf(os.Stderr, "%+v", structural)
			fmt.Fprintln(os.Stderr)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadEntries reads and decodes the JSON entry stream at path.
func loadEntries(path string) ([]ir.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cfgtool: opening %s: %w", path, err)
	}
	defer f.Close()
	entries, err := ir.DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("cfgtool: %s: %w", path, err)
	}
	return entries, nil
}

// buildGraph builds a graph from path, honoring cfg's FatalOnPruneWarning
// setting: if set, any pruned block turns the build into a hard error
// instead of a logged debug line.
func buildGraph(cfgOpts *config.Config, path string) (*cfg.Graph, []ir.Entry, error) {
	entries, err := loadEntries(path)
	if err != nil {
		return nil, nil, err
	}

	pruneCount := 0
	entry := logrus.NewEntry(log)
	if cfgOpts.FatalOnPruneWarning {
		hook := &pruneCountHook{count: &pruneCount}
		hookedLogger := logrus.New()
		hookedLogger.SetLevel(logrus.DebugLevel)
		hookedLogger.AddHook(hook)
		entry = logrus.NewEntry(hookedLogger)
	}

	g, err := cfg.Build(entries, entry)
	if err != nil {
		return nil, nil, err
	}
	if cfgOpts.FatalOnPruneWarning && pruneCount > 0 {
		return nil, nil, fmt.Errorf("cfgtool: %s: %d unreachable block(s) pruned and fatal-on-prune-warning is set", path, pruneCount)
	}
	return g, entries, nil
}

// pruneCountHook counts cfg.Build's "pruning unreachable block" debug
// records so buildGraph can turn them into a hard error when configured to.
type pruneCountHook struct {
	count *int
}

func (h *pruneCountHook) Levels() []logrus.Level { return []logrus.Level{logrus.DebugLevel} }

func (h *pruneCountHook) Fire(e *logrus.Entry) error {
	if e.Message == "cfg: pruning unreachable block" {
		*h.count++
	}
	return nil
}

// domStore returns a domcache.Store rooted at cfgOpts's cache directory, or
// nil if caching is disabled (empty CacheDir).
func domStore(cfgOpts *config.Config) *domcache.Store {
	if cfgOpts.CacheDir == "" {
		return nil
	}
	return domcache.NewStore(cfgOpts.CacheDir)
}
