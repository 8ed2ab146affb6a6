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
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/cfg-tools/bytecode-analysis/config"
)

var batchCommand = &cli.Command{
	Name:      "batch",
	Usage:     "build a CFG for each of several independent input files, concurrently",
	ArgsUsage: "<entries.json> [entries.json ...]",
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.Exit("batch: expected at least one input file", 2)
		}
		cfgOpts, err := config.LoadGlobal()
		if err != nil {
			return err
		}

		paths := c.Args().Slice()
		results := make([]batchResult, len(paths))

		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(cfgOpts.BatchConcurrency)
		var mu sync.Mutex

		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				graph, _, err := buildGraph(cfgOpts, path)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					results[i] = batchResult{path: path, err: err}
					return nil // one file's structural error does not abort the batch
				}
				results[i] = batchResult{path: path, numBlocks: graph.NumBlocks()}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		slices.SortFunc(results, func(a, b batchResult) int { return strings.Compare(a.path, b.path) })
		failed := 0
		for _, r := range results {
			if r.err != nil {
				failed++
				fmt.Printf("%s: ERROR: %v\n", r.path, r.err)
				continue
			}
			fmt.Printf("%s: %d blocks\n", r.path, r.numBlocks)
		}
		if failed > 0 {
			return cli.Exit(fmt.Sprintf("batch: %d/%d file(s) failed to build", failed, len(paths)), 1)
		}
		return nil
	},
}

type batchResult struct {
	path      string
	numBlocks int
	err       error
}
