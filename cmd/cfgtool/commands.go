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
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slices"

	"github.com/cfg-tools/bytecode-analysis/cfg"
	"github.com/cfg-tools/bytecode-analysis/config"
	"github.com/cfg-tools/bytecode-analysis/internal/domcache"
)

var buildCommand = &cli.Command{
	Name:      "build",
	Usage:     "build a CFG from a JSON entry stream and print its block/edge structure",
	ArgsUsage: "<entries.json>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("build: expected exactly one input file", 2)
		}
		cfgOpts, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		g, _, err := buildGraph(cfgOpts, c.Args().Get(0))
		if err != nil {
			return err
		}
		fmt.Print(textDump(g))
		return nil
	},
}

var dotCommand = &cli.Command{
	Name:      "dot",
	Usage:     "render a CFG as Graphviz DOT",
	ArgsUsage: "<entries.json>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("dot: expected exactly one input file", 2)
		}
		cfgOpts, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		path := c.Args().Get(0)
		g, _, err := buildGraph(cfgOpts, path)
		if err != nil {
			return err
		}
		out, err := cfg.DOT(g, path)
		if err != nil {
			return err
		}
		if dest := c.String("out"); dest != "" {
			return os.WriteFile(dest, []byte(out), 0o644)
		}
		fmt.Print(out)
		return nil
	},
}

var dominatorsCommand = &cli.Command{
	Name:      "dominators",
	Usage:     "compute and print the immediate-dominator map of a CFG",
	ArgsUsage: "<entries.json>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("dominators: expected exactly one input file", 2)
		}
		cfgOpts, err := config.LoadGlobal()
		if err != nil {
			return err
		}
		path := c.Args().Get(0)
		g, entries, err := buildGraph(cfgOpts, path)
		if err != nil {
			return err
		}

		store := domStore(cfgOpts)
		var dom *cfg.Dominators
		var key string
		if store != nil {
			key = domcache.Hash(entries)
			cached, found, err := store.Load(g, key)
			if err != nil {
				log.WithError(err).Warn("cfgtool: dominator cache read failed, recomputing")
			} else if found {
				dom = cached
			}
		}
		if dom == nil {
			dom = cfg.ComputeDominators(g)
			if store != nil {
				if err := store.Save(key, dom); err != nil {
					log.WithError(err).Warn("cfgtool: failed to persist dominator cache entry")
				}
			}
		}

		ids := g.Blocks()
		slices.Sort(ids)
		for _, id := range ids {
			idom, ok := dom.Idom(id)
			if !ok {
				continue
			}
			fmt.Printf("B%d -> B%d\n", int(id), int(idom))
		}
		return nil
	},
}

// textDump renders g's blocks and edges as plain, colorized text.
func textDump(g *cfg.Graph) string {
	var out string
	ids := g.Blocks()
	slices.Sort(ids)
	for _, id := range ids {
		blk, _ := g.Block(id)
		out += colorizeBlockHeader(int(id)) + "\n"
		for _, instr := range blk.Instructions() {
			text := instr.Text
			if text == "" {
				text = instr.Op
			}
			out += "    " + text + "\n"
		}
		for _, e := range g.Successors(id) {
			out += fmt.Sprintf("    -> B%d [%s]\n", int(e.Target), colorizeKind(e.Kind))
		}
	}
	if exit, ok := g.Exit(); ok {
		out += fmt.Sprintf("exit: B%d\n", int(exit))
	} else {
		out += "exit: none\n"
	}
	return out
}
