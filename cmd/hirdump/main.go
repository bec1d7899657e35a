/*
 * Copyright 2023 The Cinder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command hirdump reads a function in the canonical HIR textual form, runs
// the post-inlining simplifier over it, and prints the result. It is the
// off-pipeline harness for inspecting what the simplifier does to a given
// input; the JIT pipeline itself never goes through text.
package main

import (
    `fmt`
    `os`

    `github.com/spf13/cobra`
    `gopkg.in/yaml.v3`

    `github.com/zitterbewegung/cinder/internal/hir`
    `github.com/zitterbewegung/cinder/internal/simplify`
)

type _Config struct {
    Disable   []string `yaml:"disable"`
    MaxRounds int      `yaml:"max_rounds"`
}

func main() {
    var cfgPath string
    var verifyOnly bool
    var noSimplify bool

    cmd := &cobra.Command {
        Use:   "hirdump [flags] <file.hir>",
        Short: "run the post-inlining HIR simplifier over a textual function",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            cmd.SilenceUsage = true
            return run(args[0], cfgPath, verifyOnly, noSimplify)
        },
    }

    cmd.Flags().StringVar(&cfgPath, "config", "", "YAML config selecting passes to disable and the round cap")
    cmd.Flags().BoolVar(&verifyOnly, "verify-only", false, "verify the input IR and exit")
    cmd.Flags().BoolVar(&noSimplify, "no-simplify", false, "print the parsed IR without simplifying (round-trip check)")

    if err := cmd.Execute(); err != nil {
        os.Exit(1)
    }
}

func run(path string, cfgPath string, verifyOnly bool, noSimplify bool) error {
    src, err := os.ReadFile(path)
    if err != nil {
        return err
    }

    fn, err := hir.ParseFunc(string(src))
    if err != nil {
        return err
    }

    if verifyOnly {
        return fn.Verify()
    }

    if !noSimplify {
        opts, err := loadConfig(cfgPath)
        if err != nil {
            return err
        }
        if err := simplify.OptimizeWith(fn, opts); err != nil {
            return err
        }
    }

    fmt.Print(fn.String())
    return nil
}

func loadConfig(path string) (simplify.Options, error) {
    var cfg _Config
    if path == "" {
        return simplify.Options{}, nil
    }

    buf, err := os.ReadFile(path)
    if err != nil {
        return simplify.Options{}, err
    }
    if err := yaml.Unmarshal(buf, &cfg); err != nil {
        return simplify.Options{}, fmt.Errorf("hirdump: malformed config %s: %w", path, err)
    }

    return simplify.Options {
        Disabled:  cfg.Disable,
        MaxRounds: cfg.MaxRounds,
    }, nil
}
