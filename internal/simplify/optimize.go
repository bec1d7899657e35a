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

package simplify

import (
    `os`

    `github.com/davecgh/go-spew/spew`

    `github.com/zitterbewegung/cinder/internal/hir`
)

// Pass is one rewrite of the function, reporting whether it changed the IR
// structurally. Pure type narrowing does not count as a change.
type Pass interface {
    Apply(*hir.Func) bool
}

type _PassDescriptor struct {
    pass Pass
    desc string
}

var _passes = [...]_PassDescriptor {
    { desc: "Type & Constant Propagation" , pass: new(TypeProp) },
    { desc: "Arithmetic Folding"          , pass: new(Fold) },
    { desc: "Inline Frame Elimination"    , pass: new(InlineFrameElim) },
    { desc: "Store Forwarding"            , pass: new(StoreFwd) },
}

// Optimize simplifies one function in place, running the pass pipeline to
// a fixed point. The function's IR must be exclusively owned by the caller
// for the duration of the run; nothing here synchronizes.
//
// Malformed input and a missed fixed point are reported as errors, never
// as partial output.
func Optimize(fn *hir.Func) error {
    return OptimizeWith(fn, Options{})
}

func OptimizeWith(fn *hir.Func, opts Options) error {
    if err := fn.Verify(); err != nil {
        return err
    }

    /* every rewrite strictly shrinks the progress metric, so the round
     * count is bounded by the initial metric */
    metric := progress(fn)
    rounds := opts.maxRounds(metric)

    for i := 0; i < rounds; i++ {
        changed := false
        for _, p := range _passes {
            if opts.disabled(p.desc) {
                continue
            }
            if p.pass.Apply(fn) {
                changed = true
            }
        }

        /* fixed point reached */
        if !changed {
            return nil
        }

        /* a changed round that does not shrink the metric would loop
         * forever; fail loudly instead */
        if m := progress(fn); m >= metric {
            dumpfailure(fn, i, m)
            return hir.ConvergenceError { Func: fn.Name, Rounds: i + 1, Metric: m }
        } else {
            metric = m
        }
    }

    m := progress(fn)
    dumpfailure(fn, rounds, m)
    return hir.ConvergenceError { Func: fn.Name, Rounds: rounds, Metric: m }
}

// progress is the monotonic progress measure: live instructions, plus
// unresolved type assertions, plus unfolded binary operations, plus
// attached frame states. Every rewrite rule decreases it and none
// increases it.
func progress(fn *hir.Func) int {
    m := fn.NumInstrs()

    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            switch v.(type) {
                case *hir.IrUseType  : m++
                case *hir.IrBinaryOp : m++
            }
            if fr, ok := v.(hir.IrFramed); ok && fr.FrameState() != nil {
                m++
            }
        }
    }
    return m
}

func dumpfailure(fn *hir.Func, round int, metric int) {
    if os.Getenv("CINDER_SIMPLIFY_DEBUG") == "" {
        return
    }
    println("simplify: convergence failure in", fn.Name, "at round", round, "metric", metric)
    spew.Config.SortKeys = true
    spew.Dump(fn.Blocks)
    println(fn.String())
}
