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
    `github.com/zitterbewegung/cinder/internal/hir`
)

/* substitute every use of one value with another, FrameState locals included */
func subst(fn *hir.Func, from hir.Value, to hir.Value) {
    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            if v != nil {
                substuses(v, from, to)
            }
        }
        if bb.Term != nil {
            substuses(bb.Term, from, to)
        }
    }
}

func substuses(v hir.Instr, from hir.Value, to hir.Value) {
    if use, ok := v.(hir.IrUsages); ok {
        for _, r := range use.Usages() {
            if *r == from {
                *r = to
            }
        }
    }
}

/* narrow the recorded type of v by t; contradictions here mean a pass
 * rewrote the IR inconsistently, which is not recoverable */
func narrow(fn *hir.Func, v hir.Value, t hir.Type) bool {
    old := fn.TypeOf(v)
    nt, ok := hir.Intersect(old, t)

    if !ok {
        panic("simplify: contradictory narrowing of " + v.String() + " to " + t.String())
    }
    if nt == old {
        return false
    }

    fn.SetType(v, nt)
    return true
}
