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

// TypeProp propagates exact types and constants forward through each block
// and resolves type assertions that the propagated facts make redundant.
//
// Pure type narrowing runs to its own fixed point here and does not count
// as a structural change; only deleting a resolved UseType does. That keeps
// the driver's progress metric strictly decreasing on changed rounds.
type TypeProp struct{}

func (self TypeProp) Apply(fn *hir.Func) bool {
    for !self.sweep(fn) {
        /* re-run until the type tables stop narrowing */
    }
    return self.resolve(fn)
}

/* one forward sweep; reports true when no type changed */
func (self TypeProp) sweep(fn *hir.Func) bool {
    done := true

    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            switch p := v.(type) {
                case *hir.IrLoadConst : if narrow(fn, p.R, p.T)                       { done = false }
                case *hir.IrLoadArg   : if narrow(fn, p.R, p.T)                       { done = false }
                case *hir.IrUseType   : if narrow(fn, p.R, self.assertType(fn, p))    { done = false }
                case *hir.IrTpAlloc   : if narrow(fn, p.R, self.allocType())          { done = false }
                case *hir.IrBinaryOp  : if self.binop(fn, p)                          { done = false }
            }
        }
    }
    return done
}

func (self TypeProp) assertType(fn *hir.Func, p *hir.IrUseType) hir.Type {
    if nt, ok := hir.Intersect(fn.TypeOf(p.V), p.T); ok {
        return nt
    } else {
        panic("typeprop: contradicted assertion survived verification: " + p.String())
    }
}

func (self TypeProp) allocType() hir.Type {
    return hir.TypeOf(hir.KObject).AsExact().Mortal()
}

/* narrow a binary operation's result at the kind level; the payload-level
 * rewrite belongs to the folder */
func (self TypeProp) binop(fn *hir.Func, p *hir.IrBinaryOp) bool {
    tx := fn.TypeOf(p.X)
    ty := fn.TypeOf(p.Y)

    if !totalBinOp(p.Op, tx, ty) {
        return false
    }

    switch {
        case tx.Kind.IsCInt()        : return narrow(fn, p.R, hir.TypeOf(tx.Kind))
        case tx.Kind == hir.KLong    : return narrow(fn, p.R, hir.TypeOf(hir.KLong).AsExact())
        case tx.Kind == hir.KUnicode : return narrow(fn, p.R, hir.TypeOf(hir.KUnicode).AsExact())
        default                      : return false
    }
}

/* delete assertions whose fact is evident from the operand's own type */
func (self TypeProp) resolve(fn *hir.Func) bool {
    changed := false

    for _, bb := range fn.Blocks {
        for i, v := range bb.Ins {
            p, ok := v.(*hir.IrUseType)
            if !ok {
                continue
            }

            vt := fn.TypeOf(p.V)
            if !vt.IsSpecialized() || !vt.NarrowerEq(p.T) {
                continue
            }

            /* the assertion is pure documentation now; route every use of
             * its result to the operand and drop it */
            subst(fn, p.R, p.V)
            bb.Ins[i] = nil
            changed = true
        }
    }

    if changed {
        fn.Compact()
    }
    return changed
}
