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
    `math`

    `github.com/zitterbewegung/cinder/internal/hir`
)

// Fold rewrites binary operations whose operands are both exact known
// constants into a single LoadConst, iff the operator cannot raise for the
// static operand types. Unbounded integers fold with overflow-checked
// 64-bit math: a result that does not fit the constant payload is left
// unfolded, which is conservative, not an error. Fixed-width integers fold
// with two's-complement wraparound at their own width.
//
// The rewritten instruction keeps its result value number, so diffing the
// function before and after shows stable numbering.
type Fold struct{}

func (self Fold) Apply(fn *hir.Func) bool {
    changed := false

    for _, bb := range fn.Blocks {
        for i, v := range bb.Ins {
            p, ok := v.(*hir.IrBinaryOp)
            if !ok {
                continue
            }
            if ct, ok := self.fold(fn, p); ok {
                bb.Ins[i] = &hir.IrLoadConst { R: p.R, T: ct }
                narrow(fn, p.R, ct)
                changed = true
            }
        }
    }
    return changed
}

func (self Fold) fold(fn *hir.Func, p *hir.IrBinaryOp) (hir.Type, bool) {
    tx := fn.TypeOf(p.X)
    ty := fn.TypeOf(p.Y)

    /* the operator must be total for the static types, and both operands
     * must carry a known payload */
    if !totalBinOp(p.Op, tx, ty) {
        return hir.Type{}, false
    }

    switch {
        case tx.Kind.IsCInt():
            if !tx.HasIntSpec() || !ty.HasIntSpec() {
                return hir.Type{}, false
            }
            return self.foldCInt(p.Op, tx.Kind, tx.IntSpec(), ty.IntSpec())

        case tx.Kind == hir.KLong:
            if !tx.HasIntSpec() || !ty.HasIntSpec() {
                return hir.Type{}, false
            }
            return self.foldLong(p.Op, tx.IntSpec(), ty.IntSpec())

        case tx.Kind == hir.KUnicode:
            if !tx.HasStrSpec() || !ty.HasStrSpec() {
                return hir.Type{}, false
            }
            return hir.UnicodeConst(tx.StrSpec() + ty.StrSpec(), hir.LifeMortal), true

        default:
            return hir.Type{}, false
    }
}

func (self Fold) foldCInt(op hir.BinOp, k hir.Kind, x int64, y int64) (hir.Type, bool) {
    switch op {
        case hir.OpAdd      : return hir.CIntConst(k, x + y), true
        case hir.OpSubtract : return hir.CIntConst(k, x - y), true
        case hir.OpMultiply : return hir.CIntConst(k, x * y), true
        case hir.OpAnd      : return hir.CIntConst(k, x & y), true
        case hir.OpOr       : return hir.CIntConst(k, x | y), true
        case hir.OpXor      : return hir.CIntConst(k, x ^ y), true

        /* FloorDivide floors towards negative infinity at every width,
         * then wraps to the width like the other operators */
        case hir.OpFloorDivide:
            if q, ok := floordiv(x, y); ok {
                return hir.CIntConst(k, q), true
            }
            return hir.Type{}, false

        default:
            return hir.Type{}, false
    }
}

func (self Fold) foldLong(op hir.BinOp, x int64, y int64) (hir.Type, bool) {
    var rv int64
    var ok bool

    switch op {
        case hir.OpAdd         : rv, ok = addvv(x, y)
        case hir.OpSubtract    : rv, ok = subvv(x, y)
        case hir.OpMultiply    : rv, ok = mulvv(x, y)
        case hir.OpAnd         : rv, ok = x & y, true
        case hir.OpOr          : rv, ok = x | y, true
        case hir.OpXor         : rv, ok = x ^ y, true
        case hir.OpFloorDivide : rv, ok = floordiv(x, y)
        default                : return hir.Type{}, false
    }

    if !ok {
        return hir.Type{}, false
    }
    return hir.LongConst(rv), true
}

func addvv(x int64, y int64) (int64, bool) {
    r := x + y
    return r, (x ^ r) & (y ^ r) >= 0
}

func subvv(x int64, y int64) (int64, bool) {
    r := x - y
    return r, (x ^ y) & (x ^ r) >= 0
}

func mulvv(x int64, y int64) (int64, bool) {
    if x == 0 || y == 0 {
        return 0, true
    }
    r := x * y
    return r, r / y == x && !(x == -1 && y == math.MinInt64) && !(y == -1 && x == math.MinInt64)
}

/* unbounded integer division floors towards negative infinity */
func floordiv(x int64, y int64) (int64, bool) {
    if x == math.MinInt64 && y == -1 {
        return 0, false
    }
    q := x / y
    if x % y != 0 && (x < 0) != (y < 0) {
        q--
    }
    return q, true
}
