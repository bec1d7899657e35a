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

// raises reports whether the instruction can raise or deoptimize under any
// operand value it could receive at runtime, given the current static
// types. This classification decides both which FrameStates must be kept
// and which inline-frame marker pairs may be dropped, so it errs on the
// side of "yes".
func raises(fn *hir.Func, v hir.Instr) bool {
    switch p := v.(type) {
        case *hir.IrLoadConst    : return false
        case *hir.IrLoadArg      : return false
        case *hir.IrUseType      : return false
        case *hir.IrBeginInlined : return false
        case *hir.IrEndInlined   : return false
        case *hir.IrReturn       : return false
        case *hir.IrBranch       : return false
        case *hir.IrCondBranch   : return false
        case *hir.IrBinaryOp     : return !totalBinOp(p.Op, fn.TypeOf(p.X), fn.TypeOf(p.Y))
        case *hir.IrTpAlloc      : return true
        case *hir.IrLoadField    : return !provenReceiver(fn.TypeOf(p.O))
        case *hir.IrStoreField   : return !provenReceiver(fn.TypeOf(p.O))
        default                  : return true
    }
}

/* a field access cannot fail when the receiver is statically an exact,
 * non-null object, so its layout is fully known */
func provenReceiver(t hir.Type) bool {
    return t.Kind.IsObject() && t.Exact
}

// totalBinOp reports whether the operator is defined without possibility
// of a runtime exception or fallback for the given static operand types.
// An inexact object operand may be a subtype overriding the operator, so
// exactness is required throughout.
func totalBinOp(op hir.BinOp, tx hir.Type, ty hir.Type) bool {
    switch {
        case tx.Kind.IsCInt() && ty.Kind == tx.Kind:
            return cintTotal(op, ty)
        case tx.Kind == hir.KLong && ty.Kind == hir.KLong && tx.Exact && ty.Exact:
            return longTotal(op, ty)
        case tx.Kind == hir.KUnicode && ty.Kind == hir.KUnicode && tx.Exact && ty.Exact:
            return op == hir.OpAdd
        default:
            return false
    }
}

func cintTotal(op hir.BinOp, ty hir.Type) bool {
    switch op {
        case hir.OpAdd         : return true
        case hir.OpSubtract    : return true
        case hir.OpMultiply    : return true
        case hir.OpAnd         : return true
        case hir.OpOr          : return true
        case hir.OpXor         : return true
        case hir.OpFloorDivide : return knownDivisor(ty)
        default                : return false
    }
}

func longTotal(op hir.BinOp, ty hir.Type) bool {
    switch op {
        case hir.OpAdd         : return true
        case hir.OpSubtract    : return true
        case hir.OpMultiply    : return true
        case hir.OpAnd         : return true
        case hir.OpOr          : return true
        case hir.OpXor         : return true
        case hir.OpFloorDivide : return knownDivisor(ty)
        default                : return false
    }
}

/* division is total only for a known divisor that cannot trap: non-zero,
 * and not -1 (INT_MIN / -1 overflows the fixed-width representation) */
func knownDivisor(ty hir.Type) bool {
    return ty.HasIntSpec() && ty.IntSpec() != 0 && ty.IntSpec() != -1
}
