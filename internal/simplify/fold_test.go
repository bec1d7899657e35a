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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/zitterbewegung/cinder/internal/hir`
)

/* build "return <x> op <y>" with constant operands */
func binfn(op hir.BinOp, tx hir.Type, ty hir.Type) *hir.Func {
    fn := hir.NewFunc("jittestmodule:bin")
    bb := fn.NewBlock()

    rt := hir.TypeOf(hir.KObject)
    if tx.Kind.IsCInt() {
        rt = hir.TypeOf(tx.Kind)
    }

    x := fn.NewValue(tx)
    y := fn.NewValue(ty)
    r := fn.NewValue(rt)

    bb.Append(&hir.IrLoadConst { R: x, T: tx })
    bb.Append(&hir.IrLoadConst { R: y, T: ty })
    bb.Append(&hir.IrBinaryOp { R: r, Op: op, X: x, Y: y, FS: &hir.FrameState { Off: 4 } })
    bb.Term = &hir.IrReturn { V: r }
    return fn
}

func lastConst(t *testing.T, fn *hir.Func) hir.Type {
    ins := fn.Blocks[0].Ins
    p, ok := ins[len(ins) - 1].(*hir.IrLoadConst)
    require.True(t, ok, "last instruction is not a LoadConst: %v", ins[len(ins) - 1])
    return p.T
}

func hasBinOp(fn *hir.Func) bool {
    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            if _, ok := v.(*hir.IrBinaryOp); ok {
                return true
            }
        }
    }
    return false
}

func TestFold_Long(t *testing.T) {
    tests := []struct {
        op   hir.BinOp
        x, y int64
        want int64
    } {
        { hir.OpAdd         , 3, 4  , 7   },
        { hir.OpSubtract    , 3, 4  , -1  },
        { hir.OpMultiply    , 6, 7  , 42  },
        { hir.OpFloorDivide , 7, 2  , 3   },
        { hir.OpFloorDivide , -7, 2 , -4  },
        { hir.OpAnd         , 6, 3  , 2   },
        { hir.OpOr          , 6, 3  , 7   },
        { hir.OpXor         , 6, 3  , 5   },
    }

    for _, tc := range tests {
        fn := binfn(tc.op, hir.LongConst(tc.x), hir.LongConst(tc.y))
        require.NoError(t, Optimize(fn))
        assert.Equal(t, hir.LongConst(tc.want), lastConst(t, fn), tc.op.String())
    }
}

func TestFold_LongOverflowKept(t *testing.T) {
    fn := binfn(hir.OpAdd, hir.LongConst(math.MaxInt64), hir.LongConst(1))
    require.NoError(t, Optimize(fn))

    /* the payload cannot represent the sum; the operation stays */
    assert.True(t, hasBinOp(fn))
}

func TestFold_CIntWraparound(t *testing.T) {
    fn := binfn(hir.OpAdd, hir.CIntConst(hir.KCInt8, 127), hir.CIntConst(hir.KCInt8, 1))
    require.NoError(t, Optimize(fn))
    assert.Equal(t, hir.CIntConst(hir.KCInt8, -128), lastConst(t, fn))

    fn = binfn(hir.OpMultiply, hir.CIntConst(hir.KCInt16, 300), hir.CIntConst(hir.KCInt16, 300))
    require.NoError(t, Optimize(fn))
    assert.Equal(t, hir.CIntConst(hir.KCInt16, 90000), lastConst(t, fn))
}

func TestFold_CIntFloorDivide(t *testing.T) {
    /* floors like the unbounded kind, at every width */
    fn := binfn(hir.OpFloorDivide, hir.CIntConst(hir.KCInt8, -7), hir.CIntConst(hir.KCInt8, 2))
    require.NoError(t, Optimize(fn))
    assert.Equal(t, hir.CIntConst(hir.KCInt8, -4), lastConst(t, fn))

    fn = binfn(hir.OpFloorDivide, hir.CIntConst(hir.KCInt8, 7), hir.CIntConst(hir.KCInt8, -2))
    require.NoError(t, Optimize(fn))
    assert.Equal(t, hir.CIntConst(hir.KCInt8, -4), lastConst(t, fn))

    fn = binfn(hir.OpFloorDivide, hir.CIntConst(hir.KCInt32, 7), hir.CIntConst(hir.KCInt32, 2))
    require.NoError(t, Optimize(fn))
    assert.Equal(t, hir.CIntConst(hir.KCInt32, 3), lastConst(t, fn))
}

func TestFold_UnicodeConcat(t *testing.T) {
    fn := binfn(hir.OpAdd, hir.UnicodeConst("foo", hir.LifeMortal), hir.UnicodeConst("bar", hir.LifeImmortal))
    require.NoError(t, Optimize(fn))
    assert.Equal(t, hir.UnicodeConst("foobar", hir.LifeMortal), lastConst(t, fn))
}

func TestFold_DivideByZeroKept(t *testing.T) {
    fn := binfn(hir.OpFloorDivide, hir.LongConst(7), hir.LongConst(0))
    require.NoError(t, Optimize(fn))

    /* division by zero raises at runtime, so it must keep its frame */
    assert.True(t, hasBinOp(fn))
    p := fn.Blocks[0].Ins[2].(*hir.IrBinaryOp)
    assert.NotNil(t, p.FS)
}

func TestFold_MixedKindsKept(t *testing.T) {
    fn := binfn(hir.OpAdd, hir.LongConst(3), hir.UnicodeConst("x", hir.LifeMortal))
    require.NoError(t, Optimize(fn))
    assert.True(t, hasBinOp(fn))

    fn = binfn(hir.OpAdd, hir.CIntConst(hir.KCInt8, 1), hir.CIntConst(hir.KCInt16, 1))
    require.NoError(t, Optimize(fn))
    assert.True(t, hasBinOp(fn))
}

func TestFold_InexactOperandKept(t *testing.T) {
    /* a Long subtype may override the operator, so no folding without
     * exactness */
    fn := hir.NewFunc("jittestmodule:inexact")
    bb := fn.NewBlock()

    x := fn.NewValue(hir.TypeOf(hir.KLong))
    y := fn.NewValue(hir.LongConst(1))
    r := fn.NewValue(hir.TypeOf(hir.KObject))

    bb.Append(&hir.IrLoadArg { R: x, Id: 0, T: hir.TypeOf(hir.KLong) })
    bb.Append(&hir.IrLoadConst { R: y, T: hir.LongConst(1) })
    bb.Append(&hir.IrBinaryOp { R: r, Op: hir.OpAdd, X: x, Y: y, FS: &hir.FrameState { Off: 2 } })
    bb.Term = &hir.IrReturn { V: r }

    require.NoError(t, Optimize(fn))
    assert.True(t, hasBinOp(fn))
}
