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
    `fmt`
    `strings`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`

    `github.com/zitterbewegung/cinder/internal/hir`
)

/* a random but well-formed straight-line function: markers nest, every
 * operand is defined before use, field receivers are allocations */
func genfunc(fk *gofakeit.Faker) *hir.Func {
    fn := hir.NewFunc("jittestmodule:" + fk.Word())
    bb := fn.NewBlock()

    depth := 0
    var vals []hir.Value
    var objs []hir.Value

    pick := func() hir.Value {
        return vals[fk.Number(0, len(vals) - 1)]
    }

    emitConst := func() {
        ct := hir.LongConst(int64(fk.Number(-1000, 1000)))
        rv := fn.NewValue(ct)
        bb.Append(&hir.IrLoadConst { R: rv, T: ct })
        vals = append(vals, rv)
    }

    frame := func() *hir.FrameState {
        fs := &hir.FrameState { Off: fk.Number(0, 64) }
        if fk.Bool() {
            fs.Locals = append(fs.Locals, pick())
        }
        return fs
    }

    emitConst()
    for i, n := 0, fk.Number(8, 24); i < n; i++ {
        switch fk.Number(0, 6) {
            case 0: {
                emitConst()
            }

            case 1: {
                rv := fn.NewValue(hir.TypeOf(hir.KObject))
                bb.Append(&hir.IrBinaryOp { R: rv, Op: hir.OpAdd, X: pick(), Y: pick(), FS: frame() })
                vals = append(vals, rv)
            }

            case 2: {
                rv := fn.NewValue(hir.TypeOf(hir.KObject))
                bb.Append(&hir.IrTpAlloc { R: rv, Cls: "Point", FS: frame() })
                vals = append(vals, rv)
                objs = append(objs, rv)
            }

            case 3: {
                if len(objs) == 0 {
                    emitConst()
                    break
                }
                o := objs[fk.Number(0, len(objs) - 1)]
                bb.Append(&hir.IrStoreField { O: o, V: pick(), Name: "x", Off: 16, FS: frame() })
            }

            case 4: {
                if len(objs) == 0 {
                    emitConst()
                    break
                }
                o := objs[fk.Number(0, len(objs) - 1)]
                rv := fn.NewValue(hir.TypeOf(hir.KObject))
                bb.Append(&hir.IrLoadField { R: rv, O: o, Name: "x", Off: 16, Borrowed: fk.Bool(), FS: frame() })
                vals = append(vals, rv)
            }

            case 5: {
                bb.Append(&hir.IrBeginInlined { Callee: fk.Word(), Off: fk.Number(0, 64) })
                depth++
            }

            case 6: {
                if depth == 0 {
                    emitConst()
                    break
                }
                bb.Append(&hir.IrEndInlined{})
                depth--
            }
        }
    }

    for depth > 0 {
        bb.Append(&hir.IrEndInlined{})
        depth--
    }
    bb.Term = &hir.IrReturn { V: pick() }
    return fn
}

func markerBalance(src string) int {
    return strings.Count(src, "BeginInlinedFunction") - strings.Count(src, "EndInlinedFunction")
}

func TestOptimize_RandomFunctions(t *testing.T) {
    for seed := int64(0); seed < 32; seed++ {
        seed := seed
        t.Run(fmt.Sprintf("seed-%d", seed), func(t *testing.T) {
            fn := genfunc(gofakeit.New(seed))
            require.NoError(t, fn.Verify())
            require.NoError(t, Optimize(fn))

            /* the simplified function is still well-formed */
            out := fn.String()
            assert.NoError(t, fn.Verify())
            assert.Zero(t, markerBalance(out))

            /* the textual form round-trips */
            rt, err := hir.ParseFunc(out)
            require.NoError(t, err)
            assert.Equal(t, out, rt.String())

            /* a second run is a no-op: the driver stopped at a fixed point */
            require.NoError(t, Optimize(fn))
            assert.Equal(t, out, fn.String())
        })
    }
}
