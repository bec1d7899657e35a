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
    `github.com/oleiade/lane`

    `github.com/zitterbewegung/cinder/internal/hir`
)

// InlineFrameElim removes Begin/EndInlinedFunction pairs whose bracketed
// region is provably unobservable: no interior instruction can raise or
// deoptimize, and no kept nested pair remains inside. Interior instructions
// are re-parented into the enclosing scope in their original order, and
// their FrameStates are dropped along with the markers (a state that only
// reconstructs locals is not needed once the instruction cannot fail).
//
// Markers nest with stack discipline, so one linear scan with an explicit
// stack of open Begin markers suffices; no scope tree is built. A pair
// whose region crosses a basic-block boundary is kept.
type InlineFrameElim struct{}

type _OpenFrame struct {
    bb        *hir.BasicBlock
    idx       int
    raiseSnap int
    keptSnap  int
}

func (self InlineFrameElim) Apply(fn *hir.Func) bool {
    kept := 0
    raised := 0
    changed := false
    open := lane.NewStack()

    for _, bb := range fn.Blocks {
        for i, v := range bb.Ins {
            switch v.(type) {
                case nil: {
                    /* inert slot */
                }

                case *hir.IrBeginInlined: {
                    open.Push(&_OpenFrame {
                        bb:        bb,
                        idx:       i,
                        raiseSnap: raised,
                        keptSnap:  kept,
                    })
                }

                case *hir.IrEndInlined: {
                    if open.Empty() {
                        panic("inlineframe: unbalanced markers in " + fn.Name)
                    }
                    fp := open.Pop().(*_OpenFrame)
                    if fp.bb == bb && fp.raiseSnap == raised && fp.keptSnap == kept {
                        self.remove(bb, fp.idx, i)
                        changed = true
                    } else {
                        kept++
                    }
                }

                default: {
                    if raises(fn, v) {
                        raised++
                    }
                }
            }
        }
    }

    if !open.Empty() {
        panic("inlineframe: unbalanced markers in " + fn.Name)
    }
    if changed {
        fn.Compact()
    }
    return changed
}

/* drop the marker pair and the now-unreachable FrameStates between them */
func (self InlineFrameElim) remove(bb *hir.BasicBlock, begin int, end int) {
    bb.Ins[begin] = nil
    bb.Ins[end] = nil

    for i := begin + 1; i < end; i++ {
        if fr, ok := bb.Ins[i].(hir.IrFramed); ok {
            fr.DropFrameState()
        }
    }
}
