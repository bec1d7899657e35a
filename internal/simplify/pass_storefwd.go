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

// StoreFwd forwards stores to loads of freshly allocated objects within a
// single basic block, then eliminates the stores that became dead.
//
// An object allocated by TpAlloc is tracked until it is observed: used by
// any instruction other than a store to it, a load from it, or the block's
// Return. Appearing among the frame locals of a surviving instruction also
// observes it, since a deoptimization there materializes the object. An
// object used by any other block is observed outright: its fields can be
// read on a path this block never sees, so no store to it may go away and
// no load from it may be forwarded. An observed object may be read through
// an alias, so from that point its stores are kept and its loads are no
// longer forwarded.
// Returning the object does not block elimination of a fully forwarded
// store; the allocation itself always survives, since the object is still
// constructed.
//
// A forwarded load keeps its reference-count discipline: when the load was
// borrowed, the stored value is recorded in the function's borrowed-value
// table so downstream consumers treat the forwarded reference the same.
type StoreFwd struct{}

type _FieldKey struct {
    o   hir.Value
    off int
}

type _StoreRec struct {
    idx   int
    val   hir.Value
    loads int
}

func (self StoreFwd) Apply(fn *hir.Func) bool {
    changed := false
    uses := usemap(fn)

    for _, bb := range fn.Blocks {
        if self.block(fn, bb, uses) {
            changed = true
        }
    }
    if changed {
        fn.Compact()
    }
    return changed
}

func (self StoreFwd) block(fn *hir.Func, bb *hir.BasicBlock, uses _UseMap) bool {
    changed := false
    tracked := make(map[hir.Value]struct{})
    observed := make(map[hir.Value]struct{})
    stores := make(map[_FieldKey]*_StoreRec)

    confined := func(o hir.Value) bool {
        if _, ok := tracked[o]; !ok {
            return false
        }
        _, seen := observed[o]
        return !seen
    }

    /* a deoptimization at the carrying instruction materializes the frame
     * locals, so a tracked object listed there must keep its fields */
    observeLocals := func(fs *hir.FrameState) {
        if fs == nil {
            return
        }
        for _, lv := range fs.Locals {
            if _, ok := tracked[lv]; ok {
                observed[lv] = struct{}{}
            }
        }
    }

    for i, v := range bb.Ins {
        switch p := v.(type) {
            case nil: {
                /* inert slot */
            }

            case *hir.IrTpAlloc: {
                observeLocals(p.FS)
                tracked[p.R] = struct{}{}
                if uses.elsewhere(p.R, bb) {
                    observed[p.R] = struct{}{}
                }
            }

            case *hir.IrStoreField: {
                /* storing a tracked object into a field publishes it */
                observeLocals(p.FS)
                if _, ok := tracked[p.V]; ok {
                    observed[p.V] = struct{}{}
                }
                if !confined(p.O) {
                    continue
                }

                /* an overwritten store whose loads were all forwarded is
                 * dead already */
                key := _FieldKey { o: p.O, off: p.Off }
                if prev, ok := stores[key]; ok {
                    bb.Ins[prev.idx] = nil
                    changed = true
                }
                stores[key] = &_StoreRec { idx: i, val: p.V }
            }

            case *hir.IrLoadField: {
                rec, ok := stores[_FieldKey { o: p.O, off: p.Off }]
                if !ok || !confined(p.O) {
                    /* the load stays, so its frame pins whatever it lists */
                    observeLocals(p.FS)
                    continue
                }

                /* forward the stored value and drop the load */
                if p.Borrowed {
                    fn.MarkBorrowed(rec.val)
                }
                subst(fn, p.R, rec.val)
                bb.Ins[i] = nil
                rec.loads++
                changed = true
            }

            default: {
                /* any other use of a tracked object may observe its fields */
                if use, ok := v.(hir.IrUsages); ok {
                    for _, r := range use.Usages() {
                        if _, seen := tracked[*r]; seen {
                            observed[*r] = struct{}{}
                        }
                    }
                }
            }
        }
    }

    /* a Return is not a field observation; anything else in the terminator
     * is treated as one (it leaves the block with the object) */
    if _, ok := bb.Term.(*hir.IrReturn); !ok {
        if use, ok := bb.Term.(hir.IrUsages); ok {
            for _, r := range use.Usages() {
                if _, seen := tracked[*r]; seen {
                    observed[*r] = struct{}{}
                }
            }
        }
    }

    /* drop stores whose every load was forwarded, unless the object was
     * observed and the field must stay materialized */
    for key, rec := range stores {
        if _, seen := observed[key.o]; !seen && rec.loads > 0 {
            bb.Ins[rec.idx] = nil
            changed = true
        }
    }
    return changed
}

/* which blocks use each value, frame locals included */
type _UseMap map[hir.Value]map[*hir.BasicBlock]struct{}

func usemap(fn *hir.Func) _UseMap {
    m := make(_UseMap)

    add := func(bb *hir.BasicBlock, v hir.Instr) {
        use, ok := v.(hir.IrUsages)
        if !ok {
            return
        }
        for _, r := range use.Usages() {
            if m[*r] == nil {
                m[*r] = make(map[*hir.BasicBlock]struct{})
            }
            m[*r][bb] = struct{}{}
        }
    }

    for _, bb := range fn.Blocks {
        for _, v := range bb.Ins {
            if v != nil {
                add(bb, v)
            }
        }
        if bb.Term != nil {
            add(bb, bb.Term)
        }
    }
    return m
}

func (self _UseMap) elsewhere(v hir.Value, bb *hir.BasicBlock) bool {
    for ub := range self[v] {
        if ub != bb {
            return true
        }
    }
    return false
}
