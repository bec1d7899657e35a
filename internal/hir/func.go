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

package hir

import (
    `fmt`
)

// Func owns the control-flow graph of one function, its value-numbering
// counter, and the side tables holding per-value facts. The counter is
// per-function so functions can be optimized in parallel without
// synchronization.
type Func struct {
    Name   string
    Blocks []*BasicBlock
    types  []Type
    borrow map[Value]struct{}
}

func NewFunc(name string) *Func {
    return &Func {
        Name:   name,
        borrow: make(map[Value]struct{}),
    }
}

func (self *Func) NewBlock() *BasicBlock {
    bb := &BasicBlock { Id: len(self.Blocks) }
    self.Blocks = append(self.Blocks, bb)
    return bb
}

// NewValue allocates a fresh value number with the given static type.
func (self *Func) NewValue(t Type) Value {
    self.types = append(self.types, t)
    return Value(len(self.types) - 1)
}

// DeclValue registers a value with an explicit number, growing the counter
// past it. Used by the textual parser, which must preserve source numbering.
func (self *Func) DeclValue(v Value, t Type) {
    for len(self.types) <= int(v) {
        self.types = append(self.types, Type{})
    }
    self.types[v] = t
}

func (self *Func) NumValues() int {
    return len(self.types)
}

func (self *Func) TypeOf(v Value) Type {
    if int(v) >= len(self.types) {
        panic(fmt.Sprintf("hir: undeclared value %s in %s", v, self.Name))
    }
    return self.types[v]
}

// SetType narrows the static type of v. Widening is an internal invariant
// violation and panics.
func (self *Func) SetType(v Value, t Type) {
    old := self.TypeOf(v)
    if old.Kind != KBottom && !t.NarrowerEq(old) {
        panic(fmt.Sprintf("hir: type of %s widens from %s to %s in %s", v, old, t, self.Name))
    }
    self.types[v] = t
}

// MarkBorrowed records that v flows where a borrowed reference used to,
// e.g. a store-to-load forwarded field read. The reference-count insertion
// stage downstream applies borrowed discipline to such values.
func (self *Func) MarkBorrowed(v Value) {
    self.borrow[v] = struct{}{}
}

func (self *Func) Borrowed(v Value) bool {
    _, ok := self.borrow[v]
    return ok
}

// NumInstrs counts live (non-inert) instructions, terminators included.
func (self *Func) NumInstrs() int {
    n := 0
    for _, bb := range self.Blocks {
        for _, v := range bb.Ins {
            if v != nil {
                n++
            }
        }
        if bb.Term != nil {
            n++
        }
    }
    return n
}

// Compact drops inert instruction slots in every block.
func (self *Func) Compact() {
    for _, bb := range self.Blocks {
        bb.Compact()
    }
}
