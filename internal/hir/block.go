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

// BasicBlock is an ordered sequence of instructions ending in a terminator.
// The block owns its instructions; a deleted instruction is marked inert
// (nil) in place, then dropped by Compact.
type BasicBlock struct {
    Id   int
    Ins  []Instr
    Term IrTerminator
}

func (self *BasicBlock) Append(p Instr) {
    self.Ins = append(self.Ins, p)
}

// Compact drops inert instruction slots, preserving relative order.
func (self *BasicBlock) Compact() {
    ins := self.Ins
    self.Ins = self.Ins[:0]

    for _, v := range ins {
        if v != nil {
            self.Ins = append(self.Ins, v)
        }
    }
}
