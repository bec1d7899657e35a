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
    `strconv`
    `strings`
)

// String renders the function in the canonical textual form:
//
//     fun <qualified-name> {
//       bb <N> {
//         [vID:Type =] Opcode<Args> operand* [ { Metadata } ]
//         Terminator
//       }
//     }
//
// The rendering is the output contract of the simplifier: tests diff it
// before and after, so value numbers and instruction order must be stable.
func (self *Func) String() string {
    var sb strings.Builder
    sb.WriteString("fun " + self.Name + " {\n")

    for i, bb := range self.Blocks {
        if i != 0 {
            sb.WriteString("\n")
        }
        self.printBlock(&sb, bb)
    }

    sb.WriteString("}\n")
    return sb.String()
}

func (self *Func) printBlock(sb *strings.Builder, bb *BasicBlock) {
    sb.WriteString("  bb " + strconv.Itoa(bb.Id) + " {\n")

    for _, v := range bb.Ins {
        if v != nil {
            sb.WriteString("    " + self.printInstr(v) + "\n")
        }
    }

    if bb.Term != nil {
        sb.WriteString("    " + self.printInstr(bb.Term) + "\n")
    }
    sb.WriteString("  }\n")
}

func (self *Func) printInstr(p Instr) string {
    defs, ok := p.(IrDefinations)
    if !ok {
        return p.String()
    }

    /* single definition per instruction */
    rr := defs.Definations()
    if len(rr) != 1 {
        panic("hir: multiple definitions in one instruction")
    }

    r := *rr[0]
    return r.String() + ":" + self.TypeOf(r).String() + " = " + p.String()
}
