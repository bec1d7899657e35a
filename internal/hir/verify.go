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
)

// Verify checks the structural invariants the simplifier depends on:
// inline-frame markers balance and nest, every block ends in a terminator,
// every value is defined exactly once before the function ends, field
// access targets are objects, and no type assertion contradicts its
// operand's static type.
func (self *Func) Verify() error {
    depth := 0
    defs := make(map[Value]struct{}, self.NumValues())

    for _, bb := range self.Blocks {
        for _, v := range bb.Ins {
            if v == nil {
                continue
            }
            if err := self.verifyInstr(v, &depth, defs); err != nil {
                return err
            }
        }
        if bb.Term == nil {
            return MalformedIRError {
                Func:   self.Name,
                Reason: "bb " + strconv.Itoa(bb.Id) + " has no terminator",
            }
        }
        if use, ok := bb.Term.(IrUsages); ok {
            if err := self.verifyUses(bb.Term, use); err != nil {
                return err
            }
        }
    }

    if depth != 0 {
        return MalformedIRError {
            Func:   self.Name,
            Reason: "unbalanced inline-frame markers",
        }
    }
    return nil
}

func (self *Func) verifyInstr(v Instr, depth *int, defs map[Value]struct{}) error {
    /* all operands must be declared values */
    if use, ok := v.(IrUsages); ok {
        if err := self.verifyUses(v, use); err != nil {
            return err
        }
    }

    /* single definition per value */
    if dd, ok := v.(IrDefinations); ok {
        for _, r := range dd.Definations() {
            if _, dup := defs[*r]; dup {
                return self.malformed(v, "value "+r.String()+" defined more than once")
            }
            defs[*r] = struct{}{}
        }
    }

    switch p := v.(type) {
        case *IrBeginInlined: {
            *depth++
        }

        case *IrEndInlined: {
            *depth--
            if *depth < 0 {
                return self.malformed(v, "EndInlinedFunction without matching Begin")
            }
        }

        case *IrUseType: {
            if _, ok := Intersect(self.TypeOf(p.V), p.T); !ok {
                return self.malformed(v, "type assertion contradicts static type "+self.TypeOf(p.V).String())
            }
        }

        case *IrLoadField: {
            if !self.TypeOf(p.O).Kind.IsObject() {
                return self.malformed(v, "field load from non-object type "+self.TypeOf(p.O).String())
            }
        }

        case *IrStoreField: {
            if !self.TypeOf(p.O).Kind.IsObject() {
                return self.malformed(v, "field store to non-object type "+self.TypeOf(p.O).String())
            }
        }
    }
    return nil
}

func (self *Func) verifyUses(v Instr, use IrUsages) error {
    for _, r := range use.Usages() {
        if int(*r) >= self.NumValues() {
            return self.malformed(v, "use of undeclared value "+r.String())
        }
    }
    return nil
}

func (self *Func) malformed(v Instr, reason string) error {
    return MalformedIRError {
        Func:   self.Name,
        Instr:  v.String(),
        Reason: reason,
    }
}
