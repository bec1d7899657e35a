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
    `math`
    `strings`
)

// Value is an SSA value number. Numbers are allocated monotonically by the
// owning Func and are never reused, so surviving values keep their numbers
// across simplification rounds.
type Value uint32

// Vn denotes "no value".
const Vn Value = math.MaxUint32

func (self Value) String() string {
    return fmt.Sprintf("v%d", uint32(self))
}

// FrameState is a snapshot of the interpreter-visible state at an
// instruction that may need to reconstruct a frame on failure. It is
// immutable once created and owned by the instruction it is attached to.
type FrameState struct {
    Off    int
    Locals []Value
}

func (self *FrameState) String() string {
    var sb strings.Builder
    sb.WriteString(fmt.Sprintf("FrameState { NextInstrOffset %d", self.Off))
    if len(self.Locals) != 0 {
        sb.WriteString(fmt.Sprintf("  Locals<%d>", len(self.Locals)))
        for _, v := range self.Locals {
            sb.WriteString(" " + v.String())
        }
    }
    sb.WriteString(" }")
    return sb.String()
}

type BinOp uint8

const (
    OpAdd BinOp = iota
    OpSubtract
    OpMultiply
    OpFloorDivide
    OpAnd
    OpOr
    OpXor
)

func (self BinOp) String() string {
    switch self {
        case OpAdd         : return "Add"
        case OpSubtract    : return "Subtract"
        case OpMultiply    : return "Multiply"
        case OpFloorDivide : return "FloorDivide"
        case OpAnd         : return "And"
        case OpOr          : return "Or"
        case OpXor         : return "Xor"
        default            : panic(fmt.Sprintf("hir: invalid binary operator: %d", uint8(self)))
    }
}

// Instr is one instruction of the closed opcode set. Every opcode is a
// distinct struct so passes can match exhaustively.
type Instr interface {
    fmt.Stringer
    instr()
}

func (*IrLoadConst)    instr() {}
func (*IrLoadArg)      instr() {}
func (*IrUseType)      instr() {}
func (*IrBinaryOp)     instr() {}
func (*IrTpAlloc)      instr() {}
func (*IrLoadField)    instr() {}
func (*IrStoreField)   instr() {}
func (*IrBeginInlined) instr() {}
func (*IrEndInlined)   instr() {}
func (*IrReturn)       instr() {}
func (*IrBranch)       instr() {}
func (*IrCondBranch)   instr() {}

// IrUsages is implemented by instructions that read values. The returned
// pointers address the operand fields directly so passes can substitute
// operands in place.
type IrUsages interface {
    Instr
    Usages() []*Value
}

// IrDefinations is implemented by instructions that define a value.
type IrDefinations interface {
    Instr
    Definations() []*Value
}

// IrFramed is implemented by instructions that may carry a FrameState.
type IrFramed interface {
    Instr
    FrameState() *FrameState
    DropFrameState()
}

// IrTerminator closes a basic block.
type IrTerminator interface {
    Instr
    Successors() []*BasicBlock
    irterminator()
}

func (*IrReturn)     irterminator() {}
func (*IrBranch)     irterminator() {}
func (*IrCondBranch) irterminator() {}

/* attach FrameState locals to an instruction's usage list */
func fsusages(buf []*Value, fs *FrameState) []*Value {
    if fs == nil {
        return buf
    }
    for i := range fs.Locals {
        buf = append(buf, &fs.Locals[i])
    }
    return buf
}

type IrLoadConst struct {
    R Value
    T Type
}

func (self *IrLoadConst) String() string {
    return fmt.Sprintf("LoadConst<%s>", self.T)
}

func (self *IrLoadConst) Definations() []*Value {
    return []*Value { &self.R }
}

type IrLoadArg struct {
    R  Value
    Id int
    T  Type
}

func (self *IrLoadArg) String() string {
    return fmt.Sprintf("LoadArg<%d; %s>", self.Id, self.T)
}

func (self *IrLoadArg) Definations() []*Value {
    return []*Value { &self.R }
}

// IrUseType asserts that V's runtime type is compatible with T. It carries
// no side effect and never raises; once the assertion is evident from V's
// static type the instruction is deleted by the propagator.
type IrUseType struct {
    R Value
    V Value
    T Type
}

func (self *IrUseType) String() string {
    return fmt.Sprintf("UseType<%s> %s", self.T, self.V)
}

func (self *IrUseType) Usages() []*Value {
    return []*Value { &self.V }
}

func (self *IrUseType) Definations() []*Value {
    return []*Value { &self.R }
}

type IrBinaryOp struct {
    R  Value
    Op BinOp
    X  Value
    Y  Value
    FS *FrameState
}

func (self *IrBinaryOp) String() string {
    return fmt.Sprintf("BinaryOp<%s> %s %s%s", self.Op, self.X, self.Y, fsmeta(self.FS))
}

func (self *IrBinaryOp) Usages() []*Value {
    return fsusages([]*Value { &self.X, &self.Y }, self.FS)
}

func (self *IrBinaryOp) Definations() []*Value {
    return []*Value { &self.R }
}

func (self *IrBinaryOp) FrameState() *FrameState { return self.FS }
func (self *IrBinaryOp) DropFrameState()         { self.FS = nil }

type IrTpAlloc struct {
    R   Value
    Cls string
    FS  *FrameState
}

func (self *IrTpAlloc) String() string {
    return fmt.Sprintf("TpAlloc<%s>%s", self.Cls, fsmeta(self.FS))
}

func (self *IrTpAlloc) Usages() []*Value {
    return fsusages(nil, self.FS)
}

func (self *IrTpAlloc) Definations() []*Value {
    return []*Value { &self.R }
}

func (self *IrTpAlloc) FrameState() *FrameState { return self.FS }
func (self *IrTpAlloc) DropFrameState()         { self.FS = nil }

type IrLoadField struct {
    R        Value
    O        Value
    Name     string
    Off      int
    Borrowed bool
    FS       *FrameState
}

func (self *IrLoadField) String() string {
    if self.Borrowed {
        return fmt.Sprintf("LoadField<%s@%d, borrowed> %s%s", self.Name, self.Off, self.O, fsmeta(self.FS))
    } else {
        return fmt.Sprintf("LoadField<%s@%d> %s%s", self.Name, self.Off, self.O, fsmeta(self.FS))
    }
}

func (self *IrLoadField) Usages() []*Value {
    return fsusages([]*Value { &self.O }, self.FS)
}

func (self *IrLoadField) Definations() []*Value {
    return []*Value { &self.R }
}

func (self *IrLoadField) FrameState() *FrameState { return self.FS }
func (self *IrLoadField) DropFrameState()         { self.FS = nil }

type IrStoreField struct {
    O    Value
    V    Value
    Name string
    Off  int
    FS   *FrameState
}

func (self *IrStoreField) String() string {
    return fmt.Sprintf("StoreField<%s@%d> %s %s%s", self.Name, self.Off, self.O, self.V, fsmeta(self.FS))
}

func (self *IrStoreField) Usages() []*Value {
    return fsusages([]*Value { &self.O, &self.V }, self.FS)
}

func (self *IrStoreField) FrameState() *FrameState { return self.FS }
func (self *IrStoreField) DropFrameState()         { self.FS = nil }

// IrBeginInlined opens the bracketed region of one inlined call. It pairs
// with the IrEndInlined that closes it; pairs nest with stack discipline.
type IrBeginInlined struct {
    Callee string
    Off    int
}

func (self *IrBeginInlined) String() string {
    return fmt.Sprintf("BeginInlinedFunction<%s> { NextInstrOffset %d }", self.Callee, self.Off)
}

type IrEndInlined struct{}

func (self *IrEndInlined) String() string {
    return "EndInlinedFunction"
}

type IrReturn struct {
    V Value
}

func (self *IrReturn) String() string {
    return "Return " + self.V.String()
}

func (self *IrReturn) Usages() []*Value {
    return []*Value { &self.V }
}

func (self *IrReturn) Successors() []*BasicBlock {
    return nil
}

type IrBranch struct {
    To *BasicBlock
}

func (self *IrBranch) String() string {
    return fmt.Sprintf("Branch<%d>", self.To.Id)
}

func (self *IrBranch) Successors() []*BasicBlock {
    return []*BasicBlock { self.To }
}

type IrCondBranch struct {
    V Value
    T *BasicBlock
    F *BasicBlock
}

func (self *IrCondBranch) String() string {
    return fmt.Sprintf("CondBranch<%d, %d> %s", self.T.Id, self.F.Id, self.V)
}

func (self *IrCondBranch) Usages() []*Value {
    return []*Value { &self.V }
}

func (self *IrCondBranch) Successors() []*BasicBlock {
    return []*BasicBlock { self.T, self.F }
}

func fsmeta(fs *FrameState) string {
    if fs == nil {
        return ""
    } else {
        return " { " + fs.String() + " }"
    }
}
