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
    `strconv`
    `strings`
)

// ParseFunc parses one function in the canonical textual form produced by
// Func.String. The parser belongs to the test harness and the CLI, not to
// the simplifier itself.
func ParseFunc(src string) (*Func, error) {
    ps := _Parser { blocks: make(map[int]*BasicBlock) }
    return ps.parse(src)
}

type _Parser struct {
    ln     int
    done   bool
    fn     *Func
    bb     *BasicBlock
    blocks map[int]*BasicBlock
}

func (self *_Parser) errorf(format string, args ...interface{}) error {
    return fmt.Errorf("hir: parse error at line %d: %s", self.ln, fmt.Sprintf(format, args...))
}

func (self *_Parser) parse(src string) (*Func, error) {
    for _, line := range strings.Split(src, "\n") {
        self.ln++
        if err := self.parseLine(strings.TrimSpace(line)); err != nil {
            return nil, err
        }
    }

    /* the closing brace must have been seen */
    if self.fn == nil {
        return nil, fmt.Errorf("hir: no function in input")
    } else if self.bb != nil {
        return nil, self.errorf("unterminated block")
    } else if !self.done {
        return nil, self.errorf("unterminated function")
    }

    /* every referenced block needs a body */
    for id, bb := range self.blocks {
        if bb.Term == nil && len(bb.Ins) == 0 {
            return nil, fmt.Errorf("hir: branch to undefined block bb %d", id)
        }
    }
    return self.fn, nil
}

func (self *_Parser) parseLine(line string) error {
    if self.done && line != "" {
        return self.errorf("input after function body: %q", line)
    }
    switch {
        case line == ""                       : return nil
        case strings.HasPrefix(line, "fun ")  : return self.parseFun(line)
        case strings.HasPrefix(line, "bb ")   : return self.parseBlock(line)
        case line == "}"                      : return self.parseClose()
        default                               : return self.parseInstr(line)
    }
}

func (self *_Parser) parseFun(line string) error {
    if self.fn != nil {
        return self.errorf("more than one function in input")
    } else if !strings.HasSuffix(line, " {") {
        return self.errorf("malformed function header: %q", line)
    }
    self.fn = NewFunc(strings.TrimSuffix(strings.TrimPrefix(line, "fun "), " {"))
    return nil
}

func (self *_Parser) parseBlock(line string) error {
    if self.fn == nil {
        return self.errorf("block outside of function")
    } else if self.bb != nil {
        return self.errorf("nested block")
    } else if !strings.HasSuffix(line, " {") {
        return self.errorf("malformed block header: %q", line)
    }

    id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, "bb "), " {"))
    if err != nil {
        return self.errorf("malformed block id: %q", line)
    }

    bb := self.block(id)
    if bb.Term != nil || len(bb.Ins) != 0 {
        return self.errorf("duplicate block bb %d", id)
    }

    self.bb = bb
    self.fn.Blocks = append(self.fn.Blocks, bb)
    return nil
}

/* fetch or create the block with the given id (branches may be forward) */
func (self *_Parser) block(id int) *BasicBlock {
    if bb, ok := self.blocks[id]; ok {
        return bb
    }
    bb := &BasicBlock { Id: id }
    self.blocks[id] = bb
    return bb
}

func (self *_Parser) parseClose() error {
    switch {
        case self.bb != nil : self.bb = nil
        case self.fn != nil : self.done = true
        default             : return self.errorf("unmatched closing brace")
    }
    return nil
}

func (self *_Parser) parseInstr(line string) error {
    if self.bb == nil {
        return self.errorf("instruction outside of block")
    } else if self.bb.Term != nil {
        return self.errorf("instruction after terminator: %q", line)
    }

    /* optional "vN:Type = " definition prefix */
    ret, rhs, err := self.parseDef(line)
    if err != nil {
        return err
    }

    /* opcode name, opcode arguments, operand and metadata tail */
    op, args, tail := splitOpcode(rhs)
    operands, meta, err := self.parseTail(tail)
    if err != nil {
        return err
    }

    /* build the instruction proper */
    switch op {
        case "LoadConst"             : return self.mkLoadConst(ret, args, operands, meta)
        case "LoadArg"               : return self.mkLoadArg(ret, args, operands, meta)
        case "UseType"               : return self.mkUseType(ret, args, operands, meta)
        case "BinaryOp"              : return self.mkBinaryOp(ret, args, operands, meta)
        case "TpAlloc"               : return self.mkTpAlloc(ret, args, operands, meta)
        case "LoadField"             : return self.mkLoadField(ret, args, operands, meta)
        case "StoreField"            : return self.mkStoreField(ret, args, operands, meta)
        case "BeginInlinedFunction"  : return self.mkBeginInlined(ret, args, operands, meta)
        case "EndInlinedFunction"    : return self.mkEndInlined(ret, args, operands, meta)
        case "Return"                : return self.mkReturn(ret, args, operands, meta)
        case "Branch"                : return self.mkBranch(ret, args, operands, meta)
        case "CondBranch"            : return self.mkCondBranch(ret, args, operands, meta)
        default                      : return self.errorf("unknown opcode: %q", op)
    }
}

func (self *_Parser) parseDef(line string) (Value, string, error) {
    if line[0] != 'v' {
        return Vn, line, nil
    }

    /* "vN:Type" is always followed by " = " */
    i := strings.Index(line, " = ")
    j := strings.IndexByte(line, ':')
    if i < 0 || j < 0 || j > i {
        return Vn, line, nil
    }

    id, err := strconv.ParseUint(line[1:j], 10, 32)
    if err != nil {
        return Vn, line, self.errorf("malformed value number: %q", line[:j])
    }

    vt, err := ParseType(line[j + 1 : i])
    if err != nil {
        return Vn, line, self.errorf("%v", err)
    }

    v := Value(id)
    self.fn.DeclValue(v, vt)
    return v, line[i + 3:], nil
}

/* split "Opcode<Args> tail" into its three parts; Args and tail optional */
func splitOpcode(s string) (string, string, string) {
    i := strings.IndexAny(s, "< ")
    if i < 0 {
        return s, "", ""
    }
    if s[i] == ' ' {
        return s[:i], "", s[i + 1:]
    }
    j := strings.IndexByte(s, '>')
    if j < 0 {
        return s[:i], "", ""
    }
    return s[:i], s[i + 1 : j], strings.TrimSpace(s[j + 1:])
}

/* split the tail into operand values and the brace-delimited metadata */
func (self *_Parser) parseTail(tail string) ([]Value, []string, error) {
    var meta []string

    /* metadata runs from the first brace to the end of the line */
    if i := strings.IndexByte(tail, '{'); i >= 0 {
        body := strings.TrimSpace(tail[i:])
        if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
            return nil, nil, self.errorf("malformed metadata: %q", tail)
        }
        meta = strings.Fields(body[1 : len(body) - 1])
        tail = strings.TrimSpace(tail[:i])
    }

    /* remaining fields are operand values */
    var ops []Value
    for _, f := range strings.Fields(tail) {
        v, err := self.value(f)
        if err != nil {
            return nil, nil, err
        }
        ops = append(ops, v)
    }
    return ops, meta, nil
}

func (self *_Parser) value(s string) (Value, error) {
    if len(s) < 2 || s[0] != 'v' {
        return Vn, self.errorf("malformed operand: %q", s)
    }
    id, err := strconv.ParseUint(s[1:], 10, 32)
    if err != nil {
        return Vn, self.errorf("malformed operand: %q", s)
    }
    return Value(id), nil
}

/* metadata tokens → FrameState; nil when there is no metadata */
func (self *_Parser) frameState(meta []string) (*FrameState, error) {
    if meta == nil {
        return nil, nil
    }
    if len(meta) < 4 || meta[0] != "FrameState" || meta[1] != "{" || meta[len(meta) - 1] != "}" {
        return nil, self.errorf("malformed FrameState metadata: %v", meta)
    }

    toks := meta[2 : len(meta) - 1]
    if len(toks) < 2 || toks[0] != "NextInstrOffset" {
        return nil, self.errorf("malformed FrameState metadata: %v", meta)
    }

    off, err := strconv.Atoi(toks[1])
    if err != nil {
        return nil, self.errorf("malformed NextInstrOffset: %q", toks[1])
    }

    fs := &FrameState { Off: off }
    toks = toks[2:]

    /* optional local value list */
    if len(toks) != 0 {
        if !strings.HasPrefix(toks[0], "Locals<") {
            return nil, self.errorf("malformed locals in FrameState: %v", toks)
        }
        for _, f := range toks[1:] {
            v, err := self.value(f)
            if err != nil {
                return nil, err
            }
            fs.Locals = append(fs.Locals, v)
        }
        want := strings.TrimSuffix(strings.TrimPrefix(toks[0], "Locals<"), ">")
        if n, err := strconv.Atoi(want); err != nil || n != len(fs.Locals) {
            return nil, self.errorf("locals count mismatch in FrameState: %v", toks)
        }
    }
    return fs, nil
}

func (self *_Parser) need(ret Value, op string) error {
    if ret == Vn {
        return self.errorf("%s must define a value", op)
    }
    return nil
}

func (self *_Parser) nodef(ret Value, op string) error {
    if ret != Vn {
        return self.errorf("%s defines no value", op)
    }
    return nil
}

func (self *_Parser) operands(ops []Value, n int, op string) error {
    if len(ops) != n {
        return self.errorf("%s takes %d operands, got %d", op, n, len(ops))
    }
    return nil
}

func (self *_Parser) mkLoadConst(ret Value, args string, ops []Value, meta []string) error {
    if err := self.need(ret, "LoadConst"); err != nil {
        return err
    } else if err := self.operands(ops, 0, "LoadConst"); err != nil {
        return err
    }
    ct, err := ParseType(args)
    if err != nil {
        return self.errorf("%v", err)
    }
    _ = meta
    self.bb.Append(&IrLoadConst { R: ret, T: ct })
    return nil
}

func (self *_Parser) mkLoadArg(ret Value, args string, ops []Value, meta []string) error {
    if err := self.need(ret, "LoadArg"); err != nil {
        return err
    } else if err := self.operands(ops, 0, "LoadArg"); err != nil {
        return err
    }
    id, ts, ok := strings.Cut(args, "; ")
    if !ok {
        return self.errorf("malformed LoadArg arguments: %q", args)
    }
    n, err := strconv.Atoi(id)
    if err != nil {
        return self.errorf("malformed LoadArg index: %q", id)
    }
    at, err := ParseType(ts)
    if err != nil {
        return self.errorf("%v", err)
    }
    _ = meta
    self.bb.Append(&IrLoadArg { R: ret, Id: n, T: at })
    return nil
}

func (self *_Parser) mkUseType(ret Value, args string, ops []Value, meta []string) error {
    if err := self.need(ret, "UseType"); err != nil {
        return err
    } else if err := self.operands(ops, 1, "UseType"); err != nil {
        return err
    }
    at, err := ParseType(args)
    if err != nil {
        return self.errorf("%v", err)
    }
    _ = meta
    self.bb.Append(&IrUseType { R: ret, V: ops[0], T: at })
    return nil
}

func (self *_Parser) mkBinaryOp(ret Value, args string, ops []Value, meta []string) error {
    if err := self.need(ret, "BinaryOp"); err != nil {
        return err
    } else if err := self.operands(ops, 2, "BinaryOp"); err != nil {
        return err
    }

    var op BinOp
    switch args {
        case "Add"         : op = OpAdd
        case "Subtract"    : op = OpSubtract
        case "Multiply"    : op = OpMultiply
        case "FloorDivide" : op = OpFloorDivide
        case "And"         : op = OpAnd
        case "Or"          : op = OpOr
        case "Xor"         : op = OpXor
        default            : return self.errorf("unknown binary operator: %q", args)
    }

    fs, err := self.frameState(meta)
    if err != nil {
        return err
    }
    self.bb.Append(&IrBinaryOp { R: ret, Op: op, X: ops[0], Y: ops[1], FS: fs })
    return nil
}

func (self *_Parser) mkTpAlloc(ret Value, args string, ops []Value, meta []string) error {
    if err := self.need(ret, "TpAlloc"); err != nil {
        return err
    } else if err := self.operands(ops, 0, "TpAlloc"); err != nil {
        return err
    }
    fs, err := self.frameState(meta)
    if err != nil {
        return err
    }
    self.bb.Append(&IrTpAlloc { R: ret, Cls: args, FS: fs })
    return nil
}

func (self *_Parser) field(args string) (string, int, bool, error) {
    borrowed := false
    if rest, ok := strings.CutSuffix(args, ", borrowed"); ok {
        borrowed = true
        args = rest
    }
    name, off, ok := strings.Cut(args, "@")
    if !ok {
        return "", 0, false, self.errorf("malformed field reference: %q", args)
    }
    n, err := strconv.Atoi(off)
    if err != nil {
        return "", 0, false, self.errorf("malformed field offset: %q", off)
    }
    return name, n, borrowed, nil
}

func (self *_Parser) mkLoadField(ret Value, args string, ops []Value, meta []string) error {
    if err := self.need(ret, "LoadField"); err != nil {
        return err
    } else if err := self.operands(ops, 1, "LoadField"); err != nil {
        return err
    }
    name, off, borrowed, err := self.field(args)
    if err != nil {
        return err
    }
    fs, err := self.frameState(meta)
    if err != nil {
        return err
    }
    self.bb.Append(&IrLoadField { R: ret, O: ops[0], Name: name, Off: off, Borrowed: borrowed, FS: fs })
    return nil
}

func (self *_Parser) mkStoreField(ret Value, args string, ops []Value, meta []string) error {
    if err := self.nodef(ret, "StoreField"); err != nil {
        return err
    } else if err := self.operands(ops, 2, "StoreField"); err != nil {
        return err
    }
    name, off, borrowed, err := self.field(args)
    if err != nil {
        return err
    } else if borrowed {
        return self.errorf("StoreField takes no borrowed qualifier")
    }
    fs, err := self.frameState(meta)
    if err != nil {
        return err
    }
    self.bb.Append(&IrStoreField { O: ops[0], V: ops[1], Name: name, Off: off, FS: fs })
    return nil
}

func (self *_Parser) mkBeginInlined(ret Value, args string, ops []Value, meta []string) error {
    if err := self.nodef(ret, "BeginInlinedFunction"); err != nil {
        return err
    } else if err := self.operands(ops, 0, "BeginInlinedFunction"); err != nil {
        return err
    }
    if len(meta) != 2 || meta[0] != "NextInstrOffset" {
        return self.errorf("malformed BeginInlinedFunction metadata: %v", meta)
    }
    off, err := strconv.Atoi(meta[1])
    if err != nil {
        return self.errorf("malformed NextInstrOffset: %q", meta[1])
    }
    self.bb.Append(&IrBeginInlined { Callee: args, Off: off })
    return nil
}

func (self *_Parser) mkEndInlined(ret Value, args string, ops []Value, meta []string) error {
    if err := self.nodef(ret, "EndInlinedFunction"); err != nil {
        return err
    } else if args != "" || len(ops) != 0 || meta != nil {
        return self.errorf("malformed EndInlinedFunction")
    }
    self.bb.Append(&IrEndInlined{})
    return nil
}

func (self *_Parser) mkReturn(ret Value, args string, ops []Value, meta []string) error {
    if err := self.nodef(ret, "Return"); err != nil {
        return err
    } else if err := self.operands(ops, 1, "Return"); err != nil {
        return err
    } else if args != "" || meta != nil {
        return self.errorf("malformed Return")
    }
    self.bb.Term = &IrReturn { V: ops[0] }
    return nil
}

func (self *_Parser) mkBranch(ret Value, args string, ops []Value, meta []string) error {
    if err := self.nodef(ret, "Branch"); err != nil {
        return err
    } else if err := self.operands(ops, 0, "Branch"); err != nil {
        return err
    }
    id, err := strconv.Atoi(args)
    if err != nil {
        return self.errorf("malformed branch target: %q", args)
    }
    _ = meta
    self.bb.Term = &IrBranch { To: self.block(id) }
    return nil
}

func (self *_Parser) mkCondBranch(ret Value, args string, ops []Value, meta []string) error {
    if err := self.nodef(ret, "CondBranch"); err != nil {
        return err
    } else if err := self.operands(ops, 1, "CondBranch"); err != nil {
        return err
    }
    ts, fs, ok := strings.Cut(args, ", ")
    if !ok {
        return self.errorf("malformed CondBranch targets: %q", args)
    }
    ti, err := strconv.Atoi(ts)
    if err != nil {
        return self.errorf("malformed branch target: %q", ts)
    }
    fi, err := strconv.Atoi(fs)
    if err != nil {
        return self.errorf("malformed branch target: %q", fs)
    }
    _ = meta
    self.bb.Term = &IrCondBranch { V: ops[0], T: self.block(ti), F: self.block(fi) }
    return nil
}
