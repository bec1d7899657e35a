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

type Kind uint8

const (
    KBottom Kind = iota
    KNullptr
    KNoneType
    KLong
    KUnicode
    KObject
    KCInt8
    KCInt16
    KCInt32
    KCInt64
)

func (self Kind) String() string {
    switch self {
        case KBottom   : return "Bottom"
        case KNullptr  : return "Nullptr"
        case KNoneType : return "NoneType"
        case KLong     : return "Long"
        case KUnicode  : return "Unicode"
        case KObject   : return "Object"
        case KCInt8    : return "CInt8"
        case KCInt16   : return "CInt16"
        case KCInt32   : return "CInt32"
        case KCInt64   : return "CInt64"
        default        : panic(fmt.Sprintf("hir: invalid type kind: %d", uint8(self)))
    }
}

// IsObject checks whether the kind describes a heap object reference.
func (self Kind) IsObject() bool {
    switch self {
        case KNoneType : fallthrough
        case KLong     : fallthrough
        case KUnicode  : fallthrough
        case KObject   : return true
        default        : return false
    }
}

// IsCInt checks whether the kind is a fixed-width machine integer.
func (self Kind) IsCInt() bool {
    switch self {
        case KCInt8  : fallthrough
        case KCInt16 : fallthrough
        case KCInt32 : fallthrough
        case KCInt64 : return true
        default      : return false
    }
}

// Width returns the bit width of a fixed-width integer kind.
func (self Kind) Width() uint8 {
    switch self {
        case KCInt8  : return 8
        case KCInt16 : return 16
        case KCInt32 : return 32
        case KCInt64 : return 64
        default      : panic("hir: Width of non-CInt kind: " + self.String())
    }
}

type Mortality uint8

const (
    LifeUnknown Mortality = iota
    LifeMortal
    LifeImmortal
)

type _SpecKind uint8

const (
    _S_none _SpecKind = iota
    _S_int
    _S_str
)

// Type is a point in the static type lattice: a kind tag, an exactness
// refinement, a mortality refinement, and an optional known-constant payload.
//
// Types only ever narrow as passes run. Widening a value's type is an
// internal invariant violation, checked by Func.SetType.
type Type struct {
    Kind  Kind
    Exact bool
    Life  Mortality
    spec  _SpecKind
    iv    int64
    sv    string
}

func TypeOf(k Kind) Type {
    switch k {
        case KNullptr  : return Type { Kind: k, Exact: true }
        case KNoneType : return Type { Kind: k, Exact: true, Life: LifeImmortal }
        default        : return Type { Kind: k, Exact: k.IsCInt() }
    }
}

func (self Type) AsExact() Type {
    self.Exact = true
    return self
}

func (self Type) Mortal() Type {
    self.Life = LifeMortal
    return self
}

func (self Type) Immortal() Type {
    self.Life = LifeImmortal
    return self
}

func (self Type) WithInt(v int64) Type {
    self.spec = _S_int
    self.iv = v
    return self
}

func (self Type) WithStr(v string) Type {
    self.spec = _S_str
    self.sv = v
    return self
}

func (self Type) HasIntSpec() bool { return self.spec == _S_int }
func (self Type) HasStrSpec() bool { return self.spec == _S_str }
func (self Type) IntSpec()    int64  { return self.iv }
func (self Type) StrSpec()    string { return self.sv }

// IsSpecialized checks whether the type pins down a single runtime value:
// an exact type with a known constant payload, or a singleton kind.
func (self Type) IsSpecialized() bool {
    switch self.Kind {
        case KNullptr  : return true
        case KNoneType : return true
        default        : return self.Exact && self.spec != _S_none
    }
}

// LongConst builds the type of a folded unbounded-integer constant. Small
// integers are interned by the runtime and therefore immortal.
func LongConst(v int64) Type {
    if v >= -5 && v <= 256 {
        return TypeOf(KLong).AsExact().Immortal().WithInt(v)
    } else {
        return TypeOf(KLong).AsExact().Mortal().WithInt(v)
    }
}

// UnicodeConst builds the type of a string constant.
func UnicodeConst(s string, life Mortality) Type {
    t := TypeOf(KUnicode).AsExact().WithStr(s)
    t.Life = life
    return t
}

// CIntConst builds the type of a fixed-width integer constant, truncating
// the payload to the width of the kind.
func CIntConst(k Kind, v int64) Type {
    return TypeOf(k).WithInt(TruncCInt(k, v))
}

// TruncCInt wraps v to the two's-complement range of the given CInt kind.
func TruncCInt(k Kind, v int64) int64 {
    switch k {
        case KCInt8  : return int64(int8(v))
        case KCInt16 : return int64(int16(v))
        case KCInt32 : return int64(int32(v))
        case KCInt64 : return v
        default      : panic("hir: TruncCInt of non-CInt kind: " + k.String())
    }
}

/* kind meet: b narrows a, or the kinds are incompatible */
func meetkind(a Kind, b Kind) (Kind, bool) {
    switch {
        case a == b                       : return a, true
        case a == KObject && b.IsObject() : return b, true
        case b == KObject && a.IsObject() : return a, true
        default                           : return KBottom, false
    }
}

// Intersect narrows a by b. The second result is false when the two types
// are contradictory (their intersection is empty).
func Intersect(a Type, b Type) (Type, bool) {
    var ok bool
    var rt Type

    /* meet the kind tags */
    if rt.Kind, ok = meetkind(a.Kind, b.Kind); !ok {
        return rt, false
    }

    /* exactness refinements require identical kinds */
    rt.Exact = a.Exact || b.Exact
    if a.Exact && a.Kind != rt.Kind { return rt, false }
    if b.Exact && b.Kind != rt.Kind { return rt, false }

    /* mortality refinements */
    switch {
        case a.Life == LifeUnknown : rt.Life = b.Life
        case b.Life == LifeUnknown : rt.Life = a.Life
        case a.Life == b.Life      : rt.Life = a.Life
        default                    : return rt, false
    }

    /* constant payloads */
    switch {
        case a.spec == _S_none : rt.spec, rt.iv, rt.sv = b.spec, b.iv, b.sv
        case b.spec == _S_none : rt.spec, rt.iv, rt.sv = a.spec, a.iv, a.sv
        case a.spec != b.spec  : return rt, false
        case a.iv != b.iv      : return rt, false
        case a.sv != b.sv      : return rt, false
        default                : rt.spec, rt.iv, rt.sv = a.spec, a.iv, a.sv
    }

    return rt, true
}

// NarrowerEq checks whether self is at least as narrow as other.
func (self Type) NarrowerEq(other Type) bool {
    if rt, ok := Intersect(self, other); !ok {
        return false
    } else {
        return rt == self
    }
}

func (self Type) String() string {
    var sb strings.Builder

    /* fixed-width integers carry no mortality or exactness suffix */
    if self.Kind.IsCInt() {
        sb.WriteString(self.Kind.String())
        self.payload(&sb)
        return sb.String()
    }

    /* mortality prefix, when known; singleton kinds render bare */
    if self.Kind != KNullptr && self.Kind != KNoneType {
        switch self.Life {
            case LifeMortal   : sb.WriteString("Mortal")
            case LifeImmortal : sb.WriteString("Immortal")
        }
    }

    /* kind and exactness */
    sb.WriteString(self.Kind.String())
    if self.Exact && self.Kind != KNullptr && self.Kind != KNoneType {
        sb.WriteString("Exact")
    }

    /* constant payload, when known */
    self.payload(&sb)
    return sb.String()
}

func (self Type) payload(sb *strings.Builder) {
    switch self.spec {
        case _S_int : sb.WriteString("[" + strconv.FormatInt(self.iv, 10) + "]")
        case _S_str : sb.WriteString("[" + strconv.Quote(self.sv) + "]")
    }
}

// ParseType parses the textual rendering produced by Type.String.
func ParseType(s string) (Type, error) {
    var rt Type
    src := s

    /* optional constant payload */
    if i := strings.IndexByte(src, '['); i >= 0 {
        if !strings.HasSuffix(src, "]") {
            return rt, fmt.Errorf("hir: malformed type literal: %q", s)
        }
        lit := src[i + 1 : len(src) - 1]
        src = src[:i]
        if strings.HasPrefix(lit, `"`) {
            sv, err := strconv.Unquote(lit)
            if err != nil {
                return rt, fmt.Errorf("hir: malformed string payload in %q: %w", s, err)
            }
            rt.spec, rt.sv = _S_str, sv
        } else {
            iv, err := strconv.ParseInt(lit, 10, 64)
            if err != nil {
                return rt, fmt.Errorf("hir: malformed integer payload in %q: %w", s, err)
            }
            rt.spec, rt.iv = _S_int, iv
        }
    }

    /* mortality prefix */
    switch {
        case strings.HasPrefix(src, "Mortal")   : rt.Life, src = LifeMortal, src[len("Mortal"):]
        case strings.HasPrefix(src, "Immortal") : rt.Life, src = LifeImmortal, src[len("Immortal"):]
    }

    /* exactness suffix */
    if strings.HasSuffix(src, "Exact") {
        rt.Exact = true
        src = src[:len(src) - len("Exact")]
    }

    /* kind tag */
    switch src {
        case "Nullptr"  : rt.Kind, rt.Exact = KNullptr, true
        case "NoneType" : rt.Kind, rt.Exact = KNoneType, true
        case "Long"     : rt.Kind = KLong
        case "Unicode"  : rt.Kind = KUnicode
        case "Object"   : rt.Kind = KObject
        case "CInt8"    : rt.Kind, rt.Exact = KCInt8, true
        case "CInt16"   : rt.Kind, rt.Exact = KCInt16, true
        case "CInt32"   : rt.Kind, rt.Exact = KCInt32, true
        case "CInt64"   : rt.Kind, rt.Exact = KCInt64, true
        default         : return rt, fmt.Errorf("hir: unknown type name: %q", s)
    }

    if rt.Kind == KNoneType && rt.Life == LifeUnknown {
        rt.Life = LifeImmortal
    }
    return rt, nil
}
