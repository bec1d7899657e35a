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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestType_String(t *testing.T) {
    tests := []struct {
        tt Type
        ss string
    } {
        { LongConst(4)                        , `ImmortalLongExact[4]` },
        { LongConst(300)                      , `MortalLongExact[300]` },
        { LongConst(-5)                       , `ImmortalLongExact[-5]` },
        { CIntConst(KCInt8, 4)                , `CInt8[4]` },
        { CIntConst(KCInt8, 130)              , `CInt8[-126]` },
        { UnicodeConst("x", LifeMortal)       , `MortalUnicodeExact["x"]` },
        { TypeOf(KObject)                     , `Object` },
        { TypeOf(KObject).AsExact().Mortal()  , `MortalObjectExact` },
        { TypeOf(KNoneType)                   , `NoneType` },
        { TypeOf(KNullptr)                    , `Nullptr` },
        { TypeOf(KLong)                       , `Long` },
        { TypeOf(KLong).AsExact()             , `LongExact` },
        { TypeOf(KCInt32)                     , `CInt32` },
    }
    for _, tc := range tests {
        assert.Equal(t, tc.ss, tc.tt.String())
    }
}

func TestType_ParseRoundTrip(t *testing.T) {
    for _, ss := range []string {
        `ImmortalLongExact[4]`,
        `MortalLongExact[300]`,
        `CInt8[-126]`,
        `CInt64[0]`,
        `MortalUnicodeExact["x"]`,
        `MortalUnicodeExact["a b"]`,
        `Object`,
        `MortalObjectExact`,
        `NoneType`,
        `Nullptr`,
        `Long`,
        `LongExact`,
        `Unicode`,
        `CInt16`,
    } {
        tt, err := ParseType(ss)
        require.NoError(t, err, ss)
        assert.Equal(t, ss, tt.String())
    }
}

func TestType_ParseErrors(t *testing.T) {
    for _, ss := range []string { ``, `Frob`, `Long[`, `Long[x]`, `Unicode["a]` } {
        _, err := ParseType(ss)
        assert.Error(t, err, ss)
    }
}

func TestType_Narrowing(t *testing.T) {
    assert.True(t, LongConst(4).NarrowerEq(TypeOf(KLong)))
    assert.True(t, LongConst(4).NarrowerEq(TypeOf(KObject)))
    assert.True(t, LongConst(4).NarrowerEq(LongConst(4)))
    assert.False(t, TypeOf(KLong).NarrowerEq(LongConst(4)))
    assert.False(t, LongConst(4).NarrowerEq(LongConst(5)))
    assert.False(t, LongConst(4).NarrowerEq(TypeOf(KUnicode)))
    assert.False(t, CIntConst(KCInt8, 4).NarrowerEq(TypeOf(KObject)))

    /* intersection narrows kinds under Object */
    rt, ok := Intersect(TypeOf(KObject), TypeOf(KLong))
    require.True(t, ok)
    assert.Equal(t, KLong, rt.Kind)

    /* disjoint kinds have no intersection */
    _, ok = Intersect(TypeOf(KCInt8), TypeOf(KLong))
    assert.False(t, ok)

    /* mortality refinements must agree */
    _, ok = Intersect(TypeOf(KLong).Mortal(), TypeOf(KLong).Immortal())
    assert.False(t, ok)

    /* payloads must agree */
    _, ok = Intersect(LongConst(4), LongConst(7))
    assert.False(t, ok)
}

func TestType_Specialized(t *testing.T) {
    assert.True(t, LongConst(4).IsSpecialized())
    assert.True(t, UnicodeConst("x", LifeMortal).IsSpecialized())
    assert.True(t, TypeOf(KNoneType).IsSpecialized())
    assert.True(t, TypeOf(KNullptr).IsSpecialized())
    assert.False(t, TypeOf(KLong).IsSpecialized())
    assert.False(t, TypeOf(KLong).AsExact().IsSpecialized())
    assert.False(t, TypeOf(KObject).IsSpecialized())
}

func TestType_TruncCInt(t *testing.T) {
    assert.Equal(t, int64(-128), TruncCInt(KCInt8, 128))
    assert.Equal(t, int64(127), TruncCInt(KCInt8, 127))
    assert.Equal(t, int64(-32768), TruncCInt(KCInt16, 32768))
    assert.Equal(t, int64(0), TruncCInt(KCInt32, 1 << 32))
}
