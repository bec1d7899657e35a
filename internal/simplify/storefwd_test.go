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
    `testing`

    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func TestStoreFwd_AliasObservesObject(t *testing.T) {
    src := `
fun jittestmodule:alias {
  bb 0 {
    v0:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 0 } }
    v1:ImmortalLongExact[7] = LoadConst<ImmortalLongExact[7]>
    v2:MortalObjectExact = UseType<MortalObjectExact> v0
    StoreField<x@16> v0 v1
    v3:Object = LoadField<x@16> v0
    Return v3
  }
}
`
    fn := parse(t, src)
    before := fn.String()

    /* the assertion aliases the object before the store, so the field may
     * be read through v2 and nothing can be forwarded */
    assert.False(t, StoreFwd{}.Apply(fn))
    assert.Equal(t, before, fn.String())
}

func TestStoreFwd_UnreadStoreKept(t *testing.T) {
    src := `
fun jittestmodule:unread {
  bb 0 {
    v0:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 0 } }
    v1:ImmortalLongExact[7] = LoadConst<ImmortalLongExact[7]>
    StoreField<x@16> v0 v1
    Return v0
  }
}
`
    fn := parse(t, src)
    before := fn.String()

    /* no load was forwarded, so the store still initializes the returned
     * object */
    assert.False(t, StoreFwd{}.Apply(fn))
    assert.Equal(t, before, fn.String())
}

func TestStoreFwd_CrossBlockLoadKept(t *testing.T) {
    src := `
fun jittestmodule:crossblock {
  bb 0 {
    v0:ImmortalLongExact[7] = LoadConst<ImmortalLongExact[7]>
    v1:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 2 } }
    StoreField<x@16> v1 v0
    v2:Object = LoadField<x@16, borrowed> v1
    Branch<1>
  }

  bb 1 {
    v3:Object = LoadField<x@16> v1
    Return v3
  }
}
`
    fn := parse(t, src)
    before := fn.String()

    /* the successor block reads the field, so the store must stay and the
     * same-block load may not be forwarded either */
    require.NoError(t, Optimize(fn))
    assert.Equal(t, before, fn.String())
}

func TestStoreFwd_OverwrittenStoreDeleted(t *testing.T) {
    fn := parse(t, `
fun jittestmodule:overwrite {
  bb 0 {
    v0:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 0 } }
    v1:ImmortalLongExact[1] = LoadConst<ImmortalLongExact[1]>
    v2:ImmortalLongExact[2] = LoadConst<ImmortalLongExact[2]>
    StoreField<x@16> v0 v1
    StoreField<x@16> v0 v2
    v3:Object = LoadField<x@16> v0
    Return v3
  }
}
`)

    assert.True(t, StoreFwd{}.Apply(fn))
    assert.Equal(t,
        "fun jittestmodule:overwrite {\n" +
        "  bb 0 {\n" +
        "    v0:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 0 } }\n" +
        "    v1:ImmortalLongExact[1] = LoadConst<ImmortalLongExact[1]>\n" +
        "    v2:ImmortalLongExact[2] = LoadConst<ImmortalLongExact[2]>\n" +
        "    Return v2\n" +
        "  }\n" +
        "}\n",
        fn.String(),
    )
}

func TestStoreFwd_BorrowedLoadMarksValue(t *testing.T) {
    fn := parse(t, `
fun jittestmodule:borrowed {
  bb 0 {
    v0:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 0 } }
    v1:ImmortalLongExact[7] = LoadConst<ImmortalLongExact[7]>
    StoreField<x@16> v0 v1
    v2:Object = LoadField<x@16, borrowed> v0
    Return v2
  }
}
`)

    assert.True(t, StoreFwd{}.Apply(fn))
    assert.True(t, fn.Borrowed(1))
    assert.Equal(t,
        "fun jittestmodule:borrowed {\n" +
        "  bb 0 {\n" +
        "    v0:MortalObjectExact = TpAlloc<Point> { FrameState { NextInstrOffset 0 } }\n" +
        "    v1:ImmortalLongExact[7] = LoadConst<ImmortalLongExact[7]>\n" +
        "    Return v1\n" +
        "  }\n" +
        "}\n",
        fn.String(),
    )
}
