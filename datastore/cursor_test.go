// Copyright 2026 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datastore

import (
	"testing"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
)

func TestCursor(t *testing.T) {
	t.Parallel()

	ftt.Run("Cursor", t, func(t *ftt.Test) {
		c := Cursor{0xfb, 0xff, 0x01, 0x02}

		t.Run("string round trip", func(t *ftt.Test) {
			s := c.String()
			assert.Loosely(t, s, should.Equal("-_8BAg"))
			back, err := DecodeCursor(s)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, back.Equal(c), should.BeTrue)

			back, err = DecodeCursor(s + "==")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, back.Equal(c), should.BeTrue)
		})

		t.Run("bad string", func(t *ftt.Test) {
			_, err := DecodeCursor("!!!")
			assert.Loosely(t, err, should.ErrLike(ErrInvalidArgument))
		})

		t.Run("cloud round trip", func(t *ftt.Test) {
			cc, err := c.Cloud()
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, cc.String(), should.Equal(c.String()))
			back, err := CursorFromCloud(cc)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, back.Equal(c), should.BeTrue)
		})

		t.Run("Clone", func(t *ftt.Test) {
			cl := c.Clone()
			cl[0] = 0
			assert.Loosely(t, c[0], should.Equal(byte(0xfb)))
			assert.Loosely(t, Cursor(nil).Clone(), should.BeNil)
		})
	})
}
