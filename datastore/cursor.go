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
	"bytes"
	"encoding/base64"
	"strings"

	cloudds "cloud.google.com/go/datastore"
)

// Cursor is an opaque position in a query result stream. The datastore
// issues cursors alongside query results; they are only ever handed back.
//
// A nil Cursor is absent.
type Cursor []byte

// String returns the web-safe encoding of the cursor. It is compatible with
// cloud.google.com/go/datastore's Cursor.String.
func (c Cursor) String() string {
	return base64.RawURLEncoding.EncodeToString(c)
}

// Equal returns true iff both cursors hold the same token.
func (c Cursor) Equal(other Cursor) bool {
	return bytes.Equal(c, other)
}

// Clone returns a copy of the cursor.
func (c Cursor) Clone() Cursor {
	if c == nil {
		return nil
	}
	return append(Cursor{}, c...)
}

// DecodeCursor decodes a cursor from its string representation. Padded and
// unpadded web-safe base64 are both accepted.
func DecodeCursor(s string) (Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, InvalidArgumentf("bad cursor %q: %s", s, err)
	}
	return Cursor(b), nil
}

// CursorFromCloud converts a cloud.google.com/go/datastore cursor.
func CursorFromCloud(c cloudds.Cursor) (Cursor, error) {
	return DecodeCursor(c.String())
}

// Cloud converts the cursor to its cloud.google.com/go/datastore counterpart.
func (c Cursor) Cloud() (cloudds.Cursor, error) {
	ret, err := cloudds.DecodeCursor(c.String())
	if err != nil {
		return cloudds.Cursor{}, InvalidArgumentf("bad cursor %q: %s", c, err)
	}
	return ret, nil
}
