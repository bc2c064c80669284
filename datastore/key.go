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
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	cloudds "cloud.google.com/go/datastore"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

// KeyContext is the partition a Key lives in.
type KeyContext struct {
	ProjectID  string
	DatabaseID string
	Namespace  string
}

// MkKeyContext returns a KeyContext in the default database.
func MkKeyContext(projectID, namespace string) KeyContext {
	return KeyContext{ProjectID: projectID, Namespace: namespace}
}

// KeyTok is a single token from a multi-part Key.
type KeyTok struct {
	Kind     string
	IntID    int64
	StringID string
}

// Incomplete returns true iff this token doesn't define either a StringID or
// an IntID.
func (k KeyTok) Incomplete() bool {
	return k.StringID == "" && k.IntID == 0
}

// Key is the type used for all datastore operations.
//
// Keys are immutable once constructed.
type Key struct {
	kc   KeyContext
	toks []KeyTok
}

// NewKeyToks creates a new Key from a full token path. The slice is copied.
//
// A nil or empty token list yields nil.
func (kc KeyContext) NewKeyToks(toks []KeyTok) *Key {
	if len(toks) == 0 {
		return nil
	}
	newToks := make([]KeyTok, len(toks))
	copy(newToks, toks)
	return &Key{kc, newToks}
}

// NewKey appends a single token to parent (which may be nil).
func (kc KeyContext) NewKey(kind, stringID string, intID int64, parent *Key) *Key {
	if parent == nil {
		return &Key{kc, []KeyTok{{kind, intID, stringID}}}
	}

	toks := make([]KeyTok, len(parent.toks), len(parent.toks)+1)
	copy(toks, parent.toks)
	toks = append(toks, KeyTok{kind, intID, stringID})
	return &Key{kc, toks}
}

// MakeKey builds a key out of alternating kind and id arguments, where an id
// is a string name or an int, int32 or int64 id:
//
//	kc.MakeKey("Parent", 1, "Child", "id") // proj:ns:/Parent,1/Child,"id"
//
// Panics on malformed arguments, so only use it with literal paths.
func (kc KeyContext) MakeKey(elems ...any) *Key {
	if len(elems) == 0 {
		return nil
	}

	if len(elems)%2 != 0 {
		panic(fmt.Errorf("MakeKey: odd number of tokens: %v", elems))
	}

	toks := make([]KeyTok, len(elems)/2)
	for i := 0; len(elems) > 0; i, elems = i+1, elems[2:] {
		knd, ok := elems[0].(string)
		if !ok {
			panic(fmt.Errorf("MakeKey: bad kind: %v", elems[0]))
		}
		t := &toks[i]
		t.Kind = knd
		switch x := elems[1].(type) {
		case string:
			t.StringID = x
		case int:
			t.IntID = int64(x)
		case int32:
			t.IntID = int64(x)
		case int64:
			t.IntID = x
		default:
			panic(fmt.Errorf("MakeKey: bad id: %v", x))
		}
	}

	return kc.NewKeyToks(toks)
}

// KeyContext returns the KeyContext that this Key is using.
func (k *Key) KeyContext() KeyContext { return k.kc }

// Namespace returns the namespace of the key.
func (k *Key) Namespace() string { return k.kc.Namespace }

// Last returns the last KeyTok in this Key.
func (k *Key) Last() KeyTok { return k.toks[len(k.toks)-1] }

// Kind returns the Kind of the child KeyTok.
func (k *Key) Kind() string { return k.Last().Kind }

// StringID returns the StringID of the child KeyTok.
func (k *Key) StringID() string { return k.Last().StringID }

// IntID returns the IntID of the child KeyTok.
func (k *Key) IntID() int64 { return k.Last().IntID }

// Incomplete returns true iff k doesn't have an id yet.
func (k *Key) Incomplete() bool { return k.Last().Incomplete() }

// Split componentizes the key into pieces (KeyContext and KeyTok slice).
func (k *Key) Split() (kc KeyContext, toks []KeyTok) {
	toks = make([]KeyTok, len(k.toks))
	copy(toks, k.toks)
	return k.kc, toks
}

// Parent returns the parent Key of this *Key, or nil.
func (k *Key) Parent() *Key {
	if len(k.toks) <= 1 {
		return nil
	}
	return k.kc.NewKeyToks(k.toks[:len(k.toks)-1])
}

// Valid determines if a key is valid: all strings are UTF-8, every token has
// a kind and only the last one may be incomplete.
func (k *Key) Valid() bool {
	if k == nil || len(k.toks) == 0 {
		return false
	}
	if !utf8.ValidString(k.kc.ProjectID) || !utf8.ValidString(k.kc.DatabaseID) || !utf8.ValidString(k.kc.Namespace) {
		return false
	}
	for i, t := range k.toks {
		if t.Kind == "" || !utf8.ValidString(t.Kind) || !utf8.ValidString(t.StringID) {
			return false
		}
		if t.IntID < 0 || (t.IntID != 0 && t.StringID != "") {
			return false
		}
		if i != len(k.toks)-1 && t.Incomplete() {
			return false
		}
	}
	return true
}

// Equal returns true iff the two keys represent identical key values.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.kc != other.kc || len(k.toks) != len(other.toks) {
		return false
	}
	for i, t := range k.toks {
		if t != other.toks[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the key in the form of
//
//	project:ns:/Kind,id/Kind,id/...
func (k *Key) String() string {
	if k == nil {
		return "<nil>"
	}
	b := strings.Builder{}
	b.WriteString(k.kc.ProjectID)
	if k.kc.DatabaseID != "" {
		b.WriteString("@" + k.kc.DatabaseID)
	}
	b.WriteString(":" + k.kc.Namespace + ":")
	for _, t := range k.toks {
		b.WriteString("/" + t.Kind + ",")
		switch {
		case t.StringID != "":
			b.WriteString(strconv.Quote(t.StringID))
		case t.IntID != 0:
			b.WriteString(strconv.FormatInt(t.IntID, 10))
		}
	}
	return b.String()
}

// ToProto encodes the key as a google.datastore.v1.Key message.
func (k *Key) ToProto() *pb.Key {
	ret := &pb.Key{
		PartitionId: &pb.PartitionId{
			ProjectId:   k.kc.ProjectID,
			DatabaseId:  k.kc.DatabaseID,
			NamespaceId: k.kc.Namespace,
		},
		Path: make([]*pb.Key_PathElement, len(k.toks)),
	}
	for i, t := range k.toks {
		el := &pb.Key_PathElement{Kind: t.Kind}
		switch {
		case t.StringID != "":
			el.IdType = &pb.Key_PathElement_Name{Name: t.StringID}
		case t.IntID != 0:
			el.IdType = &pb.Key_PathElement_Id{Id: t.IntID}
		}
		ret.Path[i] = el
	}
	return ret
}

// KeyFromProto decodes a google.datastore.v1.Key message.
func KeyFromProto(k *pb.Key) (*Key, error) {
	if len(k.GetPath()) == 0 {
		return nil, InvalidArgumentf("key has an empty path")
	}
	part := k.GetPartitionId()
	kc := KeyContext{
		ProjectID:  part.GetProjectId(),
		DatabaseID: part.GetDatabaseId(),
		Namespace:  part.GetNamespaceId(),
	}
	toks := make([]KeyTok, len(k.Path))
	for i, el := range k.Path {
		toks[i] = KeyTok{
			Kind:     el.GetKind(),
			IntID:    el.GetId(),
			StringID: el.GetName(),
		}
	}
	ret := &Key{kc, toks}
	if !ret.Valid() {
		return nil, InvalidArgumentf("invalid key %s", ret)
	}
	return ret, nil
}

// KeyFromCloud converts a cloud.google.com/go/datastore key.
//
// Cloud keys don't carry a project, so the returned key has an empty
// ProjectID. The namespace of the leaf element is used for the whole key.
func KeyFromCloud(k *cloudds.Key) *Key {
	if k == nil {
		return nil
	}
	var toks []KeyTok
	for cur := k; cur != nil; cur = cur.Parent {
		toks = append(toks, KeyTok{Kind: cur.Kind, IntID: cur.ID, StringID: cur.Name})
	}
	slices.Reverse(toks)
	return &Key{KeyContext{Namespace: k.Namespace}, toks}
}

// Cloud converts the key to its cloud.google.com/go/datastore counterpart.
func (k *Key) Cloud() *cloudds.Key {
	var ret *cloudds.Key
	for _, t := range k.toks {
		ret = &cloudds.Key{
			Kind:      t.Kind,
			ID:        t.IntID,
			Name:      t.StringID,
			Parent:    ret,
			Namespace: k.kc.Namespace,
		}
	}
	return ret
}
