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
	"math"
	"testing"
	"time"

	cloudds "cloud.google.com/go/datastore"
	"google.golang.org/grpc/codes"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"
	"go.chromium.org/luci/grpc/grpcutil"
)

type myString string
type myInt int16
type myBlob []byte

func mustProp(t testing.TB, v any) Property {
	t.Helper()
	p, err := MkProperty(v)
	if err != nil {
		t.Fatalf("MkProperty(%v): %s", v, err)
	}
	return p
}

func TestMkProperty(t *testing.T) {
	t.Parallel()

	ftt.Run("MkProperty", t, func(t *ftt.Test) {
		t.Run("scalars", func(t *ftt.Test) {
			cases := []struct {
				in  any
				pt  PropertyType
				val any
			}{
				{nil, PTNull, nil},
				{true, PTBool, true},
				{7, PTInt, int64(7)},
				{int8(-3), PTInt, int64(-3)},
				{uint32(42), PTInt, int64(42)},
				{myInt(9), PTInt, int64(9)},
				{float32(1.5), PTFloat, 1.5},
				{2.25, PTFloat, 2.25},
				{"hi", PTString, "hi"},
				{myString("named"), PTString, "named"},
				{GeoPoint{Lat: 1, Lng: 2}, PTGeoPoint, GeoPoint{Lat: 1, Lng: 2}},
				{cloudds.GeoPoint{Lat: 3, Lng: 4}, PTGeoPoint, GeoPoint{Lat: 3, Lng: 4}},
			}
			for _, c := range cases {
				p, err := MkProperty(c.in)
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, p.Type(), should.Equal(c.pt))
				assert.Loosely(t, p.Value(), should.Equal(c.val))
				assert.Loosely(t, p.IndexSetting(), should.Equal(ShouldIndex))
			}
		})

		t.Run("bytes are copied", func(t *ftt.Test) {
			src := []byte("abc")
			p := mustProp(t, src)
			src[0] = 'x'
			assert.Loosely(t, p.Value(), should.Match([]byte("abc")))

			out := p.Value().([]byte)
			out[1] = 'y'
			assert.Loosely(t, p.Value(), should.Match([]byte("abc")))

			assert.Loosely(t, mustProp(t, myBlob("z")).Type(), should.Equal(PTBytes))
		})

		t.Run("times are rounded to microseconds in UTC", func(t *ftt.Test) {
			loc := time.FixedZone("X", 3600)
			in := time.Date(2020, 1, 2, 3, 4, 5, 6789, loc)
			p := mustProp(t, in)
			assert.Loosely(t, p.Type(), should.Equal(PTTime))
			got := p.Value().(time.Time)
			assert.Loosely(t, got.Location(), should.Equal(time.UTC))
			assert.Loosely(t, got.Nanosecond(), should.Equal(7000))
			assert.Loosely(t, got.Equal(in.Round(time.Microsecond)), should.BeTrue)
		})

		t.Run("keys", func(t *ftt.Test) {
			k := MkKeyContext("proj", "ns").MakeKey("Parent", 1, "Child", "c")
			p := mustProp(t, k)
			assert.Loosely(t, p.Type(), should.Equal(PTKey))
			assert.Loosely(t, p.Value().(*Key).Equal(k), should.BeTrue)

			ck := &cloudds.Key{Kind: "K", Name: "n", Namespace: "ns"}
			p = mustProp(t, ck)
			assert.Loosely(t, p.Value().(*Key).String(), should.Equal(`:ns:/K,"n"`))
		})

		t.Run("entities", func(t *ftt.Test) {
			pm := PropertyMap{"a": mustProp(t, 1)}
			p := mustProp(t, pm)
			assert.Loosely(t, p.Type(), should.Equal(PTEntity))
			pm["b"] = mustProp(t, 2)
			assert.Loosely(t, p.Value().(*Entity).Properties, should.HaveLength(1))

			ce := &cloudds.Entity{
				Properties: []cloudds.Property{
					{Name: "s", Value: "x"},
					{Name: "l", Value: []any{int64(1), "two"}, NoIndex: true},
				},
			}
			p = mustProp(t, ce)
			e := p.Value().(*Entity)
			assert.Loosely(t, e.Key, should.BeNil)
			assert.Loosely(t, e.Properties["l"].Type(), should.Equal(PTList))
			l := e.Properties["l"].Value().(PropertySlice)
			assert.Loosely(t, l, should.HaveLength(2))
			assert.Loosely(t, l[1].IndexSetting(), should.Equal(NoIndex))
		})

		t.Run("lists", func(t *ftt.Test) {
			p, err := MkList(mustProp(t, 1), mustProp(t, "a"))
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, p.Type(), should.Equal(PTList))

			_, err = MkList(p)
			assert.Loosely(t, err, should.ErrLike("is itself a list"))

			ni, err := MkPropertyNI(PropertySlice{mustProp(t, 1)})
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, ni.IndexSetting(), should.Equal(ShouldIndex))
		})

		t.Run("rejects", func(t *ftt.Test) {
			bad := []any{
				uint64(1),
				uint(1),
				struct{}{},
				(*Key)(nil),
				(*Entity)(nil),
				(*cloudds.Key)(nil),
				Cursor("abc"),
				"\xff",
				GeoPoint{Lat: 100},
				time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
				MkKeyContext("p", "").MakeKey("", 1),
				MkKeyContext("p", "").MakeKey("\xff", 1),
				MkKeyContext("p", "").MakeKey("K", "\xff"),
				MkKeyContext("p", "\xff").MakeKey("K", 1),
				PropertyMap{"\xfe": mustProp(t, 1)},
				&Entity{Properties: PropertyMap{"\xfe": mustProp(t, 1)}},
				&cloudds.Entity{Properties: []cloudds.Property{{Name: "\xfe", Value: int64(1)}}},
				&cloudds.Entity{Key: &cloudds.Key{Name: "no kind"}},
			}
			for _, v := range bad {
				var p Property
				err := p.SetValue(v, ShouldIndex)
				assert.Loosely(t, err, should.ErrLike(ErrInvalidArgument))
				assert.Loosely(t, IsInvalidArgument(err), should.BeTrue)
				assert.Loosely(t, grpcutil.Code(err), should.Equal(codes.InvalidArgument))
				assert.Loosely(t, p.Type(), should.Equal(PTNull))
			}
		})
	})
}

func TestPropertyEqual(t *testing.T) {
	t.Parallel()

	ftt.Run("Property.Equal", t, func(t *ftt.Test) {
		t.Run("by type and value", func(t *ftt.Test) {
			assert.Loosely(t, mustProp(t, 1).Equal(mustProp(t, int64(1))), should.BeTrue)
			assert.Loosely(t, mustProp(t, 1).Equal(mustProp(t, 1.0)), should.BeFalse)
			assert.Loosely(t, mustProp(t, "a").Equal(mustProp(t, []byte("a"))), should.BeFalse)
			assert.Loosely(t, mustProp(t, nil).Equal(Property{}), should.BeTrue)
		})

		t.Run("index setting matters", func(t *ftt.Test) {
			ni, err := MkPropertyNI("a")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, ni.Equal(mustProp(t, "a")), should.BeFalse)
		})

		t.Run("floats are compared bitwise", func(t *ftt.Test) {
			nan := math.NaN()
			assert.Loosely(t, mustProp(t, nan).Equal(mustProp(t, nan)), should.BeTrue)
			assert.Loosely(t, mustProp(t, 0.0).Equal(mustProp(t, math.Copysign(0, -1))), should.BeFalse)
		})

		t.Run("times in different zones", func(t *ftt.Test) {
			now := time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC)
			other := now.In(time.FixedZone("Y", -7200))
			assert.Loosely(t, mustProp(t, now).Equal(mustProp(t, other)), should.BeTrue)
		})

		t.Run("lists", func(t *ftt.Test) {
			a, _ := MkList(mustProp(t, 1), mustProp(t, 2))
			b, _ := MkList(mustProp(t, 1), mustProp(t, 2))
			c, _ := MkList(mustProp(t, 2), mustProp(t, 1))
			assert.Loosely(t, a.Equal(b), should.BeTrue)
			assert.Loosely(t, a.Equal(c), should.BeFalse)
		})
	})
}
