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
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

func TestPropertyProto(t *testing.T) {
	t.Parallel()

	ftt.Run("Property wire encoding", t, func(t *ftt.Test) {
		now := time.Date(2022, 3, 4, 5, 6, 7, 8000, time.UTC)
		key := KeyContext{ProjectID: "p", Namespace: "ns"}.MakeKey("K", "k")

		t.Run("scalars", func(t *ftt.Test) {
			cases := []struct {
				in  any
				out *pb.Value
			}{
				{nil, &pb.Value{ValueType: &pb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}}},
				{true, &pb.Value{ValueType: &pb.Value_BooleanValue{BooleanValue: true}}},
				{5, &pb.Value{ValueType: &pb.Value_IntegerValue{IntegerValue: 5}}},
				{0.5, &pb.Value{ValueType: &pb.Value_DoubleValue{DoubleValue: 0.5}}},
				{"s", &pb.Value{ValueType: &pb.Value_StringValue{StringValue: "s"}}},
				{[]byte("b"), &pb.Value{ValueType: &pb.Value_BlobValue{BlobValue: []byte("b")}}},
				{now, &pb.Value{ValueType: &pb.Value_TimestampValue{TimestampValue: timestamppb.New(now)}}},
				{GeoPoint{Lat: 1, Lng: 2}, &pb.Value{ValueType: &pb.Value_GeoPointValue{
					GeoPointValue: &latlng.LatLng{Latitude: 1, Longitude: 2},
				}}},
				{key, &pb.Value{ValueType: &pb.Value_KeyValue{KeyValue: key.ToProto()}}},
			}
			for _, c := range cases {
				p := mustProp(t, c.in)
				assert.Loosely(t, p.ToProto(), should.Match(c.out))
				back, err := PropertyFromProto(c.out)
				assert.Loosely(t, err, should.BeNil)
				assert.Loosely(t, back.Equal(p), should.BeTrue)
			}
		})

		t.Run("noindex", func(t *ftt.Test) {
			p, err := MkPropertyNI("x")
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, p.ToProto().ExcludeFromIndexes, should.BeTrue)
			back, err := PropertyFromProto(p.ToProto())
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, back.IndexSetting(), should.Equal(NoIndex))
		})

		t.Run("lists", func(t *ftt.Test) {
			l, err := MkList(mustProp(t, "a"), mustProp(t, 1))
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, l.ToProto(), should.Match(&pb.Value{
				ValueType: &pb.Value_ArrayValue{ArrayValue: &pb.ArrayValue{
					Values: []*pb.Value{
						{ValueType: &pb.Value_StringValue{StringValue: "a"}},
						{ValueType: &pb.Value_IntegerValue{IntegerValue: 1}},
					},
				}},
			}))
			back, err := PropertyFromProto(l.ToProto())
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, back.Equal(l), should.BeTrue)
		})

		t.Run("entities", func(t *ftt.Test) {
			e := &Entity{
				Key: key,
				Properties: PropertyMap{
					"a": mustProp(t, 1),
					"b": mustProp(t, PropertyMap{"inner": mustProp(t, "x")}),
				},
			}
			p := mustProp(t, e)
			back, err := PropertyFromProto(p.ToProto())
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, back.Equal(p), should.BeTrue)
			assert.Loosely(t, back.Value().(*Entity).String(),
				should.Equal(`p:ns:/K,"k"{a: 1, b: {inner: "x"}}`))
		})

		t.Run("bad messages", func(t *ftt.Test) {
			_, err := PropertyFromProto(nil)
			assert.Loosely(t, err, should.ErrLike(ErrInvalidArgument))

			_, err = PropertyFromProto(&pb.Value{})
			assert.Loosely(t, err, should.ErrLike("unsupported value type"))

			_, err = PropertyFromProto(&pb.Value{ValueType: &pb.Value_ArrayValue{ArrayValue: &pb.ArrayValue{
				Values: []*pb.Value{{}},
			}}})
			assert.Loosely(t, err, should.ErrLike("array element 0"))

			_, err = PropertyFromProto(&pb.Value{ValueType: &pb.Value_TimestampValue{
				TimestampValue: &timestamppb.Timestamp{Nanos: -1},
			}})
			assert.Loosely(t, err, should.ErrLike("bad timestamp"))
		})
	})
}
