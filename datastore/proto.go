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
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"go.chromium.org/luci/common/errors"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

// ToProto encodes the property as a google.datastore.v1.Value message.
func (p Property) ToProto() *pb.Value {
	ret := &pb.Value{ExcludeFromIndexes: p.noIndex}
	switch x := p.value.(type) {
	case nil:
		ret.ValueType = &pb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}
	case int64:
		ret.ValueType = &pb.Value_IntegerValue{IntegerValue: x}
	case time.Time:
		ret.ValueType = &pb.Value_TimestampValue{TimestampValue: timestamppb.New(x)}
	case bool:
		ret.ValueType = &pb.Value_BooleanValue{BooleanValue: x}
	case []byte:
		ret.ValueType = &pb.Value_BlobValue{BlobValue: append([]byte{}, x...)}
	case string:
		ret.ValueType = &pb.Value_StringValue{StringValue: x}
	case float64:
		ret.ValueType = &pb.Value_DoubleValue{DoubleValue: x}
	case GeoPoint:
		ret.ValueType = &pb.Value_GeoPointValue{GeoPointValue: &latlng.LatLng{
			Latitude:  x.Lat,
			Longitude: x.Lng,
		}}
	case *Key:
		ret.ValueType = &pb.Value_KeyValue{KeyValue: x.ToProto()}
	case *Entity:
		ret.ValueType = &pb.Value_EntityValue{EntityValue: x.ToProto()}
	case PropertySlice:
		arr := &pb.ArrayValue{Values: make([]*pb.Value, len(x))}
		for i, el := range x {
			arr.Values[i] = el.ToProto()
		}
		ret.ValueType = &pb.Value_ArrayValue{ArrayValue: arr}
	default:
		panic(errors.Reason("impossible property value of type %T", x).Err())
	}
	return ret
}

// PropertyFromProto decodes a google.datastore.v1.Value message.
func PropertyFromProto(v *pb.Value) (Property, error) {
	if v == nil {
		return Property{}, InvalidArgumentf("nil value")
	}
	is := IndexSetting(v.ExcludeFromIndexes)
	var prop Property
	var err error
	switch x := v.ValueType.(type) {
	case *pb.Value_NullValue:
		err = prop.SetValue(nil, is)
	case *pb.Value_BooleanValue:
		err = prop.SetValue(x.BooleanValue, is)
	case *pb.Value_IntegerValue:
		err = prop.SetValue(x.IntegerValue, is)
	case *pb.Value_DoubleValue:
		err = prop.SetValue(x.DoubleValue, is)
	case *pb.Value_TimestampValue:
		if err = x.TimestampValue.CheckValid(); err == nil {
			err = prop.SetValue(x.TimestampValue.AsTime(), is)
		} else {
			err = InvalidArgumentf("bad timestamp value: %s", err)
		}
	case *pb.Value_StringValue:
		err = prop.SetValue(x.StringValue, is)
	case *pb.Value_BlobValue:
		err = prop.SetValue(x.BlobValue, is)
	case *pb.Value_GeoPointValue:
		err = prop.SetValue(GeoPoint{
			Lat: x.GeoPointValue.GetLatitude(),
			Lng: x.GeoPointValue.GetLongitude(),
		}, is)
	case *pb.Value_KeyValue:
		var k *Key
		if k, err = KeyFromProto(x.KeyValue); err == nil {
			err = prop.SetValue(k, is)
		}
	case *pb.Value_EntityValue:
		var e *Entity
		if e, err = EntityFromProto(x.EntityValue); err == nil {
			err = prop.SetValue(e, is)
		}
	case *pb.Value_ArrayValue:
		vals := x.ArrayValue.GetValues()
		list := make(PropertySlice, len(vals))
		for i, el := range vals {
			if list[i], err = PropertyFromProto(el); err != nil {
				return Property{}, errors.Annotate(err, "array element %d", i).Err()
			}
		}
		err = prop.SetValue(list, is)
	default:
		err = InvalidArgumentf("unsupported value type %T", x)
	}
	if err != nil {
		return Property{}, err
	}
	return prop, nil
}

// ToProto encodes the entity as a google.datastore.v1.Entity message.
func (e *Entity) ToProto() *pb.Entity {
	ret := &pb.Entity{Properties: make(map[string]*pb.Value, len(e.Properties))}
	if e.Key != nil {
		ret.Key = e.Key.ToProto()
	}
	for name, prop := range e.Properties {
		ret.Properties[name] = prop.ToProto()
	}
	return ret
}

// EntityFromProto decodes a google.datastore.v1.Entity message.
func EntityFromProto(e *pb.Entity) (*Entity, error) {
	ret := &Entity{Properties: make(PropertyMap, len(e.GetProperties()))}
	if e.GetKey() != nil {
		k, err := KeyFromProto(e.Key)
		if err != nil {
			return nil, err
		}
		ret.Key = k
	}
	for name, v := range e.GetProperties() {
		prop, err := PropertyFromProto(v)
		if err != nil {
			return nil, errors.Annotate(err, "property %q", name).Err()
		}
		ret.Properties[name] = prop
	}
	return ret, nil
}
