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
	"fmt"
	"math"
	"reflect"
	"time"
	"unicode/utf8"

	cloudds "cloud.google.com/go/datastore"
)

// IndexSetting indicates whether or not a Property should be indexed by the
// datastore.
type IndexSetting bool

// ShouldIndex is the zero value.
const (
	ShouldIndex IndexSetting = false
	NoIndex     IndexSetting = true
)

func (i IndexSetting) String() string {
	if i {
		return "NoIndex"
	}
	return "ShouldIndex"
}

// PropertyType is a single-byte representation of the type of data contained
// in a Property.
type PropertyType byte

// These constants are in the order of the values of google.datastore.v1.Value
// kinds the datastore sorts by.
const (
	// PTNull represents the 'nil' value. This is only directly visible when
	// reading/writing lists of values.
	PTNull PropertyType = iota

	// PTInt is always an int64.
	PTInt

	// PTTime is always a time.Time in UTC, rounded to microseconds.
	PTTime

	// PTBool represents true or false.
	PTBool

	// PTBytes represents []byte.
	PTBytes

	// PTString is used to represent all strings (text).
	PTString

	// PTFloat is always a float64.
	PTFloat

	// PTGeoPoint is a Geographical Point represented by a [±lat,±lng] pair.
	PTGeoPoint

	// PTKey represents a *Key object.
	PTKey

	// PTEntity represents an embedded *Entity.
	PTEntity

	// PTList is an ordered PropertySlice. Lists may not nest.
	PTList

	// PTUnknown is a placeholder value which should never show up in reality.
	PTUnknown
)

func (t PropertyType) String() string {
	switch t {
	case PTNull:
		return "PTNull"
	case PTInt:
		return "PTInt"
	case PTTime:
		return "PTTime"
	case PTBool:
		return "PTBool"
	case PTBytes:
		return "PTBytes"
	case PTString:
		return "PTString"
	case PTFloat:
		return "PTFloat"
	case PTGeoPoint:
		return "PTGeoPoint"
	case PTKey:
		return "PTKey"
	case PTEntity:
		return "PTEntity"
	case PTList:
		return "PTList"
	default:
		return fmt.Sprintf("PTUnknown(%02x)", byte(t))
	}
}

// GeoPoint represents a location as latitude/longitude in degrees.
type GeoPoint struct {
	Lat, Lng float64
}

// Valid returns whether a GeoPoint is within [-90, 90] latitude and [-180,
// 180] longitude.
func (g GeoPoint) Valid() bool {
	return -90 <= g.Lat && g.Lat <= 90 && -180 <= g.Lng && g.Lng <= 180
}

var (
	minTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)
)

// RoundTime rounds a time.Time to microseconds, which is the precision the
// datastore keeps.
func RoundTime(t time.Time) time.Time {
	return t.Round(time.Microsecond).UTC()
}

// PropertySlice is a slice of Properties. As a Property value it becomes a
// PTList.
type PropertySlice []Property

// Property is a value plus an indicator of whether the value should be
// indexed. Name and Multiple are stored in the PropertyMap object.
//
// The zero value is a valid, indexed PTNull property.
type Property struct {
	value    any
	propType PropertyType
	noIndex  bool
}

// MkProperty makes a new indexed Property from v.
func MkProperty(v any) (Property, error) {
	return mkProperty(v, ShouldIndex)
}

// MkPropertyNI makes a new Property (with noindex set to true) from v.
func MkPropertyNI(v any) (Property, error) {
	return mkProperty(v, NoIndex)
}

func mkProperty(v any, is IndexSetting) (p Property, err error) {
	err = p.SetValue(v, is)
	return
}

// MkList builds a PTList property out of already constructed properties.
func MkList(vals ...Property) (Property, error) {
	var p Property
	return p, p.SetValue(PropertySlice(vals), ShouldIndex)
}

// Type is the PT* type of the data contained in Value().
func (p Property) Type() PropertyType { return p.propType }

// IndexSetting says whether or not the datastore should create indices for
// this value.
func (p Property) IndexSetting() IndexSetting { return IndexSetting(p.noIndex) }

// Value returns the current value held by this property. Mutable values
// ([]byte, PropertySlice, *Entity) are copies.
//
// The Go type of the value depends on Type():
//   - PTNull: nil
//   - PTInt: int64
//   - PTTime: time.Time
//   - PTBool: bool
//   - PTBytes: []byte
//   - PTString: string
//   - PTFloat: float64
//   - PTGeoPoint: GeoPoint
//   - PTKey: *Key
//   - PTEntity: *Entity
//   - PTList: PropertySlice
func (p Property) Value() any {
	switch x := p.value.(type) {
	case []byte:
		return append([]byte(nil), x...)
	case PropertySlice:
		return append(PropertySlice(nil), x...)
	case *Entity:
		return x.Clone()
	}
	return p.value
}

// SetValue sets the Value field of a Property, and ensures that its value
// conforms to the permissible types. That way, you're guaranteed that if you
// have a Property, its value is valid.
//
// value is the property value. The valid types are:
//   - nil
//   - int, int8, int16, int32, int64, uint8, uint16, uint32
//   - float32, float64
//   - bool
//   - string
//   - []byte
//   - time.Time (must be in [0001-01-01, 9999-12-31])
//   - GeoPoint (and cloud.google.com/go/datastore.GeoPoint)
//   - *Key (and *cloud.google.com/go/datastore.Key)
//   - *Entity, PropertyMap (and *cloud.google.com/go/datastore.Entity)
//   - PropertySlice
//   - Property
//
// Named types whose underlying kind is one of the scalar kinds above are
// upconverted. On failure p is left untouched and the returned error wraps
// ErrInvalidArgument.
func (p *Property) SetValue(value any, is IndexSetting) error {
	if prop, ok := value.(Property); ok {
		*p = prop
		p.noIndex = bool(is) && prop.propType != PTList
		return nil
	}
	pt, v, err := upconvert(value)
	if err != nil {
		return err
	}
	// Lists are never excluded from indexes themselves; the setting lives on
	// their elements.
	*p = Property{value: v, propType: pt, noIndex: bool(is) && pt != PTList}
	return nil
}

func upconvert(value any) (PropertyType, any, error) {
	switch x := value.(type) {
	case nil:
		return PTNull, nil, nil
	case Cursor:
		return PTUnknown, nil, InvalidArgumentf("a Cursor is not a property value")
	case bool:
		return PTBool, x, nil
	case int64:
		return PTInt, x, nil
	case int:
		return PTInt, int64(x), nil
	case int32:
		return PTInt, int64(x), nil
	case int16:
		return PTInt, int64(x), nil
	case int8:
		return PTInt, int64(x), nil
	case uint32:
		return PTInt, int64(x), nil
	case uint16:
		return PTInt, int64(x), nil
	case uint8:
		return PTInt, int64(x), nil
	case float64:
		return PTFloat, x, nil
	case float32:
		return PTFloat, float64(x), nil
	case string:
		if !utf8.ValidString(x) {
			return PTUnknown, nil, InvalidArgumentf("string value %q is not valid UTF-8", x)
		}
		return PTString, x, nil
	case []byte:
		return PTBytes, append([]byte{}, x...), nil
	case time.Time:
		if x.Before(minTime) || x.After(maxTime) {
			return PTUnknown, nil, InvalidArgumentf("time value out of range: %s", x)
		}
		return PTTime, RoundTime(x), nil
	case GeoPoint:
		if !x.Valid() {
			return PTUnknown, nil, InvalidArgumentf("invalid GeoPoint value: %v", x)
		}
		return PTGeoPoint, x, nil
	case cloudds.GeoPoint:
		return upconvert(GeoPoint{Lat: x.Lat, Lng: x.Lng})
	case *Key:
		if !x.Valid() {
			return PTUnknown, nil, InvalidArgumentf("invalid key value: %s", x)
		}
		return PTKey, x, nil
	case *cloudds.Key:
		if x == nil {
			return PTUnknown, nil, InvalidArgumentf("nil *datastore.Key value")
		}
		return upconvert(KeyFromCloud(x))
	case *Entity:
		if x == nil {
			return PTUnknown, nil, InvalidArgumentf("nil *Entity value")
		}
		if x.Key != nil && !x.Key.Valid() {
			return PTUnknown, nil, InvalidArgumentf("entity has an invalid key: %s", x.Key)
		}
		if err := checkPropertyNames(x.Properties); err != nil {
			return PTUnknown, nil, err
		}
		return PTEntity, x.Clone(), nil
	case PropertyMap:
		if err := checkPropertyNames(x); err != nil {
			return PTUnknown, nil, err
		}
		return PTEntity, &Entity{Properties: x.Clone()}, nil
	case *cloudds.Entity:
		e, err := EntityFromCloud(x)
		if err != nil {
			return PTUnknown, nil, err
		}
		return PTEntity, e, nil
	case PropertySlice:
		for i, el := range x {
			if el.propType == PTList {
				return PTUnknown, nil, InvalidArgumentf("list element %d is itself a list", i)
			}
		}
		return PTList, append(PropertySlice{}, x...), nil
	}

	// Named types (e.g. `type Status string`) are converted by their kind.
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Bool:
		return PTBool, v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return PTInt, v.Int(), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return PTInt, int64(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return PTFloat, v.Float(), nil
	case reflect.String:
		return upconvert(v.String())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return upconvert(v.Bytes())
		}
	}
	return PTUnknown, nil, InvalidArgumentf("unsupported property value of type %T", value)
}

// Equal returns true iff p and other have the same type, value and index
// setting.
//
// Floats are compared bitwise, so NaN equals NaN and 0 differs from -0.
func (p Property) Equal(other Property) bool {
	if p.propType != other.propType || p.noIndex != other.noIndex {
		return false
	}
	switch p.propType {
	case PTNull:
		return true
	case PTTime:
		return p.value.(time.Time).Equal(other.value.(time.Time))
	case PTBytes:
		return bytes.Equal(p.value.([]byte), other.value.([]byte))
	case PTFloat:
		return math.Float64bits(p.value.(float64)) == math.Float64bits(other.value.(float64))
	case PTKey:
		return p.value.(*Key).Equal(other.value.(*Key))
	case PTEntity:
		return p.value.(*Entity).Equal(other.value.(*Entity))
	case PTList:
		a, b := p.value.(PropertySlice), other.value.(PropertySlice)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	default:
		return p.value == other.value
	}
}

func (p Property) String() string {
	ni := ""
	if p.noIndex {
		ni = ",NI"
	}
	switch p.propType {
	case PTNull:
		return "PTNull" + ni
	case PTString:
		return fmt.Sprintf("%q%s", p.value, ni)
	case PTTime:
		return fmt.Sprintf("%s%s", p.value.(time.Time).Format(time.RFC3339Nano), ni)
	case PTBytes:
		return fmt.Sprintf("[]byte(%q)%s", p.value, ni)
	case PTList:
		return fmt.Sprintf("%v%s", []Property(p.value.(PropertySlice)), ni)
	default:
		return fmt.Sprintf("%v%s", p.value, ni)
	}
}
