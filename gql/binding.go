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

package gql

import (
	"fmt"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/grpc/grpcutil"

	"go.chromium.org/dsgql/datastore"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

// ErrUnexpectedParameter is returned when decoding a GqlQueryParameter that
// carries neither a cursor nor a value. It means the client and the server
// disagree on the wire schema and is tagged with grpcutil.InternalTag.
var ErrUnexpectedParameter = errors.New("unexpected GQL parameter type")

type bindingKind byte

const (
	valueBinding bindingKind = iota + 1
	cursorBinding
)

// Binding is the value of a single GQL parameter. It holds exactly one of a
// cursor or a typed value.
//
// The zero Binding is not valid; bindings are made with CursorBinding and
// ValueBinding, or read back from a Query.
type Binding struct {
	kind   bindingKind
	cursor datastore.Cursor
	value  datastore.Property
}

// CursorBinding makes a binding holding the cursor c.
func CursorBinding(c datastore.Cursor) (Binding, error) {
	if c == nil {
		return Binding{}, datastore.InvalidArgumentf("nil cursor")
	}
	return Binding{kind: cursorBinding, cursor: c.Clone()}, nil
}

// ValueBinding makes a binding holding the value p.
func ValueBinding(p datastore.Property) Binding {
	return Binding{kind: valueBinding, value: p}
}

// IsCursor returns true if b holds a cursor.
func (b Binding) IsCursor() bool { return b.kind == cursorBinding }

// Cursor returns a copy of the cursor held by b, or nil if b holds a value.
func (b Binding) Cursor() datastore.Cursor { return b.cursor.Clone() }

// Value returns the value held by b. It is a PTNull property if b holds a
// cursor.
func (b Binding) Value() datastore.Property { return b.value }

// CursorOrValue returns either a datastore.Cursor or a datastore.Property,
// whichever b holds.
func (b Binding) CursorOrValue() any {
	switch b.kind {
	case cursorBinding:
		return b.cursor.Clone()
	case valueBinding:
		return b.value
	}
	return nil
}

// Equal returns true iff both bindings hold equal cursors or equal values.
func (b Binding) Equal(other Binding) bool {
	if b.kind != other.kind {
		return false
	}
	switch b.kind {
	case cursorBinding:
		return b.cursor.Equal(other.cursor)
	case valueBinding:
		return b.value.Equal(other.value)
	}
	return true
}

func (b Binding) String() string {
	switch b.kind {
	case cursorBinding:
		return fmt.Sprintf("Binding{cursor=%s}", b.cursor)
	case valueBinding:
		return fmt.Sprintf("Binding{value=%s}", b.value)
	}
	return "Binding{}"
}

// ToProto encodes the binding as a google.datastore.v1.GqlQueryParameter.
//
// Panics on the zero Binding.
func (b Binding) ToProto() *pb.GqlQueryParameter {
	switch b.kind {
	case cursorBinding:
		return &pb.GqlQueryParameter{
			ParameterType: &pb.GqlQueryParameter_Cursor{Cursor: b.cursor.Clone()},
		}
	case valueBinding:
		return &pb.GqlQueryParameter{
			ParameterType: &pb.GqlQueryParameter_Value{Value: b.value.ToProto()},
		}
	}
	panic("gql: encoding an uninitialized Binding")
}

// BindingFromProto decodes a google.datastore.v1.GqlQueryParameter.
func BindingFromProto(p *pb.GqlQueryParameter) (Binding, error) {
	switch x := p.GetParameterType().(type) {
	case *pb.GqlQueryParameter_Cursor:
		return Binding{kind: cursorBinding, cursor: datastore.Cursor(x.Cursor).Clone()}, nil
	case *pb.GqlQueryParameter_Value:
		v, err := datastore.PropertyFromProto(x.Value)
		if err != nil {
			return Binding{}, err
		}
		return ValueBinding(v), nil
	default:
		return Binding{}, errors.Annotate(ErrUnexpectedParameter, "parameter type %T", x).
			Tag(grpcutil.InternalTag).Err()
	}
}

// toBinding wraps native values into a value binding. A datastore.Property is
// used as is, keeping its index setting. Values are collapsed:
//   - no values produce a PTNull value;
//   - a single value is used as is;
//   - two or more values are packed into a PTList, in order.
func toBinding(values []any) (Binding, error) {
	props := make(datastore.PropertySlice, len(values))
	for i, v := range values {
		if v == nil {
			return Binding{}, datastore.InvalidArgumentf("value %d is nil", i)
		}
		if p, ok := v.(datastore.Property); ok {
			props[i] = p
			continue
		}
		if err := props[i].SetValue(v, datastore.ShouldIndex); err != nil {
			return Binding{}, errors.Annotate(err, "value %d", i).Err()
		}
	}

	var prop datastore.Property
	switch len(props) {
	case 0:
	case 1:
		prop = props[0]
	default:
		var err error
		if prop, err = datastore.MkList(props...); err != nil {
			return Binding{}, err
		}
	}
	return ValueBinding(prop), nil
}
