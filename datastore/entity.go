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
	"sort"
	"strings"
	"unicode/utf8"

	cloudds "cloud.google.com/go/datastore"

	"go.chromium.org/luci/common/errors"
)

// PropertyMap represents the contents of a datastore entity in a generic way.
// It maps from property name to a Property. A multi-valued property is a
// single PTList Property.
type PropertyMap map[string]Property

// Clone returns a copy of the map. Properties are immutable, so a shallow
// copy is enough.
func (pm PropertyMap) Clone() PropertyMap {
	if pm == nil {
		return nil
	}
	ret := make(PropertyMap, len(pm))
	for k, v := range pm {
		ret[k] = v
	}
	return ret
}

// Names returns the property names in lexicographic order.
func (pm PropertyMap) Names() []string {
	ret := make([]string, 0, len(pm))
	for k := range pm {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Equal returns true iff both maps hold the same names with equal properties.
func (pm PropertyMap) Equal(other PropertyMap) bool {
	if len(pm) != len(other) {
		return false
	}
	for k, v := range pm {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func checkPropertyNames(pm PropertyMap) error {
	for name := range pm {
		if !utf8.ValidString(name) {
			return InvalidArgumentf("property name %q is not valid UTF-8", name)
		}
	}
	return nil
}

// Entity is a structured record: an optional key plus its properties. It is
// used as the value of PTEntity properties.
type Entity struct {
	Key        *Key
	Properties PropertyMap
}

// Clone returns a copy of e. The key is immutable and is shared.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	return &Entity{Key: e.Key, Properties: e.Properties.Clone()}
}

// Equal returns true iff both entities have equal keys and properties.
func (e *Entity) Equal(other *Entity) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Key.Equal(other.Key) && e.Properties.Equal(other.Properties)
}

func (e *Entity) String() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Properties))
	for _, name := range e.Properties.Names() {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Properties[name]))
	}
	if e.Key == nil {
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%s{%s}", e.Key, strings.Join(parts, ", "))
}

// EntityFromCloud converts a cloud.google.com/go/datastore entity.
//
// []any values become PTList properties.
func EntityFromCloud(e *cloudds.Entity) (*Entity, error) {
	if e == nil {
		return nil, InvalidArgumentf("nil *datastore.Entity value")
	}
	ret := &Entity{
		Key:        KeyFromCloud(e.Key),
		Properties: make(PropertyMap, len(e.Properties)),
	}
	if ret.Key != nil && !ret.Key.Valid() {
		return nil, InvalidArgumentf("entity has an invalid key: %s", ret.Key)
	}
	for _, cp := range e.Properties {
		if !utf8.ValidString(cp.Name) {
			return nil, InvalidArgumentf("property name %q is not valid UTF-8", cp.Name)
		}
		if _, dup := ret.Properties[cp.Name]; dup {
			return nil, InvalidArgumentf("entity has duplicate property %q", cp.Name)
		}
		prop, err := cloudProperty(cp.Value, IndexSetting(cp.NoIndex))
		if err != nil {
			return nil, errors.Annotate(err, "property %q", cp.Name).Err()
		}
		ret.Properties[cp.Name] = prop
	}
	return ret, nil
}

func cloudProperty(value any, is IndexSetting) (prop Property, err error) {
	vals, ok := value.([]any)
	if !ok {
		err = prop.SetValue(value, is)
		return
	}
	list := make(PropertySlice, len(vals))
	for i, v := range vals {
		if err = list[i].SetValue(v, is); err != nil {
			return
		}
	}
	err = prop.SetValue(list, is)
	return
}
