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

package cli

import (
	"encoding/base64"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/dsgql/datastore"
	"go.chromium.org/dsgql/gql"
)

// bindingSpec is a parsed binding: a cursor or a list of values that are
// collapsed by the gql.Builder.
type bindingSpec struct {
	cursor datastore.Cursor
	values []any
}

func (s bindingSpec) setNamed(b *gql.Builder, name string) error {
	if s.cursor != nil {
		return b.SetCursorBinding(name, s.cursor)
	}
	return b.SetBinding(name, s.values...)
}

func (s bindingSpec) addPositional(b *gql.Builder) error {
	if s.cursor != nil {
		return b.AddCursorBinding(s.cursor)
	}
	return b.AddBinding(s.values...)
}

// valueParsers parse the VALUE part of a TYPE:VALUE item.
var valueParsers = map[string]func(kc datastore.KeyContext, v string) (any, error){
	"string": func(_ datastore.KeyContext, v string) (any, error) { return v, nil },
	"int": func(_ datastore.KeyContext, v string) (any, error) {
		return strconv.ParseInt(v, 10, 64)
	},
	"float": func(_ datastore.KeyContext, v string) (any, error) {
		return strconv.ParseFloat(v, 64)
	},
	"bool": func(_ datastore.KeyContext, v string) (any, error) {
		return strconv.ParseBool(v)
	},
	"time": func(_ datastore.KeyContext, v string) (any, error) {
		return time.Parse(time.RFC3339Nano, v)
	},
	"bytes": func(_ datastore.KeyContext, v string) (any, error) {
		return base64.StdEncoding.DecodeString(v)
	},
	"key": parseKey,
	"null": func(_ datastore.KeyContext, v string) (any, error) {
		if v != "" {
			return nil, errors.Reason("null takes no value, got %q", v).Err()
		}
		return datastore.MkProperty(nil)
	},
}

// cursorType prefixes a cursor in its web-safe string form.
const cursorType = "cursor"

func valueTypes() []string {
	ret := make([]string, 0, len(valueParsers)+1)
	for k := range valueParsers {
		ret = append(ret, k)
	}
	ret = append(ret, cursorType)
	sort.Strings(ret)
	return ret
}

// parseKey parses a key path like `Parent,1/Child,name`. All-digit ids are
// integer ids.
func parseKey(kc datastore.KeyContext, v string) (any, error) {
	var toks []datastore.KeyTok
	for _, el := range strings.Split(v, "/") {
		kind, id, ok := strings.Cut(el, ",")
		if !ok || kind == "" || id == "" {
			return nil, errors.Reason("bad key element %q, want Kind,id", el).Err()
		}
		tok := datastore.KeyTok{Kind: kind}
		if intID, err := strconv.ParseInt(id, 10, 64); err == nil {
			tok.IntID = intID
		} else {
			tok.StringID = id
		}
		toks = append(toks, tok)
	}
	return kc.NewKeyToks(toks), nil
}

// parseItem parses a single TYPE:VALUE item. Items without a known TYPE
// prefix are plain strings.
func parseItem(kc datastore.KeyContext, item string) (v any, isCursor bool, err error) {
	typ, val, ok := strings.Cut(item, ":")
	if !ok {
		return item, false, nil
	}
	if typ == cursorType {
		c, err := datastore.DecodeCursor(val)
		return c, true, err
	}
	parse := valueParsers[typ]
	if parse == nil {
		return item, false, nil
	}
	if v, err = parse(kc, val); err != nil {
		return nil, false, errors.Annotate(err, "bad %s value %q", typ, val).Err()
	}
	return v, false, nil
}

// parseSpec parses a binding given on the command line: TYPE:VALUE items
// separated by '|'. An empty spec binds null.
func parseSpec(kc datastore.KeyContext, spec string) (bindingSpec, error) {
	if spec == "" {
		return bindingSpec{}, nil
	}
	var ret bindingSpec
	items := strings.Split(spec, "|")
	for _, item := range items {
		v, isCursor, err := parseItem(kc, item)
		if err != nil {
			return bindingSpec{}, err
		}
		if isCursor {
			if len(items) != 1 {
				return bindingSpec{}, errors.Reason("a cursor can't be combined with other values").Err()
			}
			ret.cursor = v.(datastore.Cursor)
			return ret, nil
		}
		ret.values = append(ret.values, v)
	}
	return ret, nil
}

// bindingsFile is the YAML file accepted by -bindings.
//
// Named and positional values are either native YAML scalars, TYPE:VALUE
// strings, mappings (embedded entities) or lists of those (list bindings).
type bindingsFile struct {
	Query         string                 `yaml:"query"`
	Namespace     string                 `yaml:"namespace"`
	AllowLiterals bool                   `yaml:"allow_literals"`
	Named         map[string]interface{} `yaml:"named"`
	Positional    []interface{}          `yaml:"positional"`
}

func loadBindingsFile(path string) (*bindingsFile, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotate(err, "reading bindings file").Err()
	}
	return parseBindingsFile(blob)
}

func parseBindingsFile(blob []byte) (*bindingsFile, error) {
	ret := &bindingsFile{}
	if err := yaml.UnmarshalStrict(blob, ret); err != nil {
		return nil, errors.Annotate(err, "parsing bindings file").Err()
	}
	return ret, nil
}

// yamlSpec converts a decoded YAML value into a binding.
func yamlSpec(kc datastore.KeyContext, v interface{}) (bindingSpec, error) {
	list, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok {
			item, isCursor, err := parseItem(kc, s)
			switch {
			case err != nil:
				return bindingSpec{}, err
			case isCursor:
				return bindingSpec{cursor: item.(datastore.Cursor)}, nil
			}
			return bindingSpec{values: []any{item}}, nil
		}
		list = []interface{}{v}
	}
	ret := bindingSpec{values: make([]any, len(list))}
	for i, el := range list {
		val, err := yamlValue(kc, el)
		if err != nil {
			return bindingSpec{}, errors.Annotate(err, "value %d", i).Err()
		}
		ret.values[i] = val
	}
	return ret, nil
}

func yamlValue(kc datastore.KeyContext, v interface{}) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, errors.Reason("bare null values are ambiguous, use \"null:\"").Err()
	case string:
		item, isCursor, err := parseItem(kc, x)
		if err == nil && isCursor {
			err = errors.Reason("a cursor can't be part of a list").Err()
		}
		return item, err
	case int:
		return int64(x), nil
	case map[interface{}]interface{}:
		pm := make(datastore.PropertyMap, len(x))
		for k, raw := range x {
			name, ok := k.(string)
			if !ok {
				return nil, errors.Reason("entity property names must be strings, got %v", k).Err()
			}
			val, err := yamlValue(kc, raw)
			if err != nil {
				return nil, errors.Annotate(err, "property %q", name).Err()
			}
			prop, err := datastore.MkProperty(val)
			if err != nil {
				return nil, errors.Annotate(err, "property %q", name).Err()
			}
			pm[name] = prop
		}
		return pm, nil
	case []interface{}:
		list := make(datastore.PropertySlice, len(x))
		for i, raw := range x {
			val, err := yamlValue(kc, raw)
			if err != nil {
				return nil, errors.Annotate(err, "element %d", i).Err()
			}
			if list[i], err = datastore.MkProperty(val); err != nil {
				return nil, errors.Annotate(err, "element %d", i).Err()
			}
		}
		return list, nil
	default:
		// bool, float64, int64 and friends are understood by the value model.
		return x, nil
	}
}
