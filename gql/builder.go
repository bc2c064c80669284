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
	"unicode/utf8"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/dsgql/datastore"
)

// Builder accumulates a GQL query string, flags and parameter bindings and
// produces immutable Query objects.
//
// A Builder is not safe for concurrent use. It stays usable after Build;
// later changes don't affect queries that were already built.
//
// Methods that validate input report problems immediately and leave the
// builder unchanged when they fail. All such errors wrap
// datastore.ErrInvalidArgument.
type Builder struct {
	resultType    ResultType
	namespace     string
	queryString   string
	allowLiterals bool
	named         map[string]Binding
	positional    []Binding
}

// NewBuilder returns a builder for the given GQL text.
//
// The text isn't validated in any way; the datastore owns the GQL grammar.
func NewBuilder(query string) *Builder {
	return NewBuilderFor(ResultUnknown, query)
}

// NewBuilderFor is like NewBuilder, but also records the kind of results the
// caller expects the query to produce.
func NewBuilderFor(rt ResultType, query string) *Builder {
	return &Builder{
		resultType:  rt,
		queryString: query,
		named:       map[string]Binding{},
	}
}

// NewBuilderFrom returns a builder seeded with everything from q.
func NewBuilderFrom(q *Query) *Builder {
	b := &Builder{
		resultType:    q.resultType,
		namespace:     q.namespace,
		queryString:   q.queryString,
		allowLiterals: q.allowLiterals,
		named:         make(map[string]Binding, len(q.named)),
		positional:    append([]Binding(nil), q.positional...),
	}
	for k, v := range q.named {
		b.named[k] = v
	}
	return b
}

// SetQueryString replaces the GQL text.
func (b *Builder) SetQueryString(query string) *Builder {
	b.queryString = query
	return b
}

// SetResultType records the kind of results the caller expects.
func (b *Builder) SetResultType(rt ResultType) *Builder {
	b.resultType = rt
	return b
}

// SetAllowLiterals sets whether the GQL text may contain literal values.
//
// Literals are disallowed by default, forcing all values through bindings.
func (b *Builder) SetAllowLiterals(allow bool) *Builder {
	b.allowLiterals = allow
	return b
}

// SetNamespace sets the namespace to run the query in. The empty string is
// the default namespace.
func (b *Builder) SetNamespace(ns string) error {
	if err := datastore.ValidNamespace(ns); err != nil {
		return err
	}
	b.namespace = ns
	return nil
}

// ClearBindings drops all named and positional bindings.
func (b *Builder) ClearBindings() *Builder {
	b.named = map[string]Binding{}
	b.positional = nil
	return b
}

// SetCursorBinding binds the named parameter @name to the cursor c,
// replacing any previous binding with that name.
func (b *Builder) SetCursorBinding(name string, c datastore.Cursor) error {
	if err := checkBindingName(name); err != nil {
		return err
	}
	bnd, err := CursorBinding(c)
	if err != nil {
		return errors.Annotate(err, "binding %q", name).Err()
	}
	b.named[name] = bnd
	return nil
}

// SetBinding binds the named parameter @name to values, replacing any
// previous binding with that name.
//
// name must be valid UTF-8. Each value must be acceptable to
// datastore.Property.SetValue and must not be nil. No values bind a null value, a single value is bound as is, and two or
// more values are bound as a list in the given order.
func (b *Builder) SetBinding(name string, values ...any) error {
	if err := checkBindingName(name); err != nil {
		return err
	}
	bnd, err := toBinding(values)
	if err != nil {
		return errors.Annotate(err, "binding %q", name).Err()
	}
	b.named[name] = bnd
	return nil
}

func checkBindingName(name string) error {
	if !utf8.ValidString(name) {
		return datastore.InvalidArgumentf("binding name %q is not valid UTF-8", name)
	}
	return nil
}

// AddCursorBinding appends the cursor c to the positional bindings.
func (b *Builder) AddCursorBinding(c datastore.Cursor) error {
	bnd, err := CursorBinding(c)
	if err != nil {
		return errors.Annotate(err, "positional binding %d", len(b.positional)+1).Err()
	}
	b.positional = append(b.positional, bnd)
	return nil
}

// AddBinding appends values to the positional bindings. The collapsing rules
// are the same as in SetBinding.
//
// The first call binds @1, the second @2 and so on.
func (b *Builder) AddBinding(values ...any) error {
	bnd, err := toBinding(values)
	if err != nil {
		return errors.Annotate(err, "positional binding %d", len(b.positional)+1).Err()
	}
	b.positional = append(b.positional, bnd)
	return nil
}

// Build returns an immutable snapshot of the builder state.
func (b *Builder) Build() *Query {
	q := &Query{
		resultType:    b.resultType,
		namespace:     b.namespace,
		queryString:   b.queryString,
		allowLiterals: b.allowLiterals,
		named:         make(map[string]Binding, len(b.named)),
		positional:    append([]Binding(nil), b.positional...),
	}
	for k, v := range b.named {
		q.named[k] = v
	}
	return q
}
