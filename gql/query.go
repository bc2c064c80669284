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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"iter"
	"sort"
	"strings"
)

// ResultType is the kind of results a query is expected to produce. The GQL
// text decides it on the server side; the client uses it to decode results.
type ResultType int

const (
	// ResultUnknown means results may be of any kind.
	ResultUnknown ResultType = iota
	// ResultEntity means full entities.
	ResultEntity
	// ResultKey means keys only (`SELECT __key__ ...`).
	ResultKey
	// ResultProjection means projected entities.
	ResultProjection
)

func (rt ResultType) String() string {
	switch rt {
	case ResultUnknown:
		return "unknown"
	case ResultEntity:
		return "entity"
	case ResultKey:
		return "key"
	case ResultProjection:
		return "projection"
	}
	return fmt.Sprintf("ResultType(%d)", int(rt))
}

// Query is an immutable GQL query with its parameter bindings.
//
// It is safe for concurrent use. Make one with a Builder.
type Query struct {
	resultType    ResultType
	namespace     string
	queryString   string
	allowLiterals bool
	named         map[string]Binding
	positional    []Binding
}

// ResultType returns the kind of results the query is expected to produce.
func (q *Query) ResultType() ResultType { return q.resultType }

// Namespace returns the namespace the query runs in.
func (q *Query) Namespace() string { return q.namespace }

// QueryString returns the GQL text.
func (q *Query) QueryString() string { return q.queryString }

// AllowLiterals returns whether the GQL text may contain literal values.
func (q *Query) AllowLiterals() bool { return q.allowLiterals }

// NamedBindingNames returns names of all named bindings in lexicographic
// order.
func (q *Query) NamedBindingNames() []string {
	names := make([]string, 0, len(q.named))
	for k := range q.named {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NamedBinding returns the binding for @name, if any.
func (q *Query) NamedBinding(name string) (Binding, bool) {
	b, ok := q.named[name]
	return b, ok
}

// Named iterates over the named bindings in lexicographic order of names.
func (q *Query) Named() iter.Seq2[string, Binding] {
	return func(yield func(string, Binding) bool) {
		for _, name := range q.NamedBindingNames() {
			if !yield(name, q.named[name]) {
				return
			}
		}
	}
}

// NamedBindings returns the resolved named bindings. Each value is either a
// datastore.Cursor or a datastore.Property.
//
// The returned map is a copy.
func (q *Query) NamedBindings() map[string]any {
	ret := make(map[string]any, len(q.named))
	for k, v := range q.named {
		ret[k] = v.CursorOrValue()
	}
	return ret
}

// PositionalBindingCount returns the number of positional bindings.
func (q *Query) PositionalBindingCount() int { return len(q.positional) }

// PositionalBinding returns the binding for @(i+1).
//
// Panics if i is out of range.
func (q *Query) PositionalBinding(i int) Binding { return q.positional[i] }

// Positional iterates over the positional bindings in order. Indexes are
// 0-based, i.e. index 0 is @1.
func (q *Query) Positional() iter.Seq2[int, Binding] {
	return func(yield func(int, Binding) bool) {
		for i, b := range q.positional {
			if !yield(i, b) {
				return
			}
		}
	}
}

// PositionalBindings returns the resolved positional bindings in the order
// they were added. Each value is either a datastore.Cursor or a
// datastore.Property.
func (q *Query) PositionalBindings() []any {
	ret := make([]any, len(q.positional))
	for i, b := range q.positional {
		ret[i] = b.CursorOrValue()
	}
	return ret
}

// Equal returns true iff both queries have the same namespace, GQL text,
// literals flag and bindings.
//
// The GQL text is compared verbatim. ResultType is not compared.
func (q *Query) Equal(other *Query) bool {
	if q == nil || other == nil {
		return q == other
	}
	if q.namespace != other.namespace ||
		q.queryString != other.queryString ||
		q.allowLiterals != other.allowLiterals ||
		len(q.named) != len(other.named) ||
		len(q.positional) != len(other.positional) {
		return false
	}
	for k, v := range q.named {
		ov, ok := other.named[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	for i, v := range q.positional {
		if !v.Equal(other.positional[i]) {
			return false
		}
	}
	return true
}

// Fingerprint returns a hex digest of the query. Equal queries have equal
// fingerprints.
func (q *Query) Fingerprint() string {
	// The GQL text isn't validated and may not be UTF-8, which proto
	// marshaling rejects, so it is hashed next to the message.
	gq := q.ToProto()
	gq.QueryString = ""
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s%d:%s", len(q.namespace), q.namespace, len(q.queryString), q.queryString)
	h.Write(mustMarshalDeterministic(gq))
	return hex.EncodeToString(h.Sum(nil))
}

func (q *Query) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "GqlQuery{type=%s, namespace=%q, queryString=%q, allowLiterals=%t, namedBindings={",
		q.resultType, q.namespace, q.queryString, q.allowLiterals)
	first := true
	for name, bnd := range q.Named() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %s", name, bnd)
	}
	b.WriteString("}, positionalBindings=[")
	for i, bnd := range q.Positional() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(bnd.String())
	}
	b.WriteString("]}")
	return b.String()
}
