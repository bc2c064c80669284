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
	"google.golang.org/protobuf/proto"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/dsgql/datastore"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

// ToProto encodes the query as a google.datastore.v1.GqlQuery message.
//
// The namespace is not part of GqlQuery; see Request.
func (q *Query) ToProto() *pb.GqlQuery {
	ret := &pb.GqlQuery{
		QueryString:   q.queryString,
		AllowLiterals: q.allowLiterals,
	}
	if len(q.named) > 0 {
		ret.NamedBindings = make(map[string]*pb.GqlQueryParameter, len(q.named))
		for name, b := range q.named {
			ret.NamedBindings[name] = b.ToProto()
		}
	}
	if len(q.positional) > 0 {
		ret.PositionalBindings = make([]*pb.GqlQueryParameter, len(q.positional))
		for i, b := range q.positional {
			ret.PositionalBindings[i] = b.ToProto()
		}
	}
	return ret
}

// FromProto decodes a google.datastore.v1.GqlQuery message into a Query in the
// namespace ns.
//
// A parameter with an unknown type aborts decoding with an error wrapping
// ErrUnexpectedParameter.
func FromProto(ns string, gq *pb.GqlQuery) (*Query, error) {
	if gq == nil {
		return nil, datastore.InvalidArgumentf("nil GqlQuery")
	}
	b := NewBuilder(gq.QueryString).SetAllowLiterals(gq.AllowLiterals)
	if err := b.SetNamespace(ns); err != nil {
		return nil, err
	}
	for name, p := range gq.NamedBindings {
		if err := checkBindingName(name); err != nil {
			return nil, err
		}
		bnd, err := BindingFromProto(p)
		if err != nil {
			return nil, errors.Annotate(err, "named binding %q", name).Err()
		}
		b.named[name] = bnd
	}
	for i, p := range gq.PositionalBindings {
		bnd, err := BindingFromProto(p)
		if err != nil {
			return nil, errors.Annotate(err, "positional binding %d", i+1).Err()
		}
		b.positional = append(b.positional, bnd)
	}
	return b.Build(), nil
}

// Request returns a RunQueryRequest running the query in the given project
// and database. databaseID may be empty for the default database.
func (q *Query) Request(projectID, databaseID string) *pb.RunQueryRequest {
	return &pb.RunQueryRequest{
		ProjectId:  projectID,
		DatabaseId: databaseID,
		PartitionId: &pb.PartitionId{
			ProjectId:   projectID,
			DatabaseId:  databaseID,
			NamespaceId: q.namespace,
		},
		QueryType: &pb.RunQueryRequest_GqlQuery{GqlQuery: q.ToProto()},
	}
}

// FromRequest decodes the GQL query carried by req, including the namespace
// from its partition.
func FromRequest(req *pb.RunQueryRequest) (*Query, error) {
	gq := req.GetGqlQuery()
	if gq == nil {
		return nil, datastore.InvalidArgumentf("request does not carry a GQL query")
	}
	return FromProto(req.GetPartitionId().GetNamespaceId(), gq)
}

func mustMarshalDeterministic(m proto.Message) []byte {
	blob, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	if err != nil {
		panic(errors.Annotate(err, "marshaling %T", m).Err())
	}
	return blob
}
