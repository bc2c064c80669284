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
	"google.golang.org/protobuf/types/known/wrapperspb"

	"go.chromium.org/dsgql/datastore"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

// NextRequest derives the request for the next page of results.
//
// The datastore echoes the GQL query back as a structured query in resp; the
// next request runs that structured query from the batch end cursor, in the
// same project, database, partition and read options as prev. If prev started
// a new transaction, the next request reads in that transaction.
//
// Offset and limit are adjusted by what the previous batch consumed: an
// offset that wasn't fully skipped yet is reduced by the number of skipped
// results, otherwise the offset is dropped and the limit is reduced by the
// number of returned entities.
func NextRequest(prev *pb.RunQueryRequest, resp *pb.RunQueryResponse) (*pb.RunQueryRequest, error) {
	switch {
	case resp.GetQuery() == nil:
		return nil, datastore.InvalidArgumentf("response does not echo the query")
	case resp.GetBatch() == nil:
		return nil, datastore.InvalidArgumentf("response has no result batch")
	}

	batch := resp.Batch
	q := proto.Clone(resp.Query).(*pb.Query)
	q.StartCursor = append([]byte(nil), batch.EndCursor...)
	if skipped := batch.SkippedResults; q.Offset > 0 && skipped < q.Offset {
		q.Offset -= skipped
	} else {
		q.Offset = 0
		if q.Limit != nil {
			left := q.Limit.GetValue() - int32(len(batch.EntityResults))
			q.Limit = wrapperspb.Int32(max(left, 0))
		}
	}

	next := &pb.RunQueryRequest{
		ProjectId:  prev.GetProjectId(),
		DatabaseId: prev.GetDatabaseId(),
		QueryType:  &pb.RunQueryRequest_Query{Query: q},
	}
	if prev.GetPartitionId() != nil {
		next.PartitionId = proto.Clone(prev.PartitionId).(*pb.PartitionId)
	}
	switch {
	case len(resp.Transaction) > 0:
		// prev began a transaction; keep reading in it.
		next.ReadOptions = &pb.ReadOptions{
			ConsistencyType: &pb.ReadOptions_Transaction{Transaction: resp.Transaction},
		}
	case prev.GetReadOptions() != nil:
		next.ReadOptions = proto.Clone(prev.ReadOptions).(*pb.ReadOptions)
	}
	return next, nil
}
