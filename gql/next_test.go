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
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"go.chromium.org/luci/common/testing/ftt"
	"go.chromium.org/luci/common/testing/truth/assert"
	"go.chromium.org/luci/common/testing/truth/should"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

func TestNextRequest(t *testing.T) {
	t.Parallel()

	ftt.Run("NextRequest", t, func(t *ftt.Test) {
		b := NewBuilder("select * from Task limit @1 offset @2")
		assert.Loosely(t, b.SetNamespace("ns"), should.BeNil)
		assert.Loosely(t, b.AddBinding(10), should.BeNil)
		assert.Loosely(t, b.AddBinding(3), should.BeNil)
		prev := b.Build().Request("proj", "")
		prev.ReadOptions = &pb.ReadOptions{
			ConsistencyType: &pb.ReadOptions_ReadConsistency_{ReadConsistency: pb.ReadOptions_EVENTUAL},
		}

		echoed := &pb.Query{
			Kind:   []*pb.KindExpression{{Name: "Task"}},
			Offset: 3,
			Limit:  wrapperspb.Int32(10),
		}
		resp := &pb.RunQueryResponse{
			Query: echoed,
			Batch: &pb.QueryResultBatch{
				EndCursor:      []byte("end"),
				SkippedResults: 3,
				EntityResults:  make([]*pb.EntityResult, 4),
			},
		}

		t.Run("offset consumed", func(t *ftt.Test) {
			next, err := NextRequest(prev, resp)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, next, should.Match(&pb.RunQueryRequest{
				ProjectId:   "proj",
				PartitionId: &pb.PartitionId{ProjectId: "proj", NamespaceId: "ns"},
				ReadOptions: prev.ReadOptions,
				QueryType: &pb.RunQueryRequest_Query{Query: &pb.Query{
					Kind:        []*pb.KindExpression{{Name: "Task"}},
					StartCursor: []byte("end"),
					Limit:       wrapperspb.Int32(6),
				}},
			}))
			// The response is left alone.
			assert.Loosely(t, echoed.StartCursor, should.BeNil)
			assert.Loosely(t, echoed.Offset, should.Equal(int32(3)))
		})

		t.Run("offset partially skipped", func(t *ftt.Test) {
			resp.Batch.SkippedResults = 1
			resp.Batch.EntityResults = nil
			next, err := NextRequest(prev, resp)
			assert.Loosely(t, err, should.BeNil)
			q := next.GetQuery()
			assert.Loosely(t, q.Offset, should.Equal(int32(2)))
			assert.Loosely(t, q.Limit.GetValue(), should.Equal(int32(10)))
		})

		t.Run("no limit", func(t *ftt.Test) {
			echoed.Limit = nil
			echoed.Offset = 0
			next, err := NextRequest(prev, resp)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, next.GetQuery().Limit, should.BeNil)
			assert.Loosely(t, next.GetQuery().Offset, should.Equal(int32(0)))
		})

		t.Run("limit never goes negative", func(t *ftt.Test) {
			echoed.Limit = wrapperspb.Int32(2)
			echoed.Offset = 0
			resp.Batch.EntityResults = make([]*pb.EntityResult, 5)
			next, err := NextRequest(prev, resp)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, next.GetQuery().Limit.GetValue(), should.Equal(int32(0)))
		})

		t.Run("transaction started by prev", func(t *ftt.Test) {
			resp.Transaction = []byte("txn")
			next, err := NextRequest(prev, resp)
			assert.Loosely(t, err, should.BeNil)
			assert.Loosely(t, next.ReadOptions.GetTransaction(), should.Match([]byte("txn")))
		})

		t.Run("incomplete responses", func(t *ftt.Test) {
			_, err := NextRequest(prev, &pb.RunQueryResponse{Batch: resp.Batch})
			assert.Loosely(t, err, should.ErrLike("does not echo the query"))
			_, err = NextRequest(prev, &pb.RunQueryResponse{Query: echoed})
			assert.Loosely(t, err, should.ErrLike("no result batch"))
		})
	})
}
