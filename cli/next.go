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
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"go.chromium.org/dsgql/gql"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

func cmdNext() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `next [flags] -request FILE -response FILE`,
		ShortDesc: "prints the RunQueryRequest for the next page",
		LongDesc: doc(`
			Given a RunQueryRequest and the RunQueryResponse the datastore returned
			for it, prints the request that fetches the next page of results.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &nextRun{}
			r.registerBaseFlags()
			r.Flags.StringVar(&r.requestPath, "request", "", "File with the previous RunQueryRequest.")
			r.Flags.StringVar(&r.responsePath, "response", "", "File with the RunQueryResponse.")
			return r
		},
	}
}

type nextRun struct {
	baseRun

	requestPath  string
	responsePath string
}

func (r *nextRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	switch {
	case len(args) != 0:
		return r.done(ctx, errors.Reason("unexpected arguments %q", args).Err())
	case r.requestPath == "" || r.responsePath == "":
		return r.done(ctx, errors.Reason("-request and -response are required").Err())
	}

	req := &pb.RunQueryRequest{}
	if err := r.readMessage(r.requestPath, req); err != nil {
		return r.done(ctx, err)
	}
	resp := &pb.RunQueryResponse{}
	if err := r.readMessage(r.responsePath, resp); err != nil {
		return r.done(ctx, err)
	}

	next, err := gql.NextRequest(req, resp)
	if err != nil {
		return r.done(ctx, err)
	}
	if resp.GetBatch().GetMoreResults() == pb.QueryResultBatch_NO_MORE_RESULTS {
		logging.Warningf(ctx, "the datastore reported no more results")
	}
	return r.done(ctx, r.printMessage(a.GetOut(), next))
}
