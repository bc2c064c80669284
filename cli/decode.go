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
	"fmt"
	"io"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"go.chromium.org/dsgql/gql"

	pb "cloud.google.com/go/datastore/apiv1/datastorepb"
)

func cmdDecode() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `decode [flags] FILE`,
		ShortDesc: "prints the bindings of a GQL RunQueryRequest",
		LongDesc: doc(`
			Decodes a RunQueryRequest carrying a GQL query and prints the query
			text, its flags and its resolved bindings.

			FILE is "-" for stdin.
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &decodeRun{}
			r.registerBaseFlags()
			return r
		},
	}
}

type decodeRun struct {
	baseRun
}

func (r *decodeRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	if len(args) != 1 {
		return r.done(ctx, errors.Reason("expected exactly one FILE argument").Err())
	}

	req := &pb.RunQueryRequest{}
	if err := r.readMessage(args[0], req); err != nil {
		return r.done(ctx, err)
	}
	q, err := gql.FromRequest(req)
	if err != nil {
		return r.done(ctx, err)
	}
	logging.Debugf(ctx, "decoded %d named and %d positional bindings",
		len(q.NamedBindingNames()), q.PositionalBindingCount())
	return r.done(ctx, describe(a.GetOut(), q))
}

// describe prints a human readable summary of q.
func describe(w io.Writer, q *gql.Query) error {
	p := &errPrinter{w: w}
	p.printf("query:          %q\n", q.QueryString())
	p.printf("namespace:      %q\n", q.Namespace())
	p.printf("allow literals: %t\n", q.AllowLiterals())
	p.printf("fingerprint:    %s\n", q.Fingerprint())
	p.printf("named:\n")
	for name, b := range q.Named() {
		p.printf("  @%s = %s\n", name, describeBinding(b))
	}
	p.printf("positional:\n")
	for i, b := range q.Positional() {
		p.printf("  @%d = %s\n", i+1, describeBinding(b))
	}
	return p.err
}

func describeBinding(b gql.Binding) string {
	if b.IsCursor() {
		return "cursor:" + b.Cursor().String()
	}
	v := b.Value()
	return fmt.Sprintf("%s %s", v.Type(), v)
}

// errPrinter remembers the first write error.
type errPrinter struct {
	w   io.Writer
	err error
}

func (p *errPrinter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}
