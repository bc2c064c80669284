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
	"context"
	"flag"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	luciflag "go.chromium.org/luci/common/flag"
	"go.chromium.org/luci/common/flag/stringmapflag"
	"go.chromium.org/luci/common/logging"

	"go.chromium.org/dsgql/datastore"
	"go.chromium.org/dsgql/gql"
)

func cmdBuild() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: `build [flags] [QUERY]`,
		ShortDesc: "builds a GQL RunQueryRequest",
		LongDesc: doc(`
			Builds a RunQueryRequest for a parameterized GQL query and prints it.

			QUERY is the GQL text. It may also come from the "query" field of the
			-bindings file; the argument wins if both are given.

			A binding is a '|'-separated list of TYPE:VALUE items. One item binds
			a single value, more items bind a list, and an empty binding binds
			null. Items without a known TYPE are strings. A cursor binding is a
			single "cursor:<web-safe base64>" item.

			Example:
				gql build -named done=bool:true -positional 'string:a|string:b' \
					'SELECT * FROM Task WHERE done = @done AND tag IN @1'
		`),
		CommandRun: func() subcommands.CommandRun {
			r := &buildRun{}
			r.registerBaseFlags()
			r.Flags.StringVar(&r.project, "project", "", "Cloud project of the request.")
			r.Flags.StringVar(&r.database, "database", "", "Datastore database, empty for the default one.")
			r.Flags.StringVar(&r.namespace, "namespace", "", "Namespace to run the query in.")
			r.Flags.BoolVar(&r.allowLiterals, "allow-literals", false, "Allow literal values in the GQL text.")
			r.Flags.StringVar(&r.bindingsPath, "bindings", "", "YAML file with the query and its bindings.")
			r.Flags.Var(&r.named, "named", fmt.Sprintf(doc(`
				A named binding NAME=BINDING. Can be specified multiple times.
				Types: %s.
			`), strings.Join(valueTypes(), ", ")))
			r.Flags.Var(luciflag.StringSlice(&r.positional), "positional", doc(`
				A positional binding. The first one binds @1, the second @2 and so on.
				Can be specified multiple times.
			`))
			return r
		},
	}
}

type buildRun struct {
	baseRun

	project       string
	database      string
	namespace     string
	allowLiterals bool
	bindingsPath  string
	named         stringmapflag.Value
	positional    []string
}

func (r *buildRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, r, env)
	if len(args) > 1 {
		return r.done(ctx, errors.Reason("expected at most one QUERY argument, got %d", len(args)).Err())
	}

	var file *bindingsFile
	if r.bindingsPath != "" {
		var err error
		if file, err = loadBindingsFile(r.bindingsPath); err != nil {
			return r.done(ctx, err)
		}
	}

	q, err := r.buildQuery(ctx, args, file)
	if err != nil {
		return r.done(ctx, err)
	}
	logging.Debugf(ctx, "built %s", q)
	logging.Infof(ctx, "query fingerprint %s", q.Fingerprint())
	return r.done(ctx, r.printMessage(a.GetOut(), q.Request(r.project, r.database)))
}

// flagSet returns true if the flag was given on the command line.
func (r *buildRun) flagSet(name string) (set bool) {
	r.Flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return
}

// buildQuery assembles the query from the file (if any), then the flags.
func (r *buildRun) buildQuery(ctx context.Context, args []string, file *bindingsFile) (*gql.Query, error) {
	b := gql.NewBuilder("")
	ns := r.namespace
	allowLiterals := r.allowLiterals
	if file != nil {
		b.SetQueryString(file.Query)
		if !r.flagSet("namespace") {
			ns = file.Namespace
		}
		if !r.flagSet("allow-literals") {
			allowLiterals = file.AllowLiterals
		}
	}
	if len(args) == 1 {
		b.SetQueryString(args[0])
	}
	b.SetAllowLiterals(allowLiterals)
	if err := b.SetNamespace(ns); err != nil {
		return nil, err
	}

	kc := datastore.KeyContext{ProjectID: r.project, DatabaseID: r.database, Namespace: ns}
	if file != nil {
		if err := applyFile(ctx, b, kc, file); err != nil {
			return nil, err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(r.named)) {
		spec := r.named[name]
		bs, err := parseSpec(kc, spec)
		if err != nil {
			return nil, errors.Annotate(err, "-named %s", name).Err()
		}
		if err := bs.setNamed(b, name); err != nil {
			return nil, err
		}
		logging.Debugf(ctx, "named binding %q from flags", name)
	}
	for i, spec := range r.positional {
		bs, err := parseSpec(kc, spec)
		if err != nil {
			return nil, errors.Annotate(err, "-positional #%d", i+1).Err()
		}
		if err := bs.addPositional(b); err != nil {
			return nil, err
		}
	}

	q := b.Build()
	if q.QueryString() == "" {
		logging.Warningf(ctx, "the GQL text is empty")
	}
	return q, nil
}

// applyFile adds bindings from the file. Named ones are applied in name
// order so that errors are reported deterministically.
func applyFile(ctx context.Context, b *gql.Builder, kc datastore.KeyContext, file *bindingsFile) error {
	for _, name := range slices.Sorted(maps.Keys(file.Named)) {
		bs, err := yamlSpec(kc, file.Named[name])
		if err != nil {
			return errors.Annotate(err, "bindings file: named %q", name).Err()
		}
		if err := bs.setNamed(b, name); err != nil {
			return errors.Annotate(err, "bindings file").Err()
		}
	}
	for i, raw := range file.Positional {
		bs, err := yamlSpec(kc, raw)
		if err != nil {
			return errors.Annotate(err, "bindings file: positional #%d", i+1).Err()
		}
		if err := bs.addPositional(b); err != nil {
			return errors.Annotate(err, "bindings file").Err()
		}
	}
	logging.Debugf(ctx, "applied %d named and %d positional bindings from the file",
		len(file.Named), len(file.Positional))
	return nil
}
