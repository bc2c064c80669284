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

// Package cli implements the gql command line tool: it builds, decodes and
// pages GQL RunQueryRequest messages without talking to the datastore.
package cli

import (
	"context"
	"os"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/fixflagpos"
	"go.chromium.org/luci/common/logging/gologger"
)

var logCfg = gologger.LoggerConfig{
	Out: os.Stderr,
}

// application creates the application and configures its subcommands.
func application() *cli.Application {
	return &cli.Application{
		Name:  "gql",
		Title: "Builds and inspects Cloud Datastore GQL query requests.",
		Context: func(ctx context.Context) context.Context {
			return logCfg.Use(ctx)
		},
		Commands: []*subcommands.Command{
			cmdBuild(),
			cmdDecode(),
			cmdNext(),

			{}, // a separator
			subcommands.CmdHelp,
		},
	}
}

// Main is the main function of the gql application.
func Main(args []string) int {
	return subcommands.Run(application(), fixflagpos.FixSubcommands(args))
}
