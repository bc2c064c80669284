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

// Package gql builds parameterized GQL queries for Cloud Datastore.
//
// A query is GQL text plus named (@name) and positional (@1, @2, ...)
// parameter bindings. Each binding is either a cursor or a typed value:
//
//	b := gql.NewBuilder("SELECT * FROM Task WHERE done = @done AND tag IN @1")
//	if err := b.SetBinding("done", true); err != nil {
//		return err
//	}
//	if err := b.AddBinding("a", "b", "c"); err != nil {
//		return err
//	}
//	req := b.Build().Request("my-project", "")
//
// Values passed to a single SetBinding or AddBinding call are collapsed: no
// values bind null, one value binds that value, and more values bind a list.
//
// The GQL text is never parsed or validated here; the datastore owns the
// grammar. This package also does no I/O: Request produces the RunQueryRequest
// message and NextRequest derives the follow-up request for the next page,
// but sending them is up to the caller.
package gql
