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

// Package datastore holds the typed value model used by GQL query bindings:
// Property and its PT* types, Key, Entity, GeoPoint and Cursor, together with
// their google.datastore.v1 wire encodings.
//
// The values interoperate with cloud.google.com/go/datastore: its Key,
// GeoPoint, Entity and Cursor types are accepted wherever a native value is.
package datastore
