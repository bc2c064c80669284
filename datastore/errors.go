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

package datastore

import (
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/grpc/grpcutil"
)

// ErrInvalidArgument is wrapped by every error caused by a bad value supplied
// by the caller: unsupported Go types, out of range times, malformed
// namespaces, absent cursors and so on.
//
// Such errors are also tagged with grpcutil.InvalidArgumentTag.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentf returns an error wrapping ErrInvalidArgument with the given
// reason.
func InvalidArgumentf(format string, args ...any) error {
	return errors.Annotate(ErrInvalidArgument, format, args...).
		Tag(grpcutil.InvalidArgumentTag).Err()
}

// IsInvalidArgument returns true if err was produced by a bad caller input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
