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
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"github.com/protocolbuffers/txtpbfmt/parser"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"go.chromium.org/luci/common/data/text"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/flag/flagenum"
	"go.chromium.org/luci/common/logging"
)

// messageFormat is the encoding of protobuf messages read and printed by the
// subcommands.
type messageFormat string

const (
	formatJSON messageFormat = "json"
	formatText messageFormat = "text"
)

var formatChoices = flagenum.Enum{
	"json": formatJSON,
	"text": formatText,
}

func (f *messageFormat) String() string {
	return string(*f)
}

func (f *messageFormat) Set(v string) error {
	return formatChoices.FlagSet(f, v)
}

func (f messageFormat) marshal(m proto.Message) ([]byte, error) {
	if f == formatText {
		// prototext output is deliberately unstable; txtpbfmt normalizes it.
		blob, err := prototext.Marshal(m)
		if err != nil {
			return nil, err
		}
		return parser.Format(blob)
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(m)
}

func (f messageFormat) unmarshal(blob []byte, m proto.Message) error {
	if f == formatText {
		return prototext.Unmarshal(blob, m)
	}
	return protojson.Unmarshal(blob, m)
}

// baseRun provides common command run functionality.
type baseRun struct {
	subcommands.CommandRunBase

	logCfg logging.Config
	format messageFormat
}

func (r *baseRun) registerBaseFlags() {
	r.logCfg.Level = logging.Info
	r.logCfg.AddFlags(&r.Flags)
	r.format = formatJSON
	r.Flags.Var(&r.format, "format", fmt.Sprintf(
		"Encoding of protobuf messages. Valid values: %s.", formatChoices.Choices()))
}

// ModifyContext implements cli.ContextModificator.
func (r *baseRun) ModifyContext(ctx context.Context) context.Context {
	return r.logCfg.Set(ctx)
}

// readMessage reads a message from a file in the chosen format. "-" is stdin.
func (r *baseRun) readMessage(path string, m proto.Message) error {
	var blob []byte
	var err error
	if path == "-" {
		blob, err = io.ReadAll(os.Stdin)
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return errors.Annotate(err, "reading %q", path).Err()
	}
	if err := r.format.unmarshal(blob, m); err != nil {
		return errors.Annotate(err, "parsing %q as %s", path, r.format).Err()
	}
	return nil
}

func (r *baseRun) printMessage(w io.Writer, m proto.Message) error {
	blob, err := r.format.marshal(m)
	if err != nil {
		return errors.Annotate(err, "marshaling %T", m).Err()
	}
	_, err = fmt.Fprintf(w, "%s\n", blob)
	return err
}

// done logs err, if any, and returns the process exit code.
func (r *baseRun) done(ctx context.Context, err error) int {
	if err != nil {
		logging.Errorf(ctx, "%s", err)
		return 1
	}
	return 0
}

// doc strips indentation from multi-line help texts.
func doc(doc string) string {
	return text.Doc(doc)
}
