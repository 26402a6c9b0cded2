// Copyright 2025 Binaek Sarkar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package accessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

func testContext() *Context {
	ev := event.New("email")
	ev.TraceID = "trace-1"
	ev.CreatedMs = 1554130814854
	ev.Payload.
		Set("subject", value.Text("hello world")).
		Set("count", value.Number(3)).
		Set("tags", value.Array(value.Text("first"), value.Text("second"))).
		Set("nested", value.MapValue(value.NewMap().Set("with.dot", value.Text("dotted"))))
	ev.Metadata.Set("tenant_id", value.Text("acme"))

	vars := value.NewMap().
		Set("rule_one.host", value.Text("srv01")).
		Set("rule_two.port", value.Number(443))

	return &Context{Event: ev, Vars: vars, RuleName: "rule_one"}
}

func TestParseRejectsMalformedTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{name: "unbalanced braces", template: "${event.type"},
		{name: "empty expression", template: "${}"},
		{name: "whitespace in segment", template: "${event.payload.some key}"},
		{name: "unknown root", template: "${something.else}"},
		{name: "unknown event field", template: "${event.unknown}"},
		{name: "path after scalar field", template: "${event.type.more}"},
		{name: "dangling dot", template: "${event.payload.}"},
		{name: "double dot", template: "${event.payload..x}"},
		{name: "bad index", template: "${event.payload.tags[one]}"},
		{name: "too many variable segments", template: "${_variables.a.b.c}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.template)
			require.Error(t, err)
			var cfgErr xerr.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestGetEventFields(t *testing.T) {
	ctx := testContext()

	tests := []struct {
		template string
		want     value.Value
	}{
		{template: "${event.type}", want: value.Text("email")},
		{template: "${event.trace_id}", want: value.Text("trace-1")},
		{template: "${event.created_ms}", want: value.Number(1554130814854)},
		{template: "${event.payload.subject}", want: value.Text("hello world")},
		{template: "${event.payload.count}", want: value.Number(3)},
		{template: "${event.payload.tags[0]}", want: value.Text("first")},
		{template: "${event.payload.tags[-1]}", want: value.Text("second")},
		{template: `${event.payload.nested["with.dot"]}`, want: value.Text("dotted")},
		{template: "${event.metadata.tenant_id}", want: value.Text("acme")},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			a, err := Parse(tt.template)
			require.NoError(t, err)
			got, err := a.Get(ctx)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestGetVariables(t *testing.T) {
	ctx := testContext()

	a, err := Parse("${_variables.rule_two.port}")
	require.NoError(t, err)
	got, err := a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Number(443), got)

	// a single segment resolves against the current rule
	a, err = Parse("${_variables.host}")
	require.NoError(t, err)
	got, err = a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Text("srv01"), got)

	a, err = Parse("${_variables.rule_one.missing}")
	require.NoError(t, err)
	_, err = a.Get(ctx)
	assert.True(t, xerr.IsNotFound(err))
}

func TestGetLiteralAndEscape(t *testing.T) {
	ctx := testContext()

	a, err := Parse("plain text")
	require.NoError(t, err)
	got, err := a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Text("plain text"), got)

	a, err = Parse(`cost is \${event.type}`)
	require.NoError(t, err)
	got, err = a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Text("cost is ${event.type}"), got)
}

func TestGetMixedTemplateStringifies(t *testing.T) {
	ctx := testContext()

	a, err := Parse("type=${event.type} count=${event.payload.count}")
	require.NoError(t, err)
	got, err := a.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, value.Text("type=email count=3"), got)
}

func TestGetAbsentPath(t *testing.T) {
	ctx := testContext()

	// a single-expression template surfaces not-found
	a, err := Parse("${event.payload.missing}")
	require.NoError(t, err)
	_, err = a.Get(ctx)
	assert.True(t, xerr.IsNotFound(err))

	// out-of-range index is absent, not an engine error
	a, err = Parse("${event.payload.tags[9]}")
	require.NoError(t, err)
	_, err = a.Get(ctx)
	assert.True(t, xerr.IsNotFound(err))

	// indexing into a scalar is absent too
	a, err = Parse("${event.payload.subject[0]}")
	require.NoError(t, err)
	_, err = a.Get(ctx)
	assert.True(t, xerr.IsNotFound(err))

	// a mixed template fails outright on an absent sub-expression
	a, err = Parse("id: ${event.payload.missing}")
	require.NoError(t, err)
	_, err = a.Get(ctx)
	require.Error(t, err)
	assert.False(t, xerr.IsNotFound(err))
	var accErr xerr.AccessorError
	assert.ErrorAs(t, err, &accErr)
}

func TestConstantAccessor(t *testing.T) {
	a := Constant(value.Number(12))
	got, err := a.Get(nil)
	require.NoError(t, err)
	assert.Equal(t, value.Number(12), got)
}
