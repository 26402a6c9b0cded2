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

package jmespath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

func TestToEventMapsExpressions(t *testing.T) {
	c, err := New(Config{
		EventType: "${kind}",
		Payload:   value.NewMap().Set("user", value.Text("${actor.login}")),
	})
	require.NoError(t, err)

	ev, err := c.ToEvent([]byte(`{"kind":"push","actor":{"login":"ada"}}`))
	require.NoError(t, err)

	assert.Equal(t, "push", ev.Type)
	assert.NotEmpty(t, ev.TraceID)
	assert.NotZero(t, ev.CreatedMs)
	user, _ := ev.Payload.Get("user")
	assert.Equal(t, value.Text("ada"), user)
}

func TestToEventLiteralAndNestedTemplates(t *testing.T) {
	c, err := New(Config{
		EventType: "webhook",
		Payload: value.NewMap().
			Set("static", value.Text("fixed")).
			Set("count", value.Number(2)).
			Set("nested", value.MapValue(value.NewMap().Set("id", value.Text("${meta.id}")))).
			Set("list", value.Array(value.Text("${meta.id}"), value.Text("literal"))),
	})
	require.NoError(t, err)

	ev, err := c.ToEvent([]byte(`{"meta":{"id":"abc-1"}}`))
	require.NoError(t, err)

	assert.Equal(t, "webhook", ev.Type)

	static, _ := ev.Payload.Get("static")
	assert.Equal(t, value.Text("fixed"), static)
	count, _ := ev.Payload.Get("count")
	assert.Equal(t, value.Number(2), count)

	nested, _ := ev.Payload.Get("nested")
	nm, ok := nested.GetMap()
	require.True(t, ok)
	id, _ := nm.Get("id")
	assert.Equal(t, value.Text("abc-1"), id)

	list, _ := ev.Payload.Get("list")
	assert.True(t, value.Array(value.Text("abc-1"), value.Text("literal")).Equal(list))
}

func TestToEventObjectAndArrayResults(t *testing.T) {
	c, err := New(Config{
		EventType: "${kind}",
		Payload:   value.NewMap().Set("all", value.Text("${actor}")).Set("tags", value.Text("${tags}")),
	})
	require.NoError(t, err)

	ev, err := c.ToEvent([]byte(`{"kind":"push","actor":{"login":"ada","id":7},"tags":["a","b"]}`))
	require.NoError(t, err)

	all, _ := ev.Payload.Get("all")
	m, ok := all.GetMap()
	require.True(t, ok)
	login, _ := m.Get("login")
	assert.Equal(t, value.Text("ada"), login)

	tags, _ := ev.Payload.Get("tags")
	assert.True(t, value.Array(value.Text("a"), value.Text("b")).Equal(tags))
}

func TestToEventErrors(t *testing.T) {
	c, err := New(Config{
		EventType: "${kind}",
		Payload:   value.NewMap().Set("user", value.Text("${actor.login}")),
	})
	require.NoError(t, err)

	// unparseable input
	_, err = c.ToEvent([]byte(`{not json`))
	assertCollectorError(t, err)

	// null expression result is a strict error
	_, err = c.ToEvent([]byte(`{"kind":"push","actor":{}}`))
	assertCollectorError(t, err)

	// non-text event type
	cNum, err := New(Config{EventType: "${num}", Payload: value.NewMap()})
	require.NoError(t, err)
	_, err = cNum.ToEvent([]byte(`{"num":4}`))
	assertCollectorError(t, err)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{EventType: ""})
	assertCollectorError(t, err)

	_, err = New(Config{
		EventType: "ok",
		Payload:   value.NewMap().Set("bad", value.Text("${not a valid expr!}")),
	})
	assertCollectorError(t, err)
}

func assertCollectorError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var ce xerr.CollectorError
	assert.ErrorAs(t, err, &ce)
}
