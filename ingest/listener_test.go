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

package ingest

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/collector/jmespath"
	"github.com/tornado-sh/tornado/engine"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
)

type recordingExecutor struct {
	mu      sync.Mutex
	actions []*event.Action
}

func (r *recordingExecutor) Execute(_ context.Context, action *event.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return nil
}

func (r *recordingExecutor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

func TestResolveNetwork(t *testing.T) {
	network, addr := resolveNetwork("127.0.0.1:4747")
	assert.Equal(t, "tcp", network)
	assert.Equal(t, "127.0.0.1:4747", addr)

	network, addr = resolveNetwork("/var/run/tornado.sock")
	assert.Equal(t, "unix", network)
	assert.Equal(t, "/var/run/tornado.sock", addr)

	network, addr = resolveNetwork("unix:///tmp/t.sock")
	assert.Equal(t, "unix", network)
	assert.Equal(t, "/tmp/t.sock", addr)
}

func TestListenerIngestsLineDelimitedJSON(t *testing.T) {
	vp := func(v value.Value) *value.Value { return &v }

	rec := &recordingExecutor{}
	dispatcher := engine.NewDispatcher()
	dispatcher.Register("log", rec)

	eng := engine.New(dispatcher)
	require.NoError(t, eng.Load(t.Context(), &config.Ruleset{
		Name: "root",
		Rules: []*config.Rule{{
			Name:   "r1",
			Active: true,
			Constraint: config.Constraint{Where: &config.Operator{
				Type:   "equal",
				First:  vp(value.Text("${event.type}")),
				Second: vp(value.Text("push")),
			}},
			Actions: []*config.ActionTemplate{{
				ID:      "log",
				Payload: value.NewMap().Set("user", value.Text("${event.payload.user}")),
			}},
		}},
	}))

	collector, err := jmespath.New(jmespath.Config{
		EventType: "${kind}",
		Payload:   value.NewMap().Set("user", value.Text("${actor.login}")),
	})
	require.NoError(t, err)

	tenant, err := NewTenantExtractor(`(.*)\.events`)
	require.NoError(t, err)

	l := NewListener("ignored", "acme.events", collector, tenant, eng)

	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.handle(t.Context(), server)
	}()

	_, err = client.Write([]byte(`{"kind":"push","actor":{"login":"ada"}}` + "\n"))
	require.NoError(t, err)
	// a document the collector rejects is dropped, the connection survives
	_, err = client.Write([]byte(`not json` + "\n"))
	require.NoError(t, err)
	_, err = client.Write([]byte(`{"kind":"push","actor":{"login":"bob"}}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, client.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not finish")
	}

	assert.Equal(t, 2, rec.count())
}
