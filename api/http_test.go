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

package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/engine"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
)

func testAPI(t *testing.T) *HTTPAPI {
	t.Helper()

	vp := func(v value.Value) *value.Value { return &v }

	eng := engine.New(engine.NewDispatcher())
	require.NoError(t, eng.Load(t.Context(), &config.Ruleset{
		Name: "root",
		Rules: []*config.Rule{{
			Name:   "r1",
			Active: true,
			Constraint: config.Constraint{Where: &config.Operator{
				Type:   "equal",
				First:  vp(value.Text("${event.type}")),
				Second: vp(value.Text("alert")),
			}},
			Actions: []*config.ActionTemplate{{
				ID:      "log",
				Payload: value.NewMap().Set("msg", value.Text("${event.payload.text}")),
			}},
		}},
	}))

	api, err := NewHTTPAPI(eng, nil)
	require.NoError(t, err)
	return api
}

func TestHandleSendEvent(t *testing.T) {
	api := testAPI(t)

	body := `{
		"event": {"type": "alert", "payload": {"text": "hi"}},
		"process_type": "SkipActions"
	}`
	req := httptest.NewRequest("POST", "/api/send_event", strings.NewReader(body))
	rec := httptest.NewRecorder()

	api.handleSendEvent(rec, req)

	require.Equal(t, 200, rec.Code)

	var out struct {
		Event struct {
			Type    string `json:"type"`
			TraceID string `json:"trace_id"`
		} `json:"event"`
		Result struct {
			Type  string `json:"type"`
			Name  string `json:"name"`
			Rules struct {
				Rules []struct {
					RuleName string `json:"rule_name"`
					Status   string `json:"status"`
					Actions  []struct {
						ID      string         `json:"id"`
						Payload map[string]any `json:"payload"`
					} `json:"actions"`
				} `json:"rules"`
			} `json:"rules"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	assert.Equal(t, "alert", out.Event.Type)
	assert.NotEmpty(t, out.Event.TraceID)
	assert.Equal(t, "ruleset", out.Result.Type)
	assert.Equal(t, "root", out.Result.Name)
	require.Len(t, out.Result.Rules.Rules, 1)
	assert.Equal(t, "r1", out.Result.Rules.Rules[0].RuleName)
	assert.Equal(t, "Matched", out.Result.Rules.Rules[0].Status)
	require.Len(t, out.Result.Rules.Rules[0].Actions, 1)
	assert.Equal(t, "hi", out.Result.Rules.Rules[0].Actions[0].Payload["msg"])
}

func TestHandleSendEventRejectsBadRequests(t *testing.T) {
	api := testAPI(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "not json", body: `{broken`, code: 400},
		{name: "no event", body: `{"process_type": "Full"}`, code: 400},
		{name: "empty event type", body: `{"event": {"type": ""}}`, code: 400},
		{name: "bad process type", body: `{"event": {"type": "x"}, "process_type": "Sometimes"}`, code: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/send_event", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			api.handleSendEvent(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandleConfig(t *testing.T) {
	api := testAPI(t)

	req := httptest.NewRequest("GET", "/api/config", nil)
	rec := httptest.NewRecorder()
	api.handleConfig(rec, req)

	require.Equal(t, 200, rec.Code)

	var out struct {
		Type  string `json:"type"`
		Name  string `json:"name"`
		Rules []struct {
			Name string `json:"name"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ruleset", out.Type)
	assert.Equal(t, "root", out.Name)
	require.Len(t, out.Rules, 1)
	assert.Equal(t, "r1", out.Rules[0].Name)
}

func TestHandleHealth(t *testing.T) {
	api := testAPI(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	api.handleHealth(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestResolveBindings(t *testing.T) {
	addrs, err := resolveBindings(4748, []string{"local"})
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:4748"}, addrs)

	addrs, err = resolveBindings(4748, []string{"10.0.0.1", "10.0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1:4748", "10.0.0.2:4748"}, addrs)

	_, err = resolveBindings(4748, []string{"local", "10.0.0.1"})
	assert.Error(t, err)
}
