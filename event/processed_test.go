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

package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/value"
)

func TestNormalizeFillsIngestFields(t *testing.T) {
	ev := &Event{Type: "alert"}
	require.NoError(t, ev.Normalize())

	assert.NotEmpty(t, ev.TraceID)
	assert.NotZero(t, ev.CreatedMs)
	assert.NotNil(t, ev.Payload)
	assert.NotNil(t, ev.Metadata)

	// source-provided fields survive
	ev = &Event{Type: "alert", TraceID: "fixed", CreatedMs: 42}
	require.NoError(t, ev.Normalize())
	assert.Equal(t, "fixed", ev.TraceID)
	assert.Equal(t, uint64(42), ev.CreatedMs)

	assert.Error(t, (&Event{}).Normalize())
}

func TestEventJSONRoundTrip(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "alert",
		"created_ms": 1554130814854,
		"payload": {"b": 1, "a": {"deep": true}}
	}`), &ev))

	assert.Equal(t, "alert", ev.Type)
	assert.Equal(t, uint64(1554130814854), ev.CreatedMs)
	// ingest preserves payload key order
	assert.Equal(t, []string{"b", "a"}, ev.Payload.Keys())
}

func TestProcessedNodeWireForm(t *testing.T) {
	node := &ProcessedFilter{
		Name:   "root",
		Status: FilterStatusMatched,
		Nodes: []ProcessedNode{
			&ProcessedRuleset{
				Name: "alerts",
				Rules: ProcessedRules{
					Rules: []*ProcessedRule{{
						Name:   "r1",
						Status: RuleStatusMatched,
						Actions: []*Action{{
							ID:      "log",
							Payload: value.NewMap().Set("msg", value.Text("hi")),
						}},
						Meta: RuleMeta{ActionsCount: 1},
					}},
					ExtractedVars: value.NewMap(),
				},
			},
		},
	}

	encoded, err := json.Marshal(ProcessedEvent{Event: New("alert"), Result: node})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(encoded, &out))

	result := out["result"].(map[string]any)
	assert.Equal(t, "filter", result["type"])
	assert.Equal(t, "Matched", result["filter_status"])

	child := result["nodes"].([]any)[0].(map[string]any)
	assert.Equal(t, "ruleset", child["type"])

	rules := child["rules"].(map[string]any)["rules"].([]any)
	rule := rules[0].(map[string]any)
	assert.Equal(t, "r1", rule["rule_name"])
	assert.Equal(t, "Matched", rule["status"])
	assert.Equal(t, float64(1), rule["meta"].(map[string]any)["actions_count"])
}

func TestNewProcessedRuleStartsNotProcessed(t *testing.T) {
	r := NewProcessedRule("r1")
	assert.Equal(t, RuleStatusNotProcessed, r.Status)
	assert.NotNil(t, r.Actions)
	assert.Empty(t, r.Actions)
}
