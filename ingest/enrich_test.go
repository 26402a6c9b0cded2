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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/value"
)

func TestTenantExtractorExtracts(t *testing.T) {
	x, err := NewTenantExtractor(`(.*)\.tornado\.events`)
	require.NoError(t, err)

	ev := event.New("alert")
	out, err := x.Process(t.Context(), "MY.TENANT_ID.tornado.events", ev)
	require.NoError(t, err)

	tenant, ok := out.Metadata.Get("tenant_id")
	require.True(t, ok)
	assert.Equal(t, value.Text("MY.TENANT_ID"), tenant)
}

func TestTenantExtractorIgnoresNonMatchingSubject(t *testing.T) {
	x, err := NewTenantExtractor(`(.*)\.tornado\.events`)
	require.NoError(t, err)

	ev := event.New("alert")
	out, err := x.Process(t.Context(), "hello.world", ev)
	require.NoError(t, err)
	assert.False(t, out.Metadata.Has("tenant_id"))
}

func TestTenantExtractorDoesNotClobberMetadata(t *testing.T) {
	x, err := NewTenantExtractor(`(.*)\.tornado\.events`)
	require.NoError(t, err)

	ev := event.New("alert")
	require.NoError(t, ev.AddToMetadata("tenant_id", value.Text("existing")))

	_, err = x.Process(t.Context(), "other.tornado.events", ev)
	assert.Error(t, err)
}

func TestNewTenantExtractorValidatesPattern(t *testing.T) {
	_, err := NewTenantExtractor("([")
	assert.Error(t, err)

	// a pattern without a capture group can never produce a tenant
	_, err = NewTenantExtractor("no-groups")
	assert.Error(t, err)
}
