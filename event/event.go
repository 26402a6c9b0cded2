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
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/value"
)

// Event is the canonical form every source is normalized into before it
// reaches the matcher.
type Event struct {
	TraceID   string     `json:"trace_id"`
	Type      string     `json:"type"`
	CreatedMs uint64     `json:"created_ms"`
	Payload   *value.Map `json:"payload"`
	Metadata  *value.Map `json:"metadata"`
}

// New builds an Event of the given type, assigning a fresh trace id and the
// current wall clock.
func New(eventType string) *Event {
	return &Event{
		TraceID:   uuid.NewString(),
		Type:      eventType,
		CreatedMs: uint64(time.Now().UnixMilli()),
		Payload:   value.NewMap(),
		Metadata:  value.NewMap(),
	}
}

// Normalize fills the ingest-assigned fields that a source may omit:
// trace id, creation time, and the payload/metadata maps. The event type
// must be supplied by the source.
func (e *Event) Normalize() error {
	if e.Type == "" {
		return errors.New("event type is empty")
	}
	if e.TraceID == "" {
		e.TraceID = uuid.NewString()
	}
	if e.CreatedMs == 0 {
		e.CreatedMs = uint64(time.Now().UnixMilli())
	}
	if e.Payload == nil {
		e.Payload = value.NewMap()
	}
	if e.Metadata == nil {
		e.Metadata = value.NewMap()
	}
	return nil
}

// AddToMetadata sets a metadata entry. Existing keys are not overwritten;
// enrichment must not clobber source-provided metadata.
func (e *Event) AddToMetadata(key string, v value.Value) error {
	if e.Metadata == nil {
		e.Metadata = value.NewMap()
	}
	if e.Metadata.Has(key) {
		return errors.Errorf("metadata key %q already present", key)
	}
	e.Metadata.Set(key, v)
	return nil
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	return &Event{
		TraceID:   e.TraceID,
		Type:      e.Type,
		CreatedMs: e.CreatedMs,
		Payload:   e.Payload.Clone(),
		Metadata:  e.Metadata.Clone(),
	}
}
