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
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tornado-sh/tornado/engine"
	"github.com/tornado-sh/tornado/event"
)

// SendEventRequest is the wire form of one event submission.
type SendEventRequest struct {
	Event       *event.Event       `json:"event"`
	ProcessType engine.ProcessType `json:"process_type"`
}

// handleSendEvent handles POST /api/send_event requests
func (api *HTTPAPI) handleSendEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := api.tracer.Start(ctx, "send_event.request")
	defer span.End()

	start := time.Now()

	var req SendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.RecordError(err)
		api.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid JSON", "The request body could not be parsed as valid JSON")
		return
	}

	if req.Event == nil {
		api.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid Request", "The request carries no event")
		return
	}
	if err := req.Event.Normalize(); err != nil {
		api.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid Event", err.Error())
		return
	}

	processType := req.ProcessType
	if processType == "" {
		processType = engine.ProcessTypeFull
	}
	if processType != engine.ProcessTypeFull && processType != engine.ProcessTypeSkipActions {
		api.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid Request", "process_type must be Full or SkipActions")
		return
	}

	api.logger.InfoContext(ctx, "handleSendEvent",
		"event_type", req.Event.Type,
		"trace_id", req.Event.TraceID,
		"process_type", string(processType))

	processed, err := api.engine.Process(ctx, req.Event, processType)
	if err != nil {
		span.RecordError(err)
		api.writeErrorResponse(w, r, http.StatusServiceUnavailable, "Engine Unavailable", err.Error())
		return
	}

	if api.metrics != nil {
		execDuration := float64(time.Since(start).Nanoseconds()) / 1e6
		attrs := metric.WithAttributes(
			attribute.String("tornado.event.type", req.Event.Type),
			attribute.String("tornado.process.type", string(processType)),
		)
		api.metrics.EventsProcessed.Add(ctx, 1, attrs)
		api.metrics.ProcessDuration.Record(ctx, execDuration, attrs)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(processed); err != nil {
		api.logger.DebugContext(ctx, "Error encoding processed event response", "error", err)
	}
}
