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
)

// handleConfig handles GET /api/config requests, returning the currently
// published configuration tree.
func (api *HTTPAPI) handleConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := api.tracer.Start(ctx, "config.request")
	defer span.End()

	api.logger.DebugContext(ctx, "handleConfig")

	cfg, err := api.engine.Config()
	if err != nil {
		api.writeErrorResponse(w, r, http.StatusServiceUnavailable, "Engine Unavailable", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		api.logger.DebugContext(ctx, "Error encoding config response", "error", err)
	}
}
