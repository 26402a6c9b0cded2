// SPDX-License-Identifier: Apache-2.0

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

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Tornado-Request-Id"

type requestIdCtxKeyType struct{}

var requestIdCtxKey = requestIdCtxKeyType{}

func GetRequestIDFromRequest(req *http.Request) string {
	id, _ := req.Context().Value(requestIdCtxKey).(string)
	return id
}

func HasRequestIDInRequest(req *http.Request) bool {
	return req.Context().Value(requestIdCtxKey) != nil
}

// RequestIDMiddleware tags every request with an id: a client-supplied
// X-Tornado-Request-Id is honored, otherwise one is generated. The id is
// echoed back in the response so callers can correlate against engine logs.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = ensureRequestIDInRequest(r)
		w.Header().Set(requestIDHeader, GetRequestIDFromRequest(r))
		next.ServeHTTP(w, r)
	})
}

func ensureRequestIDInRequest(r *http.Request) *http.Request {
	if HasRequestIDInRequest(r) {
		return r
	}
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	return r.WithContext(context.WithValue(r.Context(), requestIdCtxKey, id))
}
