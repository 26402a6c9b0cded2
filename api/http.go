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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tornado-sh/tornado/api/middleware"
	"github.com/tornado-sh/tornado/engine"
	"github.com/tornado-sh/tornado/otel"
)

type ListenerServerPair struct {
	Listener net.Listener
	Server   *http.Server
}

func NewListenerServerPair(listener net.Listener, server *http.Server) *ListenerServerPair {
	return &ListenerServerPair{Listener: listener, Server: server}
}

func (p *ListenerServerPair) Close() error {
	err := p.Listener.Close()
	if err != nil {
		return err
	}
	err = p.Server.Close()
	if err != nil {
		return err
	}
	return nil
}

// HTTPAPI provides the HTTP surface of the engine: configuration read,
// send-event, and health.
type HTTPAPI struct {
	engine    *engine.Engine
	listeners []*ListenerServerPair

	otelCfg *otel.OTelConfig
	tracer  trace.Tracer
	meter   metric.Meter
	metrics *apiMetrics
	logger  *slog.Logger
}

type apiMetrics struct {
	EventsProcessed metric.Int64Counter
	ProcessDuration metric.Float64Histogram
}

// NewHTTPAPI creates a new HTTP API instance
func NewHTTPAPI(eng *engine.Engine, otelCfg *otel.OTelConfig) (*HTTPAPI, error) {
	api := &HTTPAPI{
		engine:  eng,
		otelCfg: otelCfg,
		tracer:  otelapi.Tracer("tornado/api"),
		meter:   otelapi.Meter("tornado/api"),
		logger:  slog.Default(),
	}

	if otelCfg != nil && otelCfg.Enabled {
		events, err := api.meter.Int64Counter("tornado.events.processed",
			metric.WithDescription("Events processed through the send_event endpoint"))
		if err != nil {
			return nil, err
		}
		duration, err := api.meter.Float64Histogram("tornado.events.duration",
			metric.WithDescription("send_event processing duration"),
			metric.WithUnit("ms"))
		if err != nil {
			return nil, err
		}
		api.metrics = &apiMetrics{EventsProcessed: events, ProcessDuration: duration}
	}

	return api, nil
}

func (api *HTTPAPI) Setup(ctx context.Context, port int, listen []string) error {
	mux := http.NewServeMux()

	mux.Handle("POST /api/send_event", http.HandlerFunc(api.handleSendEvent))
	mux.Handle("GET /api/config", http.HandlerFunc(api.handleConfig))

	// Health check endpoint
	mux.Handle("GET /health", http.HandlerFunc(api.handleHealth))

	var handler http.Handler = mux
	handler = middleware.RequestIDMiddleware(handler)
	if api.otelCfg != nil {
		handler = middleware.OTelMiddleware(api.otelCfg, api.tracer, api.meter, handler)
	}

	bindings, err := resolveBindings(port, listen)
	if err != nil {
		return err
	}

	// Start listeners on all addresses
	api.listeners = make([]*ListenerServerPair, 0, len(bindings))
	for _, binding := range bindings {
		ln, err := net.Listen("tcp", binding)
		if err != nil {
			// Close any already opened listeners
			for _, l := range api.listeners {
				l.Close()
			}
			api.listeners = nil
			return fmt.Errorf("failed to listen on %s: %w", binding, err)
		}
		api.listeners = append(api.listeners, NewListenerServerPair(ln, &http.Server{
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BaseContext: func(l net.Listener) context.Context {
				return ctx
			},
		}))
		slog.DebugContext(ctx, "Listening on server", "binding", binding)
	}
	return nil
}

// StartServer starts the HTTP server on the specified addresses
func (api *HTTPAPI) StartServer(ctx context.Context) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(api.listeners))

	for _, ln := range api.listeners {
		server := ln.Server
		wg.Go(func() {
			slog.DebugContext(ctx,
				"Send event endpoint available",
				"method", "POST",
				"address", ln.Listener.Addr().String(),
				"url", fmt.Sprintf("http://%s/api/send_event", ln.Listener.Addr().String()))

			slog.DebugContext(ctx,
				"Health check endpoint available",
				slog.String("method", "GET"),
				slog.String("address", ln.Listener.Addr().String()),
				slog.String("url", fmt.Sprintf("http://%s/health", ln.Listener.Addr().String())))
			if err := server.Serve(ln.Listener); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		})
	}

	defer func() {
		wg.Wait()
		close(errChan)
	}()
}

// StopServer closes every listener and its server at once; in-flight
// requests are not drained.
func (api *HTTPAPI) StopServer(ctx context.Context) error {
	if api.listeners != nil {
		for _, ln := range api.listeners {
			ln.Close()
		}
		api.listeners = nil
	}

	return nil
}

// handleHealth handles GET /health requests
func (api *HTTPAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.DebugContext(r.Context(), "Error encoding health response", "error", err)
	}
}

// writeErrorResponse writes a Problem Details error response in JSON format
func (api *HTTPAPI) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(statusCode)

	response := ProblemDetails{
		Type:     fmt.Sprintf("https://tornado.sh/problems/%d", statusCode),
		Title:    title,
		Status:   statusCode,
		Detail:   detail,
		Instance: r.URL.Path,
		Ext: map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := json.NewEncoder(w).Encode(&response); err != nil {
		slog.DebugContext(r.Context(), "Error encoding problem details response", "error", err)
	}
}
