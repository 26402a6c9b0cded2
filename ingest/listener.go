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

// Package ingest accepts raw documents from sockets and turns them into
// processed events: one JSON document per line, run through a collector,
// enriched, then handed to the engine. A document that fails collection is
// dropped and logged; the connection stays up.
package ingest

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/collector/jmespath"
	"github.com/tornado-sh/tornado/engine"
)

// maxLineBytes caps one incoming document; anything larger is a protocol
// violation and kills the connection.
const maxLineBytes = 1 << 20

// Listener reads line-delimited JSON from a TCP or unix socket.
type Listener struct {
	address   string
	subject   string
	collector *jmespath.Collector
	tenant    *TenantExtractor
	engine    *engine.Engine
}

func NewListener(address, subject string, collector *jmespath.Collector, tenant *TenantExtractor, eng *engine.Engine) *Listener {
	return &Listener{
		address:   address,
		subject:   subject,
		collector: collector,
		tenant:    tenant,
		engine:    eng,
	}
}

// Serve accepts connections until the context is cancelled. Addresses
// starting with "unix://" (or an absolute path) bind a unix domain socket.
func (l *Listener) Serve(ctx context.Context) error {
	network, address := resolveNetwork(l.address)

	ln, err := net.Listen(network, address)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %s %s", network, address)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	slog.InfoContext(ctx, "event listener up",
		slog.String("network", network),
		slog.String("address", address),
		slog.String("subject", l.subject))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		go l.handle(ctx, conn)
	}
}

func resolveNetwork(address string) (network, addr string) {
	if after, ok := strings.CutPrefix(address, "unix://"); ok {
		return "unix", after
	}
	if strings.HasPrefix(address, "/") {
		return "unix", address
	}
	return "tcp", address
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	slog.DebugContext(ctx, "new client connected",
		slog.String("remote", conn.RemoteAddr().String()),
		slog.String("address", l.address))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		l.ingest(ctx, line)
	}

	if err := scanner.Err(); err != nil {
		slog.DebugContext(ctx, "connection read failed", slog.Any("error", err))
	}
}

// ingest runs one document through collector, enrichment and engine.
func (l *Listener) ingest(ctx context.Context, line []byte) {
	ev, err := l.collector.ToEvent(line)
	if err != nil {
		slog.WarnContext(ctx, "event dropped by collector", slog.Any("error", err))
		return
	}

	if l.tenant != nil {
		ev, err = l.tenant.Process(ctx, l.subject, ev)
		if err != nil {
			slog.WarnContext(ctx, "event dropped by enrichment", slog.Any("error", err))
			return
		}
	}

	if _, err := l.engine.Process(ctx, ev, engine.ProcessTypeFull); err != nil {
		slog.WarnContext(ctx, "event dropped by engine", slog.Any("error", err))
	}
}
