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

// Package engine ties the compiled matcher to the outside world: it owns
// the currently published configuration, swaps it atomically on reload, and
// hands matched actions to executors.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/binaek/perch"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher"
	"github.com/tornado-sh/tornado/matcher/config"
)

// ProcessType selects what happens with the actions of matched rules.
type ProcessType string

const (
	// ProcessTypeFull dispatches actions to executors
	ProcessTypeFull ProcessType = "Full"
	// ProcessTypeSkipActions only returns the ProcessedEvent
	ProcessTypeSkipActions ProcessType = "SkipActions"
)

const compileCacheTTL = 24 * time.Hour

type NewEngineOption func(*Engine)

// WithCompileCacheSize sets how many compiled matchers the reload cache
// keeps. Rolling back to a recently used configuration then skips the
// compile entirely.
func WithCompileCacheSize(entries int) NewEngineOption {
	return func(e *Engine) {
		e.compiled = perch.New[*matcher.Matcher](entries)
	}
}

// Engine processes events against the currently published matcher.
// In-flight evaluations keep the matcher they started with; Load only
// affects later calls.
type Engine struct {
	current    atomic.Pointer[matcher.Matcher]
	compiled   *perch.Perch[*matcher.Matcher]
	dispatcher *Dispatcher
}

func New(dispatcher *Dispatcher, opts ...NewEngineOption) *Engine {
	e := &Engine{
		dispatcher: dispatcher,
		compiled:   perch.New[*matcher.Matcher](16),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load compiles cfg and publishes it. The configuration is fingerprinted;
// an unchanged or recently seen tree reuses its compiled matcher from the
// cache instead of compiling again.
func (e *Engine) Load(ctx context.Context, cfg config.MatcherConfig) error {
	// fingerprint the wire form: the node tree itself hides its state behind
	// unexported ordered maps
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode configuration")
	}
	fingerprint, err := hashstructure.Hash(string(encoded), hashstructure.FormatV2, nil)
	if err != nil {
		return errors.Wrap(err, "fingerprint configuration")
	}

	m, _, err := e.compiled.Get(ctx, strconv.FormatUint(fingerprint, 16), compileCacheTTL,
		func(ctx context.Context, key string) (*matcher.Matcher, error) {
			return matcher.New(cfg)
		})
	if err != nil {
		return err
	}

	e.current.Store(m)
	slog.InfoContext(ctx, "configuration published",
		slog.String("fingerprint", strconv.FormatUint(fingerprint, 16)),
		slog.String("root", cfg.NodeName()))
	return nil
}

// Config returns the currently published configuration tree.
func (e *Engine) Config() (config.MatcherConfig, error) {
	m := e.current.Load()
	if m == nil {
		return nil, errors.New("no configuration loaded")
	}
	return m.Config(), nil
}

// Process evaluates one event. With ProcessTypeFull the actions of matched
// rules are handed to the dispatcher; failures there are logged and never
// feed back into the result.
func (e *Engine) Process(ctx context.Context, ev *event.Event, processType ProcessType) (*event.ProcessedEvent, error) {
	m := e.current.Load()
	if m == nil {
		return nil, errors.New("no configuration loaded")
	}

	processed := m.Process(ctx, ev)

	if processType == ProcessTypeFull && e.dispatcher != nil {
		e.dispatchTree(ctx, processed.Result)
	}
	return processed, nil
}

func (e *Engine) dispatchTree(ctx context.Context, node event.ProcessedNode) {
	switch t := node.(type) {
	case *event.ProcessedFilter:
		for _, child := range t.Nodes {
			e.dispatchTree(ctx, child)
		}
	case *event.ProcessedRuleset:
		for _, rule := range t.Rules.Rules {
			if rule.Status != event.RuleStatusMatched {
				continue
			}
			for _, action := range rule.Actions {
				if err := e.dispatcher.Dispatch(ctx, action); err != nil {
					slog.WarnContext(ctx, "action dispatch failed",
						slog.String("action", action.ID),
						slog.String("rule", rule.Name),
						slog.Any("error", err))
				}
			}
		}
	}
}
