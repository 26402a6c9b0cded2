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

package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/event"
)

// Executor consumes one action. Implementations plug external systems into
// the dispatch seam; the engine treats them as fire-and-forget.
type Executor interface {
	Execute(ctx context.Context, action *event.Action) error
}

// Dispatcher routes actions to executors by action id.
type Dispatcher struct {
	mu        sync.RWMutex
	executors map[string]Executor
	fallback  Executor
}

// NewDispatcher returns a dispatcher whose unrouted actions go to the
// logger executor.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		executors: make(map[string]Executor),
		fallback:  LoggerExecutor{},
	}
}

// Register binds an action id to an executor, replacing any previous
// binding.
func (d *Dispatcher) Register(actionID string, executor Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executors[actionID] = executor
}

func (d *Dispatcher) Dispatch(ctx context.Context, action *event.Action) error {
	if action == nil {
		return errors.New("cannot dispatch a nil action")
	}

	d.mu.RLock()
	executor, ok := d.executors[action.ID]
	d.mu.RUnlock()

	if !ok {
		executor = d.fallback
	}
	return executor.Execute(ctx, action)
}

// LoggerExecutor writes the action to the structured log. It doubles as the
// fallback for action ids nothing else claims.
type LoggerExecutor struct{}

func (LoggerExecutor) Execute(ctx context.Context, action *event.Action) error {
	payload, err := action.Payload.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "marshal action payload")
	}
	slog.InfoContext(ctx, "action received",
		slog.String("action", action.ID),
		slog.String("payload", string(payload)))
	return nil
}
