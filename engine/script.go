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
	"encoding/json"

	"github.com/dop251/goja"
	"github.com/jackc/puddle/v2"
	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/event"
)

// ScriptExecutor runs a user-supplied JavaScript `execute(action)` function
// for every action routed to it. A goja runtime is not goroutine-safe, so
// instances are drawn from a bounded pool.
type ScriptExecutor struct {
	pool *puddle.Pool[*scriptInstance]
}

type scriptInstance struct {
	vm      *goja.Runtime
	execute goja.Callable
}

// NewScriptExecutor compiles source into a pooled executor. The script must
// define a top-level function named `execute`; the pool is warmed here so a
// broken script fails at load, not at dispatch.
func NewScriptExecutor(ctx context.Context, source string) (*ScriptExecutor, error) {
	pool, err := puddle.NewPool(&puddle.Config[*scriptInstance]{
		Constructor: func(ctx context.Context) (*scriptInstance, error) {
			return newScriptInstance(source)
		},
		Destructor: func(res *scriptInstance) {
			res.vm.ClearInterrupt()
		},
		MaxSize: 10,
	})
	if err != nil {
		return nil, err
	}

	// warm up the pool - this also verifies the script actually compiles
	// and exports `execute`
	if err := pool.CreateResource(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &ScriptExecutor{pool: pool}, nil
}

func newScriptInstance(source string) (*scriptInstance, error) {
	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, errors.Wrap(err, "script did not evaluate")
	}

	execute, ok := goja.AssertFunction(vm.Get("execute"))
	if !ok {
		return nil, errors.New("script does not define an `execute` function")
	}
	return &scriptInstance{vm: vm, execute: execute}, nil
}

func (s *ScriptExecutor) Execute(ctx context.Context, action *event.Action) error {
	res, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer res.Release()

	instance := res.Value()

	// hand the action to the script as plain objects
	encoded, err := json.Marshal(action)
	if err != nil {
		return errors.Wrap(err, "marshal action for script")
	}
	var plain map[string]any
	if err := json.Unmarshal(encoded, &plain); err != nil {
		return errors.Wrap(err, "unmarshal action for script")
	}

	if _, err := instance.execute(goja.Undefined(), instance.vm.ToValue(plain)); err != nil {
		return errors.Wrapf(err, "script executor failed for action %q", action.ID)
	}
	return nil
}

func (s *ScriptExecutor) Close() {
	s.pool.Close()
}
