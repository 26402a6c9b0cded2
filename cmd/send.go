// SPDX-License-Identifier: Apache-2.0
//
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

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/binaek/cling"
	"github.com/tornado-sh/tornado/engine"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher/config"
)

func addSendCmd(cli *cling.CLI) {
	cli.WithCommand(
		cling.NewCommand("send", sendCmd).
			WithFlag(cling.
				NewStringCmdInput("config-location").
				WithDefault(".").
				WithDescription("Directory holding the engine file").
				AsFlag(),
			).
			WithFlag(cling.
				NewStringCmdInput("event-file").
				WithDefault("").
				WithDescription("File to load the event from").
				AsFlag(),
			).
			WithFlag(cling.
				NewStringCmdInput("event").
				WithDefault("").
				WithDescription("Event to process, as inline JSON").
				AsFlag(),
			).
			WithFlag(cling.
				NewBoolCmdInput("skip-actions").
				WithDefault(true).
				WithDescription("Only report the match result, do not dispatch actions").
				AsFlag(),
			),
	)
}

type sendCmdArgs struct {
	ConfigLocation string `cling-name:"config-location"`
	EventFile      string `cling-name:"event-file"`
	Event          string `cling-name:"event"`
	SkipActions    bool   `cling-name:"skip-actions"`
}

// sendCmd processes a single event against the local configuration and
// prints the resulting ProcessedEvent as JSON.
func sendCmd(ctx context.Context, args []string) error {
	input := sendCmdArgs{}
	if err := cling.Hydrate(ctx, args, &input); err != nil {
		return err
	}

	raw := []byte(input.Event)
	if input.EventFile != "" {
		content, err := os.ReadFile(input.EventFile)
		if err != nil {
			return err
		}
		raw = content
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("no event given: use --event or --event-file")
	}

	ev := &event.Event{}
	if err := json.Unmarshal(raw, ev); err != nil {
		return err
	}
	if err := ev.Normalize(); err != nil {
		return err
	}

	engineFile, err := config.LoadEngineFile(ctx, input.ConfigLocation)
	if err != nil {
		return err
	}

	cfg, err := config.LoadMatcherConfig(ctx, engineFile.RulesRoot())
	if err != nil {
		return err
	}

	eng := engine.New(engine.NewDispatcher())
	if err := eng.Load(ctx, cfg); err != nil {
		return err
	}

	processType := engine.ProcessTypeFull
	if input.SkipActions {
		processType = engine.ProcessTypeSkipActions
	}

	processed, err := eng.Process(ctx, ev, processType)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(processed, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
