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
	"context"
	"fmt"

	"github.com/binaek/cling"
	"github.com/tornado-sh/tornado/matcher"
	"github.com/tornado-sh/tornado/matcher/config"
)

func addCheckCmd(cli *cling.CLI) {
	cli.WithCommand(
		cling.NewCommand("check", checkCmd).
			WithFlag(cling.
				NewStringCmdInput("config-location").
				WithDefault(".").
				WithDescription("Directory holding the engine file").
				AsFlag(),
			),
	)
}

type checkCmdArgs struct {
	ConfigLocation string `cling-name:"config-location"`
}

// checkCmd loads and compiles the whole configuration, reporting the first
// error a running engine would hit.
func checkCmd(ctx context.Context, args []string) error {
	input := checkCmdArgs{}
	if err := cling.Hydrate(ctx, args, &input); err != nil {
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

	if _, err := matcher.New(cfg); err != nil {
		return err
	}

	fmt.Printf("configuration %q is valid\n", cfg.NodeName())
	return nil
}
