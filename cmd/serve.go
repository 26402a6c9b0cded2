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
	"log/slog"
	"os"
	"path/filepath"

	"github.com/binaek/cling"
	"github.com/tornado-sh/tornado/api"
	"github.com/tornado-sh/tornado/collector/jmespath"
	"github.com/tornado-sh/tornado/constants"
	"github.com/tornado-sh/tornado/engine"
	"github.com/tornado-sh/tornado/ingest"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/otel"
)

func addServeCmd(cli *cling.CLI) {
	cli.WithCommand(
		cling.NewCommand("serve", serveCmd).
			WithFlag(cling.
				NewIntCmdInput("port").
				WithDefault(4748).
				WithDescription("Port to listen on").
				AsFlag(),
			).
			WithFlag(cling.
				NewStringCmdInput("config-location").
				WithDefault("./").
				WithDescription("Directory holding the engine file").
				AsFlag(),
			).
			WithFlag(cling.
				NewCmdSliceInput[string]("listen").
				WithDefault([]string{"local"}).
				WithDescription("Address(es) to listen on").
				AsFlag(),
			).
			WithFlag(
				cling.NewBoolCmdInput("otel-enabled").
					WithDefault(false).
					WithDescription("Enable OpenTelemetry tracing").
					AsFlag().
					FromEnv([]string{constants.EnvOtelEnabled}),
			).
			WithFlag(
				cling.NewStringCmdInput("otel-endpoint").
					WithDefault("http://localhost:4317").
					WithDescription("OpenTelemetry endpoint to send traces to").
					AsFlag().
					FromEnv([]string{constants.EnvOtelEndpoint}),
			).
			WithFlag(
				cling.NewStringCmdInput("otel-protocol").
					WithDefault("grpc").
					WithValidator(cling.NewEnumValidator("http", "grpc")).
					WithDescription("OpenTelemetry protocol. Allowed values: http, grpc.").
					AsFlag().
					FromEnv([]string{constants.EnvOtelProtocol}),
			),
	)
}

type serveCmdArgs struct {
	Port           int      `cling-name:"port"`
	ConfigLocation string   `cling-name:"config-location"`
	Listen         []string `cling-name:"listen"`
	OtelEnabled    bool     `cling-name:"otel-enabled"`
	OtelEndpoint   string   `cling-name:"otel-endpoint"`
	OtelProtocol   string   `cling-name:"otel-protocol"`
}

func serveCmd(ctx context.Context, args []string) error {
	input := serveCmdArgs{}
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

	// Initialize OpenTelemetry if enabled
	var otelCleanup otel.ShutdownFn
	otelConfig := otel.OTelConfig{
		Enabled:        input.OtelEnabled,
		Endpoint:       input.OtelEndpoint,
		Protocol:       input.OtelProtocol,
		ServiceName:    constants.APPNAME,
		ServiceVersion: constants.APPVERSION,
		ConfigRoot:     cfg.NodeName(),
	}

	if otelConfig.Enabled {
		otelCleanup, err = otel.InitProvider(ctx, otelConfig)
		if err != nil {
			return err
		}

		defer func() {
			if otelCleanup != nil {
				_ = otelCleanup(context.WithoutCancel(ctx))
			}
		}()
	}

	dispatcher, err := buildDispatcher(ctx, engineFile)
	if err != nil {
		return err
	}

	eng := engine.New(dispatcher)
	if err := eng.Load(ctx, cfg); err != nil {
		return err
	}

	for _, tcp := range engineFile.TCP {
		listener, err := buildListener(engineFile, tcp, eng)
		if err != nil {
			return err
		}
		go func() {
			if err := listener.Serve(ctx); err != nil {
				slog.ErrorContext(ctx, "event listener failed", slog.Any("error", err))
			}
		}()
	}

	server, err := api.NewHTTPAPI(eng, &otelConfig)
	if err != nil {
		return err
	}
	if err := server.Setup(ctx, input.Port, input.Listen); err != nil {
		return err
	}

	go func() {
		server.StartServer(ctx)
	}()

	<-ctx.Done()

	return server.StopServer(ctx)
}

// buildDispatcher wires the executors declared in the engine file: every
// configured script file becomes a pooled script executor bound to its
// action id. Everything else falls through to the logger executor.
func buildDispatcher(ctx context.Context, engineFile *config.EngineFile) (*engine.Dispatcher, error) {
	dispatcher := engine.NewDispatcher()

	for actionID, scriptPath := range engineFile.Executors.Scripts {
		if !filepath.IsAbs(scriptPath) {
			scriptPath = filepath.Join(engineFile.Location, scriptPath)
		}
		source, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, err
		}
		executor, err := engine.NewScriptExecutor(ctx, string(source))
		if err != nil {
			return nil, err
		}
		dispatcher.Register(actionID, executor)
	}

	return dispatcher, nil
}

func buildListener(engineFile *config.EngineFile, tcp config.TCPSection, eng *engine.Engine) (*ingest.Listener, error) {
	collectorPath := tcp.Collector
	if !filepath.IsAbs(collectorPath) {
		collectorPath = filepath.Join(engineFile.Location, collectorPath)
	}
	collectorCfg, err := jmespath.LoadConfig(collectorPath)
	if err != nil {
		return nil, err
	}
	collector, err := jmespath.New(collectorCfg)
	if err != nil {
		return nil, err
	}

	var tenant *ingest.TenantExtractor
	if tcp.TenantPattern != "" {
		tenant, err = ingest.NewTenantExtractor(tcp.TenantPattern)
		if err != nil {
			return nil, err
		}
	}

	return ingest.NewListener(tcp.Address, tcp.Subject, collector, tenant, eng), nil
}
