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

package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/constants"
)

var (
	ErrEngineFileNotFound = errors.New("engine file not found")

	EngineFileName = (constants.APPNAME + "." + constants.EngineFileExtension)

	// engine files declare a schema version; anything outside this range
	// fails the load
	supportedVersions = func() *semver.Constraints {
		c, err := semver.NewConstraint("^1.0")
		if err != nil {
			panic(err)
		}
		return c
	}()
)

// EngineFile is the tornado.toml configuration of a running engine.
type EngineFile struct {
	Version string `toml:"version"`

	Engine    EngineSection    `toml:"engine"`
	HTTP      HTTPSection      `toml:"http"`
	TCP       []TCPSection     `toml:"tcp"`
	Executors ExecutorsSection `toml:"executors"`

	// Location is the directory the engine file was loaded from
	Location string `toml:"-"`
}

type EngineSection struct {
	// RulesDir is the root of the rule tree, relative to the engine file
	RulesDir string `toml:"rules_dir"`
}

type HTTPSection struct {
	Port   int      `toml:"port"`
	Listen []string `toml:"listen"`
}

// TCPSection configures one line-delimited JSON listener. Subject tags the
// source for tenant enrichment; Collector points at a JMESPath collector
// definition.
type TCPSection struct {
	Address       string `toml:"address"`
	Subject       string `toml:"subject"`
	Collector     string `toml:"collector"`
	TenantPattern string `toml:"tenant_pattern"`
}

type ExecutorsSection struct {
	// Scripts maps an action id to the JavaScript file executed for it
	Scripts map[string]string `toml:"scripts"`
}

// NewEngineFile returns the engine file scaffolded by `tornado init`.
func NewEngineFile() *EngineFile {
	return &EngineFile{
		Version: "1.0.0",
		Engine:  EngineSection{RulesDir: "rules"},
		HTTP:    HTTPSection{Port: 4748, Listen: []string{"local"}},
	}
}

// RulesRoot resolves the configured rules directory against the engine file
// location.
func (f *EngineFile) RulesRoot() string {
	if filepath.IsAbs(f.Engine.RulesDir) {
		return f.Engine.RulesDir
	}
	return filepath.Join(f.Location, f.Engine.RulesDir)
}

// LoadEngineFile locates and parses tornado.toml, walking up from root.
func LoadEngineFile(ctx context.Context, root string) (*EngineFile, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	path, err := locateEngineFile(ctx, root)
	if err != nil {
		return nil, errors.Wrap(err, "locate engine file")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read engine file")
	}
	var f EngineFile
	if err := toml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "parse engine file failed")
	}
	f.Location = filepath.Dir(path)

	v, err := semver.NewVersion(f.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "engine file version %q is not a semver", f.Version)
	}
	if !supportedVersions.Check(v) {
		return nil, errors.Errorf("engine file version %s is outside the supported range %s", f.Version, supportedVersions)
	}

	return &f, nil
}

func locateEngineFile(ctx context.Context, root string) (string, error) {
	if root == "/" {
		return "", errors.New("cannot search from filesystem root")
	}

	if len(strings.TrimSpace(root)) == 0 {
		return "", errors.New("root is empty")
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrap(err, "failed to get absolute path to root")
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", errors.Wrap(err, "failed to locate engine file")
	}

	if info.Name() == EngineFileName {
		return root, nil
	}

	if _, err := os.Stat(filepath.Join(root, EngineFileName)); err == nil {
		return filepath.Join(root, EngineFileName), nil
	}

	// walk up the directory tree till we find it or we reach root
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		root = filepath.Dir(root)
		if root == "/" || (runtime.GOOS == "windows" && strings.HasSuffix(root, `:\` /* a drive letter */)) {
			break
		}
		if _, err := os.Stat(filepath.Join(root, EngineFileName)); err == nil {
			return filepath.Join(root, EngineFileName), nil
		}
	}

	return "", ErrEngineFileNotFound
}
