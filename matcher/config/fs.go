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
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/constants"
	"github.com/tornado-sh/tornado/xerr"
	"golang.org/x/exp/slices"
)

const (
	filterFileName  = "filter" + constants.NodeFileExtension
	rulesetFileName = "ruleset" + constants.NodeFileExtension
)

// LoadMatcherConfig reads a rule tree from disk. Every directory is one
// node: a directory holding a filter.json is a filter whose children are its
// subdirectories; a directory holding a ruleset.json is a ruleset whose
// rules are the remaining json files, in filename order.
func LoadMatcherConfig(ctx context.Context, root string) (MatcherConfig, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "read config directory %q", root)
	}

	var dirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
			continue
		}
		if strings.HasSuffix(entry.Name(), constants.NodeFileExtension) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	switch {
	case slices.Contains(files, filterFileName):
		return loadFilter(ctx, root, dirs)
	case slices.Contains(files, rulesetFileName):
		return loadRuleset(ctx, root, files)
	default:
		return nil, xerr.ErrConfig("directory %q holds neither %s nor %s", root, filterFileName, rulesetFileName)
	}
}

func loadFilter(ctx context.Context, dir string, childDirs []string) (MatcherConfig, error) {
	var node struct {
		Type        string    `json:"type"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Filter      *Operator `json:"filter"`
	}
	if err := readJSON(filepath.Join(dir, filterFileName), &node); err != nil {
		return nil, err
	}
	if node.Type != "filter" {
		return nil, xerr.ErrConfig("file %q declares type %q, expected \"filter\"", filepath.Join(dir, filterFileName), node.Type)
	}

	filter := &Filter{
		Name:        node.Name,
		Description: node.Description,
		Filter:      node.Filter,
		Nodes:       make([]MatcherConfig, 0, len(childDirs)),
	}
	for _, child := range childDirs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		childNode, err := LoadMatcherConfig(ctx, filepath.Join(dir, child))
		if err != nil {
			return nil, err
		}
		filter.Nodes = append(filter.Nodes, childNode)
	}
	return filter, nil
}

func loadRuleset(ctx context.Context, dir string, files []string) (MatcherConfig, error) {
	var node struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := readJSON(filepath.Join(dir, rulesetFileName), &node); err != nil {
		return nil, err
	}
	if node.Type != "ruleset" {
		return nil, xerr.ErrConfig("file %q declares type %q, expected \"ruleset\"", filepath.Join(dir, rulesetFileName), node.Type)
	}

	ruleset := &Ruleset{Name: node.Name}
	for _, file := range files {
		if file == rulesetFileName {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rule := &Rule{}
		if err := readJSON(filepath.Join(dir, file), rule); err != nil {
			return nil, err
		}
		ruleset.Rules = append(ruleset.Rules, rule)
	}
	return ruleset, nil
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %q", path)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return xerr.ErrConfig("parse %q: %v", path, err)
	}
	return nil
}
