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

// Package matcher compiles a configuration tree into an immutable rule
// engine and evaluates events against it. A compiled Matcher holds no
// mutable state: one instance serves any number of concurrent evaluations.
package matcher

import (
	"context"
	"regexp"

	"github.com/tornado-sh/tornado/accessor"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Matcher is the compiled form of a MatcherConfig tree.
type Matcher struct {
	cfg  config.MatcherConfig
	root node
}

type node interface {
	nodeName() string
}

type filterNode struct {
	name     string
	operator Operator // nil means the filter always matches
	children []node
}

func (n *filterNode) nodeName() string { return n.name }

type rulesetNode struct {
	name  string
	rules []*rule
}

func (n *rulesetNode) nodeName() string { return n.name }

// New compiles and validates a configuration tree. Every template and
// pattern is compiled here; evaluation never parses anything.
func New(cfg config.MatcherConfig) (*Matcher, error) {
	if cfg == nil {
		return nil, xerr.ErrConfig("configuration tree is empty")
	}
	root, err := buildNode(cfg)
	if err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg, root: root}, nil
}

// Config returns the configuration the matcher was compiled from.
func (m *Matcher) Config() config.MatcherConfig { return m.cfg }

func buildNode(cfg config.MatcherConfig) (node, error) {
	if !identifierRe.MatchString(cfg.NodeName()) {
		return nil, xerr.ErrConfig("node name %q is not a valid identifier", cfg.NodeName())
	}

	switch c := cfg.(type) {
	case *config.Filter:
		out := &filterNode{name: c.Name}
		if c.Filter != nil {
			op, err := buildOperator(c.Filter)
			if err != nil {
				return nil, xerr.ErrConfig("filter %q: %v", c.Name, err)
			}
			out.operator = op
		}
		seen := map[string]bool{}
		for _, childCfg := range c.Nodes {
			if seen[childCfg.NodeName()] {
				return nil, xerr.ErrConfig("filter %q has two children named %q", c.Name, childCfg.NodeName())
			}
			seen[childCfg.NodeName()] = true
			child, err := buildNode(childCfg)
			if err != nil {
				return nil, err
			}
			out.children = append(out.children, child)
		}
		return out, nil

	case *config.Ruleset:
		out := &rulesetNode{name: c.Name}
		seen := map[string]bool{}
		for _, ruleCfg := range c.Rules {
			if seen[ruleCfg.Name] {
				return nil, xerr.ErrConfig("ruleset %q has two rules named %q", c.Name, ruleCfg.Name)
			}
			seen[ruleCfg.Name] = true
			r, err := buildRule(ruleCfg)
			if err != nil {
				return nil, err
			}
			out.rules = append(out.rules, r)
		}
		return out, nil

	default:
		return nil, xerr.ErrConfig("unknown configuration node %T", cfg)
	}
}

// Process evaluates one event against the tree, depth-first and
// left-to-right. It is total: every outcome, including extractor and render
// failures, is a status in the returned tree, never an error.
func (m *Matcher) Process(_ context.Context, ev *event.Event) *event.ProcessedEvent {
	return &event.ProcessedEvent{
		Event:  ev,
		Result: processNode(m.root, ev),
	}
}

func processNode(n node, ev *event.Event) event.ProcessedNode {
	switch t := n.(type) {
	case *filterNode:
		// filter operators are evaluated without extracted variables:
		// variables never cross ruleset boundaries
		matched := t.operator == nil || t.operator.Evaluate(&accessor.Context{Event: ev})

		out := &event.ProcessedFilter{
			Name:  t.name,
			Nodes: make([]event.ProcessedNode, 0, len(t.children)),
		}
		if matched {
			out.Status = event.FilterStatusMatched
			for _, child := range t.children {
				out.Nodes = append(out.Nodes, processNode(child, ev))
			}
		} else {
			out.Status = event.FilterStatusNotMatched
			for _, child := range t.children {
				out.Nodes = append(out.Nodes, skeletonNode(child))
			}
		}
		return out

	case *rulesetNode:
		return processRuleset(t, ev)

	default:
		// unreachable: buildNode admits only the two node kinds
		return nil
	}
}

func processRuleset(t *rulesetNode, ev *event.Event) event.ProcessedNode {
	vars := value.NewMap()
	actx := &accessor.Context{Event: ev, Vars: vars}

	out := &event.ProcessedRuleset{
		Name: t.name,
		Rules: event.ProcessedRules{
			Rules:         make([]*event.ProcessedRule, 0, len(t.rules)),
			ExtractedVars: vars,
		},
	}

	stopped := false
	for _, r := range t.rules {
		if stopped {
			out.Rules.Rules = append(out.Rules.Rules, event.NewProcessedRule(r.name))
			continue
		}
		processed := r.process(actx)
		out.Rules.Rules = append(out.Rules.Rules, processed)
		if processed.Status == event.RuleStatusMatched && !r.continueOnMatch {
			stopped = true
		}
	}
	return out
}

// skeletonNode emits the result shape of an unevaluated subtree: the output
// stays isomorphic to the configuration even below a filter that did not
// match.
func skeletonNode(n node) event.ProcessedNode {
	switch t := n.(type) {
	case *filterNode:
		out := &event.ProcessedFilter{
			Name:   t.name,
			Status: event.FilterStatusNotMatched,
			Nodes:  make([]event.ProcessedNode, 0, len(t.children)),
		}
		for _, child := range t.children {
			out.Nodes = append(out.Nodes, skeletonNode(child))
		}
		return out

	case *rulesetNode:
		rules := make([]*event.ProcessedRule, 0, len(t.rules))
		for _, r := range t.rules {
			rules = append(rules, event.NewProcessedRule(r.name))
		}
		return &event.ProcessedRuleset{
			Name: t.name,
			Rules: event.ProcessedRules{
				Rules:         rules,
				ExtractedVars: value.NewMap(),
			},
		}

	default:
		return nil
	}
}
