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

package matcher

import (
	"fmt"

	"github.com/tornado-sh/tornado/accessor"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/xerr"
)

// rule is the compiled form of one configuration rule.
type rule struct {
	name            string
	active          bool
	continueOnMatch bool
	where           Operator
	extractors      []*extractor
	actions         []*actionTemplate
}

func buildRule(cfg *config.Rule) (*rule, error) {
	if !identifierRe.MatchString(cfg.Name) {
		return nil, xerr.ErrConfig("rule name %q is not a valid identifier", cfg.Name)
	}

	r := &rule{
		name:            cfg.Name,
		active:          cfg.Active,
		continueOnMatch: cfg.ContinueOnMatch(),
	}

	if cfg.Constraint.Where != nil {
		where, err := buildOperator(cfg.Constraint.Where)
		if err != nil {
			return nil, xerr.ErrConfig("rule %q WHERE: %v", cfg.Name, err)
		}
		r.where = where
	}

	for _, named := range cfg.Constraint.With {
		ex, err := buildExtractor(named.Name, named.Extractor)
		if err != nil {
			return nil, xerr.ErrConfig("rule %q WITH %q: %v", cfg.Name, named.Name, err)
		}
		r.extractors = append(r.extractors, ex)
	}

	for _, actionCfg := range cfg.Actions {
		action, err := buildActionTemplate(actionCfg)
		if err != nil {
			return nil, xerr.ErrConfig("rule %q action %q: %v", cfg.Name, actionCfg.ID, err)
		}
		r.actions = append(r.actions, action)
	}

	return r, nil
}

// process evaluates the rule against the context and returns its outcome.
// Extracted variables are written into ctx.Vars as they are produced, so a
// partially matched rule leaves its earlier variables visible, tagged by
// the rule name in the compound key.
func (r *rule) process(ctx *accessor.Context) *event.ProcessedRule {
	out := event.NewProcessedRule(r.name)

	if !r.active {
		return out
	}

	ctx.RuleName = r.name
	defer func() { ctx.RuleName = "" }()

	if r.where != nil && !r.where.Evaluate(ctx) {
		out.Status = event.RuleStatusNotMatched
		out.Message = "the WHERE clause did not match"
		return out
	}

	for _, ex := range r.extractors {
		v, err := ex.Execute(ctx)
		if err != nil {
			out.Status = event.RuleStatusPartiallyMatched
			out.Message = err.Error()
			return out
		}
		ctx.Vars.Set(r.name+"."+ex.key, v)
	}

	actions := make([]*event.Action, 0, len(r.actions))
	for i, tmpl := range r.actions {
		action, err := tmpl.render(ctx)
		if err != nil {
			out.Status = event.RuleStatusPartiallyMatched
			out.Message = fmt.Sprintf("action %d (%s) failed to render: %v", i, tmpl.id, err)
			return out
		}
		actions = append(actions, action)
	}

	out.Status = event.RuleStatusMatched
	out.Actions = actions
	out.Meta.ActionsCount = len(actions)
	return out
}
