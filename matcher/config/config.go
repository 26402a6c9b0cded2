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
	"encoding/json"

	"github.com/tornado-sh/tornado/value"
)

// MatcherConfig is one node of the rule tree: either a *Filter gating a
// sub-tree with a boolean expression, or a *Ruleset holding an ordered list
// of rules.
type MatcherConfig interface {
	NodeName() string
	matcherConfig()
}

type Filter struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Filter      *Operator       `json:"filter"`
	Nodes       []MatcherConfig `json:"nodes"`
}

func (f *Filter) NodeName() string { return f.Name }
func (f *Filter) matcherConfig()   {}

type Ruleset struct {
	Name  string  `json:"name"`
	Rules []*Rule `json:"rules"`
}

func (r *Ruleset) NodeName() string { return r.Name }
func (r *Ruleset) matcherConfig()   {}

// Rule is a named {where, with, actions} triple.
type Rule struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Continue    *bool             `json:"continue,omitempty"`
	Active      bool              `json:"active"`
	Constraint  Constraint        `json:"constraint"`
	Actions     []*ActionTemplate `json:"actions"`
}

// ContinueOnMatch reports whether evaluation proceeds past this rule when it
// matches. Unset means true.
func (r *Rule) ContinueOnMatch() bool {
	return r.Continue == nil || *r.Continue
}

type Constraint struct {
	Where *Operator  `json:"WHERE"`
	With  Extractors `json:"WITH"`
}

// Operator is the configuration form of a boolean expression node. Leaves
// compare two accessor templates; AND/OR/NOT compose.
type Operator struct {
	Type string `json:"type"`

	First  *value.Value `json:"first,omitempty"`
	Second *value.Value `json:"second,omitempty"`

	// regex leaves
	Regex  string `json:"regex,omitempty"`
	Target string `json:"target,omitempty"`

	// AND / OR
	Operators []*Operator `json:"operators,omitempty"`
	// NOT
	Operator *Operator `json:"operator,omitempty"`
}

// Extractor is the configuration of one WITH-clause variable.
type Extractor struct {
	From      string              `json:"from"`
	Regex     ExtractorRegex      `json:"regex"`
	Modifiers []ExtractorModifier `json:"modifiers,omitempty"`
}

type ExtractorRegex struct {
	Match         string `json:"match"`
	GroupMatchIdx *uint  `json:"group_match_idx,omitempty"`
	AllMatches    bool   `json:"all_matches,omitempty"`
}

type ExtractorModifier struct {
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
}

// NamedExtractor pairs a variable name with its extractor, keeping the
// declaration order of the WITH object.
type NamedExtractor struct {
	Name      string
	Extractor *Extractor
}

// Extractors preserves the declaration order of the WITH object: extractors
// run in that order and later ones may reference earlier results.
type Extractors []NamedExtractor

func (e *Extractors) UnmarshalJSON(data []byte) error {
	v, err := value.FromJSON(data)
	if err != nil {
		return err
	}
	m, ok := v.GetMap()
	if !ok {
		return json.Unmarshal(data, new(map[string]Extractor)) // surface the type error
	}

	out := make(Extractors, 0, m.Len())
	for _, name := range m.Keys() {
		raw, _ := m.Get(name)
		encoded, err := raw.MarshalJSON()
		if err != nil {
			return err
		}
		var ex Extractor
		if err := json.Unmarshal(encoded, &ex); err != nil {
			return err
		}
		out = append(out, NamedExtractor{Name: name, Extractor: &ex})
	}
	*e = out
	return nil
}

func (e Extractors) MarshalJSON() ([]byte, error) {
	m := value.NewMap()
	for _, named := range e {
		encoded, err := json.Marshal(named.Extractor)
		if err != nil {
			return nil, err
		}
		var v value.Value
		if err := v.UnmarshalJSON(encoded); err != nil {
			return nil, err
		}
		m.Set(named.Name, v)
	}
	return m.MarshalJSON()
}

// ActionTemplate is an action whose payload text leaves are accessor
// templates, rendered when the enclosing rule matches.
type ActionTemplate struct {
	ID      string     `json:"id"`
	Payload *value.Map `json:"payload"`
}

// Node type tags on the wire.

func (f *Filter) MarshalJSON() ([]byte, error) {
	type alias Filter
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "filter", alias: (*alias)(f)})
}

func (r *Ruleset) MarshalJSON() ([]byte, error) {
	type alias Ruleset
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{Type: "ruleset", alias: (*alias)(r)})
}
