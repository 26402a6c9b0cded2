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
	"regexp"

	"github.com/tornado-sh/tornado/accessor"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

// extractor is one compiled WITH-clause variable: run the accessor, apply
// the regex, keep a capture.
type extractor struct {
	key        string
	from       *accessor.Accessor
	regex      *regexp.Regexp
	groupIdx   *uint
	allMatches bool
	modifiers  []modifier

	// namedGroups holds the pattern's named captures; used when no explicit
	// group index is configured
	namedGroups []string
}

func buildExtractor(name string, cfg *config.Extractor) (*extractor, error) {
	if !identifierRe.MatchString(name) {
		return nil, xerr.ErrConfig("extractor variable %q is not a valid identifier", name)
	}
	if cfg == nil {
		return nil, xerr.ErrConfig("extractor %q has no body", name)
	}

	from, err := accessor.Parse(cfg.From)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(cfg.Regex.Match)
	if err != nil {
		return nil, xerr.ErrConfig("extractor %q pattern %q: %v", name, cfg.Regex.Match, err)
	}

	if cfg.Regex.GroupMatchIdx != nil && int(*cfg.Regex.GroupMatchIdx) > re.NumSubexp() {
		return nil, xerr.ErrConfig(
			"extractor %q wants group %d but pattern %q has %d groups",
			name, *cfg.Regex.GroupMatchIdx, cfg.Regex.Match, re.NumSubexp())
	}

	mods, err := buildModifiers(cfg.Modifiers)
	if err != nil {
		return nil, err
	}

	var named []string
	for _, groupName := range re.SubexpNames() {
		if groupName != "" {
			named = append(named, groupName)
		}
	}

	return &extractor{
		key:         name,
		from:        from,
		regex:       re,
		groupIdx:    cfg.Regex.GroupMatchIdx,
		allMatches:  cfg.Regex.AllMatches,
		modifiers:   mods,
		namedGroups: named,
	}, nil
}

// Execute resolves the source text and captures the configured group.
// With all_matches every occurrence is returned as an array (empty when
// nothing matches); otherwise a miss fails the extractor.
func (e *extractor) Execute(ctx *accessor.Context) (value.Value, error) {
	src, err := e.from.Get(ctx)
	if err != nil {
		return value.Null(), xerr.ErrExtractor("variable %q: source %q resolved to nothing", e.key, e.from.Raw())
	}
	text := src.String()

	if e.allMatches {
		matches := e.regex.FindAllStringSubmatch(text, -1)
		out := make([]value.Value, 0, len(matches))
		for _, match := range matches {
			item, err := e.capture(match)
			if err != nil {
				return value.Null(), err
			}
			out = append(out, item)
		}
		return value.ArrayOf(out), nil
	}

	match := e.regex.FindStringSubmatch(text)
	if match == nil {
		return value.Null(), xerr.ErrExtractor("variable %q: pattern %q did not match", e.key, e.regex.String())
	}
	return e.capture(match)
}

// capture picks the configured group out of one regex match. Without an
// explicit index, a pattern with named groups yields a map of them and any
// other pattern yields the whole match.
func (e *extractor) capture(match []string) (value.Value, error) {
	if e.groupIdx != nil {
		return applyModifiers(match[*e.groupIdx], e.modifiers)
	}

	if len(e.namedGroups) > 0 {
		m := value.NewMap()
		for i, groupName := range e.regex.SubexpNames() {
			if groupName == "" || i >= len(match) {
				continue
			}
			v, err := applyModifiers(match[i], e.modifiers)
			if err != nil {
				return value.Null(), err
			}
			m.Set(groupName, v)
		}
		return value.MapValue(m), nil
	}

	return applyModifiers(match[0], e.modifiers)
}
