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
	"strings"

	"github.com/tornado-sh/tornado/accessor"
	"github.com/tornado-sh/tornado/value"
)

type equalOperator struct {
	first, second *accessor.Accessor
}

func (o *equalOperator) Evaluate(ctx *accessor.Context) bool {
	first, err := o.first.Get(ctx)
	if err != nil {
		return false
	}
	second, err := o.second.Get(ctx)
	if err != nil {
		return false
	}
	return value.CoercedEqual(first, second)
}

type equalsIgnoreCaseOperator struct {
	first, second *accessor.Accessor
}

// equalsIgnoreCase is text-only: any other kind is false.
func (o *equalsIgnoreCaseOperator) Evaluate(ctx *accessor.Context) bool {
	first, err := o.first.Get(ctx)
	if err != nil {
		return false
	}
	second, err := o.second.Get(ctx)
	if err != nil {
		return false
	}
	ft, fok := first.GetText()
	st, sok := second.GetText()
	return fok && sok && strings.EqualFold(ft, st)
}

type containsOperator struct {
	first, second *accessor.Accessor
	ignoreCase    bool
}

// Evaluate is true when first is text containing second-as-text, an array
// containing an element equal to second, or a map holding second-as-text as
// a key.
func (o *containsOperator) Evaluate(ctx *accessor.Context) bool {
	first, err := o.first.Get(ctx)
	if err != nil {
		return false
	}
	second, err := o.second.Get(ctx)
	if err != nil {
		return false
	}

	if text, ok := first.GetText(); ok {
		needle := second.String()
		if o.ignoreCase {
			return strings.Contains(strings.ToLower(text), strings.ToLower(needle))
		}
		return strings.Contains(text, needle)
	}

	if arr, ok := first.GetArray(); ok {
		for _, item := range arr {
			if o.ignoreCase {
				it, iok := item.GetText()
				st, sok := second.GetText()
				if iok && sok && strings.EqualFold(it, st) {
					return true
				}
			}
			if item.Equal(second) {
				return true
			}
		}
		return false
	}

	if m, ok := first.GetMap(); ok {
		key := second.String()
		if o.ignoreCase {
			for _, k := range m.Keys() {
				if strings.EqualFold(k, key) {
					return true
				}
			}
			return false
		}
		return m.Has(key)
	}

	return false
}

type regexOperator struct {
	regex  *regexp.Regexp
	target *accessor.Accessor
}

func (o *regexOperator) Evaluate(ctx *accessor.Context) bool {
	target, err := o.target.Get(ctx)
	if err != nil {
		return false
	}
	return o.regex.MatchString(target.String())
}

type compareOperator struct {
	op            string
	first, second *accessor.Accessor
}

// Evaluate orders the two values; incomparable pairings are false.
func (o *compareOperator) Evaluate(ctx *accessor.Context) bool {
	first, err := o.first.Get(ctx)
	if err != nil {
		return false
	}
	second, err := o.second.Get(ctx)
	if err != nil {
		return false
	}
	cmp, ok := value.Compare(first, second)
	if !ok {
		return false
	}
	switch o.op {
	case "ge":
		return cmp >= 0
	case "gt":
		return cmp > 0
	case "le":
		return cmp <= 0
	default:
		return cmp < 0
	}
}
