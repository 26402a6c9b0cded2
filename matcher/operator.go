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

// Operator is a compiled boolean expression node. Evaluation is pure: it
// reads the context and never mutates extracted variables. An accessor that
// resolves to nothing makes its leaf false, never an error.
type Operator interface {
	Evaluate(ctx *accessor.Context) bool
}

// buildOperator compiles an operator configuration, failing loudly on
// unknown types, missing arguments and invalid patterns.
func buildOperator(cfg *config.Operator) (Operator, error) {
	if cfg == nil {
		return nil, xerr.ErrConfig("operator is missing")
	}

	switch cfg.Type {
	case "AND":
		ops, err := buildOperators(cfg.Operators)
		if err != nil {
			return nil, err
		}
		return &andOperator{operators: ops}, nil

	case "OR":
		ops, err := buildOperators(cfg.Operators)
		if err != nil {
			return nil, err
		}
		return &orOperator{operators: ops}, nil

	case "NOT":
		inner, err := buildOperator(cfg.Operator)
		if err != nil {
			return nil, err
		}
		return &notOperator{operator: inner}, nil

	case "equal", "equals":
		first, second, err := buildPair(cfg)
		if err != nil {
			return nil, err
		}
		return &equalOperator{first: first, second: second}, nil

	case "equalsIgnoreCase":
		first, second, err := buildPair(cfg)
		if err != nil {
			return nil, err
		}
		return &equalsIgnoreCaseOperator{first: first, second: second}, nil

	case "contains", "contain":
		first, second, err := buildPair(cfg)
		if err != nil {
			return nil, err
		}
		return &containsOperator{first: first, second: second}, nil

	case "containsIgnoreCase":
		first, second, err := buildPair(cfg)
		if err != nil {
			return nil, err
		}
		return &containsOperator{first: first, second: second, ignoreCase: true}, nil

	case "regex":
		if cfg.Regex == "" {
			return nil, xerr.ErrConfig("regex operator needs a pattern")
		}
		re, err := regexp.Compile(cfg.Regex)
		if err != nil {
			return nil, xerr.ErrConfig("regex operator pattern %q: %v", cfg.Regex, err)
		}
		target, err := accessor.Parse(cfg.Target)
		if err != nil {
			return nil, err
		}
		return &regexOperator{regex: re, target: target}, nil

	case "ge", "gt", "le", "lt":
		first, second, err := buildPair(cfg)
		if err != nil {
			return nil, err
		}
		return &compareOperator{op: cfg.Type, first: first, second: second}, nil

	case "":
		return nil, xerr.ErrConfig("operator has no type")
	default:
		return nil, xerr.ErrConfig("unknown operator type %q", cfg.Type)
	}
}

func buildOperators(cfgs []*config.Operator) ([]Operator, error) {
	ops := make([]Operator, 0, len(cfgs))
	for _, cfg := range cfgs {
		op, err := buildOperator(cfg)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func buildPair(cfg *config.Operator) (*accessor.Accessor, *accessor.Accessor, error) {
	if cfg.First == nil || cfg.Second == nil {
		return nil, nil, xerr.ErrConfig("operator %q needs both first and second arguments", cfg.Type)
	}
	first, err := buildArgument(*cfg.First)
	if err != nil {
		return nil, nil, err
	}
	second, err := buildArgument(*cfg.Second)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// buildArgument turns an operator argument into an accessor: text arguments
// are templates, every other kind is a constant.
func buildArgument(v value.Value) (*accessor.Accessor, error) {
	if text, ok := v.GetText(); ok {
		return accessor.Parse(text)
	}
	return accessor.Constant(v), nil
}

type andOperator struct {
	operators []Operator
}

// Evaluate short-circuits; an empty conjunction is true.
func (o *andOperator) Evaluate(ctx *accessor.Context) bool {
	for _, op := range o.operators {
		if !op.Evaluate(ctx) {
			return false
		}
	}
	return true
}

type orOperator struct {
	operators []Operator
}

// Evaluate short-circuits; an empty disjunction is false.
func (o *orOperator) Evaluate(ctx *accessor.Context) bool {
	for _, op := range o.operators {
		if op.Evaluate(ctx) {
			return true
		}
	}
	return false
}

type notOperator struct {
	operator Operator
}

func (o *notOperator) Evaluate(ctx *accessor.Context) bool {
	return !o.operator.Evaluate(ctx)
}
