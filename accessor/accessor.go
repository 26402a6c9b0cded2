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

package accessor

import (
	"strings"

	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

// Accessor is a compiled template that reads a Value out of an evaluation
// context. Templates are compiled once at configuration load and evaluated
// per event.
type Accessor struct {
	raw   string
	parts []part

	// constant holds the value wrapped via Constant. Parse leaves it nil: a
	// template with no expressions renders from its single literal part.
	constant *value.Value
}

type part struct {
	literal string
	expr    *expression
}

type sourceKind uint8

const (
	srcEventField sourceKind = iota
	srcPayload
	srcMetadata
	srcVariable
)

type expression struct {
	raw      string
	source   sourceKind
	field    string // srcEventField: type, created_ms or trace_id
	segments []segment
	varKey   string // srcVariable
}

type segment struct {
	key     string
	quoted  bool
	index   int64
	isIndex bool
}

// Constant wraps a fixed Value as an Accessor.
func Constant(v value.Value) *Accessor {
	return &Accessor{raw: v.String(), constant: &v}
}

// Context is the state one accessor evaluation reads from. Vars holds the
// extracted variables of the enclosing ruleset evaluation keyed
// "rule_name.var_name"; RuleName is the rule currently being evaluated and
// resolves single-segment variable references.
type Context struct {
	Event    *event.Event
	Vars     *value.Map
	RuleName string
}

// Raw returns the template string the accessor was compiled from.
func (a *Accessor) Raw() string { return a.raw }

// Get evaluates the accessor. An absent path yields a NotFoundError; inside
// a mixed template an absent sub-expression fails the whole accessor.
func (a *Accessor) Get(ctx *Context) (value.Value, error) {
	if a.constant != nil {
		return *a.constant, nil
	}

	// a single-expression template preserves the navigated value's type
	if len(a.parts) == 1 && a.parts[0].expr != nil {
		return a.parts[0].expr.get(ctx)
	}

	var out strings.Builder
	for _, p := range a.parts {
		if p.expr == nil {
			out.WriteString(p.literal)
			continue
		}
		v, err := p.expr.get(ctx)
		if err != nil {
			if xerr.IsNotFound(err) {
				return value.Null(), xerr.ErrAccessor("template %q: expression %q resolved to nothing", a.raw, p.expr.raw)
			}
			return value.Null(), err
		}
		out.WriteString(v.String())
	}
	return value.Text(out.String()), nil
}

func (e *expression) get(ctx *Context) (value.Value, error) {
	switch e.source {
	case srcEventField:
		switch e.field {
		case fieldType:
			return value.Text(ctx.Event.Type), nil
		case fieldCreatedMs:
			return value.Number(float64(ctx.Event.CreatedMs)), nil
		default:
			return value.Text(ctx.Event.TraceID), nil
		}

	case srcPayload:
		return walk(value.MapValue(ctx.Event.Payload), e.segments, rootEvent+"."+fieldPayload)

	case srcMetadata:
		return walk(value.MapValue(ctx.Event.Metadata), e.segments, rootEvent+"."+fieldMetadata)

	case srcVariable:
		key := e.varKey
		if !strings.Contains(key, ".") && ctx.RuleName != "" {
			key = ctx.RuleName + "." + key
		}
		if ctx.Vars != nil {
			if v, ok := ctx.Vars.Get(key); ok {
				return v, nil
			}
		}
		return value.Null(), xerr.ErrNotFound(key, rootVariables)
	}
	return value.Null(), xerr.ErrAccessor("unknown source in expression %q", e.raw)
}

// walk navigates segments from v. Missing keys, out-of-range indexes and
// indexing into the wrong kind all resolve to not-found, never to an
// engine error.
func walk(v value.Value, segments []segment, path string) (value.Value, error) {
	cur := v
	for _, seg := range segments {
		if seg.isIndex {
			arr, ok := cur.GetArray()
			if !ok {
				return value.Null(), xerr.ErrNotFound(segName(seg), path)
			}
			idx := seg.index
			if idx < 0 {
				idx += int64(len(arr))
			}
			if idx < 0 || idx >= int64(len(arr)) {
				return value.Null(), xerr.ErrNotFound(segName(seg), path)
			}
			cur = arr[idx]
		} else {
			m, ok := cur.GetMap()
			if !ok {
				return value.Null(), xerr.ErrNotFound(seg.key, path)
			}
			child, ok := m.Get(seg.key)
			if !ok {
				return value.Null(), xerr.ErrNotFound(seg.key, path)
			}
			cur = child
		}
		path += "." + segName(seg)
	}
	return cur, nil
}

func segName(seg segment) string {
	if seg.isIndex {
		return "[" + value.FormatNumber(float64(seg.index)) + "]"
	}
	return seg.key
}
