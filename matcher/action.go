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
	"github.com/tornado-sh/tornado/accessor"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

// actionTemplate is one compiled action: the payload tree with every text
// leaf pre-parsed as an accessor template.
type actionTemplate struct {
	id      string
	payload []payloadEntry
}

type payloadEntry struct {
	key      string
	template *valueTemplate
}

// valueTemplate mirrors one payload value. Exactly one of the fields is
// set.
type valueTemplate struct {
	acc      *accessor.Accessor
	constant *value.Value
	entries  []payloadEntry
	items    []*valueTemplate
	isMap    bool
	isArray  bool
}

func buildActionTemplate(cfg *config.ActionTemplate) (*actionTemplate, error) {
	if cfg.ID == "" {
		return nil, xerr.ErrConfig("action has no id")
	}
	entries, err := compilePayloadMap(cfg.Payload)
	if err != nil {
		return nil, err
	}
	return &actionTemplate{id: cfg.ID, payload: entries}, nil
}

func compilePayloadMap(m *value.Map) ([]payloadEntry, error) {
	entries := make([]payloadEntry, 0, m.Len())
	var compileErr error
	m.Range(func(key string, v value.Value) bool {
		tmpl, err := compileValueTemplate(v)
		if err != nil {
			compileErr = err
			return false
		}
		entries = append(entries, payloadEntry{key: key, template: tmpl})
		return true
	})
	return entries, compileErr
}

func compileValueTemplate(v value.Value) (*valueTemplate, error) {
	switch v.Kind() {
	case value.KindText:
		text, _ := v.GetText()
		acc, err := accessor.Parse(text)
		if err != nil {
			return nil, err
		}
		return &valueTemplate{acc: acc}, nil

	case value.KindMap:
		m, _ := v.GetMap()
		entries, err := compilePayloadMap(m)
		if err != nil {
			return nil, err
		}
		return &valueTemplate{entries: entries, isMap: true}, nil

	case value.KindArray:
		arr, _ := v.GetArray()
		items := make([]*valueTemplate, 0, len(arr))
		for _, item := range arr {
			tmpl, err := compileValueTemplate(item)
			if err != nil {
				return nil, err
			}
			items = append(items, tmpl)
		}
		return &valueTemplate{items: items, isArray: true}, nil

	default:
		return &valueTemplate{constant: &v}, nil
	}
}

// render produces a concrete Action from the template. Any accessor failure
// aborts the whole action.
func (a *actionTemplate) render(ctx *accessor.Context) (*event.Action, error) {
	payload, err := renderPayloadMap(a.payload, ctx)
	if err != nil {
		return nil, err
	}
	return &event.Action{ID: a.id, Payload: payload}, nil
}

func renderPayloadMap(entries []payloadEntry, ctx *accessor.Context) (*value.Map, error) {
	out := value.NewMap()
	for _, entry := range entries {
		v, err := entry.template.render(ctx)
		if err != nil {
			return nil, err
		}
		out.Set(entry.key, v)
	}
	return out, nil
}

func (t *valueTemplate) render(ctx *accessor.Context) (value.Value, error) {
	switch {
	case t.acc != nil:
		return t.acc.Get(ctx)
	case t.isMap:
		m, err := renderPayloadMap(t.entries, ctx)
		if err != nil {
			return value.Null(), err
		}
		return value.MapValue(m), nil
	case t.isArray:
		items := make([]value.Value, 0, len(t.items))
		for _, item := range t.items {
			v, err := item.render(ctx)
			if err != nil {
				return value.Null(), err
			}
			items = append(items, v)
		}
		return value.ArrayOf(items), nil
	default:
		return *t.constant, nil
	}
}
