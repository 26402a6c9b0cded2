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

// Package jmespath turns raw JSON documents into Events using the JMESPath
// query language: every text leaf of the configured template that reads
// `${expr}` is a compiled JMESPath expression evaluated against the input.
package jmespath

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/pkg/errors"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

const (
	expressionStart = "${"
	expressionEnd   = "}"
)

// Config describes how input documents map onto Events.
type Config struct {
	EventType string     `json:"event_type"`
	Payload   *value.Map `json:"payload"`
}

// LoadConfig reads a collector definition from a JSON file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read collector config %q", path)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, xerr.ErrCollector("parse collector config %q: %v", path, err)
	}
	return cfg, nil
}

// Collector is a compiled Config. It is immutable and safe for concurrent
// use.
type Collector struct {
	eventType *valueProcessor
	payload   []payloadEntry
}

type payloadEntry struct {
	key       string
	processor *valueProcessor
}

// valueProcessor renders one template leaf or container. Exactly one field
// group is populated.
type valueProcessor struct {
	expr     *jmespath.JMESPath
	raw      string // the expression source, for error messages
	constant *value.Value
	entries  []payloadEntry
	items    []*valueProcessor
	isMap    bool
	isArray  bool
}

// New compiles a collector configuration. Invalid JMESPath expressions fail
// here, never at event time.
func New(cfg Config) (*Collector, error) {
	if cfg.EventType == "" {
		return nil, xerr.ErrCollector("collector config has no event_type")
	}
	eventType, err := buildProcessor(value.Text(cfg.EventType))
	if err != nil {
		return nil, err
	}

	payload := cfg.Payload
	if payload == nil {
		payload = value.NewMap()
	}
	entries, err := buildEntries(payload)
	if err != nil {
		return nil, err
	}

	return &Collector{eventType: eventType, payload: entries}, nil
}

func buildEntries(m *value.Map) ([]payloadEntry, error) {
	entries := make([]payloadEntry, 0, m.Len())
	var buildErr error
	m.Range(func(key string, v value.Value) bool {
		p, err := buildProcessor(v)
		if err != nil {
			buildErr = err
			return false
		}
		entries = append(entries, payloadEntry{key: key, processor: p})
		return true
	})
	return entries, buildErr
}

func buildProcessor(v value.Value) (*valueProcessor, error) {
	switch v.Kind() {
	case value.KindText:
		text, _ := v.GetText()
		if strings.HasPrefix(text, expressionStart) && strings.HasSuffix(text, expressionEnd) {
			expression := text[len(expressionStart) : len(text)-len(expressionEnd)]
			compiled, err := jmespath.Compile(expression)
			if err != nil {
				return nil, xerr.ErrCollector("not a valid jmespath expression %q: %v", expression, err)
			}
			return &valueProcessor{expr: compiled, raw: expression}, nil
		}
		return &valueProcessor{constant: &v}, nil

	case value.KindMap:
		m, _ := v.GetMap()
		entries, err := buildEntries(m)
		if err != nil {
			return nil, err
		}
		return &valueProcessor{entries: entries, isMap: true}, nil

	case value.KindArray:
		arr, _ := v.GetArray()
		items := make([]*valueProcessor, 0, len(arr))
		for _, item := range arr {
			p, err := buildProcessor(item)
			if err != nil {
				return nil, err
			}
			items = append(items, p)
		}
		return &valueProcessor{items: items, isArray: true}, nil

	default:
		return &valueProcessor{constant: &v}, nil
	}
}

// ToEvent parses the input document and renders it into an Event. Any
// failure drops the event: a collector error goes back to the transport,
// never into the matcher.
func (c *Collector) ToEvent(input []byte) (*event.Event, error) {
	var data any
	if err := json.Unmarshal(input, &data); err != nil {
		return nil, xerr.ErrCollector("cannot parse received json: %v", err)
	}

	eventTypeValue, err := c.eventType.process(data)
	if err != nil {
		return nil, err
	}
	eventType, ok := eventTypeValue.GetText()
	if !ok || eventType == "" {
		return nil, xerr.ErrCollector("event type must be non-empty text, got %s", eventTypeValue.Kind())
	}

	ev := event.New(eventType)
	for _, entry := range c.payload {
		v, err := entry.processor.process(data)
		if err != nil {
			return nil, err
		}
		ev.Payload.Set(entry.key, v)
	}
	return ev, nil
}

func (p *valueProcessor) process(data any) (value.Value, error) {
	switch {
	case p.expr != nil:
		result, err := p.expr.Search(data)
		if err != nil {
			return value.Null(), xerr.ErrCollector("expression %q failed to execute: %v", p.raw, err)
		}
		// a null search result means the document lacks the queried path;
		// expression references are equally unusable as payload values
		if result == nil {
			return value.Null(), xerr.ErrCollector("expression %q resolved to null", p.raw)
		}
		v, err := value.FromAny(result)
		if err != nil {
			return value.Null(), xerr.ErrCollector("expression %q result: %v", p.raw, err)
		}
		return v, nil

	case p.isMap:
		m := value.NewMap()
		for _, entry := range p.entries {
			v, err := entry.processor.process(data)
			if err != nil {
				return value.Null(), err
			}
			m.Set(entry.key, v)
		}
		return value.MapValue(m), nil

	case p.isArray:
		items := make([]value.Value, 0, len(p.items))
		for _, item := range p.items {
			v, err := item.process(data)
			if err != nil {
				return value.Null(), err
			}
			items = append(items, v)
		}
		return value.ArrayOf(items), nil

	default:
		return *p.constant, nil
	}
}
