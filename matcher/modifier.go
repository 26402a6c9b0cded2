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
	"strconv"
	"strings"
	"time"

	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

// modifier post-processes one extracted capture.
type modifier func(captured string) (value.Value, error)

func buildModifiers(cfgs []config.ExtractorModifier) ([]modifier, error) {
	mods := make([]modifier, 0, len(cfgs))
	for _, cfg := range cfgs {
		mod, err := buildModifier(cfg)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func buildModifier(cfg config.ExtractorModifier) (modifier, error) {
	switch cfg.Type {
	case "trim":
		return func(captured string) (value.Value, error) {
			return value.Text(strings.Trim(captured, " \t\r\n\v\f")), nil
		}, nil

	case "lowercase":
		return func(captured string) (value.Value, error) {
			return value.Text(strings.ToLower(captured)), nil
		}, nil

	case "to_number":
		return func(captured string) (value.Value, error) {
			n, err := strconv.ParseFloat(captured, 64)
			if err != nil {
				return value.Null(), xerr.ErrExtractor("capture %q is not a number", captured)
			}
			return value.Number(n), nil
		}, nil

	case "date_and_time":
		layout, err := strftimeToLayout(cfg.Format)
		if err != nil {
			return nil, err
		}
		return func(captured string) (value.Value, error) {
			t, err := time.Parse(layout, captured)
			if err != nil {
				return value.Null(), xerr.ErrExtractor("capture %q does not match date format %q", captured, cfg.Format)
			}
			return value.Text(t.Format(time.RFC3339)), nil
		}, nil

	default:
		return nil, xerr.ErrConfig("unknown extractor modifier %q", cfg.Type)
	}
}

// applyModifiers runs the modifier chain over one capture. Modifiers after
// the first receive the textual form of the previous result.
func applyModifiers(captured string, mods []modifier) (value.Value, error) {
	out := value.Text(captured)
	for _, mod := range mods {
		next, err := mod(out.String())
		if err != nil {
			return value.Null(), err
		}
		out = next
	}
	return out, nil
}

// strftime directives mapped onto the go reference time layout.
var strftimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'M': "04",
	'S': "05",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'z': "-0700",
	'Z': "MST",
	'p': "PM",
	'%': "%",
}

func strftimeToLayout(format string) (string, error) {
	if format == "" {
		return "", xerr.ErrConfig("date_and_time modifier needs a format")
	}

	var layout strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			layout.WriteByte(format[i])
			continue
		}
		i++
		if i >= len(format) {
			return "", xerr.ErrConfig("date format %q ends with a bare %%", format)
		}
		// chrono's %:z carries the colon into the offset
		if format[i] == ':' && i+1 < len(format) && format[i+1] == 'z' {
			layout.WriteString("-07:00")
			i++
			continue
		}
		directive, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", xerr.ErrConfig("unsupported directive %%%c in date format %q", format[i], format)
		}
		layout.WriteString(directive)
	}
	return layout.String(), nil
}
