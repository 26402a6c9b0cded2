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
	"strconv"
	"strings"
	"unicode"

	"github.com/tornado-sh/tornado/xerr"
)

const (
	exprStart = "${"
	exprEnd   = "}"

	rootEvent     = "event"
	rootVariables = "_variables"

	fieldType      = "type"
	fieldCreatedMs = "created_ms"
	fieldTraceID   = "trace_id"
	fieldPayload   = "payload"
	fieldMetadata  = "metadata"
)

// Parse compiles a template string into an Accessor.
//
//   - a string with no `${…}` is a literal constant
//   - a string that is exactly one `${…}` expression preserves the type of
//     the value it navigates to
//   - a string mixing literals and expressions renders as text
//
// `\${` escapes a literal `${`.
func Parse(template string) (*Accessor, error) {
	parts := make([]part, 0, 1)
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, part{literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(template); {
		if template[i] == '\\' && strings.HasPrefix(template[i:], `\`+exprStart) {
			literal.WriteString(exprStart)
			i += len(exprStart) + 1
			continue
		}
		if strings.HasPrefix(template[i:], exprStart) {
			end, err := findExprEnd(template, i+len(exprStart))
			if err != nil {
				return nil, err
			}
			raw := template[i+len(exprStart) : end]
			expr, err := parseExpression(raw)
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, part{expr: expr})
			i = end + len(exprEnd)
			continue
		}
		if template[i] == '}' {
			// a bare closing brace outside an expression is fine; an
			// unmatched `${` was already rejected by findExprEnd
			literal.WriteByte('}')
			i++
			continue
		}
		literal.WriteByte(template[i])
		i++
	}
	flush()

	return &Accessor{raw: template, parts: parts}, nil
}

// findExprEnd locates the closing brace of the expression opened at start,
// honoring quoted keys which may contain braces and dots.
func findExprEnd(template string, start int) (int, error) {
	inQuotes := false
	for i := start; i < len(template); i++ {
		switch template[i] {
		case '"':
			inQuotes = !inQuotes
		case '}':
			if !inQuotes {
				return i, nil
			}
		}
	}
	return 0, xerr.ErrConfig("unbalanced braces in accessor template %q", template)
}

func parseExpression(raw string) (*expression, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, xerr.ErrConfig("empty accessor expression")
	}

	segments, err := parseSegments(raw)
	if err != nil {
		return nil, err
	}

	root := segments[0]
	if root.isIndex {
		return nil, xerr.ErrConfig("accessor expression %q must start with %q or %q", raw, rootEvent, rootVariables)
	}

	switch root.key {
	case rootEvent:
		return parseEventExpression(raw, segments[1:])
	case rootVariables:
		return parseVariableExpression(raw, segments[1:])
	default:
		return nil, xerr.ErrConfig("unknown accessor root %q in expression %q", root.key, raw)
	}
}

func parseEventExpression(raw string, segments []segment) (*expression, error) {
	if len(segments) == 0 {
		return nil, xerr.ErrConfig("accessor expression %q addresses no event field", raw)
	}
	field := segments[0]
	if field.isIndex {
		return nil, xerr.ErrConfig("cannot index the event in expression %q", raw)
	}

	switch field.key {
	case fieldType, fieldCreatedMs, fieldTraceID:
		if len(segments) > 1 {
			return nil, xerr.ErrConfig("event field %q takes no path in expression %q", field.key, raw)
		}
		return &expression{raw: raw, source: srcEventField, field: field.key}, nil
	case fieldPayload:
		return &expression{raw: raw, source: srcPayload, segments: segments[1:]}, nil
	case fieldMetadata:
		return &expression{raw: raw, source: srcMetadata, segments: segments[1:]}, nil
	default:
		return nil, xerr.ErrConfig("unknown event field %q in expression %q", field.key, raw)
	}
}

func parseVariableExpression(raw string, segments []segment) (*expression, error) {
	if len(segments) == 0 || len(segments) > 2 {
		return nil, xerr.ErrConfig("variable expression %q must name <var> or <rule>.<var>", raw)
	}
	names := make([]string, 0, 2)
	for _, seg := range segments {
		if seg.isIndex || seg.quoted {
			return nil, xerr.ErrConfig("variable expression %q must use plain identifiers", raw)
		}
		names = append(names, seg.key)
	}
	return &expression{raw: raw, source: srcVariable, varKey: strings.Join(names, ".")}, nil
}

// parseSegments tokenizes an expression on `.`, `[n]` and `["quoted key"]`.
// Unquoted keys reject whitespace; quoted keys permit dots and spaces.
func parseSegments(raw string) ([]segment, error) {
	segments := make([]segment, 0, 4)
	i := 0
	expectKey := true

	for i < len(raw) {
		switch {
		case raw[i] == '.':
			if expectKey {
				return nil, xerr.ErrConfig("empty segment in accessor expression %q", raw)
			}
			expectKey = true
			i++

		case raw[i] == '[':
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return nil, xerr.ErrConfig("unbalanced bracket in accessor expression %q", raw)
			}
			inner := raw[i+1 : i+end]
			if len(inner) >= 2 && inner[0] == '"' && inner[len(inner)-1] == '"' {
				segments = append(segments, segment{key: inner[1 : len(inner)-1], quoted: true})
			} else {
				idx, err := strconv.ParseInt(inner, 10, 64)
				if err != nil {
					return nil, xerr.ErrConfig("invalid index %q in accessor expression %q", inner, raw)
				}
				segments = append(segments, segment{index: idx, isIndex: true})
			}
			expectKey = false
			i += end + 1

		default:
			if !expectKey {
				return nil, xerr.ErrConfig("unexpected character %q in accessor expression %q", raw[i], raw)
			}
			key, rest, err := scanKey(raw[i:], raw)
			if err != nil {
				return nil, err
			}
			segments = append(segments, segment{key: key})
			expectKey = false
			i += len(raw[i:]) - len(rest)
		}
	}

	if expectKey {
		return nil, xerr.ErrConfig("accessor expression %q ends with a dangling separator", raw)
	}
	if len(segments) == 0 {
		return nil, xerr.ErrConfig("empty accessor expression")
	}
	return segments, nil
}

func scanKey(s, raw string) (key, rest string, err error) {
	if s[0] == '"' {
		end := strings.IndexByte(s[1:], '"')
		if end < 0 {
			return "", "", xerr.ErrConfig("unterminated quoted key in accessor expression %q", raw)
		}
		return s[1 : 1+end], s[end+2:], nil
	}

	i := 0
	for i < len(s) && s[i] != '.' && s[i] != '[' {
		if unicode.IsSpace(rune(s[i])) {
			return "", "", xerr.ErrConfig("whitespace in unquoted key of accessor expression %q", raw)
		}
		i++
	}
	if i == 0 {
		return "", "", xerr.ErrConfig("empty segment in accessor expression %q", raw)
	}
	return s[:i], s[i:], nil
}
