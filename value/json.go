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

package value

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// FromJSON parses a JSON document into a Value, preserving object key order.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Null(), errors.Wrap(err, "parse json value")
	}

	// trailing garbage after the document is a parse error
	if _, err := dec.Token(); err == nil {
		return Null(), errors.New("unexpected trailing data after json value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Null(), err
		}
		return Number(n), nil
	case string:
		return Text(t), nil
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), errors.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				m.Set(key, val)
			}
			// consume '}'
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return MapValue(m), nil
		case '[':
			a := make([]Value, 0)
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return Null(), err
				}
				a = append(a, val)
			}
			// consume ']'
			if _, err := dec.Token(); err != nil {
				return Null(), err
			}
			return ArrayOf(a), nil
		}
	}
	return Null(), errors.Errorf("unexpected json token: %v", tok)
}

// FromAny converts a decoded-JSON Go value (nil, bool, float64, json.Number,
// string, []any, map[string]any) into a Value. Map keys are sorted, since Go
// map iteration order would otherwise leak into the result.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Null(), err
		}
		return Number(n), nil
	case string:
		return Text(t), nil
	case []any:
		a := make([]Value, 0, len(t))
		for _, item := range t {
			iv, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			a = append(a, iv)
		}
		return ArrayOf(a), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			mv, err := FromAny(t[k])
			if err != nil {
				return Null(), err
			}
			m.Set(k, mv)
		}
		return MapValue(m), nil
	default:
		return Null(), errors.Errorf("cannot convert %T to a value", v)
	}
}

// MarshalJSON serializes the value. Map keys keep their insertion order.
// Non-finite numbers serialize as null, as JSON has no representation for them.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return []byte("null"), nil
		}
		return []byte(FormatNumber(v.n)), nil
	case KindText:
		return json.Marshal(v.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.a {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindMap:
		var buf bytes.Buffer
		buf.WriteByte('{')
		first := true
		var marshalErr error
		v.m.Range(func(key string, val Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, err := json.Marshal(key)
			if err != nil {
				marshalErr = err
				return false
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := val.MarshalJSON()
			if err != nil {
				marshalErr = err
				return false
			}
			buf.Write(vb)
			return true
		})
		if marshalErr != nil {
			return nil, marshalErr
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, errors.Errorf("unknown value kind: %d", v.kind)
}

// UnmarshalJSON parses JSON into the value, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
