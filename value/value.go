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

// Value is the canonical dynamic value flowing through the engine.
// Event payloads, extracted variables and action payloads are all Values.
//
// It is a closed tagged union over:
//   - null
//   - bool
//   - number (float64)
//   - text
//   - map (ordered, text keys)
//   - array
type Value struct {
	kind Kind

	b bool
	n float64
	s string
	m *Map
	a []Value
}

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindMap
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

func Null() Value             { return Value{kind: KindNull} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Number(n float64) Value  { return Value{kind: KindNumber, n: n} }
func Text(s string) Value     { return Value{kind: KindText, s: s} }
func Array(a ...Value) Value  { return Value{kind: KindArray, a: a} }
func ArrayOf(a []Value) Value { return Value{kind: KindArray, a: a} }
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// GetBool returns the boolean payload, ok reports whether the value is a bool.
func (v Value) GetBool() (bool, bool) { return v.b, v.kind == KindBool }

// GetNumber returns the numeric payload, ok reports whether the value is a number.
func (v Value) GetNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// GetText returns the text payload, ok reports whether the value is text.
func (v Value) GetText() (string, bool) { return v.s, v.kind == KindText }

// GetMap returns the map payload, ok reports whether the value is a map.
func (v Value) GetMap() (*Map, bool) { return v.m, v.kind == KindMap }

// GetArray returns the array payload, ok reports whether the value is an array.
func (v Value) GetArray() ([]Value, bool) { return v.a, v.kind == KindArray }

// Equal reports structural equality. Numbers compare by float64 equality,
// so NaN is never equal to anything, itself included.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindText:
		return v.s == o.s
	case KindMap:
		return v.m.Equal(o.m)
	case KindArray:
		if len(v.a) != len(o.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(o.a[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy. Scalars share nothing with the original;
// maps and arrays are copied recursively.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMap:
		return MapValue(v.m.Clone())
	case KindArray:
		a := make([]Value, len(v.a))
		for i := range v.a {
			a[i] = v.a[i].Clone()
		}
		return ArrayOf(a)
	default:
		return v
	}
}
