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
	"math"
	"strconv"
	"strings"

	"github.com/tornado-sh/tornado/xerr"
)

// String coerces the value to text. This is the coercion used by template
// interpolation:
//   - null renders as the empty string
//   - booleans render lowercase
//   - numbers render as the shortest round-tripping decimal
//   - maps and arrays render as JSON
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindText:
		return v.s
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// FormatNumber renders n as the shortest decimal that round-trips to the
// same float64, without switching to exponent notation.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ToNumber coerces the value to a float64:
// numbers are themselves, booleans are 0/1, text is parsed.
// Everything else is a type mismatch.
func (v Value) ToNumber() (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.n, nil
	case KindBool:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case KindText:
		n, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, xerr.ErrTypeMismatch(strconv.Quote(v.s), "number")
		}
		return n, nil
	default:
		return 0, xerr.ErrTypeMismatch(v.kind.String(), "number")
	}
}

// CoercedEqual reports equality after numeric cross-coercion, so that
// Number(1), Text("1") and Bool(true) are all equal to each other.
// Containers recurse with the same semantics.
func CoercedEqual(a, b Value) bool {
	if a.kind == b.kind {
		switch a.kind {
		case KindArray:
			if len(a.a) != len(b.a) {
				return false
			}
			for i := range a.a {
				if !CoercedEqual(a.a[i], b.a[i]) {
					return false
				}
			}
			return true
		case KindMap:
			if a.m.Len() != b.m.Len() {
				return false
			}
			for _, k := range a.m.Keys() {
				bv, ok := b.m.Get(k)
				if !ok {
					return false
				}
				av, _ := a.m.Get(k)
				if !CoercedEqual(av, bv) {
					return false
				}
			}
			return true
		default:
			return a.Equal(b)
		}
	}

	an, aerr := a.ToNumber()
	bn, berr := b.ToNumber()
	if aerr != nil || berr != nil {
		return false
	}
	return an == bn
}

// Compare orders two values. Ordering is defined on Number-Number (NaN is
// incomparable) and Text-Text (lexicographic); every other pairing is
// incomparable and ok is false.
func Compare(a, b Value) (int, bool) {
	if a.kind == KindNumber && b.kind == KindNumber {
		if math.IsNaN(a.n) || math.IsNaN(b.n) {
			return 0, false
		}
		switch {
		case a.n < b.n:
			return -1, true
		case a.n > b.n:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.kind == KindText && b.kind == KindText {
		return strings.Compare(a.s, b.s), true
	}
	return 0, false
}
