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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tornado-sh/tornado/accessor"
	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/matcher/config"
	"github.com/tornado-sh/tornado/value"
)

func vp(v value.Value) *value.Value { return &v }

func operatorContext() *accessor.Context {
	ev := event.New("alert")
	ev.Payload.
		Set("env", value.Text("prod")).
		Set("severity", value.Number(3)).
		Set("tags", value.Array(value.Text("disk"), value.Text("io"))).
		Set("details", value.MapValue(value.NewMap().Set("host", value.Text("srv01"))))
	return &accessor.Context{Event: ev}
}

func mustBuild(t *testing.T, cfg *config.Operator) Operator {
	t.Helper()
	op, err := buildOperator(cfg)
	require.NoError(t, err)
	return op
}

func TestEqualOperator(t *testing.T) {
	ctx := operatorContext()

	tests := []struct {
		name string
		cfg  *config.Operator
		want bool
	}{
		{
			name: "text equality",
			cfg:  &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.env}")), Second: vp(value.Text("prod"))},
			want: true,
		},
		{
			name: "numeric cross coercion",
			cfg:  &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.severity}")), Second: vp(value.Text("3"))},
			want: true,
		},
		{
			name: "constant number against event number",
			cfg:  &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.severity}")), Second: vp(value.Number(3))},
			want: true,
		},
		{
			name: "absent path is false not an error",
			cfg:  &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.missing}")), Second: vp(value.Text("x"))},
			want: false,
		},
		{
			name: "mismatch",
			cfg:  &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.env}")), Second: vp(value.Text("dev"))},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustBuild(t, tt.cfg).Evaluate(ctx))
		})
	}
}

func TestContainsOperator(t *testing.T) {
	ctx := operatorContext()

	tests := []struct {
		name string
		cfg  *config.Operator
		want bool
	}{
		{
			name: "text contains substring",
			cfg:  &config.Operator{Type: "contains", First: vp(value.Text("${event.payload.env}")), Second: vp(value.Text("ro"))},
			want: true,
		},
		{
			name: "array contains equal element",
			cfg:  &config.Operator{Type: "contains", First: vp(value.Text("${event.payload.tags}")), Second: vp(value.Text("disk"))},
			want: true,
		},
		{
			name: "array does not contain",
			cfg:  &config.Operator{Type: "contains", First: vp(value.Text("${event.payload.tags}")), Second: vp(value.Text("cpu"))},
			want: false,
		},
		{
			name: "map contains key",
			cfg:  &config.Operator{Type: "contains", First: vp(value.Text("${event.payload.details}")), Second: vp(value.Text("host"))},
			want: true,
		},
		{
			name: "ignore case on text",
			cfg:  &config.Operator{Type: "containsIgnoreCase", First: vp(value.Text("${event.payload.env}")), Second: vp(value.Text("PROD"))},
			want: true,
		},
		{
			name: "ignore case on array element",
			cfg:  &config.Operator{Type: "containsIgnoreCase", First: vp(value.Text("${event.payload.tags}")), Second: vp(value.Text("DISK"))},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustBuild(t, tt.cfg).Evaluate(ctx))
		})
	}
}

func TestEqualsIgnoreCaseIsTextOnly(t *testing.T) {
	ctx := operatorContext()

	op := mustBuild(t, &config.Operator{
		Type:   "equalsIgnoreCase",
		First:  vp(value.Text("${event.payload.env}")),
		Second: vp(value.Text("PrOd")),
	})
	assert.True(t, op.Evaluate(ctx))

	op = mustBuild(t, &config.Operator{
		Type:   "equalsIgnoreCase",
		First:  vp(value.Text("${event.payload.severity}")),
		Second: vp(value.Text("3")),
	})
	assert.False(t, op.Evaluate(ctx))
}

func TestRegexOperator(t *testing.T) {
	ctx := operatorContext()

	op := mustBuild(t, &config.Operator{Type: "regex", Regex: "^pr.d$", Target: "${event.payload.env}"})
	assert.True(t, op.Evaluate(ctx))

	op = mustBuild(t, &config.Operator{Type: "regex", Regex: "^x", Target: "${event.payload.missing}"})
	assert.False(t, op.Evaluate(ctx))

	_, err := buildOperator(&config.Operator{Type: "regex", Regex: "([", Target: "${event.type}"})
	assert.Error(t, err)
}

func TestCompareOperators(t *testing.T) {
	ctx := operatorContext()

	tests := []struct {
		op   string
		a, b value.Value
		want bool
	}{
		{op: "gt", a: value.Text("${event.payload.severity}"), b: value.Number(2), want: true},
		{op: "ge", a: value.Text("${event.payload.severity}"), b: value.Number(3), want: true},
		{op: "lt", a: value.Text("${event.payload.severity}"), b: value.Number(3), want: false},
		{op: "le", a: value.Text("${event.payload.severity}"), b: value.Number(3), want: true},
		// text against number is incomparable, hence false
		{op: "gt", a: value.Text("${event.payload.env}"), b: value.Number(1), want: false},
		{op: "lt", a: value.Text("${event.payload.env}"), b: value.Text("zzz"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			op := mustBuild(t, &config.Operator{Type: tt.op, First: vp(tt.a), Second: vp(tt.b)})
			assert.Equal(t, tt.want, op.Evaluate(ctx))
		})
	}
}

func TestBooleanComposition(t *testing.T) {
	ctx := operatorContext()

	isProd := &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.env}")), Second: vp(value.Text("prod"))}
	isDev := &config.Operator{Type: "equal", First: vp(value.Text("${event.payload.env}")), Second: vp(value.Text("dev"))}

	// empty AND is true, empty OR is false
	assert.True(t, mustBuild(t, &config.Operator{Type: "AND"}).Evaluate(ctx))
	assert.False(t, mustBuild(t, &config.Operator{Type: "OR"}).Evaluate(ctx))

	and := mustBuild(t, &config.Operator{Type: "AND", Operators: []*config.Operator{isProd, isDev}})
	assert.False(t, and.Evaluate(ctx))

	or := mustBuild(t, &config.Operator{Type: "OR", Operators: []*config.Operator{isDev, isProd}})
	assert.True(t, or.Evaluate(ctx))

	// double negation restores the operand
	notNot := mustBuild(t, &config.Operator{
		Type:     "NOT",
		Operator: &config.Operator{Type: "NOT", Operator: isProd},
	})
	assert.True(t, notNot.Evaluate(ctx))
}

func TestBuildOperatorRejectsBadConfig(t *testing.T) {
	_, err := buildOperator(&config.Operator{Type: "frobnicate"})
	assert.Error(t, err)

	_, err = buildOperator(&config.Operator{Type: "equal", First: vp(value.Text("x"))})
	assert.Error(t, err)

	_, err = buildOperator(nil)
	assert.Error(t, err)
}
