package synth_test

import (
	"testing"

	"github.com/aretw0/ruleflow/pkg/synth"
	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want synth.Value
	}{
		{"42", synth.Number(42)},
		{"-3.5", synth.Number(-3.5)},
		{"1e3", synth.Number(1000)},
		{" 7 ", synth.Number(7)},
		{"0", synth.Number(0)},
		{"true", synth.Bool(true)},
		{"false", synth.Bool(false)},
		{"True", synth.String("True")},
		{"FALSE", synth.String("FALSE")},
		{"", synth.String("")},
		{"   ", synth.String("   ")},
		{"Inf", synth.String("Inf")},
		{"NaN", synth.String("NaN")},
		{"1e400", synth.String("1e400")},
		{"42abc", synth.String("42abc")},
		{"Bob", synth.String("Bob")},
		{"0x1p-2", synth.String("0x1p-2")},
		{"1_000", synth.String("1_000")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, synth.Coerce(tt.in))
		})
	}
}

func TestValue_Interface(t *testing.T) {
	assert.Equal(t, 42.0, synth.Number(42).Interface())
	assert.Equal(t, true, synth.Bool(true).Interface())
	assert.Equal(t, "x", synth.String("x").Interface())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "number", synth.KindNumber.String())
	assert.Equal(t, "bool", synth.KindBool.String())
	assert.Equal(t, "string", synth.KindString.String())
}
