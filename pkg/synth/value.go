package synth

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a coerced literal.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Value is a tagged leaf value: exactly one of Number, Bool or Str is meaningful, per Kind.
type Value struct {
	Kind   Kind
	Number float64
	Bool   bool
	Str    string
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// String returns a string Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Coerce infers a Value from its textual form.
// Precedence: a finite number, then exactly "true" or "false", else the text unchanged.
func Coerce(text string) Value {
	if f, ok := parseFinite(text); ok {
		return Number(f)
	}
	switch text {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return String(text)
}

func parseFinite(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	// ParseFloat also accepts hex floats ("0x1p-2") and underscores after a base prefix.
	if trimmed == "" || strings.ContainsAny(trimmed, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Interface returns the value as float64, bool or string.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNumber:
		return v.Number
	case KindBool:
		return v.Bool
	default:
		return v.Str
	}
}

// MarshalJSON encodes the value as a bare JSON number, boolean or string.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) GoString() string {
	return fmt.Sprintf("synth.Value{%s: %v}", v.Kind, v.Interface())
}
