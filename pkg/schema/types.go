package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "number").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// NumberType validates any numeric value. Synthesized payloads carry float64.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	default:
		return fmt.Errorf("expected number, got %T", value)
	}
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling and coercion)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// ObjectType validates nested mappings.
type ObjectType struct{}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	if _, ok := value.(map[string]any); !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Number creates a numeric type validator.
func Number() Type { return &NumberType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Object creates a nested mapping validator.
func Object() Type { return &ObjectType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a string type name to a Type.
// Supports "string", "number" (alias "float"), "int", "bool", "object" and slices like "[string]".
func ParseType(typeStr string) (Type, error) {
	typeStr = strings.TrimSpace(typeStr)
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "number", "float":
		return Number(), nil
	case "int":
		return Int(), nil
	case "bool", "boolean":
		return Bool(), nil
	case "object":
		return Object(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of field paths to type strings into a Schema.
// Example: {"user.age": "number", "user.active": "bool"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
