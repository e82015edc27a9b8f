package schema

import (
	"strings"
	"testing"
)

func TestValidate_NestedSuccess(t *testing.T) {
	s := Schema{
		"user.age":    Number(),
		"user.name":   String(),
		"user":        Object(),
		"flags.admin": Bool(),
	}

	data := map[string]any{
		"user":  map[string]any{"age": 30.0, "name": "Bob"},
		"flags": map[string]any{"admin": false},
	}

	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingAndMismatchedOrdered(t *testing.T) {
	s := Schema{
		"user.name": String(),
		"user.age":  Number(),
		"total":     Number(),
	}

	data := map[string]any{
		"user":  map[string]any{"age": "thirty"},
		"total": 10.0,
	}

	err := Validate(s, data)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	errs := ValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}

	first := errs[0].(*ValidationError)
	if first.Key != "user.age" || first.Value != "thirty" {
		t.Errorf("first error = %+v, want user.age mismatch", first)
	}
	second := errs[1].(*ValidationError)
	if second.Key != "user.name" || second.Reason != "required" {
		t.Errorf("second error = %+v, want user.name required", second)
	}
}

func TestValidate_PathThroughScalar(t *testing.T) {
	s := Schema{"user.age": Number()}
	data := map[string]any{"user": "Bob"}

	errs := ValidationErrors(Validate(s, data))
	if len(errs) != 1 || errs[0].(*ValidationError).Reason != "required" {
		t.Errorf("got %v, want one required error", errs)
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(nil, map[string]any{"x": 1}); err != nil {
		t.Errorf("nil schema should pass, got %v", err)
	}
	if err := Validate(Schema{}, nil); err != nil {
		t.Errorf("empty schema should pass, got %v", err)
	}
}

func TestValidationError_String(t *testing.T) {
	e := &ValidationError{Key: "user.age", Reason: "required"}
	if got := e.Error(); got != `field "user.age": required` {
		t.Errorf("Error() = %q", got)
	}

	e = &ValidationError{Key: "n", Reason: "expected number, got string", Value: "x"}
	if !strings.Contains(e.Error(), "(got string)") {
		t.Errorf("Error() = %q, want type suffix", e.Error())
	}
}

func TestAggregateError_String(t *testing.T) {
	single := &AggregateError{Errors: []error{&ValidationError{Key: "a", Reason: "required"}}}
	if single.Error() != `field "a": required` {
		t.Errorf("single Error() = %q", single.Error())
	}

	multi := &AggregateError{Errors: []error{
		&ValidationError{Key: "a", Reason: "required"},
		&ValidationError{Key: "b", Reason: "required"},
	}}
	if !strings.HasPrefix(multi.Error(), "2 validation errors:") {
		t.Errorf("multi Error() = %q", multi.Error())
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": map[string]any{"c": 1.0}}}

	if v, ok := Lookup(data, "a.b.c"); !ok || v != 1.0 {
		t.Errorf("Lookup(a.b.c) = %v, %v", v, ok)
	}
	if _, ok := Lookup(data, "a.x"); ok {
		t.Error("Lookup(a.x) should be absent")
	}
	if _, ok := Lookup(data, "a.b.c.d"); ok {
		t.Error("Lookup through scalar should be absent")
	}
}

func TestValidationErrors_NonAggregate(t *testing.T) {
	if errs := ValidationErrors(nil); errs != nil {
		t.Errorf("ValidationErrors(nil) = %v", errs)
	}
}
