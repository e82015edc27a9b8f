// Package schema validates nested payloads against a small type system.
//
// A Schema maps dotted field paths to types (string, number, int, bool,
// object, and slices of those). Rules declare one to describe the input they
// expect; a synthesized payload is checked against it before evaluation.
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "user.age":    "number",
//	    "user.active": "bool",
//	})
//
//	data := map[string]any{
//	    "user": map[string]any{"age": 30.0, "active": true},
//	}
//
//	if err := schema.Validate(s, data); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each failure
//	    }
//	}
//
// Custom validators can be registered for domain-specific checks:
//
//	positive := schema.Custom("positive", func(v any) error {
//	    f, ok := v.(float64)
//	    if !ok || f <= 0 {
//	        return fmt.Errorf("must be a positive number")
//	    }
//	    return nil
//	})
//
// This package has no dependencies beyond the Go standard library.
package schema
