package schema

import (
	"sort"
	"strings"
)

// Schema maps dotted field paths to their expected types.
// Example: {"user.age": Number(), "user.name": String()}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Each key is resolved as a dotted path through nested map[string]any values.
// Returns an *AggregateError with all failures found, ordered by field path.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	paths := make([]string, 0, len(schema))
	for path := range schema {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var errs []error
	for _, path := range paths {
		value, exists := Lookup(data, path)
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    path,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := schema[path].Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    path,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// Lookup resolves a dotted path through nested maps.
func Lookup(data map[string]any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		value, ok := current[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return value, true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}
