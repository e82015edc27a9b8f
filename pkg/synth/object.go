package synth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// entry holds either a leaf Value or a nested Object.
type entry struct {
	leaf  Value
	child *Object
}

// Object is an insertion-ordered mapping from keys to leaf values or nested objects.
// The zero value is not usable; call NewObject.
type Object struct {
	keys   []string
	fields map[string]*entry
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{fields: make(map[string]*entry)}
}

// Len returns the number of keys at this level.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys at this level in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Child returns the object stored at key, creating it when the key is absent.
// A leaf already stored at key is replaced by a new empty object.
func (o *Object) Child(key string) *Object {
	e, ok := o.fields[key]
	if !ok {
		e = &entry{}
		o.fields[key] = e
		o.keys = append(o.keys, key)
	}
	if e.child == nil {
		e.child = NewObject()
		e.leaf = Value{}
	}
	return e.child
}

// Set stores v at key, overwriting whatever was there (leaf or object).
// The key keeps its original position when overwritten.
func (o *Object) Set(key string, v Value) {
	e, ok := o.fields[key]
	if !ok {
		e = &entry{}
		o.fields[key] = e
		o.keys = append(o.keys, key)
	}
	e.leaf = v
	e.child = nil
}

// SetPath walks the dotted path, creating intermediate objects, and stores v at the leaf.
// An empty path is ignored.
func (o *Object) SetPath(path string, v Value) {
	if path == "" {
		return
	}
	segments := strings.Split(path, ".")

	current := o
	for _, seg := range segments[:len(segments)-1] {
		current = current.Child(seg)
	}
	current.Set(segments[len(segments)-1], v)
}

// Lookup resolves a dotted path. It returns a Value or an *Object, and false when absent.
func (o *Object) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")

	current := o
	for i, seg := range segments {
		e, ok := current.fields[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			if e.child != nil {
				return e.child, true
			}
			return e.leaf, true
		}
		if e.child == nil {
			return nil, false
		}
		current = e.child
	}
	return nil, false
}

// Map converts the object into plain Go maps with float64, bool and string leaves.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		e := o.fields[k]
		if e.child != nil {
			out[k] = e.child.Map()
		} else {
			out[k] = e.leaf.Interface()
		}
	}
	return out
}

// MarshalJSON writes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		e := o.fields[k]
		var raw []byte
		if e.child != nil {
			raw, err = e.child.MarshalJSON()
		} else {
			raw, err = e.leaf.MarshalJSON()
		}
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode copies the payload into out (a pointer to a struct or map) using mapstructure.
// Weak typing is enabled so a numeric leaf can fill an int field.
func (o *Object) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(o.Map()); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}
