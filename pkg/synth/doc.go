// Package synth builds nested test payloads from flat rule conditions.
//
// Each condition names a dotted field path ("user.profile.age") and a literal
// value as text. Synthesize walks the path, creating intermediate objects as
// needed, and stores the literal at the leaf after coercing it to a number, a
// boolean or, failing both, the original string:
//
//	payload := synth.Synthesize([]domain.Condition{
//	    {Field: "user.age", Operator: ">", Value: "30"},
//	    {Field: "user.name", Operator: "==", Value: "Bob"},
//	})
//	// {"user":{"age":30,"name":"Bob"}}
//
// Conditions are applied in order. A later condition overwrites an earlier
// leaf at the same path, and replaces a scalar found where it needs an object.
package synth
