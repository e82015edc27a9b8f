package synth

import "github.com/aretw0/ruleflow/pkg/domain"

// Synthesize builds a fresh payload from conditions, applied in order.
// Conditions with an empty field are skipped. The operator is not interpreted.
func Synthesize(conditions []domain.Condition) *Object {
	root := NewObject()
	for _, c := range conditions {
		if c.Field == "" {
			continue
		}
		root.SetPath(c.Field, Coerce(c.Value))
	}
	return root
}
