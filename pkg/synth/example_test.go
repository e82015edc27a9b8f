package synth_test

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/synth"
)

func ExampleSynthesize() {
	payload := synth.Synthesize([]domain.Condition{
		{Field: "user.age", Operator: ">=", Value: "30"},
		{Field: "user.name", Operator: "==", Value: "Bob"},
		{Field: "user.verified", Operator: "==", Value: "true"},
	})

	raw, _ := json.Marshal(payload)
	fmt.Println(string(raw))
	// Output:
	// {"user":{"age":30,"name":"Bob","verified":true}}
}
