package domain

// Decision branch handles carried by WorkflowEdge.SourceHandle.
const (
	HandleTrue  = "true"
	HandleFalse = "false"
)

// DataKey is the envelope key under which a synthesized payload is sent for evaluation.
const DataKey = "data"
