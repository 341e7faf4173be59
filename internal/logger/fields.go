package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a call chain.
const (
	FieldRequestID = "request_id"
	FieldSearchID  = "search_id"
	FieldComponent = "component"
	FieldStrategy  = "strategy"
)

// Metric fields, attached per log line through Entry.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldStatus     = "status"
)
