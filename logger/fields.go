package logger

// Field keys shared across components so log entries stay queryable.
const (
	FieldComponent = "component"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldNode      = "node"
	FieldKind      = "kind"
	FieldStage     = "stage"
	FieldAttempt   = "attempt"
	FieldRunID     = "run_id"
)

// Fields builds a field map from alternating key-value pairs. Keys that are
// not strings are skipped, as is a trailing key without a value.
//
//	log.Info("node succeeded", logger.Fields(logger.FieldNode, id))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// MergeWithError returns fields with the error recorded under FieldError.
// A nil map is allocated.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
