package logger

import "time"

// Field keys shared by the request engine, the REST layer and the mock API.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldService   = "service"
	FieldPattern   = "pattern"
	FieldTransport = "transport"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing odd value are dropped.
//
//	logger.Debug("request resolved", logger.Fields(logger.FieldStatus, 200))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 1; i < len(kvs); i += 2 {
		key, ok := kvs[i-1].(string)
		if !ok {
			continue
		}
		m[key] = kvs[i]
	}
	return m
}

// MergeWithError sets FieldError on fields, allocating when nil. A nil err
// leaves fields unchanged.
func MergeWithError(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	if err != nil {
		fields[FieldError] = err.Error()
	}
	return fields
}

// MergeWithDuration sets FieldDuration, in milliseconds, on fields.
func MergeWithDuration(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
