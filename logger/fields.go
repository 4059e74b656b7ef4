package logger

import (
	"time"
)

// Standard field keys used across the completion client.
const (
	FieldService     = "service"
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldModel       = "model"
	FieldMode        = "mode"
	FieldOperation   = "operation"
	FieldOperationID = "operation_id"
	FieldPollAttempt = "poll_attempt"
	FieldStatus      = "status"
	FieldGenerations = "generations"
	FieldInputTokens = "input_tokens"
	FieldOutTokens   = "output_tokens"
	FieldPayload     = "payload"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	log.Info("done", logger.Fields("model", "yandexgpt", "generations", 2))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}
