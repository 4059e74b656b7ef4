// Package errors provides the failure taxonomy of the completion client.
// Every failure surfaced to a caller is an *AppError carrying one of the
// codes in codes.go, so callers can tell "the provider is unhappy" from
// "we don't understand the provider's shape".
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable is a hint for callers. It is never acted on internally.
	Retryable bool `json:"retryable"`
	// Status is the HTTP status code for provider errors, 0 otherwise.
	Status int `json:"status,omitempty"`
	// Body is the raw provider response body for provider errors.
	Body string `json:"body,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// MissingCredential reports that no usable credential is configured for the call.
func MissingCredential(reason string) *AppError {
	if reason == "" {
		reason = "IAM token or API key is not set"
	}
	return New(ErrCodeMissingCredential, reason)
}

// InvalidConfig reports a configuration field that failed validation.
func InvalidConfig(field, reason string) *AppError {
	e := New(ErrCodeInvalidConfig, reason)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// BadRequest reports a 4xx response. The request is considered the caller's fault.
func BadRequest(status int, body []byte) *AppError {
	e := New(ErrCodeBadRequest, fmt.Sprintf("bad request: %s", string(body)))
	e.Status = status
	e.Body = string(body)
	return e
}

// CompletionFailure reports any non-200 response that is not a 4xx.
func CompletionFailure(status int, body []byte) *AppError {
	e := New(ErrCodeCompletionFailed, fmt.Sprintf("server error: %s", string(body)))
	e.Status = status
	e.Body = string(body)
	return e
}

// TransportFailure reports a connection-level failure.
func TransportFailure(cause error) *AppError {
	return New(ErrCodeTransportFailed, "request failed").WithCause(cause)
}

// OperationFailure reports a failure while polling operation id.
func OperationFailure(operationID string, cause error) *AppError {
	e := New(ErrCodeOperationFailed, "operation polling failed").WithCause(cause)
	if operationID != "" {
		e.WithDetail("operation_id", operationID)
	}
	return e
}

// Cancelled reports that the caller's context ended before the call finished.
func Cancelled(cause error) *AppError {
	return New(ErrCodeCancelled, "call cancelled").WithCause(cause)
}

// MalformedResponse reports a provider response that could not be decoded.
func MalformedResponse(detail string) *AppError {
	return New(ErrCodeMalformedResponse, detail)
}

// UnsupportedMessageKind reports a chat message variant with no wire mapping.
func UnsupportedMessageKind(tag string) *AppError {
	return New(ErrCodeUnsupportedMessageKind, fmt.Sprintf("message type %s is not supported", tag)).
		WithDetail("tag", tag)
}

// UnknownRole reports a wire message whose role has no chat message mapping.
func UnknownRole(role string, raw any) *AppError {
	return New(ErrCodeUnknownRole, fmt.Sprintf("unknown role %q", role)).
		WithDetail("role", role).
		WithDetail("raw", raw)
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if e, ok := AsAppError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func IsMissingCredential(err error) bool { return HasCode(err, ErrCodeMissingCredential) }
func IsInvalidConfig(err error) bool     { return HasCode(err, ErrCodeInvalidConfig) }
func IsBadRequest(err error) bool        { return HasCode(err, ErrCodeBadRequest) }
func IsCompletionFailure(err error) bool { return HasCode(err, ErrCodeCompletionFailed) }
func IsTransportFailure(err error) bool  { return HasCode(err, ErrCodeTransportFailed) }
func IsOperationFailure(err error) bool  { return HasCode(err, ErrCodeOperationFailed) }
func IsCancelled(err error) bool         { return HasCode(err, ErrCodeCancelled) }
func IsMalformedResponse(err error) bool { return HasCode(err, ErrCodeMalformedResponse) }
func IsUnknownRole(err error) bool       { return HasCode(err, ErrCodeUnknownRole) }

// IsUnsupportedMessageKind reports whether err is an UNSUPPORTED_MESSAGE_KIND error.
func IsUnsupportedMessageKind(err error) bool {
	return HasCode(err, ErrCodeUnsupportedMessageKind)
}

// IsRetryable reports whether err is an AppError flagged retryable.
func IsRetryable(err error) bool {
	e, ok := AsAppError(err)
	return ok && e.Retryable
}
