package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors, raised before any network I/O.
const (
	// ErrCodeMissingCredential indicates no usable API key or IAM token.
	ErrCodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	// ErrCodeInvalidConfig indicates a configuration value failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Provider errors
const (
	// ErrCodeBadRequest indicates the provider rejected the request (HTTP 4xx).
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	// ErrCodeCompletionFailed indicates a server-side or unexpected HTTP status.
	ErrCodeCompletionFailed ErrorCode = "COMPLETION_FAILED"
)

// Transport errors
const (
	// ErrCodeTransportFailed indicates a connection-level failure (refused, DNS, TLS, timeout).
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"
	// ErrCodeOperationFailed indicates a failure while polling an asynchronous operation.
	ErrCodeOperationFailed ErrorCode = "OPERATION_FAILED"
	// ErrCodeCancelled indicates the caller cancelled the call or its deadline passed.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Decoding errors. These point at a codec bug rather than a runtime problem.
const (
	// ErrCodeMalformedResponse indicates the provider response has an unexpected shape.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeUnsupportedMessageKind indicates a chat message variant with no wire mapping.
	ErrCodeUnsupportedMessageKind ErrorCode = "UNSUPPORTED_MESSAGE_KIND"
	// ErrCodeUnknownRole indicates a wire message with an unrecognised role.
	ErrCodeUnknownRole ErrorCode = "UNKNOWN_ROLE"
)

// retryableCodes marks failures a caller may reasonably retry.
// Nothing in this module retries on its own.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransportFailed:  true,
	ErrCodeCompletionFailed: true,
	ErrCodeOperationFailed:  true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
