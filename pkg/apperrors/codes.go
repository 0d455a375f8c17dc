package apperrors

// ErrorCode identifies a failure kind independent of its HTTP mapping.
type ErrorCode string

const (
	// System and unknown failures
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business-logic codes
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"

	// Authentication and authorization
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Scene container parsing
	CodeMalformedContainer   ErrorCode = "MALFORMED_CONTAINER"
	CodeUnsupportedStructure ErrorCode = "UNSUPPORTED_STRUCTURE"

	// Blob store gateway
	CodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	CodeStorageRejected    ErrorCode = "STORAGE_REJECTED"
	CodeStorageNotFound    ErrorCode = "STORAGE_NOT_FOUND"
)
