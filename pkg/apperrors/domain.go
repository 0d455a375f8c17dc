package apperrors

import (
	"net/http"
)

/*
Factories and predeclared variables for the domain errors of the asset
catalog. Repositories return their own sentinel errors; services convert
them here before the transport layer sees them.
*/

// ErrNotFound converts a repository "record not found" into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness conflict into a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// --- Ingestion & files ---

// ErrFileTooLarge - the uploaded container exceeds the per-request limit.
var ErrFileTooLarge = New(
	CodePayloadTooLarge,
	"ingestion",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge, // 413
)

// ErrInvalidFileType - the filename extension is not an accepted scene
// container variant.
var ErrInvalidFileType = New(
	CodeInvalidInput,
	"ingestion",
	"Invalid file type. Only GLB and GLTF files are allowed.",
	http.StatusBadRequest, // 400
)

// ErrEmptyFile - the request carried no file bytes.
var ErrEmptyFile = New(
	CodeInvalidInput,
	"ingestion",
	"No file provided",
	http.StatusBadRequest, // 400
)

// --- Scene container parsing ---

// ErrMalformedContainer - the buffer cannot be decoded as a scene
// container (bad magic/version, truncated chunk, invalid JSON).
func ErrMalformedContainer(err error) *AppError {
	return Wrap(err, CodeMalformedContainer, "parser",
		"File is not a valid scene container", http.StatusUnprocessableEntity)
}

// ErrUnsupportedStructure - the container decoded, but its geometry
// cannot be interpreted (missing required attribute data).
func ErrUnsupportedStructure(err error) *AppError {
	return Wrap(err, CodeUnsupportedStructure, "parser",
		"Scene contains geometry that cannot be interpreted", http.StatusUnprocessableEntity)
}

// --- Blob store gateway ---

// ErrStorageUnavailable - connectivity or credential failure against the
// remote object store.
func ErrStorageUnavailable(err error) *AppError {
	return Wrap(err, CodeStorageUnavailable, "storage",
		"Object storage is unavailable", http.StatusServiceUnavailable)
}

// ErrStorageRejected - the remote store refused the object (quota,
// format policy).
func ErrStorageRejected(err error) *AppError {
	return Wrap(err, CodeStorageRejected, "storage",
		"Object storage rejected the file", http.StatusBadGateway)
}

// ErrStorageNotFound - the addressed object does not exist. Callers on
// the deletion path treat this as non-fatal.
func ErrStorageNotFound(err error) *AppError {
	return Wrap(err, CodeStorageNotFound, "storage",
		"Stored object not found", http.StatusNotFound)
}

// --- Catalog ownership ---

// ErrNotOwner - the authenticated principal does not own the record.
var ErrNotOwner = New(
	CodeForbidden,
	"catalog",
	"You do not have permission to modify this asset",
	http.StatusForbidden, // 403
)

// --- Auth ---

// ErrEmailAlreadyExists - email already registered.
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict, // 409
)

// ErrInvalidCredentials - wrong email or password.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized, // 401
)

// ErrWeakPassword - password below the minimum length.
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest, // 400
)
