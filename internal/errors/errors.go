package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("User not found")
	// ErrNoteNotFound is returned when a note does not exist for the requesting owner.
	ErrNoteNotFound = errors.New("Note not found")

	// ErrMissingCredential is returned when a protected request carries no bearer token.
	ErrMissingCredential = errors.New("missing session credential")
	// ErrInvalidCredentialFormat is returned when the bearer token cannot be parsed.
	ErrInvalidCredentialFormat = errors.New("malformed session credential")
	// ErrSessionExpired is returned when the bearer token is past its expiry.
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSignature is returned when the bearer token signature does not verify.
	ErrInvalidSignature = errors.New("invalid session signature")

	// ErrInvalidCode is returned when the submitted OTP does not match the pending one.
	ErrInvalidCode = errors.New("Invalid OTP")
	// ErrOTPExpired is returned when the pending OTP is past its expiry.
	ErrOTPExpired = errors.New("OTP expired")
	// ErrDeliveryFailed is returned when the OTP mail could not be sent.
	ErrDeliveryFailed = errors.New("Error sending OTP")

	// ErrInvalidAssertion is returned when a federated identity token fails verification.
	ErrInvalidAssertion = errors.New("invalid identity token")
	// ErrAccountLinkRejected is returned when a federated login would take over an account it cannot prove ownership of.
	ErrAccountLinkRejected = errors.New("account exists and cannot be linked to this identity")

	// ErrValidationFailed is returned when required fields are missing or malformed.
	ErrValidationFailed = errors.New("validation failed")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrNoteNotFound, http.StatusNotFound, "NOTE_NOT_FOUND"},
	{ErrMissingCredential, http.StatusUnauthorized, "MISSING_CREDENTIAL"},
	{ErrInvalidCredentialFormat, http.StatusUnauthorized, "INVALID_CREDENTIAL_FORMAT"},
	{ErrSessionExpired, http.StatusUnauthorized, "SESSION_EXPIRED"},
	{ErrInvalidSignature, http.StatusUnauthorized, "INVALID_SIGNATURE"},
	{ErrInvalidCode, http.StatusBadRequest, "INVALID_CODE"},
	{ErrOTPExpired, http.StatusBadRequest, "OTP_EXPIRED"},
	{ErrDeliveryFailed, http.StatusBadGateway, "DELIVERY_FAILED"},
	{ErrInvalidAssertion, http.StatusUnauthorized, "INVALID_ASSERTION"},
	{ErrAccountLinkRejected, http.StatusConflict, "ACCOUNT_LINK_REJECTED"},
	{ErrValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched with errors.Is; anything unknown becomes an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// IsUnexpected reports whether err falls outside the domain taxonomy.
func IsUnexpected(err error) bool {
	return MapErrorToHTTP(err).StatusCode == http.StatusInternalServerError
}
