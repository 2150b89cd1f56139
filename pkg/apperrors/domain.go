package apperrors

import "net/http"

// Factories for recurring domain errors.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and
// friends) into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrLimitExceeded signals a tier quota overflow. The HTTP mapping is 403:
// the request is understood but the plan does not allow it.
func ErrLimitExceeded(domain, message string) *AppError {
	return New(CodeLimitExceeded, domain, message, http.StatusForbidden)
}

// ErrDependencyFailure hides gateway/database causes behind a generic 500.
func ErrDependencyFailure(err error, domain string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, "Service temporarily unavailable", http.StatusInternalServerError)
}

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)
