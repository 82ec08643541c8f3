package apperrors

import "fmt"

// AppError is the single error type the HTTP boundary knows how to shape.
// Details is optional structured context (field names, remaining attempts).
type AppError struct {
	Message    string
	StatusCode int
	Details    interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

func New(message string, statusCode int, details interface{}) *AppError {
	return &AppError{Message: message, StatusCode: statusCode, Details: details}
}

// NewValidation covers malformed, missing, or duplicate input. Rate-limit
// rejections use the same shape (429 is reserved but not emitted).
func NewValidation(message string, details ...interface{}) *AppError {
	var d interface{}
	if len(details) > 0 {
		d = details[0]
	}
	return &AppError{Message: message, StatusCode: 400, Details: d}
}

// NewAuth covers identity and credential mismatches.
func NewAuth(message string) *AppError {
	return &AppError{Message: message, StatusCode: 401}
}

// NewForbidden covers valid identities lacking access.
func NewForbidden(message string) *AppError {
	return &AppError{Message: message, StatusCode: 403}
}

func NewNotFound(message string) *AppError {
	return &AppError{Message: message, StatusCode: 404}
}

// NewDatabase wraps persistence failures so callers do not leak driver errors.
func NewDatabase(err error) *AppError {
	return &AppError{
		Message:    "Database Error",
		StatusCode: 500,
		Details:    fmt.Sprintf("%v", err),
	}
}
