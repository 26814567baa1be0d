package response

import "fmt"

// AppError is the error type returned by the service layer
type AppError struct {
	Code    string
	Message string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError creates a VALIDATION_ERROR AppError
func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

// NewNotFoundError creates a NOT_FOUND AppError
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, "")
}

// NewForbiddenError creates a FORBIDDEN AppError
func NewForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, "")
}

// NewBadRequestError creates a BAD_REQUEST AppError
func NewBadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, "")
}

// NewInternalError wraps an unexpected failure
func NewInternalError(message string, err error) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewAppError(ErrCodeInternal, message, details)
}
