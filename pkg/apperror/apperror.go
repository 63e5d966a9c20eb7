package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuth             = errors.New("authentication failed")
	ErrImportValidation = errors.New("import rejected")
	ErrImport           = errors.New("import failed")
	ErrSubmission       = errors.New("submission failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

// AppError carries the user-visible Message separately from the cause so
// handlers can log the whole chain and render only the message.
type AppError struct {
	Kind    error
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.Kind.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.Kind.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(kind error, msg, details string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Details: details, Err: err}
}

func NewAuth(msg string, err error) *AppError {
	return New(ErrAuth, msg, "remote auth call rejected", err)
}

func NewImportValidation(msg, details string) *AppError {
	return New(ErrImportValidation, msg, details, nil)
}

func NewImport(details string, err error) *AppError {
	return New(ErrImport, "Error processing file. Please try again.", details, err)
}

func NewSubmission(details string, err error) *AppError {
	return New(ErrSubmission, "Failed to generate and download resume.", details, err)
}

func NewInvalidInput(msg, details string, err error) *AppError {
	return New(ErrInvalidInput, msg, details, err)
}

func NewInternal(details string, err error) *AppError {
	return New(ErrInternal, "Something went wrong. Please try again.", details, err)
}

// UserMessage returns the message to show for err, or fallback when err is not
// an AppError.
func UserMessage(err error, fallback string) string {
	var ae *AppError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrImportValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrSubmission):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
