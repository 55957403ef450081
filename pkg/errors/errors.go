package errors

import "errors"

// Well-known error codes shared across domains.
const (
	CodeInvalidInput = "invalid_input"
	CodeConfig       = "config_error"
	CodeEmbedding    = "embedding_error"
	CodeStore        = "store_error"
	CodeLLM          = "llm_error"
)

// AppError carries a stable machine-readable code alongside the message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError without a cause.
func New(code, message string) error {
	return &AppError{Code: code, Message: message}
}

// Wrap builds an AppError around an optional cause.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether err (or anything it wraps) carries the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the code from an AppError chain, or "" when absent.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
