package internal

import "errors"

// ErrNotFound marks a missing label, assignment or exercise log. Repositories
// return it (possibly wrapped); handlers map it to a 404.
var ErrNotFound = errors.New("not found")

type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func NewFieldError(code int, msg string, fields map[string]string) *AppError {
	return &AppError{Code: code, Message: msg, Fields: fields}
}
