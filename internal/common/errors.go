package common

import (
	"encoding/json"
	"net/http"
)

// AppError carries the HTTP status a failure maps to together with a
// client-facing message and the underlying cause.
type AppError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Err        error  `json:"-"`
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

func (e *AppError) Marshal() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return b
}

func newAppError(code int, err error, msg string) *AppError {
	return &AppError{
		StatusCode: code,
		Message:    msg,
		Err:        err,
	}
}

func InvalidArgumentError(err error, msg string) *AppError {
	return newAppError(http.StatusBadRequest, err, msg)
}

func UnauthorizedError(err error, msg string) *AppError {
	return newAppError(http.StatusUnauthorized, err, msg)
}

func ForbiddenError(err error, msg string) *AppError {
	return newAppError(http.StatusForbidden, err, msg)
}

func NotFoundError(err error, msg string) *AppError {
	return newAppError(http.StatusNotFound, err, msg)
}

func ConflictError(err error, msg string) *AppError {
	return newAppError(http.StatusConflict, err, msg)
}

func SystemError(err error) *AppError {
	return newAppError(http.StatusInternalServerError, err, "internal error")
}

func DataBaseError(err error) *AppError {
	return newAppError(http.StatusInternalServerError, err, "storage unavailable")
}
