package shared

import (
	"errors"
	"net/http"
)

// AppError is the outward failure shape every handler returns: an HTTP status,
// a human-readable message and optional detail data. The wrapped error keeps
// the original cause for errors.Is checks.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
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

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

// NewPaymentRequiredError reports a failed affordability gate.
func NewPaymentRequiredError(err error, message string) *AppError {
	return NewAppError(http.StatusPaymentRequired, err, message)
}

// NewBadGatewayError reports a content-generation failure surfaced upstream.
func NewBadGatewayError(err error, message string) *AppError {
	return NewAppError(http.StatusBadGateway, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
