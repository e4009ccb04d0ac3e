package utils

import (
	"errors"
	"net/http"
)

// AppError is a typed service failure carrying an HTTP-status-like code and a
// human readable message. Services return it for domain failures; handlers
// translate it into the response envelope. Infrastructure failures are
// wrapped with fmt.Errorf instead and surface as 500s.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message}
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message}
}

// AsAppError unwraps err into an AppError if one is in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsCode(err error, code int) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
