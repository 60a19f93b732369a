package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the taxonomy every synchronous operation surfaces. Status is the
// HTTP status the handler layer should answer with, Code is the stable
// machine-readable kind a client can branch on.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

const (
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeConfiguration    = "configuration_error"
	CodeInsufficientData = "insufficient_data"
	CodeExternalService  = "external_service_error"
	CodeEmptyResult      = "empty_result"
)

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

func Conflict(err error) *Error {
	return New(http.StatusConflict, CodeConflict, err)
}

func Configuration(err error) *Error {
	return New(http.StatusInternalServerError, CodeConfiguration, err)
}

func InsufficientData(err error) *Error {
	return New(http.StatusBadRequest, CodeInsufficientData, err)
}

func ExternalService(err error) *Error {
	return New(http.StatusBadGateway, CodeExternalService, err)
}

func EmptyResult(err error) *Error {
	return New(http.StatusBadGateway, CodeEmptyResult, err)
}

// From pulls the taxonomy out of a wrapped error chain, defaulting to a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}

func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
