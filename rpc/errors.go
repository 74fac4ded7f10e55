package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"pantun-api/repository"
)

type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeNotFound           Code = "NOT_FOUND"
	CodeMethodNotSupported Code = "METHOD_NOT_SUPPORTED"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeInternal           Code = "INTERNAL_SERVER_ERROR"
)

var httpStatus = map[Code]int{
	CodeBadRequest:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeMethodNotSupported: http.StatusMethodNotAllowed,
	CodePreconditionFailed: http.StatusPreconditionFailed,
	CodeInternal:           http.StatusInternalServerError,
}

// Error is a procedure failure the caller is allowed to see.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// AsError maps err to an *Error. Anything not already typed becomes an
// opaque INTERNAL_SERVER_ERROR.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, repository.ErrInvalidSampiranCount) {
		return BadRequest("%s", err.Error())
	}
	return &Error{Code: CodeInternal, Message: "internal server error"}
}
