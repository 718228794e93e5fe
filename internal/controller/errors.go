package controller

import (
	"errors"
	"net/http"
)

// Code is mapped to an HTTP status by StatusCode
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeUnavailable
)

// Error carries a user facing message next to the underlying error
type Error struct {
	err  error
	msg  string
	code Code
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return "unknown error"
}

// Msg is the message written to the client
func (e *Error) Msg() string {
	return e.msg
}

func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat:
		return http.StatusBadRequest
	case CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewInvalidFormat is returned for bodies that do not decode
func NewInvalidFormat(err error) error {
	return &Error{err: err, msg: "invalid request body", code: CodeInvalidFormat}
}

// NewInvalidInput is returned for well formed requests with bad values
func NewInvalidInput(msg string) error {
	return &Error{err: errors.New(msg), msg: msg, code: CodeInvalidInput}
}

func NewNotFound(msg string) error {
	return &Error{msg: msg, code: CodeNotFound}
}

// NewUnavailable wraps failures of the chain endpoint
func NewUnavailable(err error) error {
	return &Error{err: err, msg: "chain endpoint unavailable", code: CodeUnavailable}
}

func NewInternal(err error) error {
	return &Error{err: err, msg: "Internal server error", code: CodeInternal}
}
