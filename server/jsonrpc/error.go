package jsonrpc

import (
	"fmt"

	"github.com/icon-project/govote/common/errors"
)

const (
	// ErrorCodeParse is parse error code.
	ErrorCodeParse ErrorCode = -32700
	// ErrorCodeInvalidRequest is invalid request error code.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound is method not found error code.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams is invalid params error code.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternal is internal error code.
	ErrorCodeInternal ErrorCode = -32603
	// ErrorCodeServer is the base of voting error codes.
	ErrorCodeServer ErrorCode = -32000
	// ErrorCodeNotFound is used for queries of unknown entities.
	ErrorCodeNotFound ErrorCode = -32100
)

type ErrorCode int

var errorMessages = map[ErrorCode]string{
	ErrorCodeParse:          "Parse error",
	ErrorCodeInvalidRequest: "Invalid Request",
	ErrorCodeMethodNotFound: "Method not found",
	ErrorCodeInvalidParams:  "Invalid params",
	ErrorCodeInternal:       "Internal error",
	ErrorCodeNotFound:       "Not found",
}

func (c ErrorCode) New(msg string, data ...interface{}) *Error {
	e := &Error{
		Code:    c,
		Message: msg,
	}
	if len(data) > 0 {
		e.Data = data[0]
	}
	return e
}

func (c ErrorCode) Errorf(f string, args ...interface{}) *Error {
	return c.New(fmt.Sprintf(f, args...))
}

// Wrap makes an error with the message of the code. The message of err
// is included as data only if debug is true.
func (c ErrorCode) Wrap(err error, debug bool) *Error {
	msg, ok := errorMessages[c]
	if !ok {
		msg = err.Error()
	}
	e := &Error{
		Code:    c,
		Message: msg,
	}
	if debug {
		e.Data = fmt.Sprintf("%+v", err)
	}
	return e
}

type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc: code: %d, message: %s, data: %+v", e.Code, e.Message, e.Data)
}

func newError(code ErrorCode, msg []string) *Error {
	e := &Error{
		Code:    code,
		Message: errorMessages[code],
	}
	if len(msg) > 0 {
		e.Message = msg[0]
	}
	return e
}

// ErrParse returns parse error.
func ErrParse(msg ...string) *Error {
	return newError(ErrorCodeParse, msg)
}

// ErrInvalidRequest returns invalid request error.
func ErrInvalidRequest(msg ...string) *Error {
	return newError(ErrorCodeInvalidRequest, msg)
}

// ErrMethodNotFound returns method not found error.
func ErrMethodNotFound(msg ...string) *Error {
	return newError(ErrorCodeMethodNotFound, msg)
}

// ErrInvalidParams returns invalid params error.
func ErrInvalidParams(msg ...string) *Error {
	return newError(ErrorCodeInvalidParams, msg)
}

// ErrInternal returns internal error.
func ErrInternal(msg ...string) *Error {
	return newError(ErrorCodeInternal, msg)
}

// CodeOf returns the JSON-RPC error code for the coded error. Voting errors
// are mapped to ErrorCodeServer minus their offset in the voting segment.
func CodeOf(c errors.Code) ErrorCode {
	switch {
	case errors.IsVoteCode(c):
		return ErrorCodeServer - ErrorCode(c-errors.CodeVote)
	case c == errors.IllegalArgumentError:
		return ErrorCodeInvalidParams
	case c == errors.NotFoundError:
		return ErrorCodeNotFound
	default:
		return ErrorCodeInternal
	}
}

// ErrorOf converts the error to the JSON-RPC error.
func ErrorOf(err error, debug bool) *Error {
	if je, ok := err.(*Error); ok {
		return je
	}
	c := errors.CodeOf(err)
	jc := CodeOf(c)
	if jc == ErrorCodeInternal {
		return jc.Wrap(err, debug)
	}
	return &Error{
		Code:    jc,
		Message: c.String(),
		Data:    err.Error(),
	}
}
