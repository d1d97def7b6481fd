// Package errors attaches codes to errors. Messages keep the stack
// recorded by github.com/pkg/errors.
package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

type Code int

const CodeSegment = 1000

const (
	CodeGeneral Code = (iota + 1) * CodeSegment
	CodeServer
	CodeStorage
	CodeVote
	CodeCritical
)

const Success Code = 0

const (
	UnknownError Code = CodeGeneral + iota
	IllegalArgumentError
	UnsupportedError
	InvalidStateError
	NotFoundError
	TimeoutError
	InterruptedError
)

// Codes reported by vote authentication and dispatch.
const (
	InvalidSignatureError Code = CodeVote + iota
	SignerMismatchError
	UnauthorizedError
	StaleOrFutureNonceError
	UnknownProposalError
	ForwardingError
	DuplicateIDError
	OverflowError
)

const (
	CriticalUnknownError Code = CodeCritical + iota
	CriticalIOError
	CriticalFormatError
)

var codeNames = map[Code]string{}

// register names the code and returns its sentinel.
func register(c Code, name string) *baseError {
	codeNames[c] = name
	return NewBase(c, name)
}

var (
	ErrUnknown         = register(UnknownError, "UnknownError")
	ErrIllegalArgument = register(IllegalArgumentError, "IllegalArgument")
	ErrUnsupported     = register(UnsupportedError, "Unsupported")
	ErrInvalidState    = register(InvalidStateError, "InvalidState")
	ErrNotFound        = register(NotFoundError, "NotFound")
	ErrTimeout         = register(TimeoutError, "Timeout")
	ErrInterrupted     = register(InterruptedError, "Interrupted")

	ErrInvalidSignature   = register(InvalidSignatureError, "InvalidSignature")
	ErrSignerMismatch     = register(SignerMismatchError, "SignerMismatch")
	ErrUnauthorized       = register(UnauthorizedError, "Unauthorized")
	ErrStaleOrFutureNonce = register(StaleOrFutureNonceError, "StaleOrFutureNonce")
	ErrUnknownProposal    = register(UnknownProposalError, "UnknownProposal")
	ErrForwarding         = register(ForwardingError, "ForwardingError")
	ErrDuplicateID        = register(DuplicateIDError, "DuplicateId")
	ErrOverflow           = register(OverflowError, "Overflow")

	ErrCriticalUnknown = register(CriticalUnknownError, "CriticalUnknown")
	ErrCriticalIO      = register(CriticalIOError, "CriticalIO")
	ErrCriticalFormat  = register(CriticalFormatError, "CriticalFormat")
)

func init() {
	codeNames[Success] = "Success"
}

// String returns the symbolic name of the code, or E%04d for
// unregistered codes.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("E%04d", int(c))
}

func (c Code) inSegment(base Code) bool {
	return c >= base && c < base+CodeSegment
}

// IsVoteCode returns true for the codes in the vote segment.
func IsVoteCode(c Code) bool {
	return c.inSegment(CodeVote)
}

func IsCriticalCode(c Code) bool {
	return c.inSegment(CodeCritical)
}

func IsCritical(e error) bool {
	return IsCriticalCode(CodeOf(e))
}

func (c Code) New(msg string) error {
	return Errorc(c, msg)
}

func (c Code) Errorf(f string, args ...interface{}) error {
	return Errorcf(c, f, args...)
}

func (c Code) Wrap(e error, msg string) error {
	return Wrapc(e, c, msg)
}

func (c Code) Wrapf(e error, f string, args ...interface{}) error {
	return Wrapcf(e, c, f, args...)
}

func (c Code) AttachTo(e error) error {
	return WithCode(e, c)
}

func (c Code) Equals(e error) bool {
	return e != nil && CodeOf(e) == c
}

// New makes an error with a stack but without any code.
func New(msg string) error {
	return errors.New(msg)
}

func Errorf(f string, args ...interface{}) error {
	return errors.Errorf(f, args...)
}

func WithStack(e error) error {
	return errors.WithStack(e)
}

// baseError has a code and a message without stack. It's used for
// sentinel values.
type baseError struct {
	code Code
	msg  string
}

func NewBase(code Code, msg string) *baseError {
	return &baseError{code: code, msg: msg}
}

func (e *baseError) Error() string {
	return e.msg
}

func (e *baseError) ErrorCode() Code {
	return e.code
}

func (e *baseError) Format(f fmt.State, _ rune) {
	fmt.Fprintf(f, "E%04d:%s", int(e.code), e.msg)
}

// Is makes errors.Is(err, ErrXXX) succeed for any error carrying the
// same code.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	return ok && t.code == e.code
}

func (e *baseError) Equals(err error) bool {
	return CodeOf(err) == e.code
}

// codedError is a message with a stack, an optional code and an optional
// cause. The code is Success if the error only adds a message.
type codedError struct {
	code   Code
	msg    error
	origin error

	// attached is set if msg is origin itself, so there's nothing to
	// print for the cause.
	attached bool
}

func (e *codedError) Error() string {
	return e.msg.Error()
}

func (e *codedError) ErrorCode() Code {
	return e.code
}

func (e *codedError) Unwrap() error {
	return e.origin
}

func (e *codedError) Format(f fmt.State, c rune) {
	prefix := ""
	if e.code != Success {
		prefix = fmt.Sprintf("E%04d:", int(e.code))
	}
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "%s%+v", prefix, e.msg)
		if e.origin != nil && !e.attached {
			fmt.Fprintf(f, "\nWrapping %+v", e.origin)
		}
		return
	}
	fmt.Fprint(f, prefix, e.msg.Error())
}

func Errorc(code Code, msg string) error {
	return &codedError{code: code, msg: errors.New(msg)}
}

func Errorcf(code Code, f string, args ...interface{}) error {
	return &codedError{code: code, msg: errors.Errorf(f, args...)}
}

// WithCode returns err with the code. The code of err, if any, is hidden
// by the new one.
func WithCode(err error, code Code) error {
	if err == nil {
		return nil
	}
	if _, ok := CoderOf(err); ok {
		return Wrapc(err, code, err.Error())
	}
	return &codedError{code: code, msg: err, origin: err, attached: true}
}

// Wrap adds the message to e, keeping the code of e.
func Wrap(e error, msg string) error {
	return &codedError{msg: errors.New(msg), origin: e}
}

func Wrapf(e error, f string, args ...interface{}) error {
	return &codedError{msg: errors.Errorf(f, args...), origin: e}
}

func Wrapc(e error, c Code, msg string) error {
	return &codedError{code: c, msg: errors.New(msg), origin: e}
}

func Wrapcf(e error, c Code, f string, args ...interface{}) error {
	return &codedError{code: c, msg: errors.Errorf(f, args...), origin: e}
}

type ErrorCoder interface {
	error
	ErrorCode() Code
}

func hasCode(err error) bool {
	if ce, ok := err.(*codedError); ok {
		return ce.code != Success
	}
	_, ok := err.(ErrorCoder)
	return ok
}

// CoderOf returns the first error in the chain which has a code.
func CoderOf(e error) (ErrorCoder, bool) {
	if c := FindCause(e, hasCode); c != nil {
		return c.(ErrorCoder), true
	}
	return nil, false
}

func CodeOf(e error) Code {
	if e == nil {
		return Success
	}
	if coder, ok := CoderOf(e); ok {
		return coder.ErrorCode()
	}
	return UnknownError
}

// Unwrap returns the cause of err, following both Unwrap and Cause.
func Unwrap(err error) error {
	switch obj := err.(type) {
	case interface{ Unwrap() error }:
		return obj.Unwrap()
	case interface{ Cause() error }:
		return obj.Cause()
	}
	return nil
}

// Is checks whether err is caused by the target.
func Is(err, target error) bool {
	if target == nil {
		return err == nil
	}
	comparable := reflect.TypeOf(target).Comparable()
	for ; err != nil; err = Unwrap(err) {
		if comparable && err == target {
			return true
		}
		if x, ok := err.(interface{ Is(error) bool }); ok && x.Is(target) {
			return true
		}
	}
	return false
}

// FindCause returns the first error in the chain satisfying cb.
func FindCause(err error, cb func(err error) bool) error {
	for ; err != nil; err = Unwrap(err) {
		if cb(err) {
			return err
		}
	}
	return nil
}

func ToString(e error) string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v", e)
}
