// Package apperror normalizes failures from the remote data service into a
// closed set of kinds, each carrying a user-facing message.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The set is closed; anything unrecognized is Unknown.
type Kind string

const (
	KindCredential Kind = "credential"
	KindNotFound   Kind = "not_found"
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindUnknown    Kind = "unknown"
)

var (
	ErrCredential = errors.New("credential error")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network error")
	ErrValidation = errors.New("validation error")
	ErrUnknown    = errors.New("unknown error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindCredential:
		return ErrCredential
	case KindNotFound:
		return ErrNotFound
	case KindNetwork:
		return ErrNetwork
	case KindValidation:
		return ErrValidation
	}
	return ErrUnknown
}

// Error is a normalized failure. Message is safe to show to the user; Code is
// the provider's raw code when there was one; Err is the underlying cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// New builds an Error of the given kind.
func New(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: cause}
}

// NotFound reports a missing document or post.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation reports a rejected input.
func Validation(message string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: cause}
}

// Network reports a transport-level failure.
func Network(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: cause}
}

// Wrap normalizes err. An *Error anywhere in the chain is returned as is;
// anything else becomes KindUnknown with fallback as its message when err has
// no usable text of its own.
func Wrap(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return &Error{Kind: KindUnknown, Message: msg, Err: err}
}

// KindOf returns the kind of err, KindUnknown for foreign errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Message extracts the user-facing text of err: the Message of an *Error,
// err.Error() otherwise, and "" for nil.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
