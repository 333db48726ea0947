package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures so front ends can pick a message.
type ErrorCode string

const (
	ErrCodeNotFound  ErrorCode = "NOT_FOUND"
	ErrCodeInvalid   ErrorCode = "INVALID"
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Error is a classified planner error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError classifies an existing error.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrTaskNotFound  = NewError(ErrCodeNotFound, "task not found")
	ErrEmptyTitle    = NewError(ErrCodeInvalid, "title is required")
	ErrUnknownFilter = NewError(ErrCodeInvalid, "unknown filter")
	ErrFixedTask     = NewError(ErrCodeForbidden, "fixed tasks cannot be deleted")
)

// IsCode reports whether err carries the given classification.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
