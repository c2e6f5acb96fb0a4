package service

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule violation for transport mapping.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindInvalid
	KindConflict
	KindInternal
)

// Error is a structured business error: a kind plus optional per-field
// details. Every rule violation is reported synchronously with one of these;
// nothing is silently ignored.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func ForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func InvalidError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindInvalid, Message: message, Fields: fields}
}

func ConflictError(message string, fields map[string]string) *Error {
	return &Error{Kind: KindConflict, Message: message, Fields: fields}
}

func InternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("internal error: %v", err)}
}

// KindOf extracts the kind from err, defaulting to KindInternal for plain
// storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
