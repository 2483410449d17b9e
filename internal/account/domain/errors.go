package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a domain failure.
type ErrorKind string

const (
	// KindNotFound: the referenced account does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindInvalidData: a validation or business-rule violation
	// (duplicate account, wrong password, invalid or ambiguous code,
	// failed confirmation).
	KindInvalidData ErrorKind = "invalid_data"
	// KindUnauthorized: refresh-token mismatch or expiry.
	KindUnauthorized ErrorKind = "unauthorized"
)

// Error carries a kind plus a human-readable message. Services return
// these unmodified to the transport layer; no retries happen below it.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is match any domain error of the same kind, so callers
// can write errors.Is(err, domain.ErrNotFound) style checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Kind sentinels for errors.Is comparisons.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrInvalidData  = &Error{Kind: KindInvalidData}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidDataf(format string, args ...any) error {
	return &Error{Kind: KindInvalidData, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from err, or "" if err is not a
// domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
