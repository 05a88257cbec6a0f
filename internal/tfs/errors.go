package tfs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery   = errors.New("invalid query")
	ErrMalformedToken = errors.New("malformed token")
	ErrTruncatedToken = errors.New("truncated token")
)

type QueryError struct {
	Field string
	Msg   string
}

func (e *QueryError) Error() string {
	if e.Field == "" {
		return ErrInvalidQuery.Error() + ": " + e.Msg
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidQuery, e.Field, e.Msg)
}

func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}

func invalid(field, format string, args ...any) *QueryError {
	return &QueryError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// TokenError carries the byte offset into the decoded token where reading failed.
type TokenError struct {
	Kind   error
	Offset int
	Msg    string
	Err    error
}

func (e *TokenError) Error() string {
	msg := fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Offset, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TokenError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(offset int, format string, args ...any) *TokenError {
	return &TokenError{Kind: ErrMalformedToken, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func truncated(offset int, format string, args ...any) *TokenError {
	return &TokenError{Kind: ErrTruncatedToken, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
