// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies storage failures. The set is closed; callers switch on it
// instead of matching error strings.
type Kind int

const (
	// KindTransient covers network and timeout failures. These count against
	// circuit breakers.
	KindTransient Kind = iota

	// KindNotFound means the blob is absent. Reads report absence with a found
	// flag, so this kind only shows up where absence is a failure, such as
	// updating a missing document.
	KindNotFound

	// KindCircuitOpen is the fail-fast outcome of an open breaker.
	KindCircuitOpen

	// KindSerialization is malformed JSON on read or an unencodable value on
	// write. Never retried.
	KindSerialization

	// KindConsistency is drift between blobs and their index.
	KindConsistency

	// KindInvalid is a validator rejection at the write boundary.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not_found"
	case KindCircuitOpen:
		return "circuit_open"
	case KindSerialization:
		return "serialization"
	case KindConsistency:
		return "consistency"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	ErrNotFound    = errors.New("item not found")
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Error is the error type returned by every storage component.
type Error struct {
	Kind Kind

	// Op is the failing operation, i.e. "read" or "write".
	Op string

	// Key is the blob key or document id involved, if any.
	Key string

	// Backend names the tier or dependency that failed, if known.
	Backend string

	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Backend != "" {
		msg = e.Backend + " " + msg
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrCircuitOpen:
		return e.Kind == KindCircuitOpen
	}
	return false
}

// StatusCode satisfies go-kit's StatusCoder.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid:
		return http.StatusBadRequest
	case KindCircuitOpen, KindTransient:
		return http.StatusServiceUnavailable
	case KindConsistency:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewError builds an *Error.
func NewError(kind Kind, op, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

// KindOf classifies err. Unclassified errors are treated as transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCircuitOpen):
		return KindCircuitOpen
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTransient
	}
	var (
		syntaxErr      *json.SyntaxError
		typeErr        *json.UnmarshalTypeError
		unsupportedErr *json.UnsupportedTypeError
		valueErr       *json.UnsupportedValueError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.As(err, &unsupportedErr) || errors.As(err, &valueErr) {
		return KindSerialization
	}
	return KindTransient
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WithBackend tags err with the backend name. Non-store errors are wrapped
// as transient failures of op.
func WithBackend(err error, backend, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		tagged := *e
		if tagged.Backend == "" {
			tagged.Backend = backend
		}
		return &tagged
	}
	return &Error{Kind: KindOf(err), Op: op, Backend: backend, Err: err}
}
