// Package errs defines the error kinds shared by the domain, use cases and
// repository adapters.
package errs

import (
	"errors"
	"strings"
)

// Kind classifies a failure independently of the backend that produced it.
type Kind uint8

const (
	Internal Kind = iota
	InvalidEmail
	InvalidPassword
	InvalidName
	AuthenticationFailed
	Conflict
	NotSupported
	NotFound
	Unauthenticated
	InvalidMedicamento
)

func (k Kind) String() string {
	switch k {
	case InvalidEmail:
		return "invalid email"
	case InvalidPassword:
		return "invalid password"
	case InvalidName:
		return "invalid name"
	case AuthenticationFailed:
		return "authentication failed"
	case Conflict:
		return "conflict"
	case NotSupported:
		return "not supported"
	case NotFound:
		return "not found"
	case Unauthenticated:
		return "unauthenticated"
	case InvalidMedicamento:
		return "invalid medicamento"
	default:
		return "internal error"
	}
}

// Error carries a Kind plus the operation and message that produced it.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// holds regardless of Op and Msg.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidEmail         = &Error{Kind: InvalidEmail}
	ErrInvalidPassword      = &Error{Kind: InvalidPassword}
	ErrInvalidName          = &Error{Kind: InvalidName}
	ErrAuthenticationFailed = &Error{Kind: AuthenticationFailed}
	ErrConflict             = &Error{Kind: Conflict}
	ErrNotSupported         = &Error{Kind: NotSupported}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrUnauthenticated      = &Error{Kind: Unauthenticated}
	ErrInvalidMedicamento   = &Error{Kind: InvalidMedicamento}
)

// New builds an error of the given kind.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ClassifyMessage is the fallback for backends that only report free-form
// messages. Only the remote identity adapter relies on it.
func ClassifyMessage(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "already registered"),
		strings.Contains(m, "already exists"),
		strings.Contains(m, "duplicate"):
		return Conflict
	case strings.Contains(m, "invalid login credentials"),
		strings.Contains(m, "invalid credentials"):
		return AuthenticationFailed
	case strings.Contains(m, "not found"):
		return NotFound
	}
	return Internal
}
