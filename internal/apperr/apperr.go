// Package apperr classifies failures so that every front end can map them to
// its own status signals.
package apperr

import (
	"errors"
	"fmt"
)

// Kind names a failure class.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidInput
	KindUnknownService
	KindProvider
	KindMalformedGameResponse
	KindInvalidRollback
	KindPersistence
	KindPluginNotFound
	KindPlugin
)

var kindNames = map[Kind]string{
	KindInternal:              "Internal",
	KindNotFound:              "NotFound",
	KindAlreadyExists:         "AlreadyExists",
	KindInvalidInput:          "InvalidInput",
	KindUnknownService:        "UnknownService",
	KindProvider:              "ProviderError",
	KindMalformedGameResponse: "MalformedGameResponse",
	KindInvalidRollback:       "InvalidRollback",
	KindPersistence:           "PersistenceError",
	KindPluginNotFound:        "PluginNotFound",
	KindPlugin:                "PluginError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a classified error with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
