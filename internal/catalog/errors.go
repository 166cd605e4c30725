package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog error the way the store's callers need to
// branch on it, independent of the underlying driver error text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindCorrupt
	KindInvalidInput
	KindInvalidState
	KindIO
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindCorrupt:
		return "Corrupt"
	case KindInvalidInput:
		return "InvalidInput"
	case KindInvalidState:
		return "InvalidState"
	case KindIO:
		return "Io"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the typed error every public catalog operation returns on
// failure. It wraps the underlying cause so errors.Is/errors.As against
// driver-level sentinels still work.
type Error struct {
	Op    string
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Cause: cause}
}

// NewError builds a typed catalog Error for use by packages outside
// catalog (cluster, indexer, scanner) that need to surface the same
// taxonomy without depending on catalog's unexported constructor.
func NewError(op string, kind Kind, cause error) *Error {
	return newErr(op, kind, cause)
}

// NewInvalidInput is a convenience for the common case of a bad
// argument with no wrapped cause.
func NewInvalidInput(op string) *Error {
	return newErr(op, KindInvalidInput, nil)
}

// NewCancelled builds the Cancelled error a long-running operation
// returns when it observes its cancellation flag.
func NewCancelled(op string) *Error {
	return newErr(op, KindCancelled, nil)
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and
// KindUnknown otherwise.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool  { return KindOf(err) == KindConflict }
func IsCancelled(err error) bool { return KindOf(err) == KindCancelled }
