package apperrors

import (
	"errors"
	"fmt"
)

// Kind lets callers discriminate failures without matching on messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindStoreUnavailable
	KindNotFound
	KindUploadFailed
	KindValidationFailed
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindStoreUnavailable:
		return "store unavailable"
	case KindNotFound:
		return "not found"
	case KindUploadFailed:
		return "upload failed"
	case KindValidationFailed:
		return "validation failed"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrUploadFailed     = &Error{Kind: KindUploadFailed}
	ErrValidationFailed = &Error{Kind: KindValidationFailed}
	ErrConflict         = &Error{Kind: KindConflict}
)

// Error is a failure of a single operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func StoreUnavailable(op string, err error) error {
	return New(KindStoreUnavailable, op, err)
}

func NotFound(op string, err error) error {
	return New(KindNotFound, op, err)
}

func UploadFailed(op string, err error) error {
	return New(KindUploadFailed, op, err)
}

// Validation builds a ValidationFailed error with a formatted reason.
func Validation(op string, format string, args ...any) error {
	return New(KindValidationFailed, op, fmt.Errorf(format, args...))
}

func Conflict(op string, err error) error {
	return New(KindConflict, op, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
