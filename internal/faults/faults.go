package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether to retry,
// absorb, or surface it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is bad or empty input; the operation had no side effect.
	KindValidation
	// KindNotFound is an unknown user, phone mapping, or prompt.
	KindNotFound
	// KindTransient is a network, timeout, or 5xx failure worth retrying.
	KindTransient
	// KindPermanent is a failure retrying cannot fix (bad credentials,
	// malformed media).
	KindPermanent
	// KindPersistence is a store write or read failure.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Fault carries a Kind alongside a message and an optional wrapped cause.
type Fault struct {
	Kind Kind
	Msg  string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a Fault with no underlying cause.
func New(kind Kind, msg string) error {
	return &Fault{Kind: kind, Msg: msg}
}

// Newf creates a Fault with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and message to an existing error. Wrapping nil
// returns nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Fault{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the Kind of the outermost Fault in err's chain, or
// KindUnknown when the chain carries none.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}

// Retryable reports whether err is worth another attempt. Unknown errors
// are treated as transient so an unclassified network hiccup still gets
// its retries; explicitly permanent, validation, and not-found failures
// never do.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindUnknown:
		return true
	default:
		return false
	}
}

// IsValidation reports whether err is a validation fault.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found fault.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
