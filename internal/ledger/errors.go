package ledger

import (
	"errors"
	"fmt"
)

// Kind categorizes ledger errors into the stable set callers switch on.
type Kind string

const (
	// KindNotFound means an unknown account or transaction. Surfaced to
	// the caller, never retried.
	KindNotFound Kind = "NOT_FOUND"

	// KindInvalidRequest means a malformed request (non-positive amount,
	// self-transfer, unknown channel). Surfaced, never retried.
	KindInvalidRequest Kind = "INVALID_REQUEST"

	// KindInsufficientFunds means the business rule was violated. The
	// transaction is terminally failed; waiting does not change the
	// outcome, so it is never retried.
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"

	// KindStoreUnavailable means a transient infrastructure failure.
	// Reconciliation retries these with bounded attempts; direct
	// submissions surface them immediately as retryable.
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"

	// KindConsistency means a compensation failed after a partial
	// settlement: an account may be debited without a matching credit or
	// recorded reversal. Fatal; escalated for manual audit.
	KindConsistency Kind = "CONSISTENCY"
)

// Error is the structured error carried across every layer of the ledger.
// Each failure maps to a stable Kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidRequestf builds a KindInvalidRequest error.
func InvalidRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFundsf builds a KindInsufficientFunds error.
func InsufficientFundsf(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// StoreUnavailable wraps a transient infrastructure failure.
func StoreUnavailable(msg string, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: msg, Err: err}
}

// Consistencyf builds a KindConsistency error wrapping the failed
// compensation cause.
func Consistencyf(err error, format string, args ...any) *Error {
	return &Error{Kind: KindConsistency, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed. Returns "" for
// errors that did not originate in the ledger.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidRequest reports whether err is a KindInvalidRequest error.
func IsInvalidRequest(err error) bool { return KindOf(err) == KindInvalidRequest }

// IsInsufficientFunds reports whether err is a KindInsufficientFunds error.
func IsInsufficientFunds(err error) bool { return KindOf(err) == KindInsufficientFunds }

// IsStoreUnavailable reports whether err is a transient store failure.
func IsStoreUnavailable(err error) bool { return KindOf(err) == KindStoreUnavailable }

// IsConsistency reports whether err is a fatal consistency error.
func IsConsistency(err error) bool { return KindOf(err) == KindConsistency }
