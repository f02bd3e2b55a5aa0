package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so handlers can map them onto HTTP
// statuses without string-matching error text.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1 // bad input shape or size, user-fixable
	KindNotFound                        // unknown user/quest/record/path
	KindStateConflict                   // already-staked, already-claimed, wrong credential
	KindExternalService                 // ledger/asset collaborator failed after retries
	KindInsufficientResource            // not enough points, reward units or balance
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindExternalService:
		return "external_service"
	case KindInsufficientResource:
		return "insufficient_resource"
	default:
		return "unknown"
	}
}

// DomainError is the structured failure result every operation boundary
// returns. Op names the operation ("mint", "claim", ...) for log context.
type DomainError struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Op, e.Msg)
}

func (e *DomainError) Unwrap() error { return e.Err }

func Validationf(op, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(op, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(op, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindStateConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Insufficientf(op, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInsufficientResource, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// External wraps a collaborator failure, keeping the cause for diagnostics.
func External(op, msg string, err error) *DomainError {
	return &DomainError{Kind: KindExternalService, Op: op, Msg: msg, Err: err}
}

// KindOf extracts the ErrorKind from err, or 0 when err carries none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
