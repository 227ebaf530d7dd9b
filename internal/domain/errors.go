package domain

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// ErrorCode is the stable, programmatic identifier of an engine error
type ErrorCode string

const (
	// Validation
	CodeBadDiscount   ErrorCode = "ERR_BAD_DISCOUNT"
	CodeBadSignature  ErrorCode = "ERR_BAD_SIGNATURE"
	CodeInvalidAmount ErrorCode = "ERR_INVALID_AMOUNT"
	CodeBadAutoRule   ErrorCode = "ERR_BAD_AUTO_RULE"
	CodeBadRequest    ErrorCode = "ERR_BAD_REQUEST"

	// Precondition, concurrency, chain and invariant
	CodeInsufficient       ErrorCode = "ERR_INSUFFICIENT"
	CodeWalletMissing      ErrorCode = "ERR_WALLET_MISSING"
	CodeCourseUnavailable  ErrorCode = "ERR_COURSE_UNAVAILABLE"
	CodeNotFound           ErrorCode = "ERR_NOT_FOUND"
	CodePaymentUnverified  ErrorCode = "ERR_PAYMENT_UNVERIFIED"
	CodePrecisionLoss      ErrorCode = "ERR_PRECISION_LOSS"
	CodeAlreadyDecided     ErrorCode = "ERR_ALREADY_DECIDED"
	CodeChainDown          ErrorCode = "ERR_CHAIN_DOWN"
	CodeMintExhausted      ErrorCode = "ERR_MINT_EXHAUSTED"
	CodeReserveExhausted   ErrorCode = "ERR_RESERVE_EXHAUSTED"
	CodeInvariantViolation ErrorCode = "ERR_INVARIANT"
	CodeCapabilityMissing  ErrorCode = "ERR_CAPABILITY_MISSING"
)

// Error is a structured engine error. Two errors are considered equal by errors.Is
// when their codes match, so callers compare against the exported sentinels below.
type Error struct {
	Code     ErrorCode
	Message  string
	Entities map[string]string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Entities) > 0 {
		keys := make([]string, 0, len(e.Entities))
		for k := range e.Entities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Entities[k])
		}
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// EntityFields exposes the offending entity ids for structured logging
func (e *Error) EntityFields() map[string]string {
	return e.Entities
}

// Is matches any *Error carrying the same code
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of the error annotated with an offending entity id
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Entities = make(map[string]string, len(e.Entities)+1)
	maps.Copy(cp.Entities, e.Entities)
	cp.Entities[key] = fmt.Sprint(value)
	return &cp
}

// Wrap returns a copy of the error wrapping a cause
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// Withf returns a copy of the error with a more specific message
func (e *Error) Withf(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// NewError creates a structured error
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the code of a structured error, or "" for anything else
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	ErrBadDiscount       = NewError(CodeBadDiscount, "discount percent must be one of 5, 10, 15")
	ErrBadSignature      = NewError(CodeBadSignature, "signature does not recover to the student wallet")
	ErrInvalidAmount     = NewError(CodeInvalidAmount, "amount must be positive with at most 8 decimal places")
	ErrBadAutoRule       = NewError(CodeBadAutoRule, "invalid auto rule")
	ErrBadRequest        = NewError(CodeBadRequest, "bad request")
	ErrInsufficient      = NewError(CodeInsufficient, "insufficient available balance")
	ErrWalletMissing     = NewError(CodeWalletMissing, "wallet address missing")
	ErrCourseUnavailable = NewError(CodeCourseUnavailable, "course is not approved or has no price")
	ErrNotFound          = NewError(CodeNotFound, "not found")
	ErrPaymentUnverified = NewError(CodePaymentUnverified, "payment could not be verified on chain")
	ErrPrecisionLoss     = NewError(CodePrecisionLoss, "conversion would lose precision below 1e-8 TEO")
	ErrAlreadyDecided    = NewError(CodeAlreadyDecided, "decision already decided")
	ErrChainDown         = NewError(CodeChainDown, "chain gateway is disconnected")
	ErrMintExhausted     = NewError(CodeMintExhausted, "mint retries exhausted")
	ErrReserveExhausted  = NewError(CodeReserveExhausted, "reserve pool balance exhausted")
	ErrInvariant         = NewError(CodeInvariantViolation, "ledger invariant violated")
	ErrCapabilityMissing = NewError(CodeCapabilityMissing, "chain submit capability unavailable")
)
