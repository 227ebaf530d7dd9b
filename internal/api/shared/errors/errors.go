package errors

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"strings"

	"github.com/teocoin/settlement-engine/internal/domain"
)

// Codes produced at the API edge; engine errors keep their ERR_* code
const (
	ErrCodeValidationFailed domain.ErrorCode = "ERR_VALIDATION"
	ErrCodeUnauthorized     domain.ErrorCode = "ERR_UNAUTHORIZED"
	ErrCodeRateLimited      domain.ErrorCode = "ERR_RATE_LIMITED"
	ErrCodeInternalError    domain.ErrorCode = "ERR_INTERNAL"
)

// APIError is the body of every error response, wrapped as {"error": {...}}
type APIError struct {
	Code    domain.ErrorCode  `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Response is the error envelope
type Response struct {
	Error *APIError `json:"error"`
}

func NewBadRequestError(message string, details ...string) *APIError {
	return newError(domain.CodeBadRequest, message, details)
}

func NewValidationError(details ...string) *APIError {
	return newError(ErrCodeValidationFailed, "Validation failed", details)
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return newError(ErrCodeUnauthorized, message, details)
}

func NewRateLimitedError(message string, details ...string) *APIError {
	return newError(ErrCodeRateLimited, message, details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newError(ErrCodeInternalError, message, details)
}

func newError(code domain.ErrorCode, message string, details []string) *APIError {
	e := &APIError{Code: code, Message: message}
	if len(details) > 0 {
		e.Details = map[string]string{"reason": strings.Join(details, ", ")}
	}
	return e
}

// statusByCode maps engine error codes to HTTP statuses
var statusByCode = map[domain.ErrorCode]int{
	domain.CodeBadDiscount:        http.StatusBadRequest,
	domain.CodeBadSignature:       http.StatusBadRequest,
	domain.CodeInvalidAmount:      http.StatusBadRequest,
	domain.CodeBadAutoRule:        http.StatusBadRequest,
	domain.CodeBadRequest:         http.StatusBadRequest,
	domain.CodePrecisionLoss:      http.StatusBadRequest,
	domain.CodeNotFound:           http.StatusNotFound,
	domain.CodeInsufficient:       http.StatusConflict,
	domain.CodeAlreadyDecided:     http.StatusConflict,
	domain.CodeReserveExhausted:   http.StatusConflict,
	domain.CodeWalletMissing:      http.StatusUnprocessableEntity,
	domain.CodeCourseUnavailable:  http.StatusUnprocessableEntity,
	domain.CodePaymentUnverified:  http.StatusUnprocessableEntity,
	domain.CodeChainDown:          http.StatusServiceUnavailable,
	domain.CodeCapabilityMissing:  http.StatusServiceUnavailable,
	domain.CodeMintExhausted:      http.StatusBadGateway,
	domain.CodeInvariantViolation: http.StatusInternalServerError,
}

// FromError converts any error into an HTTP status and API error.
// Errors without an engine code become a 500 with a generic message.
func FromError(err error) (int, *APIError) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadRequest, apiErr
	}

	var derr *domain.Error
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError, NewInternalError("Internal server error")
	}

	status, ok := statusByCode[derr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	out := &APIError{Code: derr.Code, Message: derr.Message}
	// entity ids of invariant violations go to the logs only
	if len(derr.Entities) > 0 && derr.Code != domain.CodeInvariantViolation {
		out.Details = maps.Clone(derr.Entities)
	}
	return status, out
}
