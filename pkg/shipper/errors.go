package shipper

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tournevent/easypost/pkg/easypost"
)

// ShipperError is a carrier failure as seen by the bridge.
type ShipperError struct {
	Carrier    string   `json:"carrier"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	StatusCode int      `json:"-"`
	Retryable  bool     `json:"retryable"`
	Cause      error    `json:"-"`

	kind error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is matches another *ShipperError by code, or the sentinel the error was
// classified as.
func (e *ShipperError) Is(target error) bool {
	if e.kind != nil && target == e.kind {
		return true
	}
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewShipperError creates a new ShipperError.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ShipperError) WithRetryable(retryable bool) *ShipperError {
	e.Retryable = retryable
	return e
}

// WithKind classifies the error as one of the sentinels below.
func (e *ShipperError) WithKind(kind error) *ShipperError {
	e.kind = kind
	return e
}

// Sentinel errors for common shipping scenarios.
var (
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidParcel        = errors.New("invalid parcel")
	ErrNoRates              = errors.New("no matching rates")
	ErrOrderNotFound        = errors.New("order not found")
	ErrRefundRejected       = errors.New("refund rejected")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrServiceUnavailable   = errors.New("service unavailable")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// FromRequestError converts an EasyPost client error into a ShipperError.
// Errors that are not *easypost.RequestError are wrapped as-is.
// Transport failures, 429 and 5xx responses are retryable.
func FromRequestError(carrier string, err error) *ShipperError {
	if err == nil {
		return nil
	}

	reqErr, ok := easypost.AsRequestError(err)
	if !ok {
		return NewShipperError(carrier, "INTERNAL", err.Error()).WithCause(err)
	}

	details := make([]string, 0, len(reqErr.Errors))
	for _, fe := range reqErr.Errors {
		if fe.Field != "" {
			details = append(details, fe.Field+": "+fe.Message)
		} else {
			details = append(details, fe.Message)
		}
	}

	shipErr := NewShipperError(carrier, reqErr.Code, reqErr.Message).
		WithCause(reqErr).
		WithStatusCode(reqErr.StatusCode)
	shipErr.Details = details

	status := reqErr.StatusCode
	switch {
	case easypost.IsTransport(reqErr):
		shipErr.WithKind(ErrServiceUnavailable).WithRetryable(true)
	case status == http.StatusTooManyRequests:
		shipErr.WithKind(ErrRateLimitExceeded).WithRetryable(true)
	case status >= http.StatusInternalServerError:
		shipErr.WithKind(ErrServiceUnavailable).WithRetryable(true)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		shipErr.WithKind(ErrAuthenticationFailed)
	case reqErr.Code == easypost.CodeNotFound || status == http.StatusNotFound:
		shipErr.WithKind(ErrOrderNotFound)
	case strings.HasPrefix(reqErr.Code, "ADDRESS."):
		shipErr.WithKind(ErrInvalidAddress)
	case strings.HasPrefix(reqErr.Code, "PARCEL."):
		shipErr.WithKind(ErrInvalidParcel)
	}
	return shipErr
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var shipperErr *ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}
