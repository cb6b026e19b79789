package easypost

import (
	"errors"
	"fmt"
)

// Codes synthesized by the client when the service did not supply one.
const (
	// CodeResponseError marks a call that never produced a usable response:
	// the request could not be sent, the connection failed, the deadline
	// expired or a success body could not be decoded.
	CodeResponseError = "RESPONSE.ERROR"

	// CodeParseError marks an HTTP error status whose body did not carry a
	// recognizable error envelope.
	CodeParseError = "RESPONSE.PARSE_ERROR"

	// CodeNotFound is the code EasyPost returns for unknown object ids.
	CodeNotFound = "NOT_FOUND"
)

const parseErrorMessage = "Unknown request error or unable to parse response"

// ErrInvalidRequest marks a request the client could not build, such as a
// body that does not marshal. Such failures carry CodeResponseError but are
// not transport failures.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNoMatchingRate is returned when no rate satisfies a carrier/service filter.
var ErrNoMatchingRate = errors.New("no matching rate")

// FieldError is a per-field validation detail nested in a RequestError.
type FieldError struct {
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// RequestError is an API-level failure. Every call that does not succeed
// returns one; the client never panics for them.
type RequestError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`

	// StatusCode is the HTTP status of the response, 0 when none was received.
	StatusCode int `json:"-"`
	// Content is the raw response body, kept for debugging.
	Content string `json:"-"`

	cause error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("easypost error (%s, status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("easypost error (%s): %s", e.Code, e.Message)
}

// Is matches another *RequestError by code.
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewRequestError creates a RequestError with an empty sub-error list.
func NewRequestError(code, message string) *RequestError {
	return &RequestError{
		Code:    code,
		Message: message,
		Errors:  []FieldError{},
	}
}

// Unwrap returns the underlying client-side error, if any.
func (e *RequestError) Unwrap() error {
	return e.cause
}

// WithStatusCode stamps the HTTP status code.
func (e *RequestError) WithStatusCode(code int) *RequestError {
	e.StatusCode = code
	return e
}

// WithContent stamps the raw response body.
func (e *RequestError) WithContent(body []byte) *RequestError {
	e.Content = string(body)
	return e
}

// AsRequestError extracts a *RequestError from err.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NOT_FOUND API error.
func IsNotFound(err error) bool {
	reqErr, ok := AsRequestError(err)
	return ok && reqErr.Code == CodeNotFound
}

// IsTransport reports whether err means no response was obtained from the service.
func IsTransport(err error) bool {
	reqErr, ok := AsRequestError(err)
	return ok && reqErr.Code == CodeResponseError && reqErr.StatusCode == 0 &&
		!errors.Is(reqErr.cause, ErrInvalidRequest)
}
