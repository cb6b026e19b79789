package shipper_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/easypost/pkg/easypost"
	"github.com/tournevent/easypost/pkg/shipper"
)

func TestShipperError_Error(t *testing.T) {
	err := shipper.NewShipperError("easypost", "ADDRESS.VERIFY.FAILURE", "Unable to verify address")
	assert.Equal(t, "easypost error (ADDRESS.VERIFY.FAILURE): Unable to verify address", err.Error())
}

func TestShipperError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := shipper.NewShipperError("easypost", "INTERNAL", "call failed").WithCause(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "network timeout")
}

func TestShipperError_Is(t *testing.T) {
	err1 := shipper.NewShipperError("easypost", "NOT_FOUND", "a")
	err2 := shipper.NewShipperError("mock", "NOT_FOUND", "b")
	err3 := shipper.NewShipperError("easypost", "PARAMETER.INVALID", "c")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestShipperError_WithKind(t *testing.T) {
	err := shipper.NewShipperError("easypost", "NOT_FOUND", "gone").WithKind(shipper.ErrOrderNotFound)

	assert.True(t, errors.Is(err, shipper.ErrOrderNotFound))
	assert.False(t, errors.Is(err, shipper.ErrInvalidAddress))
}

func TestFromRequestError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      error
		retryable bool
	}{
		{
			name:      "transport failure",
			err:       easypost.NewRequestError(easypost.CodeResponseError, "connection refused"),
			kind:      shipper.ErrServiceUnavailable,
			retryable: true,
		},
		{
			name:      "server error",
			err:       easypost.NewRequestError(easypost.CodeParseError, "unparsable").WithStatusCode(http.StatusBadGateway),
			kind:      shipper.ErrServiceUnavailable,
			retryable: true,
		},
		{
			name:      "rate limited",
			err:       easypost.NewRequestError("RATE_LIMITED", "slow down").WithStatusCode(http.StatusTooManyRequests),
			kind:      shipper.ErrRateLimitExceeded,
			retryable: true,
		},
		{
			name: "bad key",
			err:  easypost.NewRequestError("APIKEY.INACTIVE", "inactive").WithStatusCode(http.StatusUnauthorized),
			kind: shipper.ErrAuthenticationFailed,
		},
		{
			name: "not found",
			err:  easypost.NewRequestError(easypost.CodeNotFound, "gone").WithStatusCode(http.StatusNotFound),
			kind: shipper.ErrOrderNotFound,
		},
		{
			name: "address",
			err:  easypost.NewRequestError("ADDRESS.VERIFY.FAILURE", "bad").WithStatusCode(http.StatusUnprocessableEntity),
			kind: shipper.ErrInvalidAddress,
		},
		{
			name: "parcel",
			err:  easypost.NewRequestError("PARCEL.WEIGHT.INVALID", "bad").WithStatusCode(http.StatusUnprocessableEntity),
			kind: shipper.ErrInvalidParcel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := shipper.FromRequestError("easypost", tt.err)

			require.NotNil(t, err)
			assert.True(t, errors.Is(err, tt.kind))
			assert.Equal(t, tt.retryable, shipper.IsRetryable(err))

			reqErr, ok := easypost.AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, reqErr.Code, err.Code)
		})
	}
}

func TestFromRequestError_Details(t *testing.T) {
	reqErr := easypost.NewRequestError("ADDRESS.VERIFY.FAILURE", "Unable to verify address.").
		WithStatusCode(http.StatusUnprocessableEntity)
	reqErr.Errors = []easypost.FieldError{
		{Field: "street1", Message: "House number is missing"},
		{Message: "Address not found"},
	}

	err := shipper.FromRequestError("easypost", reqErr)

	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, []string{"street1: House number is missing", "Address not found"}, err.Details)
	assert.False(t, err.Retryable)
}

func TestFromRequestError_Other(t *testing.T) {
	assert.Nil(t, shipper.FromRequestError("easypost", nil))

	cause := errors.New("boom")
	err := shipper.FromRequestError("easypost", cause)
	assert.Equal(t, "INTERNAL", err.Code)
	assert.True(t, errors.Is(err, cause))
}

func TestFromRequestError_InvalidRequestNotRetryable(t *testing.T) {
	client := easypost.New(easypost.Config{APIBase: "http://127.0.0.1:1/v2"}, nil, nil)
	req := easypost.NewRequest(http.MethodPost, "shipments").
		SetBody(map[string]any{"bad": make(chan int)})
	_, reqErr := easypost.Execute[easypost.Shipment](context.Background(), client, req)
	require.Error(t, reqErr)

	err := shipper.FromRequestError("easypost", reqErr)

	assert.Equal(t, easypost.CodeResponseError, err.Code)
	assert.False(t, err.Retryable)
	assert.False(t, errors.Is(err, shipper.ErrServiceUnavailable))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, shipper.IsRetryable(shipper.ErrServiceUnavailable))
	assert.True(t, shipper.IsRetryable(shipper.ErrRateLimitExceeded))
	assert.False(t, shipper.IsRetryable(shipper.ErrInvalidAddress))
	assert.False(t, shipper.IsRetryable(shipper.NewShipperError("easypost", "X", "y").WithRetryable(false)))
}
