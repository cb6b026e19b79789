package easypost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPath(t *testing.T) {
	doc := []byte(`{"error":{"code":"X","errors":[{"field":"a"}],"nothing":null},"weird key.\"":1}`)

	tests := []struct {
		name string
		data []byte
		keys []string
		want any
		ok   bool
	}{
		{"top level object", doc, []string{"error", "code"}, "X", true},
		{"nested array", doc, []string{"error", "errors"}, []any{map[string]any{"field": "a"}}, true},
		{"quoted key", doc, []string{`weird key."`}, float64(1), true},
		{"missing key", doc, []string{"error", "message"}, nil, false},
		{"null value", doc, []string{"error", "nothing"}, nil, false},
		{"through a string", doc, []string{"error", "code", "deeper"}, nil, false},
		{"through an array", doc, []string{"error", "errors", "field"}, nil, false},
		{"invalid json", []byte("<html>"), []string{"error"}, nil, false},
		{"empty body", nil, []string{"error"}, nil, false},
		{"top level array", []byte(`[1,2]`), []string{"error"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := lookupPath(tt.data, tt.keys...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathExpression(t *testing.T) {
	assert.Equal(t, `.["error"]["errors"]`, pathExpression([]string{"error", "errors"}))
	assert.Equal(t, ".", pathExpression(nil))
}

func TestInterpret_StatusBoundary(t *testing.T) {
	envelope := []byte(`{"error":{"code":"E","message":"m"}}`)

	ok, err := interpret[map[string]any](&response{statusCode: 399, body: envelope}, nil)
	require.NoError(t, err)
	assert.Contains(t, *ok, "error")

	_, err = interpret[map[string]any](&response{statusCode: 400, body: envelope}, nil)
	reqErr, isReqErr := AsRequestError(err)
	require.True(t, isReqErr)
	assert.Equal(t, "E", reqErr.Code)
	assert.Equal(t, 400, reqErr.StatusCode)
}

func TestInterpret_NoResponse(t *testing.T) {
	result, err := interpret[User](nil, nil)

	assert.Nil(t, result)
	reqErr, ok := AsRequestError(err)
	require.True(t, ok)
	assert.Equal(t, CodeResponseError, reqErr.Code)
	assert.Equal(t, "no response received", reqErr.Message)
}
