package easypost_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/easypost/pkg/easypost"
)

func newAssembler(cfg easypost.Config) *easypost.Client {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.example.test/v2"
	}
	return easypost.New(cfg, nil, nil)
}

func TestAssemble_SubstitutesPathSegment(t *testing.T) {
	client := newAssembler(easypost.Config{APIKey: "key"})

	req := easypost.NewRequest(http.MethodGet, "scan_forms/{id}").
		AddURLSegment("id", "sf_4fbd1cb6")

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, wire.Method)
	assert.Equal(t, "https://api.example.test/v2/scan_forms/sf_4fbd1cb6", wire.URL)
}

func TestAssemble_SubstitutesEverySegment(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodPost, "shipments/{id}/buy/{rate}").
		AddURLSegment("id", "shp_1").
		AddURLSegment("rate", "rate_2")

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/v2/shipments/shp_1/buy/rate_2", wire.URL)
	assert.NotContains(t, wire.URL, "{")
}

func TestAssemble_EscapesSegmentValues(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodGet, "addresses/{id}").
		AddURLSegment("id", "a/b c")

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/v2/addresses/a%2Fb%20c", wire.URL)
}

func TestAssemble_MissingSegmentPanics(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodGet, "orders/{id}")

	assert.PanicsWithValue(t, `easypost: no value for path segment "id" in "orders/{id}"`, func() {
		_, _ = client.Assemble(req)
	})
}

func TestAssemble_QueryOmitsEmptyValues(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodGet, "shipments/{id}/label").
		AddURLSegment("id", "shp_1").
		AddQueryParam("file_format", "ZPL").
		AddQueryParam("empty", "")

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/v2/shipments/shp_1/label?file_format=ZPL", wire.URL)
}

func TestAssemble_NoQueryWhenAllEmpty(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodGet, "scan_forms").
		AddQueryParam("before_id", "")

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/v2/scan_forms", wire.URL)
}

func TestAssemble_QueryStringFromOptions(t *testing.T) {
	client := newAssembler(easypost.Config{})
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	req := easypost.NewRequest(http.MethodGet, "scan_forms")
	err := req.AddQueryString(&easypost.ListOptions{
		AfterID:       "sf_1",
		StartDatetime: &start,
		PageSize:      20,
	})
	require.NoError(t, err)

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t,
		"https://api.example.test/v2/scan_forms?after_id=sf_1&page_size=20&start_datetime=2024-03-01T12%3A00%3A00Z",
		wire.URL)
}

func TestAssemble_Headers(t *testing.T) {
	client := newAssembler(easypost.Config{APIKey: "EZTK123", Version: "9.9.9"})

	wire, err := client.Assemble(easypost.NewRequest(http.MethodGet, "users"))

	require.NoError(t, err)
	assert.Equal(t, "Bearer EZTK123", wire.Header.Get("Authorization"))
	assert.Equal(t, "EasyPost/Go/9.9.9", wire.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", wire.Header.Get("Accept"))
	assert.Empty(t, wire.Header.Get("Content-Type"))
	assert.Nil(t, wire.Body)
}

func TestAssemble_DefaultVersionInUserAgent(t *testing.T) {
	client := newAssembler(easypost.Config{})

	assert.Equal(t, "EasyPost/Go/"+easypost.Version, client.UserAgent())
}

func TestAssemble_JSONBody(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodPost, "users").
		SetBody(map[string]any{"user": map[string]string{"name": "Test Name"}})

	wire, err := client.Assemble(req)

	require.NoError(t, err)
	assert.Equal(t, "application/json", wire.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"user":{"name":"Test Name"}}`, string(wire.Body))
}

func TestAssemble_UnmarshalableBody(t *testing.T) {
	client := newAssembler(easypost.Config{})

	req := easypost.NewRequest(http.MethodPost, "users").
		SetBody(map[string]any{"bad": make(chan int)})

	_, err := client.Assemble(req)

	assert.ErrorIs(t, err, easypost.ErrInvalidRequest)
}

func TestAssemble_CopiesTimeout(t *testing.T) {
	client := newAssembler(easypost.Config{Timeout: 3 * time.Second})

	wire, err := client.Assemble(easypost.NewRequest(http.MethodGet, "users"))

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, wire.Timeout)
}

func TestAssemble_Idempotent(t *testing.T) {
	client := newAssembler(easypost.Config{APIKey: "key", Timeout: time.Second})

	req := easypost.NewRequest(http.MethodPost, "orders/{id}/buy").
		AddURLSegment("id", "order_1").
		AddQueryParam("b", "2").
		AddQueryParam("a", "1").
		SetBody(map[string]string{"carrier": "USPS", "service": "Priority"})

	first, err := client.Assemble(req)
	require.NoError(t, err)
	second, err := client.Assemble(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "https://api.example.test/v2/orders/order_1/buy?a=1&b=2", first.URL)
}

func TestAssemble_TrimsBaseSlash(t *testing.T) {
	client := easypost.New(easypost.Config{APIBase: "https://api.example.test/v2/"}, nil, nil)

	wire, err := client.Assemble(easypost.NewRequest(http.MethodGet, "/rates/{id}").AddURLSegment("id", "rate_1"))

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test/v2/rates/rate_1", wire.URL)
}

func TestAssemble_DefaultAPIBase(t *testing.T) {
	client := easypost.New(easypost.Config{}, nil, nil)

	assert.Equal(t, easypost.DefaultAPIBase, client.APIBase())
}

func TestWireRequest_ZeroTimeoutHasNoDeadline(t *testing.T) {
	wire := &easypost.WireRequest{Method: http.MethodGet, URL: "https://api.example.test/v2/users", Header: http.Header{}}

	req, cancel, err := wire.HTTPRequest(context.Background())
	require.NoError(t, err)
	defer cancel()

	_, hasDeadline := req.Context().Deadline()
	assert.False(t, hasDeadline)
}

func TestWireRequest_TimeoutSetsDeadline(t *testing.T) {
	wire := &easypost.WireRequest{
		Method:  http.MethodGet,
		URL:     "https://api.example.test/v2/users",
		Header:  http.Header{"Authorization": []string{"Bearer key"}},
		Timeout: time.Minute,
	}

	req, cancel, err := wire.HTTPRequest(context.Background())
	require.NoError(t, err)
	defer cancel()

	deadline, hasDeadline := req.Context().Deadline()
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	assert.Equal(t, "Bearer key", req.Header.Get("Authorization"))
}
