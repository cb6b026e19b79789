package easypost_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/easypost/pkg/easypost"
)

// capture records the last request a test server received.
type capture struct {
	method string
	path   string
	query  string
	body   string
}

func capturing(c *capture, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.method = r.Method
		c.path = r.URL.Path
		c.query = r.URL.RawQuery
		c.body = string(data)
		respond(status, body)(w, r)
	}
}

func TestListScanForms(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK,
		`{"scan_forms":[{"id":"sf_1"},{"id":"sf_2"}],"has_more":true}`))

	opts := &easypost.ListOptions{BeforeID: "sf_9", PageSize: 2}
	list, err := client.ListScanForms(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/v2/scan_forms", got.path)
	assert.Equal(t, "before_id=sf_9&page_size=2", got.query)
	require.Len(t, list.ScanForms, 2)
	assert.True(t, list.HasMore)
	assert.Same(t, opts, list.Options)
}

func TestListScanForms_NilOptions(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK, `{"scan_forms":[],"has_more":false}`))

	list, err := client.ListScanForms(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got.query)
	assert.Empty(t, list.ScanForms)
	assert.Nil(t, list.Options)
}

func TestCreateScanForm(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK, `{"id":"sf_1","status":"creating"}`))

	form, err := client.CreateScanForm(context.Background(), "shp_1", "shp_2")

	require.NoError(t, err)
	assert.Equal(t, "creating", form.Status)
	assert.Equal(t, http.MethodPost, got.method)
	assert.JSONEq(t, `{"shipments":[{"id":"shp_1"},{"id":"shp_2"}]}`, got.body)
}

func TestBuyOrder(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK,
		`{"id":"order_1","shipments":[{"id":"shp_1","tracking_code":"9400"}]}`))

	order, err := client.BuyOrder(context.Background(), "order_1", "USPS", "Priority")

	require.NoError(t, err)
	assert.Equal(t, "/v2/orders/order_1/buy", got.path)
	assert.JSONEq(t, `{"carrier":"USPS","service":"Priority"}`, got.body)
	require.Len(t, order.Shipments, 1)
	assert.Equal(t, "9400", order.Shipments[0].TrackingCode)
}

func TestBuyShipment(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK,
		`{"id":"shp_1","postage_label":{"label_url":"https://labels.example/1.png"}}`))

	shipment, err := client.BuyShipment(context.Background(), "shp_1", "rate_1")

	require.NoError(t, err)
	assert.Equal(t, "/v2/shipments/shp_1/buy", got.path)
	assert.JSONEq(t, `{"rate":{"id":"rate_1"}}`, got.body)
	assert.Equal(t, "https://labels.example/1.png", shipment.PostageLabel.LabelURL)
}

func TestLabelShipment(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK, `{"id":"shp_1"}`))

	_, err := client.LabelShipment(context.Background(), "shp_1", "ZPL")
	require.NoError(t, err)
	assert.Equal(t, "file_format=ZPL", got.query)

	_, err = client.LabelShipment(context.Background(), "shp_1", "")
	require.NoError(t, err)
	assert.Empty(t, got.query)
}

func TestCreateShipment_WrapsBody(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK, `{
		"id": "shp_1",
		"rates": [
			{"id": "rate_1", "carrier": "USPS", "service": "Priority", "rate": "7.58"},
			{"id": "rate_2", "carrier": "UPS", "service": "Ground", "rate": "9.10"}
		]
	}`))

	shipment, err := client.CreateShipment(context.Background(), &easypost.Shipment{
		ToAddress:   &easypost.Address{ID: "adr_to"},
		FromAddress: &easypost.Address{ID: "adr_from"},
		Parcel:      &easypost.Parcel{Weight: 10},
	})

	require.NoError(t, err)
	var sent map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.body), &sent))
	assert.Contains(t, sent, "shipment")
	assert.Equal(t, map[string]any{"id": "adr_to"}, sent["shipment"]["to_address"])
	assert.Len(t, shipment.Rates, 2)
}

func TestUpdateUser_SendsOnlySetFields(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK, `{"id":"user_1","name":"New"}`))

	user, err := client.UpdateUser(context.Background(), &easypost.User{ID: "user_1", Name: "New"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/v2/users/user_1", got.path)
	assert.JSONEq(t, `{"user":{"name":"New"}}`, got.body)
	assert.Equal(t, "New", user.Name)
}

func TestDestroyUser_ThenNotFound(t *testing.T) {
	deleted := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && !deleted:
			deleted = true
			respond(http.StatusOK, `{}`)(w, r)
		default:
			respond(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"gone","errors":[]}}`)(w, r)
		}
	})

	require.NoError(t, client.DestroyUser(context.Background(), "user_1"))

	user, err := client.GetUser(context.Background(), "user_1")
	assert.Nil(t, user)
	assert.True(t, easypost.IsNotFound(err))
}

func TestGetAPIKeys(t *testing.T) {
	client, _ := newTestClient(t, respond(http.StatusOK, `{
		"id": "user_1",
		"keys": [{"mode": "test", "key": "EZTK1"}, {"mode": "production", "key": "EZAK1"}],
		"children": [{"id": "user_2", "keys": [{"mode": "test", "key": "EZTK2"}]}]
	}`))

	keys, err := client.GetAPIKeys(context.Background())

	require.NoError(t, err)
	require.Len(t, keys.Keys, 2)
	assert.Equal(t, "production", keys.Keys[1].Mode)
	require.Len(t, keys.Children, 1)
	assert.Equal(t, "EZTK2", keys.Children[0].Keys[0].Key)
}

func TestListCarrierAccounts(t *testing.T) {
	client, _ := newTestClient(t, respond(http.StatusOK,
		`[{"id":"ca_1","type":"UspsAccount","readable":"USPS"}]`))

	accounts, err := client.ListCarrierAccounts(context.Background())

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "USPS", accounts[0].Readable)
}

func TestCreateCustomsItem_NumericValue(t *testing.T) {
	var got capture
	client, _ := newTestClient(t, capturing(&got, http.StatusOK,
		`{"id":"cstitem_1","value":23.25,"quantity":2}`))

	item, err := client.CreateCustomsItem(context.Background(), &easypost.CustomsItem{
		Description: "T-shirt", Quantity: 2, Value: 23.25, Weight: 5,
	})

	require.NoError(t, err)
	assert.InDelta(t, 23.25, item.Value, 0.001)
	assert.JSONEq(t, `{"customs_item":{"description":"T-shirt","quantity":2,"value":23.25,"weight":5}}`, got.body)
}

func TestLowestRate(t *testing.T) {
	shipment := &easypost.Shipment{Rates: []*easypost.Rate{
		{ID: "rate_1", Carrier: "USPS", Service: "Priority", Rate: "7.58"},
		{ID: "rate_2", Carrier: "USPS", Service: "Express", Rate: "26.10"},
		{ID: "rate_3", Carrier: "UPS", Service: "Ground", Rate: "6.90"},
		{ID: "rate_4", Carrier: "FedEx", Service: "Ground", Rate: "n/a"},
	}}

	tests := []struct {
		name     string
		carriers []string
		services []string
		want     string
	}{
		{"no filter", nil, nil, "rate_3"},
		{"carrier filter", []string{"usps"}, nil, "rate_1"},
		{"service filter", nil, []string{"EXPRESS"}, "rate_2"},
		{"both filters", []string{"USPS", "UPS"}, []string{"Priority"}, "rate_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := shipment.LowestRate(tt.carriers, tt.services)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate.ID)
		})
	}

	_, err := shipment.LowestRate([]string{"FedEx"}, nil)
	assert.ErrorIs(t, err, easypost.ErrNoMatchingRate)
}
