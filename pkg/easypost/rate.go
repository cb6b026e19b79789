package easypost

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate is a price quote for one carrier service on a shipment.
// Monetary fields are decimal strings as sent by the service.
type Rate struct {
	ID                     string     `json:"id,omitempty"`
	Mode                   string     `json:"mode,omitempty"`
	CreatedAt              *time.Time `json:"created_at,omitempty"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
	Service                string     `json:"service,omitempty"`
	Carrier                string     `json:"carrier,omitempty"`
	CarrierAccountID       string     `json:"carrier_account_id,omitempty"`
	ShipmentID             string     `json:"shipment_id,omitempty"`
	Rate                   string     `json:"rate,omitempty"`
	Currency               string     `json:"currency,omitempty"`
	RetailRate             string     `json:"retail_rate,omitempty"`
	RetailCurrency         string     `json:"retail_currency,omitempty"`
	ListRate               string     `json:"list_rate,omitempty"`
	ListCurrency           string     `json:"list_currency,omitempty"`
	DeliveryDays           *int       `json:"delivery_days,omitempty"`
	DeliveryDate           *time.Time `json:"delivery_date,omitempty"`
	DeliveryDateGuaranteed bool       `json:"delivery_date_guaranteed,omitempty"`
	EstDeliveryDays        *int       `json:"est_delivery_days,omitempty"`
}

// Amount returns Rate as a number. Unparseable values are reported as false.
func (r *Rate) Amount() (float64, bool) {
	v, err := strconv.ParseFloat(r.Rate, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GetRate retrieves a rate by id.
func (c *Client) GetRate(ctx context.Context, id string) (*Rate, error) {
	req := NewRequest(http.MethodGet, "rates/{id}").
		AddURLSegment("id", id)
	return Execute[Rate](ctx, c, req)
}

// lowestRate picks the cheapest rate, optionally restricted to carriers and
// services (case-insensitive). Rates with an unparseable price are skipped.
func lowestRate(rates []*Rate, carriers, services []string) (*Rate, error) {
	var best *Rate
	var bestAmount float64
	for _, r := range rates {
		if !matchesAny(r.Carrier, carriers) || !matchesAny(r.Service, services) {
			continue
		}
		amount, ok := r.Amount()
		if !ok {
			continue
		}
		if best == nil || amount < bestAmount {
			best, bestAmount = r, amount
		}
	}
	if best == nil {
		return nil, ErrNoMatchingRate
	}
	return best, nil
}

func matchesAny(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}
