package easypost

import (
	"context"
	"net/http"
	"time"
)

// Address is a shipping address.
type Address struct {
	ID              string     `json:"id,omitempty"`
	Mode            string     `json:"mode,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	Name            string     `json:"name,omitempty"`
	Company         string     `json:"company,omitempty"`
	Street1         string     `json:"street1,omitempty"`
	Street2         string     `json:"street2,omitempty"`
	City            string     `json:"city,omitempty"`
	State           string     `json:"state,omitempty"`
	Zip             string     `json:"zip,omitempty"`
	Country         string     `json:"country,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Email           string     `json:"email,omitempty"`
	Residential     *bool      `json:"residential,omitempty"`
	CarrierFacility string     `json:"carrier_facility,omitempty"`
	FederalTaxID    string     `json:"federal_tax_id,omitempty"`
	StateTaxID      string     `json:"state_tax_id,omitempty"`
}

// CreateAddress creates an address.
func (c *Client) CreateAddress(ctx context.Context, address *Address) (*Address, error) {
	req := NewRequest(http.MethodPost, "addresses").
		SetBody(map[string]any{"address": address})
	return Execute[Address](ctx, c, req)
}

// GetAddress retrieves an address by id.
func (c *Client) GetAddress(ctx context.Context, id string) (*Address, error) {
	req := NewRequest(http.MethodGet, "addresses/{id}").
		AddURLSegment("id", id)
	return Execute[Address](ctx, c, req)
}
