package easypost

import (
	"context"
	"net/http"
	"time"
)

// CustomsItem is one line of a customs declaration.
type CustomsItem struct {
	ID             string     `json:"id,omitempty"`
	Mode           string     `json:"mode,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	Description    string     `json:"description,omitempty"`
	Quantity       int        `json:"quantity,omitempty"`
	Value          float64    `json:"value,omitempty"`
	Weight         float64    `json:"weight,omitempty"`
	HSTariffNumber string     `json:"hs_tariff_number,omitempty"`
	Code           string     `json:"code,omitempty"`
	OriginCountry  string     `json:"origin_country,omitempty"`
	Currency       string     `json:"currency,omitempty"`
}

// CustomsInfo groups customs items with the export declaration.
type CustomsInfo struct {
	ID                  string         `json:"id,omitempty"`
	Mode                string         `json:"mode,omitempty"`
	CreatedAt           *time.Time     `json:"created_at,omitempty"`
	UpdatedAt           *time.Time     `json:"updated_at,omitempty"`
	EELPFC              string         `json:"eel_pfc,omitempty"`
	ContentsType        string         `json:"contents_type,omitempty"`
	ContentsExplanation string         `json:"contents_explanation,omitempty"`
	CustomsCertify      bool           `json:"customs_certify,omitempty"`
	CustomsSigner       string         `json:"customs_signer,omitempty"`
	NonDeliveryOption   string         `json:"non_delivery_option,omitempty"`
	RestrictionType     string         `json:"restriction_type,omitempty"`
	CustomsItems        []*CustomsItem `json:"customs_items,omitempty"`
}

// CreateCustomsItem creates a customs item.
func (c *Client) CreateCustomsItem(ctx context.Context, item *CustomsItem) (*CustomsItem, error) {
	req := NewRequest(http.MethodPost, "customs_items").
		SetBody(map[string]any{"customs_item": item})
	return Execute[CustomsItem](ctx, c, req)
}

// GetCustomsItem retrieves a customs item by id.
func (c *Client) GetCustomsItem(ctx context.Context, id string) (*CustomsItem, error) {
	req := NewRequest(http.MethodGet, "customs_items/{id}").
		AddURLSegment("id", id)
	return Execute[CustomsItem](ctx, c, req)
}

// CreateCustomsInfo creates a customs declaration.
func (c *Client) CreateCustomsInfo(ctx context.Context, info *CustomsInfo) (*CustomsInfo, error) {
	req := NewRequest(http.MethodPost, "customs_infos").
		SetBody(map[string]any{"customs_info": info})
	return Execute[CustomsInfo](ctx, c, req)
}
