package easypost

import (
	"context"
	"net/http"
	"time"
)

// Parcel describes package dimensions (inches) and weight (ounces).
// PredefinedPackage replaces the dimensions for carrier flat-rate boxes.
type Parcel struct {
	ID                string     `json:"id,omitempty"`
	Mode              string     `json:"mode,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
	Length            *float64   `json:"length,omitempty"`
	Width             *float64   `json:"width,omitempty"`
	Height            *float64   `json:"height,omitempty"`
	Weight            float64    `json:"weight"`
	PredefinedPackage string     `json:"predefined_package,omitempty"`
}

// CreateParcel creates a parcel.
func (c *Client) CreateParcel(ctx context.Context, parcel *Parcel) (*Parcel, error) {
	req := NewRequest(http.MethodPost, "parcels").
		SetBody(map[string]any{"parcel": parcel})
	return Execute[Parcel](ctx, c, req)
}

// GetParcel retrieves a parcel by id.
func (c *Client) GetParcel(ctx context.Context, id string) (*Parcel, error) {
	req := NewRequest(http.MethodGet, "parcels/{id}").
		AddURLSegment("id", id)
	return Execute[Parcel](ctx, c, req)
}
