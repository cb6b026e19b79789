package easypost

import (
	"context"
	"net/http"
	"time"
)

// Order groups several shipments between the same addresses so they can be
// rated and bought together.
type Order struct {
	ID              string            `json:"id,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
	Reference       string            `json:"reference,omitempty"`
	ToAddress       *Address          `json:"to_address,omitempty"`
	FromAddress     *Address          `json:"from_address,omitempty"`
	ReturnAddress   *Address          `json:"return_address,omitempty"`
	BuyerAddress    *Address          `json:"buyer_address,omitempty"`
	CustomsInfo     *CustomsInfo      `json:"customs_info,omitempty"`
	Shipments       []*Shipment       `json:"shipments,omitempty"`
	CarrierAccounts []*CarrierAccount `json:"carrier_accounts,omitempty"`
	Options         map[string]any    `json:"options,omitempty"`
	IsReturn        bool              `json:"is_return,omitempty"`
	Rates           []*Rate           `json:"rates,omitempty"`
	Messages        []Message         `json:"messages,omitempty"`
}

// LowestRate returns the cheapest order-level rate, optionally limited to the
// given carriers and services.
func (o *Order) LowestRate(carriers, services []string) (*Rate, error) {
	return lowestRate(o.Rates, carriers, services)
}

// CreateOrder creates an order and rates all of its shipments.
func (c *Client) CreateOrder(ctx context.Context, order *Order) (*Order, error) {
	req := NewRequest(http.MethodPost, "orders").
		SetBody(map[string]any{"order": order})
	return Execute[Order](ctx, c, req)
}

// GetOrder retrieves an order by id.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	req := NewRequest(http.MethodGet, "orders/{id}").
		AddURLSegment("id", id)
	return Execute[Order](ctx, c, req)
}

// BuyOrder purchases labels for every shipment of the order with one carrier
// service, e.g. BuyOrder(ctx, id, "USPS", "Priority").
func (c *Client) BuyOrder(ctx context.Context, id, carrier, service string) (*Order, error) {
	req := NewRequest(http.MethodPost, "orders/{id}/buy").
		AddURLSegment("id", id).
		SetBody(map[string]string{"carrier": carrier, "service": service})
	return Execute[Order](ctx, c, req)
}
