// Package shipper is the carrier abstraction the bridge service is built on.
// Carriers are registered in a Registry and addressed by name.
package shipper

import (
	"context"
)

// Shipper is implemented by every carrier integration.
type Shipper interface {
	// Name returns the carrier identifier used in routes and registries.
	Name() string

	// GetQuote rates a parcel.
	GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error)

	// CreateOrder buys a label.
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)

	GetLabel(ctx context.Context, req *GetLabelRequest) (*GetLabelResponse, error)

	// CancelOrder requests a refund of an unused label.
	CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error)
}
