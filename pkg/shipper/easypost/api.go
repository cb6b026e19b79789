package easypost

import (
	"context"

	ep "github.com/tournevent/easypost/pkg/easypost"
)

// APIClient is the subset of the EasyPost API the shipper needs.
// *ep.Client implements it; MockAPIClient stands in for tests and demos.
type APIClient interface {
	// CreateShipment creates a shipment and returns it with its rates.
	CreateShipment(ctx context.Context, shipment *ep.Shipment) (*ep.Shipment, error)

	GetShipment(ctx context.Context, id string) (*ep.Shipment, error)

	// BuyShipment purchases one of the shipment's rates.
	BuyShipment(ctx context.Context, id, rateID string) (*ep.Shipment, error)

	// LabelShipment converts the purchased label to format.
	LabelShipment(ctx context.Context, id, format string) (*ep.Shipment, error)

	// RefundShipment requests a refund of the purchased label.
	RefundShipment(ctx context.Context, id string) (*ep.Shipment, error)
}

var _ APIClient = (*ep.Client)(nil)
