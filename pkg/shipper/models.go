package shipper

import (
	"time"
)

// ShipmentStatus is the normalized status of a shipment.
type ShipmentStatus string

const (
	StatusUnknown        ShipmentStatus = "unknown"
	StatusQuoted         ShipmentStatus = "quoted"
	StatusPurchased      ShipmentStatus = "purchased"
	StatusPreTransit     ShipmentStatus = "pre_transit"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusReturned       ShipmentStatus = "return_to_sender"
	StatusFailure        ShipmentStatus = "failure"
	StatusCancelled      ShipmentStatus = "cancelled"
)

// RefundStatus tracks a label refund request.
type RefundStatus string

const (
	RefundSubmitted RefundStatus = "submitted"
	RefundRefunded  RefundStatus = "refunded"
	RefundRejected  RefundStatus = "rejected"
)

// LabelFormat is the file format of a postage label.
type LabelFormat string

const (
	LabelPNG  LabelFormat = "PNG"
	LabelPDF  LabelFormat = "PDF"
	LabelZPL  LabelFormat = "ZPL"
	LabelEPL2 LabelFormat = "EPL2"
)

// Address is a postal address with its contact.
type Address struct {
	Name        string `json:"name,omitempty"`
	Company     string `json:"company,omitempty"`
	Street1     string `json:"street1"`
	Street2     string `json:"street2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state,omitempty"` // e.g. "CA", "ON"
	Zip         string `json:"zip"`
	Country     string `json:"country"` // ISO 3166-1 alpha-2
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Residential *bool  `json:"residential,omitempty"` // nil lets the carrier decide
}

// Parcel is the package being shipped. Dimensions are inches, weight ounces.
type Parcel struct {
	Length            float64 `json:"length,omitempty"`
	Width             float64 `json:"width,omitempty"`
	Height            float64 `json:"height,omitempty"`
	Weight            float64 `json:"weight"`
	PredefinedPackage string  `json:"predefined_package,omitempty"` // e.g. "FlatRateEnvelope"
}

// Money is a monetary amount.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// RateOption is one purchasable service offered for a shipment.
type RateOption struct {
	RateID            string     `json:"rate_id"`
	QuoteID           string     `json:"quote_id"`
	Carrier           string     `json:"carrier"`
	Service           string     `json:"service"`
	TotalPrice        Money      `json:"total_price"`
	ListPrice         *Money     `json:"list_price,omitempty"`
	RetailPrice       *Money     `json:"retail_price,omitempty"`
	TransitDays       int        `json:"transit_days,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	Guaranteed        bool       `json:"guaranteed,omitempty"`
}

// Label is a postage label.
type Label struct {
	Format LabelFormat `json:"format"`
	URL    string      `json:"url"`
}

// ShippingOptions restricts which rates are acceptable.
type ShippingOptions struct {
	Carriers []string `json:"carriers,omitempty"` // empty means all
	Services []string `json:"services,omitempty"`
}

// QuoteRequest asks for rates for one parcel between two addresses.
type QuoteRequest struct {
	Origin      Address         `json:"origin"`
	Destination Address         `json:"destination"`
	Parcel      Parcel          `json:"parcel"`
	Reference   string          `json:"reference,omitempty"`
	Options     ShippingOptions `json:"options"`
}

// QuoteResponse holds the rates a carrier offered. QuoteID is the id to buy against.
type QuoteResponse struct {
	QuoteID  string       `json:"quote_id"`
	Carrier  string       `json:"carrier"`
	Rates    []RateOption `json:"rates"`
	Messages []string     `json:"messages,omitempty"`
}

// CreateOrderRequest buys a label. With a QuoteID the quote's rate RateID is
// bought, or its cheapest matching rate when RateID is empty. Without a
// QuoteID a new quote is made from the addresses and parcel first.
type CreateOrderRequest struct {
	QuoteID     string          `json:"quote_id,omitempty"`
	RateID      string          `json:"rate_id,omitempty"`
	Origin      Address         `json:"origin"`
	Destination Address         `json:"destination"`
	Parcel      Parcel          `json:"parcel"`
	Reference   string          `json:"reference,omitempty"`
	Options     ShippingOptions `json:"options"`
}

// CreateOrderResponse describes a purchased label.
type CreateOrderResponse struct {
	OrderID           string         `json:"order_id"`
	TrackingNumber    string         `json:"tracking_number"`
	Status            ShipmentStatus `json:"status"`
	Carrier           string         `json:"carrier"`
	Service           string         `json:"service"`
	TotalCharged      Money          `json:"total_charged"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery,omitempty"`
	Label             *Label         `json:"label,omitempty"`
}

// GetLabelRequest asks for the label of an order in a given format.
type GetLabelRequest struct {
	OrderID string      `json:"order_id"`
	Format  LabelFormat `json:"format,omitempty"`
}

// GetLabelResponse carries the label of an order.
type GetLabelResponse struct {
	OrderID string `json:"order_id"`
	Label   Label  `json:"label"`
}

// CancelOrderRequest asks for an order's label to be refunded.
type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason,omitempty"`
}

// CancelOrderResponse reports the refund state of a cancelled order.
type CancelOrderResponse struct {
	OrderID      string         `json:"order_id"`
	Status       ShipmentStatus `json:"status"`
	RefundStatus RefundStatus   `json:"refund_status"`
}
