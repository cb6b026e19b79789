package easypost

import (
	"context"
	"net/http"
	"time"
)

// PostageLabel is the purchased label of a shipment.
type PostageLabel struct {
	ID              string     `json:"id,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	DateAdvance     int        `json:"date_advance,omitempty"`
	IntegratedForm  string     `json:"integrated_form,omitempty"`
	LabelDate       *time.Time `json:"label_date,omitempty"`
	LabelResolution int        `json:"label_resolution,omitempty"`
	LabelSize       string     `json:"label_size,omitempty"`
	LabelType       string     `json:"label_type,omitempty"`
	LabelFileType   string     `json:"label_file_type,omitempty"`
	LabelURL        string     `json:"label_url,omitempty"`
	LabelPDFURL     string     `json:"label_pdf_url,omitempty"`
	LabelZPLURL     string     `json:"label_zpl_url,omitempty"`
	LabelEPL2URL    string     `json:"label_epl2_url,omitempty"`
}

// Message is a carrier message attached to a shipment, usually a rating failure.
type Message struct {
	Carrier string `json:"carrier,omitempty"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// Shipment joins addresses, a parcel and optional customs info, and carries
// the rates offered for it.
type Shipment struct {
	ID              string            `json:"id,omitempty"`
	Mode            string            `json:"mode,omitempty"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
	Reference       string            `json:"reference,omitempty"`
	Status          string            `json:"status,omitempty"`
	TrackingCode    string            `json:"tracking_code,omitempty"`
	ToAddress       *Address          `json:"to_address,omitempty"`
	FromAddress     *Address          `json:"from_address,omitempty"`
	ReturnAddress   *Address          `json:"return_address,omitempty"`
	BuyerAddress    *Address          `json:"buyer_address,omitempty"`
	Parcel          *Parcel           `json:"parcel,omitempty"`
	CustomsInfo     *CustomsInfo      `json:"customs_info,omitempty"`
	CarrierAccounts []*CarrierAccount `json:"carrier_accounts,omitempty"`
	Options         map[string]any    `json:"options,omitempty"`
	IsReturn        bool              `json:"is_return,omitempty"`
	Rates           []*Rate           `json:"rates,omitempty"`
	SelectedRate    *Rate             `json:"selected_rate,omitempty"`
	PostageLabel    *PostageLabel     `json:"postage_label,omitempty"`
	Messages        []Message         `json:"messages,omitempty"`
	RefundStatus    string            `json:"refund_status,omitempty"`
	BatchID         string            `json:"batch_id,omitempty"`
	ScanForm        *ScanForm         `json:"scan_form,omitempty"`
}

// LowestRate returns the cheapest rate on the shipment, optionally limited to
// the given carriers and services.
func (s *Shipment) LowestRate(carriers, services []string) (*Rate, error) {
	return lowestRate(s.Rates, carriers, services)
}

// CreateShipment creates a shipment and fetches its rates.
func (c *Client) CreateShipment(ctx context.Context, shipment *Shipment) (*Shipment, error) {
	req := NewRequest(http.MethodPost, "shipments").
		SetBody(map[string]any{"shipment": shipment})
	return Execute[Shipment](ctx, c, req)
}

// GetShipment retrieves a shipment by id.
func (c *Client) GetShipment(ctx context.Context, id string) (*Shipment, error) {
	req := NewRequest(http.MethodGet, "shipments/{id}").
		AddURLSegment("id", id)
	return Execute[Shipment](ctx, c, req)
}

// BuyShipment purchases the label for one of the shipment's rates.
func (c *Client) BuyShipment(ctx context.Context, id, rateID string) (*Shipment, error) {
	req := NewRequest(http.MethodPost, "shipments/{id}/buy").
		AddURLSegment("id", id).
		SetBody(map[string]any{"rate": map[string]string{"id": rateID}})
	return Execute[Shipment](ctx, c, req)
}

// LabelShipment converts a purchased label to another file format
// (PDF, ZPL or EPL2). An empty format keeps the current one.
func (c *Client) LabelShipment(ctx context.Context, id, format string) (*Shipment, error) {
	req := NewRequest(http.MethodGet, "shipments/{id}/label").
		AddURLSegment("id", id).
		AddQueryParam("file_format", format)
	return Execute[Shipment](ctx, c, req)
}

// RefundShipment requests a refund for a purchased, unused label.
func (c *Client) RefundShipment(ctx context.Context, id string) (*Shipment, error) {
	req := NewRequest(http.MethodPost, "shipments/{id}/refund").
		AddURLSegment("id", id)
	return Execute[Shipment](ctx, c, req)
}
