package easypost

import (
	"context"
	"net/http"
	"time"
)

// ScanForm is a manifest of shipments handed to a carrier in one pickup.
type ScanForm struct {
	ID            string     `json:"id,omitempty"`
	Mode          string     `json:"mode,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	Status        string     `json:"status,omitempty"` // creating, created or failed
	Message       string     `json:"message,omitempty"`
	Address       *Address   `json:"address,omitempty"`
	TrackingCodes []string   `json:"tracking_codes,omitempty"`
	FormURL       string     `json:"form_url,omitempty"`
	FormFileType  string     `json:"form_file_type,omitempty"`
	BatchID       string     `json:"batch_id,omitempty"`
}

// ScanFormList is one page of scan forms.
type ScanFormList struct {
	ScanForms []*ScanForm `json:"scan_forms"`
	HasMore   bool        `json:"has_more"`

	// Options are the options the page was requested with.
	Options *ListOptions `json:"-"`
}

// ListOptions paginates list endpoints. Zero fields are not sent.
type ListOptions struct {
	BeforeID      string     `url:"before_id,omitempty"`
	AfterID       string     `url:"after_id,omitempty"`
	StartDatetime *time.Time `url:"start_datetime,omitempty"`
	EndDatetime   *time.Time `url:"end_datetime,omitempty"`
	PageSize      int        `url:"page_size,omitempty"`
}

// ListScanForms returns a page of scan forms. opts may be nil.
func (c *Client) ListScanForms(ctx context.Context, opts *ListOptions) (*ScanFormList, error) {
	req := NewRequest(http.MethodGet, "scan_forms")
	if opts != nil {
		if err := req.AddQueryString(opts); err != nil {
			return nil, err
		}
	}

	list, err := Execute[ScanFormList](ctx, c, req)
	if err != nil {
		return nil, err
	}
	list.Options = opts
	return list, nil
}

// GetScanForm retrieves a scan form by id.
func (c *Client) GetScanForm(ctx context.Context, id string) (*ScanForm, error) {
	req := NewRequest(http.MethodGet, "scan_forms/{id}").
		AddURLSegment("id", id)
	return Execute[ScanForm](ctx, c, req)
}

// CreateScanForm creates a scan form for already purchased shipments.
func (c *Client) CreateScanForm(ctx context.Context, shipmentIDs ...string) (*ScanForm, error) {
	shipments := make([]map[string]string, len(shipmentIDs))
	for i, id := range shipmentIDs {
		shipments[i] = map[string]string{"id": id}
	}
	req := NewRequest(http.MethodPost, "scan_forms").
		SetBody(map[string]any{"shipments": shipments})
	return Execute[ScanForm](ctx, c, req)
}
