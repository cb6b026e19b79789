package easypost

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	ep "github.com/tournevent/easypost/pkg/easypost"
)

// MockAPIClient is an in-memory APIClient. Shipments it creates can be
// bought, relabelled and refunded; unknown ids fail with NOT_FOUND like the
// real service.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateShipment func(ctx context.Context, shipment *ep.Shipment) (*ep.Shipment, error)
	OnGetShipment    func(ctx context.Context, id string) (*ep.Shipment, error)
	OnBuyShipment    func(ctx context.Context, id, rateID string) (*ep.Shipment, error)
	OnLabelShipment  func(ctx context.Context, id, format string) (*ep.Shipment, error)
	OnRefundShipment func(ctx context.Context, id string) (*ep.Shipment, error)

	mu        sync.Mutex
	shipments map[string]*ep.Shipment
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{
		shipments: make(map[string]*ep.Shipment),
	}
}

// CreateShipment stores the shipment and attaches three rates to it.
func (m *MockAPIClient) CreateShipment(ctx context.Context, shipment *ep.Shipment) (*ep.Shipment, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, shipment)
	}

	created := *shipment
	created.ID = "shp_" + shortID()
	created.Mode = "test"
	created.Status = "unknown"
	created.Rates = []*ep.Rate{
		mockRate(created.ID, "USPS", "Priority", "7.58", 2),
		mockRate(created.ID, "UPS", "Ground", "9.10", 4),
		mockRate(created.ID, "FedEx", "FEDEX_2_DAY", "18.40", 2),
	}

	m.mu.Lock()
	m.shipments[created.ID] = &created
	m.mu.Unlock()
	return clone(&created), nil
}

// GetShipment returns a stored shipment.
func (m *MockAPIClient) GetShipment(ctx context.Context, id string) (*ep.Shipment, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetShipment != nil {
		return m.OnGetShipment(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok {
		return nil, notFound()
	}
	return clone(s), nil
}

// BuyShipment selects a rate and issues a PNG label.
func (m *MockAPIClient) BuyShipment(ctx context.Context, id, rateID string) (*ep.Shipment, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnBuyShipment != nil {
		return m.OnBuyShipment(ctx, id, rateID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok {
		return nil, notFound()
	}
	if s.SelectedRate != nil {
		return nil, ep.NewRequestError("SHIPMENT.POSTAGE.EXISTS", "postage already exists for this shipment").
			WithStatusCode(http.StatusUnprocessableEntity)
	}

	for _, r := range s.Rates {
		if r.ID == rateID {
			now := time.Now().UTC()
			s.SelectedRate = r
			s.TrackingCode = fmt.Sprintf("9400%018d", now.UnixNano()%1e18)
			s.Status = "pre_transit"
			s.PostageLabel = &ep.PostageLabel{
				ID:            "pl_" + shortID(),
				LabelDate:     &now,
				LabelFileType: "image/png",
				LabelURL:      labelURL(id, "png"),
			}
			return clone(s), nil
		}
	}
	return nil, ep.NewRequestError("SHIPMENT.RATE.INVALID", "rate "+rateID+" does not belong to this shipment").
		WithStatusCode(http.StatusUnprocessableEntity)
}

// LabelShipment adds a label URL in the requested format.
func (m *MockAPIClient) LabelShipment(ctx context.Context, id, format string) (*ep.Shipment, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnLabelShipment != nil {
		return m.OnLabelShipment(ctx, id, format)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok {
		return nil, notFound()
	}
	if s.PostageLabel == nil {
		return nil, ep.NewRequestError("SHIPMENT.POSTAGE.NOT_PURCHASED", "shipment has no postage").
			WithStatusCode(http.StatusUnprocessableEntity)
	}

	ext := strings.ToLower(format)
	switch ext {
	case "pdf":
		s.PostageLabel.LabelPDFURL = labelURL(id, ext)
	case "zpl":
		s.PostageLabel.LabelZPLURL = labelURL(id, ext)
	case "epl2":
		s.PostageLabel.LabelEPL2URL = labelURL(id, ext)
	}
	return clone(s), nil
}

// RefundShipment marks a purchased shipment as submitted for refund.
func (m *MockAPIClient) RefundShipment(ctx context.Context, id string) (*ep.Shipment, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnRefundShipment != nil {
		return m.OnRefundShipment(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok {
		return nil, notFound()
	}
	if s.PostageLabel == nil {
		return nil, ep.NewRequestError("SHIPMENT.REFUND.UNAVAILABLE", "shipment has no postage to refund").
			WithStatusCode(http.StatusUnprocessableEntity)
	}
	s.RefundStatus = "submitted"
	return clone(s), nil
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return ep.NewRequestError("MOCK.ERROR", "Simulated API error").
			WithStatusCode(http.StatusServiceUnavailable)
	}
	return nil
}

func mockRate(shipmentID, carrier, service, price string, days int) *ep.Rate {
	return &ep.Rate{
		ID:           "rate_" + shortID(),
		Mode:         "test",
		ShipmentID:   shipmentID,
		Carrier:      carrier,
		Service:      service,
		Rate:         price,
		Currency:     "USD",
		DeliveryDays: &days,
	}
}

func notFound() error {
	return ep.NewRequestError(ep.CodeNotFound, "The requested resource could not be found.").
		WithStatusCode(http.StatusNotFound)
}

func labelURL(id, ext string) string {
	return fmt.Sprintf("https://easypost-files.mock/postage_label/%s.%s", id, ext)
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// clone copies the top-level shipment and its label so callers cannot
// mutate stored state.
func clone(s *ep.Shipment) *ep.Shipment {
	c := *s
	if s.PostageLabel != nil {
		label := *s.PostageLabel
		c.PostageLabel = &label
	}
	return &c
}

var _ APIClient = (*MockAPIClient)(nil)
