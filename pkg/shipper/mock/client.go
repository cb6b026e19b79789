// Package mock provides an in-memory shipper for tests and local runs.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/tournevent/easypost/pkg/shipper"
)

// Client is a deterministic in-memory shipper. Orders it creates can be
// labelled and cancelled; unknown order ids fail with shipper.ErrOrderNotFound.
type Client struct {
	name      string
	basePrice float64

	// Err, when set, is returned by every call.
	Err error

	mu     sync.Mutex
	seq    int
	orders map[string]*shipper.CreateOrderResponse
}

// New creates a mock shipper whose cheapest rate costs 10.
func New(name string) *Client {
	return NewWithPrice(name, 10)
}

// NewWithPrice creates a mock shipper whose cheapest rate costs basePrice.
func NewWithPrice(name string, basePrice float64) *Client {
	return &Client{
		name:      name,
		basePrice: basePrice,
		orders:    make(map[string]*shipper.CreateOrderResponse),
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GetQuote returns a ground and an express rate.
func (c *Client) GetQuote(_ context.Context, _ *shipper.QuoteRequest) (*shipper.QuoteResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	quoteID := c.nextID("quote")
	return &shipper.QuoteResponse{
		QuoteID: quoteID,
		Carrier: c.name,
		Rates: []shipper.RateOption{
			c.rate(quoteID, "Ground", c.basePrice, 5),
			c.rate(quoteID, "Express", c.basePrice*2, 2),
		},
	}, nil
}

// CreateOrder records a purchased order.
func (c *Client) CreateOrder(_ context.Context, _ *shipper.CreateOrderRequest) (*shipper.CreateOrderResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	orderID := c.nextID("order")
	resp := &shipper.CreateOrderResponse{
		OrderID:        orderID,
		TrackingNumber: fmt.Sprintf("TRK-%s", orderID),
		Status:         shipper.StatusPurchased,
		Carrier:        c.name,
		Service:        "Ground",
		TotalCharged:   shipper.Money{Amount: c.basePrice, Currency: "USD"},
		Label: &shipper.Label{
			Format: shipper.LabelPNG,
			URL:    c.labelURL(orderID, shipper.LabelPNG),
		},
	}

	c.mu.Lock()
	c.orders[orderID] = resp
	c.mu.Unlock()
	return resp, nil
}

// GetLabel returns the label of a known order.
func (c *Client) GetLabel(_ context.Context, req *shipper.GetLabelRequest) (*shipper.GetLabelResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if !c.known(req.OrderID) {
		return nil, c.notFound(req.OrderID)
	}

	format := req.Format
	if format == "" {
		format = shipper.LabelPNG
	}
	return &shipper.GetLabelResponse{
		OrderID: req.OrderID,
		Label:   shipper.Label{Format: format, URL: c.labelURL(req.OrderID, format)},
	}, nil
}

// CancelOrder refunds a known order.
func (c *Client) CancelOrder(_ context.Context, req *shipper.CancelOrderRequest) (*shipper.CancelOrderResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if !c.known(req.OrderID) {
		return nil, c.notFound(req.OrderID)
	}

	return &shipper.CancelOrderResponse{
		OrderID:      req.OrderID,
		Status:       shipper.StatusCancelled,
		RefundStatus: shipper.RefundSubmitted,
	}, nil
}

func (c *Client) rate(quoteID, service string, price float64, days int) shipper.RateOption {
	return shipper.RateOption{
		RateID:      fmt.Sprintf("%s-%s", quoteID, service),
		QuoteID:     quoteID,
		Carrier:     c.name,
		Service:     service,
		TotalPrice:  shipper.Money{Amount: price, Currency: "USD"},
		TransitDays: days,
	}
}

func (c *Client) nextID(kind string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("%s-%s-%d", c.name, kind, c.seq)
}

func (c *Client) known(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.orders[orderID]
	return ok
}

func (c *Client) notFound(orderID string) error {
	return shipper.NewShipperError(c.name, "NOT_FOUND", "unknown order "+orderID).
		WithStatusCode(404).
		WithKind(shipper.ErrOrderNotFound)
}

func (c *Client) labelURL(orderID string, format shipper.LabelFormat) string {
	return fmt.Sprintf("https://labels.%s.mock/%s.%s", c.name, orderID, format)
}

var _ shipper.Shipper = (*Client)(nil)
