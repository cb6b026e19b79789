// Package easypost adapts the EasyPost API client to the shipper.Shipper
// interface. A quote is an EasyPost shipment with its rates, and an order is
// that shipment once a rate has been bought.
package easypost

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	ep "github.com/tournevent/easypost/pkg/easypost"
	"github.com/tournevent/easypost/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "easypost"

// Config holds EasyPost shipper configuration.
type Config struct {
	APIKey  string
	APIBase string
	Timeout time.Duration
	UseMock bool // When true, uses the in-memory mock API client

	// Recorder receives per-call metrics from the underlying API client.
	Recorder ep.Recorder
}

// Client is the EasyPost shipper. It implements shipper.Shipper and delegates
// API calls to an APIClient.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new EasyPost shipper backed by the real API, or by a
// MockAPIClient when cfg.UseMock is set.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient
	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = ep.New(ep.Config{
			APIBase:  cfg.APIBase,
			APIKey:   cfg.APIKey,
			Timeout:  cfg.Timeout,
			Recorder: cfg.Recorder,
		}, logger, tracer)
	}
	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new EasyPost shipper with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("github.com/tournevent/easypost/pkg/shipper/easypost")
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetQuote creates a shipment and returns its rates, filtered by the
// requested carriers and services.
func (c *Client) GetQuote(ctx context.Context, req *shipper.QuoteRequest) (*shipper.QuoteResponse, error) {
	ctx, span := c.tracer.Start(ctx, "shipper.easypost.GetQuote")
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting EasyPost quote",
		zap.String("origin_zip", req.Origin.Zip),
		zap.String("destination_zip", req.Destination.Zip),
		zap.Float64("weight_oz", req.Parcel.Weight),
	)

	shipment, err := c.apiClient.CreateShipment(ctx, newShipment(req.Origin, req.Destination, req.Parcel, req.Reference))
	if err != nil {
		return nil, c.fail(ctx, span, "quote", err)
	}
	span.SetAttributes(attribute.String("easypost.shipment_id", shipment.ID))

	return shipmentToQuote(shipment, req.Options), nil
}

// CreateOrder buys a label. See shipper.CreateOrderRequest for how the rate
// is chosen.
func (c *Client) CreateOrder(ctx context.Context, req *shipper.CreateOrderRequest) (*shipper.CreateOrderResponse, error) {
	ctx, span := c.tracer.Start(ctx, "shipper.easypost.CreateOrder")
	defer span.End()

	log := c.logger.Ctx(ctx)
	log.Info("Creating EasyPost order",
		zap.String("quote_id", req.QuoteID),
		zap.String("rate_id", req.RateID),
	)

	shipmentID, rateID := req.QuoteID, req.RateID
	if shipmentID == "" || rateID == "" {
		var shipment *ep.Shipment
		var err error
		if shipmentID == "" {
			shipment, err = c.apiClient.CreateShipment(ctx, newShipment(req.Origin, req.Destination, req.Parcel, req.Reference))
		} else {
			shipment, err = c.apiClient.GetShipment(ctx, shipmentID)
		}
		if err != nil {
			return nil, c.fail(ctx, span, "order", err)
		}
		shipmentID = shipment.ID

		if rateID == "" {
			rate, err := shipment.LowestRate(req.Options.Carriers, req.Options.Services)
			if err != nil {
				return nil, c.fail(ctx, span, "order", err)
			}
			rateID = rate.ID
			log.Debug("Selected lowest rate",
				zap.String("rate_id", rate.ID),
				zap.String("carrier", rate.Carrier),
				zap.String("service", rate.Service),
				zap.String("rate", rate.Rate),
			)
		}
	}

	bought, err := c.apiClient.BuyShipment(ctx, shipmentID, rateID)
	if err != nil {
		return nil, c.fail(ctx, span, "order", err)
	}
	return shipmentToOrder(bought), nil
}

// GetLabel returns the order's label, converting it when a format other than
// the purchased one is requested.
func (c *Client) GetLabel(ctx context.Context, req *shipper.GetLabelRequest) (*shipper.GetLabelResponse, error) {
	ctx, span := c.tracer.Start(ctx, "shipper.easypost.GetLabel")
	defer span.End()

	c.logger.Ctx(ctx).Info("Getting EasyPost label",
		zap.String("order_id", req.OrderID),
		zap.String("format", string(req.Format)),
	)

	var shipment *ep.Shipment
	var err error
	if req.Format == "" || req.Format == shipper.LabelPNG {
		shipment, err = c.apiClient.GetShipment(ctx, req.OrderID)
	} else {
		shipment, err = c.apiClient.LabelShipment(ctx, req.OrderID, string(req.Format))
	}
	if err != nil {
		return nil, c.fail(ctx, span, "label", err)
	}

	label, ok := labelFor(shipment.PostageLabel, req.Format)
	if !ok {
		err := shipper.NewShipperError(carrierName, "LABEL.NOT_AVAILABLE", "no "+string(label.Format)+" label for "+req.OrderID).
			WithStatusCode(404).
			WithKind(shipper.ErrOrderNotFound)
		return nil, c.fail(ctx, span, "label", err)
	}
	return &shipper.GetLabelResponse{OrderID: shipment.ID, Label: label}, nil
}

// CancelOrder requests a refund of the order's label.
func (c *Client) CancelOrder(ctx context.Context, req *shipper.CancelOrderRequest) (*shipper.CancelOrderResponse, error) {
	ctx, span := c.tracer.Start(ctx, "shipper.easypost.CancelOrder")
	defer span.End()

	c.logger.Ctx(ctx).Info("Cancelling EasyPost order",
		zap.String("order_id", req.OrderID),
		zap.String("reason", req.Reason),
	)

	shipment, err := c.apiClient.RefundShipment(ctx, req.OrderID)
	if err != nil {
		return nil, c.fail(ctx, span, "cancel", err)
	}

	refund := shipper.RefundStatus(shipment.RefundStatus)
	if refund == shipper.RefundRejected {
		err := shipper.NewShipperError(carrierName, "REFUND.REJECTED", "refund rejected for "+req.OrderID).
			WithStatusCode(422).
			WithKind(shipper.ErrRefundRejected)
		return nil, c.fail(ctx, span, "cancel", err)
	}

	return &shipper.CancelOrderResponse{
		OrderID:      shipment.ID,
		Status:       shipper.StatusCancelled,
		RefundStatus: refund,
	}, nil
}

// fail converts err into a *shipper.ShipperError, records it on the span and logs it.
func (c *Client) fail(ctx context.Context, span trace.Span, op string, err error) error {
	var shipErr *shipper.ShipperError
	switch {
	case errors.As(err, &shipErr):
	case errors.Is(err, ep.ErrNoMatchingRate):
		shipErr = shipper.NewShipperError(carrierName, "RATE.NO_MATCH", "no rate matches the requested carriers and services").
			WithStatusCode(422).
			WithCause(err).
			WithKind(shipper.ErrNoRates)
	default:
		shipErr = shipper.FromRequestError(carrierName, err)
	}

	span.RecordError(shipErr)
	c.logger.Ctx(ctx).Error("EasyPost "+op+" failed",
		zap.String("code", shipErr.Code),
		zap.Int("status", shipErr.StatusCode),
		zap.Bool("retryable", shipErr.Retryable),
		zap.Error(err),
	)
	return shipErr
}

// ============================================================================
// Conversion helpers: shipper models -> EasyPost models
// ============================================================================

func newShipment(from, to shipper.Address, parcel shipper.Parcel, reference string) *ep.Shipment {
	if reference == "" {
		reference = uuid.New().String()
	}
	return &ep.Shipment{
		Reference:   reference,
		FromAddress: addressToAPI(from),
		ToAddress:   addressToAPI(to),
		Parcel:      parcelToAPI(parcel),
	}
}

func addressToAPI(a shipper.Address) *ep.Address {
	return &ep.Address{
		Name:        a.Name,
		Company:     a.Company,
		Street1:     a.Street1,
		Street2:     a.Street2,
		City:        a.City,
		State:       a.State,
		Zip:         a.Zip,
		Country:     a.Country,
		Phone:       a.Phone,
		Email:       a.Email,
		Residential: a.Residential,
	}
}

func parcelToAPI(p shipper.Parcel) *ep.Parcel {
	parcel := &ep.Parcel{
		Weight:            p.Weight,
		PredefinedPackage: p.PredefinedPackage,
	}
	if p.Length > 0 && p.Width > 0 && p.Height > 0 {
		parcel.Length, parcel.Width, parcel.Height = &p.Length, &p.Width, &p.Height
	}
	return parcel
}

// ============================================================================
// Conversion helpers: EasyPost models -> shipper models
// ============================================================================

func shipmentToQuote(s *ep.Shipment, opts shipper.ShippingOptions) *shipper.QuoteResponse {
	rates := make([]shipper.RateOption, 0, len(s.Rates))
	for _, r := range s.Rates {
		if !matches(r.Carrier, opts.Carriers) || !matches(r.Service, opts.Services) {
			continue
		}
		rates = append(rates, rateToShipper(s.ID, r))
	}

	messages := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, m.Carrier+": "+m.Message)
	}

	return &shipper.QuoteResponse{
		QuoteID:  s.ID,
		Carrier:  carrierName,
		Rates:    rates,
		Messages: messages,
	}
}

func rateToShipper(shipmentID string, r *ep.Rate) shipper.RateOption {
	amount, _ := r.Amount()
	opt := shipper.RateOption{
		RateID:            r.ID,
		QuoteID:           shipmentID,
		Carrier:           r.Carrier,
		Service:           r.Service,
		TotalPrice:        shipper.Money{Amount: amount, Currency: r.Currency},
		ListPrice:         money(r.ListRate, r.ListCurrency),
		RetailPrice:       money(r.RetailRate, r.RetailCurrency),
		EstimatedDelivery: r.DeliveryDate,
		Guaranteed:        r.DeliveryDateGuaranteed,
	}
	if r.DeliveryDays != nil {
		opt.TransitDays = *r.DeliveryDays
	} else if r.EstDeliveryDays != nil {
		opt.TransitDays = *r.EstDeliveryDays
	}
	return opt
}

func shipmentToOrder(s *ep.Shipment) *shipper.CreateOrderResponse {
	resp := &shipper.CreateOrderResponse{
		OrderID:        s.ID,
		TrackingNumber: s.TrackingCode,
		Status:         mapStatus(s.Status),
	}
	if r := s.SelectedRate; r != nil {
		amount, _ := r.Amount()
		resp.Carrier = r.Carrier
		resp.Service = r.Service
		resp.TotalCharged = shipper.Money{Amount: amount, Currency: r.Currency}
		resp.EstimatedDelivery = r.DeliveryDate
	}
	if label, ok := labelFor(s.PostageLabel, shipper.LabelPNG); ok {
		resp.Label = &label
	}
	return resp
}

// labelFor picks the label URL for format, PNG when format is empty.
func labelFor(pl *ep.PostageLabel, format shipper.LabelFormat) (shipper.Label, bool) {
	if format == "" {
		format = shipper.LabelPNG
	}
	label := shipper.Label{Format: format}
	if pl == nil {
		return label, false
	}

	switch format {
	case shipper.LabelPDF:
		label.URL = pl.LabelPDFURL
	case shipper.LabelZPL:
		label.URL = pl.LabelZPLURL
	case shipper.LabelEPL2:
		label.URL = pl.LabelEPL2URL
	default:
		label.URL = pl.LabelURL
	}
	return label, label.URL != ""
}

func mapStatus(status string) shipper.ShipmentStatus {
	switch status {
	case "pre_transit":
		return shipper.StatusPreTransit
	case "in_transit", "available_for_pickup":
		return shipper.StatusInTransit
	case "out_for_delivery":
		return shipper.StatusOutForDelivery
	case "delivered":
		return shipper.StatusDelivered
	case "return_to_sender":
		return shipper.StatusReturned
	case "failure", "error":
		return shipper.StatusFailure
	case "cancelled":
		return shipper.StatusCancelled
	case "", "unknown":
		return shipper.StatusPurchased
	default:
		return shipper.StatusUnknown
	}
}

func money(amount, currency string) *shipper.Money {
	if amount == "" {
		return nil
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return nil
	}
	return &shipper.Money{Amount: v, Currency: currency}
}

func matches(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}
