package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/easypost/internal/telemetry"
	"github.com/tournevent/easypost/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server of the shipping bridge.
type Server struct {
	port     int
	registry *shipper.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port int

	// Gatherer backs /metrics. Defaults to the global Prometheus registry, or
	// to a private one when New is given no metrics.
	Gatherer prometheus.Gatherer
}

// New creates a new server instance. metrics may be shared with the API
// clients so /metrics reports both; when nil, the server records into a
// private registry.
func New(cfg Config, registry *shipper.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	gatherer := cfg.Gatherer
	if metrics == nil {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)
		if gatherer == nil {
			gatherer = reg
		}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		port:     cfg.Port,
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		gatherer: gatherer,
	}
}

// Handler returns the routes of the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /carriers", s.handleCarriers)
	mux.HandleFunc("POST /quotes", s.handleQuotes)
	mux.HandleFunc("POST /orders", s.handleCreateOrder)
	mux.HandleFunc("GET /orders/{carrier}/{id}/label", s.handleGetLabel)
	mux.HandleFunc("DELETE /orders/{carrier}/{id}", s.handleCancelOrder)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"carriers": s.registry.Names()})
}

// quoteBody is a quote request plus the registered carriers to ask.
type quoteBody struct {
	shipper.QuoteRequest
	Shippers []string `json:"shippers,omitempty"`
}

type quoteResult struct {
	Quotes []*shipper.QuoteResponse `json:"quotes"`
	Rates  []shipper.RateOption     `json:"rates"`
	Errors []*errorBody             `json:"errors,omitempty"`
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var body quoteBody
	if !s.decode(w, r, &body) {
		return
	}
	if err := validateShipment(body.Origin, body.Destination, body.Parcel); err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	set := s.registry.Quote(r.Context(), &body.QuoteRequest, body.Shippers...)

	result := quoteResult{
		Quotes: set.Quotes,
		Rates:  set.Rates,
	}
	for _, err := range set.Errors {
		result.Errors = append(result.Errors, toErrorBody(err))
	}
	if result.Quotes == nil {
		result.Quotes = []*shipper.QuoteResponse{}
	}
	if result.Rates == nil {
		result.Rates = []shipper.RateOption{}
	}

	for _, q := range set.Quotes {
		s.metrics.RecordOperation("quote", q.Carrier, "success", time.Since(start))
	}
	for _, e := range result.Errors {
		s.metrics.RecordOperation("quote", e.Carrier, e.Code, time.Since(start))
	}

	status := http.StatusOK
	if len(set.Quotes) == 0 && len(set.Errors) > 0 {
		status = statusFor(set.Errors[0])
		s.logger.Ctx(r.Context()).Warn("No carrier returned a quote", zap.Int("errors", len(set.Errors)))
	}
	writeJSON(w, status, result)
}

// orderBody is an order request plus the registered carrier to buy from.
type orderBody struct {
	shipper.CreateOrderRequest
	Shipper string `json:"shipper"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body orderBody
	if !s.decode(w, r, &body) {
		return
	}
	if body.QuoteID == "" {
		if err := validateShipment(body.Origin, body.Destination, body.Parcel); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	carrier, err := s.registry.Get(body.Shipper)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	resp, err := carrier.CreateOrder(r.Context(), &body.CreateOrderRequest)
	s.observe("create_order", carrier.Name(), start, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	carrier, err := s.registry.Get(r.PathValue("carrier"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	resp, err := carrier.GetLabel(r.Context(), &shipper.GetLabelRequest{
		OrderID: r.PathValue("id"),
		Format:  shipper.LabelFormat(r.URL.Query().Get("format")),
	})
	s.observe("get_label", carrier.Name(), start, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	carrier, err := s.registry.Get(r.PathValue("carrier"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	resp, err := carrier.CancelOrder(r.Context(), &shipper.CancelOrderRequest{
		OrderID: r.PathValue("id"),
		Reason:  r.URL.Query().Get("reason"),
	})
	s.observe("cancel_order", carrier.Name(), start, err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) observe(operation, carrier string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = toErrorBody(err).Code
	}
	s.metrics.RecordOperation(operation, carrier, status, time.Since(start))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, invalidRequest("invalid JSON: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := toErrorBody(err)
	if status >= http.StatusInternalServerError {
		s.logger.Ctx(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", body.Code),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]*errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ============================================================================
// Errors
// ============================================================================

var errInvalidRequest = errors.New("invalid request")

type errorBody struct {
	Carrier   string   `json:"carrier,omitempty"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	Retryable bool     `json:"retryable"`
}

func invalidRequest(msg string) error {
	return shipper.NewShipperError("", "REQUEST.INVALID", msg).WithKind(errInvalidRequest)
}

func validateShipment(from, to shipper.Address, parcel shipper.Parcel) error {
	switch {
	case from.Zip == "" || from.Country == "":
		return invalidRequest("origin zip and country are required")
	case to.Zip == "" || to.Country == "":
		return invalidRequest("destination zip and country are required")
	case parcel.Weight <= 0:
		return invalidRequest("parcel weight must be positive")
	}
	return nil
}

func toErrorBody(err error) *errorBody {
	var shipErr *shipper.ShipperError
	if errors.As(err, &shipErr) {
		return &errorBody{
			Carrier:   shipErr.Carrier,
			Code:      shipErr.Code,
			Message:   shipErr.Message,
			Details:   shipErr.Details,
			Retryable: shipErr.Retryable,
		}
	}
	if errors.Is(err, shipper.ErrCarrierNotFound) {
		return &errorBody{Code: "CARRIER.NOT_FOUND", Message: err.Error()}
	}
	return &errorBody{Code: "INTERNAL", Message: err.Error(), Retryable: shipper.IsRetryable(err)}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, shipper.ErrCarrierNotFound), errors.Is(err, shipper.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipper.ErrInvalidAddress),
		errors.Is(err, shipper.ErrInvalidParcel),
		errors.Is(err, shipper.ErrNoRates),
		errors.Is(err, shipper.ErrRefundRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shipper.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, shipper.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
