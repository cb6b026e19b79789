// Package easypost is a client for the EasyPost shipping API.
//
// Every call goes through the same pipeline: a logical Request is assembled
// into a WireRequest (auth, user agent, timeout, path and query), executed,
// and the response is classified into a typed value or a *RequestError.
// API-level failures are returned as errors, never raised as panics; the only
// panic is a path placeholder left without a value, which is a programming
// mistake in the calling wrapper.
package easypost

import (
	"net/http"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Version is the client version reported in the User-Agent header.
// Release builds may override it with -ldflags.
var Version = "1.0.0"

// DefaultAPIBase is the production EasyPost endpoint.
const DefaultAPIBase = "https://api.easypost.com/v2"

const tracerName = "github.com/tournevent/easypost/pkg/easypost"

// Recorder receives one observation per executed call.
type Recorder interface {
	RecordRequest(method, endpoint string, statusCode int, duration time.Duration)
	RecordError(code string)
}

// Config holds EasyPost client configuration.
type Config struct {
	APIBase string
	APIKey  string

	// Timeout bounds each call. Zero leaves the transport default in place.
	Timeout time.Duration

	// Version overrides the package Version in the User-Agent header.
	Version string

	// Recorder is optional.
	Recorder Recorder
}

// Client is the EasyPost API client. It is safe for concurrent use; nothing
// in it changes after New returns.
type Client struct {
	config     Config
	userAgent  string
	httpClient *http.Client
	logger     *otelzap.Logger
	tracer     trace.Tracer
}

// New creates a new EasyPost client using a fresh http.Client.
// A nil logger or tracer is replaced by a no-op.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return NewWithHTTPClient(cfg, &http.Client{}, logger, tracer)
}

// NewWithHTTPClient creates a new EasyPost client with a custom transport.
// This is useful for pointing tests at an httptest server.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	version := cfg.Version
	if version == "" {
		version = Version
	}

	return &Client{
		config:     cfg,
		userAgent:  "EasyPost/Go/" + version,
		httpClient: httpClient,
		logger:     logger,
		tracer:     tracer,
	}
}

// APIBase returns the base URL the client sends requests to.
func (c *Client) APIBase() string {
	return c.config.APIBase
}

// UserAgent returns the User-Agent header value sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}
