package easypost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Request is a logical API call: a path template with {name} placeholders,
// the values for them, query parameters and an optional JSON body.
type Request struct {
	method   string
	path     string
	segments map[string]string
	query    url.Values
	body     any
}

// NewRequest creates a logical request for a path relative to the API base,
// e.g. NewRequest(http.MethodGet, "scan_forms/{id}").
func NewRequest(method, path string) *Request {
	return &Request{
		method:   method,
		path:     path,
		segments: make(map[string]string),
		query:    make(url.Values),
	}
}

// AddURLSegment sets the value substituted for {name} in the path.
func (r *Request) AddURLSegment(name, value string) *Request {
	r.segments[name] = value
	return r
}

// AddQueryParam adds a query parameter. Empty values are dropped at assembly.
func (r *Request) AddQueryParam(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// AddQueryString encodes an options struct with `url` tags as query parameters.
// A nil pointer adds nothing.
func (r *Request) AddQueryString(opts any) error {
	values, err := query.Values(opts)
	if err != nil {
		return fmt.Errorf("encoding query options: %w", err)
	}
	for key, vs := range values {
		for _, v := range vs {
			r.query.Add(key, v)
		}
	}
	return nil
}

// SetBody sets the value sent as the JSON request body.
func (r *Request) SetBody(body any) *Request {
	r.body = body
	return r
}

// Method returns the HTTP method.
func (r *Request) Method() string {
	return r.method
}

// Path returns the unresolved path template.
func (r *Request) Path() string {
	return r.path
}

// WireRequest is a fully assembled outbound request.
type WireRequest struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

// Assemble turns a logical request into a wire request. It panics if a path
// placeholder has no value. The logical request is left untouched.
func (c *Client) Assemble(req *Request) (*WireRequest, error) {
	path := resolvePath(req.path, req.segments)

	u := c.config.APIBase + "/" + strings.TrimLeft(path, "/")
	if q := encodeQuery(req.query); q != "" {
		u += "?" + q
	}

	header := make(http.Header)
	header.Set("Authorization", "Bearer "+c.config.APIKey)
	header.Set("User-Agent", c.userAgent)
	header.Set("Accept", "application/json")

	var body []byte
	if req.body != nil {
		var err error
		body, err = json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal request body: %v", ErrInvalidRequest, err)
		}
		header.Set("Content-Type", "application/json")
	}

	return &WireRequest{
		Method:  req.method,
		URL:     u,
		Header:  header,
		Body:    body,
		Timeout: c.config.Timeout,
	}, nil
}

// HTTPRequest builds the *http.Request to send. When the wire request has a
// positive timeout the returned context carries that deadline; the cancel
// func must always be called.
func (w *WireRequest) HTTPRequest(ctx context.Context) (*http.Request, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if w.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
	}

	var bodyReader io.Reader
	if w.Body != nil {
		bodyReader = bytes.NewReader(w.Body)
	}

	req, err := http.NewRequestWithContext(ctx, w.Method, w.URL, bodyReader)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidRequest, err)
	}
	req.Header = w.Header.Clone()
	return req, cancel, nil
}

func resolvePath(template string, segments map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		value, ok := segments[name]
		if !ok {
			panic(fmt.Sprintf("easypost: no value for path segment %q in %q", name, template))
		}
		return url.PathEscape(value)
	})
}

// encodeQuery encodes in sorted key order and omits keys without a value.
func encodeQuery(values url.Values) string {
	kept := make(url.Values, len(values))
	for key, vs := range values {
		for _, v := range vs {
			if v != "" {
				kept.Add(key, v)
			}
		}
	}
	return kept.Encode()
}
