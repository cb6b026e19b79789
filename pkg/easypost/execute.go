package easypost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// response is what the transport hands back: a status and the raw body.
type response struct {
	statusCode int
	body       []byte
}

// Execute sends req and decodes a successful response into a new T.
//
// Any failure is returned as a *RequestError:
//   - no response at all: code RESPONSE.ERROR with the transport message;
//   - status >= 400 with an {"error": {...}} envelope: the service's error;
//   - status >= 400 without a usable envelope: code RESPONSE.PARSE_ERROR.
//
// A status below 400 is always treated as success, whatever the body holds.
func Execute[T any](ctx context.Context, c *Client, req *Request) (*T, error) {
	resp, err := c.send(ctx, req)
	result, err := interpret[T](resp, err)
	if reqErr, ok := AsRequestError(err); ok && c.config.Recorder != nil {
		c.config.Recorder.RecordError(reqErr.Code)
	}
	return result, err
}

// Exec sends req when no response body is expected.
func Exec(ctx context.Context, c *Client, req *Request) error {
	_, err := Execute[json.RawMessage](ctx, c, req)
	return err
}

// send assembles and performs the request. A non-nil error means no response
// was obtained.
func (c *Client) send(ctx context.Context, req *Request) (resp *response, err error) {
	ctx, span := c.tracer.Start(ctx, "easypost "+req.method+" "+req.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method),
			attribute.String("easypost.endpoint", req.path),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		c.observe(ctx, span, req, resp, err, time.Since(start))
	}()

	wire, err := c.Assemble(req)
	if err != nil {
		return nil, err
	}

	httpReq, cancel, err := wire.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &response{statusCode: httpResp.StatusCode, body: body}, nil
}

func (c *Client) observe(ctx context.Context, span trace.Span, req *Request, resp *response, err error, elapsed time.Duration) {
	log := c.logger.Ctx(ctx)
	fields := []zap.Field{
		zap.String("method", req.method),
		zap.String("endpoint", req.path),
		zap.Duration("duration", elapsed),
	}

	status := 0
	if resp != nil {
		status = resp.statusCode
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if rec := c.config.Recorder; rec != nil {
		rec.RecordRequest(req.method, req.path, status, elapsed)
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("EasyPost request failed", append(fields, zap.Error(err))...)
	case status >= http.StatusBadRequest:
		span.SetStatus(codes.Error, http.StatusText(status))
		log.Warn("EasyPost API error", append(fields, zap.Int("status", status))...)
	default:
		log.Debug("EasyPost request complete", append(fields, zap.Int("status", status))...)
	}
}

// interpret classifies a transport outcome into a value or a *RequestError.
func interpret[T any](resp *response, transportErr error) (*T, error) {
	if transportErr != nil || resp == nil {
		msg := "no response received"
		if transportErr != nil {
			msg = transportErr.Error()
		}
		reqErr := NewRequestError(CodeResponseError, msg)
		reqErr.cause = transportErr
		return nil, reqErr
	}

	if resp.statusCode < http.StatusBadRequest {
		result := new(T)
		if len(bytes.TrimSpace(resp.body)) == 0 {
			return result, nil
		}
		if err := json.Unmarshal(resp.body, result); err != nil {
			return nil, NewRequestError(CodeResponseError, fmt.Sprintf("failed to decode response: %v", err)).
				WithStatusCode(resp.statusCode).
				WithContent(resp.body)
		}
		return result, nil
	}

	return nil, parseRequestError(resp.body).
		WithStatusCode(resp.statusCode).
		WithContent(resp.body)
}

// parseRequestError reads the error envelope of a failure body, falling back
// to a generic parse error when the envelope is missing or has no code.
// Sub-errors are decoded leniently: plain strings become messages and entries
// of any other shape are dropped.
func parseRequestError(body []byte) *RequestError {
	envelope, ok := lookupPath(body, errorEnvelopePath...)
	if !ok {
		return NewRequestError(CodeParseError, parseErrorMessage)
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return NewRequestError(CodeParseError, parseErrorMessage)
	}

	var fields struct {
		Code    string          `json:"code"`
		Message json.RawMessage `json:"message"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil || fields.Code == "" {
		return NewRequestError(CodeParseError, parseErrorMessage)
	}

	reqErr := NewRequestError(fields.Code, leafText(fields.Message))
	reqErr.Errors = fieldErrors(fields.Errors)
	return reqErr
}

// leafText renders a JSON leaf as text: strings unquoted, anything else as
// its JSON form.
func leafText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func fieldErrors(raw json.RawMessage) []FieldError {
	out := []FieldError{}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return out
	}
	for _, entry := range entries {
		if string(entry) == "null" {
			continue
		}
		var msg string
		if err := json.Unmarshal(entry, &msg); err == nil {
			out = append(out, FieldError{Message: msg})
			continue
		}
		var fe FieldError
		if err := json.Unmarshal(entry, &fe); err == nil {
			out = append(out, fe)
		}
	}
	return out
}
