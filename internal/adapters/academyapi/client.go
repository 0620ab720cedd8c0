// Package academyapi is the HTTP client for the academy REST API.
package academyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/http/perf"
	"github.com/HazemIbrahim256/sports-academy/internal/adapters/metrics"
)

// DefaultTimeout bounds a single call when the caller gives none.
const DefaultTimeout = 15 * time.Second

// DefaultSlowCall is the threshold above which calls are logged at WARN.
const DefaultSlowCall = 200 * time.Millisecond

// maxErrorBody caps how much of an error body is kept.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	SlowCall  time.Duration
	HTTP      *http.Client
	Collector *perf.Collector
	Metrics   *metrics.Manager
}

// Client calls the academy API on behalf of a signed-in user.
// It holds no per-user state; every call takes the bearer token explicitly.
type Client struct {
	base      string
	http      *http.Client
	slowCall  time.Duration
	collector *perf.Collector
	metrics   *metrics.Manager
}

// New builds a client.
// PRE: opts.BaseURL is an absolute URL
// POST: trailing slash trimmed from the base; zero durations replaced by defaults
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	slow := opts.SlowCall
	if slow <= 0 {
		slow = DefaultSlowCall
	}
	return &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		http:      hc,
		slowCall:  slow,
		collector: opts.Collector,
		metrics:   opts.Metrics,
	}
}

// Origin is the base URL used to resolve relative media paths.
func (c *Client) Origin() string {
	return c.base
}

// Request describes one call.
// Route is the path template used for logs and metrics, e.g. "/api/groups/{id}/".
type Request struct {
	Method string
	Path   string
	Route  string
	Token  string
	Query  url.Values
	JSON   any
	Form   *Form
}

// Response is a successful answer, already read.
// Body is nil when the API sent no content.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Empty reports an answer with no value (204, zero length or blank text).
func (r *Response) Empty() bool {
	return len(bytes.TrimSpace(r.Body)) == 0
}

// IsPDF reports a binary PDF payload.
func (r *Response) IsPDF() bool {
	return strings.Contains(r.ContentType, "application/pdf")
}

// Decode parses a JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if r.Empty() || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id so outbound calls share it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Do performs req and returns the read response, or *Error for non-2xx answers.
// PRE: at most one of req.JSON and req.Form is set
// POST: the response body is fully read and closed
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.base + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType == "" {
		contentType = "application/json"
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json, application/pdf")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	reqID := RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", reqID)

	route := req.Route
	if route == "" {
		route = req.Path
	}
	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(ctx, req.Method, route, reqID, 0, start)
		return nil, fmt.Errorf("%s %s: %w", req.Method, route, err)
	}
	defer resp.Body.Close()
	c.observe(ctx, req.Method, route, reqID, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(raw),
			Kind:       kindOf(resp.StatusCode),
		}
	}

	out := &Response{Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, nil
	}
	out.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", req.Method, route, err)
	}
	return out, nil
}

// call performs req and decodes a JSON answer into out (which may be nil).
func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// binary performs req and returns the raw bytes of a PDF answer.
func (c *Client) binary(ctx context.Context, req Request) ([]byte, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsPDF() {
		return nil, fmt.Errorf("%s %s: expected application/pdf, got %q", req.Method, req.Route, resp.ContentType)
	}
	return resp.Body, nil
}

func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func (c *Client) observe(ctx context.Context, method, route, reqID string, status int, start time.Time) {
	d := time.Since(start)
	ms := float64(d.Microseconds()) / 1000.0
	attrs := []any{
		"request_id", reqID,
		"method", method,
		"route", route,
		"status", status,
		"duration_ms", ms,
	}
	if d >= c.slowCall {
		slog.WarnContext(ctx, "slow_upstream_call", attrs...)
	} else {
		slog.DebugContext(ctx, "upstream_call", attrs...)
	}
	c.collector.Record(perf.Entry{
		Kind:       perf.KindUpstream,
		Path:       method + " " + route,
		StatusCode: status,
		DurationMs: ms,
		Timestamp:  start,
	})
	c.metrics.ObserveUpstream(route, method, status, d)
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
