// Package sui is a minimal JSON-RPC client for a Sui full node.
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	model "auction-marketplace/internal/models"

	"golang.org/x/time/rate"
)

// ErrUnexpectedStatus is returned when the node answers with a non-200 HTTP status
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Client talks JSON-RPC 2.0 over HTTP POST
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	nextID  atomic.Int64
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the underlying HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit throttles outbound calls. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a client for the node at url
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:  url,
		http: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetObject fetches the current state of an object with DefaultObjectOptions.
// A deleted or unknown object is reported as *ObjectError.
func (c *Client) GetObject(ctx context.Context, objectID string) (*ObjectData, error) {
	var resp ObjectResponse
	if err := c.Call(ctx, MethodGetObject, []any{objectID, DefaultObjectOptions}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		if resp.Error.ObjectID == "" {
			resp.Error.ObjectID = objectID
		}
		return nil, resp.Error
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("sui: %s returned neither data nor error for %s", MethodGetObject, objectID)
	}
	return resp.Data, nil
}

// QueryEvents returns one page of events matching filter, starting after cursor
func (c *Client) QueryEvents(ctx context.Context, filter EventFilter, cursor *model.EventID, limit int, descending bool) (*EventPage, error) {
	var page EventPage
	if err := c.Call(ctx, MethodQueryEvents, []any{filter, cursor, limit, descending}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Call performs a single JSON-RPC call and decodes the result into result
func (c *Client) Call(ctx context.Context, method string, params []any, result any) (err error) {
	start := time.Now()
	defer func() { observeCall(method, start, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("sui: %s: rate limiter: %w", method, err)
		}
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("sui: %s: encode params: %w", method, err)
	}

	id := c.nextID.Add(1)
	body, err := json.Marshal(rpcRequest{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: payload})
	if err != nil {
		return fmt.Errorf("sui: %s: encode request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sui: %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sui: %s: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("sui: %s: %w %d", method, ErrUnexpectedStatus, httpResp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("sui: %s: read response: %w", method, err)
	}

	var resp rpcResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("sui: %s: error unmarshaling: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("sui: %s: %w", method, resp.Error)
	}
	if resp.ID == nil || *resp.ID != id {
		return fmt.Errorf("sui: %s: response id does not match request id %d", method, id)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("sui: %s: error unmarshaling result: %w", method, err)
	}
	return nil
}
